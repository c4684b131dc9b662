// Package export renders a JobProfile to document formats and reads the
// textual formats back.
package export

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/jobcraft/internal/types"
)

// Format names an export format.
type Format string

const (
	FormatText     Format = "text"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatLaTeX    Format = "latex"
	FormatPDF      Format = "pdf"
)

// Formats lists every supported format in display order.
var Formats = []Format{FormatText, FormatCSV, FormatJSON, FormatMarkdown, FormatHTML, FormatLaTeX, FormatPDF}

var formatInfo = map[Format]struct {
	ext         string
	contentType string
}{
	FormatText:     {".txt", "text/plain; charset=utf-8"},
	FormatCSV:      {".csv", "text/csv; charset=utf-8"},
	FormatJSON:     {".json", "application/json"},
	FormatMarkdown: {".md", "text/markdown; charset=utf-8"},
	FormatHTML:     {".html", "text/html; charset=utf-8"},
	FormatLaTeX:    {".tex", "application/x-latex"},
	FormatPDF:      {".pdf", "application/pdf"},
}

// ParseFormat accepts a format name or a common alias such as "txt" or "md".
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "txt", "plain":
		return FormatText, nil
	case "md":
		return FormatMarkdown, nil
	case "htm":
		return FormatHTML, nil
	case "tex":
		return FormatLaTeX, nil
	}
	f := Format(s)
	if _, ok := formatInfo[f]; !ok {
		return "", fmt.Errorf("unknown export format %q", s)
	}
	return f, nil
}

// ParseFormats parses a comma-separated list, dropping duplicates.
func ParseFormats(list string) ([]Format, error) {
	var formats []Format
	seen := make(map[Format]bool)
	for _, part := range strings.Split(list, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		f, err := ParseFormat(part)
		if err != nil {
			return nil, err
		}
		if !seen[f] {
			seen[f] = true
			formats = append(formats, f)
		}
	}
	return formats, nil
}

// Extension returns the file extension for f, including the dot.
func (f Format) Extension() string { return formatInfo[f].ext }

// ContentType returns the MIME type for f.
func (f Format) ContentType() string { return formatInfo[f].contentType }

// ExportError is a format-specific serialization failure.
type ExportError struct {
	Format Format
	Cause  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s: %v", e.Format, e.Cause)
}

func (e *ExportError) Unwrap() error {
	return e.Cause
}

// Result is the outcome of rendering one format.
type Result struct {
	Format Format
	Data   []byte
	Err    error
}

// Exporter renders profiles. The zero value renders every format except PDF.
type Exporter struct {
	PDF    PDFPrinter
	Logger *zap.Logger
}

// New returns an Exporter that prints PDFs with headless Chrome.
func New(logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{PDF: &ChromePrinter{Logger: logger}, Logger: logger}
}

// Render serializes p in one format. Failures are *ExportError.
func (e *Exporter) Render(ctx context.Context, format Format, p *types.JobProfile) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			data, err = nil, &ExportError{Format: format, Cause: fmt.Errorf("panic: %v", r)}
		}
	}()

	if p == nil {
		return nil, &ExportError{Format: format, Cause: fmt.Errorf("no profile")}
	}

	switch format {
	case FormatText:
		data, err = RenderText(p), nil
	case FormatCSV:
		data, err = RenderCSV(p)
	case FormatJSON:
		data, err = RenderJSON(p)
	case FormatMarkdown:
		data, err = RenderMarkdown(p), nil
	case FormatHTML:
		data, err = RenderHTML(p)
	case FormatLaTeX:
		data, err = RenderLaTeX(p)
	case FormatPDF:
		data, err = e.renderPDF(ctx, p)
	default:
		err = fmt.Errorf("unsupported format")
	}
	if err != nil {
		return nil, &ExportError{Format: format, Cause: err}
	}
	return data, nil
}

// RenderAll renders each format independently. A failing format is reported in
// its Result and never prevents the others.
func (e *Exporter) RenderAll(ctx context.Context, formats []Format, p *types.JobProfile) []Result {
	results := make([]Result, 0, len(formats))
	for _, f := range formats {
		data, err := e.Render(ctx, f, p)
		if err != nil && e.Logger != nil {
			e.Logger.Warn("export failed", zap.String("format", string(f)), zap.Error(err))
		}
		results = append(results, Result{Format: f, Data: data, Err: err})
	}
	return results
}

func (e *Exporter) renderPDF(ctx context.Context, p *types.JobProfile) ([]byte, error) {
	if e.PDF == nil {
		return nil, fmt.Errorf("no PDF printer configured")
	}
	html, err := RenderHTML(p)
	if err != nil {
		return nil, err
	}
	return e.PDF.PrintPDF(ctx, html)
}

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

var slugFolder = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u", "ñ", "n",
)

func slug(s string) string {
	s = slugFolder.Replace(strings.ToLower(s))
	return strings.Trim(slugInvalid.ReplaceAllString(s, "-"), "-")
}

// Filename derives a file name such as "jobcraft_sales-analyst_junior.pdf".
func Filename(p *types.JobProfile, format Format) string {
	parts := []string{"jobcraft"}
	if s := slug(p.Title); s != "" {
		parts = append(parts, s)
	}
	if s := slug(p.Level); s != "" {
		parts = append(parts, s)
	}
	return strings.Join(parts, "_") + format.Extension()
}

// normalizeSpace collapses runs of whitespace to single spaces.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Normalize returns a copy of p with whitespace collapsed in every field, the
// form in which textual exports round-trip.
func Normalize(p *types.JobProfile) *types.JobProfile {
	out := *p
	out.Title = normalizeSpace(p.Title)
	out.Level = normalizeSpace(p.Level)
	out.Mission = normalizeSpace(p.Mission)
	out.TitleOrigin = types.TitleOrigin(normalizeSpace(string(p.TitleOrigin)))
	out.OfficialTitle = normalizeSpace(p.OfficialTitle)
	out.Annotation = normalizeSpace(p.Annotation)
	for _, list := range out.ListPointers() {
		items := make([]string, len(*list))
		for i, item := range *list {
			items[i] = normalizeSpace(item)
		}
		*list = items
	}
	return &out
}
