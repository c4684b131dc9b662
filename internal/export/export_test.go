package export

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/jobcraft/internal/schemas"
	"github.com/jonathan/jobcraft/internal/types"
)

func standardized() *types.JobProfile {
	return &types.JobProfile{
		Title:         "Sales Analyst",
		Level:         "Junior (0-2 years)",
		Mission:       "Turn CRM data into weekly\n commercial insight & forecasts.",
		TitleOrigin:   types.OriginStandardized,
		OfficialTitle: "Commercial Analyst",
		Annotation:    "Matched \"Commercial Analyst\" in the catalog.",
		Responsibilities: []string{
			"Maintain CRM pipeline reports",
			"Support quarterly forecasting | budgeting",
			`Escape a \ backslash`,
		},
		BehavioralCompetencies: []string{"Customer orientation"},
		TechnicalCompetencies:  []string{"CRM tools (Salesforce, HubSpot)", "<SQL> & Excel"},
		Education:              []string{"Bachelor's degree in Business, Economics or similar"},
		KPIs:                   []string{"Forecast accuracy ≥ 90%", "- leading dash"},
	}
}

func newTitle() *types.JobProfile {
	p := standardized()
	p.Title = "Growth Hacker"
	p.TitleOrigin = types.OriginNew
	p.OfficialTitle = types.NoOfficialTitle
	p.Annotation = ""
	p.Mission = "ANNOTATION"
	return p
}

var ignoreVersion = cmpopts.IgnoreFields(types.JobProfile{}, "SchemaVersion")

type decoder func([]byte) (*types.JobProfile, error)

func TestRoundTrip(t *testing.T) {
	formats := map[Format]decoder{
		FormatText: DecodeText,
		FormatCSV:  DecodeCSV,
		FormatHTML: DecodeHTML,
		FormatJSON: DecodeJSON,
	}
	ex := &Exporter{}

	for _, profile := range []*types.JobProfile{standardized(), newTitle()} {
		for format, decode := range formats {
			t.Run(string(format)+"/"+profile.Title, func(t *testing.T) {
				data, err := ex.Render(context.Background(), format, profile)
				require.NoError(t, err)

				got, err := decode(data)
				require.NoError(t, err)
				assert.Equal(t, schemas.Version, got.SchemaVersion)

				want := Normalize(profile)
				if format == FormatJSON {
					want = profile
				}
				if diff := cmp.Diff(want, got, ignoreVersion); diff != "" {
					t.Errorf("round trip mismatch (-want +got):\n%s", diff)
				}
			})
		}
	}
}

func TestRenderText(t *testing.T) {
	out := string(RenderText(standardized()))

	assert.True(t, strings.HasPrefix(out, "JOB TITLE: Sales Analyst\nLEVEL: Junior (0-2 years)\n"))
	assert.Contains(t, out, "TITLE ORIGIN: STANDARIZED\nOFFICIAL TITLE: Commercial Analyst\n")
	assert.Contains(t, out, "\nKEY RESPONSIBILITIES\n- Maintain CRM pipeline reports\n")
	assert.Contains(t, out, "Turn CRM data into weekly commercial insight & forecasts.")
}

func TestDecodeText_ContinuationLines(t *testing.T) {
	data := RenderText(standardized())
	wrapped := strings.Replace(string(data), "- Maintain CRM pipeline reports", "- Maintain CRM\n  pipeline reports", 1)

	got, err := DecodeText([]byte(wrapped))
	require.NoError(t, err)
	assert.Equal(t, "Maintain CRM pipeline reports", got.Responsibilities[0])
}

func TestDecodeText_MissingList(t *testing.T) {
	data := string(RenderText(standardized()))
	i := strings.Index(data, "\nKEY PERFORMANCE INDICATORS")
	_, err := DecodeText([]byte(data[:i]))

	var schemaErr *schemas.SchemaError
	assert.ErrorAs(t, err, &schemaErr)
}

func TestDecodeText_Garbage(t *testing.T) {
	_, err := DecodeText([]byte("hello world"))
	assert.Error(t, err)
}

func TestRenderCSV(t *testing.T) {
	data, err := RenderCSV(standardized())
	require.NoError(t, err)

	lines := strings.SplitN(string(data), "\n", 2)
	assert.Equal(t, strings.Join(CSVHeader(), ","), lines[0])
	assert.Contains(t, lines[1], "Maintain CRM pipeline reports | Support quarterly forecasting \\| budgeting")
}

func TestDecodeCSV_MissingColumn(t *testing.T) {
	_, err := DecodeCSV([]byte("title,level\nA,B\n"))
	assert.ErrorContains(t, err, "missing column")
}

func TestDecodeCSVRows(t *testing.T) {
	first, err := RenderCSV(standardized())
	require.NoError(t, err)
	row := CSVRow(newTitle())

	data := string(first) + strings.Join(quoteAll(row), ",") + "\n"
	profiles, err := DecodeCSVRows([]byte(data))
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, types.OriginNew, profiles[1].TitleOrigin)
}

func quoteAll(row []string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = `"` + strings.ReplaceAll(c, `"`, `""`) + `"`
	}
	return out
}

func TestSplitItems(t *testing.T) {
	assert.Nil(t, splitItems("  "))
	assert.Equal(t, []string{"a", "b | c", `d\e`}, splitItems(`a | b \| c | d\\e`))
}

func TestRenderHTML_Escapes(t *testing.T) {
	data, err := RenderHTML(standardized())
	require.NoError(t, err)
	html := string(data)

	assert.Contains(t, html, "&lt;SQL&gt; &amp; Excel")
	assert.NotContains(t, html, "<SQL>")
	assert.Contains(t, html, `data-schema-version="2"`)
}

func TestDecodeHTML_VersionMismatch(t *testing.T) {
	data, err := RenderHTML(standardized())
	require.NoError(t, err)
	data = []byte(strings.Replace(string(data), `data-schema-version="2"`, `data-schema-version="1"`, 1))

	_, err = DecodeHTML(data)
	var schemaErr *schemas.SchemaError
	assert.ErrorAs(t, err, &schemaErr)
}

func TestDecodeHTML_NotAProfile(t *testing.T) {
	_, err := DecodeHTML([]byte("<html><body><p>hi</p></body></html>"))
	assert.ErrorContains(t, err, "no job profile")
}

func TestRenderMarkdown(t *testing.T) {
	out := string(RenderMarkdown(standardized()))
	assert.True(t, strings.HasPrefix(out, "# Sales Analyst\n"))
	assert.Contains(t, out, "**Official title:** Commercial Analyst (standardized)")
	assert.Contains(t, out, "## Key Performance Indicators\n\n- Forecast accuracy ≥ 90%\n")
	assert.Contains(t, out, `\<SQL\> & Excel`)

	out = string(RenderMarkdown(newTitle()))
	assert.Contains(t, out, "new title")
	assert.NotContains(t, out, "\n> ")
}

func TestRenderLaTeX(t *testing.T) {
	data, err := RenderLaTeX(standardized())
	require.NoError(t, err)
	tex := string(data)

	assert.Contains(t, tex, `\documentclass`)
	assert.Contains(t, tex, `{\LARGE\bfseries Sales Analyst}`)
	assert.Contains(t, tex, `\textbf{Title origin:} STANDARIZED`)
	assert.Contains(t, tex, `\item Forecast accuracy ≥ 90\%`)
	assert.Contains(t, tex, `\item <SQL> \& Excel`)
	assert.Contains(t, tex, `\section*{Notes}`)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(tex), `\end{document}`))

	data, err = RenderLaTeX(newTitle())
	require.NoError(t, err)
	assert.NotContains(t, string(data), `\section*{Notes}`)
}

type fakePDF struct {
	html []byte
	err  error
}

func (f *fakePDF) PrintPDF(_ context.Context, html []byte) ([]byte, error) {
	f.html = html
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.4 fake"), nil
}

func TestRender_PDFUsesHTML(t *testing.T) {
	printer := &fakePDF{}
	ex := &Exporter{PDF: printer}

	data, err := ex.Render(context.Background(), FormatPDF, standardized())
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake", string(data))
	assert.Contains(t, string(printer.html), `data-field="title"`)
}

func TestRenderAll_IsolatesFailures(t *testing.T) {
	ex := &Exporter{PDF: &fakePDF{err: errors.New("chrome not found")}, Logger: zap.NewNop()}

	results := ex.RenderAll(context.Background(), Formats, standardized())
	require.Len(t, results, len(Formats))

	for _, r := range results {
		if r.Format == FormatPDF {
			var exportErr *ExportError
			require.ErrorAs(t, r.Err, &exportErr)
			assert.Equal(t, FormatPDF, exportErr.Format)
			assert.Nil(t, r.Data)
			continue
		}
		assert.NoError(t, r.Err, r.Format)
		assert.NotEmpty(t, r.Data, r.Format)
	}
}

func TestRender_ZeroExporterHasNoPDF(t *testing.T) {
	_, err := (&Exporter{}).Render(context.Background(), FormatPDF, standardized())
	var exportErr *ExportError
	assert.ErrorAs(t, err, &exportErr)
}

func TestRender_Errors(t *testing.T) {
	ex := &Exporter{}
	_, err := ex.Render(context.Background(), Format("docx"), standardized())
	assert.Error(t, err)

	_, err = ex.Render(context.Background(), FormatText, nil)
	assert.Error(t, err)
}

func TestParseFormats(t *testing.T) {
	formats, err := ParseFormats("txt, csv,md,pdf,csv")
	require.NoError(t, err)
	assert.Equal(t, []Format{FormatText, FormatCSV, FormatMarkdown, FormatPDF}, formats)

	_, err = ParseFormats("text,docx")
	assert.ErrorContains(t, err, "docx")
}

func TestFormatMetadata(t *testing.T) {
	for _, f := range Formats {
		assert.NotEmpty(t, f.Extension(), f)
		assert.NotEmpty(t, f.ContentType(), f)
	}
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "jobcraft_sales-analyst_junior-0-2-years.pdf", Filename(standardized(), FormatPDF))

	p := &types.JobProfile{Title: "Analista de Gestión", Level: ""}
	assert.Equal(t, "jobcraft_analista-de-gestion.txt", Filename(p, FormatText))
}

func TestNormalize_DoesNotAlias(t *testing.T) {
	p := standardized()
	n := Normalize(p)
	n.Responsibilities[0] = "changed"
	assert.Equal(t, "Maintain CRM pipeline reports", p.Responsibilities[0])
	assert.Equal(t, "Turn CRM data into weekly commercial insight & forecasts.", n.Mission)
}
