package export

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/jobcraft/internal/schemas"
	"github.com/jonathan/jobcraft/internal/types"
)

//go:embed templates/profile.html.tmpl
var htmlSource string

var htmlTemplate = template.Must(template.New("profile.html").Parse(htmlSource))

// RenderHTML renders a standalone HTML document. Every field carries a
// data-field attribute so DecodeHTML can read it back.
func RenderHTML(p *types.JobProfile) ([]byte, error) {
	n := Normalize(p)
	n.SchemaVersion = schemas.Version

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, n); err != nil {
		return nil, fmt.Errorf("failed to execute html template: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeHTML reads an HTML export back into a validated profile.
func DecodeHTML(data []byte) (*types.JobProfile, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html export: %w", err)
	}

	root := doc.Find("article.job-profile").First()
	if root.Length() == 0 {
		return nil, fmt.Errorf("html export has no job profile article")
	}
	if v, ok := root.Attr("data-schema-version"); ok && v != "" && v != schemas.Version {
		return nil, &schemas.SchemaError{Version: schemas.Version, Message: fmt.Sprintf("schema version mismatch: document declares %q", v)}
	}

	text := func(field string) string {
		return normalizeSpace(root.Find(fmt.Sprintf(`[data-field=%q]`, field)).First().Text())
	}

	p := types.JobProfile{
		Title:         text("title"),
		Level:         text("level"),
		Mission:       text("mission"),
		TitleOrigin:   types.TitleOrigin(text("title_origin")),
		OfficialTitle: text("official_title"),
		Annotation:    text("annotation"),
	}
	for key, list := range p.ListPointers() {
		root.Find(fmt.Sprintf(`ul[data-field=%q] > li`, key)).Each(func(_ int, li *goquery.Selection) {
			if item := normalizeSpace(li.Text()); item != "" {
				*list = append(*list, item)
			}
		})
	}
	return validated(&p)
}

// htmlTitle is used by the PDF printer for logging.
func htmlTitle(html []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").Text())
}
