package export

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"

	"github.com/jonathan/jobcraft/internal/types"
)

//go:embed templates/profile.tex.tmpl
var latexSource string

// The LaTeX template uses [[ ]] delimiters so TeX braces need no quoting.
var latexTemplate = template.Must(template.New("profile.tex").
	Delims("[[", "]]").
	Funcs(template.FuncMap{"escape": EscapeLaTeX}).
	Parse(latexSource))

// RenderLaTeX renders print-ready LaTeX source.
func RenderLaTeX(p *types.JobProfile) ([]byte, error) {
	var buf bytes.Buffer
	if err := latexTemplate.Execute(&buf, p); err != nil {
		return nil, fmt.Errorf("failed to execute latex template: %w", err)
	}
	return buf.Bytes(), nil
}
