package export

import (
	"bytes"
	"strings"

	"github.com/jonathan/jobcraft/internal/types"
)

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`, "#", `\#`, "[", `\[`, "]", `\]`, "<", `\<`, ">", `\>`,
)

func md(s string) string {
	return markdownEscaper.Replace(normalizeSpace(s))
}

// RenderMarkdown renders a Markdown document suitable for terminals and wikis.
func RenderMarkdown(p *types.JobProfile) []byte {
	var b bytes.Buffer
	b.WriteString("# " + md(p.Title) + "\n\n")
	b.WriteString("**Level:** " + md(p.Level) + "  \n")
	if p.IsStandardized() {
		b.WriteString("**Official title:** " + md(p.OfficialTitle) + " (standardized)\n\n")
	} else {
		b.WriteString("**Official title:** none, new title\n\n")
	}

	b.WriteString("## Mission\n\n" + md(p.Mission) + "\n\n")
	for _, list := range p.Lists() {
		b.WriteString("## " + list.Label + "\n\n")
		for _, item := range list.Items {
			b.WriteString("- " + md(item) + "\n")
		}
		b.WriteString("\n")
	}
	if a := strings.TrimSpace(p.Annotation); a != "" {
		b.WriteString("> " + md(a) + "\n")
	}
	return b.Bytes()
}
