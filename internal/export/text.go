package export

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/jobcraft/internal/schemas"
	"github.com/jonathan/jobcraft/internal/types"
)

// Header line prefixes of the plain text export.
const (
	textTitle    = "JOB TITLE: "
	textLevel    = "LEVEL: "
	textOrigin   = "TITLE ORIGIN: "
	textOfficial = "OFFICIAL TITLE: "
)

const (
	sectionMission    = "MISSION"
	sectionAnnotation = "ANNOTATION"
)

// RenderText renders the plain text document.
func RenderText(p *types.JobProfile) []byte {
	var b bytes.Buffer
	b.WriteString(textTitle + normalizeSpace(p.Title) + "\n")
	b.WriteString(textLevel + normalizeSpace(p.Level) + "\n")
	b.WriteString(textOrigin + normalizeSpace(string(p.TitleOrigin)) + "\n")
	b.WriteString(textOfficial + normalizeSpace(p.OfficialTitle) + "\n")

	b.WriteString("\n" + sectionMission + "\n" + normalizeSpace(p.Mission) + "\n")
	b.WriteString("\n" + sectionAnnotation + "\n" + normalizeSpace(p.Annotation) + "\n")

	for _, list := range p.Lists() {
		b.WriteString("\n" + strings.ToUpper(list.Label) + "\n")
		for _, item := range list.Items {
			b.WriteString("- " + normalizeSpace(item) + "\n")
		}
	}
	return b.Bytes()
}

// DecodeText reads a plain text export back into a validated profile.
func DecodeText(data []byte) (*types.JobProfile, error) {
	var p types.JobProfile
	lists := p.ListPointers()
	sectionKeys := map[string]string{
		sectionMission:    "mission",
		sectionAnnotation: "annotation",
	}
	for _, list := range p.Lists() {
		sectionKeys[strings.ToUpper(list.Label)] = list.Key
	}

	section := ""
	prevBlank := true
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")

		if section == "" {
			switch {
			case strings.HasPrefix(line, textTitle):
				p.Title = strings.TrimSpace(strings.TrimPrefix(line, textTitle))
				continue
			case strings.HasPrefix(line, textLevel):
				p.Level = strings.TrimSpace(strings.TrimPrefix(line, textLevel))
				continue
			case strings.HasPrefix(line, textOrigin):
				p.TitleOrigin = types.TitleOrigin(strings.TrimSpace(strings.TrimPrefix(line, textOrigin)))
				continue
			case strings.HasPrefix(line, textOfficial):
				p.OfficialTitle = strings.TrimSpace(strings.TrimPrefix(line, textOfficial))
				continue
			}
		}

		// Section labels always follow a blank line.
		if key, ok := sectionKeys[line]; ok && prevBlank {
			section = key
			prevBlank = false
			continue
		}
		if strings.TrimSpace(line) == "" {
			prevBlank = true
			continue
		}
		prevBlank = false

		switch section {
		case "mission":
			p.Mission = joinSpace(p.Mission, line)
		case "annotation":
			p.Annotation = joinSpace(p.Annotation, line)
		case "":
			return nil, fmt.Errorf("unexpected line before first section: %q", line)
		default:
			list := lists[section]
			if item, ok := strings.CutPrefix(line, "- "); ok {
				*list = append(*list, strings.TrimSpace(item))
			} else if len(*list) > 0 {
				last := len(*list) - 1
				(*list)[last] = joinSpace((*list)[last], line)
			} else {
				return nil, fmt.Errorf("expected list item in %s, got %q", section, line)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read text export: %w", err)
	}
	return validated(&p)
}

func joinSpace(a, b string) string {
	b = strings.TrimSpace(b)
	if a == "" {
		return b
	}
	return a + " " + b
}

// validated runs a decoded profile through the schema validator so decoders
// never return a record the generator could not have produced.
func validated(p *types.JobProfile) (*types.JobProfile, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return schemas.ParseJobProfile(string(raw))
}
