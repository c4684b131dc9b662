package llm

import (
	"github.com/google/generative-ai-go/genai"

	"github.com/jonathan/jobcraft/internal/types"
)

// JobProfileResponseSchema describes the JobProfile object to the model so the
// endpoint constrains its output to the same shape the validator enforces.
func JobProfileResponseSchema() *genai.Schema {
	text := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Description: desc}
	}
	list := func(desc string) *genai.Schema {
		return &genai.Schema{
			Type:        genai.TypeArray,
			Description: desc,
			Items:       &genai.Schema{Type: genai.TypeString},
		}
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":   text("Job title as requested by the operator"),
			"level":   text("Seniority level as requested by the operator"),
			"mission": text("Concise professional summary of the role"),
			"title_origin": {
				Type:        genai.TypeString,
				Format:      "enum",
				Enum:        []string{string(types.OriginStandardized), string(types.OriginNew)},
				Description: "Reconciliation verdict against the official catalog",
			},
			"official_title":          text("Matched catalog title, or N/A when the title is new"),
			"annotation":              text("Short note explaining the reconciliation verdict"),
			"responsibilities":        list("Key responsibilities"),
			"behavioral_competencies": list("Behavioral competencies chosen from the dictionary"),
			"technical_competencies":  list("Technical competencies chosen from the dictionary"),
			"education":               list("Education requirements"),
			"kpis":                    list("Key performance indicators"),
		},
		Required: []string{
			"title", "level", "mission", "title_origin", "official_title", "annotation",
			"responsibilities", "behavioral_competencies", "technical_competencies",
			"education", "kpis",
		},
	}
}
