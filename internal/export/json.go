package export

import (
	"encoding/json"

	"github.com/jonathan/jobcraft/internal/schemas"
	"github.com/jonathan/jobcraft/internal/types"
)

// RenderJSON renders indented JSON stamped with the schema version.
func RenderJSON(p *types.JobProfile) ([]byte, error) {
	out := *p
	out.SchemaVersion = schemas.Version
	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// DecodeJSON parses a JSON export through the schema validator.
func DecodeJSON(data []byte) (*types.JobProfile, error) {
	return schemas.ParseJobProfile(string(data))
}
