package ml

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadArtifact reads an artifact file and checks its schema version.
func LoadArtifact(path string) (*Artifact, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var header struct {
		SchemaVersion int `json:"schema_version"`
	}
	if err := json.Unmarshal(payload, &header); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}

	switch header.SchemaVersion {
	case ArtifactSchemaVersion:
		var a Artifact
		if err := json.Unmarshal(payload, &a); err != nil {
			return nil, fmt.Errorf("decode artifact: %w", err)
		}
		return &a, nil
	default:
		return nil, fmt.Errorf("unsupported artifact schema version %d", header.SchemaVersion)
	}
}
