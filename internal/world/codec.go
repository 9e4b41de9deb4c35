// Persisted form of a WorldMap: a flat JSON document that round-trips
// field-for-field, plus schema validation for documents from disk.

package world

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed worldmap.schema.json
var schemaJSON string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

// Marshal encodes the map into its persisted JSON form. Parcel resource
// order is preserved so diffing stays stable within a process run.
func Marshal(m *WorldMap) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal world map: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a persisted world document.
func Unmarshal(data []byte) (*WorldMap, error) {
	var m WorldMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal world map: %w", err)
	}
	return &m, nil
}

// ValidateDocument checks a raw document against the embedded world map
// schema. Used on untrusted inputs (file imports); the engine's own output
// always passes.
func ValidateDocument(data []byte) error {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("worldmap.schema.json", schemaJSON)
	})
	if schemaErr != nil {
		return fmt.Errorf("compile world map schema: %w", schemaErr)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse world document: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("world document invalid: %w", err)
	}
	return nil
}
