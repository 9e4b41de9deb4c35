package persistence

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"

	"parcelforge/internal/world"
)

// ExportFile writes a world to disk in its persisted JSON form.
func ExportFile(path string, m *world.WorldMap) error {
	doc, err := world.Marshal(m)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	slog.Info("world exported", "path", path, "size", humanize.Bytes(uint64(len(doc))))
	return nil
}

// ImportFile reads a world document from disk, validating it against the
// world map schema before decoding. Files are untrusted input.
func ImportFile(path string) (*world.WorldMap, error) {
	doc, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := world.ValidateDocument(doc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return world.Unmarshal(doc)
}
