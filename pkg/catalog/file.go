package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// FileSource loads the catalog from a local JSON file of the shape
// {"teams": [{"id","name"}], "players": [{"id","name"}]}. It backs offline
// runs and tests.
type FileSource struct {
	Path string
}

type fileDocument struct {
	Teams   []Entry `json:"teams"`
	Players []Entry `json:"players"`
}

// Load reads and decodes the file.
func (s FileSource) Load(_ context.Context) ([]Entry, []Entry, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("read catalog file: %w", err)
	}
	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("decode catalog file %s: %w", s.Path, err)
	}
	return doc.Teams, doc.Players, nil
}

// StaticSource serves fixed entries, for tests.
type StaticSource struct {
	Teams   []Entry
	Players []Entry
}

// Load returns the fixed entries.
func (s StaticSource) Load(_ context.Context) ([]Entry, []Entry, error) {
	return s.Teams, s.Players, nil
}
