package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// JSONSource loads the catalog from a local JSON file. Used for development
// and tests; production hunts load from the spreadsheet source.
type JSONSource struct {
	Path string
}

type jsonContent struct {
	Checkpoints []Checkpoint `json:"checkpoints"`
	Routes      []Route      `json:"routes"`
}

func (s JSONSource) Load(_ context.Context) (*Catalog, error) {
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	var content jsonContent
	if err := json.Unmarshal(raw, &content); err != nil {
		return nil, fmt.Errorf("parsing catalog file %q: %w", s.Path, err)
	}
	return New(content.Checkpoints, content.Routes)
}
