// Package catalog holds the read-mostly hunt content: checkpoints, their scan
// tokens and candidate clues, and the ordered routes teams walk. The catalog is
// loaded once at startup from a content source and replaced wholesale on reload.
package catalog

import (
	"context"
	"fmt"
	"sort"
)

// Checkpoint is a single physical stop. Immutable once loaded.
type Checkpoint struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	ScanToken string   `json:"scanToken"`
	Clues     []string `json:"clues"`
}

// Route is an ordered sequence of checkpoint IDs. Immutable once loaded.
type Route struct {
	ID          string   `json:"id"`
	Checkpoints []string `json:"checkpoints"`
}

// Catalog is the immutable lookup structure built from a content source.
type Catalog struct {
	checkpoints map[string]Checkpoint
	routes      map[string]Route
}

// Source yields the full hunt content. Implementations: JSON file, Google Sheets.
type Source interface {
	Load(ctx context.Context) (*Catalog, error)
}

// New validates the content and builds a Catalog. Every route must have at
// least one checkpoint, and every checkpoint a route references must exist.
func New(checkpoints []Checkpoint, routes []Route) (*Catalog, error) {
	c := &Catalog{
		checkpoints: make(map[string]Checkpoint, len(checkpoints)),
		routes:      make(map[string]Route, len(routes)),
	}
	for _, cp := range checkpoints {
		if cp.ID == "" {
			return nil, fmt.Errorf("checkpoint %q: missing id", cp.Name)
		}
		if cp.ScanToken == "" {
			return nil, fmt.Errorf("checkpoint %q: missing scan token", cp.ID)
		}
		if _, dup := c.checkpoints[cp.ID]; dup {
			return nil, fmt.Errorf("checkpoint %q: duplicate id", cp.ID)
		}
		c.checkpoints[cp.ID] = cp
	}
	for _, rt := range routes {
		if rt.ID == "" {
			return nil, fmt.Errorf("route with %d checkpoints: missing id", len(rt.Checkpoints))
		}
		if len(rt.Checkpoints) == 0 {
			return nil, fmt.Errorf("route %q: no checkpoints", rt.ID)
		}
		if _, dup := c.routes[rt.ID]; dup {
			return nil, fmt.Errorf("route %q: duplicate id", rt.ID)
		}
		for _, cpID := range rt.Checkpoints {
			if _, ok := c.checkpoints[cpID]; !ok {
				return nil, fmt.Errorf("route %q: unknown checkpoint %q", rt.ID, cpID)
			}
		}
		c.routes[rt.ID] = rt
	}
	return c, nil
}

// Route returns the route with the given ID.
func (c *Catalog) Route(id string) (Route, bool) {
	rt, ok := c.routes[id]
	return rt, ok
}

// Checkpoint returns the checkpoint with the given ID.
func (c *Catalog) Checkpoint(id string) (Checkpoint, bool) {
	cp, ok := c.checkpoints[id]
	return cp, ok
}

// RouteCheckpoint resolves the checkpoint at the given position of a route.
// ok is false when the index is at or past the end of the route.
func (c *Catalog) RouteCheckpoint(rt Route, index int) (Checkpoint, bool) {
	if index < 0 || index >= len(rt.Checkpoints) {
		return Checkpoint{}, false
	}
	return c.Checkpoint(rt.Checkpoints[index])
}

// Len reports the number of routes and checkpoints.
func (c *Catalog) Len() (routes, checkpoints int) {
	return len(c.routes), len(c.checkpoints)
}

// RouteIDs returns all route IDs in lexical order.
func (c *Catalog) RouteIDs() []string {
	ids := make([]string, 0, len(c.routes))
	for id := range c.routes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
