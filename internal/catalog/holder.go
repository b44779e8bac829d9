package catalog

import (
	"context"
	"fmt"
	"sync/atomic"
)

// Holder shares one Catalog between readers without locking. A reload builds
// the replacement off to the side and swaps the pointer, so in-flight readers
// never observe a half-updated catalog.
type Holder struct {
	current atomic.Pointer[Catalog]
}

func NewHolder(c *Catalog) *Holder {
	h := &Holder{}
	h.current.Store(c)
	return h
}

// Current returns the catalog in effect. The result must be treated as
// read-only and is safe to keep for the duration of a request.
func (h *Holder) Current() *Catalog {
	return h.current.Load()
}

// Reload pulls fresh content from src and swaps it in. On error the previous
// catalog stays in effect.
func (h *Holder) Reload(ctx context.Context, src Source) (*Catalog, error) {
	c, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	h.current.Store(c)
	return c, nil
}
