package report

import (
	"context"
	"fmt"
	"sync"

	"obras/internal/core"
)

// Capability is a one-shot signal that a Renderer is available. Callers
// either check it without blocking or wait for it with a deadline.
type Capability struct {
	once  sync.Once
	ready chan struct{}
	r     Renderer
}

func NewCapability() *Capability {
	return &Capability{ready: make(chan struct{})}
}

// Provide publishes r. Only the first call has an effect; providing nil
// marks the capability as settled but unavailable.
func (c *Capability) Provide(r Renderer) {
	c.once.Do(func() {
		c.r = r
		close(c.ready)
	})
}

func (c *Capability) Ready() <-chan struct{} { return c.ready }

// Renderer returns the provided renderer without blocking.
func (c *Capability) Renderer() (Renderer, error) {
	select {
	case <-c.ready:
		if c.r == nil {
			return nil, ErrRendererUnavailable
		}
		return c.r, nil
	default:
		return nil, ErrRendererUnavailable
	}
}

// Wait blocks until a renderer is provided or ctx is done.
func (c *Capability) Wait(ctx context.Context) (Renderer, error) {
	select {
	case <-c.ready:
		return c.Renderer()
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrRendererUnavailable, ctx.Err())
	}
}

// Generate composes and renders the report for p. A nil renderer fails
// before anything is composed.
func Generate(r Renderer, p core.Project) ([]byte, Document, error) {
	if r == nil {
		return nil, Document{}, ErrRendererUnavailable
	}
	doc, err := Compose(p, WithMeasurer(r.Measurer()))
	if err != nil {
		return nil, Document{}, err
	}
	out, err := r.Render(doc)
	if err != nil {
		return nil, Document{}, err
	}
	return out, doc, nil
}
