// Package theme persists the storefront's light/dark preference.
package theme

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// StorageKey is shared by every storefront kind.
const StorageKey = "theme"

func (t Theme) Toggled() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

func Parse(s string) (Theme, bool) {
	switch Theme(s) {
	case Light, Dark:
		return Theme(s), true
	default:
		return Light, false
	}
}

type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

type Renderer interface {
	OnThemeChanged(t Theme)
}

type Controller struct {
	kv     KV
	render Renderer
	log    *zap.Logger

	mu      sync.Mutex
	current Theme
}

func NewController(kv KV, render Renderer, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{kv: kv, render: render, log: log, current: Light}
}

func (c *Controller) Current() Theme {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Load applies the saved theme, falling back to light when nothing (or
// something unrecognised) is stored. A read error still renders light.
func (c *Controller) Load(ctx context.Context) (Theme, error) {
	raw, ok, err := c.kv.Get(ctx, StorageKey)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.current = Light
	if err == nil && ok {
		t, known := Parse(raw)
		if !known {
			c.log.Warn("unknown saved theme, using light", zap.String("value", raw))
		}
		c.current = t
	}
	c.emit()

	if err != nil {
		return c.current, fmt.Errorf("read theme: %w", err)
	}
	return c.current, nil
}

// Toggle flips the theme. The new value is persisted before it is applied.
func (c *Controller) Toggle(ctx context.Context) (Theme, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.current.Toggled()
	if err := c.kv.Set(ctx, StorageKey, string(next)); err != nil {
		return c.current, fmt.Errorf("save theme: %w", err)
	}
	c.current = next
	c.emit()
	return next, nil
}

func (c *Controller) emit() {
	if c.render != nil {
		c.render.OnThemeChanged(c.current)
	}
}
