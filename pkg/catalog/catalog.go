// Package catalog keeps a named set of compiled record layouts, usually
// loaded from a directory of spec files.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ssargent/fixedwidth/pkg/codec"
)

// Catalog is a registry of compiled layouts keyed by name. It is safe for
// concurrent use.
type Catalog struct {
	mu      sync.RWMutex
	layouts map[string]*codec.Layout
}

// New returns an empty catalog
func New() *Catalog {
	return &Catalog{layouts: make(map[string]*codec.Layout)}
}

// Load compiles every *.yaml, *.yml and *.json spec in dir. The layout name
// is the file name without its extension. Any invalid spec aborts the load.
func Load(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read layouts directory: %w", err)
	}

	c := New()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" && ext != ".json" {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if _, exists := c.layouts[name]; exists {
			return nil, fmt.Errorf("duplicate layout %q in %s", name, entry.Name())
		}

		layout, err := codec.LoadLayout(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("layout %s: %w", entry.Name(), err)
		}
		c.layouts[name] = layout
	}

	return c, nil
}

// Register compiles spec and stores it under name, replacing any layout
// already registered with that name.
func (c *Catalog) Register(name string, spec codec.Spec) error {
	if name == "" {
		return fmt.Errorf("layout name is required")
	}

	layout, err := codec.Compile(spec)
	if err != nil {
		return fmt.Errorf("layout %s: %w", name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.layouts[name] = layout
	return nil
}

// Get returns the layout registered under name
func (c *Catalog) Get(name string) (*codec.Layout, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	layout, ok := c.layouts[name]
	return layout, ok
}

// Names returns the registered layout names in sorted order
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.layouts))
	for name := range c.layouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered layouts
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.layouts)
}
