package actionset

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// CatalogConfig is the YAML form of a custom action-set catalog.
type CatalogConfig struct {
	Sets []SetConfig `json:"sets" yaml:"sets"`
}

// SetConfig describes one set as an ordered list of action names. Sticky is
// optional; when omitted the sticky subset follows the action flags.
type SetConfig struct {
	Name    string   `json:"name" yaml:"name"`
	Actions []string `json:"actions" yaml:"actions"`
	Sticky  []string `json:"sticky,omitempty" yaml:"sticky,omitempty"`
}

// Catalog holds custom sets on top of the built-in ones.
type Catalog struct {
	sets map[string]*Set
}

// LoadCatalog reads a YAML catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := DecodeCatalog(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// DecodeCatalog reads a YAML catalog from r.
func DecodeCatalog(r io.Reader) (*Catalog, error) {
	var cfg CatalogConfig
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return nil, err
	}
	return cfg.Build()
}

// Build validates the config and constructs every set in it.
func (cfg CatalogConfig) Build() (*Catalog, error) {
	c := &Catalog{sets: make(map[string]*Set, len(cfg.Sets))}
	for i, sc := range cfg.Sets {
		s, err := sc.Build()
		if err != nil {
			return nil, fmt.Errorf("set %d: %w", i, err)
		}
		if _, dup := c.sets[s.Name()]; dup {
			return nil, fmt.Errorf("%w: duplicate set name %q", ErrInvalidActionSet, s.Name())
		}
		c.sets[s.Name()] = s
	}
	return c, nil
}

func (sc SetConfig) Build() (*Set, error) {
	actions := make([]Action, len(sc.Actions))
	for i, name := range sc.Actions {
		actions[i] = Action(name)
	}
	var sticky []Action
	if sc.Sticky != nil {
		sticky = make([]Action, len(sc.Sticky))
		for i, name := range sc.Sticky {
			sticky[i] = Action(name)
		}
	}
	return New(sc.Name, actions, sticky)
}

// Resolve returns the named set, preferring catalog entries over built-ins.
// A nil catalog resolves built-ins only.
func (c *Catalog) Resolve(name string) (*Set, error) {
	if c != nil {
		if s, ok := c.sets[name]; ok {
			return s, nil
		}
	}
	s, err := Resolve(name)
	if err != nil && len(c.Names()) > 0 {
		return nil, fmt.Errorf("%w (catalog: %s)", err, strings.Join(c.Names(), ", "))
	}
	return s, err
}

// Names lists the custom set names in sorted order.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.sets))
	for name := range c.sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
