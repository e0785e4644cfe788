package tools

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/ashutoshrp06/propcalc/internal/types"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Catalog holds the static configuration of every tool, in display order.
type Catalog struct {
	order   []types.ToolID
	configs map[types.ToolID]types.ToolConfiguration
}

// LoadCatalog parses and validates a YAML tool catalog. Every known tool
// must be described exactly once.
func LoadCatalog(data []byte) (*Catalog, error) {
	var doc struct {
		Tools []types.ToolConfiguration `yaml:"tools"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	catalog := &Catalog{
		configs: make(map[types.ToolID]types.ToolConfiguration, len(doc.Tools)),
	}

	for _, cfg := range doc.Tools {
		if !cfg.ID.Valid() {
			return nil, fmt.Errorf("unknown tool id %q", cfg.ID)
		}
		if _, exists := catalog.configs[cfg.ID]; exists {
			return nil, fmt.Errorf("tool %s defined more than once", cfg.ID)
		}
		if err := checkConfiguration(cfg); err != nil {
			return nil, err
		}
		catalog.configs[cfg.ID] = cfg
		catalog.order = append(catalog.order, cfg.ID)
	}

	for _, id := range types.AllTools() {
		if _, ok := catalog.configs[id]; !ok {
			return nil, fmt.Errorf("catalog is missing tool %s", id)
		}
	}

	return catalog, nil
}

func checkConfiguration(cfg types.ToolConfiguration) error {
	if cfg.Name == "" {
		return fmt.Errorf("tool %s has no name", cfg.ID)
	}
	if len(cfg.Fields) == 0 {
		return fmt.Errorf("tool %s has no fields", cfg.ID)
	}

	seen := make(map[string]bool, len(cfg.Fields))
	for _, f := range cfg.Fields {
		if f.Name == "" {
			return fmt.Errorf("tool %s has a field without a name", cfg.ID)
		}
		if seen[f.Name] {
			return fmt.Errorf("tool %s: duplicate field %s", cfg.ID, f.Name)
		}
		seen[f.Name] = true

		switch f.Kind {
		case types.FieldNumeric:
			if f.Default != "" {
				if _, ok := types.String(f.Default).Float(); !ok {
					return fmt.Errorf("tool %s: field %s has non-numeric default %q", cfg.ID, f.Name, f.Default)
				}
			}
			if f.Min != nil && f.Max != nil && *f.Min > *f.Max {
				return fmt.Errorf("tool %s: field %s has min above max", cfg.ID, f.Name)
			}
		case types.FieldChoice:
			if len(f.Choices) == 0 {
				return fmt.Errorf("tool %s: select field %s has no choices", cfg.ID, f.Name)
			}
			if f.Default != "" && !f.HasChoice(f.Default) {
				return fmt.Errorf("tool %s: field %s default %q is not a choice", cfg.ID, f.Name, f.Default)
			}
		case types.FieldText:
		default:
			return fmt.Errorf("tool %s: field %s has unknown kind %q", cfg.ID, f.Name, f.Kind)
		}
	}
	return nil
}

var (
	defaultCatalog     *Catalog
	defaultCatalogOnce sync.Once
)

// DefaultCatalog returns the built-in catalog. The embedded file is part of
// the binary, so a parse failure panics.
func DefaultCatalog() *Catalog {
	defaultCatalogOnce.Do(func() {
		c, err := LoadCatalog(defaultCatalogYAML)
		if err != nil {
			panic(fmt.Sprintf("embedded tool catalog: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Configuration returns the configuration for id. Passing an id outside the
// known set is a programming error and panics.
func (c *Catalog) Configuration(id types.ToolID) types.ToolConfiguration {
	cfg, ok := c.configs[id]
	if !ok {
		panic(fmt.Sprintf("tools: no configuration for tool %q", id))
	}
	return cfg
}

// Lookup returns the configuration for id without panicking.
func (c *Catalog) Lookup(id types.ToolID) (types.ToolConfiguration, bool) {
	cfg, ok := c.configs[id]
	return cfg, ok
}

// Configurations returns every configuration in display order.
func (c *Catalog) Configurations() []types.ToolConfiguration {
	out := make([]types.ToolConfiguration, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.configs[id])
	}
	return out
}

// Configuration returns the built-in configuration for id.
func Configuration(id types.ToolID) types.ToolConfiguration {
	return DefaultCatalog().Configuration(id)
}
