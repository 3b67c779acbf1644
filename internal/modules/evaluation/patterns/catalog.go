package patterns

import (
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const catalogName = "sql_patterns"

//go:embed catalog.yaml
var embeddedCatalog []byte

type yamlCatalog struct {
	Catalog  string        `yaml:"catalog"`
	Version  int           `yaml:"version"`
	Patterns []yamlPattern `yaml:"patterns"`
}

type yamlPattern struct {
	Name        string     `yaml:"name"`
	DisplayName string     `yaml:"display_name"`
	Category    string     `yaml:"category"`
	Complexity  string     `yaml:"complexity"`
	Description string     `yaml:"description"`
	Rules       []yamlRule `yaml:"rules"`
}

type yamlRule struct {
	Match      string  `yaml:"match"`
	Confidence float64 `yaml:"confidence"`
}

// Rule is one compiled predicate with the confidence it contributes on match.
type Rule struct {
	Expr       *regexp.Regexp
	Confidence float64
}

// Definition is one catalogued SQL idiom.
type Definition struct {
	Name        string
	DisplayName string
	Category    string
	Complexity  string
	Description string
	Rules       []Rule
}

// Catalog is an immutable, ordered set of pattern definitions pinned to a version.
type Catalog struct {
	version int
	defs    []Definition
	byName  map[string]int
}

// DefaultCatalog parses the catalog compiled into the binary.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(embeddedCatalog)
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var doc yamlCatalog
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse pattern catalog: %w", err)
	}
	if strings.TrimSpace(doc.Catalog) != catalogName {
		return nil, fmt.Errorf("unexpected catalog: %q", doc.Catalog)
	}
	if doc.Version <= 0 {
		return nil, errors.New("pattern catalog version must be positive")
	}
	if len(doc.Patterns) == 0 {
		return nil, errors.New("pattern catalog is empty")
	}

	cat := &Catalog{
		version: doc.Version,
		defs:    make([]Definition, 0, len(doc.Patterns)),
		byName:  make(map[string]int, len(doc.Patterns)),
	}
	for _, p := range doc.Patterns {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return nil, errors.New("pattern name is required")
		}
		if _, dup := cat.byName[name]; dup {
			return nil, fmt.Errorf("duplicate pattern name: %s", name)
		}
		if len(p.Rules) == 0 {
			return nil, fmt.Errorf("pattern %s has no rules", name)
		}
		def := Definition{
			Name:        name,
			DisplayName: strings.TrimSpace(p.DisplayName),
			Category:    strings.ToUpper(strings.TrimSpace(p.Category)),
			Complexity:  strings.TrimSpace(p.Complexity),
			Description: strings.TrimSpace(p.Description),
		}
		if def.DisplayName == "" {
			def.DisplayName = name
		}
		for i, r := range p.Rules {
			if r.Confidence <= 0 || r.Confidence > 1 {
				return nil, fmt.Errorf("pattern %s rule %d: confidence %v outside (0,1]", name, i, r.Confidence)
			}
			expr, err := regexp.Compile(r.Match)
			if err != nil {
				return nil, fmt.Errorf("pattern %s rule %d: %w", name, i, err)
			}
			def.Rules = append(def.Rules, Rule{Expr: expr, Confidence: r.Confidence})
		}
		cat.byName[name] = len(cat.defs)
		cat.defs = append(cat.defs, def)
	}
	return cat, nil
}

func (c *Catalog) Version() int { return c.version }

// Definitions returns the patterns in catalog order.
func (c *Catalog) Definitions() []Definition {
	out := make([]Definition, len(c.defs))
	copy(out, c.defs)
	return out
}

func (c *Catalog) Lookup(name string) (Definition, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Definition{}, false
	}
	return c.defs[i], true
}

func (c *Catalog) Len() int { return len(c.defs) }
