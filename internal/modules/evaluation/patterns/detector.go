package patterns

import (
	"sort"
	"strings"
)

const maxEvidence = 80

// Match is one detected pattern.
type Match struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
	Evidence   string  `json:"evidence"`
}

// Detector classifies SQL text against a fixed catalog. It holds no mutable
// state and is safe for concurrent use.
type Detector struct {
	catalog *Catalog
}

func NewDetector(catalog *Catalog) *Detector {
	return &Detector{catalog: catalog}
}

func (d *Detector) Catalog() *Catalog { return d.catalog }

// Detect returns the matched patterns ordered by confidence (highest first),
// ties broken by catalog order. Each name appears at most once, carrying the
// best confidence among its rules.
func (d *Detector) Detect(sql string) []Match {
	text := Normalize(sql)
	if text == "" || d == nil || d.catalog == nil {
		return []Match{}
	}

	type ranked struct {
		Match
		order int
	}
	found := make([]ranked, 0, 8)
	for order, def := range d.catalog.defs {
		best := -1.0
		evidence := ""
		for _, rule := range def.Rules {
			if rule.Confidence <= best {
				continue
			}
			loc := rule.Expr.FindStringIndex(text)
			if loc == nil {
				continue
			}
			best = rule.Confidence
			evidence = snippet(text, loc[0], loc[1])
		}
		if best < 0 {
			continue
		}
		found = append(found, ranked{
			Match: Match{Name: def.Name, Confidence: clamp01(best), Evidence: evidence},
			order: order,
		})
	}

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].Confidence != found[j].Confidence {
			return found[i].Confidence > found[j].Confidence
		}
		return found[i].order < found[j].order
	})
	out := make([]Match, len(found))
	for i, f := range found {
		out[i] = f.Match
	}
	return out
}

func snippet(text string, start, end int) string {
	r := []rune(strings.TrimSpace(text[start:end]))
	if len(r) > maxEvidence {
		r = r[:maxEvidence]
	}
	return string(r)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
