package metadata

import (
	"bufio"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/brunolnetto/sql-adventure-sub001/internal/domain/evaluation"
)

const Unknown = "unknown"

// Metadata is what the file path and its header comments say about an exercise.
type Metadata struct {
	Quest        string   `json:"quest"`
	Subcategory  string   `json:"subcategory"`
	FileName     string   `json:"file_name"`
	Purpose      string   `json:"purpose"`
	Difficulty   string   `json:"difficulty"`
	TimeEstimate string   `json:"time_estimate,omitempty"`
	Concepts     []string `json:"concepts"`
}

var (
	orderPrefix = regexp.MustCompile(`^(\d+)[-_. ]+`)
	headerKey   = regexp.MustCompile(`^([A-Za-z][A-Za-z ]*?)\s*:\s*(.*)$`)
	timeHint    = regexp.MustCompile(`\(([^)]*\d[^)]*)\)`)

	difficultyMarks = []struct{ mark, difficulty string }{
		{"🟢", evaluation.DifficultyBeginner},
		{"🟡", evaluation.DifficultyIntermediate},
		{"🟠", evaluation.DifficultyAdvanced},
		{"🔴", evaluation.DifficultyExpert},
	}
)

// Extract never fails: anything it cannot read falls back to defaults derived
// from the path, or to Unknown.
func Extract(path, content string) Metadata {
	quest, sub, file := SplitPath(path)
	md := Metadata{
		Quest:       quest,
		Subcategory: sub,
		FileName:    file,
		Difficulty:  evaluation.DifficultyUnknown,
		Concepts:    []string{},
	}

	header := parseHeader(content)
	if v := header["purpose"]; v != "" {
		md.Purpose = v
	}
	if v := header["difficulty"]; v != "" {
		md.Difficulty, md.TimeEstimate = ParseDifficulty(v)
	}
	if v := header["concepts"]; v != "" {
		md.Concepts = splitConcepts(v)
	}

	if md.Purpose == "" {
		if title := header["_title"]; title != "" {
			md.Purpose = title
		} else if file != Unknown {
			md.Purpose = DisplayName(strings.TrimSuffix(file, filepath.Ext(file)))
		} else {
			md.Purpose = Unknown
		}
	}
	if len(md.Concepts) == 0 && sub != Unknown {
		md.Concepts = []string{DisplayName(sub)}
	}
	return md
}

// SplitPath reads quest, subcategory and file name from
// .../quests/<quest>/<subcategory>/<file>.sql. Without a quests segment the
// two parent directories are used; missing parts become Unknown.
func SplitPath(path string) (quest, subcategory, file string) {
	quest, subcategory, file = Unknown, Unknown, Unknown
	clean := filepath.ToSlash(filepath.Clean(strings.TrimSpace(path)))
	if clean == "." || clean == "" {
		return
	}
	parts := strings.Split(clean, "/")
	file = parts[len(parts)-1]
	if file == "" {
		file = Unknown
	}

	for i := len(parts) - 2; i >= 0; i-- {
		if parts[i] == "quests" {
			if i+1 < len(parts)-1 {
				quest = parts[i+1]
			}
			if i+2 < len(parts)-1 {
				subcategory = parts[i+2]
			}
			return
		}
	}
	if n := len(parts); n >= 3 {
		quest, subcategory = parts[n-3], parts[n-2]
	} else if n == 2 {
		subcategory = parts[0]
	}
	return
}

// OrderIndex parses the numeric prefix of a directory name ("1-data-modeling" -> 1), or 0.
func OrderIndex(name string) int {
	m := orderPrefix.FindStringSubmatch(strings.TrimSpace(name))
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// DisplayName turns "01-basic-table-creation" into "Basic Table Creation".
func DisplayName(name string) string {
	name = orderPrefix.ReplaceAllString(strings.TrimSpace(name), "")
	words := strings.FieldsFunc(name, func(r rune) bool { return r == '-' || r == '_' || r == ' ' })
	for i, w := range words {
		rs := []rune(w)
		rs[0] = unicode.ToUpper(rs[0])
		words[i] = string(rs)
	}
	if len(words) == 0 {
		return Unknown
	}
	return strings.Join(words, " ")
}

// ParseDifficulty maps a header value such as "🟢 Beginner (5-10 min)" to a
// difficulty label and an optional time estimate.
func ParseDifficulty(raw string) (difficulty, timeEstimate string) {
	difficulty = evaluation.DifficultyUnknown
	if m := timeHint.FindStringSubmatch(raw); m != nil {
		timeEstimate = strings.TrimSpace(m[1])
	}
	lower := strings.ToLower(raw)
	for _, d := range evaluation.Difficulties {
		if strings.Contains(lower, strings.ToLower(d)) {
			return d, timeEstimate
		}
	}
	// With several marks the leftmost wins.
	first := -1
	for _, dm := range difficultyMarks {
		if i := strings.Index(raw, dm.mark); i >= 0 && (first < 0 || i < first) {
			first, difficulty = i, dm.difficulty
		}
	}
	return difficulty, timeEstimate
}

// parseHeader reads KEY: value lines from the leading comment block.
// The first free-text line becomes "_title".
func parseHeader(content string) map[string]string {
	out := map[string]string{}
	sc := bufio.NewScanner(strings.NewReader(content))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	inBlock := false
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
			continue
		case inBlock:
			if idx := strings.Index(line, "*/"); idx >= 0 {
				line = line[:idx]
				inBlock = false
			}
			line = strings.TrimLeft(line, "* ")
		case strings.HasPrefix(line, "/*"):
			line = strings.TrimPrefix(line, "/*")
			inBlock = true
			if idx := strings.Index(line, "*/"); idx >= 0 {
				line = line[:idx]
				inBlock = false
			}
		case strings.HasPrefix(line, "--"):
			line = strings.TrimLeft(line, "- ")
		default:
			return out
		}
		line = strings.TrimSpace(line)
		if line == "" || strings.Trim(line, "=-*#") == "" {
			continue
		}
		if m := headerKey.FindStringSubmatch(line); m != nil {
			key := strings.ToLower(strings.TrimSpace(m[1]))
			if _, seen := out[key]; !seen && strings.TrimSpace(m[2]) != "" {
				out[key] = strings.TrimSpace(m[2])
			}
			continue
		}
		if _, ok := out["_title"]; !ok {
			out["_title"] = line
		}
	}
	return out
}

func splitConcepts(raw string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, part := range strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ';' }) {
		p := strings.TrimSpace(part)
		if p == "" || seen[strings.ToLower(p)] {
			continue
		}
		seen[strings.ToLower(p)] = true
		out = append(out, p)
	}
	return out
}
