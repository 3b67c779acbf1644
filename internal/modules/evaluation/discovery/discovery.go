package discovery

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/brunolnetto/sql-adventure-sub001/internal/domain/evaluation"
	"github.com/brunolnetto/sql-adventure-sub001/internal/modules/evaluation/metadata"
)

// headerBytes bounds how much of each file is read for its header block.
const headerBytes = 8 * 1024

type Subcategory struct {
	Name        string
	DisplayName string
	Description string
	OrderIndex  int
	// Difficulty is set only when it overrides the quest's difficulty.
	Difficulty string
	Files      []string
}

func (s Subcategory) FileCount() int { return len(s.Files) }

type Quest struct {
	Name          string
	DisplayName   string
	Description   string
	OrderIndex    int
	Difficulty    string
	Subcategories []Subcategory
}

// Files returns every discovered SQL file in quest, subcategory and file order.
func (q Quest) Files() []string {
	var out []string
	for _, s := range q.Subcategories {
		out = append(out, s.Files...)
	}
	return out
}

// Discover walks root laid out as <quest>/<subcategory>/<file>.sql. Files
// whose header cannot be read are still listed; the pipeline reports them.
func Discover(root string) ([]Quest, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read quests root: %w", err)
	}

	quests := make([]Quest, 0, len(entries))
	for _, qe := range entries {
		if !qe.IsDir() || strings.HasPrefix(qe.Name(), ".") {
			continue
		}
		q, err := discoverQuest(filepath.Join(root, qe.Name()))
		if err != nil {
			return nil, err
		}
		if len(q.Subcategories) == 0 {
			continue
		}
		quests = append(quests, q)
	}
	sort.SliceStable(quests, func(i, j int) bool {
		return orderLess(quests[i].OrderIndex, quests[i].Name, quests[j].OrderIndex, quests[j].Name)
	})
	return quests, nil
}

func discoverQuest(dir string) (Quest, error) {
	name := filepath.Base(dir)
	q := Quest{
		Name:        name,
		DisplayName: metadata.DisplayName(name),
		OrderIndex:  metadata.OrderIndex(name),
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return q, fmt.Errorf("read quest %s: %w", name, err)
	}

	questVotes := map[string]int{}
	subVotes := map[string]map[string]int{}
	for _, se := range entries {
		if !se.IsDir() || strings.HasPrefix(se.Name(), ".") {
			continue
		}
		subDir := filepath.Join(dir, se.Name())
		files, err := sqlFiles(subDir)
		if err != nil {
			return q, err
		}
		if len(files) == 0 {
			continue
		}
		votes := map[string]int{}
		for _, f := range files {
			if d := headerDifficulty(f); d != evaluation.DifficultyUnknown {
				votes[d]++
				questVotes[d]++
			}
		}
		subVotes[se.Name()] = votes
		q.Subcategories = append(q.Subcategories, Subcategory{
			Name:        se.Name(),
			DisplayName: metadata.DisplayName(se.Name()),
			OrderIndex:  metadata.OrderIndex(se.Name()),
			Files:       files,
			Description: fmt.Sprintf("%s: %d SQL exercise %s", metadata.DisplayName(se.Name()), len(files), plural(len(files), "file", "files")),
		})
	}

	q.Difficulty = majority(questVotes)
	if q.Difficulty == "" {
		q.Difficulty = DifficultyForOrder(q.OrderIndex)
	}
	for i := range q.Subcategories {
		s := &q.Subcategories[i]
		if d := majority(subVotes[s.Name]); d != "" && d != q.Difficulty {
			s.Difficulty = d
		}
	}
	sort.SliceStable(q.Subcategories, func(i, j int) bool {
		a, b := q.Subcategories[i], q.Subcategories[j]
		return orderLess(a.OrderIndex, a.Name, b.OrderIndex, b.Name)
	})

	total := 0
	for _, s := range q.Subcategories {
		total += len(s.Files)
	}
	q.Description = fmt.Sprintf("%s: %d %s, %d SQL exercise %s",
		q.DisplayName,
		len(q.Subcategories), plural(len(q.Subcategories), "subcategory", "subcategories"),
		total, plural(total, "file", "files"),
	)
	return q, nil
}

func sqlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read subcategory %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".sql") {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

func headerDifficulty(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return evaluation.DifficultyUnknown
	}
	defer f.Close()
	buf, err := io.ReadAll(io.LimitReader(f, headerBytes))
	if err != nil {
		return evaluation.DifficultyUnknown
	}
	return metadata.Extract(path, string(buf)).Difficulty
}

// majority returns the most common difficulty; ties go to the easier label.
func majority(votes map[string]int) string {
	best, bestN := "", 0
	for _, d := range evaluation.Difficulties {
		if n := votes[d]; n > bestN {
			best, bestN = d, n
		}
	}
	return best
}

// DifficultyForOrder is used when no file declares a difficulty.
func DifficultyForOrder(order int) string {
	switch {
	case order <= 2:
		return evaluation.DifficultyBeginner
	case order <= 4:
		return evaluation.DifficultyIntermediate
	default:
		return evaluation.DifficultyAdvanced
	}
}

// FilterQuests keeps quests whose name or display name matches one of names.
func FilterQuests(quests []Quest, names []string) []Quest {
	if len(names) == 0 {
		return quests
	}
	want := map[string]bool{}
	for _, n := range names {
		want[strings.ToLower(strings.TrimSpace(n))] = true
	}
	var out []Quest
	for _, q := range quests {
		if want[strings.ToLower(q.Name)] || want[strings.ToLower(q.DisplayName)] {
			out = append(out, q)
		}
	}
	return out
}

// AllFiles flattens quests into one ordered file list.
func AllFiles(quests []Quest) []string {
	var out []string
	for _, q := range quests {
		out = append(out, q.Files()...)
	}
	return out
}

func orderLess(ai int, an string, bi int, bn string) bool {
	if ai != bi {
		return ai < bi
	}
	return an < bn
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
