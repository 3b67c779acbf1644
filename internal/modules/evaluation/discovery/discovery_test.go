package discovery

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "2-performance-tuning", "01-indexes", "a.sql"), "-- DIFFICULTY: Advanced\nSELECT 1;")
	writeFile(t, filepath.Join(root, "1-data-modeling", "01-normalization", "b.sql"), "-- DIFFICULTY: 🟡 Intermediate\nSELECT 1;")
	writeFile(t, filepath.Join(root, "1-data-modeling", "00-basic-concepts", "02-b.sql"), "-- DIFFICULTY: Beginner\nSELECT 1;")
	writeFile(t, filepath.Join(root, "1-data-modeling", "00-basic-concepts", "01-a.sql"), "-- DIFFICULTY: Beginner\nSELECT 1;")
	writeFile(t, filepath.Join(root, "1-data-modeling", "00-basic-concepts", "notes.md"), "not sql")
	writeFile(t, filepath.Join(root, "3-empty", "README.md"), "nothing")

	quests, err := Discover(root)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(quests) != 2 {
		t.Fatalf("expected 2 quests, got %d", len(quests))
	}

	q := quests[0]
	if q.Name != "1-data-modeling" || q.DisplayName != "Data Modeling" || q.OrderIndex != 1 {
		t.Fatalf("unexpected quest: %+v", q)
	}
	if q.Difficulty != "Beginner" {
		t.Fatalf("quest difficulty: %q", q.Difficulty)
	}
	if len(q.Subcategories) != 2 || q.Subcategories[0].Name != "00-basic-concepts" {
		t.Fatalf("subcategories: %+v", q.Subcategories)
	}
	basics := q.Subcategories[0]
	if basics.FileCount() != 2 || filepath.Base(basics.Files[0]) != "01-a.sql" {
		t.Fatalf("files: %v", basics.Files)
	}
	if basics.Difficulty != "" {
		t.Fatalf("basics should inherit, got %q", basics.Difficulty)
	}
	if q.Subcategories[1].Difficulty != "Intermediate" {
		t.Fatalf("normalization override: %q", q.Subcategories[1].Difficulty)
	}
	if basics.Description != "Basic Concepts: 2 SQL exercise files" {
		t.Fatalf("description: %q", basics.Description)
	}

	if got := len(AllFiles(quests)); got != 4 {
		t.Fatalf("AllFiles: %d", got)
	}
	if got := FilterQuests(quests, []string{"performance tuning"}); len(got) != 1 || got[0].Name != "2-performance-tuning" {
		t.Fatalf("FilterQuests: %+v", got)
	}
}

func TestDiscover_MissingRoot(t *testing.T) {
	if _, err := Discover(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatalf("expected error for missing root")
	}
}

func TestDifficultyForOrder(t *testing.T) {
	for order, want := range map[int]string{0: "Beginner", 2: "Beginner", 3: "Intermediate", 5: "Advanced", 9: "Advanced"} {
		if got := DifficultyForOrder(order); got != want {
			t.Fatalf("order %d: want %s got %s", order, want, got)
		}
	}
}
