package metadata

import (
	"reflect"
	"testing"
)

func TestExtract_HeaderAndPath(t *testing.T) {
	content := `-- =====================================================
-- Basic Table Creation
-- =====================================================
--
-- PURPOSE: Demonstrate creating tables with constraints
-- DIFFICULTY: 🟢 Beginner (5-10 min)
-- CONCEPTS: CREATE TABLE, PRIMARY KEY, create table
-- =====================================================

CREATE TABLE t (id INT PRIMARY KEY);
-- PURPOSE: ignored, not part of the header
`
	md := Extract("repo/quests/1-data-modeling/00-basic-concepts/01-basic-table-creation.sql", content)

	if md.Quest != "1-data-modeling" || md.Subcategory != "00-basic-concepts" || md.FileName != "01-basic-table-creation.sql" {
		t.Fatalf("unexpected path parts: %+v", md)
	}
	if md.Purpose != "Demonstrate creating tables with constraints" {
		t.Fatalf("purpose: %q", md.Purpose)
	}
	if md.Difficulty != "Beginner" || md.TimeEstimate != "5-10 min" {
		t.Fatalf("difficulty: %q time: %q", md.Difficulty, md.TimeEstimate)
	}
	if !reflect.DeepEqual(md.Concepts, []string{"CREATE TABLE", "PRIMARY KEY"}) {
		t.Fatalf("concepts: %#v", md.Concepts)
	}
}

func TestExtract_Defaults(t *testing.T) {
	md := Extract("scratch.sql", "SELECT 1;")
	if md.Quest != Unknown || md.Subcategory != Unknown {
		t.Fatalf("expected unknown quest/subcategory, got %+v", md)
	}
	if md.Difficulty != "Unknown" {
		t.Fatalf("difficulty: %q", md.Difficulty)
	}
	if md.Purpose != "Scratch" {
		t.Fatalf("purpose: %q", md.Purpose)
	}
	if md.Concepts == nil || len(md.Concepts) != 0 {
		t.Fatalf("concepts should be empty, got %#v", md.Concepts)
	}

	md = Extract("", "")
	if md.FileName != Unknown || md.Purpose != Unknown {
		t.Fatalf("empty input: %+v", md)
	}
}

func TestExtract_BlockCommentHeader(t *testing.T) {
	content := "/*\n * Window ranking\n * DIFFICULTY: advanced\n */\nSELECT 1;"
	md := Extract("quests/5-window-functions/02-ranking/rank.sql", content)
	if md.Difficulty != "Advanced" {
		t.Fatalf("difficulty: %q", md.Difficulty)
	}
	if md.Purpose != "Window ranking" {
		t.Fatalf("purpose: %q", md.Purpose)
	}
	if !reflect.DeepEqual(md.Concepts, []string{"Ranking"}) {
		t.Fatalf("concepts: %#v", md.Concepts)
	}
}

func TestSplitPath_NoQuestsSegment(t *testing.T) {
	q, s, f := SplitPath("a/b/c/d.sql")
	if q != "b" || s != "c" || f != "d.sql" {
		t.Fatalf("got %q %q %q", q, s, f)
	}
}

func TestOrderIndexAndDisplayName(t *testing.T) {
	cases := []struct {
		in    string
		order int
		name  string
	}{
		{"1-data-modeling", 1, "Data Modeling"},
		{"10_json_operations", 10, "Json Operations"},
		{"recursive-cte", 0, "Recursive Cte"},
		{"", 0, Unknown},
	}
	for _, tc := range cases {
		if got := OrderIndex(tc.in); got != tc.order {
			t.Fatalf("OrderIndex(%q): want %d got %d", tc.in, tc.order, got)
		}
		if got := DisplayName(tc.in); got != tc.name {
			t.Fatalf("DisplayName(%q): want %q got %q", tc.in, tc.name, got)
		}
	}
}

func TestParseDifficulty_Marks(t *testing.T) {
	d, te := ParseDifficulty("🔴 (45-60 min)")
	if d != "Expert" || te != "45-60 min" {
		t.Fatalf("got %q %q", d, te)
	}
	if d, _ := ParseDifficulty("hard-ish"); d != "Unknown" {
		t.Fatalf("got %q", d)
	}
}

func TestParseDifficulty_SeveralMarksLeftmostWins(t *testing.T) {
	for i := 0; i < 50; i++ {
		if d, _ := ParseDifficulty("🟠 then 🟢 (20 min)"); d != "Advanced" {
			t.Fatalf("run %d: got %q", i, d)
		}
		if d, _ := ParseDifficulty("🟢 🔴"); d != "Beginner" {
			t.Fatalf("run %d: got %q", i, d)
		}
	}
}
