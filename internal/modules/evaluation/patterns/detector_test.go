package patterns

import (
	"testing"
)

func mustDetector(t *testing.T) *Detector {
	t.Helper()
	cat, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog: %v", err)
	}
	return NewDetector(cat)
}

func byName(ms []Match) map[string]Match {
	out := make(map[string]Match, len(ms))
	for _, m := range ms {
		out[m.Name] = m
	}
	return out
}

func TestDetect_CreateInsertSelect(t *testing.T) {
	d := mustDetector(t)
	got := byName(d.Detect("CREATE TABLE t (id INT PRIMARY KEY); INSERT INTO t VALUES (1); SELECT * FROM t;"))
	for _, name := range []string{"table_creation", "basic_insert", "basic_select"} {
		m, ok := got[name]
		if !ok {
			t.Fatalf("expected %s to be detected, got %+v", name, got)
		}
		if m.Confidence < 0.7 {
			t.Fatalf("%s confidence too low: %v", name, m.Confidence)
		}
		if m.Evidence == "" {
			t.Fatalf("%s missing evidence", name)
		}
	}
	if _, ok := got["primary_key"]; !ok {
		t.Fatalf("expected primary_key")
	}
	if _, ok := got["window_function"]; ok {
		t.Fatalf("unexpected window_function")
	}
}

func TestDetect_IgnoresCommentsAndStrings(t *testing.T) {
	d := mustDetector(t)
	sql := `-- CREATE TABLE in a comment
/* outer /* nested WITH RECURSIVE */ still comment */
SELECT 'insert into fake values (1)' AS label FROM dual;`
	got := byName(d.Detect(sql))
	for _, name := range []string{"table_creation", "recursive_cte", "basic_insert"} {
		if _, ok := got[name]; ok {
			t.Fatalf("%s should not be detected from comments or literals: %+v", name, got)
		}
	}
	if _, ok := got["basic_select"]; !ok {
		t.Fatalf("expected basic_select")
	}
}

func TestDetect_OrderedAndDeterministic(t *testing.T) {
	d := mustDetector(t)
	sql := `WITH RECURSIVE tree AS (
  SELECT id, parent_id FROM node WHERE parent_id IS NULL
  UNION ALL SELECT n.id, n.parent_id FROM node n INNER JOIN tree t ON n.parent_id = t.id
)
SELECT id, ROW_NUMBER() OVER (ORDER BY id) FROM tree ORDER BY id LIMIT 10;`
	first := d.Detect(sql)
	second := d.Detect(sql)
	if len(first) == 0 || len(first) != len(second) {
		t.Fatalf("unexpected lengths %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("non-deterministic output at %d: %+v vs %+v", i, first[i], second[i])
		}
		if first[i].Confidence < 0 || first[i].Confidence > 1 {
			t.Fatalf("confidence out of range: %+v", first[i])
		}
		if i > 0 && first[i].Confidence > first[i-1].Confidence {
			t.Fatalf("not ordered by confidence: %+v before %+v", first[i-1], first[i])
		}
	}
	got := byName(first)
	for _, name := range []string{"recursive_cte", "common_table_expression", "window_function", "ranking", "inner_join", "set_operations", "filtering", "pagination"} {
		if _, ok := got[name]; !ok {
			t.Fatalf("expected %s in %+v", name, first)
		}
	}
}

func TestDetect_MaxConfidencePerPattern(t *testing.T) {
	d := mustDetector(t)
	got := byName(d.Detect("SELECT 1; SELECT a FROM b;"))
	if got["basic_select"].Confidence != 0.85 {
		t.Fatalf("expected structural rule to win, got %+v", got["basic_select"])
	}
	ms := d.Detect("SELECT a FROM b; SELECT c FROM d;")
	seen := map[string]bool{}
	for _, m := range ms {
		if seen[m.Name] {
			t.Fatalf("duplicate match for %s", m.Name)
		}
		seen[m.Name] = true
	}
}

func TestDetect_EmptyInput(t *testing.T) {
	d := mustDetector(t)
	if got := d.Detect("  -- only a comment\n"); len(got) != 0 {
		t.Fatalf("expected no matches, got %+v", got)
	}
}
