package analysis

import (
	"fmt"
	"strings"

	"github.com/brunolnetto/sql-adventure-sub001/internal/modules/evaluation/metadata"
	"github.com/brunolnetto/sql-adventure-sub001/internal/modules/evaluation/patterns"
	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/promptstyle"
	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/sqlexec"
)

const (
	maxSQLRunes      = 12000
	maxMessages      = 10
	maxMessageRunes  = 300
	maxPatternsShown = 15
)

func promptTechnical(in Input) (system string, user string) {
	system = strings.TrimSpace(`
You review the technical quality of one educational SQL exercise file.
You must return ONLY valid JSON matching the schema (no markdown fences, no extra keys).

Rules:
- score is 0..10: 9-10 exemplary, 7-8 solid, 5-6 acceptable with issues, 3-4 weak, 0-2 broken.
- Judge correctness, clarity, idiomatic PostgreSQL usage and performance.
- Use the EXECUTION block as evidence: errors lower the score unless the file intentionally demonstrates failures.
- strengths and weaknesses are short phrases (at most 5 each).
- syntax_quality reflects formatting, naming and consistency.
- performance_considerations names indexes, scans or rewrites that matter; say "none" when nothing applies.
`)
	return system, userPrompt(in)
}

func promptEducational(in Input) (system string, user string) {
	system = strings.TrimSpace(`
You review the educational value of one SQL exercise file written for learners.
You must return ONLY valid JSON matching the schema (no markdown fences, no extra keys).

Rules:
- score is 0..10 and measures how well the file teaches its stated PURPOSE and CONCEPTS.
- real_world_relevance and pedagogical_value are High, Medium or Low.
- overall_feedback is 2-4 sentences addressed to the exercise author.
- difficulty_level is your own judgement; it may differ from the declared DIFFICULTY.
- time_estimate is a learner-facing range such as "10-15 min".
- recommendations: at most 5 concrete, actionable improvements ordered by priority.
`)
	return system, userPrompt(in)
}

func userPrompt(in Input) string {
	var b strings.Builder
	md := in.Metadata
	fmt.Fprintf(&b, "FILE: %s\n", md.FileName)
	fmt.Fprintf(&b, "QUEST: %s\n", metadata.DisplayName(md.Quest))
	fmt.Fprintf(&b, "SUBCATEGORY: %s\n", metadata.DisplayName(md.Subcategory))
	fmt.Fprintf(&b, "PURPOSE: %s\n", md.Purpose)
	fmt.Fprintf(&b, "DIFFICULTY: %s\n", md.Difficulty)
	if len(md.Concepts) > 0 {
		fmt.Fprintf(&b, "CONCEPTS: %s\n", strings.Join(md.Concepts, ", "))
	}

	b.WriteString("\nDETECTED_PATTERNS:\n")
	b.WriteString(formatPatterns(in.Patterns))

	b.WriteString("\n")
	b.WriteString(promptstyle.Fence("execution", formatExecution(in.Execution)))

	b.WriteString("\n")
	b.WriteString(promptstyle.Fence("sql", truncate(strings.TrimSpace(in.SQL), maxSQLRunes)))
	return b.String()
}

func formatPatterns(ms []patterns.Match) string {
	if len(ms) == 0 {
		return "- none\n"
	}
	var b strings.Builder
	for i, m := range ms {
		if i == maxPatternsShown {
			fmt.Fprintf(&b, "- ... %d more\n", len(ms)-maxPatternsShown)
			break
		}
		fmt.Fprintf(&b, "- %s (%.2f)\n", m.Name, m.Confidence)
	}
	return b.String()
}

func formatExecution(r sqlexec.Result) string {
	if !r.Executed {
		return "not executed\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "success=%t statements=%d result_sets=%d time_ms=%d errors=%d warnings=%d\n",
		r.Success, r.StatementsRun, r.ResultSets, r.ExecutionTimeMS, r.Errors, r.Warnings)
	writeMessages(&b, "error", r.ErrorMessages)
	writeMessages(&b, "warning", r.WarningMessages)
	return b.String()
}

func writeMessages(b *strings.Builder, kind string, msgs []string) {
	for i, m := range msgs {
		if i == maxMessages {
			fmt.Fprintf(b, "%s: ... %d more\n", kind, len(msgs)-maxMessages)
			return
		}
		fmt.Fprintf(b, "%s: %s\n", kind, truncate(m, maxMessageRunes))
	}
}

func truncate(s string, max int) string {
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	return string(rs[:max]) + "…"
}
