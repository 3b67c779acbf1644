package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/brunolnetto/sql-adventure-sub001/internal/domain/events"
	"github.com/brunolnetto/sql-adventure-sub001/internal/modules/evaluation/analytics"
	"github.com/brunolnetto/sql-adventure-sub001/internal/modules/evaluation/catalogsync"
	"github.com/brunolnetto/sql-adventure-sub001/internal/modules/evaluation/pipeline"
)

var (
	headerColor = color.New(color.Bold, color.FgHiWhite)
	okColor     = color.New(color.FgGreen)
	warnColor   = color.New(color.FgYellow)
	errColor    = color.New(color.FgRed)
	dimColor    = color.New(color.FgHiBlack)
)

func okMark() string { return okColor.Sprint("✓") }

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func gradeColor(grade string) *color.Color {
	switch grade {
	case "A":
		return color.New(color.FgHiGreen)
	case "B":
		return color.New(color.FgGreen)
	case "C":
		return color.New(color.FgYellow)
	case "D":
		return color.New(color.FgHiRed)
	default:
		return color.New(color.FgRed)
	}
}

func healthColor(health string) *color.Color {
	switch health {
	case analytics.HealthHealthy:
		return okColor
	case analytics.HealthNeedsAttention, analytics.HealthNoData:
		return warnColor
	default:
		return errColor
	}
}

func statusLabel(status string) string {
	switch status {
	case pipeline.StatusSucceeded:
		return okColor.Sprint("ok")
	case pipeline.StatusSkipped:
		return warnColor.Sprint("skipped")
	case pipeline.StatusCanceled:
		return dimColor.Sprint("canceled")
	default:
		return errColor.Sprint("failed")
	}
}

func printSyncReport(w io.Writer, rep catalogsync.Report) {
	headerColor.Fprintln(w, "Catalog sync")
	fmt.Fprintf(w, "  Quests:        %d created, %d updated, %d unchanged\n", rep.QuestsCreated, rep.QuestsUpdated, rep.QuestsUnchanged)
	fmt.Fprintf(w, "  Subcategories: %d created, %d updated, %d unchanged\n", rep.SubcategoriesCreated, rep.SubcategoriesUpdated, rep.SubcategoriesUnchanged)
	fmt.Fprintf(w, "  Patterns:      %d created, %d existing\n", rep.PatternsCreated, rep.PatternsExisting)
	if len(rep.FailedQuests) > 0 {
		errColor.Fprintf(w, "  Failed quests: %s\n", strings.Join(rep.FailedQuests, ", "))
	}
	fmt.Fprintln(w)
}

func printBatchReport(w io.Writer, rep pipeline.BatchReport) {
	headerColor.Fprintln(w, "Evaluation batch")
	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	for _, f := range rep.Files {
		grade := "-"
		if f.Grade != "" {
			grade = gradeColor(f.Grade).Sprintf("%s (%d)", f.Grade, f.Score)
		}
		var notes []string
		if f.UsedFallback {
			notes = append(notes, "fallback")
		}
		if f.Corrected {
			notes = append(notes, "corrected")
		}
		if f.Error != "" {
			notes = append(notes, f.Error)
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", statusLabel(f.Status), grade, f.FilePath, dimColor.Sprint(strings.Join(notes, "; ")))
	}
	_ = tw.Flush()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Total %d  ", rep.Total)
	okColor.Fprintf(w, "succeeded %d  ", rep.Succeeded)
	errColor.Fprintf(w, "failed %d  ", rep.Failed)
	warnColor.Fprintf(w, "skipped %d  ", rep.Skipped)
	fmt.Fprintf(w, "canceled %d  fallback %d  corrected %d\n", rep.Canceled, rep.Fallback, rep.Corrected)
	if rep.Interrupted {
		warnColor.Fprintln(w, "  Batch interrupted before all files finished.")
	}
	fmt.Fprintf(w, "  Duration %s\n", rep.FinishedAt.Sub(rep.StartedAt).Round(time.Millisecond))
}

func printSummary(w io.Writer, s analytics.Summary) {
	headerColor.Fprintln(w, "Overview")
	fmt.Fprintf(w, "  Quests %d  Subcategories %d  Patterns %d  Evaluations %d  Files %d\n",
		s.Overview.Quests, s.Overview.Subcategories, s.Overview.Patterns, s.Overview.Evaluations, s.Overview.FilesEvaluated)
	fmt.Fprintln(w)

	headerColor.Fprintln(w, "Quality")
	fmt.Fprintf(w, "  Average score %.2f (technical %.2f, educational %.2f)\n",
		s.Quality.AverageScore, s.Quality.AverageTechnicalScore, s.Quality.AverageEducationalScore)
	fmt.Fprintf(w, "  Success rate %.0f%%  Execution success %.0f%%\n", s.Quality.SuccessRate*100, s.Quality.ExecutionSuccessRate*100)
	fmt.Fprintf(w, "  Grades  %s\n", formatCounts(s.Quality.GradeCounts, []string{"A", "B", "C", "D", "F"}))
	fmt.Fprintf(w, "  Issues  %s\n", formatCounts(s.Quality.PriorityCounts, []string{"High", "Medium", "Low"}))
	fmt.Fprintf(w, "  Fallbacks %d  Corrected %d\n", s.Quality.FallbackCount, s.Quality.CorrectedCount)
	fmt.Fprintln(w)

	headerColor.Fprintln(w, "Activity")
	fmt.Fprintf(w, "  Last day %d  Last week %d  Last month %d\n", s.Activity.LastDay, s.Activity.LastWeek, s.Activity.LastMonth)
	fmt.Fprintln(w)

	if len(s.Quests) > 0 {
		headerColor.Fprintln(w, "Quests")
		tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
		for _, q := range s.Quests {
			fmt.Fprintf(tw, "  %s\t%d evals\t%d files\tavg %.2f\n", q.QuestName, q.EvaluationCount, q.FileCount, q.AvgScore)
		}
		_ = tw.Flush()
		fmt.Fprintln(w)
	}

	if len(s.TopFiles) > 0 {
		headerColor.Fprintln(w, "Top files")
		tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
		for _, f := range s.TopFiles {
			fmt.Fprintf(tw, "  %s\t%s\t%+d\n", gradeColor(f.LatestGrade).Sprintf("%s (%d)", f.LatestGrade, f.LatestScore), f.FilePath, f.Improvement())
		}
		_ = tw.Flush()
		fmt.Fprintln(w)
	}

	if len(s.Patterns) > 0 {
		headerColor.Fprintln(w, "Patterns")
		tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
		for _, p := range s.Patterns {
			fmt.Fprintf(tw, "  %s\t%s\t%d uses\tconfidence %.2f\n", p.PatternName, dimColor.Sprint(p.Category), p.UsageCount, p.AvgConfidence)
		}
		_ = tw.Flush()
		fmt.Fprintln(w)
	}

	headerColor.Fprintln(w, "Insights")
	fmt.Fprintf(w, "  System health: %s\n", healthColor(s.Insights.SystemHealth).Sprint(s.Insights.SystemHealth))
	if s.Insights.MostActiveQuest != "" {
		fmt.Fprintf(w, "  Most active quest: %s\n", s.Insights.MostActiveQuest)
	}
	if s.Insights.HighestScoringQuest != "" {
		fmt.Fprintf(w, "  Highest scoring quest: %s\n", s.Insights.HighestScoringQuest)
	}
	for _, n := range s.Insights.Notes {
		fmt.Fprintf(w, "  - %s\n", n)
	}
}

func printEvent(w io.Writer, ev events.Event) {
	ts := dimColor.Sprint(ev.OccurredAt.Local().Format("15:04:05"))
	switch ev.Type {
	case events.TypeCompleted:
		grade := gradeColor(ev.Grade).Sprintf("%s (%d)", ev.Grade, ev.Score)
		extra := ""
		if ev.UsedFallback {
			extra = warnColor.Sprint(" fallback")
		}
		fmt.Fprintf(w, "%s %s %s %s%s\n", ts, okMark(), grade, ev.FilePath, extra)
	case events.TypeSkipped:
		fmt.Fprintf(w, "%s %s %s %s\n", ts, warnColor.Sprint("-"), ev.FilePath, dimColor.Sprint(ev.Error))
	default:
		fmt.Fprintf(w, "%s %s %s %s\n", ts, errColor.Sprint("✗"), ev.FilePath, dimColor.Sprint(ev.Error))
	}
}

// formatCounts renders counts in keys order, then any extra keys sorted.
func formatCounts(counts map[string]int64, keys []string) string {
	seen := map[string]bool{}
	var parts []string
	for _, k := range keys {
		seen[k] = true
		parts = append(parts, fmt.Sprintf("%s:%d", k, counts[k]))
	}
	var extra []string
	for k := range counts {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		parts = append(parts, fmt.Sprintf("%s:%d", k, counts[k]))
	}
	return strings.Join(parts, " ")
}
