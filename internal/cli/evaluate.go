package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/brunolnetto/sql-adventure-sub001/internal/app"
	"github.com/brunolnetto/sql-adventure-sub001/internal/modules/evaluation/discovery"
)

var errInterrupted = errors.New("evaluation interrupted")

// EvaluateCmd returns the evaluate command
func EvaluateCmd() *cobra.Command {
	var (
		quests      []string
		concurrency int
		limit       int
		asJSON      bool
		skipSync    bool
	)

	cmd := &cobra.Command{
		Use:   "evaluate [paths...]",
		Short: "Evaluate SQL exercise files",
		Long: `Evaluate SQL files and store one evaluation per file.

With no paths every file under QUESTS_ROOT is evaluated. Paths may be files
or directories; directories are searched recursively for .sql files.

Examples:
  sqleval evaluate
  sqleval evaluate --quest 1-data-modeling --concurrency 8
  sqleval evaluate quests/2-performance-tuning/00-indexing`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				files, discovered, err := resolveFiles(a.Cfg.QuestsRoot, args, quests)
				if err != nil {
					return err
				}
				if limit > 0 && len(files) > limit {
					files = files[:limit]
				}
				if len(files) == 0 {
					return fmt.Errorf("no SQL files to evaluate")
				}

				if !skipSync {
					rep, err := a.Services.CatalogSync.Sync(ctx, discovered, a.Services.Patterns.Definitions())
					if err != nil {
						a.Log.Warn("Catalog sync incomplete", "error", err)
					}
					if !asJSON {
						printSyncReport(cmd.OutOrStdout(), rep)
					}
				}

				rep := a.Services.Pipeline.WithConcurrency(concurrency).Run(ctx, files)
				if asJSON {
					if err := writeJSON(cmd.OutOrStdout(), rep); err != nil {
						return err
					}
				} else {
					printBatchReport(cmd.OutOrStdout(), rep)
				}

				switch {
				case rep.Interrupted:
					return errInterrupted
				case rep.Failed > 0:
					return fmt.Errorf("%d of %d files failed", rep.Failed, rep.Total)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&quests, "quest", "q", nil, "Only evaluate these quests (name or display name)")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 0, "Files evaluated in parallel (default EVAL_CONCURRENCY)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Evaluate at most this many files")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the batch report as JSON")
	cmd.Flags().BoolVar(&skipSync, "no-sync", false, "Skip catalog sync before evaluating")

	return cmd
}

// resolveFiles turns CLI arguments into an ordered file list. With no paths it
// discovers root; discovered quests are returned for catalog sync.
func resolveFiles(root string, paths []string, quests []string) ([]string, []discovery.Quest, error) {
	if len(paths) == 0 {
		found, err := discovery.Discover(root)
		if err != nil {
			return nil, nil, err
		}
		found = discovery.FilterQuests(found, quests)
		if len(found) == 0 && len(quests) > 0 {
			return nil, nil, fmt.Errorf("no quest matches %s", strings.Join(quests, ", "))
		}
		return discovery.AllFiles(found), found, nil
	}

	var files []string
	seen := map[string]bool{}
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			// Unreadable paths stay in the batch and are reported as skipped.
			add(p)
			continue
		}
		var found []string
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".sql") {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, nil, fmt.Errorf("walk %s: %w", p, err)
		}
		sort.Strings(found)
		for _, f := range found {
			add(f)
		}
	}
	return files, nil, nil
}
