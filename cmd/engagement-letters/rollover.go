// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/engagement-letters/internal/docx"
	"github.com/pdiddy/engagement-letters/internal/history"
	"github.com/pdiddy/engagement-letters/internal/ids"
	"github.com/pdiddy/engagement-letters/internal/rollover"
	"github.com/pdiddy/engagement-letters/internal/settings"
	"github.com/pdiddy/engagement-letters/pkg/types"
)

var rolloverCmd = &cobra.Command{
	Use:   "rollover [files or directories...]",
	Short: "Roll engagement letters forward to the next year",
	Long: `Rollover rewrites each Word letter for the coming year: dates advance by
one year, rate-disclosure sentences are replaced with the fee schedule from
the user settings, and the year in the filename is incremented. Directories
are expanded to the files they contain. Files that are not .docx letters
are skipped.

Results are recorded in the processing history unless --no-history is set.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRollover,
}

func init() {
	rolloverCmd.Flags().String("out", "", "output directory (default: PROCESSED_FILES_DIRECTORY setting or paths.processed_dir)")
	rolloverCmd.Flags().Bool("no-history", false, "do not record results in the processing history")

	rootCmd.AddCommand(rolloverCmd)
}

func runRollover(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	paths, err := expandArgs(args)
	if err != nil {
		return err
	}

	outDir, _ := cmd.Flags().GetString("out")
	if outDir == "" {
		outDir = processedDir(cfg)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	opts, err := settings.LoadRateOptions(cfg.Paths.SettingsFile)
	if err != nil {
		return err
	}

	var store *history.Store
	if noHistory, _ := cmd.Flags().GetBool("no-history"); !noHistory {
		store, err = history.Open(cfg.History)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	out := cmd.OutOrStdout()
	runID := ids.New()
	ctx := context.Background()
	p := rollover.NewProcessor(docx.Loader{})
	result := p.ProcessBatch(paths, outDir, opts, func(_, _ int, res rollover.Result) {
		rollover.WriteStatus(out, res)
		if store == nil {
			return
		}
		if _, err := store.Record(ctx, res.Record(ids.New(), runID, time.Now())); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "recording history for %s: %v\n", res.Filename, err)
		}
	})
	rollover.WriteSummary(out, result)
	if store != nil {
		fmt.Fprintf(out, "Run: %s\n", runID)
	}

	if result.HasFailures() {
		return fmt.Errorf("%d letter(s) failed", result.Failed)
	}
	return nil
}

// expandArgs replaces each directory argument with the regular files it
// contains, sorted by name.
func expandArgs(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", arg, err)
		}
		var files []string
		for _, e := range entries {
			if e.Type().IsRegular() {
				files = append(files, filepath.Join(arg, e.Name()))
			}
		}
		sort.Strings(files)
		out = append(out, files...)
	}
	return out, nil
}

// processedDir returns the PROCESSED_FILES_DIRECTORY user setting when
// present, else paths.processed_dir.
func processedDir(cfg types.AppConfig) string {
	if list, err := settings.Load(cfg.Paths.SettingsFile); err == nil {
		if dir, ok := settings.String(list, settings.ProcessedFilesDirectory); ok && dir != "" {
			return dir
		}
	}
	return cfg.Paths.ProcessedDir
}
