// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/engagement-letters/internal/history"
	"github.com/pdiddy/engagement-letters/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Query the processing history",
	Long: `History reads the SQLite log of processed letters. Every rollover, from
the web UI or the CLI, records one row per file grouped by run.`,
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent processing records",
	RunE:  runHistoryList,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.Query(context.Background(), historyQueryFromFlags(cmd))
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return writeJSONOut(os.Stdout, records)
	}
	if len(records) == 0 {
		fmt.Println("No records found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-20s  %-9s  %-45s  %s\n", "Processed", "Status", "File", "Message")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))
	for _, r := range records {
		name := r.Filename
		if len(name) > 45 {
			name = name[:42] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-20s  %-9s  %-45s  %s\n",
			r.ProcessedAt.Local().Format("2006-01-02 15:04:05"), r.Status, name, r.Message)
	}
	fmt.Fprintf(os.Stdout, "\n%d records\n", len(records))
	return nil
}

// --- runs subcommand ---

var historyRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Summarize recent runs",
	RunE:  runHistoryRuns,
}

func runHistoryRuns(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.Runs(context.Background(), limit)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return writeJSONOut(os.Stdout, runs)
	}
	if len(runs) == 0 {
		fmt.Println("No runs found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-26s  %-20s  %7s  %9s  %6s  %7s\n",
		"Run", "Started", "Updated", "Unchanged", "Failed", "Skipped")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 86))
	for _, r := range runs {
		fmt.Fprintf(os.Stdout, "%-26s  %-20s  %7d  %9d  %6d  %7d\n",
			r.RunID, r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Updated, r.Unchanged, r.Failed, r.Skipped)
	}
	return nil
}

// --- export subcommand ---

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the processing history to YAML and JSON",
	Long: `Export writes the matching records to history.yaml and history.json in
the --dir directory. Supports the same filter flags as list.`,
	RunE: runHistoryExport,
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	dir, _ := cmd.Flags().GetString("dir")
	n, err := store.Export(context.Background(), dir, historyQueryFromFlags(cmd))
	if err != nil {
		return err
	}
	fmt.Printf("Exported %d records to %s\n", n, dir)
	return nil
}

// --- shared helpers ---

func openHistory() (*history.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return history.Open(cfg.History)
}

func historyQueryFromFlags(cmd *cobra.Command) history.QueryOptions {
	runID, _ := cmd.Flags().GetString("run")
	status, _ := cmd.Flags().GetString("status")
	limit, _ := cmd.Flags().GetInt("limit")
	return history.QueryOptions{
		RunID:  runID,
		Status: types.ProcessingStatus(status),
		Limit:  limit,
	}
}

func writeJSONOut(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	historyCmd.PersistentFlags().Int("limit", 0, "maximum results (0 = use history.max_results)")

	for _, c := range []*cobra.Command{historyListCmd, historyExportCmd} {
		c.Flags().String("run", "", "filter by run ID")
		c.Flags().String("status", "", "filter by status: updated, unchanged, failed, skipped")
	}
	historyListCmd.Flags().Bool("json", false, "output results as JSON")
	historyRunsCmd.Flags().Bool("json", false, "output results as JSON")
	historyExportCmd.Flags().String("dir", "temp", "directory for history.yaml and history.json")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyRunsCmd)
	historyCmd.AddCommand(historyExportCmd)

	rootCmd.AddCommand(historyCmd)
}
