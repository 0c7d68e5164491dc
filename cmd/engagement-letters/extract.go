// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/engagement-letters/internal/entities"
	"github.com/pdiddy/engagement-letters/internal/rollover"
	"github.com/pdiddy/engagement-letters/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract [files or directories...]",
	Short: "List the client address and entities of each letter",
	Long: `Extract reads each Word letter and reports the client mailing address and
the rows of its "Name of Entity / Type of Return" table. Output is a table
by default, or YAML or JSON with --format.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().String("format", "table", "output format: table, yaml, or json")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	paths, err := expandArgs(args)
	if err != nil {
		return err
	}
	letters := paths[:0]
	for _, p := range paths {
		if rollover.IsLetterFile(p) {
			letters = append(letters, p)
		}
	}

	switch format {
	case "table", "yaml", "json":
	default:
		return fmt.Errorf("unsupported format %q: use table, yaml, or json", format)
	}

	out := cmd.OutOrStdout()
	results, summary := entities.ExtractAll(letters, cmd.ErrOrStderr())
	switch format {
	case "yaml":
		if err := entities.WriteYAML(out, results); err != nil {
			return err
		}
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	default:
		writeExtractionTable(out, results)
	}

	if summary.HasFailures() {
		return fmt.Errorf("%d letter(s) could not be read", summary.Failed)
	}
	return nil
}

func writeExtractionTable(w io.Writer, results []types.Extraction) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No letters found.")
		return
	}
	for _, r := range results {
		fmt.Fprintf(w, "%s\n", r.Filename)
		fmt.Fprintf(w, "  Address:  %s\n", strings.ReplaceAll(r.Address, "\n", ", "))
		if len(r.Entities) == 0 {
			fmt.Fprintln(w, "  Entities: none")
			continue
		}
		fmt.Fprintf(w, "  %-40s  %s\n", "Name of Entity", "Type of Return")
		fmt.Fprintf(w, "  %s\n", strings.Repeat("-", 60))
		for _, e := range r.Entities {
			fmt.Fprintf(w, "  %-40s  %s\n", e.NameOfEntity, e.TypeOfReturn)
		}
	}
	fmt.Fprintf(w, "\n%d letters\n", len(results))
}
