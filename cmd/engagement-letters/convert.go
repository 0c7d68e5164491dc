// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/engagement-letters/internal/convert"
	"github.com/pdiddy/engagement-letters/internal/rollover"
)

var convertCmd = &cobra.Command{
	Use:   "convert [files or directories...]",
	Short: "Print Word letters to PDF",
	Long: `Convert prints each Word letter to PDF. The container backend runs the
docx2pdf image with podman or docker; the soffice backend runs a local
LibreOffice. PDFs are named after the letter with underscores shown as
spaces.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().String("backend", "", "conversion backend: container or soffice (default container)")
	convertCmd.Flags().String("image", "", "container image for the container backend (default docx2pdf:latest)")
	convertCmd.Flags().String("out", "", "output directory (default: PROCESSED_FILES_DIRECTORY setting or paths.processed_dir)")
	_ = viper.BindPFlag("conversion.backend", convertCmd.Flags().Lookup("backend"))
	_ = viper.BindPFlag("conversion.image", convertCmd.Flags().Lookup("image"))

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
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
	if len(letters) == 0 {
		return fmt.Errorf("no Word documents to convert")
	}

	outDir, _ := cmd.Flags().GetString("out")
	if outDir == "" {
		outDir = processedDir(cfg)
	}

	ctx := context.Background()
	c, err := convert.New(ctx, cfg.Conversion)
	if err != nil {
		return err
	}

	result := convert.ConvertBatch(ctx, c, letters, outDir, os.Stdout)
	if result.HasFailures() {
		return fmt.Errorf("%d letter(s) failed conversion", result.Failed)
	}
	return nil
}
