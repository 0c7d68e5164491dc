// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/engagement-letters/internal/signature"
)

var signCmd = &cobra.Command{
	Use:   "sign [files or directories...]",
	Short: "Stamp the partner signature onto printed letters",
	Long: `Sign finds the "Very truly yours," closing in each PDF and stamps the
signature image just above the signer's name. The signature is page one of
the PDF at signature.path. Signed copies are written next to the other
processed files with " - Signed" added to the name.

Word boxes are read with poppler's pdftotext, which must be on PATH.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSign,
}

func init() {
	signCmd.Flags().String("signature", "", "signature PDF (default signature.pdf)")
	signCmd.Flags().String("out", "", "output directory (default: PROCESSED_FILES_DIRECTORY setting or paths.processed_dir)")
	_ = viper.BindPFlag("signature.path", signCmd.Flags().Lookup("signature"))

	rootCmd.AddCommand(signCmd)
}

func runSign(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	paths, err := expandArgs(args)
	if err != nil {
		return err
	}
	pdfs := paths[:0]
	for _, p := range paths {
		if strings.EqualFold(filepath.Ext(p), ".pdf") {
			pdfs = append(pdfs, p)
		}
	}
	if len(pdfs) == 0 {
		return fmt.Errorf("no PDF files to sign")
	}

	outDir, _ := cmd.Flags().GetString("out")
	if outDir == "" {
		outDir = processedDir(cfg)
	}

	loc, st, err := newSigner(cfg.Signature)
	if err != nil {
		return err
	}

	result := signature.SignBatch(context.Background(), loc, st, pdfs, outDir, os.Stdout)
	if result.HasFailures() {
		return fmt.Errorf("%d PDF(s) failed signing", result.Failed)
	}
	return nil
}
