// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert prints Word letters to PDF with pluggable backends.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/engagement-letters/internal/container"
	"github.com/pdiddy/engagement-letters/internal/rollover"
	"github.com/pdiddy/engagement-letters/pkg/types"
)

// Converter prints the .docx at docxPath to a PDF at pdfPath. Different
// backends (a docx2pdf container, a local LibreOffice) implement it.
type Converter interface {
	Convert(ctx context.Context, docxPath, pdfPath string) error
}

// PrintError reports a letter that could not be printed.
type PrintError struct {
	// Name is the display form of the letter's filename.
	Name string
	Err  error
}

func (e *PrintError) Error() string {
	return fmt.Sprintf("Unable to print word document: %s: %v", e.Name, e.Err)
}

func (e *PrintError) Unwrap() error { return e.Err }

// PDFName returns the PDF filename for a letter: the display form of the
// .docx stem with a .pdf extension.
func PDFName(docxPath string) string {
	name := rollover.DisplayFilename(filepath.Base(docxPath))
	return strings.TrimSuffix(name, filepath.Ext(name)) + ".pdf"
}

// ConvertDocument prints docxPath into outDir and returns the path of the
// written PDF.
func ConvertDocument(ctx context.Context, c Converter, docxPath, outDir string) (string, error) {
	name := rollover.DisplayFilename(filepath.Base(docxPath))
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", &PrintError{Name: name, Err: err}
	}
	pdfPath := filepath.Join(outDir, PDFName(docxPath))
	if err := c.Convert(ctx, docxPath, pdfPath); err != nil {
		return "", &PrintError{Name: name, Err: err}
	}
	info, err := os.Stat(pdfPath)
	if err != nil {
		return "", &PrintError{Name: name, Err: err}
	}
	if info.Size() == 0 {
		return "", &PrintError{Name: name, Err: errors.New("converter produced an empty PDF")}
	}
	return pdfPath, nil
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Failed    int

	// PDFs lists the written files in input order.
	PDFs []string
}

// Total returns the total number of letters processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Failed
}

// HasFailures reports whether any letter failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// ConvertBatch prints each letter into outDir, writing a status line per
// file to w and returning a summary. A failure does not stop the batch; a
// cancelled ctx fails the remaining letters.
func ConvertBatch(ctx context.Context, c Converter, docxPaths []string, outDir string, w io.Writer) BatchResult {
	var result BatchResult
	for _, p := range docxPaths {
		pdfPath, err := ConvertDocument(ctx, c, p, outDir)
		if err != nil {
			result.Failed++
			fmt.Fprintf(w, "failed:    %v\n", err)
			continue
		}
		result.Converted++
		result.PDFs = append(result.PDFs, pdfPath)
		fmt.Fprintf(w, "converted: %s\n", filepath.Base(pdfPath))
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d failed (total: %d)\n",
		result.Converted, result.Failed, result.Total())
	return result
}

// New builds the converter selected by cfg.Backend. A positive cfg.Timeout
// bounds each attempt and a positive cfg.Retries re-runs failed attempts.
func New(ctx context.Context, cfg types.ConversionConfig) (Converter, error) {
	var c Converter
	switch cfg.Backend {
	case types.BackendContainer, "":
		rt, err := container.DetectRuntime(ctx)
		if err != nil {
			return nil, err
		}
		cc, err := NewContainerConverter(ctx, rt, cfg.Image)
		if err != nil {
			return nil, err
		}
		c = cc
	case types.BackendSoffice:
		sc, err := NewSofficeConverter()
		if err != nil {
			return nil, err
		}
		c = sc
	default:
		return nil, fmt.Errorf("unknown conversion backend %q (want %s or %s)",
			cfg.Backend, types.BackendContainer, types.BackendSoffice)
	}
	if cfg.Timeout > 0 {
		c = withTimeout{next: c, timeout: cfg.Timeout}
	}
	if cfg.Retries > 0 {
		c = withRetry{next: c, retries: cfg.Retries}
	}
	return c, nil
}

type withTimeout struct {
	next    Converter
	timeout time.Duration
}

func (w withTimeout) Convert(ctx context.Context, docxPath, pdfPath string) error {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	return w.next.Convert(ctx, docxPath, pdfPath)
}
