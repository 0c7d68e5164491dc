// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const binSoffice = "soffice"

// runner abstracts command execution for testing.
type runner interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type osRunner struct{}

func (osRunner) LookPath(file string) (string, error) { return exec.LookPath(file) }

func (osRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.Bytes(), err
}

// SofficeConverter prints letters with a local LibreOffice in headless mode.
type SofficeConverter struct {
	bin string
	run runner
}

// NewSofficeConverter locates soffice on PATH.
func NewSofficeConverter() (*SofficeConverter, error) {
	return newSofficeConverter(osRunner{})
}

func newSofficeConverter(r runner) (*SofficeConverter, error) {
	bin, err := r.LookPath(binSoffice)
	if err != nil {
		return nil, fmt.Errorf("%s not found on PATH: %w", binSoffice, err)
	}
	return &SofficeConverter{bin: bin, run: r}, nil
}

// Convert implements Converter. soffice names its output after the input
// stem, so it writes into a scratch directory and the result is moved to
// pdfPath.
func (s *SofficeConverter) Convert(ctx context.Context, docxPath, pdfPath string) error {
	scratch, err := os.MkdirTemp(filepath.Dir(pdfPath), ".soffice-*")
	if err != nil {
		return fmt.Errorf("creating scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	out, err := s.run.Run(ctx, s.bin, "--headless", "--convert-to", "pdf", "--outdir", scratch, docxPath)
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("running %s: %w: %s", binSoffice, err, msg)
		}
		return fmt.Errorf("running %s: %w", binSoffice, err)
	}

	stem := strings.TrimSuffix(filepath.Base(docxPath), filepath.Ext(docxPath))
	produced := filepath.Join(scratch, stem+".pdf")
	if err := os.Rename(produced, pdfPath); err != nil {
		return fmt.Errorf("%s produced no PDF for %s: %w", binSoffice, filepath.Base(docxPath), err)
	}
	return nil
}
