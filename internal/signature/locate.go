// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package signature stamps a scanned signature onto printed engagement
// letters, just above the signer's name in the "Very truly yours," block.
package signature

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Closing is the line that opens the signature block.
const Closing = "Very truly yours,"

// ErrNoSignatureBlock is returned when no page contains the closing line
// followed by a signer name.
var ErrNoSignatureBlock = errors.New("signature block not found")

// Position is where a signature goes.
type Position struct {
	// Page is the zero-based page index.
	Page int

	// Y is the baseline in PDF user space (points from the bottom edge).
	Y float64

	// Signer is the first non-empty line after the closing.
	Signer string
}

// Locator finds the signature position in a PDF.
type Locator interface {
	Locate(ctx context.Context, pdfPath string) (Position, error)
}

// FindPosition searches pages for the signature block. The baseline is the
// bottom of the last word on the page holding the block.
func FindPosition(pages []Page) (Position, error) {
	for i, page := range pages {
		lines := page.Lines()
		for j, line := range lines {
			if !strings.Contains(line, Closing) {
				continue
			}
			for _, next := range lines[j+1:] {
				name := strings.TrimSpace(next)
				if name == "" {
					continue
				}
				last := page.Words[len(page.Words)-1]
				return Position{Page: i, Y: page.Height - last.YMax, Signer: name}, nil
			}
		}
	}
	return Position{}, ErrNoSignatureBlock
}

const binPdftotext = "pdftotext"

// runner abstracts command execution for testing.
type runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout []byte, stderr []byte, err error)
}

type osRunner struct{}

func (osRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// PdftotextLocator locates the signature block from the word boxes that
// poppler's pdftotext reports.
type PdftotextLocator struct {
	run runner
}

// NewPdftotextLocator returns a locator that runs pdftotext from PATH.
func NewPdftotextLocator() *PdftotextLocator {
	return &PdftotextLocator{run: osRunner{}}
}

// Locate implements Locator.
func (l *PdftotextLocator) Locate(ctx context.Context, pdfPath string) (Position, error) {
	stdout, stderr, err := l.run.Run(ctx, binPdftotext, "-bbox", pdfPath, "-")
	if err != nil {
		if msg := strings.TrimSpace(string(stderr)); msg != "" {
			return Position{}, fmt.Errorf("running %s on %s: %w: %s", binPdftotext, filepath.Base(pdfPath), err, msg)
		}
		return Position{}, fmt.Errorf("running %s on %s: %w", binPdftotext, filepath.Base(pdfPath), err)
	}
	pages, err := ParseBBox(bytes.NewReader(stdout))
	if err != nil {
		return Position{}, err
	}
	pos, err := FindPosition(pages)
	if err != nil {
		return Position{}, fmt.Errorf("%s: %w", filepath.Base(pdfPath), err)
	}
	return pos, nil
}
