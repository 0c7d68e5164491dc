// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package signature

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

const (
	// stampHeight is the rendered height of the signature in points.
	stampHeight = 20.0

	// stampLeft is the distance from the left page edge (1.25in).
	stampLeft = 1.25 * 72
)

// Stamper merges a signature onto one page of a PDF.
type Stamper interface {
	Stamp(inPath, outPath string, pos Position) error
}

// PDFStamper stamps page 1 of a signature PDF using pdfcpu.
type PDFStamper struct {
	signaturePath string
	height        float64
}

// NewPDFStamper reads the page size of the signature PDF at path.
func NewPDFStamper(path string) (*PDFStamper, error) {
	dims, err := api.PageDimsFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading signature %s: %w", path, err)
	}
	if len(dims) == 0 || dims[0].Height <= 0 {
		return nil, fmt.Errorf("signature %s has no pages", path)
	}
	return &PDFStamper{signaturePath: path, height: dims[0].Height}, nil
}

// Stamp implements Stamper.
func (s *PDFStamper) Stamp(inPath, outPath string, pos Position) error {
	pages := []string{strconv.Itoa(pos.Page + 1)}
	desc := stampDescription(pos, s.height)
	if err := api.AddPDFWatermarksFile(inPath, outPath, pages, true, s.signaturePath+":1", desc, nil); err != nil {
		return fmt.Errorf("stamping %s: %w", filepath.Base(inPath), err)
	}
	return nil
}

// stampDescription renders the pdfcpu watermark description that scales a
// signature of the given height to stampHeight and anchors it stampLeft
// from the left edge, stampHeight below the baseline y.
func stampDescription(pos Position, height float64) string {
	scale := stampHeight / height
	return fmt.Sprintf("position:bl, offset:%.2f %.2f, scalefactor:%.4f abs, rotation:0, opacity:1",
		stampLeft, pos.Y-stampHeight, scale)
}

// SignError reports a letter that could not be signed.
type SignError struct {
	Name string
	Err  error
}

func (e *SignError) Error() string {
	return fmt.Sprintf("An error has occurred adding signature stamp to %s: %v", e.Name, e.Err)
}

func (e *SignError) Unwrap() error { return e.Err }

// SignedName returns the output filename for a signed copy of pdfPath.
func SignedName(pdfPath string) string {
	base := filepath.Base(pdfPath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + " - Signed.pdf"
}

// Sign locates the signature block of pdfPath and writes a stamped copy
// into outDir, returning the written path and the located position.
func Sign(ctx context.Context, loc Locator, st Stamper, pdfPath, outDir string) (string, Position, error) {
	name := filepath.Base(pdfPath)
	pos, err := loc.Locate(ctx, pdfPath)
	if err != nil {
		return "", Position{}, &SignError{Name: name, Err: err}
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", Position{}, &SignError{Name: name, Err: err}
	}
	out := filepath.Join(outDir, SignedName(pdfPath))
	if err := st.Stamp(pdfPath, out, pos); err != nil {
		return "", Position{}, &SignError{Name: name, Err: err}
	}
	return out, pos, nil
}

// BatchResult holds the outcome of a batch signing run.
type BatchResult struct {
	Signed int
	Failed int
}

// Total returns the number of PDFs processed.
func (r BatchResult) Total() int { return r.Signed + r.Failed }

// HasFailures reports whether any PDF failed.
func (r BatchResult) HasFailures() bool { return r.Failed > 0 }

// SignBatch signs each PDF into outDir, writing a status line per file to w.
func SignBatch(ctx context.Context, loc Locator, st Stamper, pdfPaths []string, outDir string, w io.Writer) BatchResult {
	var result BatchResult
	for _, p := range pdfPaths {
		out, pos, err := Sign(ctx, loc, st, p, outDir)
		if err != nil {
			result.Failed++
			fmt.Fprintf(w, "failed:    %v\n", err)
			continue
		}
		result.Signed++
		fmt.Fprintf(w, "signed:    %s (page %d, %s)\n", filepath.Base(out), pos.Page+1, pos.Signer)
	}
	fmt.Fprintf(w, "\nBatch summary: %d signed, %d failed (total: %d)\n",
		result.Signed, result.Failed, result.Total())
	return result
}
