// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rollover

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pdiddy/engagement-letters/pkg/types"
)

// BatchResult holds the outcome counts of a batch run.
type BatchResult struct {
	Updated   int
	Unchanged int
	Failed    int
	Skipped   int
}

// Total returns the number of files seen, skipped files included.
func (r BatchResult) Total() int {
	return r.Updated + r.Unchanged + r.Failed + r.Skipped
}

// HasFailures reports whether any letter failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

func (r *BatchResult) add(status types.ProcessingStatus) {
	switch status {
	case types.StatusUpdated:
		r.Updated++
	case types.StatusUnchanged:
		r.Unchanged++
	case types.StatusFailed:
		r.Failed++
	case types.StatusSkipped:
		r.Skipped++
	}
}

// ResultFunc observes each result of a batch. index is 1-based.
type ResultFunc func(index, total int, res Result)

// IsLetterFile reports whether name looks like a Word document worth
// processing: a .docx file that is not an Office lock file ("~$...").
func IsLetterFile(name string) bool {
	base := filepath.Base(name)
	return !strings.HasPrefix(base, "~") && strings.EqualFold(filepath.Ext(base), ".docx")
}

// ProcessBatch processes paths in order, one at a time. Files that are not
// letters are reported as skipped. A failing file never stops the batch.
// onResult may be nil.
func (p *Processor) ProcessBatch(paths []string, destDir string, opts types.RateOptions, onResult ResultFunc) BatchResult {
	var result BatchResult
	total := len(paths)
	for i, path := range paths {
		var res Result
		if IsLetterFile(path) {
			res = p.Process(path, destDir, opts)
		} else {
			res = Result{
				Filename: filepath.Base(path),
				Status:   types.StatusSkipped,
				Err:      fmt.Errorf("%s is not a Word document", filepath.Base(path)),
			}
		}
		result.add(res.Status)
		if onResult != nil {
			onResult(i+1, total, res)
		}
	}
	return result
}

// WriteStatus prints one status line for res to w in the form used by the
// CLI batch commands.
func WriteStatus(w io.Writer, res Result) {
	switch res.Status {
	case types.StatusUpdated:
		fmt.Fprintf(w, "updated:   %s -> %s\n", res.Filename, res.OutputPath)
		if res.Err != nil {
			fmt.Fprintf(w, "warning:   %s\n", res.Err)
		}
	case types.StatusUnchanged:
		fmt.Fprintf(w, "unchanged: %s\n", res.Filename)
	case types.StatusSkipped:
		fmt.Fprintf(w, "skipped:   %s\n", res.Filename)
	default:
		fmt.Fprintf(w, "failed:    %s (%v)\n", res.Filename, res.Err)
	}
}

// WriteSummary prints the batch summary line.
func WriteSummary(w io.Writer, r BatchResult) {
	fmt.Fprintf(w, "\nBatch summary: %d updated, %d unchanged, %d failed, %d skipped (total: %d)\n",
		r.Updated, r.Unchanged, r.Failed, r.Skipped, r.Total())
}
