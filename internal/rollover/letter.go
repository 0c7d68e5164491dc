// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rollover

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/pdiddy/engagement-letters/pkg/types"
)

// Document is an opened letter: an ordered list of paragraphs that can be
// saved to a new path. The processor owns it for one call and closes it.
type Document interface {
	Paragraphs() []Paragraph
	Save(path string) error
	Close() error
}

// Loader opens documents from disk.
type Loader interface {
	Open(path string) (Document, error)
}

// Result is the outcome of processing one letter. An updated result has an
// OutputPath and may carry a *FilenameWarning or a close error in Err;
// unchanged and failed results have no OutputPath and always carry Err.
type Result struct {
	Filename   string
	OutputPath string
	Status     types.ProcessingStatus
	Err        error
}

// Message returns the error or warning text, or "" when there is none.
func (r Result) Message() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Record converts r into a history row for the given run.
func (r Result) Record(id, runID string, at time.Time) types.ProcessingRecord {
	return types.ProcessingRecord{
		ID:          id,
		RunID:       runID,
		Filename:    r.Filename,
		Status:      r.Status,
		OutputPath:  r.OutputPath,
		Message:     r.Message(),
		ProcessedAt: at,
	}
}

// Processor rolls single letters over. It holds no per-document state, so a
// Processor may be shared by concurrent callers as long as the Loader is
// safe for concurrent use.
type Processor struct {
	loader   Loader
	registry *Registry
	date     Rule
}

// NewProcessor returns a processor that opens documents with loader and
// applies the standard rule registry.
func NewProcessor(loader Loader) *Processor {
	reg := NewRegistry()
	date, _ := reg.Rule(RuleDate)
	return &Processor{loader: loader, registry: reg, date: date}
}

// Process rewrites the letter at srcPath and saves the result into destDir,
// which must already exist. srcPath is never written. Every failure,
// including a panic inside the document collaborator, is reported in the
// returned Result.
func (p *Processor) Process(srcPath, destDir string, opts types.RateOptions) (res Result) {
	filename := filepath.Base(srcPath)

	defer func() {
		if v := recover(); v != nil {
			res = failed(filename, fmt.Errorf("an unexpected error occurred while processing %s: %v", filename, v))
		}
	}()

	doc, err := p.loader.Open(srcPath)
	if err != nil {
		return failed(filename, &LoadError{Filename: filename, Err: err})
	}
	defer func() {
		if err := doc.Close(); err != nil {
			res.Err = errors.Join(res.Err, fmt.Errorf("closing %s: %w", filename, err))
		}
	}()

	changed := false
	for _, para := range doc.Paragraphs() {
		ok, err := RewriteParagraph(para, p.registry, opts)
		if err != nil {
			return failed(filename, fmt.Errorf("processing %s: %w", filename, err))
		}
		changed = changed || ok
	}

	if !changed {
		return Result{
			Filename: filename,
			Status:   types.StatusUnchanged,
			Err:      fmt.Errorf("%s was %w", filename, ErrNotUpdated),
		}
	}

	newName, warn := DeriveFilename(DisplayFilename(filename), p.date)
	if warn != nil && !IsWarning(warn) {
		return failed(filename, fmt.Errorf("deriving file name for %s: %w", filename, warn))
	}

	outPath := filepath.Join(destDir, newName)
	if samePath(outPath, srcPath) {
		return failed(filename, &SaveError{Path: outPath, Err: errors.New("output would overwrite the source file")})
	}
	if err := doc.Save(outPath); err != nil {
		return failed(filename, &SaveError{Path: outPath, Err: err})
	}

	return Result{
		Filename:   filename,
		OutputPath: outPath,
		Status:     types.StatusUpdated,
		Err:        warn,
	}
}

func failed(filename string, err error) Result {
	return Result{Filename: filename, Status: types.StatusFailed, Err: err}
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
