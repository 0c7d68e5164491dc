// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rollover

import (
	"errors"
	"fmt"
)

// ErrNotUpdated marks a document that matched no rule. It is a skip, not a
// failure: the result carries StatusUnchanged.
var ErrNotUpdated = errors.New("not updated")

// LoadError reports that a source file could not be opened as a document.
type LoadError struct {
	Filename string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("an error occurred while processing %s: %v", e.Filename, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// SaveError reports that the rewritten document could not be written.
type SaveError struct {
	Path string
	Err  error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("saving %s: %v", e.Path, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }

// ConfigError reports rate options that cannot fill a matched rate sentence.
type ConfigError struct {
	Key  string
	Have int
	Want int
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("rate option %s has %d partner entries, need at least %d", e.Key, e.Have, e.Want)
}

// FilenameWarning is the soft warning returned when the output filename had
// no year to increment and the "_updated" suffix was used instead. The
// document was still saved.
type FilenameWarning struct {
	Original string
	Fallback string
}

func (w *FilenameWarning) Error() string {
	return fmt.Sprintf("file name %s could not be incremented, saved as %s", w.Original, w.Fallback)
}

// IsWarning reports whether err is a non-fatal condition that accompanies a
// saved document.
func IsWarning(err error) bool {
	var w *FilenameWarning
	return errors.As(err, &w)
}
