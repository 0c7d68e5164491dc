// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ProcessingStatus is the outcome of processing one uploaded letter.
type ProcessingStatus string

const (
	StatusUpdated   ProcessingStatus = "updated"
	StatusUnchanged ProcessingStatus = "unchanged"
	StatusFailed    ProcessingStatus = "failed"
	StatusSkipped   ProcessingStatus = "skipped"
)

// ProcessingRecord is one row of the processing history.
type ProcessingRecord struct {
	// ID is a ULID assigned when the record is written.
	ID string `json:"id" yaml:"id"`

	// RunID groups the records of one upload or CLI invocation.
	RunID string `json:"run_id" yaml:"run_id"`

	// Filename is the uploaded (sanitized) filename.
	Filename string `json:"filename" yaml:"filename"`

	Status ProcessingStatus `json:"status" yaml:"status"`

	// OutputPath is where the rewritten letter was saved, if anywhere.
	OutputPath string `json:"output_path,omitempty" yaml:"output_path,omitempty"`

	// Message carries the error or warning text, if any.
	Message string `json:"message,omitempty" yaml:"message,omitempty"`

	ProcessedAt time.Time `json:"processed_at" yaml:"processed_at"`
}

// Entity is one row of the "Name of Entity / Type of Return" table found in
// an engagement letter.
type Entity struct {
	NameOfEntity string `json:"name_of_entity" yaml:"name_of_entity"`
	TypeOfReturn string `json:"type_of_return" yaml:"type_of_return"`
}

// Extraction holds the client details read from one letter.
type Extraction struct {
	Filename string   `json:"filename" yaml:"filename"`
	Address  string   `json:"address" yaml:"address"`
	Entities []Entity `json:"entities" yaml:"entities"`
}
