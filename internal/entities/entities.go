// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package entities reads client details from engagement letters: the
// mailing address block and the "Name of Entity / Type of Return" table.
package entities

import (
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/engagement-letters/internal/docx"
	"github.com/pdiddy/engagement-letters/pkg/types"
)

// AddressNotFound is reported when no address block is present.
const AddressNotFound = "Address not found"

const (
	entityHeader = "Name of Entity"
	returnHeader = "Type of Return"
)

// space also matches NBSP and the other Unicode separators Word emits.
const space = `[\s\p{Z}\x{85}]`

var (
	addressPattern = regexp.MustCompile(`\n(.+)\n(.+),` + space + `+([A-Z]{2})` + space + `+(\d{5})\n`)
	columnPattern  = regexp.MustCompile(space + `{2,}|\t+`)
)

// Address returns the first "street / city, ST 12345" block found in the
// paragraphs, formatted as "street\ncity, ST 12345".
func Address(paragraphs []string) string {
	m := addressPattern.FindStringSubmatch(strings.Join(paragraphs, "\n"))
	if m == nil {
		return AddressNotFound
	}
	return fmt.Sprintf("%s\n%s, %s %s", m[1], m[2], m[3], m[4])
}

// Entities returns the rows of the entity table. The table starts after the
// first paragraph naming both column headers and ends at the first
// non-blank line that does not split into exactly two columns.
func Entities(paragraphs []string) []types.Entity {
	start := -1
	for i, p := range paragraphs {
		if strings.Contains(p, entityHeader) && strings.Contains(p, returnHeader) {
			start = i
			break
		}
	}
	if start < 0 {
		return []types.Entity{}
	}

	out := []types.Entity{}
	for _, line := range paragraphs[start+1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := columnPattern.Split(line, -1)
		if len(parts) != 2 {
			break
		}
		out = append(out, types.Entity{NameOfEntity: parts[0], TypeOfReturn: parts[1]})
	}
	return out
}

// Extract builds the extraction for one letter from its paragraph texts.
func Extract(filename string, paragraphs []string) types.Extraction {
	return types.Extraction{
		Filename: filename,
		Address:  Address(paragraphs),
		Entities: Entities(paragraphs),
	}
}

// ExtractFile opens the .docx at path and extracts its client details.
func ExtractFile(path string) (types.Extraction, error) {
	texts, err := docx.ReadTexts(path)
	if err != nil {
		return types.Extraction{}, fmt.Errorf("extracting %s: %w", filepath.Base(path), err)
	}
	return Extract(filepath.Base(path), texts), nil
}

// BatchSummary holds counts from a batch extraction.
type BatchSummary struct {
	Extracted int
	Failed    int
}

// Total returns the number of letters processed.
func (s BatchSummary) Total() int {
	return s.Extracted + s.Failed
}

// HasFailures reports whether any letter failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// ExtractAll extracts every path in order. Failures are reported to w and
// do not stop the batch.
func ExtractAll(paths []string, w io.Writer) ([]types.Extraction, BatchSummary) {
	var summary BatchSummary
	results := []types.Extraction{}
	for _, path := range paths {
		ex, err := ExtractFile(path)
		if err != nil {
			summary.Failed++
			fmt.Fprintf(w, "failed:    %s (%v)\n", filepath.Base(path), err)
			continue
		}
		summary.Extracted++
		results = append(results, ex)
	}
	return results, summary
}

// WriteYAML writes extractions to w as a YAML sequence.
func WriteYAML(w io.Writer, results []types.Extraction) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("encoding extractions: %w", err)
	}
	return enc.Close()
}
