// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package docx reads and writes the body paragraphs of Word .docx files.
// Archive handling is delegated to github.com/nguyenthenguyen/docx; this
// package locates <w:p> elements in word/document.xml and rewrites only the
// ones whose text changed.
package docx

import (
	"fmt"
	"strings"

	"github.com/nguyenthenguyen/docx"

	"github.com/pdiddy/engagement-letters/internal/rollover"
)

// Document is an opened .docx file.
type Document struct {
	reader     *docx.ReplaceDocx
	editable   *docx.Docx
	content    string
	paragraphs []*Paragraph
}

// Open reads the .docx at path.
func Open(path string) (*Document, error) {
	reader, err := docx.ReadDocxFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	editable := reader.Editable()
	content := editable.GetContent()
	if !strings.Contains(content, "<w:body") {
		reader.Close()
		return nil, fmt.Errorf("opening %s: word/document.xml has no body", path)
	}
	return &Document{
		reader:     reader,
		editable:   editable,
		content:    content,
		paragraphs: splitParagraphs(content),
	}, nil
}

// BodyParagraphs returns the document's paragraphs in order.
func (d *Document) BodyParagraphs() []*Paragraph {
	return d.paragraphs
}

// Texts returns the text of every paragraph in order.
func (d *Document) Texts() []string {
	out := make([]string, len(d.paragraphs))
	for i, p := range d.paragraphs {
		out[i] = p.Text()
	}
	return out
}

// Paragraphs returns the paragraphs as rollover.Paragraph values.
func (d *Document) Paragraphs() []rollover.Paragraph {
	out := make([]rollover.Paragraph, len(d.paragraphs))
	for i, p := range d.paragraphs {
		out[i] = p
	}
	return out
}

// Modified reports whether any paragraph changed.
func (d *Document) Modified() bool {
	for _, p := range d.paragraphs {
		if p.Modified() {
			return true
		}
	}
	return false
}

// Save writes the document, with changed paragraphs re-rendered, to path.
func (d *Document) Save(path string) error {
	d.editable.SetContent(d.render())
	if err := d.editable.WriteToFile(path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Close releases the underlying archive.
func (d *Document) Close() error {
	return d.reader.Close()
}

func (d *Document) render() string {
	var b strings.Builder
	b.Grow(len(d.content))
	last := 0
	for _, p := range d.paragraphs {
		b.WriteString(d.content[last:p.start])
		b.WriteString(p.XML())
		last = p.end
	}
	b.WriteString(d.content[last:])
	return b.String()
}

// Loader opens .docx files for the rollover processor.
type Loader struct{}

// Open implements rollover.Loader.
func (Loader) Open(path string) (rollover.Document, error) {
	doc, err := Open(path)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ReadTexts opens path and returns the text of every body paragraph.
func ReadTexts(path string) ([]string, error) {
	doc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()
	return doc.Texts(), nil
}
