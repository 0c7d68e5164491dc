// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package docxtest builds minimal .docx files for tests.
package docxtest

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"os"
	"strings"
	"testing"
)

const contentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const packageRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const documentRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`

const documentHead = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`

const documentTail = `<w:sectPr/></w:body></w:document>`

// Paragraph renders text as a single-run <w:p> element.
func Paragraph(text string) string {
	var b strings.Builder
	b.WriteString(`<w:p><w:r><w:t xml:space="preserve">`)
	_ = xml.EscapeText(&b, []byte(text))
	b.WriteString(`</w:t></w:r></w:p>`)
	return b.String()
}

// DocumentXML wraps raw paragraph elements in a word/document.xml body.
func DocumentXML(paragraphs ...string) string {
	return documentHead + strings.Join(paragraphs, "") + documentTail
}

// WriteXML writes a .docx whose word/document.xml is exactly documentXML.
func WriteXML(t testing.TB, path, documentXML string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	parts := []struct{ name, body string }{
		{"[Content_Types].xml", contentTypes},
		{"_rels/.rels", packageRels},
		{"word/_rels/document.xml.rels", documentRels},
		{"word/document.xml", documentXML},
	}
	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(p.body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
}

// Write writes a .docx with one single-run paragraph per text.
func Write(t testing.TB, path string, texts ...string) {
	t.Helper()
	paras := make([]string, len(texts))
	for i, text := range texts {
		paras[i] = Paragraph(text)
	}
	WriteXML(t, path, DocumentXML(paras...))
}

// ReadDocumentXML returns word/document.xml from the .docx at path.
func ReadDocumentXML(t testing.TB, path string) string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			t.Fatal(err)
		}
		return string(data)
	}
	t.Fatalf("%s has no word/document.xml", path)
	return ""
}
