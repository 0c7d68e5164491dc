// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docx

import (
	"bytes"
	"encoding/xml"
	"html"
	"regexp"
	"strings"
)

var (
	// paragraphPattern matches one <w:p> element. A self-closing <w:p/> has
	// no text and is skipped by the [^/>] guard.
	paragraphPattern = regexp.MustCompile(`(?s)<w:p(?:\s[^>]*[^/>])?>.*?</w:p>`)

	openTagPattern = regexp.MustCompile(`^<w:p(?:\s[^>]*)?>`)
	nestedPattern  = regexp.MustCompile(`<w:p[\s>]`)
	pPrPattern     = regexp.MustCompile(`(?s)<w:pPr>.*?</w:pPr>|<w:pPr/>`)
	rPrPattern     = regexp.MustCompile(`(?s)<w:r(?:\s[^>]*)?>\s*(<w:rPr>.*?</w:rPr>)`)

	// textTokenPattern walks the visible content of a paragraph body in
	// document order: text runs, tabs and line breaks.
	textTokenPattern = regexp.MustCompile(`(?s)<w:t(?:\s[^>]*)?>(.*?)</w:t>|<w:tab(?:\s[^>]*)?/>|<w:(?:br|cr)(?:\s[^>]*)?/>`)
)

// Paragraph is a <w:p> element of word/document.xml. Reading Text joins its
// runs; SetText replaces all runs with a single run that keeps the
// paragraph properties and the first run's formatting.
type Paragraph struct {
	raw      string
	start    int
	end      int
	text     string
	modified bool
}

func newParagraph(raw string, start, end int) *Paragraph {
	return &Paragraph{raw: raw, start: start, end: end, text: paragraphText(raw)}
}

// Text returns the paragraph's plain text with tabs as "\t" and breaks as "\n".
func (p *Paragraph) Text() string {
	return p.text
}

// SetText replaces the paragraph's content.
func (p *Paragraph) SetText(text string) {
	if text == p.text {
		return
	}
	p.text = text
	p.modified = true
}

// Modified reports whether SetText changed the paragraph.
func (p *Paragraph) Modified() bool {
	return p.modified
}

// XML returns the element as it will be written.
func (p *Paragraph) XML() string {
	if !p.modified {
		return p.raw
	}
	return renderParagraph(p.raw, p.text)
}

// paragraphText extracts the visible text of a <w:p> element.
func paragraphText(raw string) string {
	body := pPrPattern.ReplaceAllString(raw, "")
	var b strings.Builder
	for _, m := range textTokenPattern.FindAllStringSubmatch(body, -1) {
		switch {
		case strings.HasPrefix(m[0], "<w:tab"):
			b.WriteByte('\t')
		case strings.HasPrefix(m[0], "<w:br"), strings.HasPrefix(m[0], "<w:cr"):
			b.WriteByte('\n')
		default:
			b.WriteString(html.UnescapeString(m[1]))
		}
	}
	return b.String()
}

// renderParagraph rebuilds raw with text as its only run.
func renderParagraph(raw, text string) string {
	var b strings.Builder
	b.WriteString(openTagPattern.FindString(raw))

	props := pPrPattern.FindString(raw)
	b.WriteString(props)

	body := strings.Replace(raw, props, "", 1)
	b.WriteString("<w:r>")
	if m := rPrPattern.FindStringSubmatch(body); m != nil {
		b.WriteString(m[1])
	}
	writeRunContent(&b, text)
	b.WriteString("</w:r></w:p>")
	return b.String()
}

func writeRunContent(b *strings.Builder, text string) {
	var seg strings.Builder
	flush := func() {
		if seg.Len() == 0 {
			return
		}
		b.WriteString(`<w:t xml:space="preserve">`)
		b.WriteString(escapeText(seg.String()))
		b.WriteString("</w:t>")
		seg.Reset()
	}
	for _, r := range text {
		switch r {
		case '\t':
			flush()
			b.WriteString("<w:tab/>")
		case '\n':
			flush()
			b.WriteString("<w:br/>")
		default:
			seg.WriteRune(r)
		}
	}
	flush()
}

func escapeText(s string) string {
	var buf bytes.Buffer
	// EscapeText only fails when the writer does; bytes.Buffer never does.
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// splitParagraphs locates the editable paragraphs of content. Paragraphs
// that contain other paragraphs (text boxes) are left out so their markup is
// never rewritten.
func splitParagraphs(content string) []*Paragraph {
	var out []*Paragraph
	for _, loc := range paragraphPattern.FindAllStringIndex(content, -1) {
		raw := content[loc[0]:loc[1]]
		if nestedPattern.MatchString(raw[1:]) {
			continue
		}
		out = append(out, newParagraph(raw, loc[0], loc[1]))
	}
	return out
}
