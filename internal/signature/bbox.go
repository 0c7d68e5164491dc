// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package signature

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Word is one word of a pdftotext -bbox page. Coordinates are in points
// with the origin at the top-left of the page.
type Word struct {
	Text                   string
	XMin, YMin, XMax, YMax float64
}

// Page is one page of a pdftotext -bbox document.
type Page struct {
	Width, Height float64
	Words         []Word
}

// ParseBBox reads the XHTML written by `pdftotext -bbox`.
func ParseBBox(r io.Reader) ([]Page, error) {
	z := html.NewTokenizer(r)
	var (
		pages []Page
		word  *Word
	)
	for {
		switch z.Next() {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return pages, nil
			}
			return nil, fmt.Errorf("parsing bbox output: %w", z.Err())

		case html.StartTagToken:
			tok := z.Token()
			switch tok.Data {
			case "page":
				pages = append(pages, Page{
					Width:  attrFloat(tok, "width"),
					Height: attrFloat(tok, "height"),
				})
			case "word":
				if len(pages) == 0 {
					return nil, errors.New("parsing bbox output: word outside of a page")
				}
				word = &Word{
					XMin: attrFloat(tok, "xmin"),
					YMin: attrFloat(tok, "ymin"),
					XMax: attrFloat(tok, "xmax"),
					YMax: attrFloat(tok, "ymax"),
				}
			}

		case html.TextToken:
			if word != nil {
				word.Text += z.Token().Data
			}

		case html.EndTagToken:
			tok := z.Token()
			if tok.Data == "word" && word != nil {
				word.Text = strings.TrimSpace(word.Text)
				last := &pages[len(pages)-1]
				last.Words = append(last.Words, *word)
				word = nil
			}
		}
	}
}

func attrFloat(tok html.Token, key string) float64 {
	for _, a := range tok.Attr {
		if strings.EqualFold(a.Key, key) {
			v, err := strconv.ParseFloat(a.Val, 64)
			if err != nil {
				return 0
			}
			return v
		}
	}
	return 0
}

// Lines groups the page's words into text lines. Consecutive words belong
// to the same line when their vertical extents overlap by at least half a
// word height.
func (p Page) Lines() []string {
	var (
		lines []string
		cur   []string
		prev  Word
	)
	for i, w := range p.Words {
		if i > 0 && !sameLine(prev, w) {
			lines = append(lines, strings.Join(cur, " "))
			cur = nil
		}
		cur = append(cur, w.Text)
		prev = w
	}
	if len(cur) > 0 {
		lines = append(lines, strings.Join(cur, " "))
	}
	return lines
}

func sameLine(a, b Word) bool {
	overlap := math.Min(a.YMax, b.YMax) - math.Max(a.YMin, b.YMin)
	height := math.Min(a.YMax-a.YMin, b.YMax-b.YMin)
	return overlap >= height/2
}
