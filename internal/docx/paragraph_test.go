// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParagraphText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "single run",
			raw:  `<w:p><w:r><w:t>Letter dated 2022</w:t></w:r></w:p>`,
			want: "Letter dated 2022",
		},
		{
			name: "runs split mid-word",
			raw:  `<w:p w:rsidR="00A1"><w:r><w:t xml:space="preserve">Letter da</w:t></w:r><w:r><w:rPr><w:b/></w:rPr><w:t>ted 20</w:t></w:r><w:r><w:t>22</w:t></w:r></w:p>`,
			want: "Letter dated 2022",
		},
		{
			name: "tabs and breaks",
			raw:  `<w:p><w:r><w:t>Name</w:t><w:tab/><w:t>Return</w:t><w:br/><w:t>Next</w:t></w:r></w:p>`,
			want: "Name\tReturn\nNext",
		},
		{
			name: "tab stops in properties are not text",
			raw:  `<w:p><w:pPr><w:tabs><w:tab w:val="left" w:pos="720"/></w:tabs></w:pPr><w:r><w:t>Body</w:t></w:r></w:p>`,
			want: "Body",
		},
		{
			name: "entities are decoded",
			raw:  `<w:p><w:r><w:t>Smith &amp; Sons &lt;LLC&gt;</w:t></w:r></w:p>`,
			want: "Smith & Sons <LLC>",
		},
		{
			name: "hyperlink runs count",
			raw:  `<w:p><w:r><w:t xml:space="preserve">See </w:t></w:r><w:hyperlink r:id="rId4"><w:r><w:t>our site</w:t></w:r></w:hyperlink></w:p>`,
			want: "See our site",
		},
		{
			name: "deleted text is ignored",
			raw:  `<w:p><w:del><w:r><w:delText>old</w:delText></w:r></w:del><w:r><w:t>new</w:t></w:r></w:p>`,
			want: "new",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, paragraphText(tt.raw))
		})
	}
}

func TestRenderParagraph(t *testing.T) {
	raw := `<w:p w:rsidR="00A1"><w:pPr><w:jc w:val="both"/><w:rPr><w:i/></w:rPr></w:pPr>` +
		`<w:r><w:rPr><w:rFonts w:ascii="Garamond"/></w:rPr><w:t>Letter da</w:t></w:r>` +
		`<w:r><w:rPr><w:b/></w:rPr><w:t>ted 2022</w:t></w:r></w:p>`

	got := renderParagraph(raw, "Letter dated 2023 & more\tend")

	assert.Equal(t,
		`<w:p w:rsidR="00A1"><w:pPr><w:jc w:val="both"/><w:rPr><w:i/></w:rPr></w:pPr>`+
			`<w:r><w:rPr><w:rFonts w:ascii="Garamond"/></w:rPr>`+
			`<w:t xml:space="preserve">Letter dated 2023 &amp; more</w:t><w:tab/><w:t xml:space="preserve">end</w:t>`+
			`</w:r></w:p>`,
		got)
	assert.Equal(t, "Letter dated 2023 & more\tend", paragraphText(got))
}

func TestRenderParagraph_NoProperties(t *testing.T) {
	got := renderParagraph(`<w:p><w:r><w:t>old</w:t></w:r></w:p>`, "line one\nline two")
	assert.Equal(t, `<w:p><w:r><w:t xml:space="preserve">line one</w:t><w:br/><w:t xml:space="preserve">line two</w:t></w:r></w:p>`, got)
}

func TestSplitParagraphs(t *testing.T) {
	content := `<w:body>` +
		`<w:p><w:r><w:t>first</w:t></w:r></w:p>` +
		`<w:p w14:paraId="1A2B"/>` +
		`<w:p><w:r><w:pict><w:txbxContent><w:p><w:r><w:t>boxed</w:t></w:r></w:p></w:txbxContent></w:pict></w:r></w:p>` +
		`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>cell</w:t></w:r></w:p></w:tc></w:tr></w:tbl>` +
		`<w:p w:rsidR="00B2"><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>last</w:t></w:r></w:p>` +
		`</w:body>`

	paras := splitParagraphs(content)
	var texts []string
	for _, p := range paras {
		texts = append(texts, p.Text())
		assert.Equal(t, p.raw, content[p.start:p.end])
	}
	assert.Equal(t, []string{"first", "cell", "last"}, texts)
}

func TestParagraph_SetText(t *testing.T) {
	raw := `<w:p><w:r><w:t>same</w:t></w:r></w:p>`
	p := newParagraph(raw, 0, len(raw))

	p.SetText("same")
	assert.False(t, p.Modified())
	assert.Equal(t, raw, p.XML())

	p.SetText("different")
	require.True(t, p.Modified())
	assert.Equal(t, "different", p.Text())
	assert.Contains(t, p.XML(), ">different</w:t>")
}
