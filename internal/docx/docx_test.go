package docx

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func para(text string, style StyledRun) *Paragraph {
	style.Text = text
	p := &Paragraph{Runs: []StyledRun{style}}
	p.MarkDirty()
	return p
}

// saveAndReopen persists the document and opens it back so tests exercise
// the real zip round trip.
func saveAndReopen(t *testing.T, d *Document) *Document {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.docx")
	require.NoError(t, d.Save(path))
	reopened, err := Open(path)
	require.NoError(t, err)
	return reopened
}

func TestRoundTripParagraphs(t *testing.T) {
	d := New()
	d.AppendParagraph(para("Заявление", StyledRun{Font: "Times New Roman", Size: 14, Bold: true}))
	d.AppendParagraph(para("Должник:", StyledRun{}))
	d.AppendParagraph(para("Иванов Иван Иванович", StyledRun{Italic: true}))

	reopened := saveAndReopen(t, d)
	paras := reopened.Paragraphs()
	require.Len(t, paras, 3)
	assert.Equal(t, "Заявление", paras[0].Text())
	assert.Equal(t, "Иванов Иван Иванович", paras[2].Text())

	first := paras[0].Runs[0]
	assert.Equal(t, "Times New Roman", first.Font)
	assert.Equal(t, 14.0, first.Size)
	assert.True(t, first.Bold)
	assert.True(t, paras[2].Runs[0].Italic)
}

func TestUntouchedBlocksKeepSourceBytes(t *testing.T) {
	d := New()
	d.AppendParagraph(para("первый", StyledRun{}))
	d.AppendParagraph(para("второй", StyledRun{}))
	reopened := saveAndReopen(t, d)

	paras := reopened.Paragraphs()
	original := paras[1].RawXML()

	paras[0].SetText("изменённый")
	twice := saveAndReopen(t, reopened)

	assert.Equal(t, "изменённый", twice.Paragraphs()[0].Text())
	assert.Equal(t, original, twice.Paragraphs()[1].RawXML())
}

func TestNumberingAndAlignmentSurviveRoundTrip(t *testing.T) {
	d := New()
	p := para("пункт списка", StyledRun{})
	p.SetNumbering(1, 0)
	d.AppendParagraph(p)

	centered := para("по центру", StyledRun{})
	centered.SetAlignment("center")
	d.AppendParagraph(centered)

	reopened := saveAndReopen(t, d)
	paras := reopened.Paragraphs()
	require.NotNil(t, paras[0].Numbering)
	assert.Equal(t, 1, paras[0].Numbering.NumID)
	assert.Equal(t, 0, paras[0].Numbering.Ilvl)
	assert.Equal(t, "center", paras[1].Alignment)
}

func TestSetNumberingReplacesExisting(t *testing.T) {
	p, err := parseParagraph(`<w:p><w:pPr><w:numPr><w:ilvl w:val="2"/><w:numId w:val="7"/></w:numPr></w:pPr><w:r><w:t>x</w:t></w:r></w:p>`)
	require.NoError(t, err)
	p.SetNumbering(1, 0)

	raw := p.RawXML()
	assert.Equal(t, 1, strings.Count(raw, "<w:numPr>"))
	assert.Contains(t, raw, `<w:numId w:val="1"/>`)
	assert.NotContains(t, raw, `w:val="7"`)
}

func TestForceFontKeepsEmphasis(t *testing.T) {
	p := &Paragraph{Runs: []StyledRun{
		{Text: "обычный ", Font: "Calibri", Size: 12},
		{Text: "жирный", Font: "Calibri", Size: 12, Bold: true},
	}}
	p.ForceFont("Times New Roman", 11)

	for _, r := range p.Runs {
		assert.Equal(t, "Times New Roman", r.Font)
		assert.Equal(t, 11.0, r.Size)
	}
	assert.True(t, p.Runs[1].Bold)

	raw := p.RawXML()
	assert.Contains(t, raw, `<w:sz w:val="22"/>`)
}

func TestTableRoundTrip(t *testing.T) {
	tableXML := `<w:tbl><w:tblPr><w:tblW w:w="0" w:type="auto"/></w:tblPr>` +
		`<w:tblGrid><w:gridCol w:w="4000"/><w:gridCol w:w="4000"/></w:tblGrid>` +
		`<w:tr><w:tc><w:p><w:r><w:t>Банк</w:t></w:r></w:p></w:tc>` +
		`<w:tc><w:p><w:r><w:rPr><w:b/></w:rPr><w:t>ПАО Сбербанк</w:t></w:r></w:p></w:tc></w:tr>` +
		`</w:tbl>`

	tbl, err := parseTable(tableXML)
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, 2, tbl.Columns())
	assert.Equal(t, "Банк", tbl.Cell(0, 0).Text())
	assert.Equal(t, "ПАО Сбербанк", tbl.Cell(0, 1).Text())
	assert.True(t, tbl.Cell(0, 1).Paragraphs[0].Runs[0].Bold)

	// Clean tables serialize to their exact source bytes.
	assert.Equal(t, tableXML, tbl.RawXML())

	tbl.Cell(0, 0).SetRuns([]StyledRun{{Text: "Получатель", Bold: true}})
	tbl.MarkDirty()
	rebuilt := tbl.RawXML()
	assert.Contains(t, rebuilt, "Получатель")
	assert.Contains(t, rebuilt, "<w:tblGrid>")
}

func TestCloneParagraphSubstitutesPlaceholder(t *testing.T) {
	tpl, err := parseParagraph(`<w:p><w:r><w:rPr><w:i/></w:rPr><w:t>Финансовому управляющему ФИО</w:t></w:r></w:p>`)
	require.NoError(t, err)

	clone, err := CloneParagraph(tpl, "ФИО", "Петров П. П.")
	require.NoError(t, err)
	assert.Equal(t, "Финансовому управляющему Петров П. П.", clone.Text())
	assert.True(t, clone.Runs[0].Italic)
	// The template itself stays untouched.
	assert.Contains(t, tpl.Text(), "ФИО")
}

func TestInsertRemoveBlocks(t *testing.T) {
	d := New()
	a := para("a", StyledRun{})
	b := para("b", StyledRun{})
	d.AppendParagraph(a)
	d.AppendParagraph(b)

	mid := para("между", StyledRun{})
	d.InsertAfter(mid, a)
	require.Len(t, d.Paragraphs(), 3)
	assert.Equal(t, "между", d.Paragraphs()[1].Text())

	d.Remove(mid)
	d.Remove(mid) // second removal is a no-op
	require.Len(t, d.Paragraphs(), 2)
	assert.Equal(t, "b", d.LastParagraph().Text())
}

func TestEscapesReservedCharacters(t *testing.T) {
	d := New()
	d.AppendParagraph(para(`ООО "Ромашка" <и партнёры> & Ко`, StyledRun{}))
	reopened := saveAndReopen(t, d)
	assert.Equal(t, `ООО "Ромашка" <и партнёры> & Ко`, reopened.Paragraphs()[0].Text())
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "нет.docx"))
	require.Error(t, err)
}

func TestSplitRunTextConcatenation(t *testing.T) {
	p, err := parseParagraph(`<w:p><w:r><w:t>Дело № </w:t><w:t>А33-100/2024</w:t></w:r></w:p>`)
	require.NoError(t, err)
	assert.Equal(t, "Дело № А33-100/2024", p.Runs[0].Text)
}
