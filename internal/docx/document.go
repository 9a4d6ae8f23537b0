// Package docx reads and writes the claim document as an ordered sequence of
// blocks (paragraphs and tables) with run-level formatting. It parses
// word/document.xml from the .docx ZIP archive directly (no external OOXML
// dependency) and keeps the original XML of every untouched block so
// unmodified content round-trips byte-for-byte; only mutated blocks are
// re-serialized from the in-memory model.
package docx

import (
	"strings"
)

// StyledRun is one contiguous styled span of paragraph text. Mutations
// always read-modify-write whole runs, never raw text splicing.
type StyledRun struct {
	Text      string
	Font      string
	Size      float64 // points; 0 means inherited
	Bold      bool
	Italic    bool
	Underline bool
	Color     string // RRGGBB, empty means inherited
}

// Numbering is a native Word list reference on a paragraph.
type Numbering struct {
	NumID int
	Ilvl  int
}

// InlineImage is an image run appended at the end of a paragraph.
type InlineImage struct {
	RelID     string
	WidthEMU  int64
	HeightEMU int64
}

// Block is one body-level element of the document.
type Block interface {
	block()
}

// Paragraph holds parsed runs plus the source XML of the whole <w:p>
// element. While the paragraph is untouched the source XML is written back
// verbatim; any mutation marks it dirty and it is rebuilt from the model.
type Paragraph struct {
	Runs      []StyledRun
	Numbering *Numbering
	Alignment string // "", "center", "left", "right", "both"
	Image     *InlineImage

	propsXML string // raw inner XML of the source <w:pPr>, kept on rebuild
	raw      string // original serialized <w:p>
	dirty    bool
}

func (p *Paragraph) block() {}

// Text returns the concatenated run text.
func (p *Paragraph) Text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// SetText replaces the paragraph content with a single run styled like the
// paragraph's first run.
func (p *Paragraph) SetText(text string) {
	style := StyledRun{}
	if len(p.Runs) > 0 {
		style = p.Runs[0]
	}
	style.Text = text
	p.Runs = []StyledRun{style}
	p.MarkDirty()
}

// SetRuns replaces all runs.
func (p *Paragraph) SetRuns(runs []StyledRun) {
	p.Runs = runs
	p.MarkDirty()
}

// MarkDirty invalidates the retained source XML.
func (p *Paragraph) MarkDirty() {
	p.dirty = true
}

// Dirty reports whether the paragraph will be re-serialized from the model.
func (p *Paragraph) Dirty() bool { return p.dirty }

// ForceFont sets a uniform font name and size across all runs, keeping each
// run's other properties. Paragraphs without runs get one empty styled run.
// Naive text replacement corrupts per-run styling, so callers reset it
// deliberately after editing text.
func (p *Paragraph) ForceFont(name string, size float64) {
	if len(p.Runs) == 0 {
		p.Runs = []StyledRun{{Font: name, Size: size}}
	} else {
		for i := range p.Runs {
			p.Runs[i].Font = name
			p.Runs[i].Size = size
		}
	}
	p.MarkDirty()
}

// SetNumbering puts the paragraph into a native numbered list.
func (p *Paragraph) SetNumbering(numID, ilvl int) {
	p.Numbering = &Numbering{NumID: numID, Ilvl: ilvl}
	p.MarkDirty()
}

// SetAlignment sets paragraph justification.
func (p *Paragraph) SetAlignment(jc string) {
	p.Alignment = jc
	p.MarkDirty()
}

// RawXML returns the paragraph's current serialized form: the retained
// source XML while clean, the rebuilt model otherwise.
func (p *Paragraph) RawXML() string {
	if !p.dirty && p.raw != "" {
		return p.raw
	}
	return buildParagraphXML(p)
}

// TableCell is one table cell; its content is a paragraph sequence.
type TableCell struct {
	Paragraphs []*Paragraph

	propsXML string // raw <w:tcPr>
}

// Text returns the cell's text with paragraphs joined by newlines.
func (c *TableCell) Text() string {
	parts := make([]string, 0, len(c.Paragraphs))
	for _, p := range c.Paragraphs {
		parts = append(parts, p.Text())
	}
	return strings.Join(parts, "\n")
}

// SetRuns clears the cell and leaves a single paragraph with the given runs.
func (c *TableCell) SetRuns(runs []StyledRun) {
	para := &Paragraph{Runs: runs}
	para.MarkDirty()
	if len(c.Paragraphs) > 0 {
		// Keep the first paragraph's properties so cell margins survive.
		para.propsXML = c.Paragraphs[0].propsXML
	}
	c.Paragraphs = []*Paragraph{para}
}

// TableRow is one table row.
type TableRow struct {
	Cells []*TableCell

	propsXML string // raw <w:trPr>
}

// Table holds the parsed cell grid plus the source XML of the whole
// <w:tbl> element, written back verbatim while untouched.
type Table struct {
	Rows []*TableRow

	propsXML string // raw <w:tblPr> + <w:tblGrid>
	raw      string
	dirty    bool
}

func (t *Table) block() {}

// MarkDirty invalidates the retained source XML.
func (t *Table) MarkDirty() { t.dirty = true }

// Columns returns the column count of the first row.
func (t *Table) Columns() int {
	if len(t.Rows) == 0 {
		return 0
	}
	return len(t.Rows[0].Cells)
}

// Cell returns the cell at (row, col) or nil when out of range.
func (t *Table) Cell(row, col int) *TableCell {
	if row < 0 || row >= len(t.Rows) {
		return nil
	}
	r := t.Rows[row]
	if col < 0 || col >= len(r.Cells) {
		return nil
	}
	return r.Cells[col]
}

// RawBlock is a body-level element the model does not interpret (sectPr,
// bookmarks, structured document tags). It passes through save unchanged.
type RawBlock struct {
	XML string
}

func (r *RawBlock) block() {}

// Document is one open claim document: an ordered block sequence plus the
// untouched archive members of the source file. It is exclusively owned by
// a single pipeline invocation.
type Document struct {
	Blocks []Block

	path      string
	members   map[string][]byte // every original zip member except word/document.xml
	docPre    string            // document.xml up to and including <w:body>
	docPost   string            // document.xml from </w:body> to the end
	newMedia  map[string][]byte // media added this session (signature image)
	newRelIDs map[string]string // relationship id -> target for added media
}

// Path returns the file the document was opened from.
func (d *Document) Path() string { return d.path }

// Paragraphs returns the body-level paragraphs in document order. Table
// cell paragraphs are not included.
func (d *Document) Paragraphs() []*Paragraph {
	var paras []*Paragraph
	for _, b := range d.Blocks {
		if p, ok := b.(*Paragraph); ok {
			paras = append(paras, p)
		}
	}
	return paras
}

// Tables returns the body-level tables in document order.
func (d *Document) Tables() []*Table {
	var tables []*Table
	for _, b := range d.Blocks {
		if t, ok := b.(*Table); ok {
			tables = append(tables, t)
		}
	}
	return tables
}

// LastParagraph returns the final body-level paragraph, or nil.
func (d *Document) LastParagraph() *Paragraph {
	paras := d.Paragraphs()
	if len(paras) == 0 {
		return nil
	}
	return paras[len(paras)-1]
}

func (d *Document) indexOf(b Block) int {
	for i, blk := range d.Blocks {
		if blk == b {
			return i
		}
	}
	return -1
}

// InsertBefore places block immediately before ref. No-op when ref is not
// part of the document.
func (d *Document) InsertBefore(block Block, ref Block) {
	if i := d.indexOf(ref); i >= 0 {
		d.Blocks = append(d.Blocks[:i], append([]Block{block}, d.Blocks[i:]...)...)
	}
}

// InsertAfter places block immediately after ref.
func (d *Document) InsertAfter(block Block, ref Block) {
	if i := d.indexOf(ref); i >= 0 {
		d.Blocks = append(d.Blocks[:i+1], append([]Block{block}, d.Blocks[i+1:]...)...)
	}
}

// Remove deletes block from the document. Removing a block twice is a no-op.
func (d *Document) Remove(block Block) {
	if i := d.indexOf(block); i >= 0 {
		d.Blocks = append(d.Blocks[:i], d.Blocks[i+1:]...)
	}
}

// TableAfter returns the first table that follows ref in block order.
func (d *Document) TableAfter(ref Block) *Table {
	i := d.indexOf(ref)
	if i < 0 {
		return nil
	}
	for _, b := range d.Blocks[i+1:] {
		if t, ok := b.(*Table); ok {
			return t
		}
	}
	return nil
}

// AppendParagraph adds a paragraph at the end of the body.
func (d *Document) AppendParagraph(p *Paragraph) {
	p.MarkDirty()
	d.Blocks = append(d.Blocks, p)
}
