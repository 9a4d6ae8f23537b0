package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/feichai0017/docprep/internal/fsops"
	"github.com/feichai0017/docprep/pkg/errs"
)

const documentMember = "word/document.xml"

// Open reads a .docx file into a Document.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(fsops.LongPath(path))
	if err != nil {
		return nil, errs.NotFound("file %q not found", path)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errs.IOFailure("failed to open document "+path, err)
	}

	doc := &Document{
		path:      path,
		members:   make(map[string][]byte),
		newMedia:  make(map[string][]byte),
		newRelIDs: make(map[string]string),
	}

	var docXML []byte
	for _, member := range zr.File {
		rc, err := member.Open()
		if err != nil {
			return nil, errs.IOFailure("failed to read member "+member.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, errs.IOFailure("failed to read member "+member.Name, err)
		}
		if member.Name == documentMember {
			docXML = content
			continue
		}
		doc.members[member.Name] = content
	}
	if docXML == nil {
		return nil, errs.IOFailure(documentMember+" not found in "+path, nil)
	}

	if err := doc.parseBody(docXML); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return doc, nil
}

// New creates an empty in-memory document with a minimal member set, enough
// to be saved as a valid .docx. Used by tests and template construction.
func New() *Document {
	return &Document{
		members: map[string][]byte{
			"[Content_Types].xml": []byte(xml.Header +
				`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
				`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
				`<Default Extension="xml" ContentType="application/xml"/>` +
				`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
				`</Types>`),
			"_rels/.rels": []byte(xml.Header +
				`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
				`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
				`</Relationships>`),
		},
		docPre: xml.Header +
			`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" ` +
			`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">` +
			`<w:body>`,
		docPost:   `</w:body></w:document>`,
		newMedia:  make(map[string][]byte),
		newRelIDs: make(map[string]string),
	}
}

// parseBody splits document.xml into a preamble, an ordered block list and
// a trailer. Block boundaries come from decoder offsets so that untouched
// blocks keep their exact source bytes.
func (d *Document) parseBody(data []byte) error {
	dec := xml.NewDecoder(bytes.NewReader(data))

	// Find <w:body>.
	for {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("no body element: %w", err)
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == "body" {
			break
		}
	}
	d.docPre = string(data[:dec.InputOffset()])

	for {
		before := dec.InputOffset()
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("unterminated body: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if err := dec.Skip(); err != nil {
				return fmt.Errorf("unterminated element %s: %w", t.Name.Local, err)
			}
			raw := string(data[before:dec.InputOffset()])
			block, err := parseBlock(t.Name.Local, raw)
			if err != nil {
				return err
			}
			d.Blocks = append(d.Blocks, block)
		case xml.EndElement:
			if t.Name.Local == "body" {
				d.docPost = string(data[before:])
				return nil
			}
		}
	}
}

func parseBlock(name, raw string) (Block, error) {
	switch name {
	case "p":
		return parseParagraph(raw)
	case "tbl":
		return parseTable(raw)
	default:
		return &RawBlock{XML: raw}, nil
	}
}

// xml helper shapes; matching is by local name, so the w: prefix of the
// source never matters.

type xmlVal struct {
	Val string `xml:"val,attr"`
}

type xmlFonts struct {
	ASCII string `xml:"ascii,attr"`
}

type xmlRunProps struct {
	Fonts     *xmlFonts `xml:"rFonts"`
	Bold      *xmlVal   `xml:"b"`
	Italic    *xmlVal   `xml:"i"`
	Underline *xmlVal   `xml:"u"`
	Size      *xmlVal   `xml:"sz"`
	Color     *xmlVal   `xml:"color"`
}

type xmlRun struct {
	Props *xmlRunProps `xml:"rPr"`
	Texts []string     `xml:"t"`
}

type xmlNumPr struct {
	Ilvl  *xmlVal `xml:"ilvl"`
	NumID *xmlVal `xml:"numId"`
}

type xmlParaProps struct {
	Inner string    `xml:",innerxml"`
	Jc    *xmlVal   `xml:"jc"`
	NumPr *xmlNumPr `xml:"numPr"`
}

type xmlPara struct {
	Props *xmlParaProps `xml:"pPr"`
	Runs  []xmlRun      `xml:"r"`
}

type xmlRawProps struct {
	Inner string `xml:",innerxml"`
}

type xmlCell struct {
	Props *xmlRawProps `xml:"tcPr"`
	Paras []xmlPara    `xml:"p"`
}

type xmlRow struct {
	Props *xmlRawProps `xml:"trPr"`
	Cells []xmlCell    `xml:"tc"`
}

type xmlTable struct {
	Props *xmlRawProps `xml:"tblPr"`
	Grid  *xmlRawProps `xml:"tblGrid"`
	Rows  []xmlRow     `xml:"tr"`
}

func parseParagraph(raw string) (*Paragraph, error) {
	var xp xmlPara
	if err := xml.Unmarshal([]byte(raw), &xp); err != nil {
		return nil, fmt.Errorf("bad paragraph xml: %w", err)
	}
	p := paragraphFromXML(&xp)
	p.raw = raw
	return p, nil
}

func paragraphFromXML(xp *xmlPara) *Paragraph {
	p := &Paragraph{}
	if xp.Props != nil {
		p.propsXML = xp.Props.Inner
		if xp.Props.Jc != nil {
			p.Alignment = xp.Props.Jc.Val
		}
		if xp.Props.NumPr != nil && xp.Props.NumPr.NumID != nil {
			num := &Numbering{}
			num.NumID, _ = strconv.Atoi(xp.Props.NumPr.NumID.Val)
			if xp.Props.NumPr.Ilvl != nil {
				num.Ilvl, _ = strconv.Atoi(xp.Props.NumPr.Ilvl.Val)
			}
			p.Numbering = num
		}
	}
	for _, xr := range xp.Runs {
		run := StyledRun{}
		for _, t := range xr.Texts {
			run.Text += t
		}
		if xr.Props != nil {
			if xr.Props.Fonts != nil {
				run.Font = xr.Props.Fonts.ASCII
			}
			run.Bold = onOff(xr.Props.Bold)
			run.Italic = onOff(xr.Props.Italic)
			if xr.Props.Underline != nil && xr.Props.Underline.Val != "none" {
				run.Underline = true
			}
			if xr.Props.Size != nil {
				if halfPoints, err := strconv.ParseFloat(xr.Props.Size.Val, 64); err == nil {
					run.Size = halfPoints / 2
				}
			}
			if xr.Props.Color != nil && xr.Props.Color.Val != "auto" {
				run.Color = xr.Props.Color.Val
			}
		}
		p.Runs = append(p.Runs, run)
	}
	return p
}

// onOff reads a wordprocessingml toggle: present means on unless the val
// attribute switches it off.
func onOff(v *xmlVal) bool {
	if v == nil {
		return false
	}
	switch v.Val {
	case "false", "0", "none", "off":
		return false
	default:
		return true
	}
}

func parseTable(raw string) (*Table, error) {
	var xt xmlTable
	if err := xml.Unmarshal([]byte(raw), &xt); err != nil {
		return nil, fmt.Errorf("bad table xml: %w", err)
	}

	t := &Table{raw: raw}
	if xt.Props != nil {
		t.propsXML = "<w:tblPr>" + xt.Props.Inner + "</w:tblPr>"
	}
	if xt.Grid != nil {
		t.propsXML += "<w:tblGrid>" + xt.Grid.Inner + "</w:tblGrid>"
	}
	for _, xr := range xt.Rows {
		row := &TableRow{}
		if xr.Props != nil {
			row.propsXML = "<w:trPr>" + xr.Props.Inner + "</w:trPr>"
		}
		for _, xc := range xr.Cells {
			cell := &TableCell{}
			if xc.Props != nil {
				cell.propsXML = "<w:tcPr>" + xc.Props.Inner + "</w:tcPr>"
			}
			for i := range xc.Paras {
				cell.Paragraphs = append(cell.Paragraphs, paragraphFromXML(&xc.Paras[i]))
			}
			row.Cells = append(row.Cells, cell)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// CloneParagraph copies a template paragraph by its serialized XML,
// substituting the placeholder verbatim in the copy. The clone keeps the
// template's formatting because the serialized fragment is reused as-is.
func CloneParagraph(p *Paragraph, placeholder, value string) (*Paragraph, error) {
	raw := p.RawXML()
	if placeholder != "" {
		var buf bytes.Buffer
		_ = xml.EscapeText(&buf, []byte(value))
		raw = replaceAll(raw, placeholder, buf.String())
	}
	return parseParagraph(raw)
}

func replaceAll(s, old, new string) string {
	return string(bytes.ReplaceAll([]byte(s), []byte(old), []byte(new)))
}
