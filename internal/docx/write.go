package docx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/feichai0017/docprep/internal/fsops"
	"github.com/feichai0017/docprep/pkg/errs"
)

const (
	relsMember        = "word/_rels/document.xml.rels"
	contentTypes      = "[Content_Types].xml"
	signatureMember   = "word/media/signature.png"
	signatureRelID    = "rIdSig"
	imageRelationship = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"

	// Inserted images are sized to a fixed 3 cm width, 360000 EMU per cm.
	signatureWidthEMU = 1080000
)

// Model overrides replace any numbering or justification already present in
// the retained paragraph properties.
var (
	numPrPattern = regexp.MustCompile(`(?s)<w:numPr>.*?</w:numPr>|<w:numPr\s*/>`)
	jcPattern    = regexp.MustCompile(`(?s)<w:jc\b[^>]*?/>|<w:jc\b[^>]*?>.*?</w:jc>`)
)

func escapeXML(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

func buildRunXML(b *strings.Builder, r StyledRun) {
	b.WriteString("<w:r>")

	var props strings.Builder
	if r.Font != "" {
		fmt.Fprintf(&props, `<w:rFonts w:ascii="%s" w:hAnsi="%s" w:cs="%s"/>`, r.Font, r.Font, r.Font)
	}
	if r.Bold {
		props.WriteString("<w:b/>")
	}
	if r.Italic {
		props.WriteString("<w:i/>")
	}
	if r.Color != "" {
		fmt.Fprintf(&props, `<w:color w:val="%s"/>`, r.Color)
	}
	if r.Size > 0 {
		halfPoints := int(r.Size * 2)
		fmt.Fprintf(&props, `<w:sz w:val="%d"/><w:szCs w:val="%d"/>`, halfPoints, halfPoints)
	}
	if r.Underline {
		props.WriteString(`<w:u w:val="single"/>`)
	}
	if props.Len() > 0 {
		b.WriteString("<w:rPr>")
		b.WriteString(props.String())
		b.WriteString("</w:rPr>")
	}

	b.WriteString(`<w:t xml:space="preserve">`)
	b.WriteString(escapeXML(r.Text))
	b.WriteString("</w:t></w:r>")
}

func buildImageXML(b *strings.Builder, img *InlineImage) {
	fmt.Fprintf(b,
		`<w:r><w:drawing>`+
			`<wp:inline distT="0" distB="0" distL="0" distR="0" xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing">`+
			`<wp:extent cx="%[1]d" cy="%[2]d"/>`+
			`<wp:docPr id="1001" name="signature"/>`+
			`<a:graphic xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">`+
			`<a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
			`<pic:pic xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
			`<pic:nvPicPr><pic:cNvPr id="1001" name="signature.png"/><pic:cNvPicPr/></pic:nvPicPr>`+
			`<pic:blipFill><a:blip r:embed="%[3]s" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"/>`+
			`<a:stretch><a:fillRect/></a:stretch></pic:blipFill>`+
			`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%[1]d" cy="%[2]d"/></a:xfrm>`+
			`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>`+
			`</pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing></w:r>`,
		img.WidthEMU, img.HeightEMU, img.RelID)
}

func buildParagraphXML(p *Paragraph) string {
	var b strings.Builder
	b.WriteString("<w:p>")

	props := p.propsXML
	var overrides strings.Builder
	if p.Numbering != nil {
		props = numPrPattern.ReplaceAllString(props, "")
		fmt.Fprintf(&overrides, `<w:numPr><w:ilvl w:val="%d"/><w:numId w:val="%d"/></w:numPr>`,
			p.Numbering.Ilvl, p.Numbering.NumID)
	}
	if p.Alignment != "" {
		props = jcPattern.ReplaceAllString(props, "")
		fmt.Fprintf(&overrides, `<w:jc w:val="%s"/>`, p.Alignment)
	}
	if overrides.Len() > 0 || props != "" {
		b.WriteString("<w:pPr>")
		b.WriteString(overrides.String())
		b.WriteString(props)
		b.WriteString("</w:pPr>")
	}

	for _, r := range p.Runs {
		buildRunXML(&b, r)
	}
	if p.Image != nil {
		buildImageXML(&b, p.Image)
	}
	b.WriteString("</w:p>")
	return b.String()
}

func buildTableXML(t *Table) string {
	var b strings.Builder
	b.WriteString("<w:tbl>")
	b.WriteString(t.propsXML)
	for _, row := range t.Rows {
		b.WriteString("<w:tr>")
		b.WriteString(row.propsXML)
		for _, cell := range row.Cells {
			b.WriteString("<w:tc>")
			b.WriteString(cell.propsXML)
			if len(cell.Paragraphs) == 0 {
				// Word requires at least one paragraph per cell.
				b.WriteString("<w:p/>")
			}
			for _, p := range cell.Paragraphs {
				b.WriteString(p.RawXML())
			}
			b.WriteString("</w:tc>")
		}
		b.WriteString("</w:tr>")
	}
	b.WriteString("</w:tbl>")
	return b.String()
}

// RawXML returns the table's current serialized form: the retained source
// XML while clean, the rebuilt model otherwise.
func (t *Table) RawXML() string {
	if !t.dirty && t.raw != "" {
		return t.raw
	}
	return buildTableXML(t)
}

func blockXML(b Block) string {
	switch v := b.(type) {
	case *Paragraph:
		return v.RawXML()
	case *Table:
		return v.RawXML()
	case *RawBlock:
		return v.XML
	default:
		return ""
	}
}

func (d *Document) buildDocumentXML() []byte {
	var b strings.Builder
	b.WriteString(d.docPre)
	for _, blk := range d.Blocks {
		b.WriteString(blockXML(blk))
	}
	b.WriteString(d.docPost)
	return []byte(b.String())
}

// hasRelationship reports whether the main part relationships already carry
// the given id, counting relationships added this session.
func (d *Document) hasRelationship(id string) bool {
	if _, ok := d.newRelIDs[id]; ok {
		return true
	}
	return strings.Contains(string(d.members[relsMember]), `Id="`+id+`"`)
}

// HasSignature reports whether the document already carries the signature
// media relationship, added either in a previous session or this one.
func (d *Document) HasSignature() bool {
	return d.hasRelationship(signatureRelID)
}

// AddImage registers an image file as a document media member sized to a
// 3 cm width with the source aspect ratio. Calling it again for a document
// that already carries the signature relationship returns the existing
// reference without duplicating the media.
func (d *Document) AddImage(path string) (*InlineImage, error) {
	data, err := os.ReadFile(fsops.LongPath(path))
	if err != nil {
		return nil, errs.NotFound("image %q not found", path)
	}
	cfg, _, err := image.DecodeConfig(strings.NewReader(string(data)))
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, errs.IOFailure("failed to decode image "+path, err)
	}

	img := &InlineImage{
		RelID:     signatureRelID,
		WidthEMU:  signatureWidthEMU,
		HeightEMU: signatureWidthEMU * int64(cfg.Height) / int64(cfg.Width),
	}
	if d.hasRelationship(signatureRelID) {
		return img, nil
	}
	d.newMedia[signatureMember] = data
	d.newRelIDs[signatureRelID] = "media/signature.png"
	return img, nil
}

func (d *Document) updatedRels() []byte {
	rels := string(d.members[relsMember])
	if rels == "" {
		rels = xml.Header +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`
	}
	for id, target := range d.newRelIDs {
		if strings.Contains(rels, `Id="`+id+`"`) {
			continue
		}
		entry := fmt.Sprintf(`<Relationship Id="%s" Type="%s" Target="%s"/>`, id, imageRelationship, target)
		rels = strings.Replace(rels, "</Relationships>", entry+"</Relationships>", 1)
	}
	return []byte(rels)
}

func (d *Document) updatedContentTypes() []byte {
	types := string(d.members[contentTypes])
	if !strings.Contains(types, `Extension="png"`) {
		types = strings.Replace(types, "</Types>",
			`<Default Extension="png" ContentType="image/png"/></Types>`, 1)
	}
	return []byte(types)
}

// Save writes the document to path as a .docx archive. Untouched members
// and blocks keep their original bytes.
func (d *Document) Save(path string) error {
	out := make(map[string][]byte, len(d.members)+len(d.newMedia)+1)
	for name, content := range d.members {
		out[name] = content
	}
	out[documentMember] = d.buildDocumentXML()
	if len(d.newMedia) > 0 {
		for name, content := range d.newMedia {
			out[name] = content
		}
		out[relsMember] = d.updatedRels()
		out[contentTypes] = d.updatedContentTypes()
	}

	names := make([]string, 0, len(out))
	for name := range out {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		// Content types first, the convention for OOXML packages.
		if names[i] == contentTypes {
			return true
		}
		if names[j] == contentTypes {
			return false
		}
		return names[i] < names[j]
	})

	f, err := os.Create(fsops.LongPath(path))
	if err != nil {
		return errs.IOFailure("failed to create "+path, err)
	}
	zw := zip.NewWriter(f)
	for _, name := range names {
		w, err := zw.Create(name)
		if err == nil {
			_, err = w.Write(out[name])
		}
		if err != nil {
			zw.Close()
			f.Close()
			return errs.IOFailure("failed to write member "+name, err)
		}
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return errs.IOFailure("failed to finalize "+path, err)
	}
	if err := f.Close(); err != nil {
		return errs.IOFailure("failed to close "+path, err)
	}
	return nil
}
