package editor

import (
	"fmt"
	"strings"

	"github.com/feichai0017/docprep/internal/docx"
)

// ZalogContactsAnchor is the paragraph after which the pledge-department
// contact block goes.
const ZalogContactsAnchor = "Электронный адрес: Bankrot_FL@sberbank.ru"

// InsertZalogContacts copies the template's first paragraph into the
// document right after the anchor paragraph. A document that already
// contains the template text anywhere is left unchanged.
func InsertZalogContacts(d *docx.Document, tpl *docx.Document) error {
	tplParas := tpl.Paragraphs()
	if len(tplParas) == 0 {
		return nil
	}
	tplText := strings.TrimSpace(tplParas[0].Text())
	if tplText == "" {
		return nil
	}

	for _, p := range d.Paragraphs() {
		if strings.Contains(p.Text(), tplText) {
			return nil
		}
	}

	for _, p := range d.Paragraphs() {
		if !strings.Contains(p.Text(), ZalogContactsAnchor) {
			continue
		}
		contacts, err := docx.CloneParagraph(tplParas[0], "", "")
		if err != nil {
			return fmt.Errorf("failed to prepare contact block: %w", err)
		}
		contacts.ForceFont(defaultFont, defaultFontSize)
		d.InsertAfter(contacts, p)
		return nil
	}
	return nil
}

// InsertSignature puts the signature image into the document's last
// paragraph, centered. A document that already carries the signature media
// is left unchanged.
func InsertSignature(d *docx.Document, imagePath string) error {
	if d.HasSignature() {
		return nil
	}
	last := d.LastParagraph()
	if last == nil {
		last = &docx.Paragraph{}
		d.AppendParagraph(last)
	}

	img, err := d.AddImage(imagePath)
	if err != nil {
		return err
	}
	last.Image = img
	last.SetAlignment("center")
	return nil
}
