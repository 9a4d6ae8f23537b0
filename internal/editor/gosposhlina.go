package editor

import (
	"fmt"
	"strings"

	"github.com/feichai0017/docprep/internal/docx"
)

// Anchors bounding the debtor name inside court-request item "1.".
const (
	nameLeftAnchor  = "кредиторов"
	nameRightAnchor = "в размере"
)

// NamePlaceholder is the token substituted in template paragraphs.
const NamePlaceholder = "ФИО"

// insertionMarker derives a distinctive probe from the template clause so a
// prior insertion can be recognized after the placeholder was substituted.
func insertionMarker(tplText string) string {
	head, tail, found := strings.Cut(tplText, NamePlaceholder)
	if !found {
		return strings.TrimSpace(tplText)
	}
	head, tail = strings.TrimSpace(head), strings.TrimSpace(tail)
	if len(tail) > len(head) {
		return tail
	}
	return head
}

// InsertGosposhlina adds the state-fee clause to the court-request section.
// The template's first paragraph becomes the clause with the debtor name
// substituted for the placeholder, its second paragraph becomes a spacer
// after the clause, and every following numbered item is renumbered from 3.
// Running it on a document that already carries the clause changes nothing.
func InsertGosposhlina(d *docx.Document, tpl *docx.Document) error {
	tplParas := tpl.Paragraphs()
	if len(tplParas) == 0 {
		return nil
	}
	marker := insertionMarker(tplParas[0].Text())

	paras := d.Paragraphs()
	inRegion := false
	debtorName := ""
	for i, p := range paras {
		text := strings.TrimSpace(p.Text())
		if !inRegion {
			if strings.Contains(text, MarkerCourtRequest) {
				inRegion = true
			}
			continue
		}
		if strings.Contains(text, MarkerAppendices) {
			break
		}
		if marker != "" && strings.Contains(p.Text(), marker) {
			return nil
		}
		if strings.HasPrefix(text, "1.") {
			full := p.Text()
			start := strings.Index(full, nameLeftAnchor)
			end := strings.Index(full, nameRightAnchor)
			if start != -1 && end > start {
				debtorName = strings.TrimSpace(full[start+len(nameLeftAnchor) : end])
				continue
			}
		}
		if !itemNumberPattern.MatchString(text) {
			continue
		}

		clause, err := docx.CloneParagraph(tplParas[0], NamePlaceholder, debtorName)
		if err != nil {
			return fmt.Errorf("failed to prepare clause: %w", err)
		}
		clause.ForceFont(defaultFont, defaultFontSize)
		d.InsertBefore(clause, p)

		if len(tplParas) > 1 {
			spacer, err := docx.CloneParagraph(tplParas[1], "", "")
			if err != nil {
				return fmt.Errorf("failed to prepare spacer: %w", err)
			}
			spacer.ForceFont(defaultFont, 5)
			d.InsertAfter(spacer, clause)
		}

		renumberItems(paras[i:], 3)
		return nil
	}
	return nil
}

// renumberItems rewrites the leading "N." token of every numbered item to a
// bold sequential numeral, keeping the rest of each item's runs intact.
// Renumbering stops at the appendices header.
func renumberItems(paras []*docx.Paragraph, from int) {
	n := from
	for _, p := range paras {
		text := strings.TrimSpace(p.Text())
		if strings.HasPrefix(text, "ПРИЛОЖЕНИЯ") {
			break
		}
		if !itemNumberPattern.MatchString(text) {
			continue
		}

		runs := []docx.StyledRun{{
			Text: fmt.Sprintf("%d.", n),
			Font: defaultFont,
			Size: defaultFontSize,
			Bold: true,
		}}
		numeralDone := false
		for _, r := range p.Runs {
			if numeralDone {
				runs = append(runs, r)
				continue
			}
			dot := strings.Index(r.Text, ".")
			if dot == -1 {
				// Still inside the old numeral, drop the run.
				continue
			}
			r.Text = r.Text[dot+1:]
			runs = append(runs, r)
			numeralDone = true
		}
		p.SetRuns(runs)
		n++
	}
}
