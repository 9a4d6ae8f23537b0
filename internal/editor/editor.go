// Package editor applies the marker-anchored mutations to an open claim
// document: scoped deletions, templated insertions with renumbering,
// appendix list formatting, requisites table substitution and signature
// insertion. Every operation is a single scan-and-mutate pass and is safe
// to re-apply to an already edited document.
package editor

import (
	"regexp"
	"strings"

	"github.com/feichai0017/docprep/internal/docx"
)

// Section markers of the claim document, in document order.
const (
	MarkerObligation   = "Обязательство №"
	MarkerCourtRequest = "ПРОСИТ СУД:"
	MarkerAppendices   = "ПРИЛОЖЕНИЯ:"
	MarkerRequisites   = "Реквизиты ПАО Сбербанк"
)

const (
	defaultFont     = "Times New Roman"
	defaultFontSize = 11.0
)

// Region bounds an edit to the paragraphs strictly between the paragraph
// containing Start and the first following paragraph containing End.
// Without the Start marker the edit is a no-op; without the End marker it
// runs through the rest of the document, trusting the fixed marker order
// of the claim template.
type Region struct {
	Start string
	End   string
}

// The three editable sections of the claim document.
var (
	ObligationRegion   = Region{Start: MarkerObligation, End: MarkerCourtRequest}
	CourtRequestRegion = Region{Start: MarkerCourtRequest, End: MarkerAppendices}
	AppendicesRegion   = Region{Start: MarkerAppendices, End: MarkerRequisites}
)

var itemNumberPattern = regexp.MustCompile(`^\d+\.`)

func containsAny(text string, targets []string) bool {
	for _, t := range targets {
		if t != "" && strings.Contains(text, t) {
			return true
		}
	}
	return false
}

// paragraphFont picks the font the paragraph should keep after its run
// structure is collapsed by a text edit.
func paragraphFont(p *docx.Paragraph) (string, float64) {
	name, size := defaultFont, defaultFontSize
	if len(p.Runs) > 0 {
		if p.Runs[0].Font != "" {
			name = p.Runs[0].Font
		}
		if p.Runs[0].Size > 0 {
			size = p.Runs[0].Size
		}
	}
	return name, size
}

// DeleteWords removes every occurrence of every target substring from
// paragraphs inside the region, then forces a uniform font across the
// rewritten paragraph. Paragraphs outside the region are never touched.
func DeleteWords(d *docx.Document, region Region, targets []string) {
	inRegion := false
	for _, p := range d.Paragraphs() {
		text := strings.TrimSpace(p.Text())
		if !inRegion {
			if strings.Contains(text, region.Start) {
				inRegion = true
			}
			continue
		}
		if strings.Contains(text, region.End) {
			break
		}
		full := p.Text()
		if !containsAny(full, targets) {
			continue
		}
		for _, t := range targets {
			if t != "" {
				full = strings.ReplaceAll(full, t, "")
			}
		}
		name, size := paragraphFont(p)
		p.SetText(full)
		p.ForceFont(name, size)
	}
}

// DeleteParagraphs removes whole paragraphs inside the region when they
// contain any target substring. With alsoPrevious the paragraph immediately
// before each removed one goes too, which cleans up the blank spacer left
// above a removed list item.
func DeleteParagraphs(d *docx.Document, region Region, targets []string, alsoPrevious bool) {
	paras := d.Paragraphs()
	inRegion := false
	for i, p := range paras {
		text := strings.TrimSpace(p.Text())
		if !inRegion {
			if strings.Contains(text, region.Start) {
				inRegion = true
			}
			continue
		}
		if strings.Contains(text, region.End) {
			break
		}
		if !containsAny(p.Text(), targets) {
			continue
		}
		d.Remove(p)
		if alsoPrevious && i > 0 {
			d.Remove(paras[i-1])
		}
	}
}
