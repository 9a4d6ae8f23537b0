package editor

import (
	"regexp"
	"strings"

	"github.com/feichai0017/docprep/internal/docx"
)

var appendixItemPattern = regexp.MustCompile(`^\d+\.\s+`)

// Native Word list applied to appendix items.
const (
	appendixNumID = 1
	appendixIlvl  = 0
)

// FormatAppendices turns the block after the bold "ПРИЛОЖЕНИЯ:" header
// into a native numbered list: each contiguous item starting with "N. "
// loses its manual numeral and gets list numbering, keeping its font.
// Formatting stops at the first paragraph that is not a numbered item, so
// the requisites section below the block is never touched. A document
// whose items were already converted has no "N. " prefixes left, which
// makes a second run a no-op.
func FormatAppendices(d *docx.Document) {
	paras := d.Paragraphs()
	start := -1
	for i, p := range paras {
		if strings.ToUpper(strings.TrimSpace(p.Text())) != MarkerAppendices {
			continue
		}
		if anyBold(p.Runs) {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return
	}

	for _, p := range paras[start:] {
		text := strings.TrimSpace(p.Text())
		if !appendixItemPattern.MatchString(text) {
			break
		}
		p.SetText(appendixItemPattern.ReplaceAllString(text, ""))
		p.SetNumbering(appendixNumID, appendixIlvl)
	}
}

func anyBold(runs []docx.StyledRun) bool {
	for _, r := range runs {
		if r.Bold {
			return true
		}
	}
	return false
}
