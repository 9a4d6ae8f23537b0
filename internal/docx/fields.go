package docx

import (
	"regexp"
	"strings"
)

// Anchors used when pulling structured facts out of the claim document.
const (
	debtorLabel  = "Должник:"
	managerLabel = "Финансовый управляющий:"

	// DecisionDatePhrase marks the paragraph after which the register
	// inclusion decision date is stated.
	DecisionDatePhrase = "о включении требований в реестр кредиторов"
)

var (
	// Case numbers look like А33-12345/2024. Both the Cyrillic А and the
	// Latin A occur in the wild.
	caseNumberPattern = regexp.MustCompile(`[АA]\d{2}-\d+/\d{4}`)

	datePattern = regexp.MustCompile(`\d{2}\.\d{2}\.\d{4}`)
)

// ExtractAfterLabel returns the trimmed text of the paragraph immediately
// following the first paragraph that contains label. It returns "" when the
// label is absent or is the last paragraph.
func ExtractAfterLabel(d *Document, label string) string {
	paras := d.Paragraphs()
	for i, p := range paras {
		if strings.Contains(p.Text(), label) {
			if i+1 < len(paras) {
				return strings.TrimSpace(paras[i+1].Text())
			}
			return ""
		}
	}
	return ""
}

// ExtractDebtorName returns the debtor's full name stated after the
// "Должник:" label, or "".
func ExtractDebtorName(d *Document) string {
	return ExtractAfterLabel(d, debtorLabel)
}

// ExtractManagerName returns the insolvency manager's full name stated
// after the "Финансовый управляющий:" label, or "".
func ExtractManagerName(d *Document) string {
	return ExtractAfterLabel(d, managerLabel)
}

// ExtractCaseNumber scans paragraphs in order and returns the first court
// case number found, or "".
func ExtractCaseNumber(d *Document) string {
	for _, p := range d.Paragraphs() {
		if m := caseNumberPattern.FindString(p.Text()); m != "" {
			return m
		}
	}
	return ""
}

// ExtractDecisionDate scans for paragraphs containing DecisionDatePhrase
// and returns the first dd.mm.yyyy date found two paragraphs after one of
// them, or "". An occurrence without a date does not stop the scan.
func ExtractDecisionDate(d *Document) string {
	paras := d.Paragraphs()
	for i, p := range paras {
		if !strings.Contains(p.Text(), DecisionDatePhrase) {
			continue
		}
		if i+2 >= len(paras) {
			continue
		}
		if m := datePattern.FindString(paras[i+2].Text()); m != "" {
			return m
		}
	}
	return ""
}
