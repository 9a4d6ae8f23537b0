package editor

import (
	"strings"

	"github.com/feichai0017/docprep/internal/docx"
	"github.com/feichai0017/docprep/pkg/errs"
)

// StatementTableMarker precedes the placeholder requisites table inside
// the claim document.
const StatementTableMarker = "Реквизиты ПАО Сбербанк для погашения задолженности"

const bankListPrefix = "Реквизиты"

// findBankTable scans every table of the requisites document for a cell
// containing the bank name. Exactly one table may match.
func findBankTable(requisites *docx.Document, bankName string) (*docx.Table, error) {
	needle := strings.ToLower(bankName)
	var matches []*docx.Table
	for _, tbl := range requisites.Tables() {
		if tableContains(tbl, needle) {
			matches = append(matches, tbl)
		}
	}
	switch len(matches) {
	case 0:
		return nil, errs.NotFound("no requisites table for bank %q", bankName)
	case 1:
		return matches[0], nil
	default:
		return nil, errs.AmbiguousMatch("requisites table for bank "+bankName,
			[]string{"several tables mention this bank"})
	}
}

func tableContains(tbl *docx.Table, needle string) bool {
	for _, row := range tbl.Rows {
		for _, cell := range row.Cells {
			if strings.Contains(strings.ToLower(cell.Text()), needle) {
				return true
			}
		}
	}
	return false
}

// findStatementTable returns the first table after the requisites marker
// paragraph of the claim document.
func findStatementTable(d *docx.Document) (*docx.Table, error) {
	for _, block := range d.Blocks {
		p, ok := block.(*docx.Paragraph)
		if !ok || !strings.HasPrefix(p.Text(), StatementTableMarker) {
			continue
		}
		if tbl := d.TableAfter(p); tbl != nil {
			return tbl, nil
		}
		break
	}
	return nil, errs.NotFound("placeholder requisites table not found in statement")
}

// InsertBankTable copies the selected bank's requisites into the claim
// document's placeholder table cell for cell, keeping run formatting. The
// two tables must have identical row and column counts; on a mismatch the
// placeholder table is left untouched.
func InsertBankTable(statement *docx.Document, requisites *docx.Document, bankName string) error {
	src, err := findBankTable(requisites, bankName)
	if err != nil {
		return err
	}
	dst, err := findStatementTable(statement)
	if err != nil {
		return err
	}

	if len(src.Rows) != len(dst.Rows) || src.Columns() != dst.Columns() {
		return errs.DimensionMismatch("requisites table is %dx%d, placeholder is %dx%d",
			len(src.Rows), src.Columns(), len(dst.Rows), dst.Columns())
	}
	for i, row := range src.Rows {
		if len(row.Cells) != len(dst.Rows[i].Cells) {
			return errs.DimensionMismatch("row %d: requisites table has %d cells, placeholder has %d",
				i+1, len(row.Cells), len(dst.Rows[i].Cells))
		}
	}

	for i, row := range src.Rows {
		for j, cell := range row.Cells {
			target := dst.Cell(i, j)
			var runs []docx.StyledRun
			if len(cell.Paragraphs) > 0 {
				runs = append(runs, cell.Paragraphs[0].Runs...)
			}
			for k := range runs {
				runs[k].Font = defaultFont
				runs[k].Size = defaultFontSize
			}
			target.SetRuns(runs)
		}
	}
	dst.MarkDirty()
	return nil
}

// BankList returns the bank names advertised by the requisites document,
// read from paragraphs starting with the "Реквизиты" prefix.
func BankList(requisites *docx.Document) []string {
	var banks []string
	for _, p := range requisites.Paragraphs() {
		text := strings.TrimSpace(p.Text())
		if !strings.HasPrefix(strings.ToLower(text), strings.ToLower(bankListPrefix)) {
			continue
		}
		idx := strings.LastIndex(text, bankListPrefix)
		name := text
		if idx != -1 {
			name = text[idx+len(bankListPrefix):]
		}
		if name = strings.TrimSpace(name); name != "" {
			banks = append(banks, name)
		}
	}
	return banks
}
