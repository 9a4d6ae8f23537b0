package editor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/docprep/internal/docx"
	"github.com/feichai0017/docprep/pkg/errs"
)

func paragraph(text string, style docx.StyledRun) *docx.Paragraph {
	style.Text = text
	p := &docx.Paragraph{Runs: []docx.StyledRun{style}}
	p.MarkDirty()
	return p
}

func buildDoc(texts ...string) *docx.Document {
	d := docx.New()
	for _, text := range texts {
		d.AppendParagraph(paragraph(text, docx.StyledRun{Font: "Times New Roman", Size: 12}))
	}
	return d
}

func texts(d *docx.Document) []string {
	var out []string
	for _, p := range d.Paragraphs() {
		out = append(out, p.Text())
	}
	return out
}

func TestDeleteWordsStaysInsideRegion(t *testing.T) {
	d := buildDoc(
		"преамбула с неустойкой",
		"Обязательство № 123",
		"долг и неустойка по договору",
		"ПРОСИТ СУД:",
		"взыскать неустойку",
	)

	DeleteWords(d, ObligationRegion, []string{"неустойка", "неустойкой", "неустойку"})

	got := texts(d)
	assert.Equal(t, "преамбула с неустойкой", got[0])
	assert.Equal(t, "долг и  по договору", got[2])
	assert.Equal(t, "взыскать неустойку", got[4])
}

func TestDeleteWordsMissingStartMarkerNoOp(t *testing.T) {
	d := buildDoc(
		"преамбула с неустойкой",
		"долг и неустойка по договору",
		"ПРОСИТ СУД:",
	)
	before := texts(d)

	DeleteWords(d, ObligationRegion, []string{"неустойка", "неустойкой"})

	assert.Equal(t, before, texts(d))
}

func TestDeleteWordsMissingEndMarkerRunsToEnd(t *testing.T) {
	d := buildDoc(
		"Обязательство № 123",
		"долг и неустойка по договору",
		"взыскать неустойку",
	)

	DeleteWords(d, ObligationRegion, []string{"неустойка", "неустойку"})

	got := texts(d)
	assert.Equal(t, "долг и  по договору", got[1])
	assert.Equal(t, "взыскать ", got[2])
}

func TestDeleteParagraphsMissingEndMarkerRunsToEnd(t *testing.T) {
	d := buildDoc(
		"ПРОСИТ СУД:",
		"1. Признать требование",
		"2. Установить статус залогового кредитора",
	)

	DeleteParagraphs(d, CourtRequestRegion, []string{"залогового кредитора"}, false)

	got := texts(d)
	require.Len(t, got, 2)
	assert.Equal(t, "1. Признать требование", got[1])
}

func TestDeleteWordsForcesUniformFont(t *testing.T) {
	d := docx.New()
	d.AppendParagraph(paragraph("Обязательство № 1", docx.StyledRun{}))
	mixed := &docx.Paragraph{Runs: []docx.StyledRun{
		{Text: "пеня ", Font: "Arial", Size: 9},
		{Text: "и штраф", Font: "Calibri", Size: 14, Bold: true},
	}}
	mixed.MarkDirty()
	d.AppendParagraph(mixed)
	d.AppendParagraph(paragraph("ПРОСИТ СУД:", docx.StyledRun{}))

	DeleteWords(d, ObligationRegion, []string{"штраф"})

	p := d.Paragraphs()[1]
	assert.Equal(t, "пеня и ", p.Text())
	for _, r := range p.Runs {
		assert.Equal(t, "Arial", r.Font)
		assert.Equal(t, 9.0, r.Size)
	}
}

func TestDeleteParagraphs(t *testing.T) {
	d := buildDoc(
		"Обязательство № 5",
		"оставить",
		"удалить этот абзац",
		"ПРОСИТ СУД:",
		"удалить этот абзац", // outside region, must survive
	)

	DeleteParagraphs(d, ObligationRegion, []string{"удалить"}, false)

	got := texts(d)
	require.Len(t, got, 4)
	assert.Equal(t, []string{"Обязательство № 5", "оставить", "ПРОСИТ СУД:", "удалить этот абзац"}, got)
}

func TestDeleteParagraphsAlsoPrevious(t *testing.T) {
	d := buildDoc(
		"ПРОСИТ СУД:",
		"1. включить требования",
		"",
		"2. установить мораторные проценты",
		"3. рассмотреть без участия",
		"ПРИЛОЖЕНИЯ:",
	)

	DeleteParagraphs(d, CourtRequestRegion, []string{"мораторные"}, true)

	got := texts(d)
	assert.Equal(t, []string{
		"ПРОСИТ СУД:",
		"1. включить требования",
		"3. рассмотреть без участия",
		"ПРИЛОЖЕНИЯ:",
	}, got)
}

func gosposhlinaTemplate(t *testing.T) *docx.Document {
	t.Helper()
	tpl := docx.New()
	tpl.AppendParagraph(paragraph(
		"2. Взыскать с ФИО расходы по уплате государственной пошлины.",
		docx.StyledRun{Font: "Times New Roman", Size: 11}))
	tpl.AppendParagraph(paragraph("", docx.StyledRun{Size: 5}))
	return tpl
}

func TestInsertGosposhlina(t *testing.T) {
	d := buildDoc(
		"ПРОСИТ СУД:",
		"1. Включить в реестр требований кредиторов Иванов Иван Иванович в размере 100 000 руб.",
		"2. Рассмотреть заявление без участия представителя.",
		"3. Выдать определение.",
		"ПРИЛОЖЕНИЯ:",
	)

	require.NoError(t, InsertGosposhlina(d, gosposhlinaTemplate(t)))

	got := texts(d)
	require.Len(t, got, 7)
	assert.Contains(t, got[2], "Взыскать с Иванов Иван Иванович расходы")
	assert.Equal(t, "", got[3]) // spacer
	assert.True(t, strings.HasPrefix(got[4], "3."), "old item 2 renumbered: %q", got[4])
	assert.True(t, strings.HasPrefix(got[5], "4."), "old item 3 renumbered: %q", got[5])

	// The numeral run is bold, the item tail keeps its text.
	item := d.Paragraphs()[4]
	assert.True(t, item.Runs[0].Bold)
	assert.Equal(t, "3.", item.Runs[0].Text)
}

func TestInsertGosposhlinaIdempotent(t *testing.T) {
	d := buildDoc(
		"ПРОСИТ СУД:",
		"1. Включить в реестр требований кредиторов Иванов И. И. в размере 1 руб.",
		"2. Рассмотреть заявление.",
		"ПРИЛОЖЕНИЯ:",
	)
	tpl := gosposhlinaTemplate(t)

	require.NoError(t, InsertGosposhlina(d, tpl))
	count := len(d.Paragraphs())
	require.NoError(t, InsertGosposhlina(d, tpl))
	assert.Equal(t, count, len(d.Paragraphs()))
}

func TestFormatAppendices(t *testing.T) {
	d := docx.New()
	header := paragraph("ПРИЛОЖЕНИЯ:", docx.StyledRun{Bold: true})
	d.AppendParagraph(header)
	d.AppendParagraph(paragraph("1. Копия паспорта", docx.StyledRun{Font: "Times New Roman", Size: 11}))
	d.AppendParagraph(paragraph("2. Выписка из ЕГРЮЛ", docx.StyledRun{Font: "Times New Roman", Size: 11}))
	d.AppendParagraph(paragraph("Реквизиты ПАО Сбербанк для погашения задолженности", docx.StyledRun{}))

	FormatAppendices(d)

	paras := d.Paragraphs()
	assert.Equal(t, "Копия паспорта", paras[1].Text())
	assert.Equal(t, "Выписка из ЕГРЮЛ", paras[2].Text())
	require.NotNil(t, paras[1].Numbering)
	require.NotNil(t, paras[2].Numbering)
	assert.Equal(t, 1, paras[1].Numbering.NumID)
	assert.Equal(t, 0, paras[1].Numbering.Ilvl)
	assert.Equal(t, "Times New Roman", paras[1].Runs[0].Font)

	// The section below the block keeps its text and gets no numbering.
	assert.Nil(t, paras[3].Numbering)
	assert.Contains(t, paras[3].Text(), "Реквизиты")
}

func TestFormatAppendicesRequiresBoldHeader(t *testing.T) {
	d := buildDoc("ПРИЛОЖЕНИЯ:", "1. Копия паспорта")
	FormatAppendices(d)
	assert.Equal(t, "1. Копия паспорта", d.Paragraphs()[1].Text())
}

func cellOf(text string, style docx.StyledRun) *docx.TableCell {
	return &docx.TableCell{Paragraphs: []*docx.Paragraph{paragraph(text, style)}}
}

func tableOf(rows ...[]string) *docx.Table {
	t := &docx.Table{}
	for _, r := range rows {
		row := &docx.TableRow{}
		for _, text := range r {
			row.Cells = append(row.Cells, cellOf(text, docx.StyledRun{}))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func statementWithTable(rows ...[]string) *docx.Document {
	d := docx.New()
	d.AppendParagraph(paragraph(StatementTableMarker, docx.StyledRun{}))
	d.Blocks = append(d.Blocks, tableOf(rows...))
	return d
}

func TestInsertBankTable(t *testing.T) {
	requisites := docx.New()
	src := &docx.Table{Rows: []*docx.TableRow{
		{Cells: []*docx.TableCell{
			cellOf("Получатель", docx.StyledRun{Bold: true}),
			cellOf("ПАО Сбербанк", docx.StyledRun{}),
		}},
		{Cells: []*docx.TableCell{
			cellOf("БИК", docx.StyledRun{}),
			cellOf("044525225", docx.StyledRun{}),
		}},
	}}
	requisites.Blocks = append(requisites.Blocks, src)

	stmt := statementWithTable([]string{"", ""}, []string{"", ""})
	require.NoError(t, InsertBankTable(stmt, requisites, "сбербанк"))

	dst := stmt.Tables()[0]
	assert.Equal(t, "Получатель", dst.Cell(0, 0).Text())
	assert.Equal(t, "044525225", dst.Cell(1, 1).Text())
	assert.True(t, dst.Cell(0, 0).Paragraphs[0].Runs[0].Bold)
	assert.Equal(t, "Times New Roman", dst.Cell(0, 0).Paragraphs[0].Runs[0].Font)
}

func TestInsertBankTableDimensionMismatch(t *testing.T) {
	requisites := docx.New()
	requisites.Blocks = append(requisites.Blocks, tableOf(
		[]string{"ПАО Сбербанк"}, []string{"a"}, []string{"b"}))

	stmt := statementWithTable([]string{"x"}, []string{"x"}, []string{"x"}, []string{"x"})
	err := InsertBankTable(stmt, requisites, "Сбербанк")
	require.ErrorIs(t, err, errs.ErrDimensionMismatch)

	// Placeholder untouched.
	for i := 0; i < 4; i++ {
		assert.Equal(t, "x", stmt.Tables()[0].Cell(i, 0).Text())
	}
}

func TestInsertBankTableAmbiguous(t *testing.T) {
	requisites := docx.New()
	requisites.Blocks = append(requisites.Blocks, tableOf([]string{"АО Альфа-Банк"}))
	requisites.Blocks = append(requisites.Blocks, tableOf([]string{"филиал АО Альфа-Банк"}))

	stmt := statementWithTable([]string{""})
	err := InsertBankTable(stmt, requisites, "Альфа-Банк")
	require.Error(t, err)
}

func TestBankList(t *testing.T) {
	requisites := buildDoc(
		"Справочник",
		"Реквизиты ПАО Сбербанк",
		"строка между",
		"Реквизиты АО Альфа-Банк",
		"Реквизиты", // no name, skipped
	)
	assert.Equal(t, []string{"ПАО Сбербанк", "АО Альфа-Банк"}, BankList(requisites))
}

func TestInsertZalogContacts(t *testing.T) {
	tpl := docx.New()
	tpl.AppendParagraph(paragraph("Контакты залогового подразделения: +7 495 000-00-00", docx.StyledRun{}))

	d := buildDoc(
		"шапка",
		"Электронный адрес: Bankrot_FL@sberbank.ru",
		"подпись",
	)

	require.NoError(t, InsertZalogContacts(d, tpl))
	got := texts(d)
	require.Len(t, got, 4)
	assert.Contains(t, got[2], "залогового подразделения")

	// Second run does not duplicate the block.
	require.NoError(t, InsertZalogContacts(d, tpl))
	assert.Len(t, texts(d), 4)
}

func TestInsertZalogContactsNoAnchor(t *testing.T) {
	tpl := docx.New()
	tpl.AppendParagraph(paragraph("Контакты залогового подразделения", docx.StyledRun{}))

	d := buildDoc("документ без якоря")
	require.NoError(t, InsertZalogContacts(d, tpl))
	assert.Len(t, texts(d), 1)
}
