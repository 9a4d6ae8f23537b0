// Package pdfmatch cross-checks extracted case facts against the official
// publication PDF. It only confirms or disputes values supplied by the
// caller and never produces canonical facts itself.
package pdfmatch

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/sync/errgroup"

	"github.com/feichai0017/docprep/pkg/logger"
)

// Result of matching one field against the publication text.
type Result string

const (
	Match    Result = "match"
	Mismatch Result = "mismatch"
	Unknown  Result = "unknown"
)

// Field names accepted by Match.
const (
	FieldDebtor       = "fio_debtor"
	FieldManager      = "manager"
	FieldCaseNumber   = "case_number"
	FieldDecisionDate = "decision_date"
)

// fieldAnchor locates a field inside the publication: the value sits a
// fixed number of lines below the first line containing the label.
type fieldAnchor struct {
	label  string
	offset int
}

var anchors = map[string]fieldAnchor{
	FieldDebtor:       {label: "ФИО должника", offset: 1},
	FieldManager:      {label: "управляющий", offset: 1},
	FieldCaseNumber:   {label: "# дела", offset: 1},
	FieldDecisionDate: {label: "Дата решения", offset: 3},
}

const maxPageWorkers = 4

type Matcher struct {
	logger logger.Logger
}

func NewMatcher(log logger.Logger) *Matcher {
	return &Matcher{logger: log}
}

// ExtractText returns the plain text of every page joined in page order.
func (m *Matcher) ExtractText(ctx context.Context, path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read pdf %s: %w", path, err)
	}

	reader := bytes.NewReader(content)
	pdfReader, err := pdf.NewReader(reader, reader.Size())
	if err != nil {
		return "", fmt.Errorf("failed to parse pdf %s: %w", path, err)
	}

	numPages := pdfReader.NumPage()
	pages := make([]string, numPages+1)

	g, ctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, maxPageWorkers)
	for i := 1; i <= numPages; i++ {
		pageNum := i
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return ctx.Err()
			}

			page := pdfReader.Page(pageNum)
			if page.V.IsNull() {
				return nil
			}
			text, err := page.GetPlainText(nil)
			if err != nil {
				return fmt.Errorf("failed to extract page %d: %w", pageNum, err)
			}
			pages[pageNum] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}
	return strings.Join(pages[1:], "\n"), nil
}

// FindField pulls one field value out of publication text by its anchor,
// returning "" when the label or the value line is absent.
func FindField(text, field string) string {
	anchor, ok := anchors[field]
	if !ok {
		return ""
	}
	lines := nonEmptyLines(text)
	for i, line := range lines {
		if strings.Contains(line, anchor.label) {
			if i+anchor.offset < len(lines) {
				return lines[i+anchor.offset]
			}
			return ""
		}
	}
	return ""
}

// Match compares each expected field value against the publication. A field
// that cannot be located (or an empty expectation) comes back Unknown; the
// publication never overrides the caller's values.
func (m *Matcher) Match(ctx context.Context, pdfPath string, expected map[string]string) (map[string]Result, error) {
	text, err := m.ExtractText(ctx, pdfPath)
	if err != nil {
		return nil, err
	}

	results := make(map[string]Result, len(expected))
	for field, want := range expected {
		got := FindField(text, field)
		switch {
		case want == "" || got == "":
			results[field] = Unknown
		case strings.Contains(normalize(got), normalize(want)):
			results[field] = Match
		default:
			results[field] = Mismatch
			m.logger.Warn("publication field differs",
				logger.String("field", field),
				logger.String("expected", want),
				logger.String("found", got))
		}
	}
	return results, nil
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
