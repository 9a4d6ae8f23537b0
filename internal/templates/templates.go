// Package templates resolves the editable assets the statement pipeline
// consumes: docx template fragments, the bank requisites document, the
// signature image and the per-section word lists. A missing asset is not an
// error; the corresponding pipeline step is skipped.
package templates

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/feichai0017/docprep/internal/docx"
	"github.com/feichai0017/docprep/pkg/errs"
)

// Asset locations relative to the templates directory.
const (
	delWordsObligations      = "obyazatelstvo/del_words.txt"
	delParagraphsObligations = "obyazatelstvo/del_paragraphs.txt"
	delParagraphsCourt       = "gosposhlina/del_paragraphs.txt"
	delParagraphsAppendices  = "appendices/del_paragraphs.txt"
	gosposhlinaTemplate      = "gosposhlina/add_gosposhlina.docx"
	zalogContactsTemplate    = "zalog_contacts.docx"
	bankRequisitesFile       = "bank_requisites.docx"
	signatureImage           = "signa.png"
)

// Provider resolves assets under one templates directory.
type Provider struct {
	dir string
}

func NewProvider(dir string) *Provider {
	return &Provider{dir: dir}
}

// document opens a docx asset, mapping absence to (nil, nil).
func (p *Provider) document(rel string) (*docx.Document, error) {
	d, err := docx.Open(filepath.Join(p.dir, rel))
	if errors.Is(err, errs.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open template %s: %w", rel, err)
	}
	return d, nil
}

// wordList reads a line-per-entry text file, skipping blank lines. A
// missing file yields (nil, nil).
func (p *Provider) wordList(rel string) ([]string, error) {
	f, err := os.Open(filepath.Join(p.dir, rel))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open word list %s: %w", rel, err)
	}
	defer f.Close()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimRight(scanner.Text(), "\r\n"); strings.TrimSpace(line) != "" {
			words = append(words, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read word list %s: %w", rel, err)
	}
	return words, nil
}

// GosposhlinaTemplate returns the state-fee clause template document.
func (p *Provider) GosposhlinaTemplate() (*docx.Document, error) {
	return p.document(gosposhlinaTemplate)
}

// ZalogContactsTemplate returns the pledge-department contact template.
func (p *Provider) ZalogContactsTemplate() (*docx.Document, error) {
	return p.document(zalogContactsTemplate)
}

// BankRequisites returns the bank requisites reference document.
func (p *Provider) BankRequisites() (*docx.Document, error) {
	return p.document(bankRequisitesFile)
}

// DeleteWordsObligations is the word list removed inside Обязательства.
func (p *Provider) DeleteWordsObligations() ([]string, error) {
	return p.wordList(delWordsObligations)
}

// DeleteParagraphsObligations lists paragraph markers removed inside
// Обязательства.
func (p *Provider) DeleteParagraphsObligations() ([]string, error) {
	return p.wordList(delParagraphsObligations)
}

// DeleteParagraphsCourt lists item markers removed inside ПРОСИТ СУД.
func (p *Provider) DeleteParagraphsCourt() ([]string, error) {
	return p.wordList(delParagraphsCourt)
}

// DeleteParagraphsAppendices lists item markers removed inside ПРИЛОЖЕНИЯ.
func (p *Provider) DeleteParagraphsAppendices() ([]string, error) {
	return p.wordList(delParagraphsAppendices)
}

// SignaturePath returns the signature image path, or "" when the file is
// absent.
func (p *Provider) SignaturePath() string {
	path := filepath.Join(p.dir, signatureImage)
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
