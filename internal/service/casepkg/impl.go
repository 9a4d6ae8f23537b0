package casepkg

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/feichai0017/docprep/internal/archive"
	"github.com/feichai0017/docprep/internal/docx"
	"github.com/feichai0017/docprep/internal/editor"
	"github.com/feichai0017/docprep/internal/fsops"
	"github.com/feichai0017/docprep/internal/models"
	"github.com/feichai0017/docprep/internal/pdfmatch"
	"github.com/feichai0017/docprep/internal/templates"
	"github.com/feichai0017/docprep/pkg/errs"
	"github.com/feichai0017/docprep/pkg/logger"
)

const baseStatementSuffix = " (базовое)"

type Service struct {
	templates *templates.Provider
	logger    logger.Logger
}

func NewService(tpl *templates.Provider, log logger.Logger) PackageService {
	return &Service{templates: tpl, logger: log}
}

func (s *Service) newResult() *models.PackageResult {
	return &models.PackageResult{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
	}
}

// log appends one human-readable line to the run report and mirrors it to
// the structured log.
func (s *Service) log(res *models.PackageResult, msg string, fields ...logger.Field) {
	res.Logs = append(res.Logs, msg)
	s.logger.Info(msg, append(fields, logger.String("run_id", res.RunID))...)
}

// fail records a reorganization-phase failure. It becomes the operation's
// sole outcome; no later reorganization step runs.
func (s *Service) fail(res *models.PackageResult, what string, err error) error {
	wrapped := fmt.Errorf("%s: %w", what, err)
	res.Logs = append(res.Logs, wrapped.Error())
	s.logger.Error(what, logger.Error(err), logger.String("run_id", res.RunID))
	return wrapped
}

func extractFacts(d *docx.Document) models.CaseFacts {
	return models.CaseFacts{
		DebtorName:   docx.ExtractDebtorName(d),
		CaseNumber:   docx.ExtractCaseNumber(d),
		ManagerName:  docx.ExtractManagerName(d),
		DecisionDate: docx.ExtractDecisionDate(d),
	}
}

// readFacts opens the claim document and refuses to proceed when the facts
// every later naming decision depends on cannot be extracted.
func (s *Service) readFacts(claimPath string) (models.CaseFacts, error) {
	doc, err := docx.Open(claimPath)
	if err != nil {
		return models.CaseFacts{}, err
	}
	facts := extractFacts(doc)
	if facts.DebtorName == "" {
		return facts, errs.NotFound("debtor name not found in %s", filepath.Base(claimPath))
	}
	if facts.CaseNumber == "" {
		return facts, errs.NotFound("case number not found in %s", filepath.Base(claimPath))
	}
	return facts, nil
}

// arbiterFolderName applies the configured naming scheme.
func arbiterFolderName(cfg models.PipelineConfig, facts models.CaseFacts) string {
	switch cfg.ArbiterNaming {
	case models.NamingArbitrDebtor:
		return "Арбитр " + facts.DebtorName
	case models.NamingADebtor:
		return "А " + facts.DebtorName
	default:
		return fsops.SanitizeFilename(facts.CaseNumber) + " " + facts.DebtorName
	}
}

// dossierSuffix converts a case number from the claim document into the
// form used inside archive-derived folder names, where the slash is an
// underscore. The leading letter is dropped because the document and the
// archive name disagree on Cyrillic vs Latin А.
func dossierSuffix(caseNumber string) string {
	runes := []rune(caseNumber)
	if len(runes) > 1 {
		caseNumber = string(runes[1:])
	}
	return strings.ReplaceAll(caseNumber, "/", "_")
}

// buildArbiter creates the consolidated case folder inside the dossier and
// brings every obligation folder into it, either as a per-obligation copy
// or flat-merged with obligation tags.
func (s *Service) buildArbiter(res *models.PackageResult, dossier string, cfg models.PipelineConfig, facts models.CaseFacts) (string, error) {
	arbiterPath, err := fsops.EnsureFolder(filepath.Join(dossier, arbiterFolderName(cfg, facts)))
	if err != nil {
		return "", err
	}

	obligations, err := fsops.ListObligationFolders(dossier)
	if err != nil {
		return "", err
	}
	for _, oblig := range obligations {
		if oblig == arbiterPath {
			continue
		}
		if cfg.MergeObligations {
			tag := fsops.ObligationTag(filepath.Base(oblig))
			if err := fsops.MergeObligationContents(oblig, arbiterPath, tag); err != nil {
				return "", err
			}
		} else {
			if _, err := fsops.CopyFolder(oblig, arbiterPath); err != nil {
				return "", err
			}
		}
	}
	s.log(res, fmt.Sprintf("Папка арбитражного дела собрана: %s", filepath.Base(arbiterPath)),
		logger.Int("obligations", len(obligations)))
	return arbiterPath, nil
}

// preserveBase keeps an unedited copy of the claim document next to it
// before the statement pipeline starts rewriting the original.
func (s *Service) preserveBase(res *models.PackageResult, claimPath string) {
	ext := filepath.Ext(claimPath)
	base := strings.TrimSuffix(claimPath, ext) + baseStatementSuffix + ext
	if _, err := fsops.CopyFile(claimPath, base); err != nil {
		s.log(res, "Не удалось сохранить базовое заявление: "+err.Error())
		return
	}
	s.log(res, "Сохранена базовая версия заявления")
}

func (s *Service) FormPackage(ctx context.Context, folder string, cfg models.PipelineConfig) (*models.PackageResult, error) {
	res := s.newResult()
	defer func() { res.FinishedAt = time.Now() }()

	claimPath, err := fsops.FindClaimDoc(folder)
	if err != nil {
		return res, s.fail(res, "поиск заявления", err)
	}
	facts, err := s.readFacts(claimPath)
	if err != nil {
		return res, s.fail(res, "извлечение данных должника", err)
	}
	res.Facts = facts
	s.log(res, fmt.Sprintf("Дело %s, должник %s", facts.CaseNumber, facts.DebtorName))

	archivePath, err := archive.FindArchive(folder)
	if err != nil {
		return res, s.fail(res, "поиск архива досье", err)
	}
	dossier, err := archive.Extract(archivePath, filepath.Join(folder, facts.DebtorName))
	if err != nil {
		return res, s.fail(res, "распаковка архива досье", err)
	}
	if err := archive.ExtractNested(dossier); err != nil {
		return res, s.fail(res, "распаковка вложенных архивов", err)
	}
	if err := fsops.DeleteFile(archivePath); err != nil {
		return res, s.fail(res, "удаление архива досье", err)
	}
	res.DossierPath = dossier
	s.log(res, "Досье распаковано")

	claimPath, err = fsops.MoveFile(claimPath, dossier)
	if err != nil {
		return res, s.fail(res, "перемещение заявления в досье", err)
	}
	res.ClaimDocPath = claimPath
	if cfg.SaveBaseStatement {
		s.preserveBase(res, claimPath)
	}

	arbiterPath, err := s.buildArbiter(res, dossier, cfg, facts)
	if err != nil {
		return res, s.fail(res, "сборка папки арбитражного дела", err)
	}
	res.ArbiterPath = arbiterPath

	s.processStatement(ctx, res, claimPath, cfg)
	return res, nil
}

func (s *Service) InsertStatement(ctx context.Context, folder string, cfg models.PipelineConfig) (*models.PackageResult, error) {
	res := s.newResult()
	defer func() { res.FinishedAt = time.Now() }()

	claimPath, err := fsops.FindClaimDoc(folder)
	if err != nil {
		return res, s.fail(res, "поиск заявления", err)
	}
	facts, err := s.readFacts(claimPath)
	if err != nil {
		return res, s.fail(res, "извлечение данных должника", err)
	}
	res.Facts = facts

	dossier, err := fsops.FindUnlabeledDossier(folder, dossierSuffix(facts.CaseNumber))
	if err != nil {
		return res, s.fail(res, "поиск распакованного досье", err)
	}
	dossier, err = fsops.RenameFolder(dossier, facts.DebtorName)
	if err != nil {
		return res, s.fail(res, "переименование папки досье", err)
	}
	res.DossierPath = dossier
	s.log(res, "Папка досье переименована: "+facts.DebtorName)

	claimPath, err = fsops.MoveFile(claimPath, dossier)
	if err != nil {
		return res, s.fail(res, "перемещение заявления в досье", err)
	}
	res.ClaimDocPath = claimPath
	if cfg.SaveBaseStatement {
		s.preserveBase(res, claimPath)
	}

	arbiterPath, err := s.buildArbiter(res, dossier, cfg, facts)
	if err != nil {
		return res, s.fail(res, "сборка папки арбитражного дела", err)
	}
	res.ArbiterPath = arbiterPath

	s.processStatement(ctx, res, claimPath, cfg)
	return res, nil
}

func (s *Service) UnpackNoStatement(ctx context.Context, folder string) (*models.PackageResult, error) {
	res := s.newResult()
	defer func() { res.FinishedAt = time.Now() }()

	archivePath, err := archive.FindArchive(folder)
	if err != nil {
		return res, s.fail(res, "поиск архива досье", err)
	}
	caseNumber := fsops.CaseNumberFromFilename(filepath.Base(archivePath))
	if caseNumber == "" {
		return res, s.fail(res, "извлечение номера дела из имени архива",
			errs.NotFound("no case number token in %q", filepath.Base(archivePath)))
	}
	res.Facts.CaseNumber = caseNumber

	dossier, err := archive.Extract(archivePath, filepath.Join(folder, caseNumber+" без заявления"))
	if err != nil {
		return res, s.fail(res, "распаковка архива досье", err)
	}
	if err := archive.ExtractNested(dossier); err != nil {
		return res, s.fail(res, "распаковка вложенных архивов", err)
	}
	if err := fsops.DeleteFile(archivePath); err != nil {
		return res, s.fail(res, "удаление архива досье", err)
	}
	res.DossierPath = dossier
	s.log(res, "Досье распаковано без заявления: "+filepath.Base(dossier))
	return res, nil
}

func (s *Service) CheckPublication(ctx context.Context, folder, pdfPath string) (map[string]pdfmatch.Result, error) {
	claimPath, err := fsops.FindClaimDoc(folder)
	if err != nil {
		return nil, err
	}
	facts, err := s.readFacts(claimPath)
	if err != nil {
		return nil, err
	}

	expected := map[string]string{
		pdfmatch.FieldDebtor:       facts.DebtorName,
		pdfmatch.FieldManager:      facts.ManagerName,
		pdfmatch.FieldCaseNumber:   facts.CaseNumber,
		pdfmatch.FieldDecisionDate: facts.DecisionDate,
	}
	return pdfmatch.NewMatcher(s.logger).Match(ctx, pdfPath, expected)
}

func (s *Service) Banks() ([]string, error) {
	requisites, err := s.templates.BankRequisites()
	if err != nil {
		return nil, err
	}
	if requisites == nil {
		return nil, nil
	}
	return editor.BankList(requisites), nil
}
