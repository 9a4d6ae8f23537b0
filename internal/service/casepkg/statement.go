package casepkg

import (
	"context"

	"github.com/feichai0017/docprep/internal/docx"
	"github.com/feichai0017/docprep/internal/editor"
	"github.com/feichai0017/docprep/internal/models"
	"github.com/feichai0017/docprep/pkg/errs"
	"github.com/feichai0017/docprep/pkg/logger"
)

// Step names as shown to the operator.
const (
	stepDeleteWordsObligations = "Удаление слов в Обязательствах"
	stepDeleteParasObligations = "Удаление абзацев в Обязательствах"
	stepDeleteParasCourt       = "Удаление пунктов в ПРОСИТ СУД"
	stepInsertGosposhlina      = "Вставка госпошлины"
	stepDeleteParasAppendices  = "Удаление пунктов в Приложениях"
	stepFormatAppendices       = "Форматирование приложений"
	stepInsertBankTable        = "Вставка реквизитов банка"
	stepInsertZalogContacts    = "Вставка залоговых контактов"
	stepInsertSignature        = "Вставка подписи"
)

// stepRunner executes statement-pipeline steps against one open document,
// saving after every successful step so a later failure leaves the file in
// the last completed state.
type stepRunner struct {
	svc  *Service
	res  *models.PackageResult
	doc  *docx.Document
	path string
}

func (r *stepRunner) run(name string, fn func() error) {
	if err := fn(); err != nil {
		r.record(name, models.StepFailed, errs.Step(name, err))
		return
	}
	if err := r.doc.Save(r.path); err != nil {
		r.record(name, models.StepFailed, errs.Step(name, err))
		return
	}
	r.record(name, models.StepDone, nil)
}

func (r *stepRunner) skip(name, reason string) {
	r.res.Steps = append(r.res.Steps, models.StepResult{
		Name:   name,
		Status: models.StepSkipped,
		Error:  reason,
	})
	r.svc.log(r.res, name+": пропущено ("+reason+")")
}

func (r *stepRunner) record(name string, status models.StepStatus, err error) {
	sr := models.StepResult{Name: name, Status: status}
	if err != nil {
		sr.Error = err.Error()
		r.svc.log(r.res, err.Error())
	} else {
		r.svc.log(r.res, name+": выполнено")
	}
	r.res.Steps = append(r.res.Steps, sr)
}

// wordList resolves a word list: an explicit override from the pipeline
// config wins, otherwise the templates directory is consulted.
func (r *stepRunner) wordList(override []string, load func() ([]string, error)) ([]string, error) {
	if override != nil {
		return override, nil
	}
	return load()
}

// processStatement applies the ordered edit pipeline to the claim document.
// Step failures are collected, never propagated: the package is already
// assembled on disk and a partially edited document is easier to hand-fix
// than a half-extracted archive.
func (s *Service) processStatement(ctx context.Context, res *models.PackageResult, claimPath string, cfg models.PipelineConfig) {
	_ = ctx

	doc, err := docx.Open(claimPath)
	if err != nil {
		res.Steps = append(res.Steps, models.StepResult{
			Name:   "открытие заявления",
			Status: models.StepFailed,
			Error:  err.Error(),
		})
		s.logger.Error("failed to open claim document", logger.Error(err),
			logger.String("run_id", res.RunID))
		return
	}
	r := &stepRunner{svc: s, res: res, doc: doc, path: claimPath}

	if words, err := r.wordList(cfg.DeleteWordsObyaz, s.templates.DeleteWordsObligations); err != nil {
		r.record(stepDeleteWordsObligations, models.StepFailed, errs.Step(stepDeleteWordsObligations, err))
	} else if words == nil {
		r.skip(stepDeleteWordsObligations, "список слов не найден")
	} else {
		r.run(stepDeleteWordsObligations, func() error {
			editor.DeleteWords(doc, editor.ObligationRegion, words)
			return nil
		})
	}

	if paras, err := r.wordList(cfg.DeleteParasObyaz, s.templates.DeleteParagraphsObligations); err != nil {
		r.record(stepDeleteParasObligations, models.StepFailed, errs.Step(stepDeleteParasObligations, err))
	} else if paras == nil {
		r.skip(stepDeleteParasObligations, "список абзацев не найден")
	} else {
		r.run(stepDeleteParasObligations, func() error {
			editor.DeleteParagraphs(doc, editor.ObligationRegion, paras, false)
			return nil
		})
	}

	if paras, err := r.wordList(cfg.DeleteParasCourt, s.templates.DeleteParagraphsCourt); err != nil {
		r.record(stepDeleteParasCourt, models.StepFailed, errs.Step(stepDeleteParasCourt, err))
	} else if paras == nil {
		r.skip(stepDeleteParasCourt, "список пунктов не найден")
	} else {
		r.run(stepDeleteParasCourt, func() error {
			editor.DeleteParagraphs(doc, editor.CourtRequestRegion, paras, true)
			return nil
		})
	}

	if tpl, err := s.templates.GosposhlinaTemplate(); err != nil {
		r.record(stepInsertGosposhlina, models.StepFailed, errs.Step(stepInsertGosposhlina, err))
	} else if tpl == nil {
		r.skip(stepInsertGosposhlina, "шаблон не найден")
	} else {
		r.run(stepInsertGosposhlina, func() error {
			return editor.InsertGosposhlina(doc, tpl)
		})
	}

	if paras, err := r.wordList(cfg.DeleteParasAppend, s.templates.DeleteParagraphsAppendices); err != nil {
		r.record(stepDeleteParasAppendices, models.StepFailed, errs.Step(stepDeleteParasAppendices, err))
	} else if paras == nil {
		r.skip(stepDeleteParasAppendices, "список пунктов не найден")
	} else {
		r.run(stepDeleteParasAppendices, func() error {
			editor.DeleteParagraphs(doc, editor.AppendicesRegion, paras, false)
			return nil
		})
	}

	r.run(stepFormatAppendices, func() error {
		editor.FormatAppendices(doc)
		return nil
	})

	if cfg.BankName == "" {
		r.skip(stepInsertBankTable, "банк не выбран")
	} else if requisites, err := s.templates.BankRequisites(); err != nil {
		r.record(stepInsertBankTable, models.StepFailed, errs.Step(stepInsertBankTable, err))
	} else if requisites == nil {
		r.skip(stepInsertBankTable, "файл реквизитов не найден")
	} else {
		r.run(stepInsertBankTable, func() error {
			return editor.InsertBankTable(doc, requisites, cfg.BankName)
		})
	}

	if tpl, err := s.templates.ZalogContactsTemplate(); err != nil {
		r.record(stepInsertZalogContacts, models.StepFailed, errs.Step(stepInsertZalogContacts, err))
	} else if tpl == nil {
		r.skip(stepInsertZalogContacts, "шаблон не найден")
	} else {
		r.run(stepInsertZalogContacts, func() error {
			return editor.InsertZalogContacts(doc, tpl)
		})
	}

	if !cfg.InsertSignature {
		r.skip(stepInsertSignature, "отключено в настройках")
	} else if signa := s.templates.SignaturePath(); signa == "" {
		r.skip(stepInsertSignature, "файл подписи не найден")
	} else {
		r.run(stepInsertSignature, func() error {
			return editor.InsertSignature(doc, signa)
		})
	}
}
