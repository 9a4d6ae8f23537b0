package models

import (
	"time"
)

// CaseFacts holds the facts extracted once from the claim document.
// They are immutable afterwards and used only as naming/substitution inputs.
type CaseFacts struct {
	DebtorName   string `json:"debtorName"`
	CaseNumber   string `json:"caseNumber"`
	ManagerName  string `json:"managerName,omitempty"`
	DecisionDate string `json:"decisionDate,omitempty"`
}

// ArbiterNaming selects the naming scheme of the consolidated case folder.
type ArbiterNaming string

const (
	// NamingCaseDebtor: "<sanitized case number> <debtor>"
	NamingCaseDebtor ArbiterNaming = "case_debtor"
	// NamingArbitrDebtor: "Арбитр <debtor>"
	NamingArbitrDebtor ArbiterNaming = "arbitr_debtor"
	// NamingADebtor: "А <debtor>"
	NamingADebtor ArbiterNaming = "a_debtor"
)

// PipelineConfig is assembled once from the settings store and passed into
// the orchestrator at invocation time. The core never reads settings
// directly.
type PipelineConfig struct {
	ArbiterNaming      ArbiterNaming `json:"arbiterNaming"`
	MergeObligations   bool          `json:"mergeObligations"`
	InsertSignature    bool          `json:"insertSignature"`
	SaveBaseStatement  bool          `json:"saveBaseStatement"`
	BankName           string        `json:"bankName,omitempty"`
	DeleteWordsObyaz   []string      `json:"-"`
	DeleteParasObyaz   []string      `json:"-"`
	DeleteParasCourt   []string      `json:"-"`
	DeleteParasAppend  []string      `json:"-"`
}

// StepStatus of one statement-pipeline step.
type StepStatus string

const (
	StepDone    StepStatus = "done"
	StepSkipped StepStatus = "skipped"
	StepFailed  StepStatus = "failed"
)

// StepResult reports one statement-pipeline step. Failed steps never abort
// later steps; the document stays in its last successfully saved state.
type StepResult struct {
	Name   string     `json:"name"`
	Status StepStatus `json:"status"`
	Error  string     `json:"error,omitempty"`
}

// PackageResult is the outcome of one orchestrator run.
type PackageResult struct {
	RunID        string       `json:"runId"`
	Facts        CaseFacts    `json:"facts"`
	DossierPath  string       `json:"dossierPath"`
	ClaimDocPath string       `json:"claimDocPath,omitempty"`
	ArbiterPath  string       `json:"arbiterPath,omitempty"`
	Steps        []StepResult `json:"steps,omitempty"`
	Logs         []string     `json:"logs"`
	StartedAt    time.Time    `json:"startedAt"`
	FinishedAt   time.Time    `json:"finishedAt"`
}

// FailedSteps returns the names of the steps that failed.
func (r *PackageResult) FailedSteps() []string {
	var names []string
	for _, s := range r.Steps {
		if s.Status == StepFailed {
			names = append(names, s.Name)
		}
	}
	return names
}
