package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies every failure the pipeline can report.
type Kind int

const (
	KindUnknown Kind = iota
	// KindNotFound: an expected file, folder or document marker is absent.
	KindNotFound
	// KindAmbiguousMatch: more than one candidate where exactly one is required.
	KindAmbiguousMatch
	// KindDimensionMismatch: source and destination table shapes differ.
	KindDimensionMismatch
	// KindIOFailure: underlying filesystem/archive/document library error.
	KindIOFailure
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindAmbiguousMatch:
		return "ambiguous match"
	case KindDimensionMismatch:
		return "dimension mismatch"
	case KindIOFailure:
		return "io failure"
	default:
		return "unknown"
	}
}

// Error carries a Kind plus a human-readable message and optional cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Is lets errors.Is match any *Error of the same Kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// Kind sentinels for errors.Is checks.
var (
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrAmbiguousMatch    = &Error{Kind: KindAmbiguousMatch}
	ErrDimensionMismatch = &Error{Kind: KindDimensionMismatch}
	ErrIOFailure         = &Error{Kind: KindIOFailure}
)

func NotFound(format string, args ...interface{}) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func AmbiguousMatch(what string, candidates []string) error {
	return &Error{
		Kind:    KindAmbiguousMatch,
		Message: fmt.Sprintf("found several %s: %s", what, strings.Join(candidates, "; ")),
	}
}

func DimensionMismatch(format string, args ...interface{}) error {
	return &Error{Kind: KindDimensionMismatch, Message: fmt.Sprintf(format, args...)}
}

func IOFailure(msg string, cause error) error {
	return &Error{Kind: KindIOFailure, Message: msg, Cause: cause}
}

// StepError wraps a failure inside a single statement-pipeline step with the
// step's human-readable name attached. Steps are best-effort: the caller logs
// the StepError and keeps going.
type StepError struct {
	Step  string
	Cause error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %q: %v", e.Step, e.Cause)
}

func (e *StepError) Unwrap() error { return e.Cause }

// Step wraps err with the step name, or returns nil when err is nil.
func Step(name string, err error) error {
	if err == nil {
		return nil
	}
	return &StepError{Step: name, Cause: err}
}

// KindOf reports the Kind of err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
