// Package pipeline sequences the extraction stages (validate, extract
// text, detect format, parse, reconcile) as a short-circuiting chain, and
// defines the error taxonomy callers render messages from.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/FACorreiaa/payslip-extract/internal/domain/format"
	"github.com/FACorreiaa/payslip-extract/internal/domain/parser"
)

// Stage names the pipeline step an error belongs to.
type Stage string

const (
	StageValidate     Stage = "validate"
	StageExtractText  Stage = "extract_text"
	StageDetectFormat Stage = "detect_format"
	StageParse        Stage = "parse"
)

// Terminal error kinds. Each ends the current run; the pipeline never
// retries internally. Callers distinguish them with errors.Is to render
// distinct messages ("looks password protected" vs "not a payslip").
var (
	ErrEmptyDocument        = errors.New("document is empty")
	ErrInvalidStructure     = errors.New("document structure is invalid")
	ErrPasswordProtected    = fmt.Errorf("%w: password protected", ErrInvalidStructure)
	ErrTextExtractionFailed = errors.New("text extraction failed")
	ErrNotRecognized        = errors.New("not a recognized payslip document")

	// ErrNoSuitableParser re-exports the detector's sentinel so callers
	// only import this package for the taxonomy.
	ErrNoSuitableParser = format.ErrNoSuitableParser
)

// FieldError re-exports the parsers' field rejection type for the same
// reason: it carries the raw value a parser refused, whether the rejection
// merely degraded a parse or failed the run outright.
type FieldError = parser.FieldError

// PipelineError wraps a terminal failure with the stage that produced it.
// Subsequent stages never ran.
type PipelineError struct {
	Stage Stage
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline failed at %s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

func failed(stage Stage, err error) *PipelineError {
	return &PipelineError{Stage: stage, Err: err}
}
