package models

import (
	"context"
	stdErrors "errors"
	"fmt"

	"github.com/claimpilot/pagegen/internal/foundation/errors"
)

// Stage is a discrete unit of work in a generation run.
type Stage func(ctx context.Context, bs *BuildState) error

// StageName is a strongly-typed identifier for a run stage.
type StageName string

// Canonical stage names, in execution order.
const (
	StageLoadShell        StageName = "load_shell"
	StageCheckProvider    StageName = "check_provider"
	StageStates           StageName = "state"
	StageCities           StageName = "city"
	StageServices         StageName = "service"
	StageSpecialties      StageName = "specialty"
	StageStatic           StageName = "static"
	StageResources        StageName = "resource"
	StageIntegrations     StageName = "integration"
	StageIntegrationIndex StageName = "integration_index"
)

// StageErrorKind classifies the outcome of a stage.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // Run must abort.
	StageErrorWarning  StageErrorKind = "warning"  // Non-fatal; record and continue.
	StageErrorCanceled StageErrorKind = "canceled" // Context cancellation.
)

// Sentinels wrapped by warning stage errors.
var (
	ErrItemFailures = stdErrors.New("pagegen: page failures")
	ErrQuery        = stdErrors.New("pagegen: record query failed")
)

// StageError is a structured error carrying kind and underlying cause.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

// Transient reports whether rerunning the stage could succeed without a change
// to configuration or input.
func (e *StageError) Transient() bool {
	if e == nil || e.Kind == StageErrorCanceled {
		return false
	}
	if stdErrors.Is(e.Err, ErrQuery) {
		return true
	}
	return errors.IsRetryable(e.Err)
}

// StageResult captures the high-level outcome of a stage.
type StageResult string

const (
	StageResultSuccess  StageResult = "success"
	StageResultWarning  StageResult = "warning"
	StageResultFatal    StageResult = "fatal"
	StageResultCanceled StageResult = "canceled"
)

func NewFatalStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}

func NewWarnStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorWarning, Stage: stage, Err: err}
}

func NewCanceledStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}

// StageDef pairs a stage name with its executing function.
type StageDef struct {
	Name StageName
	Fn   Stage
}

// Pipeline is a fluent builder for ordered stage definitions.
type Pipeline struct{ Defs []StageDef }

func NewPipeline() *Pipeline { return &Pipeline{Defs: make([]StageDef, 0, 10)} }

// Add appends a stage unconditionally.
func (p *Pipeline) Add(name StageName, fn Stage) *Pipeline {
	p.Defs = append(p.Defs, StageDef{Name: name, Fn: fn})
	return p
}

// Build returns a copy of the stage definitions.
func (p *Pipeline) Build() []StageDef {
	out := make([]StageDef, len(p.Defs))
	copy(out, p.Defs)
	return out
}
