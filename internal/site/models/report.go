package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/claimpilot/pagegen/internal/metrics"
	"github.com/claimpilot/pagegen/internal/version"
)

// BuildOutcome is the typed enumeration of final run result states.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeWarning  BuildOutcome = "warning"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeCanceled BuildOutcome = "canceled"
)

// ReportIssueCode enumerates machine-parseable issue identifiers.
// These codes are a stable contract and should only be appended.
type ReportIssueCode string

const (
	IssueShellInvalid      ReportIssueCode = "SHELL_INVALID"
	IssueStoreUnavailable  ReportIssueCode = "STORE_UNAVAILABLE"
	IssueQueryFailure      ReportIssueCode = "QUERY_FAILURE"
	IssueItemFailure       ReportIssueCode = "ITEM_FAILURE"
	IssueDuplicateRoute    ReportIssueCode = "DUPLICATE_ROUTE"
	IssueCanceled          ReportIssueCode = "BUILD_CANCELED"
	IssueGenericStageError ReportIssueCode = "GENERIC_STAGE_ERROR"
)

// IssueSeverity represents normalized severity levels.
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
)

// ReportIssue is a structured taxonomy entry describing a discrete problem.
type ReportIssue struct {
	Code      ReportIssueCode `json:"code"`
	Stage     StageName       `json:"stage"`
	Severity  IssueSeverity   `json:"severity"`
	Message   string          `json:"message"`
	Transient bool            `json:"transient"`
}

// StageCount aggregates counts of outcomes for a stage.
type StageCount struct {
	Success  int
	Warning  int
	Fatal    int
	Canceled int
}

// BuildReport captures the outcome of one generation run.
type BuildReport struct {
	SchemaVersion   int
	RunID           string
	Start           time.Time
	End             time.Time
	Errors          []error // fatal errors causing the run to abort (at most one)
	Warnings        []error // non-fatal issues (query failures, page failures, duplicates)
	StageDurations  map[string]time.Duration
	StageErrorKinds map[StageName]StageErrorKind
	StageCounts     map[StageName]StageCount
	Outcome         BuildOutcome
	Issues          []ReportIssue
	Summary         *Summary
	Version         string
}

func NewBuildReport(runID string) *BuildReport {
	return &BuildReport{
		SchemaVersion:   1,
		RunID:           runID,
		Start:           time.Now(),
		StageDurations:  make(map[string]time.Duration),
		StageErrorKinds: make(map[StageName]StageErrorKind),
		StageCounts:     make(map[StageName]StageCount),
		Summary:         NewSummary(runID),
		Version:         version.Version,
	}
}

// AddIssue appends a structured issue and mirrors severity into Errors/Warnings.
func (r *BuildReport) AddIssue(code ReportIssueCode, stage StageName, severity IssueSeverity, msg string, transient bool, err error) {
	r.Issues = append(r.Issues, ReportIssue{Code: code, Stage: stage, Severity: severity, Message: msg, Transient: transient})
	if err != nil {
		switch severity {
		case SeverityError:
			r.Errors = append(r.Errors, err)
		case SeverityWarning:
			r.Warnings = append(r.Warnings, err)
		}
	}
}

// Finish sets the end time of the report.
func (r *BuildReport) Finish() { r.End = time.Now() }

// RecordStageResult updates stage counters and emits metrics.
func (r *BuildReport) RecordStageResult(stage StageName, res StageResult, recorder metrics.Recorder) {
	if r.StageCounts == nil {
		r.StageCounts = make(map[StageName]StageCount)
	}
	sc := r.StageCounts[stage]
	var label metrics.ResultLabel
	switch res {
	case StageResultSuccess:
		sc.Success++
		label = metrics.ResultSuccess
	case StageResultWarning:
		sc.Warning++
		label = metrics.ResultWarning
	case StageResultFatal:
		sc.Fatal++
		label = metrics.ResultFatal
	case StageResultCanceled:
		sc.Canceled++
		label = metrics.ResultCanceled
	}
	r.StageCounts[stage] = sc
	if recorder != nil && label != "" {
		recorder.IncStageResult(string(stage), label)
	}
}

// DeriveOutcome sets Outcome from the recorded errors and warnings.
func (r *BuildReport) DeriveOutcome() {
	if len(r.Errors) > 0 {
		for _, e := range r.Errors {
			var se *StageError
			if errors.As(e, &se) && se.Kind == StageErrorCanceled {
				r.Outcome = OutcomeCanceled
				return
			}
		}
		r.Outcome = OutcomeFailed
		return
	}
	if len(r.Warnings) > 0 {
		r.Outcome = OutcomeWarning
		return
	}
	r.Outcome = OutcomeSuccess
}

// SummaryLine returns a human-readable single-line summary.
func (r *BuildReport) SummaryLine() string {
	s := r.Summary
	if s == nil {
		s = NewSummary(r.RunID)
	}
	return fmt.Sprintf("run=%s duration=%s success=%d error=%d skipped=%d canceled=%d warnings=%d outcome=%s",
		r.RunID, r.End.Sub(r.Start).Truncate(time.Millisecond),
		s.TotalSuccess, s.TotalError, s.TotalSkipped, s.TotalCanceled, len(r.Warnings), r.Outcome)
}

// Persist writes build-report.json and build-report.txt atomically into root.
func (r *BuildReport) Persist(root string) error {
	if r.End.IsZero() {
		r.Finish()
		r.DeriveOutcome()
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return fmt.Errorf("ensure root for report: %w", err)
	}
	jb, err := json.MarshalIndent(r.SanitizedCopy(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report json: %w", err)
	}
	jsonPath := filepath.Join(root, "build-report.json")
	tmpJSON := jsonPath + ".tmp"
	if err := os.WriteFile(tmpJSON, jb, 0o600); err != nil {
		return fmt.Errorf("write temp report json: %w", err)
	}
	if err := os.Rename(tmpJSON, jsonPath); err != nil {
		return fmt.Errorf("atomic rename json: %w", err)
	}
	summaryPath := filepath.Join(root, "build-report.txt")
	tmpTxt := summaryPath + ".tmp"
	if err := os.WriteFile(tmpTxt, []byte(r.SummaryLine()+"\n"), 0o600); err != nil {
		return fmt.Errorf("write temp report summary: %w", err)
	}
	if err := os.Rename(tmpTxt, summaryPath); err != nil {
		return fmt.Errorf("atomic rename summary: %w", err)
	}
	return nil
}

// SanitizedCopy converts error fields to strings for JSON output.
func (r *BuildReport) SanitizedCopy() *BuildReportSerializable {
	stageCounts := make(map[string]StageCount, len(r.StageCounts))
	for k, v := range r.StageCounts {
		stageCounts[string(k)] = v
	}
	sek := make(map[string]string, len(r.StageErrorKinds))
	for k, v := range r.StageErrorKinds {
		sek[string(k)] = string(v)
	}
	durations := make(map[string]float64, len(r.StageDurations))
	for k, v := range r.StageDurations {
		durations[k] = float64(v.Microseconds()) / 1000
	}
	issues := r.Issues
	if issues == nil {
		issues = []ReportIssue{}
	}
	summary := r.Summary
	if summary == nil {
		summary = NewSummary(r.RunID)
	}

	s := &BuildReportSerializable{
		SchemaVersion:    r.SchemaVersion,
		RunID:            r.RunID,
		Start:            r.Start,
		End:              r.End,
		Errors:           make([]string, len(r.Errors)),
		Warnings:         make([]string, len(r.Warnings)),
		StageDurationsMS: durations,
		StageErrorKinds:  sek,
		StageCounts:      stageCounts,
		Outcome:          string(r.Outcome),
		Issues:           issues,
		Summary:          summary,
		Version:          r.Version,
	}
	for i, e := range r.Errors {
		s.Errors[i] = e.Error()
	}
	for i, w := range r.Warnings {
		s.Warnings[i] = w.Error()
	}
	return s
}

// BuildReportSerializable mirrors BuildReport with string errors for JSON output.
type BuildReportSerializable struct {
	SchemaVersion    int                   `json:"schema_version"`
	RunID            string                `json:"run_id"`
	Start            time.Time             `json:"start"`
	End              time.Time             `json:"end"`
	Errors           []string              `json:"errors"`
	Warnings         []string              `json:"warnings"`
	StageDurationsMS map[string]float64    `json:"stage_durations_ms"`
	StageErrorKinds  map[string]string     `json:"stage_error_kinds"`
	StageCounts      map[string]StageCount `json:"stage_counts"`
	Outcome          string                `json:"outcome"`
	Issues           []ReportIssue         `json:"issues"`
	Summary          *Summary              `json:"summary"`
	Version          string                `json:"version,omitempty"`
}
