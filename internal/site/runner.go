package site

import (
	"context"
	stdErrors "errors"
	"fmt"
	"time"

	"github.com/claimpilot/pagegen/internal/logfields"
	"github.com/claimpilot/pagegen/internal/site/models"
)

// stageOutcome is the classified result of one stage execution.
type stageOutcome struct {
	Result    models.StageResult
	Error     *models.StageError
	IssueCode models.ReportIssueCode
	Severity  models.IssueSeverity
	Abort     bool
}

func classifyStageResult(stage models.StageName, err error) stageOutcome {
	if err == nil {
		return stageOutcome{Result: models.StageResultSuccess}
	}
	var se *models.StageError
	if !stdErrors.As(err, &se) {
		se = models.NewFatalStageError(stage, err)
	}
	switch se.Kind {
	case models.StageErrorCanceled:
		return stageOutcome{Result: models.StageResultCanceled, Error: se, IssueCode: models.IssueCanceled, Severity: models.SeverityError, Abort: true}
	case models.StageErrorWarning:
		code := models.IssueGenericStageError
		switch {
		case stdErrors.Is(se.Err, models.ErrQuery):
			code = models.IssueQueryFailure
		case stdErrors.Is(se.Err, models.ErrItemFailures):
			code = models.IssueItemFailure
		}
		return stageOutcome{Result: models.StageResultWarning, Error: se, IssueCode: code, Severity: models.SeverityWarning}
	default:
		code := models.IssueGenericStageError
		switch stage {
		case models.StageLoadShell:
			code = models.IssueShellInvalid
		case models.StageCheckProvider:
			code = models.IssueStoreUnavailable
		}
		return stageOutcome{Result: models.StageResultFatal, Error: se, IssueCode: code, Severity: models.SeverityError, Abort: true}
	}
}

// runStages executes stages in order, recording timing and stopping on the
// first fatal or canceled stage.
func runStages(ctx context.Context, bs *models.BuildState, stages []models.StageDef, observer models.BuildObserver) error {
	logger := bs.Generator.Logger()
	recorder := bs.Generator.Recorder()
	for _, st := range stages {
		select {
		case <-ctx.Done():
			se := models.NewCanceledStageError(st.Name, ctx.Err())
			bs.Report.StageErrorKinds[st.Name] = se.Kind
			bs.Report.AddIssue(models.IssueCanceled, st.Name, models.SeverityError, se.Error(), false, se)
			bs.Report.RecordStageResult(st.Name, models.StageResultCanceled, recorder)
			observer.OnStageComplete(st.Name, 0, models.StageResultCanceled)
			return se
		default:
		}

		observer.OnStageStart(st.Name)
		t0 := time.Now()
		err := st.Fn(ctx, bs)
		dur := time.Since(t0)
		bs.Report.StageDurations[string(st.Name)] = dur

		out := classifyStageResult(st.Name, err)
		if out.Error != nil {
			bs.Report.StageErrorKinds[st.Name] = out.Error.Kind
			bs.Report.AddIssue(out.IssueCode, st.Name, out.Severity, out.Error.Error(), out.Error.Transient(), out.Error)
		}
		bs.Report.RecordStageResult(st.Name, out.Result, recorder)
		observer.OnStageComplete(st.Name, dur, out.Result)

		if counts, ok := bs.Summary().Categories[string(st.Name)]; ok {
			logger.Info("Category complete",
				logfields.Stage(string(st.Name)),
				logfields.DurationMS(float64(dur.Microseconds())/1000),
				"success", counts.Success, "error", counts.Error, "skipped", counts.Skipped)
		}

		if out.Abort {
			if out.Error != nil {
				return out.Error
			}
			return fmt.Errorf("stage %s aborted", st.Name)
		}
	}
	return nil
}
