package workflows

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"paperchat/internal/activities"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

func activityOptions() workflow.ActivityOptions {
	return workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    20 * time.Second,
			MaximumAttempts:    2,
		},
	}
}

// ExtractionWorkflow turns an uploaded PDF into content units. The job
// record is the progress surface clients poll; each step advances it with
// the extraction step labels.
func ExtractionWorkflow(ctx workflow.Context, input ExtractionInput) (string, error) {
	ctx = workflow.WithActivityOptions(ctx, activityOptions())

	if err := workflow.ExecuteActivity(ctx, "StartJobActivity", activities.StartJobInput{JobID: input.JobID}).Get(ctx, nil); err != nil {
		return "", err
	}

	if err := advance(ctx, input.JobID, "upload", 10); err != nil {
		return "", err
	}
	var verified activities.VerifyUploadOutput
	if err := workflow.ExecuteActivity(ctx, "VerifyUploadActivity", activities.VerifyUploadInput{PaperPath: input.PaperPath}).Get(ctx, &verified); err != nil {
		return failJob(ctx, input.JobID, fmt.Errorf("verify upload: %w", err))
	}

	if err := advance(ctx, input.JobID, "parse", 35); err != nil {
		return "", err
	}
	var parsed activities.ParsePDFOutput
	if err := workflow.ExecuteActivity(ctx, "ParsePDFActivity", activities.ParsePDFInput{PaperPath: input.PaperPath}).Get(ctx, &parsed); err != nil {
		if isNoTextError(err) {
			return failJob(ctx, input.JobID, errors.New("no extractable text found (OCR not enabled)"))
		}
		return failJob(ctx, input.JobID, fmt.Errorf("parse pdf: %w", err))
	}

	if err := advance(ctx, input.JobID, "structure_extraction", 70); err != nil {
		return "", err
	}
	var structured activities.ExtractStructureOutput
	if err := workflow.ExecuteActivity(ctx, "ExtractStructureActivity", activities.ExtractStructureInput{
		PaperID:  input.PaperID,
		Filename: input.Filename,
		Pages:    parsed.Pages,
	}).Get(ctx, &structured); err != nil {
		return failJob(ctx, input.JobID, fmt.Errorf("extract structure: %w", err))
	}

	result := fmt.Sprintf("extracted %d content units", structured.UnitCount)
	if err := workflow.ExecuteActivity(ctx, "CompleteJobActivity", activities.CompleteJobInput{JobID: input.JobID, Result: result}).Get(ctx, nil); err != nil {
		return "", err
	}
	return "done", nil
}

// CitationCheckWorkflow verifies a paper's reference list against its body
// text and writes a JSON report.
func CitationCheckWorkflow(ctx workflow.Context, input CitationCheckInput) (string, error) {
	ctx = workflow.WithActivityOptions(ctx, activityOptions())

	if err := workflow.ExecuteActivity(ctx, "StartJobActivity", activities.StartJobInput{JobID: input.JobID}).Get(ctx, nil); err != nil {
		return "", err
	}

	if err := advance(ctx, input.JobID, "parsing", 15); err != nil {
		return "", err
	}
	var loaded activities.LoadCitationUnitsOutput
	if err := workflow.ExecuteActivity(ctx, "LoadCitationUnitsActivity", activities.LoadCitationUnitsInput{PaperID: input.PaperID}).Get(ctx, &loaded); err != nil {
		return failJob(ctx, input.JobID, fmt.Errorf("load citation units: %w", err))
	}
	if len(loaded.References) == 0 {
		return failJob(ctx, input.JobID, errors.New("paper has no extracted references to check"))
	}

	if err := advance(ctx, input.JobID, "evidence_search", 50); err != nil {
		return "", err
	}
	var evidence activities.SearchEvidenceOutput
	if err := workflow.ExecuteActivity(ctx, "SearchEvidenceActivity", activities.SearchEvidenceInput{
		References: loaded.References,
		Body:       loaded.Body,
	}).Get(ctx, &evidence); err != nil {
		return failJob(ctx, input.JobID, fmt.Errorf("evidence search: %w", err))
	}

	if err := advance(ctx, input.JobID, "issue_detection", 85); err != nil {
		return "", err
	}
	var issues activities.DetectIssuesOutput
	if err := workflow.ExecuteActivity(ctx, "DetectIssuesActivity", activities.DetectIssuesInput{
		References: loaded.References,
		Findings:   evidence.Findings,
	}).Get(ctx, &issues); err != nil {
		return failJob(ctx, input.JobID, fmt.Errorf("issue detection: %w", err))
	}

	var report activities.WriteCitationReportOutput
	if err := workflow.ExecuteActivity(ctx, "WriteCitationReportActivity", activities.WriteCitationReportInput{
		PaperID:    input.PaperID,
		JobID:      input.JobID,
		References: loaded.References,
		Body:       loaded.Body,
		Findings:   evidence.Findings,
		Issues:     issues.Issues,
	}).Get(ctx, &report); err != nil {
		return failJob(ctx, input.JobID, fmt.Errorf("write report: %w", err))
	}

	if err := workflow.ExecuteActivity(ctx, "CompleteJobActivity", activities.CompleteJobInput{JobID: input.JobID, Result: report.Path}).Get(ctx, nil); err != nil {
		return "", err
	}
	return "done", nil
}

func advance(ctx workflow.Context, jobID, step string, percent int) error {
	return workflow.ExecuteActivity(ctx, "AdvanceJobActivity", activities.AdvanceJobInput{JobID: jobID, Step: step, Percent: percent}).Get(ctx, nil)
}

// failJob marks the job failed and ends the workflow without a workflow
// error: the job record carries the failure, and resubmission is the
// caller's retry path.
func failJob(ctx workflow.Context, jobID string, cause error) (string, error) {
	_ = workflow.ExecuteActivity(ctx, "FailJobActivity", activities.FailJobInput{JobID: jobID, Error: cause.Error()}).Get(ctx, nil)
	return "failed", nil
}

func isNoTextError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "no extractable text")
}
