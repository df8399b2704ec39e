package workflows

import (
	"context"
	"errors"
	"testing"

	"paperchat/internal/activities"
	"paperchat/internal/citations"
	"paperchat/internal/extract"
	"paperchat/internal/models"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"
)

func registerActivityName[T any](env *testsuite.TestWorkflowEnvironment, name string, fn T) {
	env.RegisterActivityWithOptions(fn, activity.RegisterOptions{Name: name})
}

func registerJobActivities(env *testsuite.TestWorkflowEnvironment) {
	registerActivityName(env, "StartJobActivity", func(context.Context, activities.StartJobInput) error { return nil })
	registerActivityName(env, "AdvanceJobActivity", func(context.Context, activities.AdvanceJobInput) error { return nil })
	registerActivityName(env, "CompleteJobActivity", func(context.Context, activities.CompleteJobInput) error { return nil })
	registerActivityName(env, "FailJobActivity", func(context.Context, activities.FailJobInput) error { return nil })
}

func TestExtractionWorkflowSuccess(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(ExtractionWorkflow)
	registerJobActivities(env)
	registerActivityName(env, "VerifyUploadActivity", func(context.Context, activities.VerifyUploadInput) (activities.VerifyUploadOutput, error) {
		return activities.VerifyUploadOutput{}, nil
	})
	registerActivityName(env, "ParsePDFActivity", func(context.Context, activities.ParsePDFInput) (activities.ParsePDFOutput, error) {
		return activities.ParsePDFOutput{}, nil
	})
	registerActivityName(env, "ExtractStructureActivity", func(context.Context, activities.ExtractStructureInput) (activities.ExtractStructureOutput, error) {
		return activities.ExtractStructureOutput{}, nil
	})

	env.OnActivity("StartJobActivity", mock.Anything, activities.StartJobInput{JobID: "job1"}).Return(nil)
	env.OnActivity("AdvanceJobActivity", mock.Anything, activities.AdvanceJobInput{JobID: "job1", Step: "upload", Percent: 10}).Return(nil)
	env.OnActivity("VerifyUploadActivity", mock.Anything, activities.VerifyUploadInput{PaperPath: "/tmp/p.pdf"}).Return(activities.VerifyUploadOutput{ContentHash: "abc", SizeBytes: 42}, nil)
	env.OnActivity("AdvanceJobActivity", mock.Anything, activities.AdvanceJobInput{JobID: "job1", Step: "parse", Percent: 35}).Return(nil)
	env.OnActivity("ParsePDFActivity", mock.Anything, activities.ParsePDFInput{PaperPath: "/tmp/p.pdf"}).Return(activities.ParsePDFOutput{Pages: []extract.PageText{{Page: 1, Text: "Title\nAuthor\ntext"}}}, nil)
	env.OnActivity("AdvanceJobActivity", mock.Anything, activities.AdvanceJobInput{JobID: "job1", Step: "structure_extraction", Percent: 70}).Return(nil)
	env.OnActivity("ExtractStructureActivity", mock.Anything, mock.Anything).Return(activities.ExtractStructureOutput{UnitCount: 7, Title: "Title", Authors: "Author"}, nil)
	env.OnActivity("CompleteJobActivity", mock.Anything, activities.CompleteJobInput{JobID: "job1", Result: "extracted 7 content units"}).Return(nil)

	env.ExecuteWorkflow(ExtractionWorkflow, ExtractionInput{JobID: "job1", PaperID: "paper1", PaperPath: "/tmp/p.pdf", Filename: "p.pdf"})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, "done", out)
}

func TestExtractionWorkflowNoTextFailsJobGracefully(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(ExtractionWorkflow)
	registerJobActivities(env)
	registerActivityName(env, "VerifyUploadActivity", func(context.Context, activities.VerifyUploadInput) (activities.VerifyUploadOutput, error) {
		return activities.VerifyUploadOutput{}, nil
	})
	registerActivityName(env, "ParsePDFActivity", func(context.Context, activities.ParsePDFInput) (activities.ParsePDFOutput, error) {
		return activities.ParsePDFOutput{}, nil
	})

	env.OnActivity("StartJobActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("AdvanceJobActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("VerifyUploadActivity", mock.Anything, mock.Anything).Return(activities.VerifyUploadOutput{}, nil)
	env.OnActivity("ParsePDFActivity", mock.Anything, mock.Anything).Return(activities.ParsePDFOutput{}, errors.New("no extractable text found in PDF"))
	env.OnActivity("FailJobActivity", mock.Anything, activities.FailJobInput{JobID: "job1", Error: "no extractable text found (OCR not enabled)"}).Return(nil)

	env.ExecuteWorkflow(ExtractionWorkflow, ExtractionInput{JobID: "job1", PaperID: "paper1", PaperPath: "/tmp/p.pdf", Filename: "p.pdf"})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, "failed", out)
}

func TestCitationCheckWorkflowSuccess(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(CitationCheckWorkflow)
	registerJobActivities(env)
	registerActivityName(env, "LoadCitationUnitsActivity", func(context.Context, activities.LoadCitationUnitsInput) (activities.LoadCitationUnitsOutput, error) {
		return activities.LoadCitationUnitsOutput{}, nil
	})
	registerActivityName(env, "SearchEvidenceActivity", func(context.Context, activities.SearchEvidenceInput) (activities.SearchEvidenceOutput, error) {
		return activities.SearchEvidenceOutput{}, nil
	})
	registerActivityName(env, "DetectIssuesActivity", func(context.Context, activities.DetectIssuesInput) (activities.DetectIssuesOutput, error) {
		return activities.DetectIssuesOutput{}, nil
	})
	registerActivityName(env, "WriteCitationReportActivity", func(context.Context, activities.WriteCitationReportInput) (activities.WriteCitationReportOutput, error) {
		return activities.WriteCitationReportOutput{}, nil
	})

	refs := []models.ContentUnit{{UnitID: "r1", Kind: models.KindReference, Text: "[1] A paper. 2019."}}
	bodyUnits := []models.ContentUnit{{UnitID: "b1", Kind: models.KindParagraph, Text: "body text"}}

	env.OnActivity("StartJobActivity", mock.Anything, activities.StartJobInput{JobID: "job2"}).Return(nil)
	env.OnActivity("AdvanceJobActivity", mock.Anything, activities.AdvanceJobInput{JobID: "job2", Step: "parsing", Percent: 15}).Return(nil)
	env.OnActivity("LoadCitationUnitsActivity", mock.Anything, activities.LoadCitationUnitsInput{PaperID: "paper1"}).Return(activities.LoadCitationUnitsOutput{References: refs, Body: bodyUnits}, nil)
	env.OnActivity("AdvanceJobActivity", mock.Anything, activities.AdvanceJobInput{JobID: "job2", Step: "evidence_search", Percent: 50}).Return(nil)
	env.OnActivity("SearchEvidenceActivity", mock.Anything, mock.Anything).Return(activities.SearchEvidenceOutput{Findings: []citations.Finding{{ReferenceID: "r1", Supported: true}}}, nil)
	env.OnActivity("AdvanceJobActivity", mock.Anything, activities.AdvanceJobInput{JobID: "job2", Step: "issue_detection", Percent: 85}).Return(nil)
	env.OnActivity("DetectIssuesActivity", mock.Anything, mock.Anything).Return(activities.DetectIssuesOutput{}, nil)
	env.OnActivity("WriteCitationReportActivity", mock.Anything, mock.Anything).Return(activities.WriteCitationReportOutput{Path: "/data/out/paper1/citation_reports/job2.json"}, nil)
	env.OnActivity("CompleteJobActivity", mock.Anything, activities.CompleteJobInput{JobID: "job2", Result: "/data/out/paper1/citation_reports/job2.json"}).Return(nil)

	env.ExecuteWorkflow(CitationCheckWorkflow, CitationCheckInput{JobID: "job2", PaperID: "paper1"})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, "done", out)
}

func TestCitationCheckWorkflowNoReferencesFailsJob(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(CitationCheckWorkflow)
	registerJobActivities(env)
	registerActivityName(env, "LoadCitationUnitsActivity", func(context.Context, activities.LoadCitationUnitsInput) (activities.LoadCitationUnitsOutput, error) {
		return activities.LoadCitationUnitsOutput{}, nil
	})

	env.OnActivity("StartJobActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("AdvanceJobActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("LoadCitationUnitsActivity", mock.Anything, mock.Anything).Return(activities.LoadCitationUnitsOutput{}, nil)
	env.OnActivity("FailJobActivity", mock.Anything, activities.FailJobInput{JobID: "job2", Error: "paper has no extracted references to check"}).Return(nil)

	env.ExecuteWorkflow(CitationCheckWorkflow, CitationCheckInput{JobID: "job2", PaperID: "paper1"})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, "failed", out)
}
