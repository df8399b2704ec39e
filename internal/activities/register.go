package activities

import "go.temporal.io/sdk/worker"

func Register(w worker.Worker, a *Activities) {
	w.RegisterActivity(a.StartJobActivity)
	w.RegisterActivity(a.AdvanceJobActivity)
	w.RegisterActivity(a.CompleteJobActivity)
	w.RegisterActivity(a.FailJobActivity)
	w.RegisterActivity(a.VerifyUploadActivity)
	w.RegisterActivity(a.ParsePDFActivity)
	w.RegisterActivity(a.ExtractStructureActivity)
	w.RegisterActivity(a.LoadCitationUnitsActivity)
	w.RegisterActivity(a.SearchEvidenceActivity)
	w.RegisterActivity(a.DetectIssuesActivity)
	w.RegisterActivity(a.WriteCitationReportActivity)
}
