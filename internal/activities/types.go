package activities

import (
	"paperchat/internal/citations"
	"paperchat/internal/extract"
	"paperchat/internal/models"
)

type StartJobInput struct {
	JobID string `json:"job_id"`
}

type AdvanceJobInput struct {
	JobID   string `json:"job_id"`
	Step    string `json:"step"`
	Percent int    `json:"percent"`
}

type CompleteJobInput struct {
	JobID  string `json:"job_id"`
	Result string `json:"result,omitempty"`
}

type FailJobInput struct {
	JobID string `json:"job_id"`
	Error string `json:"error"`
}

type VerifyUploadInput struct {
	PaperPath string `json:"paper_path"`
}

type VerifyUploadOutput struct {
	ContentHash string `json:"content_hash"`
	SizeBytes   int64  `json:"size_bytes"`
}

type ParsePDFInput struct {
	PaperPath string `json:"paper_path"`
}

type ParsePDFOutput struct {
	Pages []extract.PageText `json:"pages"`
}

type ExtractStructureInput struct {
	PaperID  string             `json:"paper_id"`
	Filename string             `json:"filename"`
	Pages    []extract.PageText `json:"pages"`
}

type ExtractStructureOutput struct {
	UnitCount int    `json:"unit_count"`
	Title     string `json:"title"`
	Authors   string `json:"authors"`
}

type LoadCitationUnitsInput struct {
	PaperID string `json:"paper_id"`
}

type LoadCitationUnitsOutput struct {
	References []models.ContentUnit `json:"references"`
	Body       []models.ContentUnit `json:"body"`
}

type SearchEvidenceInput struct {
	References []models.ContentUnit `json:"references"`
	Body       []models.ContentUnit `json:"body"`
}

type SearchEvidenceOutput struct {
	Findings []citations.Finding `json:"findings"`
}

type DetectIssuesInput struct {
	References []models.ContentUnit `json:"references"`
	Findings   []citations.Finding `json:"findings"`
}

type DetectIssuesOutput struct {
	Issues []citations.Issue `json:"issues"`
}

type WriteCitationReportInput struct {
	PaperID    string               `json:"paper_id"`
	JobID      string               `json:"job_id"`
	References []models.ContentUnit `json:"references"`
	Body       []models.ContentUnit `json:"body"`
	Findings   []citations.Finding  `json:"findings"`
	Issues     []citations.Issue    `json:"issues"`
}

type WriteCitationReportOutput struct {
	Path string `json:"path"`
}
