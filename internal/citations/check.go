package citations

import (
	"paperchat/internal/extract"
	"paperchat/internal/models"
	"paperchat/internal/util"
)

// evidenceThreshold is the minimum keyword overlap between a reference entry
// and some body unit for the citation to count as supported by the text.
const evidenceThreshold = 0.2

type Finding struct {
	ReferenceID   string  `json:"reference_id"`
	Locator       string  `json:"locator,omitempty"`
	ReferenceText string  `json:"reference_text"`
	BestUnitID    string  `json:"best_unit_id,omitempty"`
	BestSnippet   string  `json:"best_snippet,omitempty"`
	EvidenceScore float64 `json:"evidence_score"`
	Supported     bool    `json:"supported"`
}

type IssueKind string

const (
	IssueUnsupported IssueKind = "unsupported"
	IssueMalformed   IssueKind = "malformed"
)

type Issue struct {
	ReferenceID string    `json:"reference_id"`
	Locator     string    `json:"locator,omitempty"`
	Kind        IssueKind `json:"kind"`
	Detail      string    `json:"detail"`
}

type Report struct {
	PaperID      string    `json:"paper_id"`
	JobID        string    `json:"job_id"`
	References   int       `json:"references"`
	Supported    int       `json:"supported"`
	Findings     []Finding `json:"findings"`
	Issues       []Issue   `json:"issues"`
	IssueCount   int       `json:"issue_count"`
	BodyUnitsIn  int       `json:"body_units_scanned"`
}

// SearchEvidence scores every reference entry against the paper body by
// keyword overlap and keeps the best-matching body unit per reference.
func SearchEvidence(references, body []models.ContentUnit) []Finding {
	findings := make([]Finding, 0, len(references))
	for _, ref := range references {
		terms := util.SignificantTerms(ref.Text)
		if len(terms) > 12 {
			terms = terms[:12]
		}
		best := Finding{
			ReferenceID:   ref.UnitID,
			Locator:       ref.Locator,
			ReferenceText: util.Snippet(ref.Text, 240),
		}
		for _, u := range body {
			score := util.KeywordOverlap(u.Text, terms)
			if score > best.EvidenceScore {
				best.EvidenceScore = score
				best.BestUnitID = u.UnitID
				best.BestSnippet = util.Snippet(u.Text, 240)
			}
		}
		best.Supported = best.EvidenceScore >= evidenceThreshold
		findings = append(findings, best)
	}
	return findings
}

// DetectIssues flags references that are malformed or that the paper body
// never substantively draws on.
func DetectIssues(references []models.ContentUnit, findings []Finding) []Issue {
	byID := map[string]models.ContentUnit{}
	for _, r := range references {
		byID[r.UnitID] = r
	}
	issues := make([]Issue, 0)
	for _, f := range findings {
		ref := byID[f.ReferenceID]
		if !extract.WellFormedReference(ref.Text) {
			issues = append(issues, Issue{
				ReferenceID: f.ReferenceID,
				Locator:     f.Locator,
				Kind:        IssueMalformed,
				Detail:      "entry is too short or carries no publication year",
			})
			continue
		}
		if !f.Supported {
			issues = append(issues, Issue{
				ReferenceID: f.ReferenceID,
				Locator:     f.Locator,
				Kind:        IssueUnsupported,
				Detail:      "no body passage shares significant terms with this entry",
			})
		}
	}
	return issues
}

func BuildReport(paperID, jobID string, references, body []models.ContentUnit, findings []Finding, issues []Issue) Report {
	supported := 0
	for _, f := range findings {
		if f.Supported {
			supported++
		}
	}
	return Report{
		PaperID:     paperID,
		JobID:       jobID,
		References:  len(references),
		Supported:   supported,
		Findings:    findings,
		Issues:      issues,
		IssueCount:  len(issues),
		BodyUnitsIn: len(body),
	}
}
