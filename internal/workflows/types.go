package workflows

type ExtractionInput struct {
	JobID     string `json:"job_id"`
	PaperID   string `json:"paper_id"`
	PaperPath string `json:"paper_path"`
	Filename  string `json:"filename"`
}

type CitationCheckInput struct {
	JobID   string `json:"job_id"`
	PaperID string `json:"paper_id"`
}
