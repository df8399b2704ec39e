package models

import "time"

type ContentKind string

const (
	KindSection   ContentKind = "section"
	KindParagraph ContentKind = "paragraph"
	KindFigure    ContentKind = "figure"
	KindTable     ContentKind = "table"
	KindEquation  ContentKind = "equation"
	KindReference ContentKind = "reference"
	KindAuthor    ContentKind = "author"
)

// ContentUnit is one retrievable fragment of a paper's extracted content.
// Units are immutable once extraction completes.
type ContentUnit struct {
	UnitID        string      `json:"unit_id"`
	PaperID       string      `json:"paper_id"`
	Kind          ContentKind `json:"kind"`
	Text          string      `json:"text"`
	StructuralTag string      `json:"structural_tag,omitempty"`
	Position      int         `json:"position"`
	Locator       string      `json:"locator,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
}

type PaperMetadata struct {
	PaperID  string `json:"paper_id"`
	Title    string `json:"title,omitempty"`
	Authors  string `json:"authors,omitempty"`
	Filename string `json:"filename,omitempty"`
}

// Question is one user turn, plus the excerpt the user highlighted, if any.
type Question struct {
	RawText          string `json:"raw_text"`
	SelectedExcerpt  string `json:"selected_excerpt,omitempty"`
	SelectionLocator string `json:"selection_locator,omitempty"`
}

type QueryType string

const (
	QuerySummary           QueryType = "summary"
	QueryMethodology       QueryType = "methodology"
	QueryResults           QueryType = "results"
	QueryTechnicalDetails  QueryType = "technical_details"
	QueryComparison        QueryType = "comparison"
	QuerySpecificReference QueryType = "specific_reference"
	QueryConceptual        QueryType = "conceptual"
)

type GenerationParams struct {
	Temperature     float64 `json:"temperature"`
	MaxTokens       int     `json:"max_tokens"`
	MaxContentUnits int     `json:"max_content_units"`
}

// QueryProfile is the classifier output for a single question.
type QueryProfile struct {
	PrimaryType        QueryType        `json:"primary_type"`
	SecondaryType      QueryType        `json:"secondary_type,omitempty"`
	SpecificReferences []string         `json:"specific_references,omitempty"`
	GenerationParams   GenerationParams `json:"generation_params"`
}

// RankedUnit pairs a content unit with its relevance score for one question.
// Recomputed per question, never persisted.
type RankedUnit struct {
	Unit            ContentUnit `json:"unit"`
	Score           float64     `json:"score"`
	BucketWeight    float64     `json:"bucket_weight"`
	KeywordOverlap  float64     `json:"keyword_overlap"`
	SelectionBoost  float64     `json:"selection_boost"`
	StructuralBonus float64     `json:"structural_bonus"`
}

type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

type ChatTurn struct {
	Role      ChatRole  `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

type JobKind string

const (
	JobExtraction    JobKind = "extraction"
	JobCitationCheck JobKind = "citation_check"
)

type JobState string

const (
	JobSubmitted JobState = "submitted"
	JobRunning   JobState = "running"
	JobDone      JobState = "done"
	JobFailed    JobState = "failed"
)

// Job is a long-running task record. It is mutated only by the pipeline
// executing it and retained after completion for polling.
type Job struct {
	JobID           string    `json:"id"`
	Kind            JobKind   `json:"kind"`
	SubjectID       string    `json:"subjectId"`
	State           JobState  `json:"state"`
	ProgressPercent int       `json:"progressPercent"`
	CurrentStep     string    `json:"currentStep,omitempty"`
	Error           string    `json:"error,omitempty"`
	Fingerprint     string    `json:"-"`
	Result          string    `json:"-"`
	CreatedAt       time.Time `json:"-"`
	UpdatedAt       time.Time `json:"-"`
}

// ContextMetadata reports which content kinds backed a chat answer.
// Field names are parsed by the web client; keep them stable.
type ContextMetadata struct {
	SectionsUsed  int `json:"sectionsUsed"`
	FiguresUsed   int `json:"figuresUsed"`
	TablesUsed    int `json:"tablesUsed"`
	EquationsUsed int `json:"equationsUsed"`
}

type ChatResponse struct {
	SessionID       string          `json:"sessionId"`
	Response        string          `json:"response"`
	ContextMetadata ContextMetadata `json:"contextMetadata"`
	Timestamp       time.Time       `json:"timestamp"`
	Success         bool            `json:"success"`
	Error           string          `json:"error,omitempty"`
}
