package query

import "paperchat/internal/models"

// Bucket names combine structural section tags with kind-derived groups.
const (
	BucketAbstract     = "abstract"
	BucketIntroduction = "introduction"
	BucketMethods      = "methods"
	BucketExperiments  = "experiments"
	BucketResults      = "results"
	BucketDiscussion   = "discussion"
	BucketConclusion   = "conclusion"
	BucketOther        = "other"
	BucketFigures      = "figures"
	BucketTables       = "tables"
	BucketEquations    = "equations"
	BucketReferences   = "references"
	BucketAuthors      = "authors"
)

// Strategy is one retrieval strategy table entry: which buckets to prefer,
// how to weight them during ranking, the generation parameters for the
// downstream model call, and the instruction block appended to the prompt.
type Strategy struct {
	PriorityOrder    []string
	Weights          map[string]float64
	GenerationParams models.GenerationParams
	Instructions     string
}

var strategyTable = map[models.QueryType]Strategy{
	models.QuerySummary: {
		PriorityOrder: []string{BucketAbstract, BucketIntroduction, BucketConclusion, BucketResults},
		Weights:       map[string]float64{BucketAbstract: 1.0, BucketIntroduction: 0.8, BucketConclusion: 0.8, BucketResults: 0.5},
		GenerationParams: models.GenerationParams{Temperature: 0.3, MaxTokens: 1024, MaxContentUnits: 8},
		Instructions: "Summarize the paper's goal, approach, and main findings in a few short paragraphs. Stay within the provided content and keep the summary faithful to the authors' claims.",
	},
	models.QueryMethodology: {
		PriorityOrder: []string{BucketMethods, BucketExperiments, BucketIntroduction, BucketFigures},
		Weights:       map[string]float64{BucketMethods: 1.0, BucketExperiments: 0.8, BucketIntroduction: 0.5, BucketFigures: 0.4},
		GenerationParams: models.GenerationParams{Temperature: 0.2, MaxTokens: 1024, MaxContentUnits: 8},
		Instructions: "Describe the methodology step by step, naming datasets, models, and procedures exactly as the paper does. Do not invent steps that are not in the provided content.",
	},
	models.QueryResults: {
		PriorityOrder: []string{BucketResults, BucketTables, BucketFigures, BucketDiscussion},
		Weights:       map[string]float64{BucketResults: 1.0, BucketTables: 0.9, BucketFigures: 0.7, BucketDiscussion: 0.6},
		GenerationParams: models.GenerationParams{Temperature: 0.2, MaxTokens: 1024, MaxContentUnits: 8},
		Instructions: "Report the quantitative findings with their exact numbers and conditions. Quote metrics from tables verbatim and note any caveats the authors state.",
	},
	models.QueryTechnicalDetails: {
		PriorityOrder: []string{BucketEquations, BucketMethods, BucketFigures, BucketTables},
		Weights:       map[string]float64{BucketEquations: 1.0, BucketMethods: 0.9, BucketFigures: 0.5, BucketTables: 0.5},
		GenerationParams: models.GenerationParams{Temperature: 0.1, MaxTokens: 1536, MaxContentUnits: 10},
		Instructions: "Answer with precise technical detail. Keep LaTeX notation intact, define symbols before using them, and flag any detail the provided content does not cover.",
	},
	models.QueryComparison: {
		PriorityOrder: []string{BucketResults, BucketDiscussion, BucketTables, BucketIntroduction},
		Weights:       map[string]float64{BucketResults: 1.0, BucketDiscussion: 0.8, BucketTables: 0.8, BucketIntroduction: 0.5},
		GenerationParams: models.GenerationParams{Temperature: 0.3, MaxTokens: 1024, MaxContentUnits: 8},
		Instructions: "Compare the approaches point by point, stating which content supports each side. If the paper does not compare them directly, say so rather than speculating.",
	},
	models.QuerySpecificReference: {
		PriorityOrder: []string{BucketFigures, BucketTables, BucketEquations, BucketMethods, BucketResults},
		Weights:       map[string]float64{BucketFigures: 1.0, BucketTables: 1.0, BucketEquations: 1.0, BucketMethods: 0.5, BucketResults: 0.5},
		GenerationParams: models.GenerationParams{Temperature: 0.1, MaxTokens: 1024, MaxContentUnits: 6},
		Instructions: "The user is asking about a specific element of the paper. Ground the answer in that element first, then add surrounding context only where it clarifies.",
	},
	models.QueryConceptual: {
		PriorityOrder: []string{BucketIntroduction, BucketDiscussion, BucketAbstract, BucketConclusion},
		Weights:       map[string]float64{BucketIntroduction: 1.0, BucketDiscussion: 0.8, BucketAbstract: 0.7, BucketConclusion: 0.6},
		GenerationParams: models.GenerationParams{Temperature: 0.4, MaxTokens: 1024, MaxContentUnits: 8},
		Instructions: "Explain the underlying concepts in plain language, building intuition before detail. Tie every explanation back to what the paper actually says.",
	},
}

var balancedStrategy = Strategy{
	PriorityOrder: []string{
		BucketAbstract, BucketIntroduction, BucketMethods, BucketExperiments,
		BucketResults, BucketDiscussion, BucketConclusion, BucketFigures,
		BucketTables, BucketEquations, BucketOther,
	},
	Weights: map[string]float64{
		BucketAbstract: 1.0, BucketIntroduction: 1.0, BucketMethods: 1.0, BucketExperiments: 1.0,
		BucketResults: 1.0, BucketDiscussion: 1.0, BucketConclusion: 1.0, BucketFigures: 1.0,
		BucketTables: 1.0, BucketEquations: 1.0, BucketOther: 1.0,
	},
	GenerationParams: models.GenerationParams{Temperature: 0.3, MaxTokens: 1024, MaxContentUnits: 8},
	Instructions: "Answer the question using the provided paper content. Be specific, cite which part of the paper supports each claim, and say explicitly when the content is insufficient.",
}

// Lookup returns the strategy entry for a query type. Unknown types fall back
// to the balanced entry covering all buckets with uniform weight.
func Lookup(t models.QueryType) Strategy {
	if s, ok := strategyTable[t]; ok {
		return s
	}
	return balancedStrategy
}

// BucketFor places a content unit into a strategy bucket: section-like units
// group by structural tag, media and math units by kind.
func BucketFor(u models.ContentUnit) string {
	switch u.Kind {
	case models.KindFigure:
		return BucketFigures
	case models.KindTable:
		return BucketTables
	case models.KindEquation:
		return BucketEquations
	case models.KindReference:
		return BucketReferences
	case models.KindAuthor:
		return BucketAuthors
	}
	if u.StructuralTag != "" {
		return u.StructuralTag
	}
	return BucketOther
}
