package query

import (
	"regexp"
	"sort"
	"strings"

	"paperchat/internal/models"
	"paperchat/internal/util"
)

// locatorPattern matches the literal reference vocabulary followed by a
// numeral or dotted label, e.g. "Figure 3", "section 2.1".
var locatorPattern = regexp.MustCompile(`(?i)\b(figure|fig\.?|table|tab\.?|equation|eq\.?|section|sec\.?|page)\s*(\d+(?:\.\d+)*)`)

type ruleFamily struct {
	queryType models.QueryType
	cues      []string
}

// Rule order resolves equal-strength ties: the earlier family wins.
var ruleFamilies = []ruleFamily{
	{models.QueryComparison, []string{"compare", "comparison", "versus", " vs ", " vs.", "difference between", "better than", "worse than", "contrast"}},
	{models.QueryMethodology, []string{"how ", "method", "approach", "technique", "procedure", "implement", "pipeline", "trained", "architecture"}},
	{models.QueryResults, []string{"result", "finding", "performance", "accuracy", "outcome", "evaluation", "score", "benchmark", "achieve"}},
	{models.QueryTechnicalDetails, []string{"equation", "formula", "derivation", "proof", "parameter", "hyperparameter", "algorithm", "complexity", "notation"}},
	{models.QuerySummary, []string{"summar", "overview", "main contribution", "key points", "abstract", "in short", "tl;dr", "what is this paper about"}},
	{models.QueryConceptual, []string{"why", "explain", "intuition", "concept", "meaning", "understand", "motivation"}},
}

type Classifier struct{}

func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify maps a question to a QueryProfile. It is a pure function of the
// question text and selected excerpt, and it never fails: questions that
// match no rule degrade to the conceptual type with no references.
func (c *Classifier) Classify(q models.Question) models.QueryProfile {
	text := strings.ToLower(q.RawText)
	if q.SelectedExcerpt != "" {
		text += " " + strings.ToLower(q.SelectedExcerpt)
	}

	refs := extractLocators(q.RawText)

	type match struct {
		queryType models.QueryType
		strength  int
		order     int
	}
	matches := make([]match, 0, len(ruleFamilies))
	for i, fam := range ruleFamilies {
		strength := 0
		for _, cue := range fam.cues {
			if strings.Contains(text, cue) {
				strength++
			}
		}
		if strength > 0 {
			matches = append(matches, match{fam.queryType, strength, i})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].strength == matches[j].strength {
			return matches[i].order < matches[j].order
		}
		return matches[i].strength > matches[j].strength
	})

	var primary, secondary models.QueryType
	switch {
	case len(refs) > 0:
		primary = models.QuerySpecificReference
		if len(matches) > 0 {
			secondary = matches[0].queryType
		}
	case len(matches) == 0:
		primary = models.QueryConceptual
	default:
		primary = matches[0].queryType
		if len(matches) > 1 {
			secondary = matches[1].queryType
		}
	}

	return models.QueryProfile{
		PrimaryType:        primary,
		SecondaryType:      secondary,
		SpecificReferences: refs,
		GenerationParams:   Lookup(primary).GenerationParams,
	}
}

func extractLocators(text string) []string {
	found := locatorPattern.FindAllStringSubmatch(text, -1)
	if len(found) == 0 {
		return nil
	}
	seen := map[string]struct{}{}
	refs := make([]string, 0, len(found))
	for _, m := range found {
		loc := util.NormalizeLocator(m[1] + " " + m[2])
		if loc == "" {
			continue
		}
		if _, ok := seen[loc]; ok {
			continue
		}
		seen[loc] = struct{}{}
		refs = append(refs, loc)
	}
	return refs
}
