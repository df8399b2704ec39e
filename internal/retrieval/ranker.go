package retrieval

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"paperchat/internal/models"
	"paperchat/internal/query"
	"paperchat/internal/util"
)

const (
	// referenceBoost guarantees resolved specific references outrank any
	// lexically scored unit.
	referenceBoost = 100.0
	selectionBoost = 1.0
	structuralMax  = 0.5

	DefaultRelevanceFloor = 0.1
)

// ContentStore is the read side of the extracted-content collaborator.
// Lookups that miss return util.ErrNotFound.
type ContentStore interface {
	GetContentUnits(ctx context.Context, paperID string) ([]models.ContentUnit, error)
	GetContentUnitByLocator(ctx context.Context, paperID, locator string) (models.ContentUnit, error)
}

type Ranker struct {
	store          ContentStore
	relevanceFloor float64
}

func NewRanker(store ContentStore, relevanceFloor float64) *Ranker {
	if relevanceFloor <= 0 {
		relevanceFloor = DefaultRelevanceFloor
	}
	return &Ranker{store: store, relevanceFloor: relevanceFloor}
}

// Rank scores every candidate unit against the question and returns the top
// units within the profile's budget. Resolved specific references come first,
// in locator order, regardless of lexical score. Empty input yields an empty
// result, never an error.
func (r *Ranker) Rank(ctx context.Context, profile models.QueryProfile, q models.Question, paperID string, units []models.ContentUnit) []models.RankedUnit {
	strategy := query.Lookup(profile.PrimaryType)
	maxUnits := profile.GenerationParams.MaxContentUnits
	if maxUnits <= 0 {
		maxUnits = strategy.GenerationParams.MaxContentUnits
	}

	pinned, pinnedIDs := r.resolveReferences(ctx, profile.SpecificReferences, paperID)
	if len(pinned) >= maxUnits {
		return pinned[:maxUnits]
	}

	candidates := make([]models.ContentUnit, 0, len(units))
	for _, u := range units {
		if _, ok := pinnedIDs[u.UnitID]; ok {
			continue
		}
		candidates = append(candidates, u)
	}

	queryTerms := util.SignificantTerms(q.RawText + " " + q.SelectedExcerpt)
	scored := make([]models.RankedUnit, len(candidates))
	// Each unit's score is independent; ordering is fixed afterwards by a
	// deterministic sort, so completion order does not matter.
	var wg sync.WaitGroup
	for i := range candidates {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			scored[i] = scoreUnit(candidates[i], strategy, queryTerms, q.SelectionLocator)
		}(i)
	}
	wg.Wait()

	kept := make([]models.RankedUnit, 0, len(scored))
	for _, ru := range scored {
		if ru.Score < r.relevanceFloor {
			continue
		}
		kept = append(kept, ru)
	}

	kept = dedupeByText(kept)

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Score == kept[j].Score {
			return kept[i].Unit.Position < kept[j].Unit.Position
		}
		return kept[i].Score > kept[j].Score
	})

	budget := maxUnits - len(pinned)
	if len(kept) > budget {
		kept = kept[:budget]
	}
	return append(pinned, kept...)
}

// resolveReferences looks up each extracted locator against the content
// store. Unresolvable locators are skipped silently; ranking proceeds on
// lexical scores for everything else.
func (r *Ranker) resolveReferences(ctx context.Context, locators []string, paperID string) ([]models.RankedUnit, map[string]struct{}) {
	pinned := make([]models.RankedUnit, 0, len(locators))
	ids := map[string]struct{}{}
	for _, loc := range locators {
		u, err := r.store.GetContentUnitByLocator(ctx, paperID, loc)
		if err != nil {
			continue
		}
		if _, ok := ids[u.UnitID]; ok {
			continue
		}
		ids[u.UnitID] = struct{}{}
		pinned = append(pinned, models.RankedUnit{Unit: u, Score: referenceBoost})
	}
	return pinned, ids
}

func scoreUnit(u models.ContentUnit, strategy query.Strategy, queryTerms []string, selectionLocator string) models.RankedUnit {
	bucket := query.BucketFor(u)
	weight := strategy.Weights[bucket]
	overlap := util.KeywordOverlap(u.Text, queryTerms)

	boost := 0.0
	if selectionLocator != "" && locatorNear(u.Locator, selectionLocator) {
		boost = selectionBoost
	}

	bonus := 0.0
	for i, b := range strategy.PriorityOrder {
		if b == bucket {
			bonus = structuralMax * float64(len(strategy.PriorityOrder)-i) / float64(len(strategy.PriorityOrder))
			break
		}
	}

	return models.RankedUnit{
		Unit:            u,
		Score:           weight + overlap + boost + bonus,
		BucketWeight:    weight,
		KeywordOverlap:  overlap,
		SelectionBoost:  boost,
		StructuralBonus: bonus,
	}
}

// locatorNear reports whether two locators match exactly or sit on adjacent
// pages, which is as close as an opaque locator lets us get to "the user
// highlighted this".
func locatorNear(a, b string) bool {
	na, nb := util.NormalizeLocator(a), util.NormalizeLocator(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}
	pa, okA := pageNumber(na)
	pb, okB := pageNumber(nb)
	if okA && okB {
		d := pa - pb
		return d >= -1 && d <= 1
	}
	return false
}

func pageNumber(loc string) (int, bool) {
	rest, ok := strings.CutPrefix(loc, "page ")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return n, true
}

func dedupeByText(units []models.RankedUnit) []models.RankedUnit {
	best := map[string]int{}
	out := make([]models.RankedUnit, 0, len(units))
	for _, ru := range units {
		key := util.NormalizeForDedup(ru.Unit.Text)
		if idx, ok := best[key]; ok {
			if ru.Score > out[idx].Score {
				out[idx] = ru
			}
			continue
		}
		best[key] = len(out)
		out = append(out, ru)
	}
	return out
}
