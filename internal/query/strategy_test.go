package query

import (
	"testing"

	"paperchat/internal/models"
)

func TestLookupKnownTypes(t *testing.T) {
	for _, qt := range []models.QueryType{
		models.QuerySummary, models.QueryMethodology, models.QueryResults,
		models.QueryTechnicalDetails, models.QueryComparison,
		models.QuerySpecificReference, models.QueryConceptual,
	} {
		s := Lookup(qt)
		if len(s.PriorityOrder) == 0 || len(s.Weights) == 0 || s.Instructions == "" {
			t.Fatalf("incomplete strategy for %s: %+v", qt, s)
		}
		if s.GenerationParams.MaxContentUnits <= 0 || s.GenerationParams.MaxTokens <= 0 {
			t.Fatalf("missing generation params for %s", qt)
		}
	}
}

func TestLookupUnknownFallsBackToBalanced(t *testing.T) {
	s := Lookup(models.QueryType("bogus"))
	if s.GenerationParams.Temperature != 0.3 || s.GenerationParams.MaxContentUnits != 8 {
		t.Fatalf("unexpected balanced params: %+v", s.GenerationParams)
	}
	for _, bucket := range s.PriorityOrder {
		if s.Weights[bucket] != 1.0 {
			t.Fatalf("balanced weight for %s is %v, want 1.0", bucket, s.Weights[bucket])
		}
	}
}

func TestBucketFor(t *testing.T) {
	cases := []struct {
		unit models.ContentUnit
		want string
	}{
		{models.ContentUnit{Kind: models.KindFigure}, BucketFigures},
		{models.ContentUnit{Kind: models.KindTable}, BucketTables},
		{models.ContentUnit{Kind: models.KindEquation}, BucketEquations},
		{models.ContentUnit{Kind: models.KindReference}, BucketReferences},
		{models.ContentUnit{Kind: models.KindAuthor}, BucketAuthors},
		{models.ContentUnit{Kind: models.KindParagraph, StructuralTag: BucketMethods}, BucketMethods},
		{models.ContentUnit{Kind: models.KindParagraph}, BucketOther},
	}
	for _, tc := range cases {
		if got := BucketFor(tc.unit); got != tc.want {
			t.Fatalf("BucketFor(%+v) = %s, want %s", tc.unit, got, tc.want)
		}
	}
}
