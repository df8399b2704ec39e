package query

import (
	"reflect"
	"testing"

	"paperchat/internal/models"
)

func TestClassifyMethodology(t *testing.T) {
	c := NewClassifier()
	p := c.Classify(models.Question{RawText: "How was the model trained?"})
	if p.PrimaryType != models.QueryMethodology {
		t.Fatalf("expected methodology got %s", p.PrimaryType)
	}
	if p.GenerationParams.Temperature != 0.2 {
		t.Fatalf("unexpected temperature %v", p.GenerationParams.Temperature)
	}
	if len(p.SpecificReferences) != 0 {
		t.Fatalf("unexpected references %v", p.SpecificReferences)
	}
}

func TestClassifyComparisonWithSecondary(t *testing.T) {
	c := NewClassifier()
	p := c.Classify(models.Question{RawText: "Compare the accuracy of method A versus method B"})
	if p.PrimaryType != models.QueryComparison {
		t.Fatalf("expected comparison got %s", p.PrimaryType)
	}
	if p.SecondaryType != models.QueryMethodology {
		t.Fatalf("expected methodology secondary got %s", p.SecondaryType)
	}
}

func TestClassifyLocatorWinsOverLexicalCues(t *testing.T) {
	c := NewClassifier()
	p := c.Classify(models.Question{RawText: "How is Equation 2 derived?"})
	if p.PrimaryType != models.QuerySpecificReference {
		t.Fatalf("expected specific_reference got %s", p.PrimaryType)
	}
	if !reflect.DeepEqual(p.SpecificReferences, []string{"equation 2"}) {
		t.Fatalf("unexpected references %v", p.SpecificReferences)
	}
	if p.SecondaryType != models.QueryMethodology {
		t.Fatalf("expected methodology secondary got %s", p.SecondaryType)
	}
	if p.GenerationParams.MaxContentUnits != 6 {
		t.Fatalf("unexpected unit budget %d", p.GenerationParams.MaxContentUnits)
	}
}

func TestClassifyLocatorExtraction(t *testing.T) {
	c := NewClassifier()
	cases := []struct {
		in   string
		want []string
	}{
		{"What does Figure 3 show?", []string{"figure 3"}},
		{"See fig. 3 and Table 12", []string{"figure 3", "table 12"}},
		{"Explain section 2.1", []string{"section 2.1"}},
		{"What is on page 7?", []string{"page 7"}},
		{"Figure 3 and figure 3 again", []string{"figure 3"}},
	}
	for _, tc := range cases {
		p := c.Classify(models.Question{RawText: tc.in})
		if !reflect.DeepEqual(p.SpecificReferences, tc.want) {
			t.Fatalf("%q: expected %v got %v", tc.in, tc.want, p.SpecificReferences)
		}
	}
}

func TestClassifyFallsBackToConceptual(t *testing.T) {
	c := NewClassifier()
	p := c.Classify(models.Question{RawText: "Tell me more about transformers"})
	if p.PrimaryType != models.QueryConceptual {
		t.Fatalf("expected conceptual fallback got %s", p.PrimaryType)
	}
	if p.SecondaryType != "" {
		t.Fatalf("unexpected secondary %s", p.SecondaryType)
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	c := NewClassifier()
	q := models.Question{RawText: "Summarize the results and compare with prior work", SelectedExcerpt: "accuracy of 94%"}
	first := c.Classify(q)
	for i := 0; i < 10; i++ {
		if got := c.Classify(q); !reflect.DeepEqual(got, first) {
			t.Fatalf("classification changed between runs: %+v vs %+v", first, got)
		}
	}
}

func TestClassifyUsesSelectedExcerptForCues(t *testing.T) {
	c := NewClassifier()
	p := c.Classify(models.Question{
		RawText:         "What about this part?",
		SelectedExcerpt: "we evaluate performance on the benchmark",
	})
	if p.PrimaryType != models.QueryResults {
		t.Fatalf("expected results via excerpt cues got %s", p.PrimaryType)
	}
}
