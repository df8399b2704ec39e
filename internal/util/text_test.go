package util

import (
	"reflect"
	"testing"
)

func TestSanitizeTextStripsControlBytes(t *testing.T) {
	in := "hello\x00 world\x01\ttab\nline"
	got := SanitizeText(in)
	want := "hello world\ttab\nline"
	if got != want {
		t.Fatalf("expected %q got %q", want, got)
	}
}

func TestSignificantTerms(t *testing.T) {
	got := SignificantTerms("How does the paper evaluate the Transformer model?")
	want := []string{"evaluate", "transformer", "model"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v got %v", want, got)
	}
}

func TestSignificantTermsDeduplicates(t *testing.T) {
	got := SignificantTerms("model model MODEL model,")
	if !reflect.DeepEqual(got, []string{"model"}) {
		t.Fatalf("expected single term got %v", got)
	}
}

func TestKeywordOverlap(t *testing.T) {
	terms := []string{"transformer", "attention", "missing"}
	got := KeywordOverlap("the Transformer uses attention layers", terms)
	if got < 0.66 || got > 0.67 {
		t.Fatalf("expected ~2/3 got %v", got)
	}
	if KeywordOverlap("anything", nil) != 0 {
		t.Fatal("empty term set should score zero")
	}
}

func TestNormalizeForDedup(t *testing.T) {
	a := NormalizeForDedup("The  Model achieves 94% accuracy!")
	b := NormalizeForDedup("the model achieves 94 accuracy")
	if a != b {
		t.Fatalf("expected equal keys, got %q vs %q", a, b)
	}
}

func TestNormalizeLocator(t *testing.T) {
	cases := map[string]string{
		"Figure  3": "figure 3",
		"fig. 3":    "figure 3",
		"Tab. 12":   "table 12",
		"EQ 2":      "equation 2",
		"Sec. 2.1":  "section 2.1",
		"p 7":       "page 7",
		"":          "",
	}
	for in, want := range cases {
		if got := NormalizeLocator(in); got != want {
			t.Fatalf("NormalizeLocator(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSnippetTruncates(t *testing.T) {
	long := "word "
	for len(long) < 600 {
		long += long
	}
	got := Snippet(long, 50)
	if len([]rune(got)) > 53 {
		t.Fatalf("snippet too long: %d runes", len([]rune(got)))
	}
}
