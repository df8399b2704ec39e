package providers

import "testing"

func TestParseProviderList(t *testing.T) {
	refs := ParseProviderList("mock|openai:key1|openai:key2")
	if len(refs) != 3 {
		t.Fatalf("expected 3 providers got %d", len(refs))
	}
	if refs[1].Name != "openai" || refs[1].KeyAlias != "key1" {
		t.Fatalf("unexpected parse result: %+v", refs[1])
	}
}

func TestParseProviderListSkipsEmptyEntries(t *testing.T) {
	refs := ParseProviderList("mock| |groq:g1|")
	if len(refs) != 2 {
		t.Fatalf("expected 2 providers got %d", len(refs))
	}
	if refs[1].Name != "groq" || refs[1].KeyAlias != "g1" {
		t.Fatalf("unexpected parse result: %+v", refs[1])
	}
}

func TestPreferredOrderPutsMockLast(t *testing.T) {
	m := NewManagerWith(
		NamedLLMProvider{Ref: ProviderRef{Raw: "mock", Name: "mock"}, Provider: NewMockProvider()},
		NamedLLMProvider{Ref: ProviderRef{Raw: "groq:g1", Name: "groq"}, Provider: NewMockProvider()},
		NamedLLMProvider{Ref: ProviderRef{Raw: "openai:k1", Name: "openai"}, Provider: NewMockProvider()},
	)
	order := m.PreferredOrder()
	if len(order) != 3 {
		t.Fatalf("expected 3 indexes got %v", order)
	}
	if order[len(order)-1] != 0 {
		t.Fatalf("mock should be last, got order %v", order)
	}
}

func TestNewManagerDefaultsToMock(t *testing.T) {
	m, err := NewManager("")
	if err != nil {
		t.Fatal(err)
	}
	if m.Count() != 1 {
		t.Fatalf("expected fallback mock provider, got %d providers", m.Count())
	}
	_, ref := m.ProviderByIndex(0)
	if ref.Name != "mock" {
		t.Fatalf("expected mock fallback got %s", ref.Name)
	}
}

func TestNewManagerRejectsUnknownProvider(t *testing.T) {
	if _, err := NewManager("nonsense:key"); err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}
