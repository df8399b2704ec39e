package chat

import (
	"testing"

	"paperchat/internal/models"
)

func turns(texts ...string) []models.ChatTurn {
	out := make([]models.ChatTurn, len(texts))
	for i, txt := range texts {
		out[i] = models.ChatTurn{Role: models.RoleUser, Text: txt}
	}
	return out
}

func TestWindowShortHistoryReturnedWhole(t *testing.T) {
	h := turns("a", "b")
	got := Window(h, 3)
	if len(got) != 2 || got[0].Text != "a" || got[1].Text != "b" {
		t.Fatalf("unexpected window: %+v", got)
	}
}

func TestWindowKeepsMostRecent(t *testing.T) {
	h := turns("a", "b", "c", "d", "e")
	got := Window(h, 3)
	if len(got) != 3 || got[0].Text != "c" || got[2].Text != "e" {
		t.Fatalf("unexpected window: %+v", got)
	}
}

func TestWindowZeroOrEmpty(t *testing.T) {
	if got := Window(turns("a"), 0); got != nil {
		t.Fatalf("expected nil for k=0, got %+v", got)
	}
	if got := Window(nil, 3); got != nil {
		t.Fatalf("expected nil for empty history, got %+v", got)
	}
}
