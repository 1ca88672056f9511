package domain

import (
	"errors"
	"math/rand"
	"testing"
)

func TestPileDrawAndReshuffle(t *testing.T) {
	pile := NewPile([]int{1, 2, 3}, rand.New(rand.NewSource(7)))

	seen := make(map[int]bool)
	for i := 0; i < 3; i++ {
		v, err := pile.Draw()
		if err != nil {
			t.Fatalf("Draw() error: %v", err)
		}
		if seen[v] {
			t.Fatalf("drew %d twice", v)
		}
		seen[v] = true
	}

	if _, err := pile.Draw(); !errors.Is(err, ErrPileExhausted) {
		t.Fatalf("Draw() on empty pile error = %v, want ErrPileExhausted", err)
	}

	pile.Discard(2, 3)
	if pile.DiscardLen() != 2 {
		t.Fatalf("DiscardLen() = %d, want 2", pile.DiscardLen())
	}
	for i := 0; i < 2; i++ {
		if _, err := pile.Draw(); err != nil {
			t.Fatalf("Draw() after discard error: %v", err)
		}
	}
	if pile.Len() != 0 || pile.DiscardLen() != 0 {
		t.Fatalf("pile should be empty, got draw=%d discard=%d", pile.Len(), pile.DiscardLen())
	}
}

func TestNewPileCopiesItems(t *testing.T) {
	items := []string{"a", "b", "c", "d"}
	pile := NewPile(items, rand.New(rand.NewSource(1)))
	if _, err := pile.Draw(); err != nil {
		t.Fatalf("Draw() error: %v", err)
	}
	if len(items) != 4 || items[0] != "a" {
		t.Fatalf("NewPile must not modify the source slice: %v", items)
	}
}
