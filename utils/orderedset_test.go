package utils

import (
	"testing"
)

func TestOrderedSetNoDuplicates(t *testing.T) {
	s := NewOrderedSet[string]()

	if !s.Add("B3") {
		t.Error("first Add should return true")
	}
	if s.Add("B3") {
		t.Error("second Add of same value should return false")
	}
	if got := s.Items(); len(got) != 1 || got[0] != "B3" {
		t.Errorf("items: got %v, want [B3]", got)
	}
}

func TestOrderedSetKeepsInsertionOrder(t *testing.T) {
	s := NewOrderedSet[string]()
	for _, v := range []string{"C", "A", "C", "B", "A"} {
		s.Add(v)
	}

	got := s.Items()
	want := []string{"C", "A", "B"}
	if len(got) != len(want) {
		t.Fatalf("items: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("items[%d]: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDedupeDropsPlaceholder(t *testing.T) {
	got := Dedupe([]string{"A", "Not recorded", "A", "B"}, func(s string) bool {
		return s == "Not recorded"
	})
	want := []string{"A", "B"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Dedupe: got %v, want %v", got, want)
	}
}

func TestDedupeNilDrop(t *testing.T) {
	got := Dedupe([]int{3, 1, 3}, nil)
	if len(got) != 2 || got[0] != 3 || got[1] != 1 {
		t.Errorf("Dedupe: got %v, want [3 1]", got)
	}
}
