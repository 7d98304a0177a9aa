package utils

// OrderedSet keeps the first occurrence of each value in insertion order.
type OrderedSet[T comparable] struct {
	seen  map[T]struct{}
	items []T
}

// NewOrderedSet creates an empty OrderedSet.
func NewOrderedSet[T comparable]() *OrderedSet[T] {
	return &OrderedSet[T]{seen: make(map[T]struct{})}
}

// Add returns true if v was newly added, false if already present.
func (s *OrderedSet[T]) Add(v T) bool {
	if _, exists := s.seen[v]; exists {
		return false
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
	return true
}

// Items returns a copy of the values in first-seen order.
func (s *OrderedSet[T]) Items() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Dedupe returns values with duplicates and any value for which drop
// returns true removed, preserving first-seen order.
func Dedupe[T comparable](values []T, drop func(T) bool) []T {
	s := NewOrderedSet[T]()
	for _, v := range values {
		if drop != nil && drop(v) {
			continue
		}
		s.Add(v)
	}
	return s.Items()
}
