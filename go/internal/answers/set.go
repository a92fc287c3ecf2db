package answers

import "github.com/google/uuid"

// Set is an immutable set of answered question IDs.
type Set struct {
	ids map[uuid.UUID]struct{}
}

// NewSet builds a set from the given IDs. Duplicates collapse.
func NewSet(ids ...uuid.UUID) Set {
	m := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return Set{ids: m}
}

// Has reports whether the question was answered.
func (s Set) Has(questionID uuid.UUID) bool {
	_, ok := s.ids[questionID]
	return ok
}

// Len returns the number of answered questions.
func (s Set) Len() int {
	return len(s.ids)
}

// IDs returns a copy of the members in no particular order.
func (s Set) IDs() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	return out
}
