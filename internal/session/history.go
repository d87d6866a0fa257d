package session

// DefaultHistorySize is the bounded recent-outcome window each session
// retains, most recent first.
const DefaultHistorySize = 15

// History is an append-only, capped outcome window. Purely
// observational: nothing in outcome resolution reads it.
type History struct {
	entries []Outcome
	max     int
}

// NewHistory creates a window holding at most max outcomes.
func NewHistory(max int) *History {
	if max <= 0 {
		max = DefaultHistorySize
	}
	return &History{max: max}
}

// Push prepends an outcome, evicting the oldest past the cap.
func (h *History) Push(o Outcome) {
	h.entries = append([]Outcome{o}, h.entries...)
	if len(h.entries) > h.max {
		h.entries = h.entries[:h.max]
	}
}

// Recent returns the retained outcomes, most recent first. The returned
// slice is a copy.
func (h *History) Recent() []Outcome {
	out := make([]Outcome, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len reports the number of retained outcomes.
func (h *History) Len() int {
	return len(h.entries)
}
