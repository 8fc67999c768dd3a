package tactic

// History is the unbounded, append-only record of every tactic the player
// has chosen in a session. The session owns it; encounters borrow a pointer.
//
// Invariant: entries are never removed or reordered.
type History struct {
	entries []Tactic
}

// NewHistory returns an empty History.
func NewHistory() *History {
	return &History{}
}

// Append records t as the newest entry.
func (h *History) Append(t Tactic) {
	h.entries = append(h.entries, t)
}

// Len returns the total number of recorded tactics.
func (h *History) Len() int { return len(h.entries) }

// Recent returns a copy of the newest n entries, oldest first.
// Postcondition: len(result) == min(n, h.Len()).
func (h *History) Recent(n int) []Tactic {
	if n <= 0 {
		return nil
	}
	start := len(h.entries) - n
	if start < 0 {
		start = 0
	}
	out := make([]Tactic, len(h.entries)-start)
	copy(out, h.entries[start:])
	return out
}

// Last returns the newest entry, or (Unknown, false) if the history is empty.
func (h *History) Last() (Tactic, bool) {
	if len(h.entries) == 0 {
		return Unknown, false
	}
	return h.entries[len(h.entries)-1], true
}

// Dominant returns the most frequent tactic over the whole session.
// Ties go to the tactic chosen first.
func (h *History) Dominant() (Tactic, int, bool) {
	return MostFrequent(h.entries)
}
