package live

import "elevateu/hr-coach/internal/models"

// History is a bounded, ordered list of turns. Appending beyond capacity
// evicts the oldest turn.
type History struct {
	turns    []models.Turn
	capacity int
}

func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{
		turns:    make([]models.Turn, 0, capacity),
		capacity: capacity,
	}
}

func (h *History) Append(speaker models.Speaker, text string) {
	if len(h.turns) == h.capacity {
		copy(h.turns, h.turns[1:])
		h.turns = h.turns[:len(h.turns)-1]
	}
	h.turns = append(h.turns, models.Turn{Speaker: speaker, Text: text})
}

func (h *History) Clear() {
	h.turns = h.turns[:0]
}

func (h *History) Len() int {
	return len(h.turns)
}

// Snapshot returns a copy that is safe to use after the history changes.
func (h *History) Snapshot() []models.Turn {
	out := make([]models.Turn, len(h.turns))
	copy(out, h.turns)
	return out
}
