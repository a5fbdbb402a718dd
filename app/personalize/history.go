package personalize

import (
	"slices"

	"github.com/lysyi3m/news-comb/app/feed"
)

const HistoryCapacity = 10

type Action string

const (
	ActionLike    Action = "like"
	ActionDislike Action = "dislike"
	ActionSkip    Action = "skip"
	ActionSave    Action = "save"
	ActionOther   Action = "other"
)

// HistoryEntry records one committed decision together with exactly what the
// commit changed, so Undo can reverse that and nothing else.
type HistoryEntry struct {
	Article feed.Article `json:"article"`
	Action  Action       `json:"action"`
	Seq     int64        `json:"seq"`

	MarkedRead bool    `json:"markedRead"`
	Added      bool    `json:"added"`
	Moved      bool    `json:"moved"`
	Delta      float64 `json:"delta"`
}

// History is a bounded LIFO stack; pushing onto a full stack evicts the
// oldest entry.
type History struct {
	entries  []HistoryEntry
	capacity int
}

func NewHistory(capacity int) *History {
	return &History{
		entries:  make([]HistoryEntry, 0, capacity),
		capacity: capacity,
	}
}

func (h *History) Push(entry HistoryEntry) {
	if h.capacity <= 0 {
		return
	}
	if len(h.entries) >= h.capacity {
		h.entries = slices.Delete(h.entries, 0, len(h.entries)-h.capacity+1)
	}
	h.entries = append(h.entries, entry)
}

func (h *History) Pop() (HistoryEntry, bool) {
	if len(h.entries) == 0 {
		return HistoryEntry{}, false
	}
	last := h.entries[len(h.entries)-1]
	h.entries = h.entries[:len(h.entries)-1]
	return last, true
}

func (h *History) Len() int {
	return len(h.entries)
}

// Entries returns a copy, oldest first.
func (h *History) Entries() []HistoryEntry {
	return slices.Clone(h.entries)
}

func (h *History) Clear() {
	h.entries = h.entries[:0]
}
