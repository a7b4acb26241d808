package history

import "sync"

// History is an append-only, bounded log of raw command lines. Once the
// capacity is reached the oldest entry is evicted to make room.
type History struct {
	mu    sync.Mutex
	items []string
	max   int
}

func New(max int) *History {
	if max <= 0 {
		max = 100
	}
	return &History{max: max}
}

func (h *History) Add(line string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.items = append(h.items, line)
	if len(h.items) > h.max {
		h.items = h.items[len(h.items)-h.max:]
	}
}

// Entries returns a copy of the log, oldest first.
func (h *History) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	return append([]string(nil), h.items...)
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.items)
}
