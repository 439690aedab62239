package studio

import "github.com/ChaseRain/coverstudio/internal/domain/cover"

// DefaultHistoryCapacity is also the upper bound on any configured capacity.
const DefaultHistoryCapacity = 20

// History keeps the most recent images, newest first.
type History struct {
	capacity int
	items    []cover.GeneratedImage
}

func NewHistory(capacity int) *History {
	if capacity <= 0 || capacity > DefaultHistoryCapacity {
		capacity = DefaultHistoryCapacity
	}
	return &History{capacity: capacity}
}

// Prepend puts batch in front of everything stored, keeping batch order, and
// evicts the oldest entries beyond capacity.
func (h *History) Prepend(batch []cover.GeneratedImage) {
	merged := make([]cover.GeneratedImage, 0, len(batch)+len(h.items))
	merged = append(merged, batch...)
	merged = append(merged, h.items...)
	if len(merged) > h.capacity {
		merged = merged[:h.capacity]
	}
	h.items = merged
}

func (h *History) Items() []cover.GeneratedImage {
	out := make([]cover.GeneratedImage, len(h.items))
	copy(out, h.items)
	return out
}

func (h *History) Len() int { return len(h.items) }

func (h *History) Capacity() int { return h.capacity }

func (h *History) Find(id string) (cover.GeneratedImage, bool) {
	for _, img := range h.items {
		if img.ID == id {
			return img, true
		}
	}
	return cover.GeneratedImage{}, false
}
