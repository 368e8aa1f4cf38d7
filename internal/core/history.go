package core

import "github.com/dkeye/Relay/internal/domain"

// History is a fixed-capacity FIFO of messages. The oldest entry is evicted on overflow.
// It is not safe for concurrent use; the owning room guards it.
type History struct {
	buf   []domain.Message
	start int
	size  int
}

func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &History{buf: make([]domain.Message, capacity)}
}

// Append stores m and reports whether an older message was evicted to make room.
func (h *History) Append(m domain.Message) bool {
	if h.size < len(h.buf) {
		h.buf[(h.start+h.size)%len(h.buf)] = m
		h.size++
		return false
	}
	h.buf[h.start] = m
	h.start = (h.start + 1) % len(h.buf)
	return true
}

// Snapshot copies the retained messages, oldest first.
func (h *History) Snapshot() []domain.Message {
	out := make([]domain.Message, h.size)
	for i := range h.size {
		out[i] = h.buf[(h.start+i)%len(h.buf)]
	}
	return out
}

func (h *History) Len() int { return h.size }
func (h *History) Cap() int { return len(h.buf) }
