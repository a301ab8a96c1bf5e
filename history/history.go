// Package history records the pages visited before and after the current
// one as two stacks.
package history

import (
	"errors"

	"wikiterm/document"
)

// ErrHistoryEmpty is returned when there is nothing to go back or forward to.
var ErrHistoryEmpty = errors.New("history: empty")

// Snapshot is the reading position on a page. Top is only meaningful at
// Width; Block lets the position survive a different width.
type Snapshot struct {
	Top      int              `json:"top"`
	Block    document.BlockID `json:"block"`
	Width    int              `json:"width"`
	Selected int              `json:"selected"` // link index, -1 for none
}

// Entry is one visited page.
type Entry struct {
	Identifier string   `json:"identifier"`
	Snapshot   Snapshot `json:"snapshot"`
}

// History is a pair of back and forward stacks. The last element of each
// slice is the top of the stack.
type History struct {
	back     []Entry
	forward  []Entry
	capacity int
}

// New returns a history holding at most capacity entries per stack. A
// capacity of 0 or less means unbounded.
func New(capacity int) *History {
	return &History{capacity: capacity}
}

// Push records entry as the page being left for a new navigation and clears
// the forward stack.
func (h *History) Push(entry Entry) {
	h.back = h.push(h.back, entry)
	h.forward = nil
}

// PopBack returns the previous page and moves current onto the forward
// stack.
func (h *History) PopBack(current Entry) (Entry, error) {
	if len(h.back) == 0 {
		return Entry{}, ErrHistoryEmpty
	}
	e := h.back[len(h.back)-1]
	h.back = h.back[:len(h.back)-1]
	h.forward = h.push(h.forward, current)
	return e, nil
}

// PopForward returns the next page and moves current onto the back stack.
func (h *History) PopForward(current Entry) (Entry, error) {
	if len(h.forward) == 0 {
		return Entry{}, ErrHistoryEmpty
	}
	e := h.forward[len(h.forward)-1]
	h.forward = h.forward[:len(h.forward)-1]
	h.back = h.push(h.back, current)
	return e, nil
}

// PeekBack returns the entry PopBack would return without changing anything.
func (h *History) PeekBack() (Entry, error) {
	if len(h.back) == 0 {
		return Entry{}, ErrHistoryEmpty
	}
	return h.back[len(h.back)-1], nil
}

// PeekForward returns the entry PopForward would return.
func (h *History) PeekForward() (Entry, error) {
	if len(h.forward) == 0 {
		return Entry{}, ErrHistoryEmpty
	}
	return h.forward[len(h.forward)-1], nil
}

// Back returns a copy of the back stack, oldest first.
func (h *History) Back() []Entry {
	return append([]Entry(nil), h.back...)
}

// Forward returns a copy of the forward stack, bottom first.
func (h *History) Forward() []Entry {
	return append([]Entry(nil), h.forward...)
}

// Len returns the sizes of the back and forward stacks.
func (h *History) Len() (back, forward int) {
	return len(h.back), len(h.forward)
}

// Restore replaces both stacks, for instance from a saved session. Entries
// beyond the capacity are dropped from the bottom.
func (h *History) Restore(back, forward []Entry) {
	h.back = h.trim(append([]Entry(nil), back...))
	h.forward = h.trim(append([]Entry(nil), forward...))
}

func (h *History) push(stack []Entry, e Entry) []Entry {
	return h.trim(append(stack, e))
}

// trim drops the oldest entries once the stack is over capacity.
func (h *History) trim(stack []Entry) []Entry {
	if h.capacity > 0 && len(stack) > h.capacity {
		stack = append([]Entry(nil), stack[len(stack)-h.capacity:]...)
	}
	return stack
}
