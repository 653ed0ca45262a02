package filter

import "fmt"

// History holds one Filter per key generation for a single credential
// type: Current returns the active generation's filter, and each Rotate
// call pushes it onto the front of a retired vector (so Retired(0) is
// the most recently retired) and installs a fresh one, mirroring the issuer state machine's Active/Retired split
// (§5) applied to filters rather than keys. A showing under a retired
// key consults the matching retired filter by generation index so an
// id minted under an old key still replay-checks correctly during its
// one-generation migration grace window.
type History struct {
	current *Filter
	retired []*Filter
}

// NewHistory starts a fresh History with one current filter.
func NewHistory(current *Filter) *History {
	return &History{current: current}
}

// Current returns the active generation's filter.
func (h *History) Current() *Filter { return h.current }

// Generations reports how many retired generations are retained.
func (h *History) Generations() int { return len(h.retired) }

// Retired returns the filter for retired generation i, where i=0 is
// the most recently retired generation.
func (h *History) Retired(i int) (*Filter, error) {
	if i < 0 || i >= len(h.retired) {
		return nil, fmt.Errorf("filter: no retired generation %d", i)
	}
	return h.retired[i], nil
}

// Rotate retires the current filter and installs next as current.
func (h *History) Rotate(next *Filter) {
	h.retired = append([]*Filter{h.current}, h.retired...)
	h.current = next
}
