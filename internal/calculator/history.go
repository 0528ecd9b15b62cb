package calculator

import "sync"

// Record is one calculation attempt as it was entered. Records are never
// modified after they are appended.
type Record struct {
	X       string
	Y       string
	Op      string
	Outcome Outcome
}

// Symbol returns the display symbol of the record's operator.
func (r Record) Symbol() string {
	return DisplaySymbol(r.Op)
}

// Expression renders "x op y = result" with the raw operator token.
func (r Record) Expression() string {
	return r.X + " " + r.Op + " " + r.Y + " = " + r.Outcome.String()
}

// History is the ordered log of calculation attempts together with the
// numeric results of the successful ones.
type History struct {
	mu      sync.RWMutex
	records []Record
	valid   []float64
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{}
}

// Append adds r at the end. Its value joins the valid results only when the
// outcome is numeric.
func (h *History) Append(r Record) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.records = append(h.records, r)
	if v, ok := r.Outcome.Value(); ok {
		h.valid = append(h.valid, v)
	}
}

// Records returns a copy of all records in insertion order.
func (h *History) Records() []Record {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Record, len(h.records))
	copy(out, h.records)
	return out
}

// ValidResults returns a copy of the numeric results in insertion order.
func (h *History) ValidResults() []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]float64, len(h.valid))
	copy(out, h.valid)
	return out
}

// Len returns the number of records.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.records)
}

// Summary aggregates the valid results. ok is false when there are none.
func (h *History) Summary() (Summary, bool) {
	return Summarize(h.ValidResults())
}
