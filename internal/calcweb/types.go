package calcweb

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"go-chi-calculator/internal/calculator"
)

// Number is a float64 that survives JSON even when it is not finite.
// Finite values encode as JSON numbers; Infinity, -Infinity and NaN encode
// as the strings the page prints for them.
type Number float64

func (n Number) MarshalJSON() ([]byte, error) {
	v := float64(n)
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return json.Marshal(calculator.FormatNumber(v))
	}
	return json.Marshal(v)
}

func (n *Number) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var v float64
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*n = Number(v)
		return nil
	}

	switch s {
	case "Infinity":
		*n = Number(math.Inf(1))
	case "-Infinity":
		*n = Number(math.Inf(-1))
	case "NaN":
		*n = Number(math.NaN())
	default:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q", s)
		}
		*n = Number(v)
	}
	return nil
}

func numberPtr(v float64) *Number {
	n := Number(v)
	return &n
}

// CalcRequest is the JSON body for POST /api/calculations. Operands stay
// strings so they are validated exactly like form input.
type CalcRequest struct {
	X  string `json:"x"`
	Y  string `json:"y"`
	Op string `json:"op"`
}

// RecordResponse is one history entry. Exactly one of Result and Error is set.
type RecordResponse struct {
	X      string  `json:"x"`
	Y      string  `json:"y"`
	Op     string  `json:"op"`
	Symbol string  `json:"symbol"`
	Result *Number `json:"result,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// HistoryResponse is the JSON response for GET /api/history.
type HistoryResponse struct {
	Records      []RecordResponse `json:"records"`
	ValidResults []Number         `json:"valid_results"`
}

// SummaryResponse is the JSON response for GET /api/summary. Count is zero
// and the other fields are omitted when there are no valid results.
type SummaryResponse struct {
	Min     *Number `json:"min,omitempty"`
	Max     *Number `json:"max,omitempty"`
	Average string  `json:"average,omitempty"`
	Total   *Number `json:"total,omitempty"`
	Count   int     `json:"count"`
}

// StateResponse reports the session state after a lifecycle call.
type StateResponse struct {
	State   string `json:"state"`
	Records int    `json:"records"`
}

func newRecordResponse(rec calculator.Record) RecordResponse {
	resp := RecordResponse{
		X:      rec.X,
		Y:      rec.Y,
		Op:     rec.Op,
		Symbol: rec.Symbol(),
	}
	if v, ok := rec.Outcome.Value(); ok {
		resp.Result = numberPtr(v)
	} else {
		resp.Error = rec.Outcome.Err().Message()
	}
	return resp
}

func newSummaryResponse(h *calculator.History) SummaryResponse {
	s, ok := h.Summary()
	if !ok {
		return SummaryResponse{}
	}
	return SummaryResponse{
		Min:     numberPtr(s.Min),
		Max:     numberPtr(s.Max),
		Average: s.AverageText(),
		Total:   numberPtr(s.Total),
		Count:   s.Count,
	}
}

func newNumbers(values []float64) []Number {
	out := make([]Number, len(values))
	for i, v := range values {
		out[i] = Number(v)
	}
	return out
}
