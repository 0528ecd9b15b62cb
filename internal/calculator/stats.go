package calculator

// Summary holds the aggregate statistics over valid results.
type Summary struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Average float64 `json:"average"`
	Total   float64 `json:"total"`
	Count   int     `json:"count"`
}

// Summarize computes min, max, mean, total and count. It returns false for
// an empty input.
func Summarize(values []float64) (Summary, bool) {
	if len(values) == 0 {
		return Summary{}, false
	}

	s := Summary{
		Min:   values[0],
		Max:   values[0],
		Count: len(values),
	}
	for _, v := range values {
		s.Total += v
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	s.Average = s.Total / float64(s.Count)

	return s, true
}

// AverageText is the mean fixed to two fractional digits.
func (s Summary) AverageText() string {
	return FormatFixed(s.Average)
}
