package calculator

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// fixedPrec holds any float64 scaled by 100 without rounding.
const fixedPrec = 2048

// FormatNumber prints v with the shortest round-trip digits, switching to
// exponent notation below 1e-6 and from 1e21 upwards, the way browsers print
// numbers.
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		return "0"
	}

	abs := math.Abs(v)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}

	s := strconv.FormatFloat(v, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "e")
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + sign + digits
}

// FormatFixed prints v with exactly two fractional digits. Ties on the
// exact binary value round away from zero, so 0.125 prints as 0.13 while
// 1.005 (stored just below the tie) prints as 1.00. Non-finite values and
// magnitudes from 1e21 fall back to FormatNumber.
func FormatFixed(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) >= 1e21 {
		return FormatNumber(v)
	}

	scaled := new(big.Float).SetPrec(fixedPrec).SetFloat64(math.Abs(v))
	scaled.Mul(scaled, new(big.Float).SetPrec(fixedPrec).SetInt64(100))

	cents, _ := scaled.Int(nil)
	frac := new(big.Float).SetPrec(fixedPrec).Sub(scaled, new(big.Float).SetPrec(fixedPrec).SetInt(cents))
	if frac.Cmp(big.NewFloat(0.5)) >= 0 {
		cents.Add(cents, big.NewInt(1))
	}

	digits := cents.String()
	for len(digits) < 3 {
		digits = "0" + digits
	}
	out := digits[:len(digits)-2] + "." + digits[len(digits)-2:]
	if v < 0 {
		out = "-" + out
	}
	return out
}
