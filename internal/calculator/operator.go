package calculator

import "math"

// Operator is one of the five supported arithmetic operations.
type Operator int

const (
	OpAdd Operator = iota + 1
	OpSubtract
	OpMultiply
	OpDivide
	OpModulus
)

// DefaultToken is the operator preselected in a fresh form.
const DefaultToken = "+"

var operatorTokens = map[string]Operator{
	"+": OpAdd,
	"-": OpSubtract,
	"*": OpMultiply,
	"/": OpDivide,
	"%": OpModulus,
}

// ParseOperator maps a raw token to an Operator. The second return value is
// false for any token outside the closed set.
func ParseOperator(token string) (Operator, bool) {
	op, ok := operatorTokens[token]
	return op, ok
}

// Operators returns every supported operator in display order.
func Operators() []Operator {
	return []Operator{OpAdd, OpSubtract, OpMultiply, OpDivide, OpModulus}
}

// Token returns the symbolic code used in forms and history.
func (o Operator) Token() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSubtract:
		return "-"
	case OpMultiply:
		return "*"
	case OpDivide:
		return "/"
	case OpModulus:
		return "%"
	default:
		return ""
	}
}

// Symbol returns the display symbol.
func (o Operator) Symbol() string {
	switch o {
	case OpMultiply:
		return "×"
	case OpDivide:
		return "÷"
	default:
		return o.Token()
	}
}

func (o Operator) String() string {
	switch o {
	case OpAdd:
		return "add"
	case OpSubtract:
		return "subtract"
	case OpMultiply:
		return "multiply"
	case OpDivide:
		return "divide"
	case OpModulus:
		return "modulus"
	default:
		return "invalid"
	}
}

// Apply evaluates x o y in float64 arithmetic.
// Modulus keeps the sign of the dividend.
func (o Operator) Apply(x, y float64) Outcome {
	switch o {
	case OpAdd:
		return Ok(x + y)
	case OpSubtract:
		return Ok(x - y)
	case OpMultiply:
		return Ok(x * y)
	case OpDivide:
		if y == 0 {
			return Failed(DivisionByZero)
		}
		return Ok(x / y)
	case OpModulus:
		if y == 0 {
			return Failed(ModulusByZero)
		}
		return Ok(math.Mod(x, y))
	default:
		return Failed(InvalidOperator)
	}
}

// DisplaySymbol returns the display symbol for a raw token, falling back to
// the token itself when it is not a known operator.
func DisplaySymbol(token string) string {
	if op, ok := ParseOperator(token); ok {
		return op.Symbol()
	}
	return token
}

// Evaluate dispatches a raw operator token over parsed operands.
func Evaluate(x, y float64, token string) Outcome {
	op, ok := ParseOperator(token)
	if !ok {
		return Failed(InvalidOperator)
	}
	return op.Apply(x, y)
}
