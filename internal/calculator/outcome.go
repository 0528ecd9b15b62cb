package calculator

// ErrorKind classifies a calculation that was recorded without a numeric result.
type ErrorKind int

const (
	NoError ErrorKind = iota
	DivisionByZero
	ModulusByZero
	InvalidOperator
)

// Message is the text shown in place of a result.
func (k ErrorKind) Message() string {
	switch k {
	case DivisionByZero:
		return "Error: Division by zero"
	case ModulusByZero:
		return "Error: Modulus by zero"
	case InvalidOperator:
		return "Error: Invalid operator"
	default:
		return ""
	}
}

func (k ErrorKind) String() string {
	switch k {
	case DivisionByZero:
		return "division_by_zero"
	case ModulusByZero:
		return "modulus_by_zero"
	case InvalidOperator:
		return "invalid_operator"
	default:
		return "none"
	}
}

// Outcome is either a number or an ErrorKind, never both.
type Outcome struct {
	value float64
	kind  ErrorKind
}

// Ok wraps a numeric result.
func Ok(v float64) Outcome {
	return Outcome{value: v}
}

// Failed wraps an error outcome.
func Failed(kind ErrorKind) Outcome {
	return Outcome{kind: kind}
}

// Value returns the numeric result and true, or 0 and false for errors.
func (o Outcome) Value() (float64, bool) {
	if o.kind != NoError {
		return 0, false
	}
	return o.value, true
}

// Err returns the error kind, NoError for numeric outcomes.
func (o Outcome) Err() ErrorKind {
	return o.kind
}

// IsError reports whether the outcome carries an error.
func (o Outcome) IsError() bool {
	return o.kind != NoError
}

// String renders the outcome the way the history shows it.
func (o Outcome) String() string {
	if o.kind != NoError {
		return o.kind.Message()
	}
	return FormatNumber(o.value)
}
