package calculator

import "errors"

// Validation failures. They never produce a Record.
var (
	ErrInputMissing    = errors.New("operand missing")
	ErrInputNotNumeric = errors.New("operand not numeric")
)

// ValidationError carries the user notice for a rejected submission.
type ValidationError struct {
	Err    error
	Notice string
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func missingInput() error {
	return &ValidationError{Err: ErrInputMissing, Notice: "Please enter both numbers"}
}

func notNumeric() error {
	return &ValidationError{Err: ErrInputNotNumeric, Notice: "Please enter valid numbers"}
}

// Notice returns the user-facing text for err, or err.Error() when err is
// not a validation failure.
func Notice(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Notice
	}
	return err.Error()
}
