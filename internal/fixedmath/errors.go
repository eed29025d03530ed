package fixedmath

import (
	"errors"
	"fmt"
)

var (
	// ErrArithmeticOverflow is returned when a product, sum or narrowing conversion
	// does not fit the target width.
	ErrArithmeticOverflow = errors.New("arithmetic overflow")

	// ErrArithmeticUnderflow is returned when an unsigned subtraction would go negative.
	ErrArithmeticUnderflow = errors.New("arithmetic underflow")

	// ErrDivisionByZero wraps ErrArithmeticOverflow.
	ErrDivisionByZero = fmt.Errorf("%w: division by zero", ErrArithmeticOverflow)
)
