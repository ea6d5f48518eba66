package entity

import "errors"

var (
	// ErrSourceUnavailable is returned when a ticker list or snapshot file is
	// missing, empty or unreadable.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrFieldMissing is recorded when a required line item or info field is absent.
	ErrFieldMissing = errors.New("field missing")
	// ErrDivisionByZero is recorded when a ratio denominator is zero.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrEmptyFundamentals is returned when a snapshot has no income or balance periods.
	ErrEmptyFundamentals = errors.New("empty fundamentals")
)
