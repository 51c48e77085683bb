package models

import "errors"

// Domain errors
var (
	ErrInvalidOdds        = errors.New("invalid odds")
	ErrDivisionByZero     = errors.New("division by zero")
	ErrModelUnavailable   = errors.New("model unavailable")
	ErrAmbiguousOrdering  = errors.New("ambiguous chronological ordering")
	ErrMissingOutcome     = errors.New("missing true outcome")
	ErrMalformedRecord    = errors.New("malformed record")
	ErrInvalidProbability = errors.New("invalid probability distribution")
	ErrNotFound           = errors.New("record not found")
)
