package engine

import "errors"

// Sentinel errors for the calculator. Every error returned by this package
// wraps one of these, so callers can branch with errors.Is without parsing
// messages. A zero result with a nil error is always a legitimate figure,
// never a disguised failure.
var (
	// ErrInvalidConfiguration marks planning parameters outside their valid
	// domain: service level, lead time, unit cost, policy fields.
	ErrInvalidConfiguration = errors.New("invalid planning configuration")

	// ErrInsufficientData marks inputs too thin to produce a figure when no
	// defined default applies.
	ErrInsufficientData = errors.New("insufficient data")
)
