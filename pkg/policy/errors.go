package policy

import "errors"

var (
	// ErrInvalidPolicy is returned for a malformed policy definition.
	ErrInvalidPolicy = errors.New("policy: invalid policy")

	// ErrInvalidCondition is returned for a malformed condition.
	ErrInvalidCondition = errors.New("policy: invalid condition")
)
