package model

import "errors"

// Sentinel errors for record validation.
var (
	ErrInvalidStar  = errors.New("invalid star")
	ErrInvalidCurve = errors.New("invalid curve")
	ErrUnknownParam = errors.New("unknown stellar parameter")
)
