package grid

import "errors"

// Sentinel errors.
var (
	ErrInvalidAxis = errors.New("invalid axis")
	ErrAxisIndex   = errors.New("axis index out of range")
	ErrNoStars     = errors.New("no stars in parameter range")
)
