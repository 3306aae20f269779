package efficiency

import "errors"

var (
	// ErrUndefined reports an evaluation whose probability is NaN, usually
	// because a noise or threshold value is missing for the star.
	ErrUndefined = errors.New("detection efficiency undefined")
	// ErrInvalidOption reports an evaluator built with unusable options.
	ErrInvalidOption = errors.New("invalid evaluator option")
)
