package queue

import "errors"

// ErrClosed is returned when putting into a closed queue.
var ErrClosed = errors.New("queue closed")
