package catalog

import "errors"

// Sentinel errors.
var (
	ErrFetch     = errors.New("catalog fetch failed")
	ErrStatus    = errors.New("unexpected archive status")
	ErrCacheMiss = errors.New("catalog not cached")
	ErrSchema    = errors.New("catalog schema mismatch")
	ErrNotFound  = errors.New("catalog table not found")
)
