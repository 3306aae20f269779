package service

import "errors"

var (
	// ErrNoRun is returned by the result accessors before the first
	// successful run.
	ErrNoRun = errors.New("no completed run")
	// ErrNoFetcher is returned by New without a catalog fetcher.
	ErrNoFetcher = errors.New("catalog fetcher is required")
)
