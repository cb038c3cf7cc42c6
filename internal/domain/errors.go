package domain

import "errors"

var (
	// ErrUnparseable is returned by the book parser when a payload is
	// malformed (missing symbol/timestamp, non-numeric price or size). It is
	// the only hard failure in the core; every other degenerate condition
	// resolves to a sentinel result the caller must interpret.
	ErrUnparseable = errors.New("unparseable payload")

	ErrNotFound = errors.New("not found")
)
