package report

import "github.com/cockroachdb/errors"

var (
	// ErrNoTrees indicates there is nothing to report for a file.
	ErrNoTrees = errors.New("no component trees")

	// ErrInvalidMode indicates an unknown report mode name.
	ErrInvalidMode = errors.New("invalid report mode")

	// ErrInvalidEncoding indicates an unknown report encoding name.
	ErrInvalidEncoding = errors.New("invalid report encoding")
)
