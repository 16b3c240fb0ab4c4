package parse

import "github.com/cockroachdb/errors"

var (
	// ErrUnsupportedFile indicates a file extension with no JSX grammar.
	ErrUnsupportedFile = errors.New("unsupported source file")

	// ErrFileTooLarge indicates a source over the configured size limit.
	ErrFileTooLarge = errors.New("source file too large")

	// ErrInvalidContent indicates a source that is not valid UTF-8.
	ErrInvalidContent = errors.New("source is not valid utf-8")

	// ErrParse indicates the grammar could not produce a tree at all.
	ErrParse = errors.New("parse error")
)
