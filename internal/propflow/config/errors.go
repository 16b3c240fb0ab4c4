package config

import "github.com/cockroachdb/errors"

var (
	// ErrInvalidConfig wraps every validation failure.
	ErrInvalidConfig = errors.New("invalid configuration")

	ErrUnsupportedExtension = errors.New("unsupported source extension")
)
