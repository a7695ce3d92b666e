package config

import "errors"

var (
	// ErrMissingEnv indicates a ${VAR} reference to an unset variable.
	ErrMissingEnv = errors.New("config: missing environment variable")

	// ErrInvalidDocument indicates the file is not a valid configuration document.
	ErrInvalidDocument = errors.New("config: invalid document")

	// ErrNegative indicates a count or duration below zero.
	ErrNegative = errors.New("config: value must not be negative")
)
