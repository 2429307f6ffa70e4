package config

import "errors"

var (
	// ErrParsingConfig is returned when environment variables cannot be
	// parsed into the destination struct.
	ErrParsingConfig = errors.New("config: failed to parse environment variables")

	// ErrLoadingEnvFile is returned when an explicitly named .env file
	// cannot be read.
	ErrLoadingEnvFile = errors.New("config: failed to load env file")

	// ErrNilPointer is returned when a nil destination is passed to Load.
	ErrNilPointer = errors.New("config: nil pointer provided")
)
