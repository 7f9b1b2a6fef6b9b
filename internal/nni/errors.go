package nni

import "errors"

var (
	// ErrParameterNotFound is returned when a base directory is configured
	// but parameter.cfg cannot be opened or read.
	ErrParameterNotFound = errors.New("parameter file not found")

	// ErrParameterParse is returned when parameter.cfg is not a valid
	// parameter config.
	ErrParameterParse = errors.New("invalid parameter file")
)
