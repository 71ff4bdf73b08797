package vitals

import "errors"

var (
	// ErrInvalidArg reports a nil or out-of-range argument: a bad
	// configuration, an empty cube, or a cube too small for the
	// selection window.
	ErrInvalidArg = errors.New("vitals: invalid argument")

	// ErrNotInitialized reports use of a Pipeline that was not built
	// with New.
	ErrNotInitialized = errors.New("vitals: pipeline not initialized")
)
