package settings

import "errors"

// Domain errors for the settings package.
//
// These are Go errors for the collaborating layers (request parsing,
// machine construction). Validation failures are reported as Error values
// from Verify, never as Go errors.
var (
	// ErrUnknownUnit is returned by ParseUnit for unrecognised unit strings.
	ErrUnknownUnit = errors.New("settings: unknown unit of measure")
)
