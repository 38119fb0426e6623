package machine

import "errors"

// Domain errors for the machine package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, machine.ErrNotFound) {
//	    // handle not found case
//	}
var (
	// ErrNotFound is returned when a machine name is not registered.
	ErrNotFound = errors.New("machine: not found")

	// ErrUnknownKind is returned when a configured machine kind has no factory.
	ErrUnknownKind = errors.New("machine: unknown kind")

	// ErrDuplicateName is returned when two configured machines share a name.
	ErrDuplicateName = errors.New("machine: duplicate name")

	// ErrInvalidSpec is returned when a machine declaration is malformed.
	ErrInvalidSpec = errors.New("machine: invalid spec")

	// ErrCommitFailed is returned when persisting an accepted batch fails.
	ErrCommitFailed = errors.New("machine: commit failed")
)
