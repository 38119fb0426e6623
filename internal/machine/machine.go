package machine

import (
	"context"

	"github.com/plantworks/configurizer-core/internal/settings"
)

// Machine is a configurable machine: an immutable settings schema bound to
// a machine-specific commit action.
//
// Implementations must be safe for concurrent Schema calls. ApplySettings
// calls for one instance are serialised by the Registry; implementations
// do not need their own locking.
type Machine interface {
	// Kind returns the machine kind identifier (e.g. "injection_molder").
	Kind() string

	// Schema returns the machine's setting definitions. The returned slice
	// is a fresh copy on every call; callers cannot mutate the schema.
	Schema() settings.Schema

	// ApplySettings validates the batch against the schema and, when the
	// batch is acceptable, commits it. A non-empty validation error list
	// means nothing was committed. The error return reports commit (I/O)
	// failure only, never validation failure.
	ApplySettings(ctx context.Context, batch []settings.Proposed) ([]settings.Error, error)
}

// Spec declares one machine instance to construct at startup: a unique
// name, a kind resolved against the factory map, and kind-specific
// construction parameters (e.g. the persistence file path).
type Spec struct {
	Name   string
	Kind   string
	Params map[string]string
}

// Factory constructs a machine of one kind from its declared parameters.
type Factory func(params map[string]string) (Machine, error)

// Builders returns the factory for every known machine kind.
//
// The returned map is freshly allocated on each call so callers cannot
// mutate the set of known kinds.
func Builders() map[string]Factory {
	return map[string]Factory{
		KindInjectionMolder: NewInjectionMolder,
	}
}
