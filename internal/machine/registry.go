package machine

import (
	"context"
	"fmt"
	"sync"

	"github.com/plantworks/configurizer-core/internal/settings"
)

// Logger defines the logging interface used by the Registry.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Info describes one registered machine for listing purposes.
type Info struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// Registry holds the named machine instances constructed at startup.
//
// The name-to-machine mapping is built once by NewRegistry and read-only
// afterwards; lookups need no locking. Apply additionally serialises
// settings application per machine so concurrent requests for the same
// machine cannot interleave commits.
type Registry struct {
	machines map[string]Machine
	order    []string // declaration order, for stable listing
	locks    map[string]*sync.Mutex
	logger   Logger
}

// NewRegistry constructs one machine per spec using the given factory map.
//
// Specs are processed in declaration order. A spec naming an unknown kind,
// a duplicate name, or an empty name/kind fails construction; machines are
// all-or-nothing at startup.
func NewRegistry(specs []Spec, builders map[string]Factory) (*Registry, error) {
	r := &Registry{
		machines: make(map[string]Machine, len(specs)),
		order:    make([]string, 0, len(specs)),
		locks:    make(map[string]*sync.Mutex, len(specs)),
		logger:   noopLogger{},
	}

	for _, spec := range specs {
		if spec.Name == "" || spec.Kind == "" {
			return nil, fmt.Errorf("%w: name and kind are required", ErrInvalidSpec)
		}
		if _, exists := r.machines[spec.Name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, spec.Name)
		}

		factory, ok := builders[spec.Kind]
		if !ok {
			return nil, fmt.Errorf("%w: %q for machine %q", ErrUnknownKind, spec.Kind, spec.Name)
		}

		m, err := factory(spec.Params)
		if err != nil {
			return nil, fmt.Errorf("constructing machine %q: %w", spec.Name, err)
		}

		r.machines[spec.Name] = m
		r.order = append(r.order, spec.Name)
		r.locks[spec.Name] = &sync.Mutex{}
	}

	return r, nil
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// Get returns the machine registered under name.
// Returns ErrNotFound if no machine has that name.
func (r *Registry) Get(name string) (Machine, error) {
	m, ok := r.machines[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return m, nil
}

// List returns the registered machines in declaration order.
func (r *Registry) List() []Info {
	infos := make([]Info, 0, len(r.order))
	for _, name := range r.order {
		infos = append(infos, Info{Name: name, Kind: r.machines[name].Kind()})
	}
	return infos
}

// Count returns the number of registered machines.
func (r *Registry) Count() int {
	return len(r.machines)
}

// Apply validates and applies a settings batch to the named machine.
//
// At most one apply is in flight per machine at a time: concurrent calls
// for the same name queue on a per-machine lock so commits to the same
// persistence target never interleave. Calls for different machines
// proceed independently.
func (r *Registry) Apply(ctx context.Context, name string, batch []settings.Proposed) ([]settings.Error, error) {
	m, err := r.Get(name)
	if err != nil {
		return nil, err
	}

	lock := r.locks[name]
	lock.Lock()
	defer lock.Unlock()

	errs, err := m.ApplySettings(ctx, batch)
	if err != nil {
		r.logger.Error("settings commit failed", "machine", name, "error", err)
		return nil, err
	}
	if len(errs) > 0 {
		r.logger.Debug("settings batch rejected", "machine", name, "errors", len(errs))
		return errs, nil
	}

	r.logger.Info("settings applied", "machine", name, "count", len(batch))
	return nil, nil
}
