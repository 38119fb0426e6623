// Package machine binds setting schemas to persistence.
//
// This package provides:
//   - The Machine interface: a settings schema plus an apply operation
//   - Concrete machine kinds (currently the injection molder)
//   - A registry mapping configured machine names to instances
//
// # Architecture
//
// A Machine owns exactly one schema and one commit action. ApplySettings
// delegates validation to the settings package; only a batch that passes
// validation is committed, and a rejected batch causes no write at all.
// The validation engine itself never touches storage.
//
// Machines are constructed once at startup from the declarative machine
// list in the configuration file, via a kind-to-factory map. The registry
// is read-only after construction; it additionally serialises apply calls
// per machine instance so concurrent requests cannot interleave writes to
// the same persistence target.
package machine
