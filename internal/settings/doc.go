// Package settings implements the machine settings validation engine.
//
// This package provides:
//   - Declarative setting definitions (kind, nullability, default, unit, bounds)
//   - A tagged value type covering string, number, boolean, and absent
//   - Unit-of-measure conversion within closed unit families
//   - Batch validation of proposed values against a schema
//
// # Architecture
//
// The engine is purely declarative: a Schema is an ordered list of
// Definition records with no behaviour, and Verify is a pure function from
// (Schema, batch) to a list of validation errors. An empty error list means
// the batch is acceptable. The engine performs no I/O and holds no state,
// so it is safe to call concurrently against the same or different schemas.
//
// Persistence of accepted batches is the responsibility of the machine
// package; the engine never touches storage.
package settings
