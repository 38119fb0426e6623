package settings

import "fmt"

// Fixed validation message catalog. These strings are the contract surface
// between the engine and its clients; they must not be reworded.
const (
	msgDuplicateIdentifier = "Duplicate setting identifier provided"
	msgUnknownIdentifier   = "Unknown setting identifier"
	msgMissingValue        = "Missing value (no default and not nullable)"
	msgUnitNonNumeric      = "Unit of measure is only allowed for numeric settings"
	msgUnitNotSupported    = "Unit of measure is not supported for this setting"
	msgUnitNotConvertible  = "Unit of measure is not convertible to required unit"
	msgMustBeString        = "Value must be a string"
	msgMustBeBoolean       = "Value must be a boolean"
	msgMustBeNumber        = "Value must be a number"
)

// Verify validates a batch of proposed values against a schema.
//
// It returns the full list of validation errors; an empty list means the
// batch is acceptable. Verify never stops at the first error: failures
// accumulate across all definitions and batch entries, though a blocking
// error for one identifier (missing value, wrong type, bad unit) skips the
// remaining checks for that identifier only.
//
// Checks, in order:
//  1. Duplicate batch identifiers (one error per duplicated identifier)
//  2. Batch identifiers not present in the schema
//  3. Per definition: required/nullable/default resolution, unit usage,
//     value type, unit conversion, and inclusive range bounds
//
// Verify is pure and reads only the immutable schema; it is safe to call
// concurrently from multiple goroutines.
func Verify(schema Schema, batch []Proposed) []Error {
	errs := []Error{}

	// Duplicate detection across the whole batch. An identifier appearing
	// three times still yields exactly one duplicate error.
	seen := make(map[string]struct{}, len(batch))
	reported := make(map[string]struct{})
	for _, p := range batch {
		if _, dup := seen[p.Identifier]; dup {
			if _, done := reported[p.Identifier]; !done {
				errs = append(errs, Error{Identifier: p.Identifier, Message: msgDuplicateIdentifier})
				reported[p.Identifier] = struct{}{}
			}
			continue
		}
		seen[p.Identifier] = struct{}{}
	}

	definitions := make(map[string]*Definition, len(schema))
	for i := range schema {
		definitions[schema[i].Identifier] = &schema[i]
	}

	// Map each known identifier to its first batch occurrence. Entries
	// naming identifiers outside the schema are rejected here and never
	// resolved against a definition.
	provided := make(map[string]*Proposed, len(batch))
	for i := range batch {
		p := &batch[i]
		if _, known := definitions[p.Identifier]; !known {
			errs = append(errs, Error{Identifier: p.Identifier, Message: msgUnknownIdentifier})
			continue
		}
		if _, have := provided[p.Identifier]; !have {
			provided[p.Identifier] = p
		}
	}

	// Walk the schema in declaration order, including definitions the
	// batch never names: a non-nullable setting without a default must be
	// supplied even if the caller omitted it entirely.
	for i := range schema {
		def := &schema[i]
		errs = append(errs, verifyDefinition(def, provided[def.Identifier])...)
	}

	return errs
}

// verifyDefinition runs the per-definition checks for one schema entry.
// p is the first batch occurrence for the identifier, or nil when the
// batch never names it.
func verifyDefinition(def *Definition, p *Proposed) []Error {
	var errs []Error
	fail := func(msg string) {
		errs = append(errs, Error{Identifier: def.Identifier, Message: msg})
	}

	hasProvided := p != nil && !p.Value.IsAbsent()
	hasDefault := !def.Default.IsAbsent()

	if !def.Nullable && !hasProvided && !hasDefault {
		fail(msgMissingValue)
		return errs
	}

	// Effective value: the provided value wins over the default.
	effective := def.Default
	if hasProvided {
		effective = p.Value
	}

	// A unit on a non-numeric setting is an error even when the value
	// itself is absent (nullable setting supplied as null with a unit).
	unitOnNonNumeric := def.Kind != KindNumber && p != nil && p.Unit != ""

	if effective.IsAbsent() {
		// Only reachable when nullable with neither value nor default.
		if unitOnNonNumeric {
			fail(msgUnitNonNumeric)
		}
		return errs
	}

	if unitOnNonNumeric {
		fail(msgUnitNonNumeric)
	}

	switch def.Kind {
	case KindString:
		if _, ok := effective.String(); !ok {
			fail(msgMustBeString)
		}
	case KindBoolean:
		if _, ok := effective.Bool(); !ok {
			fail(msgMustBeBoolean)
		}
	case KindNumber:
		value, ok := effective.Number()
		if !ok {
			fail(msgMustBeNumber)
			return errs
		}

		// The unit only travels with an explicitly provided value; a
		// default value is always expressed in the definition's unit.
		var providedUnit Unit
		if hasProvided {
			providedUnit = p.Unit
		}

		if providedUnit != "" && def.Unit == "" {
			fail(msgUnitNotSupported)
			return errs
		}

		if providedUnit != "" && providedUnit != def.Unit {
			converted, ok := Convert(value, providedUnit, def.Unit)
			if !ok {
				fail(msgUnitNotConvertible)
				return errs
			}
			value = converted
		}

		if def.MinValue != nil && value < *def.MinValue {
			fail(fmt.Sprintf("Value must be >= %v", *def.MinValue))
		}
		if def.MaxValue != nil && value > *def.MaxValue {
			fail(fmt.Sprintf("Value must be <= %v", *def.MaxValue))
		}
	}

	return errs
}
