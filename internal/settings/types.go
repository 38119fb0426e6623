package settings

// Kind is the declared type of a setting value.
type Kind string

// Setting kinds.
const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
)

// Definition describes one configurable parameter in a machine's schema.
//
// A Definition is a plain declarative record: all validation logic lives in
// Verify, so schemas stay testable independent of any machine
// implementation. Unit, MinValue, and MaxValue are only meaningful when
// Kind is KindNumber.
type Definition struct {
	// Namespace is an optional grouping label with no effect on validation.
	Namespace string

	// Identifier is the unique key of this setting within its schema.
	Identifier string

	// Description explains the setting for operators.
	Description string

	// Kind is the declared value type.
	Kind Kind

	// Nullable allows the setting to be applied with no value.
	Nullable bool

	// Default is used as the effective value when the caller provides none.
	// An absent Default means the setting has no default.
	Default Value

	// Unit is the unit of measure values are validated in. Empty means the
	// setting takes a plain number and no unit may be supplied for it.
	Unit Unit

	// MinValue and MaxValue are inclusive bounds, each optional.
	MinValue *float64
	MaxValue *float64
}

// Schema is an ordered, identifier-unique list of setting definitions
// belonging to one machine. Schemas are built at machine construction time
// and never change afterwards.
type Schema []Definition

// Proposed is one entry in a caller-submitted batch: a value (possibly
// absent) proposed for the setting named by Identifier, optionally
// qualified with the unit of measure the value is expressed in.
type Proposed struct {
	Identifier string
	Value      Value
	Unit       Unit
}

// Error reports one validation failure for one setting identifier.
// The message strings are a fixed catalog; clients match on them.
type Error struct {
	Identifier string `json:"identifier"`
	Message    string `json:"message"`
}

// Bound returns a pointer to v, for use in Definition literals.
func Bound(v float64) *float64 {
	return &v
}
