package settings

import (
	"encoding/json"
	"fmt"
)

// ValueKind identifies which primitive a Value carries.
type ValueKind int

// Value kinds. The zero value is Absent so an uninitialised Value
// behaves as "no value provided".
const (
	Absent ValueKind = iota
	StringKind
	NumberKind
	BoolKind
)

// Value is a tagged variant holding exactly one of string, number, or
// boolean — or nothing at all. It is the wire-neutral representation of a
// setting value: callers construct one with StringValue, NumberValue, or
// BoolValue, and the validator inspects it by tag rather than reflection.
//
// Value is a small immutable record; copy it by value.
type Value struct {
	kind ValueKind
	str  string
	num  float64
	b    bool
}

// StringValue returns a Value carrying a string.
func StringValue(s string) Value {
	return Value{kind: StringKind, str: s}
}

// NumberValue returns a Value carrying a number.
func NumberValue(n float64) Value {
	return Value{kind: NumberKind, num: n}
}

// BoolValue returns a Value carrying a boolean.
func BoolValue(b bool) Value {
	return Value{kind: BoolKind, b: b}
}

// Kind returns the tag of the value.
func (v Value) Kind() ValueKind {
	return v.kind
}

// IsAbsent reports whether the value carries nothing.
func (v Value) IsAbsent() bool {
	return v.kind == Absent
}

// String returns the carried string and whether the value is a string.
func (v Value) String() (string, bool) {
	return v.str, v.kind == StringKind
}

// Number returns the carried number and whether the value is a number.
func (v Value) Number() (float64, bool) {
	return v.num, v.kind == NumberKind
}

// Bool returns the carried boolean and whether the value is a boolean.
func (v Value) Bool() (bool, bool) {
	return v.b, v.kind == BoolKind
}

// MarshalJSON encodes the carried primitive, or null when absent.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case StringKind:
		return json.Marshal(v.str)
	case NumberKind:
		return json.Marshal(v.num)
	case BoolKind:
		return json.Marshal(v.b)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes a JSON primitive into the matching variant.
// null decodes to an absent value. Objects and arrays are rejected;
// the request layer reports that as a bad request before the validator
// ever sees the batch.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch val := raw.(type) {
	case nil:
		*v = Value{}
	case string:
		*v = StringValue(val)
	case float64:
		*v = NumberValue(val)
	case bool:
		*v = BoolValue(val)
	default:
		return fmt.Errorf("settings: value must be a string, number, boolean, or null")
	}
	return nil
}
