package relhost

import (
	"fmt"

	"modernc.org/sqlite/vtab"
)

// Value wraps the engine's opaque value token (vtab.Value, itself a
// database/sql/driver.Value) so column setters never touch the raw ABI.
type Value struct {
	raw vtab.Value
}

// NewValue wraps a raw engine value.
func NewValue(raw vtab.Value) Value { return Value{raw: raw} }

// IsNull reports whether the token holds SQL NULL.
func (v Value) IsNull() bool { return v.raw == nil }

// AsInt64 interprets the token as an integer, coercing from int64 only;
// the engine never hands setters anything else for an INTEGER constraint
// value.
func (v Value) AsInt64() (int64, bool) {
	i, ok := v.raw.(int64)
	return i, ok
}

// AsFloat64 interprets the token as a real.
func (v Value) AsFloat64() (float64, bool) {
	switch n := v.raw.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// AsText interprets the token as text.
func (v Value) AsText() (string, bool) {
	switch s := v.raw.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	}
	return "", false
}

// AsBlob interprets the token as a blob.
func (v Value) AsBlob() ([]byte, bool) {
	switch b := v.raw.(type) {
	case []byte:
		return b, true
	case string:
		return []byte(b), true
	}
	return nil, false
}

// String renders the value for diagnostics; it is not used on any hot path.
func (v Value) String() string {
	if v.IsNull() {
		return "NULL"
	}
	return fmt.Sprintf("%v", v.raw)
}
