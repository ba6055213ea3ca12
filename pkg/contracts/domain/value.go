package domain

import (
	"encoding/json"
	"math"
	"strconv"
)

// ValueKind distinguishes a defined reading from the two kinds of missing value
// that show up in fermentation tables.
type ValueKind uint8

const (
	// KindBlank is an empty cell.
	KindBlank ValueKind = iota
	// KindDefined is a finite or infinite numeric value.
	KindDefined
	// KindNaN is an undefined numeric result (empty window, failed join).
	KindNaN
)

// Value is an optional number. The zero value is Blank.
type Value struct {
	v    float64
	kind ValueKind
}

// Num wraps a float. A NaN float becomes a NaN value.
func Num(f float64) Value {
	if math.IsNaN(f) {
		return Value{kind: KindNaN}
	}
	return Value{v: f, kind: KindDefined}
}

// NaN returns an undefined numeric value.
func NaN() Value { return Value{kind: KindNaN} }

// Blank returns an empty value.
func Blank() Value { return Value{kind: KindBlank} }

// FromPtr maps nil to NaN.
func FromPtr(f *float64) Value {
	if f == nil {
		return NaN()
	}
	return Num(*f)
}

func (v Value) Kind() ValueKind { return v.kind }

func (v Value) IsDefined() bool { return v.kind == KindDefined }

func (v Value) IsBlank() bool { return v.kind == KindBlank }

func (v Value) IsNaN() bool { return v.kind == KindNaN }

// Float returns the number, or math.NaN() when the value is not defined.
func (v Value) Float() float64 {
	if v.kind != KindDefined {
		return math.NaN()
	}
	return v.v
}

// Or returns the number or def when the value is not defined.
func (v Value) Or(def float64) float64 {
	if v.kind != KindDefined {
		return def
	}
	return v.v
}

// Ptr returns nil when the value is not defined.
func (v Value) Ptr() *float64 {
	if v.kind != KindDefined {
		return nil
	}
	f := v.v
	return &f
}

// Equal compares kinds and, for defined values, numbers.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	return v.kind != KindDefined || v.v == o.v
}

// String renders blank as "", NaN as "NaN" and numbers in shortest form.
func (v Value) String() string {
	switch v.kind {
	case KindBlank:
		return ""
	case KindNaN:
		return "NaN"
	}
	return strconv.FormatFloat(v.v, 'f', -1, 64)
}

// MarshalJSON writes null for anything that is not a finite number.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind != KindDefined || math.IsInf(v.v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v.v)
}

// UnmarshalJSON reads null as NaN.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = NaN()
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Num(f)
	return nil
}

// MissingPolicy decides what a missing input turns into for a given field.
type MissingPolicy func(Value) Value

// ZeroIfMissing substitutes 0 for blank and NaN.
func ZeroIfMissing(v Value) Value {
	if v.IsDefined() {
		return v
	}
	return Num(0)
}

// BlankIfMissing substitutes an empty cell.
func BlankIfMissing(v Value) Value {
	if v.IsDefined() {
		return v
	}
	return Blank()
}

// NaNIfMissing substitutes an undefined number.
func NaNIfMissing(v Value) Value {
	if v.IsDefined() {
		return v
	}
	return NaN()
}
