package nni

import (
	"fmt"
	"math"
	"strconv"
)

// Kind identifies which scalar a Value holds.
type Kind int

const (
	KindInvalid Kind = iota
	KindInt
	KindFloat
	KindBool
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("invalid(%d)", int(k))
	}
}

// Value is a scalar hyperparameter value. The zero Value is invalid.
type Value struct {
	kind Kind
	i    int64
	f    float64
	b    bool
	s    string
}

func IntValue(i int64) Value { return Value{kind: KindInt, i: i} }

func FloatValue(f float64) Value { return Value{kind: KindFloat, f: f} }

func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

func StringValue(s string) Value { return Value{kind: KindString, s: s} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsValid() bool { return v.kind != KindInvalid }

// Int returns the integer held by v. Floats are not converted.
func (v Value) Int() (int64, bool) { return v.i, v.kind == KindInt }

// Float returns v as a float64. Integers are widened.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	}
	return 0, false
}

func (v Value) Bool() (bool, bool) { return v.b, v.kind == KindBool }

// String renders v in canonical form. This is the form written to the wire
// and handed to training pipelines.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return FormatFloat(v.f)
	case KindBool:
		return FormatBool(v.b)
	case KindString:
		return v.s
	default:
		return ""
	}
}

// FormatFloat is the canonical decimal form of f: the shortest string that
// parses back to f, in plain notation for 1e-5 <= |f| < 1e15 (and zero) and
// exponent notation otherwise. Non-finite values map to NaN, Infinity and
// -Infinity.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	if a := math.Abs(f); a >= 1e-5 && a < 1e15 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'e', -1, 64)
}

// FormatBool renders b in lowercase, matching JSON literals.
func FormatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
