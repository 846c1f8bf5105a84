package contracts

import (
	"encoding/json"
	"math"
	"strconv"
)

// Value is an optional float64.
// ⭐ SSOT: 정의되지 않은 수익률/평균은 0이 아니라 None으로 전파
//
// Arithmetic on an undefined operand yields undefined. Aggregations skip
// undefined entries. NaN and ±Inf are never stored: Some() turns them into None.
type Value struct {
	v  float64
	ok bool
}

// Some wraps x. NaN/Inf become None.
func Some(x float64) Value {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return Value{}
	}
	return Value{v: x, ok: true}
}

// None returns the undefined value
func None() Value {
	return Value{}
}

// Defined reports whether the value is present
func (v Value) Defined() bool {
	return v.ok
}

// Get returns the float and whether it is defined
func (v Value) Get() (float64, bool) {
	return v.v, v.ok
}

// OrElse returns the float, or def when undefined
func (v Value) OrElse(def float64) float64 {
	if !v.ok {
		return def
	}
	return v.v
}

// Add returns v + o
func (v Value) Add(o Value) Value {
	if !v.ok || !o.ok {
		return None()
	}
	return Some(v.v + o.v)
}

// Sub returns v - o
func (v Value) Sub(o Value) Value {
	if !v.ok || !o.ok {
		return None()
	}
	return Some(v.v - o.v)
}

// Mul returns v * o
func (v Value) Mul(o Value) Value {
	if !v.ok || !o.ok {
		return None()
	}
	return Some(v.v * o.v)
}

// Div returns v / o. Division by zero is undefined.
func (v Value) Div(o Value) Value {
	if !v.ok || !o.ok || o.v == 0 {
		return None()
	}
	return Some(v.v / o.v)
}

// Equal compares two values; two undefined values are equal
func (v Value) Equal(o Value) bool {
	if v.ok != o.ok {
		return false
	}
	return !v.ok || v.v == o.v
}

// String renders the value, "NaN" when undefined
func (v Value) String() string {
	if !v.ok {
		return "NaN"
	}
	return strconv.FormatFloat(v.v, 'f', -1, 64)
}

// MarshalJSON encodes undefined as null
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.ok {
		return []byte("null"), nil
	}
	return json.Marshal(v.v)
}

// UnmarshalJSON decodes null as undefined
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = None()
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Some(f)
	return nil
}

// Ptr converts to *float64 (nil when undefined), for nullable DB columns
func (v Value) Ptr() *float64 {
	if !v.ok {
		return nil
	}
	f := v.v
	return &f
}

// FromPtr converts a nullable column back to a Value
func FromPtr(p *float64) Value {
	if p == nil {
		return None()
	}
	return Some(*p)
}

// PctChange returns to/from - 1. Undefined when from is not positive.
func PctChange(from, to float64) Value {
	if from <= 0 {
		return None()
	}
	return Some(to/from - 1)
}

// Mean averages the defined entries; None when nothing is defined
func Mean(values []Value) Value {
	sum := 0.0
	n := 0
	for _, v := range values {
		if x, ok := v.Get(); ok {
			sum += x
			n++
		}
	}
	if n == 0 {
		return None()
	}
	return Some(sum / float64(n))
}

// Floats collects the defined entries
func Floats(values []Value) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if x, ok := v.Get(); ok {
			out = append(out, x)
		}
	}
	return out
}
