// Package document provides a tagged variant for loosely typed analyzer payloads.
//
// A Value is one of Null, Bool, Number, String, Array or Map. Reads never panic:
// navigating into a missing key, an out-of-range index or a value of the wrong kind
// yields Null, so callers can walk deep paths and check the leaf only once.
package document

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	default:
		return "null"
	}
}

// Value is an immutable structured document node. The zero Value is Null.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
	arr  []Value
	m    map[string]Value
}

// Fields is the literal form of a Map value.
type Fields map[string]Value

func Null() Value            { return Value{} }
func Bool(b bool) Value      { return Value{kind: KindBool, b: b} }
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }
func String(s string) Value  { return Value{kind: KindString, s: s} }
func Int(n int) Value        { return Number(float64(n)) }
func Array(items ...Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: KindArray, arr: cp}
}

// Map builds a map value. The input is copied.
func Map(f Fields) Value {
	cp := make(map[string]Value, len(f))
	for k, v := range f {
		cp[k] = v
	}
	return Value{kind: KindMap, m: cp}
}

// Strings builds an array of string values.
func Strings(items ...string) Value {
	out := make([]Value, 0, len(items))
	for _, s := range items {
		out = append(out, String(s))
	}
	return Value{kind: KindArray, arr: out}
}

func (v Value) Kind() Kind     { return v.kind }
func (v Value) IsNull() bool   { return v.kind == KindNull }
func (v Value) IsScalar() bool { return v.kind != KindArray && v.kind != KindMap }

func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

func (v Value) AsNumber() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.n, true
}

func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// Len returns the number of array items or map entries, 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindMap:
		return len(v.m)
	default:
		return 0
	}
}

// Index returns the i-th array item or Null.
func (v Value) Index(i int) Value {
	if v.kind != KindArray || i < 0 || i >= len(v.arr) {
		return Null()
	}
	return v.arr[i]
}

// Items returns a copy of the array items (nil for non-arrays).
func (v Value) Items() []Value {
	if v.kind != KindArray {
		return nil
	}
	out := make([]Value, len(v.arr))
	copy(out, v.arr)
	return out
}

// Field returns the value stored under key or Null.
func (v Value) Field(key string) Value {
	if v.kind != KindMap {
		return Null()
	}
	return v.m[key]
}

// Path walks nested maps by key. Any miss along the way yields Null.
func (v Value) Path(keys ...string) Value {
	cur := v
	for _, k := range keys {
		cur = cur.Field(k)
		if cur.kind == KindNull {
			return cur
		}
	}
	return cur
}

// Keys returns the map keys in sorted order.
func (v Value) Keys() []string {
	if v.kind != KindMap {
		return nil
	}
	keys := make([]string, 0, len(v.m))
	for k := range v.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Scalar renders a scalar inline. Containers render as their kind.
func (v Value) Scalar() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return strconv.FormatFloat(v.n, 'f', -1, 64)
	case KindString:
		return v.s
	default:
		return fmt.Sprintf("<%s>", v.kind)
	}
}

// Equal reports deep equality.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindNumber:
		return v.n == o.n || (math.IsNaN(v.n) && math.IsNaN(o.n))
	case KindString:
		return v.s == o.s
	case KindArray:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.m) != len(o.m) {
			return false
		}
		for k, x := range v.m {
			y, ok := o.m[k]
			if !ok || !x.Equal(y) {
				return false
			}
		}
		return true
	}
	return false
}

// Interface converts the value back into plain Go types (nil, bool, float64, string,
// []any, map[string]any).
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindString:
		return v.s
	case KindArray:
		out := make([]any, len(v.arr))
		for i, it := range v.arr {
			out[i] = it.Interface()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.m))
		for k, it := range v.m {
			out[k] = it.Interface()
		}
		return out
	default:
		return nil
	}
}

// FromAny converts decoded JSON or plain Go values into a Value. Structs and other
// types are converted through their JSON encoding.
func FromAny(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case float64:
		return Number(t), nil
	case float32:
		return Number(float64(t)), nil
	case int:
		return Number(float64(t)), nil
	case int32:
		return Number(float64(t)), nil
	case int64:
		return Number(float64(t)), nil
	case uint:
		return Number(float64(t)), nil
	case uint64:
		return Number(float64(t)), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Null(), fmt.Errorf("document: number %q: %w", t, err)
		}
		return Number(f), nil
	case []Value:
		return Array(t...), nil
	case Fields:
		return Map(t), nil
	case []any:
		out := make([]Value, 0, len(t))
		for i, it := range t {
			v, err := FromAny(it)
			if err != nil {
				return Null(), fmt.Errorf("document: index %d: %w", i, err)
			}
			out = append(out, v)
		}
		return Value{kind: KindArray, arr: out}, nil
	case map[string]any:
		out := make(map[string]Value, len(t))
		for k, it := range t {
			v, err := FromAny(it)
			if err != nil {
				return Null(), fmt.Errorf("document: key %q: %w", k, err)
			}
			out[k] = v
		}
		return Value{kind: KindMap, m: out}, nil
	}

	rv := reflect.ValueOf(x)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return Null(), nil
	}
	b, err := json.Marshal(x)
	if err != nil {
		return Null(), fmt.Errorf("document: encode %T: %w", x, err)
	}
	return Parse(b)
}

// MustFromAny is FromAny for values known to be representable.
func MustFromAny(x any) Value {
	v, err := FromAny(x)
	if err != nil {
		panic(err)
	}
	return v
}

// Parse decodes a JSON document.
func Parse(b []byte) (Value, error) {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return Null(), fmt.Errorf("document: parse: %w", err)
	}
	return FromAny(raw)
}

// MarshalJSON encodes NaN and infinite numbers as null at any depth.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.encodable())
}

// encodable is Interface with non-finite numbers replaced by nil.
func (v Value) encodable() any {
	switch v.kind {
	case KindNumber:
		if math.IsNaN(v.n) || math.IsInf(v.n, 0) {
			return nil
		}
		return v.n
	case KindArray:
		out := make([]any, len(v.arr))
		for i, it := range v.arr {
			out[i] = it.encodable()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.m))
		for k, it := range v.m {
			out[k] = it.encodable()
		}
		return out
	default:
		return v.Interface()
	}
}

func (v *Value) UnmarshalJSON(b []byte) error {
	parsed, err := Parse(b)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
