// Package payload parses raw telemetry submissions and shapes them into
// flat, normalized records ready for counting.
//
// A raw payload is an arbitrarily nested JSON document. It is modelled here
// as an explicit tree value with path-based accessors instead of bare maps,
// so that shaping code states exactly which fields it reads and what types
// it expects.
package payload

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Kind identifies the JSON type held by a Value.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

// Value is one node of a parsed payload tree.
type Value struct {
	kind Kind
	obj  map[string]Value
	arr  []Value
	str  string
	num  float64
	b    bool
}

// Parse decodes a raw JSON document into a Value tree.
func Parse(data []byte) (Value, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return Value{}, fmt.Errorf("payload: parsing JSON: %w", err)
	}
	return fromAny(v), nil
}

func fromAny(v any) Value {
	switch x := v.(type) {
	case nil:
		return Value{kind: Null}
	case bool:
		return Value{kind: Bool, b: x}
	case float64:
		return Value{kind: Number, num: x}
	case string:
		return Value{kind: String, str: x}
	case []any:
		arr := make([]Value, len(x))
		for i, item := range x {
			arr[i] = fromAny(item)
		}
		return Value{kind: Array, arr: arr}
	case map[string]any:
		obj := make(map[string]Value, len(x))
		for k, item := range x {
			obj[k] = fromAny(item)
		}
		return Value{kind: Object, obj: obj}
	default:
		return Value{kind: Null}
	}
}

// StringValue builds a String value.
func StringValue(s string) Value { return Value{kind: String, str: s} }

// NumberValue builds a Number value.
func NumberValue(f float64) Value { return Value{kind: Number, num: f} }

// ObjectValue builds an Object value from its fields.
func ObjectValue(fields map[string]Value) Value { return Value{kind: Object, obj: fields} }

// Kind reports the JSON type of the value.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is JSON null (or absent).
func (v Value) IsNull() bool { return v.kind == Null }

// Get follows a path of object keys down the tree. It reports false if any
// step is missing or not an object.
func (v Value) Get(path ...string) (Value, bool) {
	cur := v
	for _, key := range path {
		if cur.kind != Object {
			return Value{}, false
		}
		next, ok := cur.obj[key]
		if !ok {
			return Value{}, false
		}
		cur = next
	}
	return cur, true
}

// Str returns the string content, reporting false for non-strings.
func (v Value) Str() (string, bool) {
	if v.kind != String {
		return "", false
	}
	return v.str, true
}

// Num returns the numeric content, reporting false for non-numbers.
func (v Value) Num() (float64, bool) {
	if v.kind != Number {
		return 0, false
	}
	return v.num, true
}

// Int returns the value as an integer. Numeric strings are accepted, since
// devices report some counters as quoted numbers.
func (v Value) Int() (int64, bool) {
	switch v.kind {
	case Number:
		return int64(v.num), true
	case String:
		n, err := strconv.ParseInt(v.str, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// Boolean returns the boolean content, reporting false for non-booleans.
func (v Value) Boolean() (bool, bool) {
	if v.kind != Bool {
		return false, false
	}
	return v.b, true
}

// Keys returns the object's field names in sorted order, or nil for
// non-objects.
func (v Value) Keys() []string {
	if v.kind != Object {
		return nil
	}
	keys := make([]string, 0, len(v.obj))
	for k := range v.obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Field returns the named object field.
func (v Value) Field(key string) (Value, bool) {
	return v.Get(key)
}

// Len returns the number of object fields or array elements.
func (v Value) Len() int {
	switch v.kind {
	case Object:
		return len(v.obj)
	case Array:
		return len(v.arr)
	}
	return 0
}

// Index returns the array element at i.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != Array || i < 0 || i >= len(v.arr) {
		return Value{}, false
	}
	return v.arr[i], true
}

// Text renders a scalar value as a string: strings as-is, numbers without a
// trailing ".0", booleans as true/false, null and containers as empty.
func (v Value) Text() string {
	switch v.kind {
	case String:
		return v.str
	case Number:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case Bool:
		return strconv.FormatBool(v.b)
	}
	return ""
}
