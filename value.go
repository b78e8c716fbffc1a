// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"fmt"
	"math"
	"slices"
	"strconv"
)

// Kind is the type tag of a Value.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindTable
	KindFunction
	KindUserdata
	// kindShared only exists between two contexts: a shared singleton
	// reference that has left its source and is not yet resolved.
	kindShared
)

// String returns the type name used in error messages.
func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "boolean"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindTable:
		return "table"
	case KindFunction:
		return "function"
	case KindUserdata:
		return "userdata"
	case kindShared:
		return "shared"
	default:
		return "unknown(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a value living in one execution context.
// Values are comparable; reference kinds compare by identity.
type Value struct {
	kind Kind
	num  uint64
	str  string
	ref  any
}

// Nil returns the nil value. The zero Value is also nil.
func Nil() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value {
	v := Value{kind: KindBool}
	if b {
		v.num = 1
	}
	return v
}

// Int returns an integer value.
func Int(i int64) Value { return Value{kind: KindInt, num: uint64(i)} }

// Float returns a floating point value.
func Float(f float64) Value { return Value{kind: KindFloat, num: math.Float64bits(f)} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// TableValue wraps a context-local table.
func TableValue(t *Table) Value {
	if t == nil {
		return Value{}
	}
	return Value{kind: KindTable, ref: t}
}

// Function is an opaque callable owned by one execution context.
type Function struct {
	Name string
	Impl any
}

// FunctionValue wraps a context-local function.
func FunctionValue(f *Function) Value {
	if f == nil {
		return Value{}
	}
	return Value{kind: KindFunction, ref: f}
}

// Userdata is an opaque host handle owned by one execution context.
type Userdata struct {
	Data any
}

// UserdataValue wraps a context-local handle.
func UserdataValue(u *Userdata) Value {
	if u == nil {
		return Value{}
	}
	return Value{kind: KindUserdata, ref: u}
}

func sharedRef(name string) Value { return Value{kind: kindShared, str: name} }

// Foreign wraps a reference owned by an engine as a value of one of the
// reference kinds. The accessors for that kind report false; use Ref.
func Foreign(kind Kind, ref any) Value {
	switch kind {
	case KindTable, KindFunction, KindUserdata:
	default:
		panic("csp: foreign value of a non-reference kind")
	}
	if ref == nil {
		return Value{}
	}
	return Value{kind: kind, ref: ref}
}

// Ref returns the reference held by a reference-kind value, or nil.
func (v Value) Ref() any { return v.ref }

// ValueOf converts a Go scalar into a Value.
// Accepted: nil, bool, signed and unsigned integers, float32, float64,
// string, *Table, *Function, *Userdata and Value.
func ValueOf(x any) (Value, error) {
	switch v := x.(type) {
	case nil:
		return Nil(), nil
	case Value:
		return v, nil
	case bool:
		return Bool(v), nil
	case int:
		return Int(int64(v)), nil
	case int8:
		return Int(int64(v)), nil
	case int16:
		return Int(int64(v)), nil
	case int32:
		return Int(int64(v)), nil
	case int64:
		return Int(v), nil
	case uint:
		return Int(int64(v)), nil
	case uint8:
		return Int(int64(v)), nil
	case uint16:
		return Int(int64(v)), nil
	case uint32:
		return Int(int64(v)), nil
	case uint64:
		if v > math.MaxInt64 {
			return Float(float64(v)), nil
		}
		return Int(int64(v)), nil
	case float32:
		return Float(float64(v)), nil
	case float64:
		return Float(v), nil
	case string:
		return String(v), nil
	case *Table:
		return TableValue(v), nil
	case *Function:
		return FunctionValue(v), nil
	case *Userdata:
		return UserdataValue(v), nil
	default:
		return Nil(), fmt.Errorf("%w: Go type %T", ErrUnsupportedValue, x)
	}
}

// Values converts Go scalars with ValueOf, stopping at the first failure.
func Values(xs ...any) ([]Value, error) {
	out := make([]Value, len(xs))
	for i, x := range xs {
		v, err := ValueOf(x)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Kind returns the type tag of v.
func (v Value) Kind() Kind { return v.kind }

// IsNil reports whether v is nil.
func (v Value) IsNil() bool { return v.kind == KindNil }

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) {
	return v.num != 0, v.kind == KindBool
}

// Truthy follows the usual scripting rule: only nil and false are false.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNil:
		return false
	case KindBool:
		return v.num != 0
	default:
		return true
	}
}

// AsInt returns the integer held by v.
func (v Value) AsInt() (int64, bool) {
	return int64(v.num), v.kind == KindInt
}

// AsFloat returns the float held by v.
func (v Value) AsFloat() (float64, bool) {
	return math.Float64frombits(v.num), v.kind == KindFloat
}

// AsNumber returns v as a float64 for either numeric kind.
func (v Value) AsNumber() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(int64(v.num)), true
	case KindFloat:
		return math.Float64frombits(v.num), true
	default:
		return 0, false
	}
}

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) {
	return v.str, v.kind == KindString
}

// AsTable returns the table held by v.
func (v Value) AsTable() (*Table, bool) {
	t, ok := v.ref.(*Table)
	return t, ok && v.kind == KindTable
}

// AsFunction returns the function held by v.
func (v Value) AsFunction() (*Function, bool) {
	f, ok := v.ref.(*Function)
	return f, ok && v.kind == KindFunction
}

// AsUserdata returns the handle held by v.
func (v Value) AsUserdata() (*Userdata, bool) {
	u, ok := v.ref.(*Userdata)
	return u, ok && v.kind == KindUserdata
}

// Interface returns v as a plain Go value.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.num != 0
	case KindInt:
		return int64(v.num)
	case KindFloat:
		return math.Float64frombits(v.num)
	case KindString:
		return v.str
	case KindTable, KindFunction, KindUserdata:
		return v.ref
	default:
		return nil
	}
}

// String implements fmt.Stringer.
func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		return strconv.FormatBool(v.num != 0)
	case KindInt:
		return strconv.FormatInt(int64(v.num), 10)
	case KindFloat:
		return strconv.FormatFloat(math.Float64frombits(v.num), 'g', -1, 64)
	case KindString:
		return v.str
	case kindShared:
		return "shared:" + v.str
	default:
		return fmt.Sprintf("%s: %p", v.kind, v.ref)
	}
}

// Table is a string-keyed table owned by a single execution context.
// A Table is not safe for concurrent use; it is only touched by the
// process that owns its context.
type Table struct {
	fields map[string]Value
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{fields: make(map[string]Value)}
}

// Get returns the value stored under key, or nil.
func (t *Table) Get(key string) Value {
	if t == nil {
		return Nil()
	}
	return t.fields[key]
}

// Set stores v under key. Storing nil removes the key.
func (t *Table) Set(key string, v Value) {
	if v.IsNil() {
		delete(t.fields, key)
		return
	}
	if t.fields == nil {
		t.fields = make(map[string]Value)
	}
	t.fields[key] = v
}

// Len returns the number of keys.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.fields)
}

// Keys returns the keys in sorted order.
func (t *Table) Keys() []string {
	if t == nil {
		return nil
	}
	keys := make([]string, 0, len(t.fields))
	for k := range t.fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
