// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"fmt"
	"strings"
)

// Well-known shared singleton names.
const (
	// SharedGlobals names the global namespace of a context.
	SharedGlobals = "_G"
)

// Marshal copies values out of src and into dst. The two contexts share no
// memory: scalars are copied by value, and the only reference values that
// may cross are shared singletons, which resolve to dst's own object.
//
// Marshal is all-or-nothing: on error no value is returned.
func Marshal(src, dst State, values []Value) ([]Value, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make([]Value, len(values))
	for i, v := range values {
		mv, err := export(src, v)
		if err != nil {
			return nil, fmt.Errorf("%w: value #%d of type '%s'", ErrUnsupportedValue, i+1, v.Kind())
		}
		if out[i], err = resolve(dst, mv); err != nil {
			return nil, fmt.Errorf("value #%d: %w", i+1, err)
		}
	}
	return out, nil
}

// export produces the context-independent form of v.
func export(src State, v Value) (Value, error) {
	switch v.kind {
	case KindNil, KindBool, KindInt, KindFloat:
		return v, nil
	case KindString:
		return String(strings.Clone(v.str)), nil
	case kindShared:
		return v, nil
	}
	if src != nil {
		if name, ok := src.SharedName(v); ok {
			return sharedRef(name), nil
		}
	}
	return Nil(), ErrUnsupportedValue
}

// resolve turns a context-independent value into a value of dst.
func resolve(dst State, v Value) (Value, error) {
	if v.kind != kindShared {
		return v, nil
	}
	if dst != nil {
		if obj, ok := dst.Shared(v.str); ok {
			return obj, nil
		}
	}
	return Nil(), fmt.Errorf("%w: shared reference %q is unknown in the destination context", ErrUnsupportedValue, v.str)
}

// Blob is a closure serialized for transport into a fresh context.
// It holds no reference into the context it came from.
type Blob struct {
	Name     string
	Body     any
	Upvalues []Upvalue
}

// SerializeClosure copies every upvalue of code out of src.
// An upvalue that cannot cross contexts aborts the whole operation and the
// error names it.
func SerializeClosure(src State, code Code) (*Blob, error) {
	b := &Blob{Name: code.Name, Body: code.Body}
	if len(code.Upvalues) > 0 {
		b.Upvalues = make([]Upvalue, len(code.Upvalues))
	}
	for i, uv := range code.Upvalues {
		mv, err := export(src, uv.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: upvalue '%s' of type '%s'", ErrUnsupportedValue, uv.Name, uv.Value.Kind())
		}
		b.Upvalues[i] = Upvalue{Name: uv.Name, Value: mv}
	}
	return b, nil
}

// DeserializeClosure rebuilds the Code of b against dst.
func DeserializeClosure(dst State, b *Blob) (Code, error) {
	code := Code{Name: b.Name, Body: b.Body}
	if len(b.Upvalues) > 0 {
		code.Upvalues = make([]Upvalue, len(b.Upvalues))
	}
	for i, uv := range b.Upvalues {
		v, err := resolve(dst, uv.Value)
		if err != nil {
			return Code{}, fmt.Errorf("upvalue '%s': %w", uv.Name, err)
		}
		code.Upvalues[i] = Upvalue{Name: uv.Name, Value: v}
	}
	return code, nil
}
