// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package script

import (
	"errors"

	"github.com/dop251/goja"
)

// errTainted reports a context whose built-in objects were modified. Such
// a context cannot be made clean again and is not recycled.
var errTainted = errors.New("script: built-in objects modified")

// propKey names an own property by string or by symbol.
type propKey struct {
	name string
	sym  *goja.Symbol
}

func (k propKey) value(vm *goja.Runtime) goja.Value {
	if k.sym != nil {
		return k.sym
	}
	return vm.ToValue(k.name)
}

func (k propKey) delete(obj *goja.Object) error {
	if k.sym != nil {
		return obj.DeleteSymbol(k.sym)
	}
	return obj.Delete(k.name)
}

func (k propKey) define(obj *goja.Object, p prop) error {
	c, e := flag(p.configurable), flag(p.enumerable)
	if p.accessor {
		if k.sym != nil {
			return obj.DefineAccessorPropertySymbol(k.sym, p.get, p.set, c, e)
		}
		return obj.DefineAccessorProperty(k.name, p.get, p.set, c, e)
	}
	w := flag(p.writable)
	if k.sym != nil {
		return obj.DefineDataPropertySymbol(k.sym, p.value, w, c, e)
	}
	return obj.DefineDataProperty(k.name, p.value, w, c, e)
}

func ownKeys(obj *goja.Object) []propKey {
	names := obj.GetOwnPropertyNames()
	syms := obj.Symbols()
	keys := make([]propKey, 0, len(names)+len(syms))
	for _, n := range names {
		keys = append(keys, propKey{name: n})
	}
	for _, sym := range syms {
		keys = append(keys, propKey{sym: sym})
	}
	return keys
}

// prop is an own property descriptor.
type prop struct {
	value    goja.Value
	get, set goja.Value
	accessor bool

	writable, enumerable, configurable bool
}

func (p prop) same(q prop) bool {
	return p.accessor == q.accessor &&
		p.writable == q.writable &&
		p.enumerable == q.enumerable &&
		p.configurable == q.configurable &&
		sameValue(p.value, q.value) &&
		sameValue(p.get, q.get) &&
		sameValue(p.set, q.set)
}

// shape is the observable layout of an object: its prototype, its
// extensibility and its own property descriptors.
type shape struct {
	proto      *goja.Object
	extensible bool
	props      map[propKey]prop
}

func (sh shape) same(o shape) bool {
	if sh.proto != o.proto || sh.extensible != o.extensible || len(sh.props) != len(o.props) {
		return false
	}
	for k, p := range sh.props {
		q, ok := o.props[k]
		if !ok || !p.same(q) {
			return false
		}
	}
	return true
}

// inspector reads object shapes through the built-in reflection functions
// captured before any process code ran. Descriptors are read without
// invoking accessors.
type inspector struct {
	vm         *goja.Runtime
	describe   goja.Callable
	extensible goja.Callable
}

func newInspector(vm *goja.Runtime) (*inspector, error) {
	object := vm.GlobalObject().Get("Object").ToObject(vm)
	describe, ok := goja.AssertFunction(object.Get("getOwnPropertyDescriptor"))
	if !ok {
		return nil, errors.New("script: Object.getOwnPropertyDescriptor is not a function")
	}
	extensible, ok := goja.AssertFunction(object.Get("isExtensible"))
	if !ok {
		return nil, errors.New("script: Object.isExtensible is not a function")
	}
	return &inspector{vm: vm, describe: describe, extensible: extensible}, nil
}

func (in *inspector) prop(obj *goja.Object, k propKey) (p prop, err error) {
	d, err := in.describe(goja.Undefined(), obj, k.value(in.vm))
	if err != nil {
		return p, err
	}
	desc, ok := d.(*goja.Object)
	if !ok {
		return p, nil
	}
	for _, name := range desc.GetOwnPropertyNames() {
		v := desc.Get(name)
		switch name {
		case "value":
			p.value = v
		case "get":
			p.get, p.accessor = v, true
		case "set":
			p.set, p.accessor = v, true
		case "writable":
			p.writable = v.ToBoolean()
		case "enumerable":
			p.enumerable = v.ToBoolean()
		case "configurable":
			p.configurable = v.ToBoolean()
		}
	}
	return p, nil
}

func (in *inspector) shape(obj *goja.Object) (shape, error) {
	ext, err := in.extensible(goja.Undefined(), obj)
	if err != nil {
		return shape{}, err
	}
	sh := shape{
		proto:      obj.Prototype(),
		extensible: ext.ToBoolean(),
		props:      make(map[propKey]prop),
	}
	for _, k := range ownKeys(obj) {
		p, err := in.prop(obj, k)
		if err != nil {
			return shape{}, err
		}
		sh.props[k] = p
	}
	return sh, nil
}

// builtins records the shape of every object reachable from the global
// object, skipping the global itself and skip.
func (in *inspector) builtins(global shape, skip ...*goja.Object) (map[*goja.Object]shape, error) {
	seen := make(map[*goja.Object]shape)
	excluded := func(obj *goja.Object) bool {
		if obj == nil || obj == in.vm.GlobalObject() {
			return true
		}
		for _, s := range skip {
			if obj == s {
				return true
			}
		}
		_, ok := seen[obj]
		return ok
	}
	queue := []*goja.Object{global.proto}
	for _, p := range global.props {
		queue = appendObjects(queue, p)
	}
	for len(queue) > 0 {
		obj := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		if excluded(obj) {
			continue
		}
		sh, err := in.shape(obj)
		if err != nil {
			return nil, err
		}
		seen[obj] = sh
		queue = append(queue, sh.proto)
		for _, p := range sh.props {
			queue = appendObjects(queue, p)
		}
	}
	return seen, nil
}

func appendObjects(queue []*goja.Object, p prop) []*goja.Object {
	for _, v := range [...]goja.Value{p.value, p.get, p.set} {
		if obj, ok := v.(*goja.Object); ok {
			queue = append(queue, obj)
		}
	}
	return queue
}

func sameValue(a, b goja.Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.SameAs(b)
}

func flag(b bool) goja.Flag {
	if b {
		return goja.FLAG_TRUE
	}
	return goja.FLAG_FALSE
}
