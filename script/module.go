// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package script

import (
	"fmt"
	"strconv"

	"github.com/dop251/goja"

	"code.hybscloud.com/csp"
)

// newModule builds the csp module object of s.
func (s *state) newModule() (*goja.Object, error) {
	obj := s.vm.NewObject()
	for _, f := range []struct {
		name string
		fn   func(goja.FunctionCall) goja.Value
	}{
		{"send", s.jsSend},
		{"receive", s.jsReceive},
		{"tryReceive", s.jsTryReceive},
		{"newChannel", s.jsNewChannel},
		{"destroyChannel", s.jsDestroyChannel},
		{"spawn", s.jsSpawn},
		{"log", s.jsLog},
	} {
		if err := obj.Set(f.name, f.fn); err != nil {
			return nil, fmt.Errorf("script: module function %s: %w", f.name, err)
		}
	}
	return obj, nil
}

func (s *state) jsSend(call goja.FunctionCall) goja.Value {
	name := s.channelName(call)
	r := s.suspend(csp.SendOp{Channel: name, Values: s.rest(call)})
	return s.status(r.Err)
}

func (s *state) jsReceive(call goja.FunctionCall) goja.Value {
	r := s.suspend(csp.ReceiveOp{Channel: s.channelName(call), Prefill: s.rest(call)})
	return s.values(r)
}

func (s *state) jsTryReceive(call goja.FunctionCall) goja.Value {
	r := s.suspend(csp.ReceiveOp{Channel: s.channelName(call), NonBlocking: true, Prefill: s.rest(call)})
	return s.values(r)
}

func (s *state) jsNewChannel(call goja.FunctionCall) goja.Value {
	r := s.suspend(csp.NewChannelOp{Name: s.channelName(call)})
	return s.status(r.Err)
}

func (s *state) jsDestroyChannel(call goja.FunctionCall) goja.Value {
	r := s.suspend(csp.DestroyChannelOp{Name: s.channelName(call)})
	return s.status(r.Err)
}

// jsSpawn starts a process running a copy of fn. Captured variables are
// not visible to the copy: pass them in the upvalues object, whose
// properties become globals of the new process.
func (s *state) jsSpawn(call goja.FunctionCall) goja.Value {
	fnArg := call.Argument(0)
	if _, ok := goja.AssertFunction(fnArg); !ok {
		panic(s.vm.NewTypeError("csp.spawn: argument 1 must be a function"))
	}
	code := csp.Code{
		Name: "spawn",
		Body: Function(fnArg.String()),
	}
	if up := call.Argument(1); !goja.IsUndefined(up) && !goja.IsNull(up) {
		obj := up.ToObject(s.vm)
		for _, k := range obj.Keys() {
			code.Upvalues = append(code.Upvalues, csp.Upvalue{Name: k, Value: s.fromJS(obj.Get(k))})
		}
	}
	r := s.suspend(csp.SpawnOp{Code: code})
	return s.status(r.Err)
}

func (s *state) jsLog(call goja.FunctionCall) goja.Value {
	b := s.engine.Logger.Info()
	for i, arg := range call.Arguments {
		b = b.Str(strconv.Itoa(i), arg.String())
	}
	b.Log(`script`)
	return goja.Undefined()
}

func (s *state) channelName(call goja.FunctionCall) string {
	v := call.Argument(0)
	if goja.IsUndefined(v) || goja.IsNull(v) {
		panic(s.vm.NewTypeError("csp: channel name must be a string"))
	}
	return v.String()
}

// rest converts the arguments after the channel name.
func (s *state) rest(call goja.FunctionCall) []csp.Value {
	if len(call.Arguments) < 2 {
		return nil
	}
	values := make([]csp.Value, 0, len(call.Arguments)-1)
	for _, arg := range call.Arguments[1:] {
		values = append(values, s.fromJS(arg))
	}
	return values
}

// status is the [ok, message] pair of an op without results.
func (s *state) status(err error) goja.Value {
	if err != nil {
		return s.vm.NewArray(false, err.Error())
	}
	return s.vm.NewArray(true, goja.Null())
}

// values is the [values, message] pair of a receive.
func (s *state) values(r csp.Reply) goja.Value {
	if r.Err != nil {
		return s.vm.NewArray(goja.Null(), r.Err.Error())
	}
	items := make([]any, len(r.Values))
	for i, v := range r.Values {
		items[i] = s.toJS(v)
	}
	return s.vm.NewArray(s.vm.NewArray(items...), goja.Null())
}

// fromJS converts a JavaScript value. Objects and functions become foreign
// references, which only cross contexts as shared singletons.
func (s *state) fromJS(v goja.Value) csp.Value {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return csp.Nil()
	}
	if obj, ok := v.(*goja.Object); ok {
		if _, ok := goja.AssertFunction(obj); ok {
			return csp.Foreign(csp.KindFunction, obj)
		}
		return csp.Foreign(csp.KindTable, obj)
	}
	switch x := v.Export().(type) {
	case bool:
		return csp.Bool(x)
	case int64:
		return csp.Int(x)
	case float64:
		return csp.Float(x)
	case string:
		return csp.String(x)
	default:
		return csp.Foreign(csp.KindUserdata, x)
	}
}

// toJS converts a value that belongs to this context.
func (s *state) toJS(v csp.Value) goja.Value {
	switch v.Kind() {
	case csp.KindNil:
		return goja.Undefined()
	case csp.KindBool, csp.KindInt, csp.KindFloat, csp.KindString:
		return s.vm.ToValue(v.Interface())
	}
	if obj, ok := v.Ref().(*goja.Object); ok {
		return obj
	}
	return goja.Undefined()
}
