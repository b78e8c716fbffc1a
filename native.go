// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"fmt"

	"code.hybscloud.com/kont"
)

// Program is native process code in the Cont world.
type Program func(env *Env) kont.Eff[struct{}]

// ExprProgram is native process code in the Expr world.
type ExprProgram func(env *Env) kont.Expr[struct{}]

// Env is the view a native program has of its own execution context.
type Env struct {
	s *nativeState
}

// Globals returns the global namespace of the context.
// It crosses channels as the shared singleton SharedGlobals.
func (e *Env) Globals() *Table { return e.s.globals }

// Module returns the named shared module table, or nil.
func (e *Env) Module(name string) *Table { return e.s.modules[name] }

// Upvalue returns the named captured value, or nil.
func (e *Env) Upvalue(name string) Value { return e.s.upvalues[name] }

// NativeEngine runs Go programs written against kont.
//
// Every state starts with a fresh global table and one fresh table per
// name in Modules. Globals and modules are the state's shared singletons.
type NativeEngine struct {
	// Modules names the shared module tables of every state.
	Modules []string
	// Setup, if set, populates a fresh or reset state.
	Setup func(env *Env)
}

// NewState implements Engine.
func (e *NativeEngine) NewState() (State, error) {
	s := &nativeState{engine: e}
	s.bootstrap()
	return s, nil
}

type nativeState struct {
	engine   *NativeEngine
	globals  *Table
	modules  map[string]*Table
	upvalues map[string]Value
	env      Env

	pending func() kont.Expr[struct{}]
	loaded  bool
	started bool
	result  outcome
	susp    *suspension
	closed  bool
}

func (s *nativeState) bootstrap() {
	s.globals = NewTable()
	s.globals.Set(SharedGlobals, TableValue(s.globals))
	s.modules = make(map[string]*Table, len(s.engine.Modules))
	for _, name := range s.engine.Modules {
		t := NewTable()
		s.modules[name] = t
		s.globals.Set(name, TableValue(t))
	}
	s.env = Env{s: s}
	if s.engine.Setup != nil {
		s.engine.Setup(&s.env)
	}
}

// Load implements State.
func (s *nativeState) Load(code Code) error {
	if s.closed {
		return ErrClosed
	}
	var body func() kont.Expr[struct{}]
	switch f := code.Body.(type) {
	case Program:
		if f != nil {
			body = func() kont.Expr[struct{}] { return Reify(f(&s.env)) }
		}
	case func(*Env) kont.Eff[struct{}]:
		if f != nil {
			body = func() kont.Expr[struct{}] { return Reify(f(&s.env)) }
		}
	case ExprProgram:
		if f != nil {
			body = func() kont.Expr[struct{}] { return f(&s.env) }
		}
	case func(*Env) kont.Expr[struct{}]:
		if f != nil {
			body = func() kont.Expr[struct{}] { return f(&s.env) }
		}
	}
	if body == nil {
		return fmt.Errorf("%w: %q: native engine cannot run %T", ErrCompile, code.Name, code.Body)
	}
	s.upvalues = make(map[string]Value, len(code.Upvalues))
	for _, uv := range code.Upvalues {
		s.upvalues[uv.Name] = uv.Value
	}
	s.loaded = true
	s.started = false
	s.pending = body
	return nil
}

// Resume implements State.
func (s *nativeState) Resume(reply Reply) (op Op, err error) {
	if !s.loaded {
		return nil, ErrClosed
	}
	defer func() {
		if r := recover(); r != nil {
			s.susp = nil
			s.loaded = false
			op, err = nil, &PanicError{Value: r}
		}
	}()
	if !s.started {
		s.started = true
		body := s.pending
		s.pending = nil
		s.result, s.susp = Step(body())
	} else {
		if s.susp == nil {
			return nil, nil
		}
		s.result, s.susp = s.susp.Resume(reply)
	}
	s.result, s.susp, op = Advance(s.result, s.susp)
	if op != nil {
		return op, nil
	}
	s.loaded = false
	if e, ok := s.result.GetLeft(); ok {
		return nil, e
	}
	return nil, nil
}

// SharedName implements State.
func (s *nativeState) SharedName(v Value) (string, bool) {
	t, ok := v.AsTable()
	if !ok {
		return "", false
	}
	if t == s.globals {
		return SharedGlobals, true
	}
	for name, m := range s.modules {
		if t == m {
			return name, true
		}
	}
	return "", false
}

// Shared implements State.
func (s *nativeState) Shared(name string) (Value, bool) {
	if name == SharedGlobals {
		return TableValue(s.globals), true
	}
	if m, ok := s.modules[name]; ok {
		return TableValue(m), true
	}
	return Nil(), false
}

// Reset implements State.
func (s *nativeState) Reset() error {
	if s.closed {
		return ErrClosed
	}
	s.discard()
	s.upvalues = nil
	s.bootstrap()
	return nil
}

// Close implements State.
func (s *nativeState) Close() {
	if s.closed {
		return
	}
	s.discard()
	s.closed = true
	s.globals = nil
	s.modules = nil
	s.upvalues = nil
}

func (s *nativeState) discard() {
	if s.susp != nil {
		s.susp.Discard()
		s.susp = nil
	}
	s.loaded = false
	s.started = false
	s.pending = nil
}
