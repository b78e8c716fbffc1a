// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package script

import (
	"errors"
	"fmt"

	"github.com/dop251/goja"

	"code.hybscloud.com/csp"
)

var errKilled = errors.New("script: state closed while suspended")

// step is what the coroutine hands back to Resume.
type step struct {
	op   csp.Op
	err  error
	done bool
}

type state struct {
	engine *Engine
	vm     *goja.Runtime
	module *goja.Object

	inspect  *inspector
	globals  shape
	builtins map[*goja.Object]shape

	fn goja.Callable

	resume chan csp.Reply
	yield  chan step

	started bool
	parked  bool
	closed  bool

	// killed is owned by the coroutine goroutine.
	killed bool
}

func (s *state) bootstrap() error {
	inspect, err := newInspector(s.vm)
	if err != nil {
		return err
	}
	s.inspect = inspect
	if s.module, err = s.newModule(); err != nil {
		return err
	}
	if err := s.vm.Set(ModuleName, s.module); err != nil {
		return err
	}
	if s.engine.Setup != nil {
		if err := s.engine.Setup(s.vm); err != nil {
			return err
		}
	}
	if s.globals, err = inspect.shape(s.vm.GlobalObject()); err != nil {
		return err
	}
	s.builtins, err = inspect.builtins(s.globals, s.module)
	return err
}

// Load implements csp.State.
func (s *state) Load(code csp.Code) error {
	if s.closed {
		return csp.ErrClosed
	}
	var src string
	switch body := code.Body.(type) {
	case string:
		src = "(function() {\n" + body + "\n})"
	case Function:
		src = "(" + string(body) + ")"
	default:
		return fmt.Errorf("%w: %q: script engine cannot run %T", csp.ErrCompile, code.Name, code.Body)
	}
	prog, err := goja.Compile(code.Name, src, false)
	if err != nil {
		return fmt.Errorf("%w: %w", csp.ErrCompile, err)
	}
	v, err := s.vm.RunProgram(prog)
	if err != nil {
		return fmt.Errorf("%w: %w", csp.ErrCompile, err)
	}
	fn, ok := goja.AssertFunction(v)
	if !ok {
		return fmt.Errorf("%w: %q does not evaluate to a function", csp.ErrCompile, code.Name)
	}
	for _, uv := range code.Upvalues {
		if err := s.vm.Set(uv.Name, s.toJS(uv.Value)); err != nil {
			return err
		}
	}
	s.fn = fn
	s.started = false
	return nil
}

// Resume implements csp.State.
func (s *state) Resume(reply csp.Reply) (csp.Op, error) {
	if s.closed || (s.fn == nil && !s.parked) {
		return nil, csp.ErrClosed
	}
	if !s.started {
		s.started = true
		s.resume = make(chan csp.Reply)
		s.yield = make(chan step)
		fn := s.fn
		go func() { s.yield <- s.run(fn) }()
	} else {
		s.resume <- reply
	}
	st := <-s.yield
	if st.done {
		s.parked = false
		s.fn = nil
		return nil, st.err
	}
	s.parked = true
	return st.op, nil
}

// run is the coroutine body.
func (s *state) run(fn goja.Callable) (st step) {
	defer func() {
		if r := recover(); r != nil {
			st = step{err: &csp.PanicError{Value: r}, done: true}
		}
	}()
	_, err := fn(goja.Undefined())
	return step{err: err, done: true}
}

// suspend hands op to the worker and blocks until the reply arrives.
// Runs on the coroutine goroutine.
func (s *state) suspend(op csp.Op) csp.Reply {
	if s.killed {
		panic(s.vm.NewGoError(errKilled))
	}
	s.yield <- step{op: op}
	r, ok := <-s.resume
	if !ok {
		s.killed = true
		panic(s.vm.NewGoError(errKilled))
	}
	return r
}

// kill unwinds a parked coroutine and waits for it to exit.
func (s *state) kill() {
	if !s.parked {
		return
	}
	s.vm.Interrupt(errKilled)
	close(s.resume)
	<-s.yield
	s.parked = false
}

// SharedName implements csp.State.
func (s *state) SharedName(v csp.Value) (string, bool) {
	obj, ok := v.Ref().(*goja.Object)
	if !ok {
		return "", false
	}
	switch obj {
	case s.vm.GlobalObject():
		return csp.SharedGlobals, true
	case s.module:
		return ModuleName, true
	}
	return "", false
}

// Shared implements csp.State.
func (s *state) Shared(name string) (csp.Value, bool) {
	switch name {
	case csp.SharedGlobals:
		return csp.Foreign(csp.KindTable, s.vm.GlobalObject()), true
	case ModuleName:
		return csp.Foreign(csp.KindTable, s.module), true
	}
	return csp.Nil(), false
}

// Reset implements csp.State. The global object is restored to its
// bootstrap layout: globals created by earlier code, upvalues included, are
// deleted, overwritten ones are put back and the csp module is rebuilt.
// A context whose built-in objects were modified fails with errTainted.
func (s *state) Reset() error {
	if s.closed {
		return csp.ErrClosed
	}
	s.kill()
	if reason, ok := s.engine.interruption(); ok {
		return fmt.Errorf("script: engine interrupted: %v", reason)
	}
	s.vm.ClearInterrupt()
	for obj, want := range s.builtins {
		got, err := s.inspect.shape(obj)
		if err != nil {
			return err
		}
		if !want.same(got) {
			return errTainted
		}
	}
	if err := s.restoreGlobals(); err != nil {
		return err
	}
	s.fn = nil
	s.started = false
	return nil
}

func (s *state) restoreGlobals() error {
	global := s.vm.GlobalObject()
	got, err := s.inspect.shape(global)
	if err != nil {
		return err
	}
	if !got.extensible {
		return errTainted
	}
	if got.proto != s.globals.proto {
		if err := global.SetPrototype(s.globals.proto); err != nil {
			return err
		}
	}
	for k := range got.props {
		if _, ok := s.globals.props[k]; ok {
			continue
		}
		if err := k.delete(global); err != nil {
			return err
		}
	}
	module, err := s.newModule()
	if err != nil {
		return err
	}
	s.module = module
	for k, p := range s.globals.props {
		if k == (propKey{name: ModuleName}) {
			p.value = module
		}
		if cur, ok := got.props[k]; ok && cur.same(p) {
			continue
		}
		if err := k.define(global, p); err != nil {
			return err
		}
	}
	return nil
}

// Close implements csp.State.
func (s *state) Close() {
	if s.closed {
		return
	}
	s.kill()
	s.closed = true
	s.fn = nil
	s.engine.forget(s)
}
