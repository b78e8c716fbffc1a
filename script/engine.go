// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package script is a csp execution engine backed by the goja JavaScript
// runtime.
//
// Every state owns an isolated [goja.Runtime]. Process code runs on a
// goroutine dedicated to the state, which hands control back and forth
// with the worker resuming it, so a blocked process never holds a worker.
//
// Scripts reach the runtime through the global csp module:
//
//	csp.send(name, ...values)         // [true, null] or [false, message]
//	csp.receive(name, ...prefill)     // [values, null] or [null, message]
//	csp.tryReceive(name, ...prefill)  // as receive, without blocking
//	csp.newChannel(name)              // [true, null] or [false, message]
//	csp.destroyChannel(name)          // [true, null] or [false, message]
//	csp.spawn(fn, upvalues)           // [true, null] or [false, message]
//	csp.log(...values)                // structured log at info level
//
// Values passed as prefill are placed before the received ones.
//
// globalThis crosses channels as csp.SharedGlobals and the csp module
// object as ModuleName.
package script

import (
	"sync"

	"github.com/dop251/goja"
	"github.com/joeycumines/logiface"

	"code.hybscloud.com/csp"
)

// ModuleName is the global name and shared singleton name of the csp
// module object.
const ModuleName = "csp"

// Function is JavaScript source of a function expression. Code whose Body
// is a Function is evaluated and the resulting function called with no
// arguments; its captured state travels as upvalues, which are installed
// as globals.
type Function string

// Engine creates goja-backed states.
//
// A Code Body may be a string (a script, run in its own function scope)
// or a Function.
type Engine struct {
	// Logger receives csp.log output. Nil disables it.
	Logger *logiface.Logger[logiface.Event]
	// Setup, if set, populates every fresh state, e.g. to install extra
	// host functions. What it installs counts as built-in: a context whose
	// process modified it is not recycled.
	Setup func(vm *goja.Runtime) error

	mu          sync.Mutex
	states      map[*state]struct{}
	interrupted bool
	reason      any
}

// NewState implements csp.Engine.
func (e *Engine) NewState() (csp.State, error) {
	s := &state{engine: e, vm: goja.New()}
	if err := s.bootstrap(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.states == nil {
		e.states = make(map[*state]struct{})
	}
	e.states[s] = struct{}{}
	if e.interrupted {
		s.vm.Interrupt(e.reason)
	}
	return s, nil
}

// Interrupt stops JavaScript in every open state of e, and in every state
// created afterwards: running code throws a *goja.InterruptedError carrying
// reason, and so does suspended code once resumed. Interrupted states are
// never recycled. Interrupt may be called from any goroutine, typically to
// shut down a runtime whose processes do not yield.
func (e *Engine) Interrupt(reason any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.interrupted = true
	e.reason = reason
	for s := range e.states {
		s.vm.Interrupt(reason)
	}
}

func (e *Engine) interruption() (any, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reason, e.interrupted
}

func (e *Engine) forget(s *state) {
	e.mu.Lock()
	delete(e.states, s)
	e.mu.Unlock()
}
