// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

// Engine creates execution contexts. The runtime never looks inside a
// context: it only loads code into it, resumes it, recycles and closes it.
type Engine interface {
	NewState() (State, error)
}

// State is an isolated, suspendable execution context.
//
// A State is used by one goroutine at a time. The runtime guarantees that a
// State is never resumed concurrently and that ownership moves between
// workers only through the ready queue or a channel queue.
type State interface {
	// Load compiles code into the state and installs its upvalues.
	// Compile failures wrap ErrCompile.
	Load(code Code) error

	// Resume runs the loaded code until it yields an Op or finishes.
	// The reply is the result of the previously yielded Op and is ignored
	// on the first call. A nil Op with a nil error means the code finished.
	Resume(reply Reply) (Op, error)

	// SharedName reports whether v is one of this state's shared
	// singletons (global namespace, shared modules) and its name.
	SharedName(v Value) (string, bool)

	// Shared resolves a shared singleton name to this state's object.
	Shared(name string) (Value, bool)

	// Reset returns the state to a clean reusable condition.
	Reset() error

	// Close tears the state down. A closed state is never used again.
	Close()
}

// Code is process code in a form the runtime's Engine understands.
//
// Body is engine specific: the native engine accepts a Program or an
// ExprProgram, the script engine accepts JavaScript source text.
// Upvalues carry captured state for closures; they are copied into the new
// context with the same rules as channel values.
type Code struct {
	Name     string
	Body     any
	Upvalues []Upvalue
}

// Upvalue is a named value captured by a closure.
type Upvalue struct {
	Name  string
	Value Value
}

// Closure returns Code with captured upvalues.
func Closure(name string, body any, upvalues ...Upvalue) Code {
	return Code{Name: name, Body: body, Upvalues: upvalues}
}

// Reply is the result of an Op, delivered on resume.
type Reply struct {
	Values []Value
	Err    error
}

// OK reports whether the operation succeeded.
func (r Reply) OK() bool { return r.Err == nil }

// Value returns the i-th received value, or nil.
func (r Reply) Value(i int) Value {
	if i < 0 || i >= len(r.Values) {
		return Nil()
	}
	return r.Values[i]
}

// Op is a request a suspended process makes to the runtime.
// The set of ops is closed; see SendOp, ReceiveOp, NewChannelOp,
// DestroyChannelOp and SpawnOp.
type Op interface {
	// dispatch performs the op for p. A non-nil channel means p was parked
	// on it and the channel is still locked; the caller unlocks it once
	// p's state has durably suspended.
	dispatch(rt *Runtime, p *Process) (Reply, *Channel)
}
