// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"sync"
)

// Main is the host's pseudo-process. It takes part in rendezvous like any
// process but is never queued or run by a worker, and is idle whenever it
// is not blocked: when a partner completes
// a rendezvous with it, Main is signalled directly.
//
// Send and Receive never block. They fail with ErrMainWouldBlock when no
// partner is waiting. SendFromMain and ReceiveFromMain opt in to blocking
// the calling goroutine until a partner arrives.
//
// Main's calls are serialised; the host may call them from any goroutine.
type Main struct {
	rt   *Runtime
	proc *Process

	// call serialises host operations so the pseudo-process is never
	// linked into two wait queues.
	call sync.Mutex

	mu    sync.Mutex
	cond  *sync.Cond
	woken bool
}

func newMain(rt *Runtime, st State) *Main {
	m := &Main{rt: rt}
	m.cond = sync.NewCond(&m.mu)
	m.proc = newProcess(st)
	m.proc.host = m
	return m
}

// Process returns the pseudo-process record.
func (m *Main) Process() *Process { return m.proc }

// Globals returns the host's global namespace. It crosses channels as the
// shared singleton SharedGlobals.
func (m *Main) Globals() *Table {
	v, _ := m.proc.state.Shared(SharedGlobals)
	t, _ := v.AsTable()
	return t
}

// Send offers values to a receiver already waiting on the channel.
func (m *Main) Send(channel string, values ...Value) error {
	return m.send(channel, values, false)
}

// SendFromMain sends values, blocking the calling goroutine until a
// receiver takes them.
func (m *Main) SendFromMain(channel string, values ...Value) error {
	return m.send(channel, values, true)
}

// Receive takes values from a sender already waiting on the channel.
// Prefill values are placed before the received ones.
func (m *Main) Receive(channel string, prefill ...Value) ([]Value, error) {
	return m.receive(channel, false, false, prefill)
}

// ReceiveFromMain receives values, blocking the calling goroutine until a
// sender offers them.
func (m *Main) ReceiveFromMain(channel string, prefill ...Value) ([]Value, error) {
	return m.receive(channel, true, false, prefill)
}

// TryReceive receives only if a sender is waiting; otherwise it returns
// ErrNoSenders.
func (m *Main) TryReceive(channel string, prefill ...Value) ([]Value, error) {
	return m.receive(channel, false, true, prefill)
}

func (m *Main) send(name string, values []Value, block bool) error {
	m.call.Lock()
	defer m.call.Unlock()
	rt := m.rt
	if rt.closed.Load() != 0 {
		return ErrClosed
	}
	ch := rt.registry.lockedGet(name)
	if ch == nil {
		return channelNotFound(name)
	}
	p := m.proc
	if r, err := rt.offer(p, ch, values); r != nil {
		rt.registry.unlock(ch)
		rt.wake(r)
		return err
	}
	if !block {
		rt.registry.unlock(ch)
		return ErrMainWouldBlock
	}
	m.arm()
	p.out = values
	p.park(ch, StatusBlockedSend)
	ch.send.push(p)
	rt.registry.unlock(ch)
	rt.logger.Debug().Str(`channel`, name).Log(`main blocked on send`)
	return m.await().Err
}

func (m *Main) receive(name string, block, nonBlocking bool, prefill []Value) ([]Value, error) {
	m.call.Lock()
	defer m.call.Unlock()
	rt := m.rt
	if rt.closed.Load() != 0 {
		return nil, ErrClosed
	}
	ch := rt.registry.lockedGet(name)
	if ch == nil {
		return nil, channelNotFound(name)
	}
	p := m.proc
	if s, reply := rt.take(p, ch, prefill); s != nil {
		rt.registry.unlock(ch)
		rt.wake(s)
		return reply.Values, reply.Err
	}
	switch {
	case nonBlocking:
		rt.registry.unlock(ch)
		return nil, ErrNoSenders
	case !block:
		rt.registry.unlock(ch)
		return nil, ErrMainWouldBlock
	}
	m.arm()
	p.prefill = prefill
	p.park(ch, StatusBlockedReceive)
	ch.recv.push(p)
	rt.registry.unlock(ch)
	rt.logger.Debug().Str(`channel`, name).Log(`main blocked on receive`)
	reply := m.await()
	return reply.Values, reply.Err
}

// arm prepares for a wait. It runs before the pseudo-process is linked so
// a signal can never be lost.
func (m *Main) arm() {
	m.mu.Lock()
	m.woken = false
	m.mu.Unlock()
}

// await blocks until signal and returns the delivered reply.
func (m *Main) await() Reply {
	m.mu.Lock()
	for !m.woken {
		m.cond.Wait()
	}
	m.mu.Unlock()
	m.proc.setStatus(StatusIdle)
	return m.proc.takeReply()
}

// signal wakes the host goroutine blocked in await.
func (m *Main) signal() {
	m.mu.Lock()
	m.woken = true
	m.mu.Unlock()
	m.cond.Signal()
}

// dispatch performs a runtime op on behalf of a host program, blocking
// where a worker process would have been parked.
func (m *Main) dispatch(op Op) Reply {
	switch op := op.(type) {
	case SendOp:
		return Reply{Err: m.SendFromMain(op.Channel, op.Values...)}
	case ReceiveOp:
		var (
			vals []Value
			err  error
		)
		if op.NonBlocking {
			vals, err = m.TryReceive(op.Channel, op.Prefill...)
		} else {
			vals, err = m.ReceiveFromMain(op.Channel, op.Prefill...)
		}
		return Reply{Values: vals, Err: err}
	case SpawnOp:
		return Reply{Err: m.rt.spawn(m.proc.state, op.Code)}
	default:
		r, ch := op.dispatch(m.rt, m.proc)
		if ch != nil {
			panic("csp: host op parked the main process")
		}
		return r
	}
}
