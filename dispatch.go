// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"errors"
	"slices"
)

// run drives p until it blocks on a channel or finishes.
//
// A process that parks is linked onto the channel with the channel still
// locked; the channel is released only after Resume has returned, so no
// partner can resume p's state before it has durably suspended.
func (rt *Runtime) run(p *Process) {
	p.setStatus(StatusRunning)
	reply := p.takeReply()
	for {
		op, err := p.state.Resume(reply)
		if err != nil || op == nil {
			rt.finish(p, err)
			return
		}
		var ch *Channel
		reply, ch = op.dispatch(rt, p)
		if ch != nil {
			rt.registry.unlock(ch)
			return
		}
	}
}

// finish retires p: its state is recycled if the body completed cleanly
// and the pool has room, and destroyed otherwise.
func (rt *Runtime) finish(p *Process, err error) {
	p.setStatus(StatusFinished)
	st := p.state
	p.state = nil

	rt.stats.finished.Add(1)
	if err != nil {
		rt.stats.failed.Add(1)
		rt.logger.Err().
			Err(err).
			Uint64(`pid`, uint64(p.id)).
			Log(`process failed`)
	}
	if h := rt.hooks.OnProcessFinish; h != nil {
		h(p.id, err)
	}
	if err == nil {
		rt.retire(st)
	} else {
		rt.destroyState(st)
	}
	rt.sched.decLive()
}

// retire resets st and offers it to the recycle pool.
func (rt *Runtime) retire(st State) {
	if rt.pool.capacity() > 0 && st.Reset() == nil && rt.pool.put(st) {
		rt.stats.recycled.Add(1)
		if h := rt.hooks.OnStateRecycle; h != nil {
			h(st)
		}
		return
	}
	rt.destroyState(st)
}

func (rt *Runtime) destroyState(st State) {
	if h := rt.hooks.OnStateDestroy; h != nil {
		h(st)
	}
	st.Close()
	rt.stats.destroyed.Add(1)
}

// acquireState pops a retired state or creates a fresh one.
func (rt *Runtime) acquireState() (st State, reused bool, err error) {
	if st, ok := rt.pool.get(); ok {
		rt.stats.reused.Add(1)
		if h := rt.hooks.OnStateReuse; h != nil {
			h(st)
		}
		return st, true, nil
	}
	st, err = rt.engine.NewState()
	if err != nil {
		return nil, false, err
	}
	rt.stats.created.Add(1)
	if h := rt.hooks.OnStateCreate; h != nil {
		h(st)
	}
	return st, false, nil
}

// spawn creates a process whose closure upvalues are copied out of src.
func (rt *Runtime) spawn(src State, code Code) error {
	if rt.closed.Load() != 0 {
		return ErrClosed
	}
	blob, err := SerializeClosure(src, code)
	if err != nil {
		return err
	}
	st, reused, err := rt.acquireState()
	if err != nil {
		return err
	}
	loaded, err := DeserializeClosure(st, blob)
	if err != nil {
		// Marshalling failures leave the context in an unknown condition.
		rt.destroyState(st)
		return err
	}
	if err := st.Load(loaded); err != nil {
		if reused && errors.Is(err, ErrCompile) {
			rt.retire(st)
		} else {
			rt.destroyState(st)
		}
		return err
	}
	p := newProcess(st)
	rt.sched.incLive()
	if !rt.sched.admit(p) {
		rt.sched.decLive()
		rt.destroyState(st)
		return ErrClosed
	}
	rt.stats.spawned.Add(1)
	return nil
}

// wake makes a process whose rendezvous completed runnable again.
func (rt *Runtime) wake(p *Process) {
	if p.host != nil {
		p.host.signal()
		return
	}
	rt.sched.requeue(p)
}

// offer completes a send if a receiver is queued on ch. It returns the
// receiver, which the caller wakes after releasing ch, and the marshalling
// error both sides observe. Caller holds ch.mu.
func (rt *Runtime) offer(p *Process, ch *Channel, values []Value) (*Process, error) {
	r := ch.recv.pop()
	if r == nil {
		return nil, nil
	}
	vals, err := Marshal(p.state, r.state, values)
	if err != nil {
		r.deliver(Reply{Err: err})
	} else {
		r.deliver(Reply{Values: prepend(r.prefill, vals)})
	}
	return r, err
}

// take completes a receive if a sender is queued on ch. It returns the
// sender, which the caller wakes after releasing ch, and the reply for the
// receiver. Caller holds ch.mu.
func (rt *Runtime) take(p *Process, ch *Channel, prefill []Value) (*Process, Reply) {
	s := ch.send.pop()
	if s == nil {
		return nil, Reply{}
	}
	vals, err := Marshal(s.state, p.state, s.out)
	s.deliver(Reply{Err: err})
	if err != nil {
		return s, Reply{Err: err}
	}
	return s, Reply{Values: prepend(prefill, vals)}
}

func (rt *Runtime) send(p *Process, name string, values []Value) (Reply, *Channel) {
	ch := rt.registry.lockedGet(name)
	if ch == nil {
		return Reply{Err: channelNotFound(name)}, nil
	}
	if r, err := rt.offer(p, ch, values); r != nil {
		rt.registry.unlock(ch)
		rt.wake(r)
		return Reply{Err: err}, nil
	}
	p.out = values
	p.park(ch, StatusBlockedSend)
	ch.send.push(p)
	return Reply{}, ch
}

func (rt *Runtime) receive(p *Process, name string, nonBlocking bool, prefill []Value) (Reply, *Channel) {
	ch := rt.registry.lockedGet(name)
	if ch == nil {
		return Reply{Err: channelNotFound(name)}, nil
	}
	if s, reply := rt.take(p, ch, prefill); s != nil {
		rt.registry.unlock(ch)
		rt.wake(s)
		return reply, nil
	}
	if nonBlocking {
		rt.registry.unlock(ch)
		return Reply{Err: ErrNoSenders}, nil
	}
	p.prefill = prefill
	p.park(ch, StatusBlockedReceive)
	ch.recv.push(p)
	return Reply{}, ch
}

func prepend(prefill, values []Value) []Value {
	if len(prefill) == 0 {
		return values
	}
	return slices.Concat(prefill, values)
}

func isDestroyed(err error) bool {
	return errors.Is(err, ErrChannelDestroyed)
}
