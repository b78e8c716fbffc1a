// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"context"
	"fmt"

	"code.hybscloud.com/atomix"
	"github.com/google/uuid"
	"github.com/joeycumines/logiface"
)

// Runtime owns a channel registry, a scheduler with its worker pool, a
// recycle pool of execution contexts and the main pseudo-process.
// Independent runtimes share nothing.
type Runtime struct {
	id     string
	logger *logiface.Logger[logiface.Event]
	engine Engine
	hooks  Hooks

	registry *registry
	sched    *scheduler
	pool     *recyclePool
	main     *Main

	stats  counters
	closed atomix.Uint32
}

// New creates a runtime and starts its workers.
func New(opts ...Option) (*Runtime, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	rt := &Runtime{
		id:       uuid.NewString(),
		engine:   cfg.engine,
		hooks:    cfg.hooks,
		registry: newRegistry(),
	}
	rt.logger = cfg.logger.Clone().Str(`runtime`, rt.id).Logger()

	host, err := (&NativeEngine{Modules: cfg.modules}).NewState()
	if err != nil {
		return nil, err
	}
	rt.main = newMain(rt, host)
	rt.pool = newRecyclePool(cfg.recycleCapacity, rt.destroyState)
	rt.sched = newScheduler(rt, cfg.maxWorkers, cfg.lockOSThread)
	if err := rt.sched.setWorkers(cfg.workers); err != nil {
		host.Close()
		return nil, err
	}
	rt.logger.Debug().
		Int(`workers`, cfg.workers).
		Int(`recycle`, cfg.recycleCapacity).
		Log(`runtime started`)
	return rt, nil
}

// ID returns the unique identifier of the runtime, carried by every log
// event it emits.
func (rt *Runtime) ID() string { return rt.id }

// Main returns the host's pseudo-process.
func (rt *Runtime) Main() *Main { return rt.main }

// NewProcess creates a process running code and queues it. Closure
// upvalues are copied out of the host context.
func (rt *Runtime) NewProcess(code Code) error {
	return rt.spawn(rt.main.proc.state, code)
}

// NewChannel creates a named channel.
func (rt *Runtime) NewChannel(name string) error {
	if rt.closed.Load() != 0 {
		return ErrClosed
	}
	return rt.registry.create(name)
}

// DestroyChannel removes a channel. Every process waiting on it observes
// ErrChannelDestroyed and becomes runnable.
func (rt *Runtime) DestroyChannel(name string) error {
	if rt.closed.Load() != 0 {
		return ErrClosed
	}
	return rt.destroyChannel(name)
}

func (rt *Runtime) destroyChannel(name string) error {
	senders, receivers, err := rt.registry.destroy(name)
	if err != nil {
		return err
	}
	for _, p := range senders {
		p.deliver(Reply{Err: errDestroyedWaitingReceiver})
		rt.wake(p)
	}
	for _, p := range receivers {
		p.deliver(Reply{Err: errDestroyedWaitingSender})
		rt.wake(p)
	}
	rt.logger.Info().
		Str(`channel`, name).
		Int(`senders`, len(senders)).
		Int(`receivers`, len(receivers)).
		Log(`channel destroyed`)
	return nil
}

// Channels returns the sorted names of existing channels.
func (rt *Runtime) Channels() []string { return rt.registry.names() }

// Waiting reports how many processes are queued on each side of a channel.
func (rt *Runtime) Waiting(name string) (senders, receivers int, err error) {
	ch := rt.registry.lockedGet(name)
	if ch == nil {
		return 0, 0, channelNotFound(name)
	}
	senders, receivers = ch.waiting()
	rt.registry.unlock(ch)
	return senders, receivers, nil
}

// SetNumWorkers resizes the worker pool.
func (rt *Runtime) SetNumWorkers(n int) error {
	if err := rt.sched.setWorkers(n); err != nil {
		rt.logger.Err().Err(err).Int(`workers`, n).Log(`cannot resize worker pool`)
		return err
	}
	return nil
}

// NumWorkers returns the configured number of workers.
func (rt *Runtime) NumWorkers() int { return rt.sched.numWorkers() }

// SetRecycleCapacity changes how many retired contexts are kept. Shrinking
// destroys the excess immediately.
func (rt *Runtime) SetRecycleCapacity(n int) {
	rt.pool.setCapacity(n)
	rt.logger.Debug().Int(`capacity`, rt.pool.capacity()).Log(`recycle capacity changed`)
}

// RecycleCapacity returns the recycle pool capacity.
func (rt *Runtime) RecycleCapacity() int { return rt.pool.capacity() }

// Wait blocks until every process has finished.
func (rt *Runtime) Wait() { rt.sched.wait() }

// WaitContext is Wait with cancellation.
func (rt *Runtime) WaitContext(ctx context.Context) error {
	return rt.sched.waitContext(ctx)
}

// Live returns the number of processes not yet finished.
func (rt *Runtime) Live() int64 { return rt.sched.liveCount() }

// Stats returns a snapshot of the runtime counters.
func (rt *Runtime) Stats() Stats {
	return Stats{
		Spawned:   rt.stats.spawned.Load(),
		Finished:  rt.stats.finished.Load(),
		Failed:    rt.stats.failed.Load(),
		Created:   rt.stats.created.Load(),
		Reused:    rt.stats.reused.Load(),
		Recycled:  rt.stats.recycled.Load(),
		Destroyed: rt.stats.destroyed.Load(),
		Live:      rt.sched.liveCount(),
		Pooled:    rt.pool.len(),
	}
}

// JoinWorkers shuts the worker pool down. Workers exit once the ready
// queue drains; processes still blocked on channels stay parked.
func (rt *Runtime) JoinWorkers() { rt.sched.join() }

// Close joins the workers, destroys every channel, and tears down every
// remaining execution context. Processes that never finished are
// abandoned. Close is idempotent.
func (rt *Runtime) Close() error {
	if !rt.closed.CompareAndSwap(0, 1) {
		return nil
	}
	rt.sched.join()
	for _, name := range rt.registry.names() {
		if err := rt.destroyChannel(name); err != nil {
			rt.logger.Debug().Err(err).Str(`channel`, name).Log(`channel vanished during close`)
		}
	}
	abandoned := rt.sched.stranded()
	for _, p := range abandoned {
		rt.abandon(p)
	}
	rt.pool.close()
	rt.main.proc.state.Close()
	rt.logger.Debug().Int(`abandoned`, len(abandoned)).Log(`runtime closed`)
	return nil
}

// abandon tears down a process that will never run again.
func (rt *Runtime) abandon(p *Process) {
	p.setStatus(StatusFinished)
	st := p.state
	p.state = nil
	if h := rt.hooks.OnProcessFinish; h != nil {
		h(p.id, ErrClosed)
	}
	rt.destroyState(st)
	rt.sched.decLive()
}

// String implements fmt.Stringer.
func (rt *Runtime) String() string {
	return fmt.Sprintf("csp.Runtime(%s)", rt.id)
}
