// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/lfq"
)

// recyclePool is a bounded FIFO of retired execution contexts.
//
// get and put run concurrently under the read lock against a lock-free
// MPMC queue. Capacity changes and close take the write lock and rebuild
// or drain the queue. size counts reserved slots: put reserves before it
// enqueues and get releases after it dequeues, so size never undercounts
// and the pool never holds more than capacity states.
type recyclePool struct {
	mu     sync.RWMutex
	q      lfq.Queue[State]
	closed bool

	size  atomix.Int64
	limit atomix.Int64

	// destroy tears down a state the pool gives up.
	destroy func(State)
}

func newRecyclePool(capacity int, destroy func(State)) *recyclePool {
	p := &recyclePool{destroy: destroy}
	p.rebuild(capacity)
	return p
}

// rebuild replaces the queue. Caller holds the write lock or owns p.
func (p *recyclePool) rebuild(capacity int) {
	if capacity < 0 {
		capacity = 0
	}
	p.limit.Store(int64(capacity))
	if capacity == 0 {
		p.q = nil
		return
	}
	p.q = lfq.Build[State](lfq.New(max(capacity, 2)).Compact())
}

// get pops the oldest retired state.
func (p *recyclePool) get() (State, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.q == nil {
		return nil, false
	}
	s, err := p.q.Dequeue()
	if err != nil {
		return nil, false
	}
	p.size.Add(-1)
	return s, true
}

// put retires s into the pool. It reports false, leaving s to the caller,
// when the pool is full or closed.
func (p *recyclePool) put(s State) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed || p.q == nil {
		return false
	}
	for {
		n := p.size.Load()
		if n >= p.limit.Load() {
			return false
		}
		if p.size.CompareAndSwap(n, n+1) {
			break
		}
	}
	if err := p.q.Enqueue(&s); err != nil {
		p.size.Add(-1)
		return false
	}
	return true
}

// setCapacity changes the capacity. Shrinking destroys the newest excess
// states immediately; the oldest ones stay pooled in order.
func (p *recyclePool) setCapacity(n int) {
	if n < 0 {
		n = 0
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	kept := p.drainLocked()
	var excess []State
	if len(kept) > n {
		kept, excess = kept[:n], kept[n:]
	}
	p.rebuild(n)
	for i := range kept {
		// Fits: the new queue holds at least n states.
		_ = p.q.Enqueue(&kept[i])
	}
	p.size.Store(int64(len(kept)))
	p.mu.Unlock()

	for _, s := range excess {
		p.destroy(s)
	}
}

func (p *recyclePool) capacity() int { return int(p.limit.Load()) }

func (p *recyclePool) len() int { return int(p.size.Load()) }

// close destroys every pooled state. Later puts are refused.
func (p *recyclePool) close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	states := p.drainLocked()
	p.q = nil
	p.size.Store(0)
	p.limit.Store(0)
	p.mu.Unlock()

	for _, s := range states {
		p.destroy(s)
	}
}

// drainLocked dequeues everything in FIFO order. Caller holds the write
// lock, so no put is in flight and the queue is quiescent.
func (p *recyclePool) drainLocked() []State {
	if p.q == nil {
		return nil
	}
	out := make([]State, 0, p.size.Load())
	for {
		s, err := p.q.Dequeue()
		if err != nil {
			return out
		}
		out = append(out, s)
	}
}
