// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
)

// scheduler multiplexes ready processes onto a resizable pool of worker
// goroutines.
//
// mu guards the ready queue and the worker counts. A worker sleeps on work
// while the ready queue is empty and exits between processes when the pool
// shrinks or is joined.
type scheduler struct {
	rt *Runtime

	mu      sync.Mutex
	work    *sync.Cond
	ready   procList
	workers int
	target  int
	max     int
	serial  int
	closing bool
	wg      sync.WaitGroup

	lockOSThread bool

	liveMu sync.Mutex
	idle   *sync.Cond
	live   atomix.Int64
}

func newScheduler(rt *Runtime, maxWorkers int, lockOSThread bool) *scheduler {
	s := &scheduler{rt: rt, max: maxWorkers, lockOSThread: lockOSThread}
	s.work = sync.NewCond(&s.mu)
	s.idle = sync.NewCond(&s.liveMu)
	return s
}

// setWorkers resizes the pool to n workers. Growing starts workers
// immediately; shrinking lets the excess exit after their current process.
func (s *scheduler) setWorkers(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkerCount, n)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return fmt.Errorf("%w: %w", ErrWorkerStart, ErrClosed)
	}
	if s.max > 0 && n > s.max {
		return fmt.Errorf("%w: %d workers exceeds the maximum of %d", ErrWorkerStart, n, s.max)
	}
	s.target = n
	for s.workers < s.target {
		s.workers++
		s.serial++
		s.wg.Add(1)
		go s.worker(s.serial)
	}
	if s.workers > s.target {
		s.work.Broadcast()
	}
	return nil
}

func (s *scheduler) numWorkers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target
}

func (s *scheduler) worker(id int) {
	defer s.wg.Done()
	if s.lockOSThread {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
	}
	log := s.rt.logger
	log.Debug().Int(`worker`, id).Log(`worker started`)
	defer log.Debug().Int(`worker`, id).Log(`worker stopped`)

	for {
		p := s.next()
		if p == nil {
			return
		}
		s.rt.run(p)
	}
}

// next blocks until a ready process is available. It returns nil when the
// calling worker must exit.
func (s *scheduler) next() *Process {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.ready.empty() && !s.closing && s.workers <= s.target {
		s.work.Wait()
	}
	if s.workers > s.target || (s.closing && s.ready.empty()) {
		s.workers--
		return nil
	}
	return s.ready.pop()
}

// requeue makes p runnable and hands it to a worker.
func (s *scheduler) requeue(p *Process) {
	s.mu.Lock()
	p.setStatus(StatusReady)
	s.ready.push(p)
	s.mu.Unlock()
	s.work.Signal()
}

// admit queues a newly spawned process unless the pool is joining.
func (s *scheduler) admit(p *Process) bool {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return false
	}
	p.setStatus(StatusReady)
	s.ready.push(p)
	s.mu.Unlock()
	s.work.Signal()
	return true
}

// join stops the pool: workers exit once the ready queue is empty.
func (s *scheduler) join() {
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()
	s.work.Broadcast()
	s.wg.Wait()
}

// stranded unlinks and returns processes left on the ready queue after join.
func (s *scheduler) stranded() []*Process {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready.drain()
}

func (s *scheduler) incLive() {
	s.liveMu.Lock()
	s.live.Add(1)
	s.liveMu.Unlock()
}

func (s *scheduler) decLive() {
	s.liveMu.Lock()
	if s.live.Add(-1) == 0 {
		s.idle.Broadcast()
	}
	s.liveMu.Unlock()
}

func (s *scheduler) liveCount() int64 { return s.live.Load() }

// wait blocks until no live process remains.
func (s *scheduler) wait() {
	s.liveMu.Lock()
	for s.live.Load() > 0 {
		s.idle.Wait()
	}
	s.liveMu.Unlock()
}

// waitContext is wait with cancellation. It polls the live count with
// adaptive backoff.
func (s *scheduler) waitContext(ctx context.Context) error {
	var bo iox.Backoff
	for s.live.Load() > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		bo.Wait()
	}
	return nil
}
