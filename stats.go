// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"code.hybscloud.com/atomix"
)

// Stats is a snapshot of runtime counters.
type Stats struct {
	// Spawned counts processes created.
	Spawned uint64
	// Finished counts processes whose body ended, failed ones included.
	Finished uint64
	// Failed counts processes that ended with an error.
	Failed uint64
	// Created counts execution contexts allocated by the engine.
	Created uint64
	// Reused counts contexts taken from the recycle pool.
	Reused uint64
	// Recycled counts contexts returned to the recycle pool.
	Recycled uint64
	// Destroyed counts contexts torn down.
	Destroyed uint64
	// Live is the number of processes not yet finished.
	Live int64
	// Pooled is the number of contexts in the recycle pool.
	Pooled int
}

type counters struct {
	spawned   atomix.Uint64
	finished  atomix.Uint64
	failed    atomix.Uint64
	created   atomix.Uint64
	reused    atomix.Uint64
	recycled  atomix.Uint64
	destroyed atomix.Uint64
}

// Hooks are instrumentation callbacks. They run synchronously on the
// goroutine that triggered them and must not call back into the runtime.
type Hooks struct {
	// OnStateCreate is called after the engine allocates a context.
	OnStateCreate func(State)
	// OnStateReuse is called when a pooled context is taken for a new
	// process.
	OnStateReuse func(State)
	// OnStateRecycle is called after a context is reset and pooled.
	OnStateRecycle func(State)
	// OnStateDestroy is called before a context is closed.
	OnStateDestroy func(State)
	// OnProcessFinish is called when a process body ends.
	OnProcessFinish func(pid PID, err error)
}
