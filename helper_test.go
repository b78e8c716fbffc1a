// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"code.hybscloud.com/kont"

	"code.hybscloud.com/csp"
)

const testTimeout = 5 * time.Second

// newRuntime creates a runtime that is closed when the test ends.
func newRuntime(tb testing.TB, opts ...csp.Option) *csp.Runtime {
	tb.Helper()
	rt, err := csp.New(opts...)
	if err != nil {
		tb.Fatalf("New: %v", err)
	}
	tb.Cleanup(func() { _ = rt.Close() })
	return rt
}

// waitIdle waits for every process of rt to finish.
func waitIdle(tb testing.TB, rt *csp.Runtime) {
	tb.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()
	if err := rt.WaitContext(ctx); err != nil {
		tb.Fatalf("processes still live: %d: %v", rt.Live(), err)
	}
}

// mustChannel creates the named channels.
func mustChannel(tb testing.TB, rt *csp.Runtime, names ...string) {
	tb.Helper()
	for _, name := range names {
		if err := rt.NewChannel(name); err != nil {
			tb.Fatalf("NewChannel(%q): %v", name, err)
		}
	}
}

// spawn starts a native process.
func spawn(tb testing.TB, rt *csp.Runtime, name string, p csp.Program, upvalues ...csp.Upvalue) {
	tb.Helper()
	if err := rt.NewProcess(csp.Closure(name, p, upvalues...)); err != nil {
		tb.Fatalf("NewProcess(%q): %v", name, err)
	}
}

// eventuallyWaiting polls until channel has the given queue lengths.
func eventuallyWaiting(tb testing.TB, rt *csp.Runtime, channel string, senders, receivers int) {
	tb.Helper()
	deadline := time.Now().Add(testTimeout)
	for {
		s, r, err := rt.Waiting(channel)
		if err != nil {
			tb.Fatalf("Waiting(%q): %v", channel, err)
		}
		if s == senders && r == receivers {
			return
		}
		if time.Now().After(deadline) {
			tb.Fatalf("channel %q: got %d senders and %d receivers, want %d and %d", channel, s, r, senders, receivers)
		}
		time.Sleep(time.Millisecond)
	}
}

// finishLog records the OnProcessFinish callbacks of a runtime.
type finishLog struct {
	mu   sync.Mutex
	pids []csp.PID
	errs []error
}

func (l *finishLog) hooks() csp.Hooks {
	return csp.Hooks{OnProcessFinish: l.record}
}

func (l *finishLog) record(pid csp.PID, err error) {
	l.mu.Lock()
	l.pids = append(l.pids, pid)
	l.errs = append(l.errs, err)
	l.mu.Unlock()
}

// failures returns the non-nil errors.
func (l *finishLog) failures() []error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []error
	for _, err := range l.errs {
		if err != nil {
			out = append(out, err)
		}
	}
	return out
}

func (l *finishLog) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.errs)
}

// sendInts sends each integer in order and finishes.
func sendInts(channel string, ns ...int64) csp.Program {
	return func(*csp.Env) kont.Eff[struct{}] {
		return csp.Loop(ns, func(rest []int64) kont.Eff[kont.Either[[]int64, struct{}]] {
			if len(rest) == 0 {
				return kont.Pure(kont.Right[[]int64, struct{}](struct{}{}))
			}
			return csp.SendBind(channel, []csp.Value{csp.Int(rest[0])}, func(r csp.Reply) kont.Eff[kont.Either[[]int64, struct{}]] {
				return csp.Must(r, func(csp.Reply) kont.Eff[kont.Either[[]int64, struct{}]] {
					return kont.Pure(kont.Left[[]int64, struct{}](rest[1:]))
				})
			})
		})
	}
}

// receiveInts collects n integers from the main pseudo-process.
func receiveInts(tb testing.TB, m *csp.Main, channel string, n int) []int64 {
	tb.Helper()
	out := make([]int64, 0, n)
	for range n {
		vals, err := m.ReceiveFromMain(channel)
		if err != nil {
			tb.Fatalf("ReceiveFromMain(%q): %v", channel, err)
		}
		i, ok := csp.Reply{Values: vals}.Value(0).AsInt()
		if !ok {
			tb.Fatalf("received %v, want an integer", vals)
		}
		out = append(out, i)
	}
	return out
}
