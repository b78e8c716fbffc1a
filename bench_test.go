// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp_test

import (
	"fmt"
	"testing"

	"code.hybscloud.com/kont"

	"code.hybscloud.com/csp"
)

// BenchmarkMainRoundTrip measures a send and a reply between the main
// pseudo-process and an echo process.
func BenchmarkMainRoundTrip(b *testing.B) {
	rt := newRuntime(b)
	mustChannel(b, rt, "in", "out")
	spawn(b, rt, "echo", func(*csp.Env) kont.Eff[struct{}] {
		return csp.Serve("in", func(r csp.Reply) kont.Eff[bool] {
			return csp.SendBind("out", r.Values, func(csp.Reply) kont.Eff[bool] {
				return kont.Pure(true)
			})
		})
	})
	m := rt.Main()
	v := csp.Int(42)
	b.ReportAllocs()
	for b.Loop() {
		if err := m.SendFromMain("in", v); err != nil {
			b.Fatal(err)
		}
		if _, err := m.ReceiveFromMain("out"); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkProcessPingPong measures rendezvous between two worker
// processes.
func BenchmarkProcessPingPong(b *testing.B) {
	for _, workers := range []int{1, 4} {
		b.Run(fmt.Sprintf("workers=%d", workers), func(b *testing.B) {
			rt := newRuntime(b, csp.WithWorkers(workers))
			mustChannel(b, rt, "ping", "pong", "done")
			spawn(b, rt, "pong", func(*csp.Env) kont.Eff[struct{}] {
				return csp.Serve("ping", func(r csp.Reply) kont.Eff[bool] {
					return csp.SendBind("pong", r.Values, func(csp.Reply) kont.Eff[bool] {
						return kont.Pure(true)
					})
				})
			})
			m := rt.Main()
			b.ReportAllocs()
			for b.Loop() {
				spawn(b, rt, "ping", func(*csp.Env) kont.Eff[struct{}] {
					return csp.SendBind("ping", []csp.Value{csp.Int(1)}, func(csp.Reply) kont.Eff[struct{}] {
						return csp.ReceiveBind("pong", func(r csp.Reply) kont.Eff[struct{}] {
							return csp.SendBind("done", r.Values, func(csp.Reply) kont.Eff[struct{}] {
								return csp.Done()
							})
						})
					})
				})
				if _, err := m.ReceiveFromMain("done"); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkSpawnRecycled measures process creation with a warm recycle pool.
func BenchmarkSpawnRecycled(b *testing.B) {
	skipRace(b)
	rt := newRuntime(b, csp.WithRecycleCapacity(64))
	b.ReportAllocs()
	for b.Loop() {
		spawn(b, rt, "noop", finishes)
	}
	b.StopTimer()
	waitIdle(b, rt)
}

// BenchmarkSpawnFresh measures process creation without recycling.
func BenchmarkSpawnFresh(b *testing.B) {
	rt := newRuntime(b)
	b.ReportAllocs()
	for b.Loop() {
		spawn(b, rt, "noop", finishes)
	}
	b.StopTimer()
	waitIdle(b, rt)
}

// BenchmarkMarshal measures copying a mixed value set between contexts.
func BenchmarkMarshal(b *testing.B) {
	e := &csp.NativeEngine{}
	src, _ := e.NewState()
	dst, _ := e.NewState()
	g, _ := src.Shared(csp.SharedGlobals)
	vals := []csp.Value{csp.Int(1), csp.Float(2), csp.String("three"), csp.Bool(true), g}
	b.ReportAllocs()
	for b.Loop() {
		if _, err := csp.Marshal(src, dst, vals); err != nil {
			b.Fatal(err)
		}
	}
}
