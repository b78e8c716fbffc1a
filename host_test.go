// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp_test

import (
	"errors"
	"testing"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"

	"code.hybscloud.com/csp"
)

func TestMainFailsFast(t *testing.T) {
	rt := newRuntime(t)
	mustChannel(t, rt, "c")
	m := rt.Main()

	err := m.Send("c", csp.Int(1))
	if !errors.Is(err, csp.ErrMainWouldBlock) || !errors.Is(err, iox.ErrWouldBlock) {
		t.Fatalf("Send: got %v, want ErrMainWouldBlock", err)
	}
	if _, err := m.Receive("c"); !errors.Is(err, csp.ErrMainWouldBlock) {
		t.Fatalf("Receive: got %v, want ErrMainWouldBlock", err)
	}
	_, err = m.TryReceive("c")
	if !errors.Is(err, csp.ErrNoSenders) || !errors.Is(err, iox.ErrWouldBlock) {
		t.Fatalf("TryReceive: got %v, want ErrNoSenders", err)
	}
	if s, r, _ := rt.Waiting("c"); s != 0 || r != 0 {
		t.Fatalf("main left queued: %d senders, %d receivers", s, r)
	}
}

func TestMainProcess(t *testing.T) {
	rt := newRuntime(t)
	p := rt.Main().Process()
	if !p.IsMain() {
		t.Fatal("IsMain reported false")
	}
	if p.Status() != csp.StatusIdle {
		t.Fatalf("status: got %s, want idle", p.Status())
	}
	if p.Linked() || p.PendingArgs() != 0 {
		t.Fatal("idle main pseudo-process is linked or has pending arguments")
	}
	if g := rt.Main().Globals(); g == nil || g.Get(csp.SharedGlobals) != csp.TableValue(g) {
		t.Fatal("host globals do not contain themselves")
	}
}

func TestMainNonBlockingWithPartner(t *testing.T) {
	rt := newRuntime(t)
	mustChannel(t, rt, "in", "out")
	spawn(t, rt, "echo", func(*csp.Env) kont.Eff[struct{}] {
		return csp.ReceiveBind("in", func(r csp.Reply) kont.Eff[struct{}] {
			return csp.SendBind("out", r.Values, func(csp.Reply) kont.Eff[struct{}] {
				return csp.Done()
			})
		})
	})
	m := rt.Main()
	eventuallyWaiting(t, rt, "in", 0, 1)
	if err := m.Send("in", csp.String("hello")); err != nil {
		t.Fatal(err)
	}
	eventuallyWaiting(t, rt, "out", 1, 0)
	vals, err := m.Receive("out")
	if err != nil {
		t.Fatal(err)
	}
	if s, _ := vals[0].AsString(); s != "hello" {
		t.Fatalf("got %v, want hello", vals)
	}
	waitIdle(t, rt)
}

func TestMainBlockingForms(t *testing.T) {
	rt := newRuntime(t)
	mustChannel(t, rt, "in", "out")
	m := rt.Main()

	done := make(chan error, 1)
	go func() { done <- m.SendFromMain("in", csp.Int(20)) }()
	eventuallyWaiting(t, rt, "in", 1, 0)
	if !m.Process().Linked() {
		t.Fatal("blocked main pseudo-process is not linked")
	}

	spawn(t, rt, "double", func(*csp.Env) kont.Eff[struct{}] {
		return csp.ReceiveBind("in", func(r csp.Reply) kont.Eff[struct{}] {
			n, _ := r.Value(0).AsInt()
			return csp.SendBind("out", []csp.Value{csp.Int(n * 2)}, func(csp.Reply) kont.Eff[struct{}] {
				return csp.Done()
			})
		})
	})
	if err := <-done; err != nil {
		t.Fatalf("SendFromMain: %v", err)
	}
	got := receiveInts(t, m, "out", 1)
	if got[0] != 40 {
		t.Fatalf("got %d, want 40", got[0])
	}
	waitIdle(t, rt)
}

func TestMainReleasedByDestroy(t *testing.T) {
	rt := newRuntime(t)
	mustChannel(t, rt, "c")
	done := make(chan error, 1)
	go func() {
		_, err := rt.Main().ReceiveFromMain("c")
		done <- err
	}()
	eventuallyWaiting(t, rt, "c", 0, 1)
	if err := rt.DestroyChannel("c"); err != nil {
		t.Fatal(err)
	}
	if err := <-done; !errors.Is(err, csp.ErrChannelDestroyed) {
		t.Fatalf("got %v, want ErrChannelDestroyed", err)
	}
}

func TestMainExec(t *testing.T) {
	rt := newRuntime(t)
	mustChannel(t, rt, "in")
	spawn(t, rt, "square", func(*csp.Env) kont.Eff[struct{}] {
		return csp.ReceiveBind("in", func(r csp.Reply) kont.Eff[struct{}] {
			n, _ := r.Value(0).AsInt()
			return csp.SendBind("in", []csp.Value{csp.Int(n * n)}, func(csp.Reply) kont.Eff[struct{}] {
				return csp.Done()
			})
		})
	})

	var got int64
	err := rt.Main().Exec(func(env *csp.Env) kont.Eff[struct{}] {
		return csp.SendBind("in", []csp.Value{csp.Int(7)}, func(r csp.Reply) kont.Eff[struct{}] {
			return csp.Must(r, func(csp.Reply) kont.Eff[struct{}] {
				return csp.ReceiveBind("in", func(r csp.Reply) kont.Eff[struct{}] {
					got, _ = r.Value(0).AsInt()
					return csp.Done()
				})
			})
		})
	})
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if got != 49 {
		t.Fatalf("got %d, want 49", got)
	}
	waitIdle(t, rt)
}

func TestMainExecSpawnsAndCreates(t *testing.T) {
	rt := newRuntime(t)
	err := rt.Main().Exec(func(env *csp.Env) kont.Eff[struct{}] {
		return kont.Bind(csp.NewChannel("made"), func(r csp.Reply) kont.Eff[struct{}] {
			return csp.Must(r, func(csp.Reply) kont.Eff[struct{}] {
				child := csp.Closure("child", sendInts("made", 5))
				return kont.Bind(csp.Spawn(child), func(r csp.Reply) kont.Eff[struct{}] {
					return csp.Must(r, func(csp.Reply) kont.Eff[struct{}] {
						return csp.ReceiveBind("made", func(r csp.Reply) kont.Eff[struct{}] {
							if n, _ := r.Value(0).AsInt(); n != 5 {
								return csp.Throw[struct{}](errors.New("wrong value"))
							}
							return csp.Done()
						})
					})
				})
			})
		})
	})
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	waitIdle(t, rt)
}

func TestMainExecThrow(t *testing.T) {
	rt := newRuntime(t)
	errBoom := errors.New("boom")
	err := rt.Main().Exec(func(*csp.Env) kont.Eff[struct{}] {
		return csp.Throw[struct{}](errBoom)
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("got %v, want boom", err)
	}
	err = rt.Main().Exec(func(*csp.Env) kont.Eff[struct{}] {
		return csp.ReceiveBind("missing", func(r csp.Reply) kont.Eff[struct{}] {
			return csp.Must(r, func(csp.Reply) kont.Eff[struct{}] { return csp.Done() })
		})
	})
	if !errors.Is(err, csp.ErrChannelNotFound) {
		t.Fatalf("got %v, want ErrChannelNotFound", err)
	}
	if err := rt.Main().Exec(nil); !errors.Is(err, csp.ErrCompile) {
		t.Fatalf("nil program: got %v, want ErrCompile", err)
	}
}

func TestMainExecExpr(t *testing.T) {
	rt := newRuntime(t)
	mustChannel(t, rt, "c")
	spawn(t, rt, "producer", sendInts("c", 1, 2, 3))

	var sum int64
	var step func(n int) kont.Expr[struct{}]
	step = func(n int) kont.Expr[struct{}] {
		if n == 0 {
			return csp.ExprDone()
		}
		return csp.ExprReceiveBind("c", func(r csp.Reply) kont.Expr[struct{}] {
			v, _ := r.Value(0).AsInt()
			sum += v
			return step(n - 1)
		})
	}
	if err := rt.Main().ExecExpr(func(*csp.Env) kont.Expr[struct{}] { return step(3) }); err != nil {
		t.Fatalf("ExecExpr: %v", err)
	}
	if sum != 6 {
		t.Fatalf("sum got %d, want 6", sum)
	}
	if err := rt.Main().ExecExpr(nil); !errors.Is(err, csp.ErrCompile) {
		t.Fatalf("nil program: got %v, want ErrCompile", err)
	}
	waitIdle(t, rt)
}

func TestMainAfterClose(t *testing.T) {
	rt, err := csp.New()
	if err != nil {
		t.Fatal(err)
	}
	if err := rt.NewChannel("c"); err != nil {
		t.Fatal(err)
	}
	if err := rt.Close(); err != nil {
		t.Fatal(err)
	}
	if err := rt.Main().Send("c"); !errors.Is(err, csp.ErrClosed) {
		t.Fatalf("Send: got %v, want ErrClosed", err)
	}
	if _, err := rt.Main().ReceiveFromMain("c"); !errors.Is(err, csp.ErrClosed) {
		t.Fatalf("ReceiveFromMain: got %v, want ErrClosed", err)
	}
}

func TestMainReceivePrefill(t *testing.T) {
	rt := newRuntime(t)
	mustChannel(t, rt, "c")
	m := rt.Main()
	head := csp.String("head")

	if _, err := m.TryReceive("c", head); !errors.Is(err, csp.ErrNoSenders) {
		t.Fatalf("TryReceive: got %v, want ErrNoSenders", err)
	}

	// Sender first: the prefill is applied on the fast path.
	spawn(t, rt, "first", sendInts("c", 1))
	eventuallyWaiting(t, rt, "c", 1, 0)
	vals, err := m.Receive("c", head)
	if err != nil {
		t.Fatal(err)
	}
	checkPrefilled(t, vals, 1)

	// Receiver first: the prefill is kept while main is parked.
	done := make(chan []csp.Value, 1)
	go func() {
		vals, err := m.ReceiveFromMain("c", head)
		if err != nil {
			t.Error(err)
		}
		done <- vals
	}()
	eventuallyWaiting(t, rt, "c", 0, 1)
	spawn(t, rt, "second", sendInts("c", 2))
	checkPrefilled(t, <-done, 2)

	// A failed TryReceive leaves no prefill behind.
	spawn(t, rt, "third", sendInts("c", 3))
	if got := receiveInts(t, m, "c", 1); got[0] != 3 {
		t.Fatalf("got %v, want [3]", got)
	}
	waitIdle(t, rt)
}

func checkPrefilled(t *testing.T, vals []csp.Value, want int64) {
	t.Helper()
	if len(vals) != 2 {
		t.Fatalf("got %d values, want 2", len(vals))
	}
	if s, _ := vals[0].AsString(); s != "head" {
		t.Fatalf("prefill: got %v", vals[0])
	}
	if n, _ := vals[1].AsInt(); n != want {
		t.Fatalf("value: got %d, want %d", n, want)
	}
}
