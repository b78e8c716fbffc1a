// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp_test

import (
	"testing"

	"code.hybscloud.com/kont"

	"code.hybscloud.com/csp"
)

func TestReifyContToExpr(t *testing.T) {
	rt := newRuntime(t)
	mustChannel(t, rt, "c")
	cont := csp.SendBind("c", []csp.Value{csp.String("cont")}, func(csp.Reply) kont.Eff[struct{}] {
		return csp.Done()
	})
	expr := csp.Reify(cont)
	body := csp.ExprProgram(func(*csp.Env) kont.Expr[struct{}] { return expr })
	if err := rt.NewProcess(csp.Code{Name: "reified", Body: body}); err != nil {
		t.Fatal(err)
	}
	vals, err := rt.Main().ReceiveFromMain("c")
	if err != nil {
		t.Fatal(err)
	}
	if s, _ := vals[0].AsString(); s != "cont" {
		t.Fatalf("got %v", vals)
	}
	waitIdle(t, rt)
}

func TestReflectExprToCont(t *testing.T) {
	rt := newRuntime(t)
	mustChannel(t, rt, "c")
	expr := csp.ExprSendThen("c", []csp.Value{csp.String("expr")}, csp.ExprDone())
	spawn(t, rt, "reflected", func(*csp.Env) kont.Eff[struct{}] { return csp.Reflect(expr) })
	vals, err := rt.Main().ReceiveFromMain("c")
	if err != nil {
		t.Fatal(err)
	}
	if s, _ := vals[0].AsString(); s != "expr" {
		t.Fatalf("got %v", vals)
	}
	waitIdle(t, rt)
}

func TestMixedWorlds(t *testing.T) {
	rt := newRuntime(t)
	mustChannel(t, rt, "c")
	spawn(t, rt, "mixed", func(*csp.Env) kont.Eff[struct{}] {
		first := csp.Reflect(csp.ExprSendThen("c", []csp.Value{csp.Int(1)}, csp.ExprDone()))
		return kont.Bind(first, func(struct{}) kont.Eff[struct{}] {
			return csp.SendBind("c", []csp.Value{csp.Int(2)}, func(csp.Reply) kont.Eff[struct{}] {
				return csp.Done()
			})
		})
	})
	got := receiveInts(t, rt.Main(), "c", 2)
	if got[0] != 1 || got[1] != 2 {
		t.Fatalf("got %v", got)
	}
	waitIdle(t, rt)
}
