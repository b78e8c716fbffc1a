// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"code.hybscloud.com/kont"
)

// Exec runs a Cont-world program on the calling goroutine as the main
// pseudo-process. Send and Receive inside the program use the blocking
// main forms, so calling Exec is the opt-in to blocking the host.
// Returns the error the program threw, if any.
func (m *Main) Exec(program Program) error {
	if program == nil {
		return ErrCompile
	}
	env := m.env()
	wrapped := kont.Map[kont.Resumed, struct{}, outcome](program(env), func(struct{}) outcome {
		return finished
	})
	var errCtx kont.ErrorContext[error]
	h := hostHandler{m: m, errCtx: &errCtx}
	return outcomeErr(kont.Handle(wrapped, h))
}

// ExecExpr runs an Expr-world program on the calling goroutine as the
// main pseudo-process.
func (m *Main) ExecExpr(program ExprProgram) error {
	if program == nil {
		return ErrCompile
	}
	env := m.env()
	wrapped := kont.ExprMap(program(env), func(struct{}) outcome {
		return finished
	})
	var errCtx kont.ErrorContext[error]
	h := hostHandler{m: m, errCtx: &errCtx}
	return outcomeErr(kont.HandleExpr(wrapped, h))
}

func (m *Main) env() *Env {
	if s, ok := m.proc.state.(*nativeState); ok {
		return &s.env
	}
	panic("csp: main state is not native")
}

func outcomeErr(o outcome) error {
	if err, ok := o.GetLeft(); ok {
		return err
	}
	return nil
}
