// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"code.hybscloud.com/kont"
)

// errorDispatcher is the structural interface of kont error effects
// (ThrowError, CatchError) specialised to Go errors.
type errorDispatcher interface {
	DispatchError(ctx *kont.ErrorContext[error]) (kont.Resumed, bool)
}

// Throw aborts the current process body with err. The process finishes
// and the error is reported through the runtime's logger and hooks.
func Throw[A any](err error) kont.Eff[A] {
	return kont.ThrowError[error, A](err)
}

// ExprThrow is the Expr-world form of Throw.
func ExprThrow[A any](err error) kont.Expr[A] {
	return kont.ExprThrowError[error, A](err)
}

// Must continues with f if the reply succeeded and throws its error
// otherwise.
func Must[B any](r Reply, f func(Reply) kont.Eff[B]) kont.Eff[B] {
	if r.Err != nil {
		return Throw[B](r.Err)
	}
	return f(r)
}

// hostHandler handles runtime ops and error effects for a body that runs
// on the host goroutine. Runtime ops block through the main pseudo-process.
// Value type: passed to evalFrames on the stack, avoiding heap allocation.
type hostHandler struct {
	m      *Main
	errCtx *kont.ErrorContext[error]
}

// Dispatch implements kont.Handler for the composed Op+Error handler.
// Dispatch order: Op → Error.
func (h hostHandler) Dispatch(op kont.Operation) (kont.Resumed, bool) {
	if rop, ok := op.(Op); ok {
		return h.m.dispatch(rop), true
	}
	if eop, ok := op.(errorDispatcher); ok {
		v, _ := eop.DispatchError(h.errCtx)
		if h.errCtx.HasErr {
			return kont.Left[error, struct{}](h.errCtx.Err), false
		}
		return v, true
	}
	panic("csp: unhandled effect in hostHandler")
}
