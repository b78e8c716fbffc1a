// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"code.hybscloud.com/kont"
)

// Pre-allocated erased frame to eliminate heap escapes when boxing an
// empty struct into kont.Frame during Expr-world execution.
var exprReturnFrame kont.Frame = kont.ReturnFrame{}

// identityResume is the identity resume function for EffectFrame construction.
func identityResume(v kont.Erased) kont.Erased { return v }

func replyBindUnwind[B any](data, _, _ kont.Erased, current kont.Erased) (kont.Erased, kont.Frame) {
	f := data.(func(Reply) kont.Expr[B])
	result := f(current.(Reply))
	return kont.Erased(result.Value), result.Frame
}

func exprOpBind[B any](op kont.Erased, f func(Reply) kont.Expr[B]) kont.Expr[B] {
	bf := kont.AcquireUnwindFrame()
	bf.Data1 = f
	bf.Unwind = replyBindUnwind[B]
	ef := kont.AcquireEffectFrame()
	ef.Operation = op
	ef.Resume = identityResume
	ef.Next = bf
	return kont.ExprSuspend[B](ef)
}

// ExprSendBind sends values and passes the reply to f.
// Fuses ExprPerform(SendOp{...}) + ExprBind.
func ExprSendBind[B any](channel string, values []Value, f func(Reply) kont.Expr[B]) kont.Expr[B] {
	return exprOpBind(SendOp{Channel: channel, Values: values}, f)
}

// ExprReceiveBind receives values and passes the reply to f.
// Fuses ExprPerform(ReceiveOp{...}) + ExprBind.
func ExprReceiveBind[B any](channel string, f func(Reply) kont.Expr[B]) kont.Expr[B] {
	return exprOpBind(ReceiveOp{Channel: channel}, f)
}

// ExprTryReceiveBind is the non-blocking form of ExprReceiveBind.
func ExprTryReceiveBind[B any](channel string, f func(Reply) kont.Expr[B]) kont.Expr[B] {
	return exprOpBind(ReceiveOp{Channel: channel, NonBlocking: true}, f)
}

// ExprSendThen sends values and continues with next regardless of the
// reply. Fuses ExprPerform(SendOp{...}) + ExprThen.
func ExprSendThen[B any](channel string, values []Value, next kont.Expr[B]) kont.Expr[B] {
	tf := kont.AcquireThenFrame()
	tf.Second = kont.Expr[kont.Erased]{Value: kont.Erased(next.Value), Frame: next.Frame}
	tf.Next = exprReturnFrame
	ef := kont.AcquireEffectFrame()
	ef.Operation = SendOp{Channel: channel, Values: values}
	ef.Resume = identityResume
	ef.Next = tf
	return kont.ExprSuspend[B](ef)
}

// ExprDone finishes a process body.
func ExprDone() kont.Expr[struct{}] {
	return kont.ExprReturn(struct{}{})
}
