// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"code.hybscloud.com/kont"
)

// Loop runs a recursive process body (Cont-world).
// step returns Left(nextState) to continue or Right(result) to finish.
func Loop[S, A any](initial S, step func(S) kont.Eff[kont.Either[S, A]]) kont.Eff[A] {
	return kont.Bind(step(initial), func(e kont.Either[S, A]) kont.Eff[A] {
		if left, ok := e.GetLeft(); ok {
			return Loop(left, step)
		}
		right, _ := e.GetRight()
		return kont.Pure(right)
	})
}

// ExprLoop runs a recursive process body (Expr-world).
// step returns Left(nextState) to continue or Right(result) to finish.
// Fuses ExprBind inline to avoid the type-erasing wrapper closure.
func ExprLoop[S, A any](initial S, step func(S) kont.Expr[kont.Either[S, A]]) kont.Expr[A] {
	m := step(initial)
	if _, ok := m.Frame.(kont.ReturnFrame); ok {
		if left, ok := m.Value.GetLeft(); ok {
			return ExprLoop(left, step)
		}
		right, _ := m.Value.GetRight()
		return kont.ExprReturn(right)
	}
	bf := kont.AcquireBindFrame()
	bf.F = func(a kont.Erased) kont.Expr[kont.Erased] {
		e := a.(kont.Either[S, A])
		if left, ok := e.GetLeft(); ok {
			result := ExprLoop(left, step)
			return kont.Expr[kont.Erased]{Value: kont.Erased(result.Value), Frame: result.Frame}
		}
		right, _ := e.GetRight()
		return kont.Expr[kont.Erased]{Value: kont.Erased(right), Frame: kont.ReturnFrame{}}
	}
	bf.Next = kont.ReturnFrame{}
	var zero A
	return kont.Expr[A]{
		Value: zero,
		Frame: kont.ChainFrames(m.Frame, bf),
	}
}

// Serve receives on channel forever and calls handle with each reply.
// The loop ends when handle returns false or a receive fails; a failed
// receive other than a destroyed channel is thrown.
func Serve(channel string, handle func(Reply) kont.Eff[bool]) kont.Eff[struct{}] {
	return Loop(struct{}{}, func(struct{}) kont.Eff[kont.Either[struct{}, struct{}]] {
		return ReceiveBind(channel, func(r Reply) kont.Eff[kont.Either[struct{}, struct{}]] {
			if r.Err != nil {
				if isDestroyed(r.Err) {
					return kont.Pure(kont.Right[struct{}, struct{}](struct{}{}))
				}
				return Throw[kont.Either[struct{}, struct{}]](r.Err)
			}
			return kont.Map(handle(r), func(more bool) kont.Either[struct{}, struct{}] {
				if more {
					return kont.Left[struct{}, struct{}](struct{}{})
				}
				return kont.Right[struct{}, struct{}](struct{}{})
			})
		})
	})
}
