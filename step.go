// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"fmt"

	"code.hybscloud.com/kont"
)

// outcome is the result of a native process body: Left on an uncaught
// throw, Right on normal completion.
type outcome = kont.Either[error, struct{}]

// suspension is a native process body suspended at an effect.
type suspension = kont.Suspension[outcome]

var finished = kont.Right[error, struct{}](struct{}{})

// Step evaluates a process body until the first effect suspension.
// Returns (result, nil) on completion, or (zero, suspension) if pending.
func Step(body kont.Expr[struct{}]) (kont.Either[error, struct{}], *kont.Suspension[kont.Either[error, struct{}]]) {
	wrapped := kont.ExprMap(body, func(struct{}) outcome {
		return finished
	})
	return kont.StepExpr(wrapped)
}

// Advance handles error effects eagerly until susp reaches a runtime Op or
// the body completes. Throw discards the suspension and returns Left.
// An effect that is neither a runtime Op nor an error effect is discarded
// and reported as Left.
func Advance(result kont.Either[error, struct{}], susp *kont.Suspension[kont.Either[error, struct{}]]) (kont.Either[error, struct{}], *kont.Suspension[kont.Either[error, struct{}]], Op) {
	for susp != nil {
		switch op := susp.Op().(type) {
		case Op:
			return result, susp, op
		case errorDispatcher:
			var ctx kont.ErrorContext[error]
			v, _ := op.DispatchError(&ctx)
			if ctx.HasErr {
				susp.Discard()
				return kont.Left[error, struct{}](ctx.Err), nil, nil
			}
			result, susp = susp.Resume(v)
		default:
			susp.Discard()
			return kont.Left[error, struct{}](fmt.Errorf("csp: unhandled effect %T", op)), nil, nil
		}
	}
	return result, nil, nil
}
