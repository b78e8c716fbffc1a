// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"code.hybscloud.com/kont"
)

// Reify converts a Cont-world process body to Expr-world.
// The resulting Expr can be stepped with Step and Advance.
func Reify[A any](m kont.Eff[A]) kont.Expr[A] {
	return kont.Reify(m)
}

// Reflect converts an Expr-world process body to Cont-world.
func Reflect[A any](m kont.Expr[A]) kont.Eff[A] {
	return kont.Reflect(m)
}

// AsProgram adapts an ExprProgram to a Program.
func AsProgram(p ExprProgram) Program {
	return func(env *Env) kont.Eff[struct{}] {
		return Reflect(p(env))
	}
}
