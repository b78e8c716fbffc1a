// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package csp_test

import "testing"

// skipRace skips tests that retire contexts through the recycle pool.
// The pool is an lfq MPMC queue whose slot handoff is ordered through a
// sequence word the race detector does not see, producing false
// positives.
func skipRace(tb testing.TB) {
	tb.Helper()
	tb.Skip("skip: recycle pool uses cross-variable memory ordering")
}
