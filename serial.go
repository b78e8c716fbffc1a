// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import "code.hybscloud.com/atomix"

// PID is a monotonically increasing process identifier.
// Identifiers are unique across every Runtime in the program.
type PID = uint32

// pidCounter is the global monotonic counter for process identifiers.
var pidCounter atomix.Uint32

// nextPID returns the next process identifier.
func nextPID() PID {
	return pidCounter.Add(1)
}
