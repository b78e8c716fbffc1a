// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"errors"
	"strconv"
	"sync"
)

// Run creates a runtime, starts one process per program, waits for all of
// them to finish and closes the runtime. It returns the joined errors of
// the processes that failed.
func Run(programs ...Program) error {
	var (
		mu   sync.Mutex
		errs []error
	)
	rt, err := New(WithHooks(Hooks{
		OnProcessFinish: func(_ PID, err error) {
			if err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		},
	}))
	if err != nil {
		return err
	}
	defer rt.Close()
	for i, p := range programs {
		if err := rt.NewProcess(Code{Name: "program#" + strconv.Itoa(i), Body: p}); err != nil {
			return err
		}
	}
	rt.Wait()
	mu.Lock()
	defer mu.Unlock()
	return errors.Join(errs...)
}
