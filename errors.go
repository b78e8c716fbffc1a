// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"errors"
	"fmt"

	"code.hybscloud.com/iox"
)

// Usage errors. Returned to the immediate caller, never fatal.
var (
	// ErrChannelNotFound reports an operation on a name with no channel.
	ErrChannelNotFound = errors.New("csp: channel does not exist")
	// ErrChannelExists reports a second creation of the same channel name.
	ErrChannelExists = errors.New("csp: channel already exists")
	// ErrInvalidChannelName reports an empty channel name.
	ErrInvalidChannelName = errors.New("csp: invalid channel name")
	// ErrUnsupportedValue reports a value or upvalue that cannot cross
	// execution contexts.
	ErrUnsupportedValue = errors.New("csp: unsupported value")
	// ErrCompile reports process code the engine could not load.
	ErrCompile = errors.New("csp: cannot load process code")
	// ErrInvalidWorkerCount reports a worker count below one.
	ErrInvalidWorkerCount = errors.New("csp: invalid number of workers")
	// ErrClosed reports use of a runtime after Close.
	ErrClosed = errors.New("csp: runtime closed")
)

// ErrNoSenders is returned by a non-blocking receive when no sender is
// waiting. It wraps iox.ErrWouldBlock.
var ErrNoSenders = fmt.Errorf("csp: no senders waiting on channel: %w", iox.ErrWouldBlock)

// ErrMainWouldBlock is returned when the main pseudo-process would have to
// block without having opted in. It wraps iox.ErrWouldBlock.
var ErrMainWouldBlock = fmt.Errorf("csp: main process cannot block without the FromMain form: %w", iox.ErrWouldBlock)

// ErrChannelDestroyed is delivered to every process that was queued on a
// channel when it was destroyed.
var ErrChannelDestroyed = errors.New("csp: channel destroyed")

// ErrWorkerStart is the resource error of SetNumWorkers: a worker could not
// be started.
var ErrWorkerStart = errors.New("csp: cannot start worker")

var (
	errDestroyedWaitingReceiver = fmt.Errorf("%w while waiting for receiver", ErrChannelDestroyed)
	errDestroyedWaitingSender   = fmt.Errorf("%w while waiting for sender", ErrChannelDestroyed)
)

// PanicError is the failure of a process whose body panicked.
type PanicError struct {
	Value any
}

// Error implements error.
func (e *PanicError) Error() string {
	return fmt.Sprintf("csp: process panicked: %v", e.Value)
}

// Unwrap returns the panic value if it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

func channelNotFound(name string) error {
	return fmt.Errorf("%w: %q", ErrChannelNotFound, name)
}
