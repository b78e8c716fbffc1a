// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"strconv"

	"code.hybscloud.com/atomix"
)

// Status is the scheduling state of a Process.
type Status uint32

const (
	StatusIdle Status = iota
	StatusReady
	StatusRunning
	StatusBlockedSend
	StatusBlockedReceive
	StatusFinished
)

// String returns the lower-case status name.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusReady:
		return "ready"
	case StatusRunning:
		return "running"
	case StatusBlockedSend:
		return "blocked-send"
	case StatusBlockedReceive:
		return "blocked-receive"
	case StatusFinished:
		return "finished"
	default:
		return "status(" + strconv.Itoa(int(s)) + ")"
	}
}

// Process is a lightweight process: an exclusively owned execution context
// plus the metadata the runtime needs to queue, block and resume it.
//
// The list-related fields are guarded by the lock of the list the process
// is linked into (scheduler lock for the ready queue, channel lock for wait
// queues). Status is atomic so that it can be observed without either.
type Process struct {
	id     PID
	state  State
	status atomix.Uint32

	// reply is delivered on the next Resume; its Values are the pending
	// arguments.
	reply Reply
	// out holds the values of a blocked sender until a receiver takes them.
	out []Value
	// prefill is prepended to the values of a blocked receiver.
	prefill []Value
	// channel is the channel the process is blocked on; valid only while
	// the status is one of the blocked states.
	channel *Channel

	next *Process
	list *procList

	// host is non-nil for the main pseudo-process only.
	host *Main
}

func newProcess(state State) *Process {
	return &Process{id: nextPID(), state: state}
}

// ID returns the process identifier.
func (p *Process) ID() PID { return p.id }

// Status returns the current scheduling state.
func (p *Process) Status() Status { return Status(p.status.Load()) }

// PendingArgs returns the number of values waiting to be delivered on the
// next resume.
func (p *Process) PendingArgs() int { return len(p.reply.Values) }

// Linked reports whether the process is currently a member of a list.
// Only meaningful while the owning lock is held or the runtime is quiescent.
func (p *Process) Linked() bool { return p.list != nil }

// IsMain reports whether p is the main pseudo-process.
func (p *Process) IsMain() bool { return p.host != nil }

func (p *Process) setStatus(s Status) { p.status.Store(uint32(s)) }

// park records that p blocks on ch with status s. Caller holds ch.mu.
func (p *Process) park(ch *Channel, s Status) {
	p.channel = ch
	p.setStatus(s)
}

// deliver stores the reply for the next resume and clears the blocking
// record. Caller holds the lock of the channel p was popped from.
func (p *Process) deliver(r Reply) {
	p.reply = r
	p.channel = nil
	p.out = nil
	p.prefill = nil
}

// takeReply returns and clears the pending reply.
func (p *Process) takeReply() Reply {
	r := p.reply
	p.reply = Reply{}
	return r
}
