// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import "sync"

// Channel is a named rendezvous point. Exactly one sender and one receiver
// exchange a value set at a time; waiters on each side are served FIFO.
//
// At most one of the two wait queues is non-empty: whichever side arrives
// second completes the rendezvous instead of queueing.
type Channel struct {
	name string
	send procList
	recv procList

	mu sync.Mutex
	// usable is signalled whenever mu is released. Its L is the registry
	// mutex, so a waiter gives up the registry while it waits.
	usable *sync.Cond
}

func newChannel(name string, registryMu *sync.Mutex) *Channel {
	return &Channel{name: name, usable: sync.NewCond(registryMu)}
}

// Name returns the channel name.
func (ch *Channel) Name() string { return ch.name }

// waiting returns the wait queue lengths. Caller holds ch.mu.
func (ch *Channel) waiting() (senders, receivers int) {
	return ch.send.len(), ch.recv.len()
}

// drain empties whichever wait queue is populated. Caller holds ch.mu.
func (ch *Channel) drain() (senders, receivers []*Process) {
	return ch.send.drain(), ch.recv.drain()
}
