// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// registry maps channel names to channels. mu guards table membership only;
// channel queues are guarded by each channel's own mutex.
//
// Lookup-and-lock never holds mu while a channel is busy: a caller that
// fails to TryLock the channel waits on the channel's usable condition,
// which releases mu, and looks the name up again when woken since the
// channel may have been destroyed meanwhile.
type registry struct {
	mu    sync.Mutex
	table map[string]*Channel
}

func newRegistry() *registry {
	return &registry{table: make(map[string]*Channel)}
}

// lockedGet returns the named channel with its mutex held, or nil.
func (r *registry) lockedGet(name string) *Channel {
	r.mu.Lock()
	ch := r.acquire(name)
	r.mu.Unlock()
	return ch
}

// acquire is the retry loop of lockedGet. Caller holds r.mu.
func (r *registry) acquire(name string) *Channel {
	for {
		ch, ok := r.table[name]
		if !ok {
			return nil
		}
		if ch.mu.TryLock() {
			return ch
		}
		ch.usable.Wait()
	}
}

// unlock releases a channel obtained from lockedGet and wakes every caller
// waiting to retry it.
func (r *registry) unlock(ch *Channel) {
	r.mu.Lock()
	ch.mu.Unlock()
	ch.usable.Broadcast()
	r.mu.Unlock()
}

func (r *registry) create(name string) error {
	if name == "" {
		return ErrInvalidChannelName
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.table[name]; ok {
		return fmt.Errorf("%w: %q", ErrChannelExists, name)
	}
	r.table[name] = newChannel(name, &r.mu)
	return nil
}

// destroy removes the named channel and returns its former waiters.
// The returned processes are unlinked; the caller delivers the destroyed
// error and wakes them.
func (r *registry) destroy(name string) (senders, receivers []*Process, err error) {
	r.mu.Lock()
	ch := r.acquire(name)
	if ch == nil {
		r.mu.Unlock()
		return nil, nil, channelNotFound(name)
	}
	delete(r.table, name)
	r.mu.Unlock()

	// Retrying callers look the name up again and find nothing.
	ch.usable.Broadcast()

	senders, receivers = ch.drain()
	ch.mu.Unlock()
	return senders, receivers, nil
}

// names returns a sorted snapshot of channel names.
func (r *registry) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Sorted(maps.Keys(r.table))
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.table)
}
