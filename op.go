// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"code.hybscloud.com/kont"
)

// SendOp is the effect operation for sending values on a named channel.
// Perform(SendOp{...}) suspends until a receiver takes the values; the
// Reply carries only the error.
type SendOp struct {
	kont.Phantom[Reply]
	Channel string
	Values  []Value
}

func (op SendOp) dispatch(rt *Runtime, p *Process) (Reply, *Channel) {
	return rt.send(p, op.Channel, op.Values)
}

// ReceiveOp is the effect operation for receiving values from a named
// channel. Perform(ReceiveOp{...}) suspends until a sender arrives unless
// NonBlocking is set, in which case it fails with ErrNoSenders.
// Prefill values are placed before the received ones.
type ReceiveOp struct {
	kont.Phantom[Reply]
	Channel     string
	NonBlocking bool
	Prefill     []Value
}

func (op ReceiveOp) dispatch(rt *Runtime, p *Process) (Reply, *Channel) {
	return rt.receive(p, op.Channel, op.NonBlocking, op.Prefill)
}

// NewChannelOp is the effect operation for creating a channel.
// Never suspends.
type NewChannelOp struct {
	kont.Phantom[Reply]
	Name string
}

func (op NewChannelOp) dispatch(rt *Runtime, _ *Process) (Reply, *Channel) {
	return Reply{Err: rt.NewChannel(op.Name)}, nil
}

// DestroyChannelOp is the effect operation for destroying a channel.
// Never suspends; waiters of the channel receive ErrChannelDestroyed.
type DestroyChannelOp struct {
	kont.Phantom[Reply]
	Name string
}

func (op DestroyChannelOp) dispatch(rt *Runtime, _ *Process) (Reply, *Channel) {
	return Reply{Err: rt.DestroyChannel(op.Name)}, nil
}

// SpawnOp is the effect operation for creating a process from inside a
// process. Upvalues are copied out of the spawning context.
// Never suspends.
type SpawnOp struct {
	kont.Phantom[Reply]
	Code Code
}

func (op SpawnOp) dispatch(rt *Runtime, p *Process) (Reply, *Channel) {
	return Reply{Err: rt.spawn(p.state, op.Code)}, nil
}
