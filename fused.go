// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"code.hybscloud.com/kont"
)

// Send sends values on the named channel and suspends until a receiver
// takes them.
func Send(channel string, values ...Value) kont.Eff[Reply] {
	return kont.Perform(SendOp{Channel: channel, Values: values})
}

// SendBind sends values and passes the reply to f.
// Fuses Perform(SendOp{...}) + Bind.
func SendBind[B any](channel string, values []Value, f func(Reply) kont.Eff[B]) kont.Eff[B] {
	return kont.Bind(kont.Perform(SendOp{Channel: channel, Values: values}), f)
}

// Receive suspends until a sender offers values on the named channel.
func Receive(channel string) kont.Eff[Reply] {
	return kont.Perform(ReceiveOp{Channel: channel})
}

// TryReceive receives only if a sender is already waiting; otherwise the
// reply carries ErrNoSenders.
func TryReceive(channel string) kont.Eff[Reply] {
	return kont.Perform(ReceiveOp{Channel: channel, NonBlocking: true})
}

// ReceiveBind receives values and passes the reply to f.
// Fuses Perform(ReceiveOp{...}) + Bind.
func ReceiveBind[B any](channel string, f func(Reply) kont.Eff[B]) kont.Eff[B] {
	return kont.Bind(kont.Perform(ReceiveOp{Channel: channel}), f)
}

// ReceivePrefilled receives values and places prefill before them.
func ReceivePrefilled(channel string, prefill ...Value) kont.Eff[Reply] {
	return kont.Perform(ReceiveOp{Channel: channel, Prefill: prefill})
}

// NewChannel creates a channel from inside a process.
func NewChannel(name string) kont.Eff[Reply] {
	return kont.Perform(NewChannelOp{Name: name})
}

// DestroyChannel destroys a channel from inside a process.
func DestroyChannel(name string) kont.Eff[Reply] {
	return kont.Perform(DestroyChannelOp{Name: name})
}

// Spawn starts a new process from inside a process.
func Spawn(code Code) kont.Eff[Reply] {
	return kont.Perform(SpawnOp{Code: code})
}

// Done finishes a process body.
func Done() kont.Eff[struct{}] {
	return kont.Pure(struct{}{})
}
