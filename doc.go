// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package csp provides a CSP-style lightweight-process runtime.
//
// Processes are isolated, suspendable execution contexts that communicate
// only through named rendezvous channels, and are multiplexed onto a
// resizable pool of worker goroutines.
//
// # Architecture
//
//   - Runtime: [Runtime] owns a channel registry, a scheduler, a recycle pool and the main pseudo-process. Runtimes share nothing.
//   - Channels: Unbuffered and named. A send completes only when a receiver takes the values; waiters on each side are served FIFO.
//   - Values: [Value] is a scalar or a context-local reference. Only scalars and shared singletons ([SharedGlobals], shared modules) cross contexts; see [Marshal].
//   - Engines: An [Engine] creates [State]s. [NativeEngine] runs Go programs written with [code.hybscloud.com/kont] effects; package script runs JavaScript.
//   - Recycling: Finished contexts are reset and kept in a bounded lock-free pool ([code.hybscloud.com/lfq]) for reuse.
//   - Host: [Main] lets the host take part in rendezvous without being scheduled. Non-blocking forms fail with [ErrMainWouldBlock], which wraps [code.hybscloud.com/iox.ErrWouldBlock].
//
// # API Topologies
//
//   - Operations: [SendOp], [ReceiveOp], [NewChannelOp], [DestroyChannelOp], [SpawnOp]. Each resumes with a [Reply].
//   - Cont-world: [Send], [SendBind], [Receive], [TryReceive], [ReceiveBind], [ReceivePrefilled], [NewChannel], [DestroyChannel], [Spawn], [Done].
//   - Expr-world: [ExprSendBind], [ExprReceiveBind], [ExprTryReceiveBind], [ExprSendThen], [ExprDone]. Bridge via [Reify] and [Reflect].
//   - Recursive: [Loop], [ExprLoop] and [Serve].
//   - Errors: [Throw] ends a process body with an error; kont error effects are handled inside the context.
//
// # Example
//
//	rt, _ := csp.New(csp.WithWorkers(2))
//	defer rt.Close()
//	_ = rt.NewChannel("ping")
//	_ = rt.NewProcess(csp.Code{Body: csp.Program(func(env *csp.Env) kont.Eff[struct{}] {
//		return csp.SendBind("ping", []csp.Value{csp.Int(42)}, func(csp.Reply) kont.Eff[struct{}] {
//			return csp.Done()
//		})
//	})})
//	vals, err := rt.Main().ReceiveFromMain("ping")
package csp
