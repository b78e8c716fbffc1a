// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"fmt"

	"github.com/joeycumines/logiface"
)

// runtimeOptions holds configuration options for Runtime creation.
type runtimeOptions struct {
	workers         int
	maxWorkers      int
	recycleCapacity int
	engine          Engine
	modules         []string
	logger          *logiface.Logger[logiface.Event]
	lockOSThread    bool
	hooks           Hooks
}

// Option configures a Runtime instance.
type Option interface {
	applyRuntime(*runtimeOptions) error
}

// optionImpl implements Option.
type optionImpl struct {
	applyRuntimeFunc func(*runtimeOptions) error
}

func (o *optionImpl) applyRuntime(opts *runtimeOptions) error {
	return o.applyRuntimeFunc(opts)
}

// WithWorkers sets the initial number of worker goroutines. Default 1.
func WithWorkers(n int) Option {
	return &optionImpl{func(opts *runtimeOptions) error {
		if n < 1 {
			return fmt.Errorf("%w: %d", ErrInvalidWorkerCount, n)
		}
		opts.workers = n
		return nil
	}}
}

// WithMaxWorkers bounds SetNumWorkers. Zero means unbounded.
func WithMaxWorkers(n int) Option {
	return &optionImpl{func(opts *runtimeOptions) error {
		if n < 0 {
			return fmt.Errorf("%w: maximum %d", ErrInvalidWorkerCount, n)
		}
		opts.maxWorkers = n
		return nil
	}}
}

// WithRecycleCapacity sets how many retired execution contexts are kept
// for reuse. Default 0: every finished context is destroyed.
func WithRecycleCapacity(n int) Option {
	return &optionImpl{func(opts *runtimeOptions) error {
		opts.recycleCapacity = max(n, 0)
		return nil
	}}
}

// WithEngine sets the engine that creates process contexts.
// Default is a NativeEngine.
func WithEngine(e Engine) Option {
	return &optionImpl{func(opts *runtimeOptions) error {
		opts.engine = e
		return nil
	}}
}

// WithSharedModules names module tables that exist in every native
// context, the host's included, and cross channels as shared singletons.
// It applies to the default native engine and to the host context.
func WithSharedModules(names ...string) Option {
	return &optionImpl{func(opts *runtimeOptions) error {
		for _, name := range names {
			if name == "" || name == SharedGlobals {
				return fmt.Errorf("csp: invalid shared module name %q", name)
			}
		}
		opts.modules = append(opts.modules, names...)
		return nil
	}}
}

// WithLogger sets the structured logger. A nil logger disables logging.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *runtimeOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithLockOSThread pins every worker goroutine to its own OS thread.
func WithLockOSThread(enabled bool) Option {
	return &optionImpl{func(opts *runtimeOptions) error {
		opts.lockOSThread = enabled
		return nil
	}}
}

// WithHooks installs instrumentation callbacks.
func WithHooks(h Hooks) Option {
	return &optionImpl{func(opts *runtimeOptions) error {
		opts.hooks = h
		return nil
	}}
}

// resolveOptions applies Option instances to runtimeOptions.
func resolveOptions(opts []Option) (*runtimeOptions, error) {
	cfg := &runtimeOptions{
		workers: 1,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyRuntime(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.maxWorkers > 0 && cfg.workers > cfg.maxWorkers {
		return nil, fmt.Errorf("%w: %d workers exceeds the maximum of %d", ErrWorkerStart, cfg.workers, cfg.maxWorkers)
	}
	if cfg.engine == nil {
		cfg.engine = &NativeEngine{Modules: cfg.modules}
	}
	return cfg, nil
}
