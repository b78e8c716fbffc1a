// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command cspexec runs JavaScript processes on a csp runtime.
//
// Usage:
//
//	cspexec [flags] [script.js ...]
//
// Every script argument becomes one process. A TOML file given with
// -config can declare channels, processes and runtime settings; flags
// override the file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"

	"code.hybscloud.com/csp"
	"code.hybscloud.com/csp/script"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "cspexec: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, logOut io.Writer) error {
	fs := flag.NewFlagSet("cspexec", flag.ContinueOnError)
	fs.SetOutput(logOut)
	var (
		configPath   = fs.String("config", "", "TOML configuration file")
		workers      = fs.Int("workers", 1, "number of worker goroutines")
		maxWorkers   = fs.Int("max-workers", 0, "upper bound for the worker pool (0 = unbounded)")
		recycle      = fs.Int("recycle", 0, "number of retired contexts kept for reuse")
		lockOSThread = fs.Bool("lock-os-thread", false, "pin every worker to an OS thread")
		logLevel     = fs.String("log-level", "info", "log level (trace, debug, info, warning, error, disabled)")
		timeout      = fs.String("timeout", "", "give up waiting for processes after this duration")
		channels     = fs.String("channels", "", "comma separated channels to create before starting")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := defaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = loadConfig(*configPath); err != nil {
			return err
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "workers":
			cfg.Workers = *workers
		case "max-workers":
			cfg.MaxWorkers = *maxWorkers
		case "recycle":
			cfg.Recycle = *recycle
		case "lock-os-thread":
			cfg.LockOSThread = *lockOSThread
		case "log-level":
			cfg.LogLevel = *logLevel
		case "timeout":
			cfg.Timeout = *timeout
		case "channels":
			cfg.Channels = append(cfg.Channels, splitList(*channels)...)
		}
	})
	for _, path := range fs.Args() {
		cfg.Process = append(cfg.Process, ProcessConfig{File: path})
	}
	if err := cfg.validate(); err != nil {
		return err
	}
	if len(cfg.Process) == 0 {
		return errors.New("no processes to run")
	}

	level, _ := parseLevel(cfg.LogLevel)
	logger := stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(logOut)),
		stumpy.L.WithLevel(level),
	).Logger()

	engine := &script.Engine{Logger: logger}
	rt, err := csp.New(
		csp.WithWorkers(cfg.Workers),
		csp.WithMaxWorkers(cfg.MaxWorkers),
		csp.WithRecycleCapacity(cfg.Recycle),
		csp.WithLockOSThread(cfg.LockOSThread),
		csp.WithLogger(logger),
		csp.WithEngine(engine),
	)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := start(rt, &cfg); err != nil {
		return err
	}
	return wait(ctx, rt, engine, &cfg, logger)
}

func start(rt *csp.Runtime, cfg *Config) error {
	for _, name := range cfg.Channels {
		if err := rt.NewChannel(name); err != nil {
			return err
		}
	}
	for _, p := range cfg.Process {
		name, src, err := cfg.source(p)
		if err != nil {
			return err
		}
		for i := range max(p.Count, 1) {
			code := csp.Code{Name: name, Body: src}
			if p.Count > 1 {
				code.Name = name + "#" + strconv.Itoa(i)
			}
			if err := rt.NewProcess(code); err != nil {
				return fmt.Errorf("process %s: %w", code.Name, err)
			}
		}
	}
	return nil
}

// wait blocks until every process has finished. When ctx ends first, the
// remaining scripts are interrupted so that closing the runtime does not
// wait on code that never yields.
func wait(ctx context.Context, rt *csp.Runtime, engine *script.Engine, cfg *Config, logger *logiface.Logger[logiface.Event]) error {
	if d, _ := cfg.timeout(); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	err := rt.WaitContext(ctx)
	if err != nil {
		engine.Interrupt(err)
	}
	st := rt.Stats()
	logger.Info().
		Uint64(`spawned`, st.Spawned).
		Uint64(`finished`, st.Finished).
		Uint64(`failed`, st.Failed).
		Uint64(`reused`, st.Reused).
		Int64(`live`, st.Live).
		Log(`done`)
	if err != nil {
		return fmt.Errorf("%d processes still live: %w", st.Live, err)
	}
	if st.Failed > 0 {
		return fmt.Errorf("%d of %d processes failed", st.Failed, st.Spawned)
	}
	return nil
}

func splitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
}
