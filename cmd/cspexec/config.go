// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joeycumines/logiface"
)

// Config is the cspexec configuration file.
type Config struct {
	Workers      int             `toml:"workers"`
	MaxWorkers   int             `toml:"max_workers"`
	Recycle      int             `toml:"recycle"`
	LockOSThread bool            `toml:"lock_os_thread"`
	LogLevel     string          `toml:"log_level"`
	Timeout      string          `toml:"timeout"`
	Channels     []string        `toml:"channels"`
	Process      []ProcessConfig `toml:"process"`

	// dir resolves relative process files.
	dir string
}

// ProcessConfig describes one or more identical processes.
type ProcessConfig struct {
	Name   string `toml:"name"`
	File   string `toml:"file"`
	Source string `toml:"source"`
	Count  int    `toml:"count"`
}

func defaultConfig() Config {
	return Config{Workers: 1, LogLevel: "info"}
}

// loadConfig decodes path over the defaults. Unknown keys are rejected.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	if c.MaxWorkers < 0 {
		errs = append(errs, fmt.Errorf("max_workers must not be negative, got %d", c.MaxWorkers))
	}
	if c.Recycle < 0 {
		errs = append(errs, fmt.Errorf("recycle must not be negative, got %d", c.Recycle))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.timeout(); err != nil {
		errs = append(errs, err)
	}
	for i, p := range c.Process {
		switch {
		case p.File == "" && p.Source == "":
			errs = append(errs, fmt.Errorf("process #%d: one of file or source is required", i+1))
		case p.File != "" && p.Source != "":
			errs = append(errs, fmt.Errorf("process #%d: file and source are exclusive", i+1))
		}
		if p.Count < 0 {
			errs = append(errs, fmt.Errorf("process #%d: count must not be negative", i+1))
		}
	}
	return errors.Join(errs...)
}

func (c *Config) timeout() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("timeout: %w", err)
	}
	return d, nil
}

// source returns the script of p and a name for it.
func (c *Config) source(p ProcessConfig) (name, src string, err error) {
	name = p.Name
	if p.Source != "" {
		if name == "" {
			name = "inline"
		}
		return name, p.Source, nil
	}
	path := p.File
	if !filepath.IsAbs(path) && c.dir != "" {
		path = filepath.Join(c.dir, path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	if name == "" {
		name = filepath.Base(path)
	}
	return name, string(b), nil
}

func parseLevel(s string) (logiface.Level, error) {
	switch strings.ToLower(s) {
	case "", "info", "informational":
		return logiface.LevelInformational, nil
	case "warn", "warning":
		return logiface.LevelWarning, nil
	case "error":
		return logiface.LevelError, nil
	}
	for l := logiface.LevelDisabled; l <= logiface.LevelTrace; l++ {
		if l.String() == strings.ToLower(s) {
			return l, nil
		}
	}
	return logiface.LevelDisabled, fmt.Errorf("unknown log level %q", s)
}
