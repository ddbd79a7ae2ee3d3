// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ceph

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gopkg.in/ini.v1"

	"github.com/NVIDIA/ceph-diagnostics/pkg/defaults"
	"github.com/NVIDIA/ceph-diagnostics/pkg/errors"
	"github.com/NVIDIA/ceph-diagnostics/pkg/executor"
	"github.com/NVIDIA/ceph-diagnostics/pkg/logging"
)

// Exit statuses the ceph CLI uses for the conditions Issue classifies.
const (
	exitInvalid  = 22  // EINVAL
	exitTimedOut = 110 // ETIMEDOUT
)

// unsupportedMarkers are stderr fragments printed for an unknown command prefix.
var unsupportedMarkers = []string{
	"command not known",
	"no valid command found",
	"unrecognized command",
}

// timeoutMarkers are stderr fragments printed when RADOS gives up waiting.
// The CLI then usually exits 1, not ETIMEDOUT.
var timeoutMarkers = []string{
	"errno 110",
	"etimedout",
	"timed out",
}

// Config describes how to reach the cluster.
type Config struct {
	// ConfigPath is the ceph.conf path as seen by the Runner.
	ConfigPath string
	// Binary is the ceph CLI. Defaults to "ceph".
	Binary string
	// ConnectTimeout bounds the connection probe. Defaults to defaults.ConnectTimeout.
	ConnectTimeout time.Duration

	Logger *slog.Logger
}

// Client is a connected control-plane handle. It shells out to the ceph CLI
// through a Runner, so it works the same on a host and inside a toolbox pod.
type Client struct {
	runner   executor.Runner
	cfg      Config
	fsid     string
	monitors []string
	log      *slog.Logger
}

// Connect reads the cluster configuration and probes the cluster for its fsid.
// Any failure is fatal for the run.
func Connect(ctx context.Context, runner executor.Runner, cfg Config) (*Client, error) {
	if cfg.ConfigPath == "" {
		cfg.ConfigPath = defaults.CephConfigPath
	}
	if cfg.Binary == "" {
		cfg.Binary = defaults.CephBinary
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = defaults.ConnectTimeout
	}

	c := &Client{
		runner: runner,
		cfg:    cfg,
		log:    logging.OrDiscard(cfg.Logger).With("config", cfg.ConfigPath),
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	conf, stderr, err := runner.Run(ctx, "cat "+executor.Quote(cfg.ConfigPath))
	if err != nil {
		if _, exited := executor.ExitCode(err); exited {
			return nil, errors.WrapWithContext(errors.ErrCodeNotFound, "failed to read ceph config", err,
				map[string]any{"path": cfg.ConfigPath, "stderr": string(bytes.TrimSpace(stderr))})
		}
		return nil, errors.Wrap(errors.ErrCodeUnavailable, "failed to read ceph config", err)
	}

	c.monitors, err = ParseMonitors(conf)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeMalformed, "failed to parse ceph config", err,
			map[string]any{"path": cfg.ConfigPath})
	}
	c.log.Info("attempting to connect", "monitors", strings.Join(c.monitors, ","))

	out, err := c.Issue(ctx, "fsid", cfg.ConnectTimeout)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable, "failed to connect to cluster", err)
	}
	c.fsid = strings.TrimSpace(string(out))
	if c.fsid == "" {
		return nil, errors.New(errors.ErrCodeUnavailable, "cluster returned an empty fsid")
	}

	c.log.Info("connected", "fsid", c.fsid)
	return c, nil
}

// FSID returns the cluster id reported at connect time.
func (c *Client) FSID() string {
	return c.fsid
}

// Monitors returns the monitors named in ceph.conf.
func (c *Client) Monitors() []string {
	return c.monitors
}

// ConfigPath returns the ceph.conf path in use.
func (c *Client) ConfigPath() string {
	return c.cfg.ConfigPath
}

// CommandLine renders prefix as a ceph CLI invocation. The connect timeout
// is rounded up to whole seconds.
func (c *Client) CommandLine(prefix string, timeout time.Duration) string {
	secs := int((timeout + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return fmt.Sprintf("%s --conf %s --connect-timeout=%d %s",
		c.cfg.Binary, executor.Quote(c.cfg.ConfigPath), secs, prefix)
}

// Issue runs one control-plane command and returns its raw stdout.
// An unknown prefix is reported as ErrCodeUnsupported and an expired
// timeout as ErrCodeTimeout, so callers never compare error strings.
func (c *Client) Issue(ctx context.Context, prefix string, timeout time.Duration) ([]byte, error) {
	if strings.TrimSpace(prefix) == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "empty command prefix")
	}

	stdout, stderr, err := c.runner.Run(ctx, c.CommandLine(prefix, timeout))
	if err == nil {
		return stdout, nil
	}
	return nil, classify(ctx, prefix, stderr, err)
}

func classify(ctx context.Context, prefix string, stderr []byte, err error) error {
	errCtx := map[string]any{"prefix": prefix}
	if msg := strings.TrimSpace(string(stderr)); msg != "" {
		errCtx["stderr"] = msg
	}

	if ctx.Err() != nil {
		return errors.WrapWithContext(errors.ErrCodeTimeout, "command timed out", ctx.Err(), errCtx)
	}

	code, exited := executor.ExitCode(err)
	if !exited {
		return errors.WrapWithContext(errors.ErrCodeUnavailable, "failed to run ceph", err, errCtx)
	}

	lower := strings.ToLower(string(stderr))
	for _, marker := range unsupportedMarkers {
		if strings.Contains(lower, marker) {
			return errors.WrapWithContext(errors.ErrCodeUnsupported, "command not known", err, errCtx)
		}
	}

	for _, marker := range timeoutMarkers {
		if strings.Contains(lower, marker) {
			return errors.WrapWithContext(errors.ErrCodeTimeout, "command timed out", err, errCtx)
		}
	}

	switch code {
	case exitTimedOut:
		return errors.WrapWithContext(errors.ErrCodeTimeout, "command timed out", err, errCtx)
	case exitInvalid:
		return errors.WrapWithContext(errors.ErrCodeInvalidRequest, "command rejected", err, errCtx)
	default:
		return errors.WrapWithContext(errors.ErrCodeInternal, fmt.Sprintf("command exited with status %d", code), err, errCtx)
	}
}

// ParseMonitors extracts the monitor list from ceph.conf. "mon initial
// members" wins over "mon host"; ceph treats spaces and underscores in key
// names alike. A config with neither yields an empty list.
func ParseMonitors(conf []byte) ([]string, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		Insensitive:             true,
		AllowBooleanKeys:        true,
		SkipUnrecognizableLines: true,
	}, conf)
	if err != nil {
		return nil, err
	}

	global := f.Section("global")
	for _, key := range []string{"mon initial members", "mon host"} {
		for _, variant := range []string{key, strings.ReplaceAll(key, " ", "_")} {
			if !global.HasKey(variant) {
				continue
			}
			return splitList(global.Key(variant).String()), nil
		}
	}
	return nil, nil
}

func splitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.Trim(f, "[] "); f != "" {
			out = append(out, f)
		}
	}
	return out
}
