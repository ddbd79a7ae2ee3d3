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

package executor

import (
	"bytes"
	"context"
	stderrors "errors"
	"strings"
	"time"
	"unicode"

	"github.com/NVIDIA/ceph-diagnostics/pkg/dataset"
	"github.com/NVIDIA/ceph-diagnostics/pkg/errors"
)

// exitStatuser matches exit errors from k8s.io/utils/exec and client-go.
type exitStatuser interface {
	ExitStatus() int
}

// ExitCode extracts the process exit status from err.
func ExitCode(err error) (int, bool) {
	var es exitStatuser
	if stderrors.As(err, &es) {
		return es.ExitStatus(), true
	}
	return 0, false
}

// RunShell executes command through the Runner. Output is stdout with
// trailing whitespace removed. A command that cannot be started, or a run
// cancelled by the caller, returns an error and must abort collection.
// Everything else is soft: a timeout, including an expired deadline on ctx,
// yields StatusTimeout, a non-zero exit without output StatusFailed, empty
// output StatusEmpty.
func (e *Executor) RunShell(ctx context.Context, command string) (Result, error) {
	return e.runShell(ctx, KindShell, command)
}

// RunCephShell runs a ceph CLI subcommand through the shell, sharing the
// control-plane rate limit.
func (e *Executor) RunCephShell(ctx context.Context, command string) (Result, error) {
	if e.ControlPlane == nil {
		return Result{}, errors.New(errors.ErrCodeInternal, "no control plane configured")
	}
	if err := e.wait(ctx); err != nil {
		if Cancelled(ctx) {
			return Result{}, errors.Wrap(errors.ErrCodeInternal, "rate limiter wait aborted", err)
		}
		return Result{Status: dataset.StatusTimeout, Err: errors.Wrap(errors.ErrCodeTimeout, "no time left for command", err)}, nil
	}
	return e.runShell(ctx, KindCeph, e.ControlPlane.CommandLine(command, e.timeout()))
}

func (e *Executor) runShell(ctx context.Context, kind Kind, command string) (Result, error) {
	log := e.logger().With("kind", string(kind), "command", command)
	log.Debug("running command")

	callCtx, cancel := context.WithTimeout(ctx, e.shellTimeout())
	defer cancel()

	start := time.Now()
	stdout, stderr, err := e.Runner.Run(callCtx, command)
	res := Result{Duration: observe(kind, start)}

	if err != nil {
		if Cancelled(ctx) {
			return res, errors.Wrap(errors.ErrCodeInternal, "collection cancelled", ctx.Err())
		}
		if callCtx.Err() != nil {
			res.Status = dataset.StatusTimeout
			res.Err = errors.WrapWithContext(errors.ErrCodeTimeout, "command timed out", err,
				map[string]any{"command": command, "timeout": e.shellTimeout().String()})
			log.Warn("command timed out", "timeout", e.shellTimeout())
			return res, nil
		}
		code, exited := ExitCode(err)
		if !exited {
			return res, errors.WrapWithContext(errors.ErrCodeInternal, "failed to start command", err,
				map[string]any{"command": command})
		}
		log.Debug("command exited non-zero", "exitCode", code, "stderr", string(trim(stderr)))
		res.Err = err
	}

	res.Content = trim(stdout)
	switch {
	case len(res.Content) > 0:
		res.Status = dataset.StatusOK
		res.Err = nil
	case res.Err != nil:
		res.Status = dataset.StatusFailed
		log.Info("command failed", "error", res.Err)
	default:
		res.Status = dataset.StatusEmpty
		log.Info("command returned no output")
	}
	return res, nil
}

func trim(b []byte) []byte {
	return bytes.TrimRightFunc(b, unicode.IsSpace)
}

// Quote renders s as a single POSIX shell word.
func Quote(s string) string {
	if s == "" {
		return "''"
	}
	safe := true
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || strings.ContainsRune("@%+=:,./-_", r)) {
			safe = false
			break
		}
	}
	if safe {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
