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
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/NVIDIA/ceph-diagnostics/pkg/dataset"
	"github.com/NVIDIA/ceph-diagnostics/pkg/defaults"
	"github.com/NVIDIA/ceph-diagnostics/pkg/logging"
)

// Runner executes one shell command line and returns its captured streams.
// A non-zero exit is reported as an error implementing ExitStatus() int.
type Runner interface {
	Run(ctx context.Context, command string) (stdout, stderr []byte, err error)
}

// ControlPlane issues administrative queries against a connected cluster.
// Errors carry pkg/errors codes: ErrCodeUnsupported for an unknown prefix,
// ErrCodeTimeout when the call outlived its timeout.
type ControlPlane interface {
	Issue(ctx context.Context, prefix string, timeout time.Duration) ([]byte, error)
	// CommandLine renders prefix as a ceph CLI invocation for the shell.
	CommandLine(prefix string, timeout time.Duration) string
}

// Kind labels the command duration metric.
type Kind string

const (
	KindShell Kind = "shell"
	KindCeph  Kind = "ceph"
	KindMon   Kind = "mon"
)

// Result is the outcome of one command. Content is empty for every status
// except StatusOK; Err holds the soft failure cause.
type Result struct {
	Content  []byte
	Status   dataset.Status
	Err      error
	Duration time.Duration
}

// Executor issues shell and control-plane commands with per-call timeouts.
type Executor struct {
	Runner       Runner
	ControlPlane ControlPlane

	// Timeout bounds every control-plane call. Defaults to defaults.CommandTimeout.
	Timeout time.Duration
	// ShellTimeout bounds every shell command. Defaults to defaults.ShellTimeout.
	ShellTimeout time.Duration
	// Limiter throttles control-plane traffic, including ceph CLI shell calls.
	// A nil limiter does not throttle.
	Limiter *rate.Limiter

	Logger *slog.Logger
}

// NewLimiter returns a limiter allowing qps calls per second, or nil when
// qps is not positive.
func NewLimiter(qps float64) *rate.Limiter {
	if qps <= 0 {
		return nil
	}
	burst := int(qps)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(qps), burst)
}

func (e *Executor) timeout() time.Duration {
	if e.Timeout > 0 {
		return e.Timeout
	}
	return defaults.CommandTimeout
}

func (e *Executor) shellTimeout() time.Duration {
	if e.ShellTimeout > 0 {
		return e.ShellTimeout
	}
	return defaults.ShellTimeout
}

func (e *Executor) logger() *slog.Logger {
	return logging.OrDiscard(e.Logger)
}

// Cancelled reports whether ctx was cancelled by its owner. An expired
// deadline is not a cancellation: calls made under it end as soft timeouts.
func Cancelled(ctx context.Context) bool {
	return stderrors.Is(ctx.Err(), context.Canceled)
}

func (e *Executor) wait(ctx context.Context) error {
	if e.Limiter == nil {
		return nil
	}
	return e.Limiter.Wait(ctx)
}

func observe(kind Kind, start time.Time) time.Duration {
	d := time.Since(start)
	commandDuration.WithLabelValues(string(kind)).Observe(d.Seconds())
	return d
}
