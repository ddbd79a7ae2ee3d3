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

package collector

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/ceph-diagnostics/pkg/dataset"
	"github.com/NVIDIA/ceph-diagnostics/pkg/enumerate"
	"github.com/NVIDIA/ceph-diagnostics/pkg/errors"
	"github.com/NVIDIA/ceph-diagnostics/pkg/executor"
	"github.com/NVIDIA/ceph-diagnostics/pkg/gate"
	"github.com/NVIDIA/ceph-diagnostics/pkg/logging"
	"github.com/NVIDIA/ceph-diagnostics/pkg/redact"
)

// Executor is the subset of executor.Executor the collector drives.
type Executor interface {
	RunShell(ctx context.Context, command string) (executor.Result, error)
	RunCephShell(ctx context.Context, command string) (executor.Result, error)
	RunControlPlane(ctx context.Context, prefix string, raw bool) executor.Result
}

// UnitLister reports systemd unit states for glob patterns.
type UnitLister interface {
	ListUnits(ctx context.Context, patterns []string) ([]byte, error)
}

// Skip records a query that was not attempted and why.
type Skip struct {
	Category string `json:"category" yaml:"category"`
	Query    string `json:"query" yaml:"query"`
	Reason   string `json:"reason" yaml:"reason"`
}

// ReasonDeadline is recorded for queries not attempted because the
// collection deadline had passed.
const ReasonDeadline = "deadline exceeded"

// Run is the outcome of one collection.
type Run struct {
	Dataset  *dataset.Dataset
	Gate     *gate.Gate
	Skipped  []Skip
	Started  time.Time
	Duration time.Duration
}

// Collector walks the query table category by category and builds a Dataset.
type Collector struct {
	Executor Executor
	Table    *Table
	Vars     Vars

	// FSID is recorded for fsid queries.
	FSID string
	// Gate is detected from Table.VersionQuery when nil.
	Gate *gate.Gate
	// Redactor defaults to a censoring redactor.
	Redactor *redact.Redactor
	// Units answers units queries. Without it they are unsupported.
	Units UnitLister

	// Parallel bounds concurrent queries within one category. Values below
	// one run queries sequentially.
	Parallel int

	QueryInactivePG bool
	CrashInfo       bool

	Logger *slog.Logger
}

func (c *Collector) logger() *slog.Logger {
	return logging.OrDiscard(c.Logger)
}

// Collect runs every category in table order. Per-item failures are soft:
// the item is stored empty and its status recorded. Only a fatal executor
// error or a cancelled context aborts the run. When a deadline on ctx
// expires, calls still running end as timeouts, the remaining categories
// are recorded as skipped and the partial run is returned.
func (c *Collector) Collect(ctx context.Context) (*Run, error) {
	if c.Executor == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "collector has no executor")
	}
	if c.Table == nil {
		t, err := DefaultTable()
		if err != nil {
			return nil, err
		}
		c.Table = t
	}
	if c.Redactor == nil {
		c.Redactor = redact.New(true)
	}

	log := c.logger()
	run := &Run{Dataset: dataset.New(), Started: time.Now()}
	defer func() {
		run.Duration = time.Since(run.Started)
		runDuration.Observe(run.Duration.Seconds())
	}()

	run.Gate = c.Gate
	if run.Gate == nil {
		g, err := gate.Detect(ctx, c.Executor, c.Vars.Render(c.Table.VersionQuery), c.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to detect cluster version: %w", err)
		}
		run.Gate = g
	}

	for _, spec := range c.Table.Categories {
		if executor.Cancelled(ctx) {
			return nil, errors.Wrap(errors.ErrCodeInternal, "collection cancelled", ctx.Err())
		}

		if _, err := run.Dataset.Schedule(spec.Name); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "failed to schedule category", err)
		}

		if ctx.Err() != nil {
			log.Warn("deadline exceeded, skipping category", "category", spec.Name)
			for _, q := range spec.Queries {
				run.Skipped = append(run.Skipped, Skip{Category: spec.Name, Query: q.Name, Reason: ReasonDeadline})
			}
			continue
		}
		log.Info("collecting", "category", spec.Name)

		ok, err := c.check(ctx, spec.Requires, run.Dataset)
		if err != nil {
			return nil, err
		}
		if !ok {
			log.Debug("skipping category", "category", spec.Name, "precondition", spec.Requires)
			for _, q := range spec.Queries {
				run.Skipped = append(run.Skipped, Skip{Category: spec.Name, Query: q.Name, Reason: "precondition " + spec.Requires})
			}
			continue
		}

		if err := c.collectCategory(ctx, spec, run); err != nil {
			return nil, err
		}
	}

	log.Info("collection complete",
		"categories", len(run.Dataset.Categories()),
		"items", run.Dataset.Len(),
		"skipped", len(run.Skipped),
		"duration", time.Since(run.Started).Round(time.Millisecond))
	return run, nil
}

// collectCategory runs the queries of one category, possibly concurrently,
// and stores the results in declaration order.
func (c *Collector) collectCategory(ctx context.Context, spec CategorySpec, run *Run) error {
	results := make([][]dataset.Item, len(spec.Queries))
	skips := make([]string, len(spec.Queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(c.Parallel, 1))
	for i, q := range spec.Queries {
		g.Go(func() error {
			items, reason, err := c.runQuery(gctx, spec.Name, q, run)
			if err != nil {
				return fmt.Errorf("%s/%s: %w", spec.Name, q.Name, err)
			}
			results[i], skips[i] = items, reason
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, q := range spec.Queries {
		if skips[i] != "" {
			run.Skipped = append(run.Skipped, Skip{Category: spec.Name, Query: q.Name, Reason: skips[i]})
		}
		for _, item := range results[i] {
			if err := run.Dataset.Put(spec.Name, item); err != nil {
				c.logger().Warn("dropping item", "category", spec.Name, "item", item.Name, "error", err)
				continue
			}
			itemsTotal.WithLabelValues(spec.Name, string(item.Status)).Inc()
		}
	}
	return nil
}

// runQuery executes one query and its enumeration. A non-empty reason means
// the query was skipped.
func (c *Collector) runQuery(ctx context.Context, category string, q Query, run *Run) ([]dataset.Item, string, error) {
	log := c.logger().With("category", category, "item", q.Name)

	if !run.Gate.SupportsMinVersion(q.MinVersion) {
		log.Debug("skipping query below minimum version", "minVersion", q.MinVersion, "clusterVersion", run.Gate.Major)
		return nil, fmt.Sprintf("requires version %d", q.MinVersion), nil
	}
	ok, err := c.check(ctx, q.When, run.Dataset)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		log.Debug("skipping query", "precondition", q.When)
		return nil, "precondition " + q.When, nil
	}

	command := c.Vars.Render(q.Command)
	res, err := c.execute(ctx, q, command, run)
	if err != nil {
		return nil, "", err
	}

	content := res.Content
	if res.Status == dataset.StatusOK && len(q.Redact) > 0 {
		if content, err = c.Redactor.Apply(content, q.Redact...); err != nil {
			return nil, "", errors.Wrap(errors.ErrCodeInternal, "redaction failed", err)
		}
	}

	items := []dataset.Item{{Name: q.Name, Content: content, Status: res.Status, Command: command}}
	if q.Enumerate == "" {
		return items, "", nil
	}

	spec, _ := c.Table.Enumerator(q.Enumerate)
	ok, err = c.check(ctx, spec.When, run.Dataset)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		log.Debug("skipping enumeration", "enumerator", spec.Name, "precondition", spec.When)
		return items, "", nil
	}

	en := &enumerate.Enumerator{Logger: log}
	fetch := func(ctx context.Context, command string) (executor.Result, error) {
		res, err := c.Executor.RunCephShell(ctx, command)
		res.Content = withNewline(res.Content)
		return res, err
	}
	expanded, err := en.Expand(ctx, res.Content, spec.Spec, fetch)
	if err != nil {
		return nil, "", err
	}
	return append(items, expanded...), "", nil
}

// execute dispatches on the query kind. Text produced through the shell
// gets a single trailing newline when it is not empty.
func (c *Collector) execute(ctx context.Context, q Query, command string, run *Run) (executor.Result, error) {
	switch q.Kind {
	case KindShell:
		res, err := c.Executor.RunShell(ctx, command)
		res.Content = withNewline(res.Content)
		return res, err
	case KindCeph:
		res, err := c.Executor.RunCephShell(ctx, command)
		res.Content = withNewline(res.Content)
		return res, err
	case KindMon:
		return c.Executor.RunControlPlane(ctx, command, q.Binary), nil
	case KindFile:
		res, err := c.Executor.RunShell(ctx, "cat "+command)
		res.Content = withNewline(res.Content)
		return res, err
	case KindUnits:
		return c.listUnits(ctx, command)
	case KindFSID:
		return textResult(c.FSID), nil
	case KindVersion:
		res := textResult(string(run.Gate.Banner))
		if res.Status == dataset.StatusOK && run.Gate.Status != "" {
			res.Status = run.Gate.Status
		}
		return res, nil
	default:
		return executor.Result{}, errors.New(errors.ErrCodeInvalidRequest, fmt.Sprintf("unknown query kind %q", q.Kind))
	}
}

func (c *Collector) listUnits(ctx context.Context, patterns string) (executor.Result, error) {
	if c.Units == nil {
		return executor.Result{Status: dataset.StatusUnsupported}, nil
	}
	out, err := c.Units.ListUnits(ctx, strings.Fields(patterns))
	if err != nil {
		if executor.Cancelled(ctx) {
			return executor.Result{}, errors.Wrap(errors.ErrCodeInternal, "collection cancelled", ctx.Err())
		}
		if ctx.Err() != nil {
			return executor.Result{Status: dataset.StatusTimeout, Err: ctx.Err()}, nil
		}
		c.logger().Info("cannot list systemd units", "patterns", patterns, "error", err)
		return executor.Result{Status: dataset.StatusFailed, Err: err}, nil
	}
	return textResult(string(out)), nil
}

func textResult(s string) executor.Result {
	if s == "" {
		return executor.Result{Status: dataset.StatusEmpty}
	}
	return executor.Result{Content: withNewline([]byte(s)), Status: dataset.StatusOK}
}

func withNewline(b []byte) []byte {
	if len(b) == 0 || b[len(b)-1] == '\n' {
		return b
	}
	out := make([]byte, len(b)+1)
	copy(out, b)
	out[len(b)] = '\n'
	return out
}
