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
	"regexp"
	"slices"
	"strings"

	"github.com/NVIDIA/ceph-diagnostics/pkg/dataset"
)

// Precondition names usable in the query table.
const (
	PreLSBRelease      = "lsb-release"
	PreRGWPools        = "rgw-pools"
	PreQueryInactivePG = "query-inactive-pg"
	PreCrashInfo       = "crash-info"
)

var rgwPoolPattern = regexp.MustCompile(`(?m)^pool .* application rgw`)

// precondition decides whether a category, query or enumerator runs. Only
// a fatal executor error is returned.
type precondition func(ctx context.Context, c *Collector, ds *dataset.Dataset) (bool, error)

var preconditions = map[string]precondition{
	PreLSBRelease:      hasLSBRelease,
	PreRGWPools:        hasRGWPools,
	PreQueryInactivePG: func(_ context.Context, c *Collector, _ *dataset.Dataset) (bool, error) { return c.QueryInactivePG, nil },
	PreCrashInfo:       func(_ context.Context, c *Collector, _ *dataset.Dataset) (bool, error) { return c.CrashInfo, nil },
}

// IsPrecondition reports whether name is a known precondition.
func IsPrecondition(name string) bool {
	_, ok := preconditions[name]
	return ok
}

// Preconditions returns the known precondition names, sorted.
func Preconditions() []string {
	names := make([]string, 0, len(preconditions))
	for n := range preconditions {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// hasLSBRelease checks that dpkg lists the lsb-release package, so
// lsb_release is only run where it is installed.
func hasLSBRelease(ctx context.Context, c *Collector, _ *dataset.Dataset) (bool, error) {
	res, err := c.Executor.RunShell(ctx, "dpkg -l | grep lsb")
	if err != nil {
		return false, err
	}
	return strings.Contains(string(res.Content), "lsb-release"), nil
}

// hasRGWPools scans the OSD dump for a pool tagged with the rgw application.
// The osd_info dump collected earlier in the run is reused when present.
func hasRGWPools(ctx context.Context, c *Collector, ds *dataset.Dataset) (bool, error) {
	var dump []byte
	if osd, ok := ds.Category("osd_info"); ok {
		if item, ok := osd.Get("dump"); ok && item.Status == dataset.StatusOK {
			dump = item.Content
		}
	}
	if dump == nil {
		res, err := c.Executor.RunCephShell(ctx, "osd dump")
		if err != nil {
			return false, err
		}
		dump = res.Content
	}
	return rgwPoolPattern.Match(dump), nil
}

func (c *Collector) check(ctx context.Context, name string, ds *dataset.Dataset) (bool, error) {
	if name == "" {
		return true, nil
	}
	p, ok := preconditions[name]
	if !ok {
		return false, nil
	}
	return p(ctx, c, ds)
}
