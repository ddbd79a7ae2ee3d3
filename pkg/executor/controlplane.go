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
	"time"

	"github.com/NVIDIA/ceph-diagnostics/pkg/dataset"
	"github.com/NVIDIA/ceph-diagnostics/pkg/errors"
)

// RunControlPlane issues prefix through the ControlPlane handle. Failures
// never abort the run: an unknown prefix yields StatusUnsupported, an expired
// timeout StatusTimeout and anything else StatusFailed, all with empty
// content. Raw keeps binary payloads such as monmaps byte-exact.
func (e *Executor) RunControlPlane(ctx context.Context, prefix string, raw bool) Result {
	log := e.logger().With("kind", string(KindMon), "prefix", prefix)
	if e.ControlPlane == nil {
		return Result{Status: dataset.StatusFailed, Err: errors.New(errors.ErrCodeInternal, "no control plane configured")}
	}
	if err := e.wait(ctx); err != nil {
		return Result{Status: dataset.StatusFailed, Err: err}
	}

	log.Debug("issuing control-plane command")
	callCtx, cancel := context.WithTimeout(ctx, e.timeout())
	defer cancel()

	start := time.Now()
	out, err := e.ControlPlane.Issue(callCtx, prefix, e.timeout())
	res := Result{Duration: observe(KindMon, start)}

	if err != nil {
		res.Err = err
		switch errors.CodeOf(err) {
		case errors.ErrCodeUnsupported:
			res.Status = dataset.StatusUnsupported
			log.Info("command not known")
		case errors.ErrCodeTimeout:
			res.Status = dataset.StatusTimeout
			log.Warn("command timed out", "timeout", e.timeout())
		default:
			if callCtx.Err() != nil && !Cancelled(ctx) {
				res.Status = dataset.StatusTimeout
				log.Warn("command timed out", "timeout", e.timeout())
				break
			}
			res.Status = dataset.StatusFailed
			log.Warn("command failed", "error", err)
		}
		return res
	}

	if !raw {
		out = trim(out)
	}
	res.Content = out
	res.Status = dataset.StatusOK
	if len(out) == 0 {
		res.Status = dataset.StatusEmpty
		log.Info("command returned no output")
	}
	return res
}
