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

// Package collector runs the diagnostic query table against a Ceph cluster
// and builds an ordered dataset of command outputs.
//
// # Query Table
//
// The table is YAML, embedded as queries.yaml and overridable with
// LoadTable. It lists categories in collection order; each category holds
// named queries executed in declaration order:
//
//	categories:
//	  - name: osd_info
//	    queries:
//	      - name: tree
//	        kind: mon
//	        command: osd tree
//
// Query kinds select the execution path: shell and file go through the
// shell, ceph wraps the ceph CLI, mon issues a control-plane command through
// the connected handle, fsid and version report values captured at connect
// time. units lists systemd units through Collector.Units (see the systemd
// sub-package) and is unsupported without one. Text output from the shell gets one trailing newline; control-plane
// output is stored as returned.
//
// # Gating
//
// A query with min_version runs only when the cluster major version detected
// from version_query is at least that value. A query or category with a
// precondition (when, requires) runs only when the precondition holds.
// Queries not attempted are absent from the dataset and listed in
// Run.Skipped; a category whose precondition fails is still present, empty.
//
// # Failure Model
//
// Non-zero exits, timeouts and unsupported commands are soft: the item is
// stored with its status and collection continues. Only a fatal executor
// error or a cancelled context aborts Collect.
//
// Usage:
//
//	c := &collector.Collector{
//	    Executor: ex,
//	    Vars:     collector.Vars{CephBinary: "ceph", ConfigPath: "/etc/ceph/ceph.conf", Timeout: 10 * time.Second},
//	    FSID:     client.FSID(),
//	}
//	run, err := c.Collect(ctx)
package collector
