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

package defaults

import "time"

// Command timeouts for collection operations.
const (
	// CommandTimeout is the default timeout for a single control-plane query.
	CommandTimeout = 10 * time.Second

	// ShellTimeout bounds a single shell invocation. Ceph commands issued through
	// the shell carry their own --connect-timeout on top of this.
	ShellTimeout = 2 * time.Minute

	// ConnectTimeout bounds the initial control-plane handshake.
	ConnectTimeout = 30 * time.Second

	// VersionQueryTimeout bounds the cluster version lookup used by the feature gate.
	VersionQueryTimeout = 30 * time.Second

	// ProcessWaitDelay bounds waiting for output pipes after a timed-out
	// command's process group has been killed.
	ProcessWaitDelay = 2 * time.Second
)

// Publishing timeouts. A collection run has no overall deadline; every
// call carries its own.
const (
	// PushTimeout bounds publishing an archive to an OCI registry.
	PushTimeout = 5 * time.Minute
)

// Kubernetes timeouts for Rook toolbox operations.
const (
	// K8sPodLookupTimeout is the timeout for locating the toolbox pod.
	K8sPodLookupTimeout = 30 * time.Second
)

// Paths and names.
const (
	// CephConfigPath is the well-known location of the cluster configuration file.
	CephConfigPath = "/etc/ceph/ceph.conf"

	// CephBinary is the ceph CLI executable used for shell and control-plane queries.
	CephBinary = "ceph"

	// ArchivePrefix prefixes the archive file name and its top-level directory.
	ArchivePrefix = "ceph-collect"

	// TimestampLayout formats the run-scoped timestamp token.
	TimestampLayout = "20060102_150405"

	// CollectDirEnv names the directory holding extracted diagnostic files.
	CollectDirEnv = "CEPH_DIAGNOSTICS_COLLECT_DIR"

	// ReportMember is the archive member read by the viewer.
	ReportMember = "cluster_health-report"

	// RookNamespace is the namespace Rook deploys its toolbox into by default.
	RookNamespace = "rook-ceph"

	// RookToolboxSelector selects the Rook toolbox pod.
	RookToolboxSelector = "app=rook-ceph-tools"
)

// Loader limits.
const (
	// LoaderLookAheadLines is how many leading lines the tolerant loader inspects
	// for the first JSON brace or bracket.
	LoaderLookAheadLines = 10
)

// Version thresholds.
const (
	// MimicMajorVersion is the first release with `ceph versions` and `ceph config dump`.
	MimicMajorVersion = 13
)
