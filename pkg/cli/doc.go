// Package cli implements the command-line interface of the ceph-collect tool.
//
// # Overview
//
// ceph-collect captures one diagnostic snapshot of a Ceph cluster: system
// information from the host shell, control-plane queries against the
// monitors and ceph CLI output, redacted and packaged into a timestamped
// tar.gz for offline triage.
//
// # Commands
//
// collect - Collect a diagnostic archive (default command):
//
//	ceph-collect collect [--ceph-config-file FILE] [--results-dir DIR] [--timeout SECONDS]
//
// Connects to the cluster, runs the query table category by category and writes
// <results-dir>/ceph-collect_<timestamp>.tar.gz together with a manifest and a
// checksum file. The archive path is printed on stdout.
//
// show - Summarize a collected cluster report:
//
//	ceph-collect show [--dir DIR | --archive FILE [--verify=false]] [--format table|yaml|json]
//
// Loads cluster_health-report with the tolerant JSON loader, which accepts the
// nan and inf literals Ceph emits, and prints a short summary. An archive is
// checked against its .sha256 file before it is read.
//
// queries - Print the effective query table:
//
//	ceph-collect queries [--queries FILE] [--format yaml|json|table]
//
// # Collect Flags
//
//	--ceph-config-file   Ceph configuration file (default /etc/ceph/ceph.conf, env CEPH_CONF)
//	--results-dir        Archive destination (default: system temp directory)
//	--timeout            Seconds per Ceph operation (default 10)
//	--query-inactive-pg  Run "pg <id> query" for every inactive PG
//	--uncensored         Do not redact secrets
//	--verbose            Debug logging
//	--crash-info         Run "crash info <id>" for every crash (default true)
//	--parallel           Concurrent queries within a category (default 1)
//	--qps                Control-plane rate limit (default unlimited)
//	--push               Push the archive to oci://registry/repository[:tag]
//	--rook               Run every command in the Rook toolbox pod
//
// An empty --ceph-config-file, --results-dir or --timeout prints usage and the
// run continues with the default value.
//
// # Environment Variables
//
//	LOG_LEVEL                     Logging verbosity (debug, info, warn, error)
//	CEPH_COLLECT_LOG_FORMAT       Log format (json, text)
//	CEPH_CONF                     Ceph configuration file
//	CEPH_DIAGNOSTICS_COLLECT_DIR  Extracted collection directory read by show
//	KUBECONFIG                    Kubeconfig for --rook and cm:// outputs
//
// # Exit Codes
//
//	0  Success
//	1  Connection failure, archive failure, invalid arguments or cancellation
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/NVIDIA/ceph-diagnostics/pkg/cli.version=1.0.0'"
package cli
