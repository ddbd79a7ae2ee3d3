/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package checksum provides SHA256 digests for archive members and the
// sidecar checksum file written next to each collection archive.
//
// The sidecar format is compatible with sha256sum:
//
//	sha256sum -c ceph-collect_20260112_103000.tar.gz.sha256
package checksum
