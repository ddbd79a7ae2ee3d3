// Package archive packages a collected dataset into a single timestamped
// gzip-compressed tar file.
//
// Every dataset item becomes one member named "<category>-<item>" under a
// top-level directory "<prefix>_<YYYYMMDD_HHMMSS>". Members appear in
// dataset order and carry a uniform mode and modification time, so equal
// datasets produce archives differing only in their timestamp.
//
// Two sidecars are written next to the archive:
//
//	ceph-collect_20260112_103000.tar.gz
//	ceph-collect_20260112_103000.manifest.yaml    per-member status, size and sha256
//	ceph-collect_20260112_103000.tar.gz.sha256    sha256sum -c compatible
//
// The manifest records what the archive alone cannot: whether an empty
// member is an empty result or a failed query, and which queries were
// skipped by version or precondition gating.
package archive
