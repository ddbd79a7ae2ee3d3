// Package header provides the common preamble of documents written by
// ceph-collect: the collection manifest, the cluster summary printed by
// "show" and the effective query table printed by "queries".
//
//	kind: CollectionManifest
//	apiVersion: ceph-diagnostics.nvidia.com/v1alpha1
//	metadata:
//	  timestamp: "2026-01-12T10:30:00Z"
//	  version: v0.3.0
//
// Timestamps use RFC3339 in UTC.
package header
