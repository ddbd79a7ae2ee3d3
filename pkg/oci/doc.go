// Package oci publishes a collection to an OCI registry.
//
// The archive, its manifest and its checksum sidecar become the layers of
// a single OCI 1.1 artifact with artifact type
// "application/vnd.nvidia.ceph-diagnostics.collection.v1". Each layer is
// titled with its file name, so "oras pull" restores the original files.
//
// Publishing packages into a local OCI image layout first, then copies the
// tagged manifest to the registry:
//
//	ref, err := oci.ParseReference("oci://ghcr.io/acme/ceph-diagnostics:20260112_103005")
//	if err != nil {
//	    return err
//	}
//	res, err := oci.Publish(ctx, workDir, layers, nil, oci.PushOptions{Reference: ref}, logger)
//
// Registry credentials come from the Docker configuration
// (~/.docker/config.json) and its credential helpers. PlainHTTP and
// InsecureTLS are meant for local development registries.
package oci
