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

package oci

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"
	oras "oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content"
	"oras.land/oras-go/v2/content/oci"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/credentials"

	"github.com/NVIDIA/ceph-diagnostics/pkg/errors"
	"github.com/NVIDIA/ceph-diagnostics/pkg/logging"
)

// Media types of a pushed collection.
const (
	ArtifactType      = "application/vnd.nvidia.ceph-diagnostics.collection.v1"
	MediaTypeArchive  = "application/vnd.nvidia.ceph-diagnostics.archive.v1.tar+gzip"
	MediaTypeManifest = "application/vnd.nvidia.ceph-diagnostics.manifest.v1+yaml"
	MediaTypeChecksum = "text/plain"
)

// Layer is one file added to the artifact.
type Layer struct {
	Path      string
	MediaType string
}

// PackageOptions configures local packaging.
type PackageOptions struct {
	Layers []Layer
	// StorePath is the OCI image layout directory to create or update.
	StorePath string
	Tag       string
	// Annotations are added to the manifest.
	Annotations map[string]string
}

// PackageResult describes a packaged artifact.
type PackageResult struct {
	Digest    string
	Tag       string
	StorePath string
}

// Package writes the layers and an OCI 1.1 artifact manifest into a local
// OCI image layout and tags it. Each layer is titled with its file name.
func Package(ctx context.Context, opts PackageOptions) (*PackageResult, error) {
	if err := ValidateTag(opts.Tag); err != nil {
		return nil, err
	}
	if len(opts.Layers) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "nothing to package")
	}
	if opts.StorePath == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "store path is required")
	}

	store, err := oci.New(opts.StorePath)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to create OCI layout", err)
	}

	layers := make([]ociv1.Descriptor, 0, len(opts.Layers))
	for _, l := range opts.Layers {
		data, err := os.ReadFile(l.Path)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to read %s", l.Path), err)
		}
		desc := content.NewDescriptorFromBytes(l.MediaType, data)
		desc.Annotations = map[string]string{ociv1.AnnotationTitle: filepath.Base(l.Path)}

		exists, err := store.Exists(ctx, desc)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, "failed to query OCI layout", err)
		}
		if !exists {
			if err := store.Push(ctx, desc, bytes.NewReader(data)); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to add %s", l.Path), err)
			}
		}
		layers = append(layers, desc)
	}

	manifestDesc, err := oras.PackManifest(ctx, store, oras.PackManifestVersion1_1, ArtifactType, oras.PackManifestOptions{
		Layers:              layers,
		ManifestAnnotations: opts.Annotations,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to pack manifest", err)
	}
	if err := store.Tag(ctx, manifestDesc, opts.Tag); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to tag manifest", err)
	}

	return &PackageResult{
		Digest:    manifestDesc.Digest.String(),
		Tag:       opts.Tag,
		StorePath: opts.StorePath,
	}, nil
}

// PushOptions configures pushing to a registry.
type PushOptions struct {
	Reference *Reference
	// PlainHTTP uses HTTP instead of HTTPS for the registry connection.
	PlainHTTP bool
	// InsecureTLS skips TLS certificate verification.
	InsecureTLS bool
}

// PushResult describes a pushed artifact.
type PushResult struct {
	Digest    string
	Reference string
}

// PushFromStore copies a tagged artifact from a local OCI layout to the
// registry, authenticating with Docker credentials when available.
func PushFromStore(ctx context.Context, storePath string, opts PushOptions) (*PushResult, error) {
	if opts.Reference == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "registry reference is required")
	}
	if err := ValidateTag(opts.Reference.Tag); err != nil {
		return nil, err
	}

	store, err := oci.New(storePath)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to open OCI layout", err)
	}

	repo, err := remote.NewRepository(fmt.Sprintf("%s/%s", opts.Reference.Registry, opts.Reference.Repository))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "failed to initialize remote repository", err)
	}
	repo.PlainHTTP = opts.PlainHTTP
	repo.Client = createAuthClient(opts.PlainHTTP, opts.InsecureTLS)

	tag := opts.Reference.Tag
	desc, err := oras.Copy(ctx, store, tag, repo, tag, oras.DefaultCopyOptions)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable, "failed to push artifact to registry", err)
	}
	return &PushResult{
		Digest:    desc.Digest.String(),
		Reference: opts.Reference.ImageReference(),
	}, nil
}

// Publish packages files into a layout under workDir and pushes it to ref.
func Publish(ctx context.Context, workDir string, layers []Layer, annotations map[string]string, opts PushOptions, logger *slog.Logger) (*PushResult, error) {
	log := logging.OrDiscard(logger)
	if opts.Reference == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "registry reference is required")
	}

	pkg, err := Package(ctx, PackageOptions{
		Layers:      layers,
		StorePath:   filepath.Join(workDir, "oci-layout"),
		Tag:         opts.Reference.Tag,
		Annotations: annotations,
	})
	if err != nil {
		return nil, err
	}
	log.Debug("artifact packaged", "store", pkg.StorePath, "digest", pkg.Digest)

	res, err := PushFromStore(ctx, pkg.StorePath, opts)
	if err != nil {
		return nil, err
	}
	log.Info("artifact pushed", "reference", res.Reference, "digest", res.Digest)
	return res, nil
}

func createAuthClient(plainHTTP, insecureTLS bool) *auth.Client {
	credStore, _ := credentials.NewStoreFromDocker(credentials.StoreOptions{})

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !plainHTTP && insecureTLS {
		if transport.TLSClientConfig == nil {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
		} else {
			transport.TLSClientConfig.InsecureSkipVerify = true //nolint:gosec
		}
	}

	client := &auth.Client{
		Client: &http.Client{Transport: transport},
		Cache:  auth.NewCache(),
	}
	if credStore != nil {
		client.Credential = credentials.Credential(credStore)
	}
	return client
}
