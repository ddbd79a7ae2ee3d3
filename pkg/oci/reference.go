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
	"fmt"
	"strings"

	"github.com/distribution/reference"

	"github.com/NVIDIA/ceph-diagnostics/pkg/errors"
)

// URIScheme prefixes registry targets passed to --push
// (e.g. "oci://ghcr.io/org/ceph-diagnostics:tag").
const URIScheme = "oci://"

// Reference is a parsed registry target.
type Reference struct {
	// Registry is the registry host (e.g. "ghcr.io", "localhost:5000").
	Registry string
	// Repository is the repository path (e.g. "nvidia/ceph-diagnostics").
	Repository string
	// Tag is empty when the target had none; the caller applies a default.
	Tag string
}

// ParseReference parses an oci:// target.
func ParseReference(target string) (*Reference, error) {
	if !strings.HasPrefix(target, URIScheme) {
		return nil, errors.New(errors.ErrCodeInvalidRequest, fmt.Sprintf("push target must start with %s", URIScheme))
	}

	ref, err := reference.ParseNormalizedNamed(strings.TrimPrefix(target, URIScheme))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid OCI reference", err)
	}
	if _, ok := ref.(reference.Digested); ok {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "push target cannot be a digest reference")
	}

	r := &Reference{
		Registry:   reference.Domain(ref),
		Repository: reference.Path(ref),
	}
	if tagged, ok := ref.(reference.Tagged); ok {
		r.Tag = tagged.Tag()
	}
	return r, nil
}

// String returns "oci://registry/repository[:tag]".
func (r *Reference) String() string {
	return URIScheme + r.ImageReference()
}

// ImageReference returns the reference without the oci:// scheme.
func (r *Reference) ImageReference() string {
	if r.Tag == "" {
		return fmt.Sprintf("%s/%s", r.Registry, r.Repository)
	}
	return fmt.Sprintf("%s/%s:%s", r.Registry, r.Repository, r.Tag)
}

// WithTag returns a copy of the reference with tag set.
func (r *Reference) WithTag(tag string) *Reference {
	c := *r
	c.Tag = tag
	return &c
}

// ValidateTag checks tag against the registry tag grammar.
func ValidateTag(tag string) error {
	// TagRegexp is not anchored.
	if tag == "" || reference.TagRegexp.FindString(tag) != tag {
		return errors.New(errors.ErrCodeInvalidRequest, fmt.Sprintf("invalid tag %q", tag))
	}
	return nil
}
