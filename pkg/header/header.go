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

package header

import (
	"time"
)

// APIVersion is the schema version written by this release.
const APIVersion = "ceph-diagnostics.nvidia.com/v1alpha1"

// Kind represents the type of document written next to a collection.
type Kind string

const (
	KindCollectionManifest Kind = "CollectionManifest"
	KindClusterSummary     Kind = "ClusterSummary"
	KindQueryTable         Kind = "QueryTable"
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	return string(k)
}

// IsValid checks if the Kind is one of the recognized kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindCollectionManifest, KindClusterSummary, KindQueryTable:
		return true
	default:
		return false
	}
}

// Option is a functional option for configuring Header instances.
type Option func(*Header)

// WithMetadata returns an Option that adds a metadata key-value pair to the Header.
func WithMetadata(key, value string) Option {
	return func(h *Header) {
		if h.Metadata == nil {
			h.Metadata = make(map[string]string)
		}
		h.Metadata[key] = value
	}
}

// WithTimestamp overrides the generation timestamp.
func WithTimestamp(t time.Time) Option {
	return func(h *Header) {
		WithMetadata("timestamp", t.UTC().Format(time.RFC3339))(h)
	}
}

// New creates a Header of the given kind stamped with the current time and
// the tool version, when known.
func New(kind Kind, version string, opts ...Option) *Header {
	h := &Header{
		Kind:       kind,
		APIVersion: APIVersion,
		Metadata: map[string]string{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	}
	if version != "" {
		h.Metadata["version"] = version
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Header is the Kubernetes-style preamble of every document the tool writes.
type Header struct {
	Kind       Kind              `json:"kind,omitempty" yaml:"kind,omitempty"`
	APIVersion string            `json:"apiVersion,omitempty" yaml:"apiVersion,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// GetHeader returns the header itself, so documents embedding a Header
// expose it.
func (h *Header) GetHeader() *Header {
	return h
}
