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

package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/ceph-diagnostics/pkg/collector"
	"github.com/NVIDIA/ceph-diagnostics/pkg/dataset"
	"github.com/NVIDIA/ceph-diagnostics/pkg/errors"
	"github.com/NVIDIA/ceph-diagnostics/pkg/header"
	"github.com/NVIDIA/ceph-diagnostics/pkg/serializer"
	"github.com/NVIDIA/ceph-diagnostics/pkg/version"
)

// ManifestExtension is appended to the archive base name for the manifest.
const ManifestExtension = ".manifest.yaml"

// Entry describes one archive member. The archive itself cannot tell an
// empty result from a failed query; Status can.
type Entry struct {
	Member   string         `json:"member" yaml:"member"`
	Category string         `json:"category" yaml:"category"`
	Item     string         `json:"item" yaml:"item"`
	Status   dataset.Status `json:"status" yaml:"status"`
	Size     int64          `json:"size" yaml:"size"`
	SHA256   string         `json:"sha256" yaml:"sha256"`
	Command  string         `json:"command,omitempty" yaml:"command,omitempty"`
}

// Cluster identifies the collected cluster.
type Cluster struct {
	FSID     string   `json:"fsid,omitempty" yaml:"fsid,omitempty"`
	Version  string   `json:"version,omitempty" yaml:"version,omitempty"`
	Release  string   `json:"release,omitempty" yaml:"release,omitempty"`
	Monitors []string `json:"monitors,omitempty" yaml:"monitors,omitempty"`
}

// Manifest is written next to the archive as <base>.manifest.yaml.
type Manifest struct {
	header.Header `json:",inline" yaml:",inline"`

	RunID    string           `json:"runId" yaml:"runId"`
	Base     string           `json:"base" yaml:"base"`
	Started  time.Time        `json:"started" yaml:"started"`
	Duration string           `json:"duration" yaml:"duration"`
	Cluster  Cluster          `json:"cluster" yaml:"cluster"`
	Entries  []Entry          `json:"entries" yaml:"entries"`
	Skipped  []collector.Skip `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

func newManifest(toolVersion, base string, ts time.Time, run *collector.Run, info Info, entries []Entry) *Manifest {
	m := &Manifest{
		Header:   *header.New(header.KindCollectionManifest, toolVersion, header.WithTimestamp(ts)),
		RunID:    uuid.NewString(),
		Base:     base,
		Started:  run.Started.UTC(),
		Duration: run.Duration.Round(time.Millisecond).String(),
		Cluster: Cluster{
			FSID:     info.FSID,
			Monitors: info.Monitors,
		},
		Entries: entries,
		Skipped: run.Skipped,
	}
	if run.Gate.Known() {
		m.Cluster.Version = run.Gate.Version.String()
		m.Cluster.Release = version.ReleaseName(run.Gate.Major)
	}
	return m
}

// Entry returns the entry for an archive member name.
func (m *Manifest) Entry(member string) (Entry, bool) {
	for _, e := range m.Entries {
		if e.Member == member {
			return e, true
		}
	}
	return Entry{}, false
}

func (m *Manifest) write(path string) (string, error) {
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, "failed to create manifest", err)
	}
	if err := m.writeTo(f); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}

// writeTo serializes m and closes w, reporting the close error.
func (m *Manifest) writeTo(w io.WriteCloser) (err error) {
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = errors.Wrap(errors.ErrCodeInternal, "failed to close manifest", cerr)
		}
	}()
	if err := serializer.NewWriter(serializer.FormatYAML, w).Serialize(context.Background(), m); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to write manifest", err)
	}
	return nil
}

// LoadManifest reads a manifest written by Archiver.Write.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, fmt.Sprintf("manifest %s not found", path), err)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to read manifest", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformed, "failed to decode manifest", err)
	}
	if m.Kind != header.KindCollectionManifest {
		return nil, errors.New(errors.ErrCodeMalformed, fmt.Sprintf("unexpected manifest kind %q", m.Kind))
	}
	return &m, nil
}
