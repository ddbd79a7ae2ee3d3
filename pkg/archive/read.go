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
	"archive/tar"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/NVIDIA/ceph-diagnostics/pkg/archive/checksum"
	"github.com/NVIDIA/ceph-diagnostics/pkg/errors"
)

// Member is one file read back from an archive.
type Member struct {
	// Name is the flat "<category>-<item>" name, without the top-level directory.
	Name    string
	Content []byte
}

// Read returns the members of an archive in stored order.
func Read(path string) ([]Member, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, fmt.Sprintf("archive %s not found", path), err)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to open archive", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformed, "archive is not gzip-compressed", err)
	}
	defer gz.Close()

	var members []Member
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return members, nil
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformed, "failed to read tar stream", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		content, err := io.ReadAll(tr)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformed, fmt.Sprintf("failed to read %s", hdr.Name), err)
		}
		_, name, ok := strings.Cut(hdr.Name, "/")
		if !ok {
			name = hdr.Name
		}
		members = append(members, Member{Name: name, Content: content})
	}
}

// ReadMember returns the content of a single member.
func ReadMember(path, name string) ([]byte, error) {
	members, err := Read(path)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if m.Name == name {
			return m.Content, nil
		}
	}
	return nil, errors.New(errors.ErrCodeNotFound, fmt.Sprintf("member %s not in %s", name, path))
}

// ManifestPath returns where Archiver.Write put the manifest of the archive
// at path.
func ManifestPath(path string) string {
	return strings.TrimSuffix(path, Extension) + ManifestExtension
}

// Verify checks the archive at path against its checksum sidecar. It
// returns ErrCodeNotFound when the archive has no sidecar and
// ErrCodeMalformed when a digest does not match.
func Verify(path string) error {
	sidecar := path + checksum.Extension
	if _, err := os.Stat(sidecar); err != nil {
		if os.IsNotExist(err) {
			return errors.Wrap(errors.ErrCodeNotFound, fmt.Sprintf("checksum file %s not found", sidecar), err)
		}
		return errors.Wrap(errors.ErrCodeInternal, "failed to stat checksum file", err)
	}
	if err := checksum.Verify(sidecar); err != nil {
		return errors.Wrap(errors.ErrCodeMalformed, fmt.Sprintf("archive %s failed verification", path), err)
	}
	return nil
}
