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
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/NVIDIA/ceph-diagnostics/pkg/archive/checksum"
	"github.com/NVIDIA/ceph-diagnostics/pkg/collector"
	"github.com/NVIDIA/ceph-diagnostics/pkg/dataset"
	"github.com/NVIDIA/ceph-diagnostics/pkg/defaults"
	"github.com/NVIDIA/ceph-diagnostics/pkg/errors"
	"github.com/NVIDIA/ceph-diagnostics/pkg/logging"
)

const (
	// Extension of the produced archive.
	Extension = ".tar.gz"
	// memberMode is written for every member so archives of equal datasets
	// differ only in their timestamp.
	memberMode = 0o644
)

// Archiver packages a collected dataset into one gzip-compressed tar file
// in Dir and writes the manifest and checksum sidecars next to it.
type Archiver struct {
	// Dir is the destination directory. Defaults to os.TempDir().
	Dir string
	// Prefix names the archive and its top-level directory.
	Prefix string
	// ToolVersion is recorded in the manifest.
	ToolVersion string
	// Now returns the run timestamp. Defaults to time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

// Result locates the files written for one run.
type Result struct {
	// Path is the archive file.
	Path string
	// Base is the archive's top-level directory name.
	Base         string
	ManifestPath string
	ChecksumPath string
	Manifest     *Manifest
}

// Info is the run-level data recorded in the manifest.
type Info struct {
	FSID     string
	Monitors []string
}

// Base returns "<prefix>_<timestamp>" for t.
func Base(prefix string, t time.Time) string {
	return prefix + "_" + t.Format(defaults.TimestampLayout)
}

// Write stages every dataset item as "<category>-<item>", then archives the
// staged files in dataset order under a single top-level directory. The
// staging directory is removed on every path. On a write failure the
// partial archive is removed and the error returned.
//
// Two runs within the same second produce the same archive name; the later
// one overwrites the earlier.
func (a *Archiver) Write(ctx context.Context, run *collector.Run, info Info) (*Result, error) {
	log := logging.OrDiscard(a.Logger)
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	dir := a.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	prefix := a.Prefix
	if prefix == "" {
		prefix = defaults.ArchivePrefix
	}

	ts := now()
	base := Base(prefix, ts)
	res := &Result{
		Path: filepath.Join(dir, base+Extension),
		Base: base,
	}

	staging, err := os.MkdirTemp("", base+"-")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to create staging directory", err)
	}
	defer func() {
		if rerr := os.RemoveAll(staging); rerr != nil {
			log.Warn("failed to remove staging directory", "path", staging, "error", rerr)
		}
	}()

	entries, err := stage(ctx, staging, run.Dataset)
	if err != nil {
		return nil, err
	}

	if err := writeArchive(ctx, res.Path, base, staging, entries, ts); err != nil {
		return nil, err
	}
	log.Info("archive written", "path", res.Path, "members", len(entries))

	res.Manifest = newManifest(a.ToolVersion, base, ts, run, info, entries)
	if res.ManifestPath, err = res.Manifest.write(filepath.Join(dir, base+ManifestExtension)); err != nil {
		return nil, err
	}
	if res.ChecksumPath, err = checksum.WriteSidecar(ctx, res.Path); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to write archive checksum", err)
	}
	return res, nil
}

// stage writes one file per item and returns the manifest entries in
// dataset order.
func stage(ctx context.Context, dir string, ds *dataset.Dataset) ([]Entry, error) {
	var entries []Entry
	err := ds.Walk(func(category string, item dataset.Item) error {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, "archiving cancelled", err)
		}
		name := dataset.EntryName(category, item.Name)
		if err := os.WriteFile(filepath.Join(dir, name), item.Content, 0o600); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to stage %s", name), err)
		}
		entries = append(entries, Entry{
			Member:   name,
			Category: category,
			Item:     item.Name,
			Status:   item.Status,
			Size:     int64(len(item.Content)),
			SHA256:   checksum.Bytes(item.Content),
			Command:  item.Command,
		})
		return nil
	})
	return entries, err
}

// writeArchive removes the archive file again when any step fails.
func writeArchive(ctx context.Context, path, base, staging string, entries []Entry, ts time.Time) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to create archive", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrap(errors.ErrCodeInternal, "failed to close archive", cerr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	gz := gzip.NewWriter(f)
	gz.Name = base + ".tar"
	gz.ModTime = ts.UTC().Truncate(time.Second)
	tw := tar.NewWriter(gz)

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, "archiving cancelled", err)
		}
		if err := addMember(tw, base, staging, e, ts); err != nil {
			return err
		}
	}

	if err := tw.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to finish tar stream", err)
	}
	if err := gz.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to finish gzip stream", err)
	}
	return nil
}

func addMember(tw *tar.Writer, base, staging string, e Entry, ts time.Time) error {
	src, err := os.Open(filepath.Join(staging, e.Member))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to open staged %s", e.Member), err)
	}
	defer src.Close()

	hdr := &tar.Header{
		Typeflag: tar.TypeReg,
		Name:     base + "/" + e.Member,
		Mode:     memberMode,
		Size:     e.Size,
		ModTime:  ts.UTC().Truncate(time.Second),
		Format:   tar.FormatPAX,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to write header for %s", e.Member), err)
	}
	if _, err := io.Copy(tw, src); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to write %s", e.Member), err)
	}
	return nil
}
