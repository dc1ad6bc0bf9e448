/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package stylepack bundles a workspace's styles directory into a portable
// zip and installs such packs into other workspaces. The styles directory
// holds reference images and prompt snippets that writers share between
// projects to keep storyboard generation consistent.
package stylepack

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	applog "goscreenwriter/internal/log"
)

// DirName is the styles directory inside a workspace.
const DirName = "styles"

const manifestName = "stylepack.manifest.txt"

// Export zips <workspace>/styles into destZip. The archive keeps the
// directory structure and carries a small manifest at the root for human
// inspection. An empty or missing styles directory still produces a valid
// archive containing only the manifest.
func Export(workspace, destZip string) error {
	l := applog.WithOperation(applog.WithComponent("stylepack"), "export").With(slog.String("workspace", workspace))
	if strings.TrimSpace(workspace) == "" {
		return errors.New("workspace is required")
	}
	if strings.TrimSpace(destZip) == "" {
		return errors.New("destination path is required")
	}
	stylesDir := filepath.Join(workspace, DirName)
	if err := os.MkdirAll(stylesDir, 0o755); err != nil {
		return fmt.Errorf("ensure styles dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(destZip), 0o755); err != nil {
		return fmt.Errorf("ensure zip dir: %w", err)
	}
	_ = os.Remove(destZip)

	zf, err := os.Create(destZip)
	if err != nil {
		return fmt.Errorf("create zip: %w", err)
	}
	defer func() { _ = zf.Close() }()
	zw := zip.NewWriter(zf)
	defer func() { _ = zw.Close() }()

	manifest := fmt.Sprintf("Go Screenwriter Style Pack\nCreated: %s\nWorkspace: %s\n\nContents mirror the workspace's /%s directory.\n",
		time.Now().Format(time.RFC3339), workspace, DirName)
	w, err := zw.Create(manifestName)
	if err != nil {
		return fmt.Errorf("add manifest: %w", err)
	}
	if _, err := w.Write([]byte(manifest)); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	added := 0
	err = filepath.WalkDir(stylesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(workspace, path)
		if err != nil {
			return err
		}
		fw, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		if _, err := io.Copy(fw, f); err != nil {
			return err
		}
		added++
		return nil
	})
	if err != nil {
		l.Error("zip build failed", slog.Any("err", err))
		return fmt.Errorf("build zip: %w", err)
	}
	l.Info("style pack exported", slog.Int("files", added), slog.String("zip", destZip))
	return nil
}

// Install extracts a pack into the workspace's styles directory. Existing
// files are never overwritten; they are skipped and not counted. Returns
// the number of files installed.
func Install(workspace, packZip string) (int, error) {
	l := applog.WithOperation(applog.WithComponent("stylepack"), "install").With(slog.String("workspace", workspace))
	if strings.TrimSpace(workspace) == "" {
		return 0, errors.New("workspace is required")
	}
	if strings.TrimSpace(packZip) == "" {
		return 0, errors.New("pack path is required")
	}
	stylesDir := filepath.Join(workspace, DirName)
	if err := os.MkdirAll(stylesDir, 0o755); err != nil {
		return 0, fmt.Errorf("ensure styles dir: %w", err)
	}

	r, err := zip.OpenReader(packZip)
	if err != nil {
		return 0, fmt.Errorf("open pack: %w", err)
	}
	defer func() { _ = r.Close() }()

	installed := 0
	for _, f := range r.File {
		name := filepath.ToSlash(f.Name)
		if name == manifestName {
			continue
		}
		// Entries must resolve inside the styles directory.
		if strings.Contains(name, "..") {
			l.Warn("skip unsafe entry", slog.String("name", name))
			continue
		}
		if !strings.HasPrefix(name, DirName+"/") {
			name = DirName + "/" + name
		}
		target := filepath.Join(workspace, filepath.FromSlash(name))
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return installed, err
			}
			continue
		}
		if _, err := os.Stat(target); err == nil {
			l.Warn("skip existing file", slog.String("path", target))
			continue
		}
		if err := extractFile(f, target); err != nil {
			return installed, err
		}
		installed++
	}
	l.Info("style pack installed", slog.Int("files", installed))
	return installed, nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
