/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package themepack shares user themes as zip archives: export bundles the
// YAML files of the themes directory, install validates and unpacks them.
package themepack

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/raghul017/Prism/internal/catalog"
	applog "github.com/raghul017/Prism/internal/log"
	"github.com/raghul017/Prism/internal/version"
)

const (
	ManifestName = "themepack.manifest.txt"
	// maxThemeBytes bounds a single theme file read from an archive.
	maxThemeBytes = 64 << 10
)

var ErrEmptyPack = errors.New("theme pack contains no themes")

func isThemeFile(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// Export zips every theme YAML in themesDir into destZipPath, plus a small
// manifest for humans. Invalid themes are skipped with a warning. It
// returns the number of themes written.
func Export(themesDir, destZipPath string) (int, error) {
	l := applog.WithOperation(applog.WithComponent("themepack"), "export").With(slog.String("dir", themesDir))
	if strings.TrimSpace(themesDir) == "" {
		return 0, errors.New("themesDir is required")
	}
	if strings.TrimSpace(destZipPath) == "" {
		return 0, errors.New("destZipPath is required")
	}
	ents, err := os.ReadDir(themesDir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return 0, fmt.Errorf("read themes dir: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(destZipPath), 0o755); err != nil {
		return 0, fmt.Errorf("ensure zip dir: %w", err)
	}
	// On Windows, remove destination if present before create
	_ = os.Remove(destZipPath)
	zf, err := os.Create(destZipPath)
	if err != nil {
		return 0, fmt.Errorf("create zip: %w", err)
	}
	defer func() { _ = zf.Close() }()
	zw := zip.NewWriter(zf)

	var keys []string
	added := 0
	for _, e := range ents {
		if e.IsDir() || !isThemeFile(e.Name()) {
			continue
		}
		b, err := os.ReadFile(filepath.Join(themesDir, e.Name()))
		if err != nil {
			return added, err
		}
		t, err := catalog.ParseTheme(e.Name(), b)
		if err != nil {
			l.Warn("skip invalid theme", slog.String("file", e.Name()), slog.Any("err", err))
			continue
		}
		fw, err := zw.Create(e.Name())
		if err != nil {
			return added, err
		}
		if _, err := fw.Write(b); err != nil {
			return added, err
		}
		keys = append(keys, t.Key)
		added++
	}

	manifest := fmt.Sprintf("Prism Theme Pack\nCreated: %s\nPrism: %s\nThemes: %s\n",
		time.Now().Format(time.RFC3339), version.String(), strings.Join(keys, ", "))
	w, err := zw.Create(ManifestName)
	if err != nil {
		return added, fmt.Errorf("add manifest: %w", err)
	}
	if _, err := w.Write([]byte(manifest)); err != nil {
		return added, fmt.Errorf("write manifest: %w", err)
	}
	if err := zw.Close(); err != nil {
		return added, fmt.Errorf("finish zip: %w", err)
	}
	l.Info("theme pack exported", slog.Int("themes", added), slog.String("zip", destZipPath))
	return added, nil
}

// Install extracts the theme files of packZipPath into themesDir. Entries
// are flattened to their base name; non-theme files and invalid themes are
// skipped, and existing files are never overwritten. It returns the keys of
// the installed themes.
func Install(themesDir, packZipPath string) ([]string, error) {
	l := applog.WithOperation(applog.WithComponent("themepack"), "install").With(slog.String("dir", themesDir))
	if strings.TrimSpace(themesDir) == "" {
		return nil, errors.New("themesDir is required")
	}
	r, err := zip.OpenReader(packZipPath)
	if err != nil {
		return nil, fmt.Errorf("open pack: %w", err)
	}
	defer func() { _ = r.Close() }()
	if err := os.MkdirAll(themesDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure themes dir: %w", err)
	}

	var installed []string
	seen := 0
	for _, f := range r.File {
		if f.FileInfo().IsDir() || !isThemeFile(f.Name) {
			continue
		}
		seen++
		// path.Base drops any directory part, including "../" traversal.
		name := path.Base(strings.ReplaceAll(f.Name, `\`, "/"))
		target := filepath.Join(themesDir, name)
		if _, err := os.Stat(target); err == nil {
			l.Warn("skip existing file", slog.String("path", target))
			continue
		}
		b, err := readEntry(f)
		if err != nil {
			return installed, err
		}
		t, err := catalog.ParseTheme(name, b)
		if err != nil {
			l.Warn("skip invalid theme", slog.String("file", name), slog.Any("err", err))
			continue
		}
		if err := os.WriteFile(target, b, 0o644); err != nil {
			return installed, err
		}
		installed = append(installed, t.Key)
	}
	if seen == 0 {
		return nil, ErrEmptyPack
	}
	l.Info("theme pack installed", slog.Int("themes", len(installed)))
	return installed, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	b, err := io.ReadAll(io.LimitReader(rc, maxThemeBytes+1))
	if err != nil {
		return nil, err
	}
	if len(b) > maxThemeBytes {
		return nil, fmt.Errorf("%s: theme file too large", f.Name)
	}
	return b, nil
}
