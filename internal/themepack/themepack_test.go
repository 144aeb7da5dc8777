/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package themepack

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const dusk = "key: dusk\nname: Dusk\nbackground: ['#ff0000', '#0000ff']\nglow: '#ff00ff'\n"

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()
}

func TestExportAndInstall(t *testing.T) {
	src := t.TempDir()
	if err := os.WriteFile(filepath.Join(src, "dusk.yaml"), []byte(dusk), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "broken.yaml"), []byte("background: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	zipPath := filepath.Join(t.TempDir(), "out", "themes.zip")
	n, err := Export(src, zipPath)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 theme exported, got %d", n)
	}

	dst := filepath.Join(t.TempDir(), "themes")
	keys, err := Install(dst, zipPath)
	if err != nil {
		t.Fatalf("install: %v", err)
	}
	if len(keys) != 1 || keys[0] != "dusk" {
		t.Fatalf("installed keys %v", keys)
	}
	if _, err := os.Stat(filepath.Join(dst, "dusk.yaml")); err != nil {
		t.Fatalf("theme file missing: %v", err)
	}

	// Second install skips the existing file.
	keys, err = Install(dst, zipPath)
	if err != nil || len(keys) != 0 {
		t.Fatalf("reinstall should skip: %v %v", keys, err)
	}
}

func TestInstall_FlattensTraversal(t *testing.T) {
	zipPath := filepath.Join(t.TempDir(), "evil.zip")
	writeZip(t, zipPath, map[string]string{"../../escape.yaml": dusk})
	dst := t.TempDir()
	keys, err := Install(dst, zipPath)
	if err != nil || len(keys) != 1 {
		t.Fatalf("install: %v %v", keys, err)
	}
	if _, err := os.Stat(filepath.Join(dst, "escape.yaml")); err != nil {
		t.Fatalf("entry should land inside themes dir: %v", err)
	}
}

func TestInstall_EmptyPack(t *testing.T) {
	zipPath := filepath.Join(t.TempDir(), "empty.zip")
	writeZip(t, zipPath, map[string]string{ManifestName: "hi"})
	if _, err := Install(t.TempDir(), zipPath); !errors.Is(err, ErrEmptyPack) {
		t.Fatalf("want ErrEmptyPack, got %v", err)
	}
}

func TestExport_MissingDirWritesManifestOnly(t *testing.T) {
	zipPath := filepath.Join(t.TempDir(), "none.zip")
	n, err := Export(filepath.Join(t.TempDir(), "missing"), zipPath)
	if err != nil || n != 0 {
		t.Fatalf("export: %d %v", n, err)
	}
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if len(r.File) != 1 || r.File[0].Name != ManifestName {
		t.Fatalf("expected manifest only")
	}
}
