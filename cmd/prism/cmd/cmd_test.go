/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/raghul017/Prism/internal/prefs"
	"github.com/raghul017/Prism/internal/storage"
)

// runCLI executes the root command with an isolated config file and data dir.
func runCLI(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("PRISM_CONFIG", filepath.Join(t.TempDir(), "config.yaml"))
	t.Setenv("PRISM_TELEMETRY_OPT_IN", "")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(append([]string{"--data-dir", dataDir, "--log-level", "error"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestRender_BatchWritesEveryPairAndRecordsHistory(t *testing.T) {
	data := t.TempDir()
	outDir := t.TempDir()
	src := writeFile(t, t.TempDir(), "main.go", "package main\n\nfunc main() {}\n")

	out, err := runCLI(t, data, "render", src, "--defaults", "--set", "theme=candy",
		"-f", "png,svg", "-p", "1x", "-p", "2x", "-o", outDir, "--name", "shot")
	if err != nil {
		t.Fatalf("render: %v\n%s", err, out)
	}
	for _, name := range []string{"shot.png", "shot.svg", "shot-2x.png", "shot-2x.svg"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
		if !strings.Contains(out, name) {
			t.Errorf("output does not list %s:\n%s", name, out)
		}
	}

	h, err := storage.OpenHistory(data)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	shots, err := h.List(t.Context(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(shots) != 4 || shots[0].Title != "main.go" || shots[0].Theme != "candy" {
		t.Fatalf("unexpected history: %+v", shots)
	}
}

func TestRender_RejectsBadSet(t *testing.T) {
	if _, err := runCLI(t, t.TempDir(), "preview", "--set", "padding"); err == nil {
		t.Fatalf("expected an error for --set without a value")
	}
}

func TestPrefs_SetShowReset(t *testing.T) {
	data := t.TempDir()
	if out, err := runCLI(t, data, "prefs", "set", "padding", "32", "windowFrame", "windows"); err != nil {
		t.Fatalf("set: %v\n%s", err, out)
	}
	rec, _, err := storage.LoadPreferences(data)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Padding != 32 || rec.WindowFrame != prefs.FrameWindows {
		t.Fatalf("not saved: %+v", rec)
	}
	out, err := runCLI(t, data, "prefs", "show", "padding")
	if err != nil || strings.TrimSpace(out) != "32" {
		t.Fatalf("show padding = %q, %v", out, err)
	}
	if _, err := runCLI(t, data, "prefs", "set", "padding"); err == nil {
		t.Fatalf("expected odd arguments to fail")
	}
	if _, err := runCLI(t, data, "prefs", "reset"); err != nil {
		t.Fatal(err)
	}
	rec, _, _ = storage.LoadPreferences(data)
	if rec.Padding != prefs.Defaults().Padding {
		t.Fatalf("reset kept padding %d", rec.Padding)
	}
}

func TestImportThenLinkRoundTrip(t *testing.T) {
	data := t.TempDir()
	r := prefs.Defaults()
	r.Title = "shared title"
	r.Code = "print(1)"
	link := prefs.ShareLink("https://prism.test/", r)
	if out, err := runCLI(t, data, "import", link); err != nil {
		t.Fatalf("import: %v\n%s", err, out)
	}
	out, err := runCLI(t, data, "link")
	if err != nil {
		t.Fatal(err)
	}
	got, ok, err := prefs.ImportURL(strings.TrimSpace(out))
	if err != nil || !ok || got.Title != "shared title" || got.Code != "print(1)" {
		t.Fatalf("link did not round trip: %q %+v", out, got)
	}
}

func TestDetect_Shebang(t *testing.T) {
	src := writeFile(t, t.TempDir(), "script", "#!/usr/bin/env python3\nprint('hi')\n")
	out, err := runCLI(t, t.TempDir(), "detect", src)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "python") {
		t.Fatalf("detect = %q", out)
	}
}

func TestThemesListsBuiltins(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "themes")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "hyper") {
		t.Fatalf("themes output lacks the default theme:\n%s", out)
	}
}

func TestThemepackInstallEmptyArchiveFails(t *testing.T) {
	data := t.TempDir()
	zip := filepath.Join(t.TempDir(), "pack.zip")
	if out, err := runCLI(t, data, "themepack", "export", zip); err != nil {
		t.Fatalf("export: %v\n%s", err, out)
	}
	if _, err := runCLI(t, t.TempDir(), "themepack", "install", zip); err == nil {
		t.Fatalf("expected an empty pack to be rejected")
	}
}

func TestSplitList(t *testing.T) {
	got := splitList([]string{"png, svg", "", "pdf"})
	if strings.Join(got, "|") != "png|svg|pdf" {
		t.Fatalf("splitList = %v", got)
	}
}

func TestUIStartLink(t *testing.T) {
	if got, err := uiStartLink("", []string{"https://prism.test/?title=a"}); err != nil || got != "https://prism.test/?title=a" {
		t.Fatalf("argument: got %q err=%v", got, err)
	}
	if got, err := uiStartLink("?title=b", nil); err != nil || got != "?title=b" {
		t.Fatalf("flag: got %q err=%v", got, err)
	}
	if _, err := uiStartLink("?title=b", []string{"?title=c"}); err == nil {
		t.Fatalf("expected an error for two different links")
	}
}
