/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package crash

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/raghul017/Prism/internal/prefs"
)

func TestWriteReportCreatesFileInTemp(t *testing.T) {
	path, err := writeReport(Target{}, "boom", []byte("stacktrace"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	defer os.Remove(path)
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, "Prism Crash Report") {
		t.Fatalf("report header missing")
	}
	if !strings.Contains(s, "Panic: boom") {
		t.Fatalf("panic content missing: %s", s)
	}
}

func TestWriteReportOmitsCode(t *testing.T) {
	dir := t.TempDir()
	s := prefs.NewStore(prefs.Defaults())
	s.SetCode("secret := 42")

	path, err := writeReport(Target{Store: s, DataDir: dir}, "kaboom", []byte("stack"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	if filepath.Dir(path) != filepath.Join(dir, ReportsDirName) {
		t.Fatalf("expected report under data dir, got %s", path)
	}
	b, _ := os.ReadFile(path)
	if strings.Contains(string(b), "secret") {
		t.Fatalf("report must not contain code")
	}
	if !strings.Contains(string(b), "Theme: hyper") {
		t.Fatalf("settings summary missing: %s", b)
	}
}
