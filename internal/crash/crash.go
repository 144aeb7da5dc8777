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
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	applog "github.com/raghul017/Prism/internal/log"
	"github.com/raghul017/Prism/internal/prefs"
	"github.com/raghul017/Prism/internal/storage"
	"github.com/raghul017/Prism/internal/telemetry"
	"github.com/raghul017/Prism/internal/version"
)

// ReportsDirName holds crash reports inside the data directory.
const ReportsDirName = "crash-reports"

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// Target is what Recover saves before exiting. Both fields are optional.
type Target struct {
	Store   *prefs.Store
	DataDir string
}

// Recover captures a panic, logs it with the stack, writes a crash report
// and saves the current preferences so no edit is lost.
//
// Usage: defer crash.Recover(crash.Target{Store: s, DataDir: dir})
func Recover(t Target) {
	if r := recover(); r != nil {
		l := applog.WithComponent("crash")
		stack := debug.Stack()
		l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

		reportPath, _ := writeReport(t, r, stack)
		if t.Store != nil && t.DataDir != "" {
			if err := storage.SavePreferences(t.DataDir, t.Store.Get()); err != nil {
				l.Error("autosave preferences failed", slog.Any("err", err))
			} else {
				l.Info("preferences saved after crash", slog.String("path", storage.PreferencesPath(t.DataDir)))
			}
		}

		if _, err := fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath); err != nil {
			l.Error("failed to write crash message to stderr", slog.Any("err", err))
		}
		if _, err := fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH); err != nil {
			l.Error("failed to write version info to stderr", slog.Any("err", err))
		}
		exitFn(2)
	}
}

func writeReport(t Target, panicVal any, stack []byte) (string, error) {
	dir := os.TempDir()
	if t.DataDir != "" {
		dir = filepath.Join(t.DataDir, ReportsDirName)
		_ = os.MkdirAll(dir, 0o755)
	}
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(dir, fmt.Sprintf("crash-%s.log", stamp))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return path, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			applog.WithComponent("crash").Error("failed to close crash report file", slog.Any("err", err), slog.String("path", path))
		}
	}()

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "Prism Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if t.Store != nil {
		// Settings only; code and images stay private.
		r := t.Store.Get()
		_, _ = fmt.Fprintf(&buf, "Theme: %s Font: %s Mode: %s Lines: %d\n", r.Theme, r.FontStyle, r.ContentMode, prefs.LineCount(r.Code))
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	if _, err := f.Write(buf.Bytes()); err != nil {
		return path, err
	}
	_ = f.Sync()

	telemetry.UploadCrash(buf.Bytes())
	return path, nil
}
