/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package log

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"
)

func TestFromEnvAndGetenv(t *testing.T) {
	t.Setenv("PRISM_LOG_LEVEL", "warn")
	t.Setenv("PRISM_LOG_FORMAT", "json")
	t.Setenv("PRISM_LOG_SOURCE", "true")
	// PRISM_LOG_FILE intentionally unset

	opts := FromEnv()
	if opts.Level != "warn" || opts.Format != "json" || !opts.AddSource || opts.File != "" {
		t.Fatalf("FromEnv mismatch: %+v", opts)
	}

	// Also verify getenv default fallback when var missing
	if err := os.Unsetenv("SOME_UNSET_VAR"); err != nil {
		t.Fatalf("Unsetenv error: %v", err)
	}
	if v := getenv("SOME_UNSET_VAR", "fallback"); v != "fallback" {
		t.Fatalf("getenv fallback failed: %q", v)
	}
}

func TestStderrHandler_Formats(t *testing.T) {
	var buf bytes.Buffer
	h := stderrHandler(&buf, "text", slog.LevelWarn, false)
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatalf("info should not be enabled at warn level")
	}
	slog.New(h).WithGroup("grp").Error("boom", slog.Int("n", 42))
	out := buf.String()
	if !strings.Contains(out, "msg=boom") || !strings.Contains(out, "grp.n=42") {
		t.Fatalf("text output = %q", out)
	}

	buf.Reset()
	slog.New(stderrHandler(&buf, "JSON", slog.LevelInfo, false)).Info("hi")
	if !strings.HasPrefix(buf.String(), "{") {
		t.Fatalf("json output = %q", buf.String())
	}

	buf.Reset()
	slog.New(stderrHandler(&buf, "", slog.LevelInfo, false)).Info("plain")
	if !strings.Contains(buf.String(), "plain") || strings.Contains(buf.String(), "msg=") {
		t.Fatalf("console output should come from the charm handler: %q", buf.String())
	}
}

func TestTee_RespectsEachLevel(t *testing.T) {
	var warn, debug bytes.Buffer
	h := tee{
		slog.NewTextHandler(&warn, &slog.HandlerOptions{Level: slog.LevelWarn}),
		slog.NewTextHandler(&debug, &slog.HandlerOptions{Level: slog.LevelDebug}),
	}
	l := slog.New(h).With(slog.String("k", "v"))
	l.Info("only debug")
	l.Warn("both")
	if strings.Contains(warn.String(), "only debug") || !strings.Contains(warn.String(), "both") {
		t.Fatalf("warn sink = %q", warn.String())
	}
	if !strings.Contains(debug.String(), "only debug") || !strings.Contains(debug.String(), "k=v") {
		t.Fatalf("debug sink = %q", debug.String())
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{"debug": slog.LevelDebug, " WARNING ": slog.LevelWarn, "error": slog.LevelError, "bogus": slog.LevelInfo} {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestContextWithAccumulates(t *testing.T) {
	ctx := ContextWith(nil, slog.String("a", "1"))
	ctx = ContextWith(ctx, slog.String("b", "2"))
	attrs := attrsFromContext(ctx)
	if len(attrs) != 2 || attrs[0].Key != "a" || attrs[1].Key != "b" {
		t.Fatalf("unexpected attrs: %v", attrs)
	}
}

func TestCharmHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	h := newCharmHandler(&buf, slog.LevelWarn, false)
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatalf("info should be filtered at warn")
	}
	slog.New(h).Warn("careful", slog.String("k", "v"))
	if !strings.Contains(buf.String(), "careful") {
		t.Fatalf("charm handler output missing message: %q", buf.String())
	}
}
