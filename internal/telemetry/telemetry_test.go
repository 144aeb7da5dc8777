/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package telemetry

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestClient_EventAndUploadCrash(t *testing.T) {
	var mu sync.Mutex
	var events [][]byte
	crashes := make(chan []byte, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		events = append(events, b)
		mu.Unlock()
	})
	mux.HandleFunc("/crash", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		crashes <- b
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(Config{OptIn: true, EventsURL: srv.URL + "/events", CrashURL: srv.URL + "/crash", Timeout: 2 * time.Second, InstallID: "abc"})
	defer c.Close()
	if !c.Enabled() {
		t.Fatalf("expected client to be enabled")
	}

	c.Event(EventExport, map[string]any{"format": "png"})
	c.Flush(context.Background())

	mu.Lock()
	defer mu.Unlock()
	if len(events) == 0 {
		t.Fatalf("expected an event to be sent")
	}
	var m map[string]any
	if err := json.Unmarshal(events[0], &m); err != nil {
		t.Fatalf("bad event json: %v", err)
	}
	if m["name"] != EventExport || m["format"] != "png" || m["install"] != "abc" {
		t.Fatalf("unexpected payload: %v", m)
	}

	c.UploadCrash([]byte("STACKTRACE"))
	select {
	case b := <-crashes:
		if string(b) != "STACKTRACE" {
			t.Fatalf("crash body %q", b)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("crash upload not received")
	}
}

func TestClient_DisabledSendsNothing(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	c := New(Config{OptIn: false, EventsURL: srv.URL, CrashURL: srv.URL})
	defer c.Close()
	c.Event("x", nil)
	c.UploadCrash([]byte("x"))

	on := New(Config{OptIn: true, EventsURL: srv.URL})
	defer on.Close()
	on.Event("", nil)
	on.Flush(context.Background())

	time.Sleep(50 * time.Millisecond)
	if n := atomic.LoadInt32(&hits); n != 0 {
		t.Fatalf("expected no requests, got %d", n)
	}
}

func TestClient_SendErrorsAreSwallowed(t *testing.T) {
	c := New(Config{OptIn: true, EventsURL: "http://127.0.0.1:1/events", CrashURL: "http://127.0.0.1:1/crash", Timeout: 50 * time.Millisecond, DebugLogging: true})
	defer c.Close()
	c.Event("err", map[string]any{"a": 1})
	c.Flush(context.Background())
	c.UploadCrash([]byte("oops"))
}

func TestFromEnv(t *testing.T) {
	t.Setenv("PRISM_TELEMETRY_OPT_IN", "yes")
	t.Setenv("PRISM_TELEMETRY_URL", " http://127.0.0.1:0 ")
	t.Setenv("PRISM_CRASH_UPLOAD_URL", "")
	t.Setenv("PRISM_TELEMETRY_TIMEOUT_MS", "100")

	cfg := FromEnv()
	if !cfg.OptIn || cfg.EventsURL != "http://127.0.0.1:0" || cfg.Timeout != 100*time.Millisecond {
		t.Fatalf("FromEnv did not parse correctly: %+v", cfg)
	}
	NewDefault(cfg)
	if !Enabled() {
		t.Fatalf("default client should be enabled")
	}
	NewDefault(Config{})
	if Enabled() {
		t.Fatalf("default client should be disabled")
	}
}

func TestInstallID_Stable(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	a, err := InstallID(dir)
	if err != nil {
		t.Fatalf("install id: %v", err)
	}
	b, err := InstallID(dir)
	if err != nil || a != b {
		t.Fatalf("id not stable: %q vs %q (%v)", a, b, err)
	}
	if err := os.WriteFile(filepath.Join(dir, installIDFile), []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := InstallID(dir)
	if err != nil || c == a || len(c) != 36 {
		t.Fatalf("corrupt id should be replaced: %q %v", c, err)
	}
}
