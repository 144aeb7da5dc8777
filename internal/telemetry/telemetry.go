/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package telemetry sends opt-in, anonymous usage events (exports, shares,
// detections) and optional crash reports. Nothing is sent unless the user
// opted in and an endpoint is configured.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	applog "github.com/raghul017/Prism/internal/log"
	"github.com/raghul017/Prism/internal/version"
)

// Event names.
const (
	EventStart     = "start"
	EventExport    = "export"
	EventShare     = "share"
	EventImage     = "image_loaded"
	EventDetect    = "language_detected"
	installIDFile  = "install-id"
	defaultTimeout = 1500 * time.Millisecond
)

// Config holds runtime configuration for telemetry and crash uploads.
//
// Environment variables (read by FromEnv):
//   - PRISM_TELEMETRY_OPT_IN: "1", "true", "yes" to enable events
//   - PRISM_TELEMETRY_URL: endpoint receiving JSON events
//   - PRISM_CRASH_UPLOAD_URL: endpoint receiving crash reports
//   - PRISM_TELEMETRY_TIMEOUT_MS: request timeout, default 1500ms
//   - PRISM_TELEMETRY_DEBUG: if set, logs send attempts
type Config struct {
	OptIn        bool
	EventsURL    string
	CrashURL     string
	Timeout      time.Duration
	DebugLogging bool
	// InstallID is a random id attached to every event; empty omits it.
	InstallID string
}

func FromEnv() Config {
	cfg := Config{
		OptIn:        parseBool(os.Getenv("PRISM_TELEMETRY_OPT_IN")),
		EventsURL:    strings.TrimSpace(os.Getenv("PRISM_TELEMETRY_URL")),
		CrashURL:     strings.TrimSpace(os.Getenv("PRISM_CRASH_UPLOAD_URL")),
		Timeout:      defaultTimeout,
		DebugLogging: os.Getenv("PRISM_TELEMETRY_DEBUG") != "",
	}
	if ms := strings.TrimSpace(os.Getenv("PRISM_TELEMETRY_TIMEOUT_MS")); ms != "" {
		if v, err := time.ParseDuration(ms + "ms"); err == nil {
			cfg.Timeout = v
		}
	}
	return cfg
}

func parseBool(v string) bool {
	s := strings.ToLower(strings.TrimSpace(v))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}

// InstallID returns the anonymous id stored in dataDir, creating it on
// first use. The id is a random UUID and carries no user data.
func InstallID(dataDir string) (string, error) {
	path := filepath.Join(dataDir, installIDFile)
	if b, err := os.ReadFile(path); err == nil {
		if id, perr := uuid.ParseBytes(bytes.TrimSpace(b)); perr == nil {
			return id.String(), nil
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}
	id := uuid.NewString()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(id+"\n"), 0o644); err != nil {
		return "", err
	}
	return id, nil
}

// Client is a minimal async sender; it drops events silently on errors.
// It never blocks the caller; the queue is bounded.
type Client struct {
	cfg    Config
	log    *slog.Logger
	cli    *http.Client
	q      chan map[string]any
	pend   atomic.Int64
	once   sync.Once
	closed chan struct{}
}

var (
	defaultMu     sync.Mutex
	defaultClient *Client
)

func getDefault() *Client {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultClient == nil {
		defaultClient = New(FromEnv())
	}
	return defaultClient
}

// NewDefault creates and installs the default client with cfg, closing the
// previous one.
func NewDefault(cfg Config) {
	c := New(cfg)
	defaultMu.Lock()
	old := defaultClient
	defaultClient = c
	defaultMu.Unlock()
	if old != nil {
		old.Close()
	}
}

// New constructs a client.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	c := &Client{
		cfg:    cfg,
		log:    applog.WithComponent("telemetry"),
		cli:    &http.Client{Timeout: cfg.Timeout},
		q:      make(chan map[string]any, 64),
		closed: make(chan struct{}),
	}
	go c.loop()
	return c
}

// Enabled reports whether events are enabled and an endpoint is configured.
func (c *Client) Enabled() bool { return c != nil && c.cfg.OptIn && c.cfg.EventsURL != "" }

// Enabled reports whether the default client sends events.
func Enabled() bool { return getDefault().Enabled() }

// Event queues a small JSON event if enabled. props must not carry code,
// titles or image data.
func (c *Client) Event(name string, props map[string]any) {
	if !c.Enabled() || name == "" {
		return
	}
	payload := map[string]any{
		"name":    name,
		"ts":      time.Now().UTC().Format(time.RFC3339Nano),
		"version": version.String(),
		"os":      runtime.GOOS,
		"arch":    runtime.GOARCH,
	}
	if c.cfg.InstallID != "" {
		payload["install"] = c.cfg.InstallID
	}
	for k, v := range props {
		payload[k] = v
	}
	c.pend.Add(1)
	select {
	case c.q <- payload:
	default:
		c.pend.Add(-1)
	}
}

// Event using the default client.
func Event(name string, props map[string]any) { getDefault().Event(name, props) }

// Export records an export by format and preset.
func Export(format, preset string, ok bool) {
	Event(EventExport, map[string]any{"format": format, "preset": preset, "ok": ok})
}

// Flush waits until queued events were sent, the context ends, or half a
// second passed.
func (c *Client) Flush(ctx context.Context) {
	deadline := time.Now().Add(500 * time.Millisecond)
	for c.pend.Load() > 0 && time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return
		case <-time.After(10 * time.Millisecond):
		}
	}
}

// Flush the default client.
func Flush(ctx context.Context) { getDefault().Flush(ctx) }

// Close stops the background goroutine.
func (c *Client) Close() { c.once.Do(func() { close(c.closed) }) }

func (c *Client) loop() {
	for {
		select {
		case <-c.closed:
			return
		case item := <-c.q:
			c.send(item)
			c.pend.Add(-1)
		}
	}
}

func (c *Client) send(item map[string]any) {
	buf, _ := json.Marshal(item)
	req, err := http.NewRequest(http.MethodPost, c.cfg.EventsURL, bytes.NewReader(buf))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.cli.Do(req)
	if err != nil {
		if c.cfg.DebugLogging {
			c.log.Debug("telemetry send failed", slog.Any("err", err))
		}
		return
	}
	_ = resp.Body.Close()
	if c.cfg.DebugLogging {
		c.log.Debug("telemetry event sent", slog.Any("name", item["name"]))
	}
}

// UploadCrash posts a serialized crash report to the crash URL if opted in.
func (c *Client) UploadCrash(report []byte) {
	if c == nil || !c.cfg.OptIn || c.cfg.CrashURL == "" {
		return
	}
	go func(b []byte) {
		req, err := http.NewRequest(http.MethodPost, c.cfg.CrashURL, bytes.NewReader(b))
		if err != nil {
			return
		}
		req.Header.Set("Content-Type", "text/plain; charset=utf-8")
		resp, err := c.cli.Do(req)
		if err != nil {
			if c.cfg.DebugLogging {
				c.log.Debug("crash upload failed", slog.Any("err", err))
			}
			return
		}
		_ = resp.Body.Close()
	}(append([]byte(nil), report...))
}

// UploadCrash using the default client.
func UploadCrash(report []byte) { getDefault().UploadCrash(report) }
