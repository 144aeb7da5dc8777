/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package backend

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/raghul017/Prism/internal/prefs"
)

// ErrUnauthorized is returned when the server rejects the bearer token.
var ErrUnauthorized = errors.New("share service rejected the token")

// Client talks to the share-link service.
type Client struct {
	BaseURL string
	Token   string // bearer token
	client  *http.Client
}

// ClientOptions tunes the HTTP transport.
type ClientOptions struct {
	Timeout     time.Duration // 0 means 10s
	TLSInsecure bool
}

// NewClient creates a client. baseURL may include a trailing slash.
func NewClient(baseURL, token string, opts ClientOptions) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	hc := &http.Client{Timeout: opts.Timeout}
	if opts.TLSInsecure {
		tr := http.DefaultTransport.(*http.Transport).Clone()
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for self-hosted dev servers
		hc.Transport = tr
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), Token: token, client: hc}
}

func (c *Client) doJSON(ctx context.Context, method, path string, hdr http.Header, body, dest any) error {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return err
	}
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header[k] = v
	}
	if c.Token != "" && req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&e)
		if e.Error != "" {
			return fmt.Errorf("server %s %s: %s: %s", method, u.Path, resp.Status, e.Error)
		}
		return fmt.Errorf("server %s %s: %s", method, u.Path, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

// Share uploads r and returns its short link. The custom image is never
// sent.
func (c *Client) Share(ctx context.Context, r prefs.Record) (string, error) {
	rec := r.Persistable()
	var resp ShareResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/shots", nil, ShareRequest{Record: &rec}, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

// Fetch downloads a shared record by id or by short link.
func (c *Client) Fetch(ctx context.Context, idOrLink string) (prefs.Record, error) {
	id := idOrLink
	if i := strings.LastIndex(id, "/s/"); i >= 0 {
		id = id[i+3:]
	}
	id = strings.Trim(id, "/ ")
	if id == "" {
		return prefs.Record{}, errors.New("empty shot id")
	}
	var resp ShotResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/shots/"+url.PathEscape(id), nil, nil, &resp); err != nil {
		return prefs.Record{}, err
	}
	return resp.Record.Normalize(), nil
}

// IssueToken asks the service for a bearer token, proving access with the
// server secret.
func (c *Client) IssueToken(ctx context.Context, secret, subject string, ttl time.Duration) (string, time.Time, error) {
	body := map[string]any{"subject": subject, "ttl_seconds": int64(ttl / time.Second)}
	hdr := http.Header{}
	hdr.Set("X-Prism-Secret", secret)
	var resp struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/token", hdr, body, &resp); err != nil {
		return "", time.Time{}, err
	}
	return resp.Token, resp.ExpiresAt, nil
}

// Ready reports whether the service and its database answer.
func (c *Client) Ready(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/readyz", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("not ready: %s", resp.Status)
	}
	return nil
}
