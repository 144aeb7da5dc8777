/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	applog "github.com/raghul017/Prism/internal/log"
	"github.com/raghul017/Prism/internal/prefs"
)

// Level classifies a Notice.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

// Notice is a short user-visible message about an upload.
type Notice struct {
	Level   Level
	Message string
}

// Notifier shows notices to the user.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// Origin tells where image bytes came from; it only changes the message.
type Origin int

const (
	FromFile Origin = iota
	FromClipboard
)

const (
	MsgInvalid   = "Please upload a valid image file"
	MsgUploaded  = "Image uploaded!"
	MsgPasted    = "Image pasted from clipboard!"
	MsgCodeMode  = "Switched back to code mode"
	msgReadError = "Could not read image"
)

// Token identifies one read request. Tokens increase monotonically.
type Token uint64

// Loader applies image reads to a store. Reads may finish in any order;
// only the most recently issued token is applied.
type Loader struct {
	store  *prefs.Store
	notify Notifier

	mu     sync.Mutex
	latest Token
	wg     sync.WaitGroup
}

// NewLoader returns a loader for s. A nil notifier discards notices.
func NewLoader(s *prefs.Store, n Notifier) *Loader {
	if n == nil {
		n = NotifierFunc(func(Notice) {})
	}
	return &Loader{store: s, notify: n}
}

// Begin issues a new token and invalidates every earlier one.
func (l *Loader) Begin() Token {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.latest++
	return l.latest
}

func (l *Loader) current(t Token) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return t == l.latest
}

// Complete validates data and switches the store to image mode if t is
// still the latest token. It reports whether the store was updated.
// Rejected content produces an error notice and leaves the store unchanged.
func (l *Loader) Complete(t Token, data []byte, declaredMIME string, origin Origin) (bool, error) {
	if !l.current(t) {
		return false, nil
	}
	mime, err := Validate(data, declaredMIME)
	if err != nil {
		l.notify.Notify(Notice{Level: LevelError, Message: MsgInvalid})
		return false, err
	}
	src := prefs.ImageSource(EncodeDataURI(mime, data))
	// The token is checked under the store lock so a Remove issued after
	// the check cannot be overwritten.
	applied := false
	l.store.Update(func(r *prefs.Record) {
		if l.current(t) {
			src.Apply(r)
			applied = true
		}
	})
	if !applied {
		return false, nil
	}
	msg := MsgUploaded
	if origin == FromClipboard {
		msg = MsgPasted
	}
	l.notify.Notify(Notice{Level: LevelSuccess, Message: msg})
	applog.WithComponent("upload").Info("image applied", slog.String("mime", mime), slog.Int("bytes", len(data)))
	return true, nil
}

// Result is delivered on the channel returned by the async loaders.
type Result struct {
	Token   Token
	Applied bool
	Err     error
}

// LoadFile reads path in a goroutine. The declared type is left empty so
// only sniffing decides.
func (l *Loader) LoadFile(ctx context.Context, path string) <-chan Result {
	return l.run(ctx, FromFile, "", func() ([]byte, error) {
		return os.ReadFile(path)
	})
}

// LoadReader reads r in a goroutine with the given declared MIME type.
func (l *Loader) LoadReader(ctx context.Context, r io.Reader, declaredMIME string, origin Origin) <-chan Result {
	return l.run(ctx, origin, declaredMIME, func() ([]byte, error) {
		return io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	})
}

func (l *Loader) run(ctx context.Context, origin Origin, declared string, read func() ([]byte, error)) <-chan Result {
	t := l.Begin()
	out := make(chan Result, 1)
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer close(out)
		data, err := read()
		if err == nil {
			err = ctx.Err()
		}
		if err != nil {
			if l.current(t) && !errors.Is(err, context.Canceled) {
				l.notify.Notify(Notice{Level: LevelError, Message: msgReadError})
			}
			out <- Result{Token: t, Err: fmt.Errorf("read image: %w", err)}
			return
		}
		applied, err := l.Complete(t, data, declared, origin)
		out <- Result{Token: t, Applied: applied, Err: err}
	}()
	return out
}

// Wait blocks until all started reads have finished.
func (l *Loader) Wait() { l.wg.Wait() }

// Remove switches back to code mode and invalidates in-flight reads.
func (l *Loader) Remove() {
	l.Begin()
	if l.store.SetContentSource(prefs.CodeSource()) != 0 {
		l.notify.Notify(Notice{Level: LevelInfo, Message: MsgCodeMode})
	}
}
