/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package langdetect

import (
	"log/slog"
	"sync"

	applog "github.com/raghul017/Prism/internal/log"
	"github.com/raghul017/Prism/internal/prefs"
)

// Watcher recomputes the language whenever code changes while automatic
// detection is enabled. In synchronous mode the write lands in the same
// notification cycle as the triggering change. In async mode detection runs
// in a goroutine and only the latest request may write.
type Watcher struct {
	store    *prefs.Store
	det      Detector
	async    bool
	asyncMin int

	mu    sync.Mutex
	gen   uint64
	wg    sync.WaitGroup
	unsub func()
}

// Option configures a Watcher.
type Option func(*Watcher)

// Async runs detection off the notification path.
func Async() Option { return AsyncAbove(-1) }

// AsyncAbove runs detection off the notification path only for code longer
// than n bytes; shorter code is detected synchronously.
func AsyncAbove(n int) Option {
	return func(w *Watcher) {
		w.async = true
		w.asyncMin = n
	}
}

// NewWatcher creates a watcher for s; a nil detector means Default().
func NewWatcher(s *prefs.Store, d Detector, opts ...Option) *Watcher {
	if d == nil {
		d = Default()
	}
	w := &Watcher{store: s, det: d}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Start subscribes to the store and runs an initial detection when enabled.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.unsub != nil {
		w.mu.Unlock()
		return
	}
	w.unsub = w.store.Subscribe(prefs.FieldCode|prefs.FieldAutoDetectLanguage, func(_, next prefs.Record, _ prefs.Field) {
		w.onChange(next)
	})
	w.mu.Unlock()
	w.onChange(w.store.Get())
}

// Stop unsubscribes and waits for in-flight detections; their results are discarded.
func (w *Watcher) Stop() {
	w.mu.Lock()
	unsub := w.unsub
	w.unsub = nil
	w.gen++
	w.mu.Unlock()
	if unsub != nil {
		unsub()
	}
	w.wg.Wait()
}

// Wait blocks until in-flight async detections have finished.
func (w *Watcher) Wait() { w.wg.Wait() }

func (w *Watcher) onChange(rec prefs.Record) {
	w.mu.Lock()
	w.gen++
	gen := w.gen
	w.mu.Unlock()
	if !rec.AutoDetectLanguage {
		return
	}
	if !w.async || len(rec.Code) <= w.asyncMin {
		w.apply(gen, rec.Code, w.detect(rec.Code))
		return
	}
	w.wg.Add(1)
	go func(code string) {
		defer w.wg.Done()
		w.apply(gen, code, w.detect(code))
	}(rec.Code)
}

func (w *Watcher) detect(code string) string {
	id, _ := w.det.Detect(code)
	return id
}

// apply writes lang only if no newer change was observed and the record
// still holds the code it was computed from with detection enabled.
func (w *Watcher) apply(gen uint64, code, lang string) {
	w.mu.Lock()
	stale := gen != w.gen
	w.mu.Unlock()
	if stale {
		return
	}
	changed := w.store.Update(func(r *prefs.Record) {
		if r.AutoDetectLanguage && r.Code == code {
			r.Language = lang
		}
	})
	if changed != 0 {
		applog.WithComponent("langdetect").Debug("language detected", slog.String("language", lang))
	}
}
