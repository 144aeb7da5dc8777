/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package undo

import (
	"sync"
	"sync/atomic"
	"time"

	applog "github.com/raghul017/Prism/internal/log"
	"github.com/raghul017/Prism/internal/prefs"
)

// Tracker records store edits into a Manager and replays them.
type Tracker struct {
	store    *prefs.Store
	m        *Manager
	now      func() time.Time
	applying atomic.Bool
	replayMu sync.Mutex
	unsub    func()
}

// Track subscribes to every field of s. Language writes made by the
// auto-detector are not recorded on their own: the snapshot of the code
// edit that caused them already holds the previous language.
func Track(s *prefs.Store, m *Manager) *Tracker {
	t := &Tracker{store: s, m: m, now: time.Now}
	t.unsub = s.SubscribeAll(t.onChange)
	return t
}

func (t *Tracker) onChange(prev, next prefs.Record, changed prefs.Field) {
	if t.applying.Load() {
		return
	}
	if changed == prefs.FieldLanguage && next.AutoDetectLanguage {
		return
	}
	t.m.Push(Snapshot{Record: prev, Changed: changed, TS: t.now()})
}

// Undo restores the previous state. It reports false when there is none.
func (t *Tracker) Undo() bool { return t.replay(t.m.Undo) }

// Redo re-applies the last undone state.
func (t *Tracker) Redo() bool { return t.replay(t.m.Redo) }

func (t *Tracker) replay(step func(prefs.Record) (prefs.Record, bool)) bool {
	t.replayMu.Lock()
	defer t.replayMu.Unlock()
	rec, ok := step(t.store.Get())
	if !ok {
		return false
	}
	t.applying.Store(true)
	changed := t.store.Replace(rec)
	t.applying.Store(false)
	applog.WithComponent("undo").Debug("replayed", "fields", changed.String())
	return true
}

// Stop unsubscribes from the store.
func (t *Tracker) Stop() {
	if t.unsub != nil {
		t.unsub()
		t.unsub = nil
	}
}
