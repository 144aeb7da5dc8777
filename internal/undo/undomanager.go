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
	"time"

	"github.com/raghul017/Prism/internal/prefs"
)

// Snapshot is a record state that Undo can return to.
// Changed holds the fields whose edit produced the snapshot; it drives
// coalescing. TS is when the snapshot was captured.
type Snapshot struct {
	Record  prefs.Record
	Changed prefs.Field
	TS      time.Time
}

// size estimates the memory held by a snapshot.
func (s Snapshot) size() int {
	return 128 + len(s.Record.Code) + len(s.Record.Title) + len(s.Record.Image())
}

// Config controls memory and depth caps and coalescing behavior.
type Config struct {
	// MaxBytes is a soft cap; older entries are pruned when exceeded.
	MaxBytes int
	// MaxDepth limits the number of undo entries (0 means unlimited).
	MaxDepth int
	// MinInterval coalesces edits of the same fields that follow each other
	// within the interval, so a burst of typing undoes as one step.
	MinInterval time.Duration
}

// Manager provides an in-memory undo/redo stack of preference snapshots.
// It is safe for concurrent use.
type Manager struct {
	cfg        Config
	mu         sync.Mutex
	undo       []Snapshot
	redo       []Snapshot
	totalBytes int
}

func NewManager(cfg Config) *Manager {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 16 * 1024 * 1024 // 16 MiB
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = 500 * time.Millisecond
	}
	return &Manager{cfg: cfg}
}

// Push records the state before an edit. A push that continues a burst on
// the same fields keeps the older snapshot and only extends the burst.
// Any push clears the redo stack.
func (m *Manager) Push(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearRedoLocked()
	if n := len(m.undo); n > 0 {
		last := &m.undo[n-1]
		if last.Changed == s.Changed && s.TS.Sub(last.TS) < m.cfg.MinInterval {
			last.TS = s.TS
			return
		}
	}
	m.undo = append(m.undo, s)
	m.totalBytes += s.size()
	m.enforceCapsLocked()
}

// Undo pops the latest snapshot and moves current onto the redo stack.
// It returns the record to restore.
func (m *Manager) Undo(current prefs.Record) (prefs.Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.undo) == 0 {
		return prefs.Record{}, false
	}
	s := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	m.totalBytes -= s.size()
	m.redo = append(m.redo, Snapshot{Record: current, Changed: s.Changed, TS: time.Now()})
	return s.Record, true
}

// Redo reverses the latest Undo.
func (m *Manager) Redo(current prefs.Record) (prefs.Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.redo) == 0 {
		return prefs.Record{}, false
	}
	s := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	back := Snapshot{Record: current, Changed: s.Changed}
	m.undo = append(m.undo, back)
	m.totalBytes += back.size()
	m.enforceCapsLocked()
	return s.Record, true
}

// CanUndo reports whether Undo would succeed.
func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo) > 0
}

// CanRedo reports whether Redo would succeed.
func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.redo) > 0
}

// Clear drops both stacks.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.undo, m.redo, m.totalBytes = nil, nil, 0
}

// Stats returns current sizes for diagnostics.
func (m *Manager) Stats() (totalBytes int, undoDepth int, redoDepth int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totalBytes, len(m.undo), len(m.redo)
}

func (m *Manager) clearRedoLocked() { m.redo = nil }

func (m *Manager) enforceCapsLocked() {
	if m.cfg.MaxDepth > 0 && len(m.undo) > m.cfg.MaxDepth {
		toDrop := len(m.undo) - m.cfg.MaxDepth
		for i := 0; i < toDrop; i++ {
			m.totalBytes -= m.undo[i].size()
		}
		m.undo = append([]Snapshot{}, m.undo[toDrop:]...)
	}
	// Keep at least the newest entry even when it alone exceeds the cap.
	for m.totalBytes > m.cfg.MaxBytes && len(m.undo) > 1 {
		m.totalBytes -= m.undo[0].size()
		m.undo = m.undo[1:]
	}
}
