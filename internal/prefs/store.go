/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package prefs

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/raghul017/Prism/internal/catalog"
	applog "github.com/raghul017/Prism/internal/log"
)

var (
	ErrUnknownField = errors.New("unknown preference field")
	ErrInvalidValue = errors.New("invalid preference value")
)

// Listener receives the record before and after a mutation together with
// the set of fields that changed.
type Listener func(prev, next Record, changed Field)

type subscription struct {
	id  uint64
	sel Field
	fn  Listener
}

type event struct {
	prev, next Record
	changed    Field
}

// Store holds the current record and notifies subscribers of changes.
//
// Listeners run synchronously on the goroutine that performed the mutation,
// after the store lock is released. A mutation made from inside a listener
// is queued and delivered once the current event reached every listener, so
// all subscribers observe changes in the order they were applied.
type Store struct {
	mu          sync.Mutex
	rec         Record
	subs        []subscription
	nextID      uint64
	queue       []event
	dispatching bool
}

// NewStore returns a store seeded with initial (normalized).
func NewStore(initial Record) *Store {
	return &Store{rec: initial.Normalize()}
}

// Get returns a copy of the current record.
func (s *Store) Get() Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec
}

// Subscribe registers fn for changes touching any field in sel.
// The returned func removes the subscription.
func (s *Store) Subscribe(sel Field, fn Listener) func() {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription{id: id, sel: sel, fn: fn})
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// SubscribeAll registers fn for every change.
func (s *Store) SubscribeAll(fn Listener) func() { return s.Subscribe(AllFields, fn) }

// Update applies mut to a copy of the record, restores invariants and
// publishes the result. mut may inspect the current values, which makes it
// usable as a compare-and-set. It returns the changed fields.
func (s *Store) Update(mut func(r *Record)) Field {
	s.mu.Lock()
	prev := s.rec
	next := prev
	mut(&next)
	next = next.Normalize()
	changed := Diff(prev, next)
	if changed == 0 {
		s.mu.Unlock()
		return 0
	}
	s.rec = next
	s.queue = append(s.queue, event{prev: prev, next: next, changed: changed})
	if s.dispatching {
		s.mu.Unlock()
		return changed
	}
	s.dispatching = true
	s.drainLocked()
	s.mu.Unlock()
	return changed
}

// drainLocked delivers queued events; called and returns with s.mu held.
func (s *Store) drainLocked() {
	for len(s.queue) > 0 {
		ev := s.queue[0]
		s.queue = s.queue[1:]
		subs := append([]subscription(nil), s.subs...)
		s.mu.Unlock()
		s.deliver(subs, ev)
		s.mu.Lock()
	}
	s.dispatching = false
}

// deliver runs listeners without the lock. A panicking listener drops the
// pending queue so the store stays usable after the panic is recovered.
func (s *Store) deliver(subs []subscription, ev event) {
	defer func() {
		if p := recover(); p != nil {
			s.mu.Lock()
			s.queue = nil
			s.dispatching = false
			s.mu.Unlock()
			panic(p)
		}
	}()
	for _, sub := range subs {
		if sub.sel.Has(ev.changed) {
			sub.fn(ev.prev, ev.next, ev.changed)
		}
	}
}

// Replace swaps the whole record, used by URL import and undo.
func (s *Store) Replace(r Record) Field {
	changed := s.Update(func(cur *Record) { *cur = r })
	if changed != 0 {
		applog.WithComponent("prefs").Debug("record replaced", slog.String("changed", changed.String()))
	}
	return changed
}

func (s *Store) SetCode(code string) { s.Update(func(r *Record) { r.Code = code }) }

func (s *Store) SetTitle(title string) { s.Update(func(r *Record) { r.Title = title }) }

// SetTheme stores the catalog key for theme, falling back to the default theme.
func (s *Store) SetTheme(theme string) {
	s.Update(func(r *Record) { r.Theme = catalog.ResolveTheme(theme).Key })
}

func (s *Store) ToggleDarkMode() { s.Update(func(r *Record) { r.DarkMode = !r.DarkMode }) }

func (s *Store) SetDarkMode(on bool) { s.Update(func(r *Record) { r.DarkMode = on }) }

func (s *Store) ToggleBackground() {
	s.Update(func(r *Record) { r.ShowBackground = !r.ShowBackground })
}

func (s *Store) SetShowBackground(on bool) { s.Update(func(r *Record) { r.ShowBackground = on }) }

func (s *Store) SetLanguage(lang string) { s.Update(func(r *Record) { r.Language = lang }) }

func (s *Store) SetAutoDetectLanguage(on bool) {
	s.Update(func(r *Record) { r.AutoDetectLanguage = on })
}

// SetFontSize clamps size to [MinFontSize, MaxFontSize].
func (s *Store) SetFontSize(size int) {
	if size <= 0 {
		size = MinFontSize
	}
	s.Update(func(r *Record) { r.FontSize = size })
}

func (s *Store) SetFontStyle(font string) {
	s.Update(func(r *Record) { r.FontStyle = catalog.ResolveFont(font).Key })
}

// SetPadding clamps negative values to zero.
func (s *Store) SetPadding(px int) {
	if px < 0 {
		px = 0
	}
	s.Update(func(r *Record) { r.Padding = px })
}

func (s *Store) ToggleLineNumbers() {
	s.Update(func(r *Record) { r.ShowLineNumbers = !r.ShowLineNumbers })
}

func (s *Store) SetShowLineNumbers(on bool) { s.Update(func(r *Record) { r.ShowLineNumbers = on }) }

func (s *Store) SetWindowFrame(f WindowFrame) error {
	if !f.Valid() {
		return ErrInvalidValue
	}
	s.Update(func(r *Record) { r.WindowFrame = f })
	return nil
}

func (s *Store) SetControlsLayout(l ControlsLayout) error {
	if !l.Valid() {
		return ErrInvalidValue
	}
	s.Update(func(r *Record) { r.ControlsLayout = l })
	return nil
}

// ContentSource is what the canvas shows: the code, or an image data URI.
type ContentSource struct {
	image string
}

// CodeSource selects the code editor content.
func CodeSource() ContentSource { return ContentSource{} }

// ImageSource selects an image; an empty URI is the same as CodeSource.
func ImageSource(dataURI string) ContentSource { return ContentSource{image: dataURI} }

// IsImage reports whether src carries an image.
func (c ContentSource) IsImage() bool { return c.image != "" }

// SetContentSource switches the canvas content. Both directions go through
// here so customImage and contentMode always change together.
func (s *Store) SetContentSource(src ContentSource) Field {
	return s.Update(src.Apply)
}

// Apply writes src into r. Use it inside Update to switch content
// conditionally.
func (c ContentSource) Apply(r *Record) {
	if c.IsImage() {
		img := c.image
		r.CustomImage = &img
		r.ContentMode = ModeImage
		return
	}
	r.CustomImage = nil
	r.ContentMode = ModeCode
}

// SetCustomImage sets or clears the image. nil or "" returns to code mode.
func (s *Store) SetCustomImage(img *string) {
	if img == nil {
		s.SetContentSource(CodeSource())
		return
	}
	s.SetContentSource(ImageSource(*img))
}

// SetContentMode switches to code mode, or keeps image mode when an image
// is present. Image mode without an image is rejected.
func (s *Store) SetContentMode(m ContentMode) error {
	switch m {
	case ModeCode:
		s.SetContentSource(CodeSource())
		return nil
	case ModeImage:
		if s.Get().CustomImage == nil {
			return ErrInvalidValue
		}
		return nil
	}
	return ErrInvalidValue
}

// Reset restores factory defaults.
func (s *Store) Reset() { s.Replace(Defaults()) }
