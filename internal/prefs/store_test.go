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
	"reflect"
	"testing"
)

func sample() Record {
	r := Defaults()
	r.Code = "fmt.Println(1)"
	r.Title = "main.go"
	r.Theme = "candy"
	r.Language = "go"
	r.FontSize = 20
	r.FontStyle = "firaCode"
	r.Padding = 32
	r.WindowFrame = FrameWindows
	r.ControlsLayout = LayoutLeft
	return r.Normalize()
}

func TestDefaults(t *testing.T) {
	d := Defaults()
	if d.Title != "Untitled" || d.Theme != "hyper" || !d.DarkMode || !d.ShowBackground ||
		d.Language != "plaintext" || d.AutoDetectLanguage || d.FontSize != 16 ||
		d.FontStyle != "jetBrainsMono" || d.Padding != 64 || d.ShowLineNumbers ||
		d.WindowFrame != FrameMacOS || d.ControlsLayout != LayoutBottom ||
		d.CustomImage != nil || d.ContentMode != ModeCode {
		t.Fatalf("unexpected defaults: %#v", d)
	}
	if !reflect.DeepEqual(d, d.Normalize()) {
		t.Fatalf("defaults must already be normalized")
	}
}

func TestSettersChangeOnlyTheirField(t *testing.T) {
	cases := []struct {
		name  string
		field Field
		apply func(s *Store)
	}{
		{"code", FieldCode, func(s *Store) { s.SetCode("x := 2") }},
		{"title", FieldTitle, func(s *Store) { s.SetTitle("other") }},
		{"theme", FieldTheme, func(s *Store) { s.SetTheme("gotham") }},
		{"darkMode", FieldDarkMode, func(s *Store) { s.ToggleDarkMode() }},
		{"background", FieldShowBackground, func(s *Store) { s.ToggleBackground() }},
		{"language", FieldLanguage, func(s *Store) { s.SetLanguage("rust") }},
		{"autoDetect", FieldAutoDetectLanguage, func(s *Store) { s.SetAutoDetectLanguage(true) }},
		{"fontSize", FieldFontSize, func(s *Store) { s.SetFontSize(30) }},
		{"fontStyle", FieldFontStyle, func(s *Store) { s.SetFontStyle("spaceMono") }},
		{"padding", FieldPadding, func(s *Store) { s.SetPadding(128) }},
		{"lineNumbers", FieldShowLineNumbers, func(s *Store) { s.ToggleLineNumbers() }},
		{"frame", FieldWindowFrame, func(s *Store) { _ = s.SetWindowFrame(FrameNone) }},
		{"layout", FieldControlsLayout, func(s *Store) { _ = s.SetControlsLayout(LayoutRight) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewStore(sample())
			before := s.Get()
			tc.apply(s)
			got := Diff(before, s.Get())
			if got != tc.field {
				t.Fatalf("changed %v, want %v", got, tc.field)
			}
		})
	}
}

func TestUnknownCatalogKeysFallBack(t *testing.T) {
	s := NewStore(sample())
	s.SetTheme("removed-theme")
	s.SetFontStyle("removed-font")
	r := s.Get()
	if r.Theme != "hyper" || r.FontStyle != "jetBrainsMono" {
		t.Fatalf("fallback not applied: theme=%q font=%q", r.Theme, r.FontStyle)
	}
}

func TestPaddingAndFontSizeClamp(t *testing.T) {
	s := NewStore(Defaults())
	s.SetPadding(-10)
	if got := s.Get().Padding; got != 0 {
		t.Fatalf("padding = %d, want 0", got)
	}
	if got := s.Get().MinWidth(); got != 300 {
		t.Fatalf("MinWidth = %d", got)
	}
	s.SetPadding(64)
	if got := s.Get().MinWidth(); got != 428 {
		t.Fatalf("MinWidth = %d, want 428", got)
	}
	s.SetFontSize(500)
	if got := s.Get().FontSize; got != MaxFontSize {
		t.Fatalf("fontSize = %d", got)
	}
	s.SetFontSize(-1)
	if got := s.Get().FontSize; got != MinFontSize {
		t.Fatalf("fontSize = %d", got)
	}
}

func TestInvalidEnumsRejected(t *testing.T) {
	s := NewStore(Defaults())
	if err := s.SetWindowFrame("aqua"); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("want ErrInvalidValue, got %v", err)
	}
	if err := s.SetControlsLayout("side"); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("want ErrInvalidValue, got %v", err)
	}
	if !reflect.DeepEqual(s.Get(), Defaults()) {
		t.Fatalf("rejected values must not mutate the store")
	}
}

func TestContentSourceBothDirections(t *testing.T) {
	s := NewStore(sample())
	changed := s.SetContentSource(ImageSource("data:image/png;base64,AAAA"))
	r := s.Get()
	if r.ContentMode != ModeImage || r.Image() != "data:image/png;base64,AAAA" {
		t.Fatalf("image not applied: %#v", r)
	}
	if changed != FieldCustomImage|FieldContentMode {
		t.Fatalf("changed = %v", changed)
	}
	s.SetContentSource(CodeSource())
	r = s.Get()
	if r.CustomImage != nil || r.ContentMode != ModeCode {
		t.Fatalf("removal must reset both fields: %#v", r)
	}
	if r.Code != sample().Code {
		t.Fatalf("code must survive image round trip")
	}
}

func TestLegacyImageSetters(t *testing.T) {
	s := NewStore(Defaults())
	img := "data:image/gif;base64,R0lG"
	s.SetCustomImage(&img)
	if s.Get().ContentMode != ModeImage {
		t.Fatalf("SetCustomImage must force image mode")
	}
	if err := s.SetContentMode(ModeImage); err != nil {
		t.Fatalf("image mode with image present: %v", err)
	}
	s.SetCustomImage(nil)
	if r := s.Get(); r.CustomImage != nil || r.ContentMode != ModeCode {
		t.Fatalf("SetCustomImage(nil) must return to code mode: %#v", r)
	}
	if err := s.SetContentMode(ModeImage); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("image mode without image should fail, got %v", err)
	}
	empty := ""
	s.SetCustomImage(&empty)
	if s.Get().ContentMode != ModeCode {
		t.Fatalf("empty image is no image")
	}
}

func TestSelectorSubscriptions(t *testing.T) {
	s := NewStore(Defaults())
	var themeCalls, codeCalls, allCalls int
	s.Subscribe(FieldTheme, func(prev, next Record, changed Field) {
		themeCalls++
		if prev.Theme == next.Theme {
			t.Fatalf("theme listener called without theme change")
		}
	})
	unsub := s.Subscribe(FieldCode|FieldLanguage, func(_, _ Record, _ Field) { codeCalls++ })
	s.SubscribeAll(func(_, _ Record, _ Field) { allCalls++ })

	s.SetTheme("ice")
	s.SetCode("a")
	s.SetCode("a") // no change, no notification
	s.SetTheme("ice")
	unsub()
	s.SetCode("b")

	if themeCalls != 1 {
		t.Fatalf("themeCalls = %d, want 1", themeCalls)
	}
	if codeCalls != 1 {
		t.Fatalf("codeCalls = %d, want 1", codeCalls)
	}
	if allCalls != 3 {
		t.Fatalf("allCalls = %d, want 3", allCalls)
	}
}

func TestNestedUpdatesDeliveredInOrder(t *testing.T) {
	s := NewStore(Defaults())
	s.Subscribe(FieldCode, func(_, next Record, _ Field) {
		s.SetTitle("title for " + next.Code)
	})
	var seen []Record
	s.SubscribeAll(func(_, next Record, _ Field) { seen = append(seen, next) })

	s.SetCode("abc")

	if len(seen) != 2 {
		t.Fatalf("expected 2 events, got %d", len(seen))
	}
	if seen[0].Title != DefaultTitle || seen[1].Title != "title for abc" {
		t.Fatalf("events out of order: %q then %q", seen[0].Title, seen[1].Title)
	}
	if got := s.Get().Title; got != "title for abc" {
		t.Fatalf("nested update lost: %q", got)
	}
}

func TestPanickingListenerDoesNotWedgeStore(t *testing.T) {
	s := NewStore(Defaults())
	boom := true
	s.Subscribe(FieldCode, func(_, _ Record, _ Field) {
		if boom {
			panic("listener failed")
		}
	})
	func() {
		defer func() { _ = recover() }()
		s.SetCode("x")
	}()
	boom = false
	calls := 0
	s.SubscribeAll(func(_, _ Record, _ Field) { calls++ })
	s.SetCode("y")
	if calls != 1 {
		t.Fatalf("store stopped dispatching after panic")
	}
}

func TestSetField(t *testing.T) {
	s := NewStore(Defaults())
	steps := [][2]string{
		{"fontSize", "22"},
		{"padding", "16"},
		{"darkMode", "off"},
		{"showLineNumbers", "toggle"},
		{"windowFrame", "Minimal"},
		{"controlsLayout", "left"},
		{"theme", "oceanic"},
		{"title", "demo"},
	}
	for _, st := range steps {
		if err := s.SetField(st[0], st[1]); err != nil {
			t.Fatalf("SetField(%s, %s): %v", st[0], st[1], err)
		}
	}
	r := s.Get()
	if r.FontSize != 22 || r.Padding != 16 || r.DarkMode || !r.ShowLineNumbers ||
		r.WindowFrame != FrameMinimal || r.ControlsLayout != LayoutLeft || r.Theme != "oceanic" || r.Title != "demo" {
		t.Fatalf("SetField result: %#v", r)
	}
	if err := s.SetField("nope", "1"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("want ErrUnknownField, got %v", err)
	}
	if err := s.SetField("fontSize", "big"); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("want ErrInvalidValue, got %v", err)
	}
	if err := s.SetField("customImage", "data:"); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("customImage must not be settable as text, got %v", err)
	}
}

func TestFieldNames(t *testing.T) {
	if got := (FieldCode | FieldPadding).String(); got != "code|padding" {
		t.Fatalf("String() = %q", got)
	}
	if len(AllFields.Names()) != 15 {
		t.Fatalf("AllFields should name 15 fields, got %v", AllFields.Names())
	}
	f, err := FieldByName("FONTSIZE")
	if err != nil || f != FieldFontSize {
		t.Fatalf("FieldByName = %v, %v", f, err)
	}
}
