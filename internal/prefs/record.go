/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package prefs owns the Preferences Record: its defaults and invariants,
// the observable store and its setters, schema migration and the URL codec.
package prefs

import (
	"strings"

	"github.com/raghul017/Prism/internal/catalog"
)

// WindowFrame selects the title bar drawn around the code.
type WindowFrame string

const (
	FrameMacOS   WindowFrame = "macos"
	FrameWindows WindowFrame = "windows"
	FrameMinimal WindowFrame = "minimal"
	FrameNone    WindowFrame = "none"
)

// Valid reports whether f is one of the known frames.
func (f WindowFrame) Valid() bool {
	switch f {
	case FrameMacOS, FrameWindows, FrameMinimal, FrameNone:
		return true
	}
	return false
}

// WindowFrames lists the frames in display order.
func WindowFrames() []WindowFrame {
	return []WindowFrame{FrameMacOS, FrameWindows, FrameMinimal, FrameNone}
}

// ControlsLayout places the settings panel relative to the canvas.
type ControlsLayout string

const (
	LayoutLeft   ControlsLayout = "left"
	LayoutRight  ControlsLayout = "right"
	LayoutBottom ControlsLayout = "bottom"
)

func (c ControlsLayout) Valid() bool {
	return c == LayoutLeft || c == LayoutRight || c == LayoutBottom
}

// ContentMode tells whether the canvas shows code or an imported image.
type ContentMode string

const (
	ModeCode  ContentMode = "code"
	ModeImage ContentMode = "image"
)

const (
	DefaultFontSize = 16
	MinFontSize     = 8
	MaxFontSize     = 64
	DefaultPadding  = 64
	DefaultTitle    = "Untitled"
)

// Record is the single source of truth for editor and display settings.
// JSON keys match the persisted storage format.
type Record struct {
	Code               string         `json:"code"`
	Title              string         `json:"title"`
	Theme              string         `json:"theme"`
	DarkMode           bool           `json:"darkMode"`
	ShowBackground     bool           `json:"showBackground"`
	Language           string         `json:"language"`
	AutoDetectLanguage bool           `json:"autoDetectLanguage"`
	FontSize           int            `json:"fontSize"`
	FontStyle          string         `json:"fontStyle"`
	Padding            int            `json:"padding"`
	ShowLineNumbers    bool           `json:"showLineNumbers"`
	WindowFrame        WindowFrame    `json:"windowFrame"`
	ControlsLayout     ControlsLayout `json:"controlsLayout"`
	CustomImage        *string        `json:"customImage"`
	ContentMode        ContentMode    `json:"contentMode"`
}

// Defaults returns a fresh record with factory settings.
func Defaults() Record {
	return Record{
		Code:               "",
		Title:              DefaultTitle,
		Theme:              catalog.DefaultTheme,
		DarkMode:           true,
		ShowBackground:     true,
		Language:           catalog.PlainText,
		AutoDetectLanguage: false,
		FontSize:           DefaultFontSize,
		FontStyle:          catalog.DefaultFont,
		Padding:            DefaultPadding,
		ShowLineNumbers:    false,
		WindowFrame:        FrameMacOS,
		ControlsLayout:     LayoutBottom,
		CustomImage:        nil,
		ContentMode:        ModeCode,
	}
}

// Normalize returns r with every invariant restored: catalog keys resolve,
// enums are valid, padding and font size are in range, and the image and
// content mode agree.
func (r Record) Normalize() Record {
	r.Theme = catalog.ResolveTheme(r.Theme).Key
	r.FontStyle = catalog.ResolveFont(r.FontStyle).Key
	if !r.WindowFrame.Valid() {
		r.WindowFrame = FrameMacOS
	}
	if !r.ControlsLayout.Valid() {
		r.ControlsLayout = LayoutBottom
	}
	r.Language = normalizeLanguage(r.Language)
	r.FontSize = clampFontSize(r.FontSize)
	if r.Padding < 0 {
		r.Padding = 0
	}
	if r.CustomImage != nil && *r.CustomImage != "" {
		r.ContentMode = ModeImage
	} else {
		r.CustomImage = nil
		r.ContentMode = ModeCode
	}
	return r
}

// Image returns the custom image data URI, or "".
func (r Record) Image() string {
	if r.CustomImage == nil {
		return ""
	}
	return *r.CustomImage
}

// Persistable returns the record as written to storage: the image is dropped.
func (r Record) Persistable() Record {
	r.CustomImage = nil
	r.ContentMode = ModeCode
	return r
}

func normalizeLanguage(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return catalog.PlainText
	}
	return s
}

func clampFontSize(n int) int {
	switch {
	case n <= 0:
		return DefaultFontSize
	case n < MinFontSize:
		return MinFontSize
	case n > MaxFontSize:
		return MaxFontSize
	}
	return n
}

func sameImage(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
