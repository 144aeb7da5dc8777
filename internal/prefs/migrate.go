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
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const (
	// StorageKey names the persisted preferences snapshot.
	StorageKey = "user-preferences"
	// SchemaVersion is the current persisted schema version.
	SchemaVersion = 2
)

// Migrate converts a decoded snapshot of any schema version into a current
// record. It never panics: missing or mistyped fields take their defaults.
//
// Snapshots older than version 2 have their controlsLayout remapped: "side",
// "bottom" and anything outside {left, right} become "right".
// The image is never part of a snapshot, so the result is always in code mode.
func Migrate(raw map[string]any, fromVersion int) Record {
	r := fromMap(raw)
	if fromVersion < SchemaVersion {
		r.ControlsLayout = legacyLayout(raw["controlsLayout"])
	}
	r.CustomImage = nil
	r.ContentMode = ModeCode
	return r.Normalize()
}

// ToMap converts r into the generic form Migrate accepts.
func ToMap(r Record) map[string]any {
	b, _ := json.Marshal(r)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}

func legacyLayout(v any) ControlsLayout {
	s, _ := v.(string)
	switch ControlsLayout(s) {
	case LayoutLeft, LayoutRight:
		return ControlsLayout(s)
	}
	return LayoutRight
}

func fromMap(raw map[string]any) Record {
	d := Defaults()
	if raw == nil {
		return d
	}
	return Record{
		Code:               str(raw, "code", d.Code),
		Title:              str(raw, "title", d.Title),
		Theme:              str(raw, "theme", d.Theme),
		DarkMode:           boolean(raw, "darkMode", d.DarkMode),
		ShowBackground:     boolean(raw, "showBackground", d.ShowBackground),
		Language:           str(raw, "language", d.Language),
		AutoDetectLanguage: boolean(raw, "autoDetectLanguage", d.AutoDetectLanguage),
		FontSize:           integer(raw, "fontSize", d.FontSize),
		FontStyle:          str(raw, "fontStyle", d.FontStyle),
		Padding:            integer(raw, "padding", d.Padding),
		ShowLineNumbers:    boolean(raw, "showLineNumbers", d.ShowLineNumbers),
		WindowFrame:        WindowFrame(str(raw, "windowFrame", string(d.WindowFrame))),
		ControlsLayout:     ControlsLayout(str(raw, "controlsLayout", string(d.ControlsLayout))),
		ContentMode:        ModeCode,
	}
}

func str(raw map[string]any, key, def string) string {
	if s, ok := raw[key].(string); ok {
		return s
	}
	return def
}

func boolean(raw map[string]any, key string, def bool) bool {
	switch v := raw[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return def
}

func integer(raw map[string]any, key string, def int) int {
	switch v := raw[key].(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > math.MaxInt32 {
			return def
		}
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil && n <= math.MaxInt32 && n >= math.MinInt32 {
			return int(n)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}
