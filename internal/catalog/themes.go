/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package catalog holds the read-only option catalogs: themes, fonts,
// languages and sample snippets. Lookups never fail; unknown keys resolve
// to the catalog default so a stale preference cannot break rendering.
package catalog

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	applog "github.com/raghul017/Prism/internal/log"
)

// DefaultTheme is used whenever a theme key is unknown.
const DefaultTheme = "hyper"

// Theme describes the backdrop and syntax palette of a rendered shot.
type Theme struct {
	Key  string `yaml:"key"`
	Name string `yaml:"name"`
	// Background lists gradient stops (hex) painted diagonally behind the window.
	Background []string `yaml:"background"`
	// Glow tints the soft shadow around the window when the background is shown.
	Glow string `yaml:"glow"`
	// DarkStyle and LightStyle name chroma styles used for highlighting.
	DarkStyle  string `yaml:"dark_style"`
	LightStyle string `yaml:"light_style"`
}

var builtinThemes = []Theme{
	{Key: "hyper", Name: "Hyper", Background: []string{"#d946ef", "#dc2626", "#fb923c"}, Glow: "#d946ef", DarkStyle: "dracula", LightStyle: "github"},
	{Key: "oceanic", Name: "Oceanic", Background: []string{"#86efac", "#3b82f6", "#9333ea"}, Glow: "#3b82f6", DarkStyle: "nord", LightStyle: "solarized-light"},
	{Key: "candy", Name: "Candy", Background: []string{"#f9a8d4", "#d8b4fe", "#818cf8"}, Glow: "#d8b4fe", DarkStyle: "catppuccin-mocha", LightStyle: "catppuccin-latte"},
	{Key: "sublime", Name: "Sublime", Background: []string{"#fb7185", "#d946ef", "#6366f1"}, Glow: "#6366f1", DarkStyle: "monokai", LightStyle: "monokailight"},
	{Key: "horizon", Name: "Horizon", Background: []string{"#f97316", "#fde047"}, Glow: "#f97316", DarkStyle: "gruvbox", LightStyle: "gruvbox-light"},
	{Key: "coral", Name: "Coral", Background: []string{"#fda4af", "#fb7185", "#f43f5e"}, Glow: "#fb7185", DarkStyle: "rose-pine", LightStyle: "rose-pine-dawn"},
	{Key: "peach", Name: "Peach", Background: []string{"#fecaca", "#fca5a5", "#fde68a"}, Glow: "#fca5a5", DarkStyle: "onedark", LightStyle: "friendly"},
	{Key: "flamingo", Name: "Flamingo", Background: []string{"#f472b6", "#db2777"}, Glow: "#f472b6", DarkStyle: "tokyonight-night", LightStyle: "tokyonight-day"},
	{Key: "gotham", Name: "Gotham", Background: []string{"#374151", "#111827", "#000000"}, Glow: "#6b7280", DarkStyle: "github-dark", LightStyle: "github"},
	{Key: "ice", Name: "Ice", Background: []string{"#e0f2fe", "#7dd3fc", "#0ea5e9"}, Glow: "#7dd3fc", DarkStyle: "nordic", LightStyle: "xcode"},
	{Key: "midnight", Name: "Midnight", Background: []string{"#1e3a8a", "#312e81", "#0f172a"}, Glow: "#4f46e5", DarkStyle: "tokyonight-storm", LightStyle: "vs"},
	{Key: "forest", Name: "Forest", Background: []string{"#14532d", "#15803d", "#84cc16"}, Glow: "#22c55e", DarkStyle: "modus-vivendi", LightStyle: "modus-operandi"},
}

var (
	themesMu   sync.RWMutex
	userThemes = map[string]Theme{}
)

// Themes returns all themes, built-ins first in catalog order, then user themes sorted by key.
func Themes() []Theme {
	out := make([]Theme, 0, len(builtinThemes))
	out = append(out, builtinThemes...)
	themesMu.RLock()
	keys := make([]string, 0, len(userThemes))
	for k := range userThemes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, userThemes[k])
	}
	themesMu.RUnlock()
	return out
}

// LookupTheme reports whether key names a known theme.
func LookupTheme(key string) (Theme, bool) {
	for _, t := range builtinThemes {
		if t.Key == key {
			return t, true
		}
	}
	themesMu.RLock()
	defer themesMu.RUnlock()
	t, ok := userThemes[key]
	return t, ok
}

// ResolveTheme returns the theme for key, or the default theme.
func ResolveTheme(key string) Theme {
	if t, ok := LookupTheme(key); ok {
		return t
	}
	t, _ := LookupTheme(DefaultTheme)
	return t
}

// ChromaStyle returns the syntax style name for the given mode.
func (t Theme) ChromaStyle(dark bool) string {
	if dark {
		if t.DarkStyle != "" {
			return t.DarkStyle
		}
		return "dracula"
	}
	if t.LightStyle != "" {
		return t.LightStyle
	}
	return "github"
}

// Colors parses the background stops. Invalid entries are skipped; an
// empty result falls back to a neutral grey.
func (t Theme) Colors() []color.RGBA {
	out := make([]color.RGBA, 0, len(t.Background))
	for _, s := range t.Background {
		if c, err := ParseHex(s); err == nil {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		out = append(out, color.RGBA{R: 0x52, G: 0x52, B: 0x5b, A: 0xff})
	}
	return out
}

// GlowColor returns the parsed glow colour, or a translucent grey.
func (t Theme) GlowColor() color.RGBA {
	if c, err := ParseHex(t.Glow); err == nil {
		return c
	}
	return color.RGBA{R: 100, G: 100, B: 100, A: 0x33}
}

// ErrBadColor is returned by ParseHex for malformed colours.
var ErrBadColor = errors.New("invalid hex colour")

// ParseHex parses #rgb, #rrggbb or #rrggbbaa.
func ParseHex(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(h) {
	case 3:
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]}) + "ff"
	case 6:
		h += "ff"
	case 8:
	default:
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// Hex formats c as #rrggbb (alpha dropped).
func Hex(c color.RGBA) string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

// ValidateTheme checks a user supplied theme.
func ValidateTheme(t Theme) error {
	if strings.TrimSpace(t.Key) == "" {
		return errors.New("theme key is required")
	}
	if len(t.Background) == 0 {
		return fmt.Errorf("theme %s: background needs at least one colour", t.Key)
	}
	for _, s := range t.Background {
		if _, err := ParseHex(s); err != nil {
			return fmt.Errorf("theme %s: %w", t.Key, err)
		}
	}
	if t.Glow != "" {
		if _, err := ParseHex(t.Glow); err != nil {
			return fmt.Errorf("theme %s glow: %w", t.Key, err)
		}
	}
	return nil
}

// LoadUserThemes reads every *.yaml / *.yml file in dir and registers the
// valid ones. Built-in keys cannot be overridden. A missing dir is not an error.
// It returns the number of themes registered.
func LoadUserThemes(dir string) (int, error) {
	l := applog.WithOperation(applog.WithComponent("catalog"), "load_themes").With(slog.String("dir", dir))
	ents, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read themes dir: %w", err)
	}
	loaded := 0
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		t, err := ReadThemeFile(filepath.Join(dir, e.Name()))
		if err != nil {
			l.Warn("skip theme", slog.String("file", e.Name()), slog.Any("err", err))
			continue
		}
		if err := RegisterTheme(t); err != nil {
			l.Warn("skip theme", slog.String("file", e.Name()), slog.Any("err", err))
			continue
		}
		loaded++
	}
	l.Debug("user themes loaded", slog.Int("count", loaded))
	return loaded, nil
}

// ReadThemeFile parses and validates one theme YAML file.
func ReadThemeFile(path string) (Theme, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, err
	}
	return ParseTheme(filepath.Base(path), b)
}

// ParseTheme decodes theme YAML. A missing key defaults to the file name
// without extension.
func ParseTheme(name string, data []byte) (Theme, error) {
	var t Theme
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Theme{}, fmt.Errorf("parse %s: %w", name, err)
	}
	if t.Key == "" {
		t.Key = strings.TrimSuffix(name, filepath.Ext(name))
	}
	if t.Name == "" {
		t.Name = t.Key
	}
	return t, ValidateTheme(t)
}

// RegisterTheme adds a user theme to the catalog.
func RegisterTheme(t Theme) error {
	if err := ValidateTheme(t); err != nil {
		return err
	}
	for _, b := range builtinThemes {
		if b.Key == t.Key {
			return fmt.Errorf("theme %s shadows a built-in theme", t.Key)
		}
	}
	themesMu.Lock()
	userThemes[t.Key] = t
	themesMu.Unlock()
	return nil
}

