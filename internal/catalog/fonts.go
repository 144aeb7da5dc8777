/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package catalog

// DefaultFont is used whenever a font key is unknown.
const DefaultFont = "jetBrainsMono"

// Font is a selectable code font. Family is the logical family name used by
// the font library; CSS is the font-family stack written into SVG output.
type Font struct {
	Key       string
	Name      string
	Family    string
	CSS       string
	Ligatures bool
}

var builtinFonts = []Font{
	{Key: "jetBrainsMono", Name: "JetBrains Mono", Family: "JetBrains Mono", CSS: "'JetBrains Mono', monospace", Ligatures: true},
	{Key: "firaCode", Name: "Fira Code", Family: "Fira Code", CSS: "'Fira Code', monospace", Ligatures: true},
	{Key: "ibmPlexMono", Name: "IBM Plex Mono", Family: "IBM Plex Mono", CSS: "'IBM Plex Mono', monospace"},
	{Key: "sourceCodePro", Name: "Source Code Pro", Family: "Source Code Pro", CSS: "'Source Code Pro', monospace"},
	{Key: "spaceMono", Name: "Space Mono", Family: "Space Mono", CSS: "'Space Mono', monospace"},
	{Key: "geistMono", Name: "Geist Mono", Family: "Geist Mono", CSS: "'Geist Mono', monospace", Ligatures: true},
	{Key: "goMono", Name: "Go Mono", Family: "Go Mono", CSS: "'Go Mono', monospace"},
}

// Fonts lists the built-in fonts in display order.
func Fonts() []Font {
	out := make([]Font, len(builtinFonts))
	copy(out, builtinFonts)
	return out
}

// LookupFont reports whether key names a known font.
func LookupFont(key string) (Font, bool) {
	for _, f := range builtinFonts {
		if f.Key == key {
			return f, true
		}
	}
	return Font{}, false
}

// ResolveFont returns the font for key, or the default font.
func ResolveFont(key string) Font {
	if f, ok := LookupFont(key); ok {
		return f
	}
	f, _ := LookupFont(DefaultFont)
	return f
}
