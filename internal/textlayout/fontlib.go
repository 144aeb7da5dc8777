/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

// FontLibrary stores loaded OpenType fonts mapped by family/weight/italic.
// It does not support named instances/variations beyond weight and italic flags.
type FontLibrary struct {
	mu    sync.RWMutex
	fonts map[fontKey]*opentype.Font
}

type fontKey struct {
	family string
	weight int
	italic bool
}

func NewFontLibrary() *FontLibrary { return &FontLibrary{fonts: make(map[fontKey]*opentype.Font)} }

// LoadTTF loads a font file into the library under the given family/weight/italic.
func (fl *FontLibrary) LoadTTF(family string, weight int, italic bool, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font %s: %w", path, err)
	}
	if err := fl.Add(family, weight, italic, data); err != nil {
		return fmt.Errorf("parse font %s: %w", path, err)
	}
	return nil
}

// Add parses font data and registers it.
func (fl *FontLibrary) Add(family string, weight int, italic bool, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return err
	}
	fl.mu.Lock()
	defer fl.mu.Unlock()
	if fl.fonts == nil {
		fl.fonts = make(map[fontKey]*opentype.Font)
	}
	fl.fonts[fontKey{family: strings.ToLower(family), weight: weight, italic: italic}] = f
	return nil
}

// LoadDir registers every .ttf/.otf file in dir under family. Weight and
// style are guessed from the file name ("Bold", "Italic").
func (fl *FontLibrary) LoadDir(family, dir string) (int, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read font dir: %w", err)
	}
	n := 0
	for _, e := range ents {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".ttf" && ext != ".otf") {
			continue
		}
		lower := strings.ToLower(e.Name())
		weight := 400
		if strings.Contains(lower, "bold") {
			weight = 700
		}
		italic := strings.Contains(lower, "italic")
		if err := fl.LoadTTF(family, weight, italic, filepath.Join(dir, e.Name())); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Has reports whether any face of family is loaded.
func (fl *FontLibrary) Has(family string) bool {
	return fl.find(FontSpec{Family: family}) != nil
}

func (fl *FontLibrary) find(spec FontSpec) *opentype.Font {
	if fl == nil {
		return nil
	}
	fl.mu.RLock()
	defer fl.mu.RUnlock()
	family := strings.ToLower(spec.Family)
	weight := spec.Weight
	if weight == 0 {
		weight = 400
	}
	// Exact match first
	if f, ok := fl.fonts[fontKey{family: family, weight: weight, italic: spec.Italic}]; ok {
		return f
	}
	if f, ok := fl.fonts[fontKey{family: family, weight: 400, italic: spec.Italic}]; ok {
		return f
	}
	if f, ok := fl.fonts[fontKey{family: family, weight: 400}]; ok {
		return f
	}
	for k, f := range fl.fonts {
		if k.family == family {
			return f
		}
	}
	return nil
}

// OTProvider resolves FontSpec using a FontLibrary and falls back to another Provider.
// It uses kerning as provided by opentype.Face and font.Drawer.
type OTProvider struct {
	Lib      *FontLibrary
	DPI      float64 // default 72 if zero, so points equal pixels
	Fallback Provider
}

func (p OTProvider) Resolve(spec FontSpec) (font.Face, Metrics) {
	if spec.SizePt <= 0 {
		spec.SizePt = 12
	}
	dpi := p.DPI
	if dpi <= 0 {
		dpi = 72
	}
	if p.Lib != nil {
		if f := p.Lib.find(spec); f != nil {
			face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: float64(spec.SizePt), DPI: dpi, Hinting: font.HintingFull})
			if err == nil {
				return face, metricsOf(face)
			}
		}
	}
	fb := p.Fallback
	if fb == nil {
		fb = GoProvider{}
	}
	return fb.Resolve(spec)
}

func metricsOf(face font.Face) Metrics {
	m := face.Metrics()
	return Metrics{
		Ascent:  float32(m.Ascent.Round()),
		Descent: float32(m.Descent.Round()),
		LineGap: float32(m.Height.Round() - m.Ascent.Round() - m.Descent.Round()),
	}
}
