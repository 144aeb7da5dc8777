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

// Abstractions for text measurement and code layout. All measurement goes
// through Provider so exporters and tests can swap font engines.

import (
	"image/color"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/raghul017/Prism/internal/highlight"
)

// FontSpec describes a requested font.
type FontSpec struct {
	Family string // logical family name
	SizePt float32
	Weight int // 100..900
	Italic bool
}

// Metrics provides font metrics in pixels for the resolved face.
type Metrics struct {
	Ascent, Descent, LineGap float32
}

// Provider maps FontSpec to a concrete font.Face.
type Provider interface {
	Resolve(FontSpec) (font.Face, Metrics)
}

// BasicProvider uses x/image/basicfont Face7x13 for deterministic tests.
type BasicProvider struct{}

func (BasicProvider) Resolve(spec FontSpec) (font.Face, Metrics) {
	f := basicfont.Face7x13
	return f, metricsOf(f)
}

func advance(d *font.Drawer, s string) float32 {
	return float32(d.MeasureString(s)) / 64 // fixed.Int26_6 to px
}

// Measure returns the advance width of text and the line height of spec.
func Measure(provider Provider, spec FontSpec, text string) (w, h float32) {
	if provider == nil {
		provider = GoProvider{}
	}
	face, met := provider.Resolve(spec)
	return advance(&font.Drawer{Face: face}, text), met.Ascent + met.Descent
}

// PlacedSpan is a highlighted run positioned on its line.
type PlacedSpan struct {
	X, Width float32
	Text     string
	Color    color.RGBA
	Bold     bool
	Italic   bool
}

// CodeLine is one laid out source line.
type CodeLine struct {
	Baseline float32 // from the top of the code box
	Width    float32
	Spans    []PlacedSpan
}

// CodeBox is laid out code. Lines never wrap.
type CodeBox struct {
	Lines      []CodeLine
	Width      float32
	Height     float32
	LineHeight float32
	Metrics    Metrics
	Font       FontSpec
}

// LayoutCode positions every span of doc using style. Bold and italic spans
// resolve their own faces so widths stay exact for proportional fallbacks.
func LayoutCode(provider Provider, doc highlight.Document, style TextStyle) CodeBox {
	if provider == nil {
		provider = GoProvider{}
	}
	spec := style.Font
	_, met := provider.Resolve(spec)
	lh := style.LineHeight(met)
	box := CodeBox{LineHeight: lh, Metrics: met, Font: spec}
	// Centre the glyphs in the line box like CSS line-height does.
	half := (lh - met.Ascent - met.Descent) / 2
	drawers := map[[2]bool]*font.Drawer{}
	drawer := func(bold, italic bool) *font.Drawer {
		k := [2]bool{bold, italic}
		if d, ok := drawers[k]; ok {
			return d
		}
		s := spec
		s.Italic = italic
		if bold {
			s.Weight = 700
		}
		face, _ := provider.Resolve(s)
		d := &font.Drawer{Face: face}
		drawers[k] = d
		return d
	}
	for i, line := range doc.Lines {
		cl := CodeLine{Baseline: float32(i)*lh + half + met.Ascent}
		x := float32(0)
		for _, sp := range line {
			w := advance(drawer(sp.Bold, sp.Italic), sp.Text) + style.Tracking*float32(len([]rune(sp.Text)))
			cl.Spans = append(cl.Spans, PlacedSpan{X: x, Width: w, Text: sp.Text, Color: sp.Color, Bold: sp.Bold, Italic: sp.Italic})
			x += w
		}
		cl.Width = x
		if x > box.Width {
			box.Width = x
		}
		box.Lines = append(box.Lines, cl)
	}
	box.Height = float32(len(doc.Lines)) * lh
	box.Width = float32(math.Ceil(float64(box.Width)))
	return box
}
