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
	"image/color"
	"testing"

	"github.com/raghul017/Prism/internal/highlight"
)

func TestMeasure_Deterministic(t *testing.T) {
	w1, h1 := Measure(BasicProvider{}, FontSpec{}, "ABC")
	w2, h2 := Measure(BasicProvider{}, FontSpec{}, "ABC")
	if w1 != w2 || h1 != h2 || w1 != 21 {
		t.Fatalf("expected 7px per glyph, got w1=%v h1=%v vs w2=%v h2=%v", w1, h1, w2, h2)
	}
}

func TestGoProvider_MonospaceAndSize(t *testing.T) {
	wi, _ := Measure(GoProvider{}, FontSpec{SizePt: 16}, "iiii")
	wm, _ := Measure(GoProvider{}, FontSpec{SizePt: 16}, "MMMM")
	if wi != wm || wi <= 0 {
		t.Fatalf("Go Mono should be monospaced: %v vs %v", wi, wm)
	}
	big, _ := Measure(GoProvider{}, FontSpec{SizePt: 32}, "iiii")
	if big <= wi {
		t.Fatalf("larger size should be wider: %v <= %v", big, wi)
	}
	ui, _ := Measure(GoProvider{}, FontSpec{Family: UIFamily, SizePt: 16}, "iiii")
	if ui >= wi {
		t.Fatalf("proportional UI font should set narrow glyphs narrower: %v >= %v", ui, wi)
	}
}

func TestLayoutCode(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	doc := highlight.Document{Lines: []highlight.Line{
		{{Text: "ab", Color: red}, {Text: "cd"}},
		nil,
		{{Text: "abcdef"}},
	}}
	st := TextStyle{Font: FontSpec{SizePt: 10}, LineFactor: 1.5}
	box := LayoutCode(BasicProvider{}, doc, st)
	if len(box.Lines) != 3 {
		t.Fatalf("lines = %d", len(box.Lines))
	}
	if box.LineHeight != 15 || box.Height != 45 {
		t.Fatalf("line height/height = %v/%v", box.LineHeight, box.Height)
	}
	if box.Width != 42 {
		t.Fatalf("width = %v, want widest line 6*7", box.Width)
	}
	sp := box.Lines[0].Spans
	if sp[1].X != 14 || sp[0].Color != red {
		t.Fatalf("spans = %+v", sp)
	}
	if box.Lines[1].Baseline-box.Lines[0].Baseline != box.LineHeight {
		t.Fatalf("baselines not spaced by the line height")
	}
}

func TestStylesFor(t *testing.T) {
	st := StylesFor("jetBrainsMono", 18)
	if st[RoleCode].Font.SizePt != 18 || st[RoleTitle].Font.Family != UIFamily {
		t.Fatalf("unexpected styles %+v", st)
	}
	if h := st[RoleCode].LineHeight(Metrics{}); h != 27 {
		t.Fatalf("line height = %v", h)
	}
}

func TestOTProvider_Fallback(t *testing.T) {
	// No fonts loaded but resolve should work via fallback
	otp := OTProvider{Lib: NewFontLibrary()}
	face, met := otp.Resolve(FontSpec{Family: "Missing", SizePt: 12})
	if face == nil || met.Ascent <= 0 {
		t.Fatalf("expected fallback face, got %v %+v", face, met)
	}
	if otp.Lib.Has("Missing") {
		t.Fatalf("library should be empty")
	}
}
