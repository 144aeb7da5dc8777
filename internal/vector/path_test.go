/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package vector

import (
	"image"
	"image/color"
	"strings"
	"testing"
)

func TestRoundedRect_BoundsAndClamp(t *testing.T) {
	p := RoundedRect(R(10, 20, 100, 40), 50)
	b := p.Bounds()
	if b.X != 10 || b.Y != 20 || b.W != 100 || b.H != 40 {
		t.Fatalf("unexpected bounds: %+v", b)
	}
	// Radius clamps to 20, so the first segment starts at x=30.
	if p.Cmds[0].Data[0] != 30 {
		t.Fatalf("radius not clamped: %+v", p.Cmds[0])
	}
}

func TestPath_TransformAndSVG(t *testing.T) {
	var p Path
	p.MoveTo(0, 0)
	p.LineTo(10, 0)
	p.LineTo(0, 10)
	p.Close()
	q := p.Transform(Translate(5, 5).Mul(Scale(2, 2)))
	b := q.Bounds()
	if b.X != 5 || b.Y != 5 || b.W != 20 || b.H != 20 {
		t.Fatalf("unexpected transformed bounds: %+v", b)
	}
	if d := p.SVGData(); d != "M 0 0 L 10 0 L 0 10 Z" {
		t.Fatalf("d = %q", d)
	}
	if d := Circle(Pt{5, 5}, 5).SVGData(); !strings.Contains(d, "C") {
		t.Fatalf("circle should use cubic segments: %q", d)
	}
}

func TestFill_RasterizesInsideOnly(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	FillColor(img, RoundedRect(R(5, 5, 10, 10), 0), color.RGBA{R: 255, A: 255})
	if got := img.RGBAAt(10, 10); got.R != 255 {
		t.Fatalf("center not filled: %+v", got)
	}
	if got := img.RGBAAt(1, 1); got.A != 0 {
		t.Fatalf("outside was painted: %+v", got)
	}
}

func TestLinearGradient(t *testing.T) {
	g := LinearGradient{Start: Pt{0, 0}, End: Pt{100, 0}, Stops: []color.RGBA{{A: 255}, {R: 200, A: 255}}}
	if c := g.At(-10, 0).(color.RGBA); c.R != 0 {
		t.Fatalf("before start = %+v", c)
	}
	if c := g.At(200, 0).(color.RGBA); c.R != 200 {
		t.Fatalf("after end = %+v", c)
	}
	mid := g.At(50, 0).(color.RGBA)
	if mid.R < 95 || mid.R > 105 {
		t.Fatalf("midpoint = %+v", mid)
	}
}

func TestReversed_EndpointsAndRing(t *testing.T) {
	var p Path
	p.MoveTo(0, 0)
	p.LineTo(10, 0)
	p.CubicTo(12, 0, 14, 2, 14, 4)
	p.Close()
	r := p.Reversed()
	if d := r.SVGData(); d != "M 14 4 C 14 2 12 0 10 0 L 0 0 Z" {
		t.Fatalf("reversed = %q", d)
	}

	img := image.NewRGBA(image.Rect(0, 0, 30, 30))
	FillColor(img, Ring(R(0, 0, 30, 30), 0, R(5, 5, 20, 20), 0), color.RGBA{G: 255, A: 255})
	if img.RGBAAt(2, 15).G != 255 {
		t.Fatalf("ring edge not painted")
	}
	if img.RGBAAt(15, 15).A != 0 {
		t.Fatalf("ring hole was painted")
	}
}
