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
	"image/draw"
	"math"

	xvector "golang.org/x/image/vector"
)

// Fill rasterizes p onto dst with antialiasing, compositing src over it.
func Fill(dst draw.Image, p *Path, src image.Image) {
	b := dst.Bounds()
	if b.Empty() || len(p.Cmds) == 0 {
		return
	}
	z := xvector.NewRasterizer(b.Dx(), b.Dy())
	ox, oy := float32(b.Min.X), float32(b.Min.Y)
	open := false
	for _, c := range p.Cmds {
		d := c.Data
		switch c.Op {
		case MoveTo:
			if open {
				z.ClosePath()
			}
			z.MoveTo(d[0]-ox, d[1]-oy)
			open = true
		case LineTo:
			z.LineTo(d[0]-ox, d[1]-oy)
		case QuadTo:
			z.QuadTo(d[0]-ox, d[1]-oy, d[2]-ox, d[3]-oy)
		case CubicTo:
			z.CubeTo(d[0]-ox, d[1]-oy, d[2]-ox, d[3]-oy, d[4]-ox, d[5]-oy)
		case Close:
			z.ClosePath()
			open = false
		}
	}
	if open {
		z.ClosePath()
	}
	z.Draw(dst, b, src, b.Min)
}

// FillColor is Fill with a uniform colour.
func FillColor(dst draw.Image, p *Path, c color.Color) {
	Fill(dst, p, image.NewUniform(c))
}

// LinearGradient is an image.Image painting evenly spaced stops along the
// line from Start to End. Points outside the segment take the end colours.
type LinearGradient struct {
	Start, End Pt
	Stops      []color.RGBA
}

func (g LinearGradient) ColorModel() color.Model { return color.RGBAModel }

func (g LinearGradient) Bounds() image.Rectangle {
	return image.Rect(-1e9, -1e9, 1e9, 1e9)
}

func (g LinearGradient) At(x, y int) color.Color {
	switch len(g.Stops) {
	case 0:
		return color.RGBA{}
	case 1:
		return g.Stops[0]
	}
	dx, dy := g.End.X-g.Start.X, g.End.Y-g.Start.Y
	l2 := dx*dx + dy*dy
	var t float32
	if l2 > 0 {
		t = ((float32(x)+0.5-g.Start.X)*dx + (float32(y)+0.5-g.Start.Y)*dy) / l2
	}
	t = float32(math.Max(0, math.Min(1, float64(t))))
	seg := t * float32(len(g.Stops)-1)
	i := int(seg)
	if i >= len(g.Stops)-1 {
		return g.Stops[len(g.Stops)-1]
	}
	return Lerp(g.Stops[i], g.Stops[i+1], seg-float32(i))
}

// Lerp blends a towards b by t in [0,1].
func Lerp(a, b color.RGBA, t float32) color.RGBA {
	mix := func(x, y uint8) uint8 { return uint8(float32(x) + (float32(y)-float32(x))*t + 0.5) }
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}
