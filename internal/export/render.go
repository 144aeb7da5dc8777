/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package export

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/raghul017/Prism/internal/textlayout"
	"github.com/raghul017/Prism/internal/vector"
)

// RenderOptions controls output geometry shared by all writers.
type RenderOptions struct {
	// Scale multiplies the logical size; 0 means 1.
	Scale float32
	// Frame, when set, fixes the output size. The scene is scaled to fit and
	// centred; the background then fills the whole frame.
	Frame vector.Size
	// Provider resolves fonts for raster text; nil uses the bundled Go fonts.
	Provider textlayout.Provider
}

// placement maps scene coordinates into output pixels.
type placement struct {
	outW, outH int
	scale      float32
	offX, offY float32
	framed     bool
}

func (o RenderOptions) place(s Scene) placement {
	scale := o.Scale
	if scale <= 0 {
		scale = 1
	}
	if o.Frame.W > 0 && o.Frame.H > 0 {
		fit := min(o.Frame.W/s.Width, o.Frame.H/s.Height)
		return placement{
			outW: int(o.Frame.W + 0.5), outH: int(o.Frame.H + 0.5),
			scale:  fit,
			offX:   (o.Frame.W - s.Width*fit) / 2,
			offY:   (o.Frame.H - s.Height*fit) / 2,
			framed: true,
		}
	}
	return placement{outW: int(s.Width*scale + 0.5), outH: int(s.Height*scale + 0.5), scale: scale}
}

func (p placement) m() vector.Affine2D {
	return vector.Translate(p.offX, p.offY).Mul(vector.Scale(p.scale, p.scale))
}

func (p placement) pt(x, y float32) vector.Pt { return p.m().Apply(vector.Pt{X: x, Y: y}) }

type glowLayer struct {
	rect  vector.Rect
	rad   float32
	alpha float32
}

// glowLayers approximates a blurred box shadow with stacked translucent
// rounded rectangles, widest first.
func glowLayers(s Scene) []glowLayer {
	if s.Glow == nil {
		return nil
	}
	const steps = 10
	var out []glowLayer
	for i := 0; i < steps; i++ {
		t := float32(i) / steps
		grow := s.Glow.Spread + s.Glow.Blur/2*(1-t)
		r := s.Window.Inset(-grow, -grow)
		if r.W <= 0 || r.H <= 0 {
			continue
		}
		out = append(out, glowLayer{rect: r, rad: s.WindowRadius + max(grow, 0), alpha: float32(s.Glow.Color.A) / 255 * 0.12})
	}
	return out
}

// RenderImage rasterizes the scene.
func RenderImage(s Scene, o RenderOptions) (*image.RGBA, error) {
	pl := o.place(s)
	prov := o.Provider
	if prov == nil {
		prov = textlayout.GoProvider{}
	}
	img := image.NewRGBA(image.Rect(0, 0, pl.outW, pl.outH))
	m := pl.m()

	if len(s.Background) > 0 {
		var outline *vector.Path
		start, end := pl.pt(0, 0), pl.pt(s.Width, s.Height)
		if pl.framed {
			outline = vector.RoundedRect(vector.R(0, 0, float32(pl.outW), float32(pl.outH)), 0)
			start, end = vector.Pt{}, vector.Pt{X: float32(pl.outW), Y: float32(pl.outH)}
		} else {
			outline = s.Outline().Transform(m)
		}
		vector.Fill(img, outline, vector.LinearGradient{Start: start, End: end, Stops: opaque(s.Background)})
	}
	for _, g := range glowLayers(s) {
		c := s.Glow.Color
		c.A = uint8(g.alpha*255 + 0.5)
		vector.FillColor(img, vector.RoundedRect(g.rect, g.rad).Transform(m), c)
	}

	win := vector.RoundedRect(s.Window, s.WindowRadius).Transform(m)
	vector.FillColor(img, win, s.WindowFill)
	inner := s.Window.Inset(s.BorderWidth, s.BorderWidth)
	vector.FillColor(img, vector.Ring(s.Window, s.WindowRadius, inner, s.WindowRadius-s.BorderWidth).Transform(m), s.WindowBorder)

	for _, d := range s.Dots {
		vector.FillColor(img, vector.Circle(d.Center, d.Radius).Transform(m), d.Color)
	}
	if s.RuleX > 0 {
		vector.FillColor(img, vector.RoundedRect(vector.R(s.RuleX, s.RuleTop, 1, s.RuleBot-s.RuleTop), 0).Transform(m), ruleColor)
	}

	tr := textRenderer{img: img, pl: pl, prov: prov}
	for _, g := range s.Glyphs {
		tr.draw(g)
	}
	if s.Title != nil {
		tr.draw(*s.Title)
	}
	for _, g := range s.Gutter {
		tr.draw(g)
	}
	for _, row := range s.Code {
		for _, r := range row.Runs {
			tr.draw(r)
		}
	}

	if s.Image != nil {
		if s.Image.Decoded == nil {
			return nil, ErrUndecodableImage
		}
		r := s.Image.Rect
		a, b := pl.pt(r.X, r.Y), pl.pt(r.X+r.W, r.Y+r.H)
		dst := image.Rect(int(a.X+0.5), int(a.Y+0.5), int(b.X+0.5), int(b.Y+0.5))
		xdraw.CatmullRom.Scale(img, dst, s.Image.Decoded, s.Image.Decoded.Bounds(), draw.Over, nil)
	}
	return img, nil
}

func opaque(cs []color.NRGBA) []color.RGBA {
	out := make([]color.RGBA, len(cs))
	for i, c := range cs {
		r, g, b, a := c.RGBA()
		out[i] = color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
	}
	return out
}

type textRenderer struct {
	img  *image.RGBA
	pl   placement
	prov textlayout.Provider
}

func (t textRenderer) draw(r TextRun) {
	spec := r.Font
	spec.SizePt *= t.pl.scale
	spec.Italic = r.Italic
	if r.Bold {
		spec.Weight = 700
	}
	face, _ := t.prov.Resolve(spec)
	d := &font.Drawer{Dst: t.img, Src: image.NewUniform(r.Color), Face: face}
	p := t.pl.pt(r.X, r.Y)
	x := fixed.Int26_6(p.X * 64)
	switch r.Anchor {
	case AnchorMiddle:
		x -= d.MeasureString(r.Text) / 2
	case AnchorEnd:
		x -= d.MeasureString(r.Text)
	}
	d.Dot = fixed.Point26_6{X: x, Y: fixed.Int26_6(p.Y * 64)}
	d.DrawString(r.Text)
}
