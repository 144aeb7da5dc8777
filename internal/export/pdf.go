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
	"bytes"
	"fmt"
	"image/color"
	"image/png"
	"io"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/raghul017/Prism/internal/textlayout"
	"github.com/raghul017/Prism/internal/vector"
)

const (
	pdfMono = "prism-mono"
	pdfUI   = "prism-ui"
)

// EncodePDF writes the scene as a single-page vector PDF. One logical pixel
// maps to one point. Gradients keep only their first and last stop.
func EncodePDF(w io.Writer, s Scene, o RenderOptions) error {
	pl := o.place(s)
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: float64(pl.outW), Ht: float64(pl.outH)},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(pdfTitle(s), true)
	pdf.SetCreator("Prism", false)
	pdf.AddUTF8FontFromBytes(pdfMono, "", gomono.TTF)
	pdf.AddUTF8FontFromBytes(pdfMono, "B", gomonobold.TTF)
	pdf.AddUTF8FontFromBytes(pdfMono, "I", gomonoitalic.TTF)
	pdf.AddUTF8FontFromBytes(pdfMono, "BI", gomonobolditalic.TTF)
	pdf.AddUTF8FontFromBytes(pdfUI, "", goregular.TTF)
	pdf.AddUTF8FontFromBytes(pdfUI, "B", gobold.TTF)
	pdf.AddPage()

	m := pl.m()
	if len(s.Background) > 0 {
		first, last := s.Background[0], s.Background[len(s.Background)-1]
		if pl.framed {
			pdf.ClipRect(0, 0, float64(pl.outW), float64(pl.outH), false)
			pdf.LinearGradient(0, 0, float64(pl.outW), float64(pl.outH),
				int(first.R), int(first.G), int(first.B), int(last.R), int(last.G), int(last.B), 0, 0, 1, 1)
		} else {
			a, b := pl.pt(0, 0), pl.pt(s.Width, s.Height)
			wd, ht := float64(b.X-a.X), float64(b.Y-a.Y)
			pdf.ClipRoundedRect(float64(a.X), float64(a.Y), wd, ht, float64(s.CanvasRadius*pl.scale), false)
			pdf.LinearGradient(float64(a.X), float64(a.Y), wd, ht,
				int(first.R), int(first.G), int(first.B), int(last.R), int(last.G), int(last.B), 0, 0, 1, 1)
		}
		pdf.ClipEnd()
	}
	for _, g := range glowLayers(s) {
		c := s.Glow.Color
		c.A = uint8(g.alpha*255 + 0.5)
		pdfFill(pdf, vector.RoundedRect(g.rect, g.rad).Transform(m), c)
	}
	pdfFill(pdf, vector.RoundedRect(s.Window, s.WindowRadius).Transform(m), s.WindowFill)
	inner := s.Window.Inset(s.BorderWidth, s.BorderWidth)
	pdfFill(pdf, vector.Ring(s.Window, s.WindowRadius, inner, s.WindowRadius-s.BorderWidth).Transform(m), s.WindowBorder)
	for _, d := range s.Dots {
		pdfFill(pdf, vector.Circle(d.Center, d.Radius).Transform(m), d.Color)
	}
	if s.RuleX > 0 {
		pdfFill(pdf, vector.RoundedRect(vector.R(s.RuleX, s.RuleTop, 1, s.RuleBot-s.RuleTop), 0).Transform(m), ruleColor)
	}

	for _, g := range s.Glyphs {
		pdfText(pdf, pl, g, pdfMono)
	}
	if s.Title != nil {
		pdfText(pdf, pl, *s.Title, pdfUI)
	}
	for _, g := range s.Gutter {
		pdfText(pdf, pl, g, pdfMono)
	}
	for _, row := range s.Code {
		for _, r := range row.Runs {
			pdfText(pdf, pl, r, pdfMono)
		}
	}

	if s.Image != nil {
		if s.Image.Decoded == nil {
			return ErrUndecodableImage
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, s.Image.Decoded); err != nil {
			return fmt.Errorf("encode image for pdf: %w", err)
		}
		opt := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("custom", opt, &buf)
		r := s.Image.Rect
		a, b := pl.pt(r.X, r.Y), pl.pt(r.X+r.W, r.Y+r.H)
		pdf.ImageOptions("custom", float64(a.X), float64(a.Y), float64(b.X-a.X), float64(b.Y-a.Y), false, opt, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// ExportPDF writes the scene to path.
func ExportPDF(s Scene, path string, o RenderOptions) error {
	return writeFile(path, func(w io.Writer) error { return EncodePDF(w, s, o) })
}

func pdfTitle(s Scene) string {
	if s.Title != nil && s.Title.Text != "" {
		return s.Title.Text
	}
	return "Prism snapshot"
}

func pdfFill(pdf *gofpdf.Fpdf, p *vector.Path, c color.NRGBA) {
	if c.A == 0 || len(p.Cmds) == 0 {
		return
	}
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
	pdf.SetAlpha(float64(c.A)/255, "Normal")
	var cur vector.Pt
	for _, cmd := range p.Cmds {
		d := cmd.Data
		switch cmd.Op {
		case vector.MoveTo:
			pdf.MoveTo(float64(d[0]), float64(d[1]))
			cur = vector.Pt{X: d[0], Y: d[1]}
		case vector.LineTo:
			pdf.LineTo(float64(d[0]), float64(d[1]))
			cur = vector.Pt{X: d[0], Y: d[1]}
		case vector.QuadTo:
			// Elevate to cubic.
			c1x := cur.X + 2.0/3.0*(d[0]-cur.X)
			c1y := cur.Y + 2.0/3.0*(d[1]-cur.Y)
			c2x := d[2] + 2.0/3.0*(d[0]-d[2])
			c2y := d[3] + 2.0/3.0*(d[1]-d[3])
			pdf.CurveBezierCubicTo(float64(c1x), float64(c1y), float64(c2x), float64(c2y), float64(d[2]), float64(d[3]))
			cur = vector.Pt{X: d[2], Y: d[3]}
		case vector.CubicTo:
			pdf.CurveBezierCubicTo(float64(d[0]), float64(d[1]), float64(d[2]), float64(d[3]), float64(d[4]), float64(d[5]))
			cur = vector.Pt{X: d[4], Y: d[5]}
		case vector.Close:
			pdf.ClosePath()
		}
	}
	pdf.DrawPath("F")
	pdf.SetAlpha(1, "Normal")
}

func pdfText(pdf *gofpdf.Fpdf, pl placement, r TextRun, family string) {
	if r.Text == "" {
		return
	}
	style := ""
	if r.Bold || r.Font.Weight >= 600 {
		style += "B"
	}
	if r.Italic && family == pdfMono {
		style += "I"
	}
	if family == pdfUI && r.Font.Family != textlayout.UIFamily {
		family = pdfMono
	}
	pdf.SetFont(family, style, float64(r.Font.SizePt*pl.scale))
	pdf.SetTextColor(int(r.Color.R), int(r.Color.G), int(r.Color.B))
	pdf.SetAlpha(float64(r.Color.A)/255, "Normal")
	p := pl.pt(r.X, r.Y)
	x := float64(p.X)
	switch r.Anchor {
	case AnchorMiddle:
		x -= pdf.GetStringWidth(r.Text) / 2
	case AnchorEnd:
		x -= pdf.GetStringWidth(r.Text)
	}
	pdf.Text(x, float64(p.Y), r.Text)
	pdf.SetAlpha(1, "Normal")
}
