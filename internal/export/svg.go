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
	"encoding/xml"
	"fmt"
	"image/color"
	"io"
	"strings"

	"github.com/raghul017/Prism/internal/vector"
)

// EncodeSVG writes the scene as a standalone SVG document. Text stays text
// and uses the font's CSS stack, so output is sharp at any zoom.
func EncodeSVG(w io.Writer, s Scene, o RenderOptions) error {
	pl := o.place(s)
	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	vbW, vbH := s.Width, s.Height
	vbX, vbY := float32(0), float32(0)
	if pl.framed {
		vbW, vbH = float32(pl.outW)/pl.scale, float32(pl.outH)/pl.scale
		vbX, vbY = -pl.offX/pl.scale, -pl.offY/pl.scale
	}
	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%dpx\" height=\"%dpx\" viewBox=\"%g %g %g %g\">\n", pl.outW, pl.outH, vbX, vbY, vbW, vbH)
	wf("  <defs>\n")
	if len(s.Background) > 0 {
		wf("    <linearGradient id=\"bg\" gradientUnits=\"userSpaceOnUse\" x1=\"%g\" y1=\"%g\" x2=\"%g\" y2=\"%g\">\n", vbX, vbY, vbX+vbW, vbY+vbH)
		for i, c := range s.Background {
			off := 0.0
			if len(s.Background) > 1 {
				off = float64(i) / float64(len(s.Background)-1)
			}
			wf("      <stop offset=\"%g\" stop-color=\"%s\" stop-opacity=\"%s\"/>\n", off, svgColor(c), svgOpacity(c))
		}
		wf("    </linearGradient>\n")
	}
	if s.Glow != nil {
		wf("    <filter id=\"glow\" x=\"-50%%\" y=\"-50%%\" width=\"200%%\" height=\"200%%\"><feGaussianBlur stdDeviation=\"%g\"/></filter>\n", s.Glow.Blur/2)
	}
	wf("    <clipPath id=\"window\"><path d=\"%s\"/></clipPath>\n", vector.RoundedRect(s.Window, s.WindowRadius).SVGData())
	wf("  </defs>\n")

	if len(s.Background) > 0 {
		if pl.framed {
			wf("  <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"url(#bg)\"/>\n", vbX, vbY, vbW, vbH)
		} else {
			wf("  <path d=\"%s\" fill=\"url(#bg)\"/>\n", s.Outline().SVGData())
		}
	}
	if s.Glow != nil {
		g := s.Window.Inset(-s.Glow.Spread, -s.Glow.Spread)
		if g.W > 0 && g.H > 0 {
			wf("  <path d=\"%s\" fill=\"%s\" fill-opacity=\"%s\" filter=\"url(#glow)\"/>\n",
				vector.RoundedRect(g, s.WindowRadius).SVGData(), svgColor(s.Glow.Color), svgOpacity(s.Glow.Color))
		}
	}
	wf("  <path d=\"%s\" fill=\"%s\" fill-opacity=\"%s\" stroke=\"%s\" stroke-opacity=\"%s\" stroke-width=\"%g\"/>\n",
		vector.RoundedRect(s.Window.Inset(s.BorderWidth/2, s.BorderWidth/2), s.WindowRadius-s.BorderWidth/2).SVGData(),
		svgColor(s.WindowFill), svgOpacity(s.WindowFill), svgColor(s.WindowBorder), svgOpacity(s.WindowBorder), s.BorderWidth)

	for _, d := range s.Dots {
		wf("  <circle cx=\"%g\" cy=\"%g\" r=\"%g\" fill=\"%s\"/>\n", d.Center.X, d.Center.Y, d.Radius, svgColor(d.Color))
	}
	for _, g := range s.Glyphs {
		wf("  %s\n", svgText(g, "monospace"))
	}
	if s.Title != nil {
		wf("  %s\n", svgText(*s.Title, "Inter, system-ui, sans-serif"))
	}
	if s.RuleX > 0 {
		wf("  <line x1=\"%g\" y1=\"%g\" x2=\"%g\" y2=\"%g\" stroke=\"%s\" stroke-opacity=\"%s\" stroke-width=\"1\"/>\n",
			s.RuleX+0.5, s.RuleTop, s.RuleX+0.5, s.RuleBot, svgColor(ruleColor), svgOpacity(ruleColor))
	}
	for _, g := range s.Gutter {
		wf("  %s\n", svgText(g, s.FontCSS))
	}
	if len(s.Code) > 0 {
		wf("  <g clip-path=\"url(#window)\" font-family=\"%s\" font-size=\"%g\" xml:space=\"preserve\">\n", escAttr(s.FontCSS), s.CodeFont.SizePt)
		for _, row := range s.Code {
			if len(row.Runs) == 0 {
				continue
			}
			wf("    <text x=\"%g\" y=\"%g\">", row.X, row.Y)
			for _, r := range row.Runs {
				wf("<tspan fill=\"%s\"%s>%s</tspan>", svgColor(r.Color), fontAttrs(r), esc(r.Text))
			}
			wf("</text>\n")
		}
		wf("  </g>\n")
	}
	if s.Image != nil {
		r := s.Image.Rect
		wf("  <image x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" preserveAspectRatio=\"xMidYMid meet\" href=\"%s\"/>\n", r.X, r.Y, r.W, r.H, escAttr(s.Image.URI))
	}
	wf("</svg>\n")
	if werr != nil {
		return fmt.Errorf("build svg: %w", werr)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

// ExportSVG writes the scene to path.
func ExportSVG(s Scene, path string, o RenderOptions) error {
	return writeFile(path, func(w io.Writer) error { return EncodeSVG(w, s, o) })
}

func svgText(r TextRun, family string) string {
	anchor := ""
	switch r.Anchor {
	case AnchorMiddle:
		anchor = ` text-anchor="middle"`
	case AnchorEnd:
		anchor = ` text-anchor="end"`
	}
	return fmt.Sprintf(`<text x="%g" y="%g" font-family="%s" font-size="%g" fill="%s" fill-opacity="%s"%s%s>%s</text>`,
		r.X, r.Y, escAttr(family), r.Font.SizePt, svgColor(r.Color), svgOpacity(r.Color), fontAttrs(r), anchor, esc(r.Text))
}

func fontAttrs(r TextRun) string {
	var sb strings.Builder
	if r.Bold || r.Font.Weight >= 600 {
		sb.WriteString(` font-weight="bold"`)
	}
	if r.Italic {
		sb.WriteString(` font-style="italic"`)
	}
	return sb.String()
}

func svgColor(c color.NRGBA) string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

func svgOpacity(c color.NRGBA) string { return fmt.Sprintf("%.3g", float64(c.A)/255) }

func esc(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

func escAttr(s string) string { return esc(s) }
