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
	"strconv"
	"strings"
)

// Path commands and shapes.

type PathOp uint8

const (
	MoveTo PathOp = iota
	LineTo
	QuadTo  // quadratic bezier (cx, cy, x, y)
	CubicTo // cubic bezier (cx1, cy1, cx2, cy2, x, y)
	Close
)

type PathCmd struct {
	Op   PathOp
	Data [6]float32 // enough for cubic; unused slots are zero
}

type Path struct{ Cmds []PathCmd }

func (p *Path) MoveTo(x, y float32) {
	p.Cmds = append(p.Cmds, PathCmd{Op: MoveTo, Data: [6]float32{x, y}})
}
func (p *Path) LineTo(x, y float32) {
	p.Cmds = append(p.Cmds, PathCmd{Op: LineTo, Data: [6]float32{x, y}})
}
func (p *Path) QuadTo(cx, cy, x, y float32) {
	p.Cmds = append(p.Cmds, PathCmd{Op: QuadTo, Data: [6]float32{cx, cy, x, y}})
}
func (p *Path) CubicTo(cx1, cy1, cx2, cy2, x, y float32) {
	p.Cmds = append(p.Cmds, PathCmd{Op: CubicTo, Data: [6]float32{cx1, cy1, cx2, cy2, x, y}})
}
func (p *Path) Close() { p.Cmds = append(p.Cmds, PathCmd{Op: Close}) }

// kappa places cubic control points for a quarter circle.
const kappa = 0.5522847498

// RoundedRect returns a closed path for r with corner radius rad, clamped
// to half the shorter side.
func RoundedRect(r Rect, rad float32) *Path {
	if m := min(r.W, r.H) / 2; rad > m {
		rad = m
	}
	if rad < 0 {
		rad = 0
	}
	p := &Path{}
	x0, y0, x1, y1 := r.X, r.Y, r.X+r.W, r.Y+r.H
	k := rad * kappa
	p.MoveTo(x0+rad, y0)
	p.LineTo(x1-rad, y0)
	if rad > 0 {
		p.CubicTo(x1-rad+k, y0, x1, y0+rad-k, x1, y0+rad)
	}
	p.LineTo(x1, y1-rad)
	if rad > 0 {
		p.CubicTo(x1, y1-rad+k, x1-rad+k, y1, x1-rad, y1)
	}
	p.LineTo(x0+rad, y1)
	if rad > 0 {
		p.CubicTo(x0+rad-k, y1, x0, y1-rad+k, x0, y1-rad)
	}
	p.LineTo(x0, y0+rad)
	if rad > 0 {
		p.CubicTo(x0, y0+rad-k, x0+rad-k, y0, x0+rad, y0)
	}
	p.Close()
	return p
}

// Circle returns a closed path approximating a circle with four cubics.
func Circle(c Pt, rad float32) *Path {
	return RoundedRect(R(c.X-rad, c.Y-rad, 2*rad, 2*rad), rad)
}

// Transform returns a copy of p with m applied to every point.
func (p *Path) Transform(m Affine2D) *Path {
	out := &Path{Cmds: make([]PathCmd, len(p.Cmds))}
	for i, c := range p.Cmds {
		out.Cmds[i] = PathCmd{Op: c.Op}
		for j := 0; j+1 < 6; j += 2 {
			q := m.Apply(Pt{c.Data[j], c.Data[j+1]})
			out.Cmds[i].Data[j], out.Cmds[i].Data[j+1] = q.X, q.Y
		}
	}
	return out
}

// Reversed returns p traversed in the opposite direction. Filling a path
// together with its reversed inset punches a hole, which is how rings and
// borders are drawn. Only the first subpath is kept.
func (p *Path) Reversed() *Path {
	type seg struct {
		op   PathOp
		ctrl []Pt
		end  Pt
	}
	var (
		start  Pt
		segs   []seg
		closed bool
	)
	cur := Pt{}
walk:
	for i, c := range p.Cmds {
		d := c.Data
		switch c.Op {
		case MoveTo:
			if i > 0 {
				break walk
			}
			start, cur = Pt{d[0], d[1]}, Pt{d[0], d[1]}
		case LineTo:
			segs = append(segs, seg{op: LineTo, end: Pt{d[0], d[1]}})
			cur = Pt{d[0], d[1]}
		case QuadTo:
			segs = append(segs, seg{op: QuadTo, ctrl: []Pt{{d[0], d[1]}}, end: Pt{d[2], d[3]}})
			cur = Pt{d[2], d[3]}
		case CubicTo:
			segs = append(segs, seg{op: CubicTo, ctrl: []Pt{{d[0], d[1]}, {d[2], d[3]}}, end: Pt{d[4], d[5]}})
			cur = Pt{d[4], d[5]}
		case Close:
			closed = true
		}
	}
	out := &Path{}
	out.MoveTo(cur.X, cur.Y)
	for i := len(segs) - 1; i >= 0; i-- {
		prev := start
		if i > 0 {
			prev = segs[i-1].end
		}
		s := segs[i]
		switch s.op {
		case LineTo:
			out.LineTo(prev.X, prev.Y)
		case QuadTo:
			out.QuadTo(s.ctrl[0].X, s.ctrl[0].Y, prev.X, prev.Y)
		case CubicTo:
			out.CubicTo(s.ctrl[1].X, s.ctrl[1].Y, s.ctrl[0].X, s.ctrl[0].Y, prev.X, prev.Y)
		}
	}
	if closed {
		out.Close()
	}
	return out
}

// Ring returns the area between two rounded rectangles: outer minus inner.
func Ring(outer Rect, outerRad float32, inner Rect, innerRad float32) *Path {
	p := RoundedRect(outer, outerRad)
	p.Cmds = append(p.Cmds, RoundedRect(inner, innerRad).Reversed().Cmds...)
	return p
}

// SVGData renders the path as the value of an SVG d attribute.
func (p *Path) SVGData() string {
	var sb strings.Builder
	n := func(vals ...float32) {
		for _, v := range vals {
			sb.WriteByte(' ')
			sb.WriteString(strconv.FormatFloat(float64(FloatRound(v, 2)), 'f', -1, 32))
		}
	}
	for _, c := range p.Cmds {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		switch c.Op {
		case MoveTo:
			sb.WriteByte('M')
			n(c.Data[0], c.Data[1])
		case LineTo:
			sb.WriteByte('L')
			n(c.Data[0], c.Data[1])
		case QuadTo:
			sb.WriteByte('Q')
			n(c.Data[:4]...)
		case CubicTo:
			sb.WriteByte('C')
			n(c.Data[:6]...)
		case Close:
			sb.WriteByte('Z')
		}
	}
	return sb.String()
}

// Bounds returns an axis-aligned bounding box of the path using a simple
// approximation by considering control points.
func (p *Path) Bounds() Rect {
	minX, minY := float32(+1e9), float32(+1e9)
	maxX, maxY := float32(-1e9), float32(-1e9)
	grow := func(x, y float32) {
		minX, minY = min(minX, x), min(minY, y)
		maxX, maxY = max(maxX, x), max(maxY, y)
	}
	for _, c := range p.Cmds {
		switch c.Op {
		case MoveTo, LineTo:
			grow(c.Data[0], c.Data[1])
		case QuadTo:
			grow(c.Data[0], c.Data[1])
			grow(c.Data[2], c.Data[3])
		case CubicTo:
			grow(c.Data[0], c.Data[1])
			grow(c.Data[2], c.Data[3])
			grow(c.Data[4], c.Data[5])
		}
	}
	if minX > maxX || minY > maxY {
		return Rect{}
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}
