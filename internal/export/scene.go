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
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // decoder registration
	_ "image/jpeg" // decoder registration
	_ "image/png"  // decoder registration
	"strconv"

	_ "golang.org/x/image/bmp"  // decoder registration
	_ "golang.org/x/image/tiff" // decoder registration
	_ "golang.org/x/image/webp" // decoder registration

	"github.com/raghul017/Prism/internal/catalog"
	"github.com/raghul017/Prism/internal/highlight"
	"github.com/raghul017/Prism/internal/prefs"
	"github.com/raghul017/Prism/internal/textlayout"
	"github.com/raghul017/Prism/internal/upload"
	"github.com/raghul017/Prism/internal/vector"
)

// Layout constants in logical pixels, matching the editor's window chrome.
const (
	MinWindowWidth = 300
	MaxImageWidth  = 960

	canvasRadius  = 12
	windowRadius  = 12
	borderWidth   = 2
	headerPadX    = 16
	headerPadY    = 12
	headerContent = 20
	bodyPad       = 16
	codeBottom    = 8
	gutterPad     = 16
	gutterRule    = 1
	dotSize       = 12
	dotGap        = 6
	minimalDot    = 10
	winButtonW    = 24
	winButtonH    = 20
	winButtonGap  = 4
	winGlyphSize  = 12
	titleGap      = 16

	glowBlur   = 80
	glowSpread = -20
)

var (
	// ErrUndecodableImage is returned when a raster target cannot decode the custom image.
	ErrUndecodableImage = errors.New("image cannot be decoded")
)

// Anchor aligns a text run horizontally at X.
type Anchor int

const (
	AnchorStart Anchor = iota
	AnchorMiddle
	AnchorEnd
)

// TextRun is positioned text; Y is the baseline.
type TextRun struct {
	X, Y   float32
	Width  float32
	Text   string
	Color  color.NRGBA
	Font   textlayout.FontSpec
	Bold   bool
	Italic bool
	Anchor Anchor
}

// CodeRow groups the runs of one source line so vector writers can emit
// them as a single text element.
type CodeRow struct {
	X, Y float32
	Runs []TextRun
}

// Dot is a filled window control circle.
type Dot struct {
	Center vector.Pt
	Radius float32
	Color  color.NRGBA
}

// Glow is a soft shadow around the window.
type Glow struct {
	Color  color.NRGBA
	Blur   float32
	Spread float32
}

// ImageContent is a custom image shown instead of code.
type ImageContent struct {
	Rect vector.Rect
	MIME string
	Data []byte
	URI  string
	// Decoded is nil for formats without a raster decoder (SVG).
	Decoded image.Image
}

// Scene is a resolved, renderer-independent description of one shot.
// Coordinates are logical pixels at 1x.
type Scene struct {
	Width, Height float32
	CanvasRadius  float32

	// Background stops run from the top-left to the bottom-right corner.
	// Empty means a transparent canvas.
	Background []color.NRGBA
	Glow       *Glow

	Window       vector.Rect
	WindowRadius float32
	WindowFill   color.NRGBA
	WindowBorder color.NRGBA
	BorderWidth  float32

	Dots     []Dot
	Glyphs   []TextRun // windows frame buttons
	Title    *TextRun
	Gutter   []TextRun
	RuleX    float32 // gutter separator, 0 when hidden
	RuleTop  float32
	RuleBot  float32
	Code     []CodeRow
	Image    *ImageContent
	FontCSS  string
	CodeFont textlayout.FontSpec

	Dark     bool
	Theme    string
	Language string
	Lines    int
}

// SceneOptions tunes BuildScene.
type SceneOptions struct {
	// Provider measures text; nil uses the bundled Go fonts.
	Provider textlayout.Provider
	// Width forces a wider canvas, like dragging the editor's resize handle.
	// Values below the minimum width are ignored.
	Width float32
}

// Colours of the window chrome.
var (
	darkFill    = color.NRGBA{A: 191}
	lightFill   = color.NRGBA{R: 255, G: 255, B: 255, A: 191}
	darkBorder  = color.NRGBA{R: 0x4b, G: 0x55, B: 0x63, A: 102}
	lightBorder = color.NRGBA{R: 0xe5, G: 0xe7, B: 0xeb, A: 51}
	titleColor  = color.NRGBA{R: 0x9c, G: 0xa3, B: 0xaf, A: 255}
	gutterColor = color.NRGBA{R: 0x6b, G: 0x72, B: 0x80, A: 128}
	ruleColor   = color.NRGBA{R: 0x4b, G: 0x55, B: 0x63, A: 77}
	winGlyph    = color.NRGBA{R: 0xa3, G: 0xa3, B: 0xa3, A: 255}
	macDots     = []color.NRGBA{
		{R: 0xef, G: 0x44, B: 0x44, A: 255},
		{R: 0xea, G: 0xb3, B: 0x08, A: 255},
		{R: 0x22, G: 0xc5, B: 0x5e, A: 255},
	}
	minimalColor = color.NRGBA{R: 0x73, G: 0x73, B: 0x73, A: 255}
)

func nrgba(c color.RGBA) color.NRGBA { return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A} }

// BuildScene lays out rec. The record is normalised first, so unknown theme
// or font keys render with the defaults.
func BuildScene(rec prefs.Record, opts SceneOptions) (Scene, error) {
	rec = rec.Normalize()
	prov := opts.Provider
	if prov == nil {
		prov = textlayout.GoProvider{}
	}
	theme := catalog.ResolveTheme(rec.Theme)
	fnt := catalog.ResolveFont(rec.FontStyle)
	styles := textlayout.StylesFor(fnt.Family, float32(rec.FontSize))

	sc := Scene{
		CanvasRadius: canvasRadius,
		WindowRadius: windowRadius,
		BorderWidth:  borderWidth,
		FontCSS:      fnt.CSS,
		CodeFont:     styles[textlayout.RoleCode].Font,
		Dark:         rec.DarkMode,
		Theme:        theme.Key,
		Language:     rec.Language,
		Lines:        prefs.LineCount(rec.Code),
	}
	if rec.DarkMode {
		sc.WindowFill, sc.WindowBorder = darkFill, darkBorder
	} else {
		sc.WindowFill, sc.WindowBorder = lightFill, lightBorder
	}
	if rec.ShowBackground {
		for _, c := range theme.Colors() {
			sc.Background = append(sc.Background, nrgba(c))
		}
		sc.Glow = &Glow{Color: nrgba(theme.GlowColor()), Blur: glowBlur, Spread: glowSpread}
	}

	// Content block: code with optional gutter, or the custom image.
	var (
		contentW, contentH float32
		gutterW            float32
		box                textlayout.CodeBox
		img                *ImageContent
	)
	if rec.ContentMode == prefs.ModeImage {
		var err error
		img, err = loadImage(rec.Image())
		if err != nil {
			return Scene{}, err
		}
		contentW, contentH = img.Rect.W, img.Rect.H
	} else {
		doc, err := highlight.Highlight(rec.Code, rec.Language, theme.ChromaStyle(rec.DarkMode))
		if err != nil {
			return Scene{}, fmt.Errorf("highlight: %w", err)
		}
		box = textlayout.LayoutCode(prov, doc, styles[textlayout.RoleCode])
		contentW, contentH = box.Width, box.Height
		if rec.ShowLineNumbers {
			numW, _ := textlayout.Measure(prov, styles[textlayout.RoleGutter].Font, strconv.Itoa(len(doc.Lines)))
			gutterW = numW + gutterPad + gutterRule + gutterPad
		}
		contentH += codeBottom
	}

	header := rec.WindowFrame != prefs.FrameNone
	topPad := float32(bodyPad)
	if header {
		topPad = headerPadY*2 + headerContent
	}
	winW := max(MinWindowWidth, 2*borderWidth+2*bodyPad+gutterW+contentW)
	winH := 2*borderWidth + topPad + contentH + bodyPad
	pad := float32(rec.Padding)
	sc.Width = max(winW+2*pad, float32(prefs.MinWidth(rec.Padding)), opts.Width)
	winW = sc.Width - 2*pad
	sc.Height = winH + 2*pad
	sc.Window = vector.R(pad, pad, winW, winH)

	inner := sc.Window.Inset(borderWidth, borderWidth)
	if header {
		buildHeader(&sc, rec, inner, prov, styles[textlayout.RoleTitle].Font)
	}
	contentX := inner.X + bodyPad
	contentY := inner.Y + topPad

	if img != nil {
		img.Rect.X = contentX + (inner.W-2*bodyPad-img.Rect.W)/2
		img.Rect.Y = contentY
		sc.Image = img
		return sc, nil
	}

	if gutterW > 0 {
		right := contentX + gutterW - gutterPad - gutterRule - gutterPad
		for i, cl := range box.Lines {
			sc.Gutter = append(sc.Gutter, TextRun{
				X: right, Y: contentY + cl.Baseline, Text: strconv.Itoa(i + 1),
				Color: gutterColor, Font: styles[textlayout.RoleGutter].Font, Anchor: AnchorEnd,
			})
		}
		sc.RuleX = right + gutterPad
		sc.RuleTop = contentY
		sc.RuleBot = contentY + box.Height
	}
	codeX := contentX + gutterW
	for _, cl := range box.Lines {
		row := CodeRow{X: codeX, Y: contentY + cl.Baseline}
		for _, sp := range cl.Spans {
			row.Runs = append(row.Runs, TextRun{
				X: codeX + sp.X, Y: row.Y, Width: sp.Width, Text: sp.Text,
				Color: nrgba(sp.Color), Font: box.Font, Bold: sp.Bold, Italic: sp.Italic,
			})
		}
		sc.Code = append(sc.Code, row)
	}
	return sc, nil
}

func buildHeader(sc *Scene, rec prefs.Record, inner vector.Rect, prov textlayout.Provider, titleFont textlayout.FontSpec) {
	midY := inner.Y + headerPadY + headerContent/2
	left := inner.X + headerPadX
	titleLeft, titleRight := inner.X, inner.X+inner.W
	switch rec.WindowFrame {
	case prefs.FrameMacOS:
		for i, c := range macDots {
			cx := left + dotSize/2 + float32(i)*(dotSize+dotGap)
			sc.Dots = append(sc.Dots, Dot{Center: vector.Pt{X: cx, Y: midY}, Radius: dotSize / 2, Color: c})
		}
	case prefs.FrameMinimal:
		sc.Dots = append(sc.Dots, Dot{Center: vector.Pt{X: left + minimalDot/2, Y: midY}, Radius: minimalDot / 2, Color: minimalColor})
	case prefs.FrameWindows:
		glyphs := []string{"─", "□", "×"}
		groupW := float32(len(glyphs))*winButtonW + float32(len(glyphs)-1)*winButtonGap
		x := inner.X + inner.W - headerPadX - groupW
		titleRight = x - titleGap
		glyphFont := textlayout.FontSpec{Family: "mono", SizePt: winGlyphSize}
		_, met := prov.Resolve(glyphFont)
		for i, g := range glyphs {
			cx := x + float32(i)*(winButtonW+winButtonGap) + winButtonW/2
			sc.Glyphs = append(sc.Glyphs, TextRun{
				X: cx, Y: midY + (met.Ascent-met.Descent)/2, Text: g,
				Color: winGlyph, Font: glyphFont, Anchor: AnchorMiddle,
			})
		}
	}
	if rec.Title == "" {
		return
	}
	_, met := prov.Resolve(titleFont)
	w, _ := textlayout.Measure(prov, titleFont, rec.Title)
	sc.Title = &TextRun{
		X: (titleLeft + titleRight) / 2, Y: midY + (met.Ascent-met.Descent)/2, Width: w,
		Text: rec.Title, Color: titleColor, Font: titleFont, Anchor: AnchorMiddle,
	}
}

// loadImage decodes the data URI and sizes it to at most MaxImageWidth.
func loadImage(uri string) (*ImageContent, error) {
	mime, data, err := upload.DecodeDataURI(uri)
	if err != nil {
		return nil, fmt.Errorf("custom image: %w", err)
	}
	ic := &ImageContent{MIME: mime, Data: data, URI: uri}
	var w, h int
	if img, _, derr := image.Decode(bytes.NewReader(data)); derr == nil {
		ic.Decoded = img
		w, h = img.Bounds().Dx(), img.Bounds().Dy()
	} else {
		// Vector images keep a nominal size and are only embedded by SVG.
		w, h = 640, 400
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("custom image: %w: empty bounds", ErrUndecodableImage)
	}
	fw, fh := float32(w), float32(h)
	if fw > MaxImageWidth {
		fh = fh * MaxImageWidth / fw
		fw = MaxImageWidth
	}
	ic.Rect = vector.R(0, 0, fw, fh)
	return ic, nil
}

// Outline is the rounded rectangle of the whole canvas.
func (s Scene) Outline() *vector.Path {
	return vector.RoundedRect(vector.R(0, 0, s.Width, s.Height), s.CanvasRadius)
}
