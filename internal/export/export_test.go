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
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/raghul017/Prism/internal/prefs"
	"github.com/raghul017/Prism/internal/upload"
)

func sampleRecord() prefs.Record {
	r := prefs.Defaults()
	r.Code = "package main\n\nfunc main() {}"
	r.Language = "go"
	r.Title = "main.go"
	return r
}

func pngURI(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return upload.EncodeDataURI("image/png", buf.Bytes())
}

func TestBuildScene_MinWidthAndHeader(t *testing.T) {
	r := prefs.Defaults()
	sc, err := BuildScene(r, SceneOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if sc.Width < float32(prefs.MinWidth(r.Padding)) {
		t.Fatalf("width %v below min %d", sc.Width, prefs.MinWidth(r.Padding))
	}
	if sc.Window.X != 64 || sc.Window.W != sc.Width-128 {
		t.Fatalf("window not inset by padding: %+v", sc.Window)
	}
	if len(sc.Dots) != 3 {
		t.Fatalf("want 3 macos dots, got %d", len(sc.Dots))
	}
	if sc.Title == nil || sc.Title.Text != prefs.DefaultTitle || sc.Title.Anchor != AnchorMiddle {
		t.Fatalf("unexpected title: %+v", sc.Title)
	}
	if len(sc.Background) == 0 || sc.Glow == nil {
		t.Fatalf("background expected by default")
	}
	if sc.Lines != 1 || len(sc.Code) != 1 {
		t.Fatalf("empty code should yield one line, got %d/%d", sc.Lines, len(sc.Code))
	}
}

func TestBuildScene_FrameNoneIsShorter(t *testing.T) {
	r := sampleRecord()
	withHeader, err := BuildScene(r, SceneOptions{})
	if err != nil {
		t.Fatal(err)
	}
	r.WindowFrame = prefs.FrameNone
	bare, err := BuildScene(r, SceneOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if bare.Title != nil || len(bare.Dots) != 0 {
		t.Fatalf("frame none must not draw header")
	}
	if bare.Height >= withHeader.Height {
		t.Fatalf("header should add height: %v vs %v", bare.Height, withHeader.Height)
	}

	r.WindowFrame = prefs.FrameWindows
	win, _ := BuildScene(r, SceneOptions{})
	if len(win.Glyphs) != 3 || win.Glyphs[2].Text != "×" {
		t.Fatalf("windows glyphs: %+v", win.Glyphs)
	}
	r.WindowFrame = prefs.FrameMinimal
	mini, _ := BuildScene(r, SceneOptions{})
	if len(mini.Dots) != 1 {
		t.Fatalf("minimal frame wants one dot, got %d", len(mini.Dots))
	}
}

func TestBuildScene_PaddingAndWidthOption(t *testing.T) {
	r := sampleRecord()
	r.Padding = 0
	sc, _ := BuildScene(r, SceneOptions{})
	if sc.Window.X != 0 || sc.Width != sc.Window.W {
		t.Fatalf("zero padding: %+v", sc.Window)
	}
	wide, _ := BuildScene(r, SceneOptions{Width: 1000})
	if wide.Width != 1000 || wide.Window.W != 1000 {
		t.Fatalf("width option ignored: %v", wide.Width)
	}
	narrow, _ := BuildScene(r, SceneOptions{Width: 10})
	if narrow.Width != sc.Width {
		t.Fatalf("narrow width option must be ignored")
	}
}

func TestBuildScene_Gutter(t *testing.T) {
	r := sampleRecord()
	plain, _ := BuildScene(r, SceneOptions{})
	r.ShowLineNumbers = true
	sc, err := BuildScene(r, SceneOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(sc.Gutter) != 3 {
		t.Fatalf("want 3 line numbers, got %d", len(sc.Gutter))
	}
	if sc.Gutter[2].Text != "3" || sc.Gutter[2].Anchor != AnchorEnd {
		t.Fatalf("bad gutter run: %+v", sc.Gutter[2])
	}
	if sc.RuleX <= 0 {
		t.Fatalf("rule missing")
	}
	if sc.Code[0].X <= plain.Code[0].X {
		t.Fatalf("code should shift right of gutter")
	}
}

func TestBuildScene_ImageMode(t *testing.T) {
	r := sampleRecord()
	uri := pngURI(t, 1200, 600)
	r.CustomImage = &uri
	r.ContentMode = prefs.ModeImage
	sc, err := BuildScene(r, SceneOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if sc.Image == nil || len(sc.Code) != 0 {
		t.Fatalf("image mode should replace code")
	}
	if sc.Image.Rect.W != MaxImageWidth || sc.Image.Rect.H != 480 {
		t.Fatalf("image not capped: %+v", sc.Image.Rect)
	}

	bad := "data:image/png;base64,@@@"
	r.CustomImage = &bad
	if _, err := BuildScene(r, SceneOptions{}); err == nil {
		t.Fatalf("expected error for broken data uri")
	}
}

func TestRenderImage_Pixels(t *testing.T) {
	r := sampleRecord()
	sc, _ := BuildScene(r, SceneOptions{})
	img, err := RenderImage(sc, RenderOptions{Scale: 2})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != int(sc.Width*2+0.5) || b.Dy() != int(sc.Height*2+0.5) {
		t.Fatalf("unexpected size %v for scene %vx%v", b, sc.Width, sc.Height)
	}
	if img.RGBAAt(4, b.Dy()/2).A == 0 {
		t.Fatalf("background should cover the canvas edge")
	}

	r.ShowBackground = false
	sc, _ = BuildScene(r, SceneOptions{})
	img, _ = RenderImage(sc, RenderOptions{})
	if img.RGBAAt(1, 1).A != 0 {
		t.Fatalf("canvas should be transparent without background")
	}
	cx := int(sc.Window.X + sc.Window.W/2)
	cy := int(sc.Window.Y + sc.Window.H - 4)
	if img.RGBAAt(cx, cy).A == 0 {
		t.Fatalf("window fill missing at %d,%d", cx, cy)
	}
}

func TestRenderImage_SVGImageNotRasterizable(t *testing.T) {
	r := sampleRecord()
	uri := upload.EncodeDataURI("image/svg+xml", []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"/>`))
	r.CustomImage = &uri
	sc, err := BuildScene(r, SceneOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, err := RenderImage(sc, RenderOptions{}); !errors.Is(err, ErrUndecodableImage) {
		t.Fatalf("want ErrUndecodableImage, got %v", err)
	}
	var buf bytes.Buffer
	if err := EncodeSVG(&buf, sc, RenderOptions{}); err != nil {
		t.Fatalf("svg should embed vector images: %v", err)
	}
	if !strings.Contains(buf.String(), "data:image/svg+xml") {
		t.Fatalf("image href missing")
	}
}

func TestEncodeSVG_Content(t *testing.T) {
	r := prefs.Defaults()
	r.Code = "a < b && c"
	r.Title = "x & y"
	r.ShowLineNumbers = true
	sc, _ := BuildScene(r, SceneOptions{})
	var buf bytes.Buffer
	if err := EncodeSVG(&buf, sc, RenderOptions{}); err != nil {
		t.Fatalf("svg: %v", err)
	}
	s := buf.String()
	for _, want := range []string{"<svg", "linearGradient", "feGaussianBlur", "&lt;", "x &amp; y", `text-anchor="end"`, "xml:space=\"preserve\""} {
		if !strings.Contains(s, want) {
			t.Errorf("svg missing %q", want)
		}
	}
}

func TestExportPDF_WritesFile(t *testing.T) {
	dir := t.TempDir()
	sc, _ := BuildScene(sampleRecord(), SceneOptions{})
	path := filepath.Join(dir, "nested", "shot.pdf")
	if err := ExportPDF(sc, path, RenderOptions{}); err != nil {
		t.Fatalf("pdf: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("%PDF")) {
		t.Fatalf("not a pdf")
	}
}

func TestPresets(t *testing.T) {
	p, err := LookupPreset("Social")
	if err != nil || p.Frame.W != 1200 || p.Frame.H != 630 {
		t.Fatalf("social preset: %+v %v", p, err)
	}
	if _, err := LookupPreset("8x"); !errors.Is(err, ErrUnknownPreset) {
		t.Fatalf("want ErrUnknownPreset, got %v", err)
	}
	if f, err := ParseFormat(".SVG"); err != nil || f != FormatSVG {
		t.Fatalf("parse format: %v %v", f, err)
	}
	if _, err := ParseFormat("gif"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("want ErrUnknownFormat, got %v", err)
	}
}

func TestBatchExport(t *testing.T) {
	dir := t.TempDir()
	sc, _ := BuildScene(sampleRecord(), SceneOptions{})
	sum, err := BatchExport(sc, BatchOptions{
		Formats: []Format{FormatPNG, FormatSVG},
		Presets: []PresetName{Preset1x, PresetSocial},
		OutDir:  dir,
	})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(sum.Written()) != 4 {
		t.Fatalf("want 4 files, got %v", sum.Written())
	}
	for _, name := range []string{"prism.png", "prism.svg", "prism-social.png", "prism-social.svg"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	f, err := os.Open(filepath.Join(dir, "prism-social.png"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 1200 || cfg.Height != 630 {
		t.Fatalf("social size %dx%d", cfg.Width, cfg.Height)
	}

	if _, err := BatchExport(sc, BatchOptions{Presets: []PresetName{"huge"}, OutDir: dir}); !errors.Is(err, ErrUnknownPreset) {
		t.Fatalf("want ErrUnknownPreset, got %v", err)
	}
}
