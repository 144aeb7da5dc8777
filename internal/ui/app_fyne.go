//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	fstorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"github.com/raghul017/Prism/internal/catalog"
	"github.com/raghul017/Prism/internal/crash"
	"github.com/raghul017/Prism/internal/export"
	applog "github.com/raghul017/Prism/internal/log"
	"github.com/raghul017/Prism/internal/prefs"
	"github.com/raghul017/Prism/internal/upload"
	"github.com/raghul017/Prism/internal/version"
)

// previewScale renders the live preview at 2x for sharp text on HiDPI screens.
const previewScale = 2

// Run opens the editor window on the preferences stored in dataDir.
func Run(dataDir, link string) error {
	l := applog.WithComponent("ui")
	l.Info("starting UI", slog.String("data_dir", dataDir))

	fyneApp := app.NewWithID("dev.prism.editor")
	w := fyneApp.NewWindow("Prism")
	fp := fyneApp.Preferences()
	w.Resize(fyne.NewSize(
		float32(max(fp.IntWithFallback("window.width", 1200), 800)),
		float32(max(fp.IntWithFallback("window.height", 800), 600)),
	))

	status := widget.NewLabel("Ready")
	notify := upload.NotifierFunc(func(n upload.Notice) {
		fyne.Do(func() { status.SetText(n.Message) })
	})
	sess, _, err := OpenSession(SessionOptions{DataDir: dataDir, ShareBase: shareBase(), Notifier: notify, Link: link})
	if err != nil {
		return err
	}
	defer crash.Recover(crash.Target{Store: sess.Store, DataDir: dataDir})
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			l.Error("close session", slog.Any("err", cerr))
		}
	}()

	ed := newEditor(sess, w, status)
	w.SetContent(ed.layout(sess.Store.Get().ControlsLayout))
	ed.ready = true
	ed.refreshPreview()
	ed.unsub = sess.Store.SubscribeAll(func(_, next prefs.Record, changed prefs.Field) {
		fyne.Do(func() { ed.apply(next, changed) })
	})

	w.SetMainMenu(ed.menu())
	ed.bindShortcuts()

	w.SetCloseIntercept(func() {
		sz := w.Canvas().Size()
		fp.SetInt("window.width", int(sz.Width))
		fp.SetInt("window.height", int(sz.Height))
		ed.unsub()
		w.Close()
	})

	w.ShowAndRun()
	return nil
}

func shareBase() string {
	if v := os.Getenv("PRISM_PUBLIC_URL"); v != "" {
		return v
	}
	return "https://prism.app/"
}

// editor holds the widgets bound to a session.
type editor struct {
	sess   *Session
	w      fyne.Window
	status *widget.Label
	unsub  func()

	// syncing is set while store values are pushed into widgets so their
	// change callbacks do not write back.
	syncing bool
	// ready is false until the window content exists.
	ready bool

	code       *widget.Entry
	title      *widget.Entry
	theme      *widget.Select
	font       *widget.Select
	language   *widget.Select
	frame      *widget.Select
	layoutSel  *widget.Select
	fontSize   *widget.Slider
	padding    *widget.Slider
	dark       *widget.Check
	background *widget.Check
	lineNums   *widget.Check
	autoDetect *widget.Check
	removeImg  *widget.Button
	preview    *canvas.Image
	lines      *widget.Label
}

func newEditor(sess *Session, w fyne.Window, status *widget.Label) *editor {
	e := &editor{sess: sess, w: w, status: status, unsub: func() {}}
	st := sess.Store
	guard := func(fn func()) {
		if !e.syncing {
			fn()
		}
	}

	e.code = widget.NewMultiLineEntry()
	e.code.TextStyle = fyne.TextStyle{Monospace: true}
	e.code.SetMinRowsVisible(12)
	e.code.OnChanged = func(s string) { guard(func() { st.SetCode(s) }) }
	e.title = widget.NewEntry()
	e.title.OnChanged = func(s string) { guard(func() { st.SetTitle(s) }) }

	themeKeys, themeNames := themeOptions()
	e.theme = widget.NewSelect(themeNames, func(name string) {
		guard(func() { st.SetTheme(keyFor(themeKeys, themeNames, name)) })
	})
	fontKeys, fontNames := fontOptions()
	e.font = widget.NewSelect(fontNames, func(name string) {
		guard(func() { st.SetFontStyle(keyFor(fontKeys, fontNames, name)) })
	})
	langKeys, langNames := languageOptions()
	e.language = widget.NewSelect(langNames, func(name string) {
		guard(func() {
			st.Update(func(r *prefs.Record) {
				r.Language = keyFor(langKeys, langNames, name)
				r.AutoDetectLanguage = false
			})
		})
	})
	e.frame = widget.NewSelect(frameOptions(), func(v string) {
		guard(func() { e.report(st.SetWindowFrame(prefs.WindowFrame(v))) })
	})
	e.layoutSel = widget.NewSelect([]string{string(prefs.LayoutLeft), string(prefs.LayoutRight), string(prefs.LayoutBottom)}, func(v string) {
		guard(func() { e.report(st.SetControlsLayout(prefs.ControlsLayout(v))) })
	})

	e.fontSize = widget.NewSlider(8, 64)
	e.fontSize.OnChanged = func(v float64) { guard(func() { st.SetFontSize(int(v)) }) }
	e.padding = widget.NewSlider(0, 128)
	e.padding.Step = 8
	e.padding.OnChanged = func(v float64) { guard(func() { st.SetPadding(int(v)) }) }

	e.dark = widget.NewCheck("Dark mode", func(b bool) { guard(func() { st.SetDarkMode(b) }) })
	e.background = widget.NewCheck("Background", func(b bool) { guard(func() { st.SetShowBackground(b) }) })
	e.lineNums = widget.NewCheck("Line numbers", func(b bool) { guard(func() { st.SetShowLineNumbers(b) }) })
	e.autoDetect = widget.NewCheck("Auto-detect", func(b bool) { guard(func() { st.SetAutoDetectLanguage(b) }) })
	e.removeImg = widget.NewButton("Remove image", func() { sess.Images.Remove() })

	e.preview = canvas.NewImageFromImage(nil)
	e.preview.FillMode = canvas.ImageFillContain
	e.preview.SetMinSize(fyne.NewSize(480, 320))
	e.lines = widget.NewLabel("")

	e.apply(st.Get(), prefs.AllFields)
	return e
}

// layout arranges preview and controls for the chosen side.
func (e *editor) layout(side prefs.ControlsLayout) fyne.CanvasObject {
	form := widget.NewForm(
		widget.NewFormItem("Title", e.title),
		widget.NewFormItem("Theme", e.theme),
		widget.NewFormItem("Font", e.font),
		widget.NewFormItem("Language", container.NewBorder(nil, nil, nil, e.autoDetect, e.language)),
		widget.NewFormItem("Frame", e.frame),
		widget.NewFormItem("Font size", e.fontSize),
		widget.NewFormItem("Padding", e.padding),
		widget.NewFormItem("Controls", e.layoutSel),
	)
	toggles := container.NewHBox(e.dark, e.background, e.lineNums, e.removeImg)
	controls := container.NewVBox(form, toggles)
	editorPane := container.NewBorder(nil, e.lines, nil, nil, e.code)
	canvasPane := container.NewVSplit(container.NewStack(e.preview), editorPane)
	canvasPane.Offset = 0.55

	var body fyne.CanvasObject
	switch side {
	case prefs.LayoutLeft:
		body = container.NewBorder(nil, nil, container.NewVScroll(controls), nil, canvasPane)
	case prefs.LayoutRight:
		body = container.NewBorder(nil, nil, nil, container.NewVScroll(controls), canvasPane)
	default:
		body = container.NewBorder(nil, controls, nil, nil, canvasPane)
	}
	return container.NewBorder(nil, e.status, nil, nil, body)
}

// apply pushes the changed fields of r into the widgets.
func (e *editor) apply(r prefs.Record, changed prefs.Field) {
	e.syncing = true
	defer func() { e.syncing = false }()
	if changed.Has(prefs.FieldCode) && e.code.Text != r.Code {
		e.code.SetText(r.Code)
	}
	if changed.Has(prefs.FieldCode) {
		e.lines.SetText(fmt.Sprintf("%d lines", prefs.LineCount(r.Code)))
	}
	if changed.Has(prefs.FieldTitle) && e.title.Text != r.Title {
		e.title.SetText(r.Title)
	}
	if changed.Has(prefs.FieldTheme) {
		e.theme.SetSelected(catalog.ResolveTheme(r.Theme).Name)
	}
	if changed.Has(prefs.FieldFontStyle) {
		e.font.SetSelected(catalog.ResolveFont(r.FontStyle).Name)
	}
	if changed.Has(prefs.FieldLanguage) {
		if lang, ok := catalog.LookupLanguage(r.Language); ok {
			e.language.SetSelected(lang.Name)
		}
	}
	if changed.Has(prefs.FieldWindowFrame) {
		e.frame.SetSelected(string(r.WindowFrame))
	}
	if changed.Has(prefs.FieldControlsLayout) {
		e.layoutSel.SetSelected(string(r.ControlsLayout))
		if e.ready {
			e.w.SetContent(e.layout(r.ControlsLayout))
		}
	}
	if changed.Has(prefs.FieldFontSize) {
		e.fontSize.SetValue(float64(r.FontSize))
	}
	if changed.Has(prefs.FieldPadding) {
		e.padding.SetValue(float64(r.Padding))
	}
	e.dark.SetChecked(r.DarkMode)
	e.background.SetChecked(r.ShowBackground)
	e.lineNums.SetChecked(r.ShowLineNumbers)
	e.autoDetect.SetChecked(r.AutoDetectLanguage)
	if r.ContentMode == prefs.ModeImage {
		e.removeImg.Enable()
		e.code.Disable()
	} else {
		e.removeImg.Disable()
		e.code.Enable()
	}
	if e.ready {
		e.refreshPreview()
	}
}

func (e *editor) refreshPreview() {
	img, err := e.sess.Preview(previewScale)
	if err != nil {
		e.status.SetText(err.Error())
		return
	}
	e.preview.Image = img
	e.preview.Refresh()
}

func (e *editor) report(err error) {
	if err != nil {
		e.status.SetText(err.Error())
	}
}

func (e *editor) menu() *fyne.MainMenu {
	st := e.sess.Store
	file := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Image…", e.openImage),
		fyne.NewMenuItem("Paste Image", e.pasteImage),
		fyne.NewMenuItem("Remove Image", func() { e.sess.Images.Remove() }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Import Link…", e.importLink),
		fyne.NewMenuItem("Copy Link", e.copyLink),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Reset Settings", st.Reset),
	)
	edit := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", func() { e.sess.Undo.Undo() }),
		fyne.NewMenuItem("Redo", func() { e.sess.Undo.Redo() }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Random Snippet", func() {
			sn := catalog.RandomSnippet(nil)
			st.Update(func(r *prefs.Record) {
				r.Code, r.Title, r.Language = sn.Code, sn.Title, sn.Language
			})
		}),
	)
	var exports []*fyne.MenuItem
	for _, f := range []export.Format{export.FormatPNG, export.FormatSVG, export.FormatPDF} {
		for _, p := range export.Presets() {
			label := fmt.Sprintf("%s (%s)…", strings.ToUpper(string(f)), p.Name)
			exports = append(exports, fyne.NewMenuItem(label, func() { e.saveAs(f, p.Name) }))
		}
	}
	help := fyne.NewMenu("Help",
		fyne.NewMenuItem("Keyboard Shortcuts", e.showShortcuts),
		fyne.NewMenuItem("About Prism", func() {
			dialog.ShowInformation("About", "Prism "+version.String(), e.w)
		}),
	)
	return fyne.NewMainMenu(file, edit, fyne.NewMenu("Export", exports...), help)
}

func (e *editor) bindShortcuts() {
	mod := fyne.KeyModifierShortcutDefault
	add := func(key fyne.KeyName, m fyne.KeyModifier, fn func()) {
		e.w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: key, Modifier: m}, func(fyne.Shortcut) { fn() })
	}
	add(fyne.KeyS, mod, func() { e.saveAs(export.FormatPNG, export.Preset2x) })
	add(fyne.KeyS, mod|fyne.KeyModifierShift, func() { e.saveAs(export.FormatSVG, export.Preset1x) })
	add(fyne.KeyC, mod|fyne.KeyModifierShift, e.copyLink)
	add(fyne.KeyZ, mod, func() { e.sess.Undo.Undo() })
	add(fyne.KeyZ, mod|fyne.KeyModifierShift, func() { e.sess.Undo.Redo() })
}

func (e *editor) showShortcuts() {
	var rows []fyne.CanvasObject
	for _, s := range prefs.Shortcuts() {
		rows = append(rows, widget.NewLabel(s.Action), widget.NewLabelWithStyle(s.Keys, fyne.TextAlignTrailing, fyne.TextStyle{Monospace: true}))
	}
	dialog.ShowCustom("Keyboard Shortcuts", "Close", container.NewGridWithColumns(2, rows...), e.w)
}

func (e *editor) saveAs(f export.Format, preset export.PresetName) {
	d := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil || wc == nil {
			return
		}
		path := wc.URI().Path()
		_ = wc.Close()
		if filepath.Ext(path) == "" {
			path += "." + string(f)
		}
		if err := e.sess.SaveAs(path, preset); err != nil {
			dialog.ShowError(err, e.w)
			return
		}
		e.status.SetText("Saved " + filepath.Base(path))
	}, e.w)
	d.SetFileName(e.sess.DefaultFileName(f))
	d.SetFilter(fstorage.NewExtensionFileFilter([]string{"." + string(f)}))
	d.Show()
}

func (e *editor) openImage() {
	d := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		path := rc.URI().Path()
		_ = rc.Close()
		e.sess.Images.LoadFile(context.Background(), path)
	}, e.w)
	d.SetFilter(fstorage.NewExtensionFileFilter([]string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg"}))
	d.Show()
}

// pasteImage accepts a data URI from the clipboard; the text clipboard is
// the only one fyne exposes.
func (e *editor) pasteImage() {
	text := strings.TrimSpace(e.w.Clipboard().Content())
	mime, data, err := upload.DecodeDataURI(text)
	if err != nil {
		e.status.SetText(upload.MsgInvalid)
		return
	}
	e.sess.Images.LoadReader(context.Background(), bytes.NewReader(data), mime, upload.FromClipboard)
}

func (e *editor) copyLink() {
	if _, err := e.sess.CopyLink(); err != nil {
		e.w.Clipboard().SetContent(e.sess.ShareLink())
	}
	e.status.SetText("Link copied")
}

func (e *editor) importLink() {
	entry := widget.NewEntry()
	entry.SetPlaceHolder("https://…/?code=…")
	dialog.ShowForm("Import Link", "Import", "Cancel", []*widget.FormItem{widget.NewFormItem("Link", entry)}, func(ok bool) {
		if !ok {
			return
		}
		if err := e.sess.ImportLink(entry.Text); err != nil {
			dialog.ShowError(err, e.w)
		}
	}, e.w)
}

func themeOptions() (keys, names []string) {
	for _, t := range catalog.Themes() {
		keys, names = append(keys, t.Key), append(names, t.Name)
	}
	return keys, names
}

func fontOptions() (keys, names []string) {
	for _, f := range catalog.Fonts() {
		keys, names = append(keys, f.Key), append(names, f.Name)
	}
	return keys, names
}

func languageOptions() (keys, names []string) {
	for _, l := range catalog.Languages() {
		keys, names = append(keys, l.ID), append(names, l.Name)
	}
	return keys, names
}

func frameOptions() []string {
	var out []string
	for _, f := range prefs.WindowFrames() {
		out = append(out, string(f))
	}
	return out
}

func keyFor(keys, names []string, name string) string {
	for i, n := range names {
		if n == name {
			return keys[i]
		}
	}
	return name
}
