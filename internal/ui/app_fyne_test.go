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

// These tests need the Fyne driver and are gated behind the "fyne" tag:
//
//	go test -tags fyne ./internal/ui
package ui

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"

	"github.com/raghul017/Prism/internal/catalog"
	"github.com/raghul017/Prism/internal/prefs"
)

func newTestEditor(t *testing.T) *editor {
	t.Helper()
	test.NewTempApp(t)
	s, _ := openTestSession(t)
	t.Cleanup(func() { _ = s.Close() })
	w := test.NewWindow(nil)
	t.Cleanup(w.Close)
	e := newEditor(s, w, widget.NewLabel(""))
	w.SetContent(e.layout(prefs.LayoutBottom))
	e.ready = true
	return e
}

func TestEditor_InitialWidgetsMirrorStore(t *testing.T) {
	e := newTestEditor(t)
	r := e.sess.Store.Get()
	if e.code.Text != r.Code || e.title.Text != r.Title {
		t.Fatalf("entries not synced: %q %q", e.code.Text, e.title.Text)
	}
	if e.theme.Selected != catalog.ResolveTheme(r.Theme).Name {
		t.Fatalf("theme select = %q", e.theme.Selected)
	}
	if int(e.padding.Value) != r.Padding {
		t.Fatalf("padding slider = %v", e.padding.Value)
	}
	if !e.removeImg.Disabled() {
		t.Fatalf("remove image should be disabled in code mode")
	}
}

func TestEditor_WidgetEditsReachStore(t *testing.T) {
	e := newTestEditor(t)
	e.title.SetText("from widget")
	e.lineNums.SetChecked(!e.sess.Store.Get().ShowLineNumbers)
	e.frame.SetSelected(string(prefs.FrameWindows))
	r := e.sess.Store.Get()
	if r.Title != "from widget" || r.WindowFrame != prefs.FrameWindows {
		t.Fatalf("store not updated: %+v", r)
	}
}

func TestEditor_StoreChangesUpdatePreview(t *testing.T) {
	e := newTestEditor(t)
	e.sess.Store.SetPadding(16)
	e.apply(e.sess.Store.Get(), prefs.FieldPadding)
	if int(e.padding.Value) != 16 {
		t.Fatalf("slider not synced: %v", e.padding.Value)
	}
	if e.preview.Image == nil {
		t.Fatalf("preview not rendered")
	}
}

func TestKeyFor_FallsBackToName(t *testing.T) {
	keys, names := []string{"a"}, []string{"Alpha"}
	if keyFor(keys, names, "Alpha") != "a" || keyFor(keys, names, "beta") != "beta" {
		t.Fatalf("unexpected keyFor mapping")
	}
}
