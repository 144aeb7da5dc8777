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
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/raghul017/Prism/internal/catalog"
	"github.com/raghul017/Prism/internal/export"
	"github.com/raghul017/Prism/internal/langdetect"
	"github.com/raghul017/Prism/internal/prefs"
	"github.com/raghul017/Prism/internal/storage"
)

var alwaysGo = langdetect.DetectorFunc(func(string) (string, bool) { return "go", true })

func openTestSession(t *testing.T, opts ...func(*SessionOptions)) (*Session, string) {
	t.Helper()
	dir := t.TempDir()
	opt := SessionOptions{DataDir: dir, ShareBase: "https://prism.test", Detector: alwaysGo, Rand: rand.New(rand.NewSource(1))}
	for _, o := range opts {
		o(&opt)
	}
	s, info, err := OpenSession(opt)
	if err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	if !info.Missing {
		t.Fatalf("expected fresh data dir, got %+v", info)
	}
	return s, dir
}

func TestSession_ClosePersistsEdits(t *testing.T) {
	s, dir := openTestSession(t)
	s.Store.SetCode("package main")
	s.Store.SetPadding(32)
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	rec, _, err := storage.LoadPreferences(dir)
	if err != nil {
		t.Fatalf("LoadPreferences: %v", err)
	}
	if rec.Code != "package main" || rec.Padding != 32 {
		t.Fatalf("edits not persisted: %+v", rec)
	}
}

func TestSession_UndoRestoresPreviousCode(t *testing.T) {
	s, _ := openTestSession(t)
	defer s.Close()
	before := s.Store.Get().Code
	s.Store.SetCode("x := 1")
	if !s.Undo.Undo() {
		t.Fatalf("expected an undo step")
	}
	if got := s.Store.Get().Code; got != before {
		t.Fatalf("undo gave %q, want %q", got, before)
	}
}

func TestSession_SaveAsWritesFileAndHistory(t *testing.T) {
	s, dir := openTestSession(t)
	defer s.Close()
	s.Store.SetTitle("demo")
	out := filepath.Join(dir, "out", "demo.png")
	if err := s.SaveAs(out, export.Preset1x); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil || !strings.HasPrefix(string(b), "\x89PNG") {
		t.Fatalf("png not written: %v", err)
	}
	shots, err := s.history.List(context.Background(), 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(shots) != 1 || shots[0].Path != out || shots[0].Title != "demo" {
		t.Fatalf("unexpected history: %+v", shots)
	}
}

func TestSession_SaveAsRejectsUnknownExtension(t *testing.T) {
	s, dir := openTestSession(t)
	defer s.Close()
	if err := s.SaveAs(filepath.Join(dir, "x.gif"), export.Preset1x); err == nil {
		t.Fatalf("expected an error for .gif")
	}
}

func TestSession_DefaultFileName(t *testing.T) {
	s, _ := openTestSession(t)
	defer s.Close()
	s.Store.SetTitle("")
	if got := s.DefaultFileName(export.FormatPNG); got != "prism.png" {
		t.Fatalf("default name = %q", got)
	}
	s.Store.SetTitle("a/b:c")
	if got := s.DefaultFileName(export.FormatSVG); got != "a-b-c.svg" {
		t.Fatalf("sanitised name = %q", got)
	}
}

func TestSession_ImportLink(t *testing.T) {
	s, _ := openTestSession(t)
	defer s.Close()
	s.Store.SetTitle("shared")
	s.Store.SetPadding(16)
	link := s.ShareLink()
	if !strings.HasPrefix(link, "https://prism.test") {
		t.Fatalf("link = %q", link)
	}
	s.Store.Reset()
	if err := s.ImportLink(link); err != nil {
		t.Fatalf("ImportLink: %v", err)
	}
	if r := s.Store.Get(); r.Title != "shared" || r.Padding != 16 {
		t.Fatalf("import lost settings: %+v", r)
	}
	if err := s.ImportLink("https://prism.test/"); err == nil {
		t.Fatalf("expected error for an empty link")
	}
}

func TestSession_SeedsEmptyEditorWithSnippet(t *testing.T) {
	s, _ := openTestSession(t)
	defer s.Close()
	want := catalog.RandomSnippet(rand.New(rand.NewSource(1)))
	r := s.Store.Get()
	if r.Code != want.Code || r.Language != want.Language || r.Title != want.Title {
		t.Fatalf("seeded %q/%q, want snippet %q", r.Title, r.Language, want.Title)
	}
}

func TestSession_KeepsSavedCode(t *testing.T) {
	dir := t.TempDir()
	rec := prefs.Defaults()
	rec.Code = "saved"
	if err := storage.SavePreferences(dir, rec); err != nil {
		t.Fatalf("SavePreferences: %v", err)
	}
	s, _, err := OpenSession(SessionOptions{DataDir: dir, Detector: alwaysGo, NoHistory: true})
	if err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	defer s.Close()
	if got := s.Store.Get().Code; got != "saved" {
		t.Fatalf("code = %q, want the saved code", got)
	}
}

func TestSession_DetectsLanguageInSameCycle(t *testing.T) {
	byPackage := langdetect.DetectorFunc(func(code string) (string, bool) {
		if strings.HasPrefix(code, "package") {
			return "go", true
		}
		return catalog.PlainText, false
	})
	s, _ := openTestSession(t, func(o *SessionOptions) { o.Detector = byPackage })
	defer s.Close()
	s.Store.SetAutoDetectLanguage(true)
	s.Store.SetCode("package main")
	if got := s.Store.Get().Language; got != "go" {
		t.Fatalf("language = %q right after the edit, want go", got)
	}
}

func TestSession_ImportsStartupLinkOnce(t *testing.T) {
	src := prefs.Defaults()
	src.Code = "SELECT 1;"
	src.Title = "linked"
	src.Padding = 16
	link := prefs.ShareLink("https://prism.test/", src)

	var b prefs.Bootstrapper
	s, _ := openTestSession(t, func(o *SessionOptions) { o.Link = link; o.Bootstrap = &b })
	r := s.Store.Get()
	s.Close()
	if r.Code != "SELECT 1;" || r.Title != "linked" || r.Padding != 16 {
		t.Fatalf("link not imported: %+v", r)
	}

	s2, _ := openTestSession(t, func(o *SessionOptions) { o.Link = link; o.Bootstrap = &b })
	defer s2.Close()
	if got := s2.Store.Get().Title; got == "linked" {
		t.Fatalf("link imported twice")
	}
}

func TestSession_AcceptsBareQueryLink(t *testing.T) {
	var b prefs.Bootstrapper
	s, _ := openTestSession(t, func(o *SessionOptions) { o.Link = "?title=bare&padding=32"; o.Bootstrap = &b })
	defer s.Close()
	if r := s.Store.Get(); r.Title != "bare" || r.Padding != 32 {
		t.Fatalf("bare query not imported: %+v", r)
	}
}

func TestLinkQuery_RejectsMalformed(t *testing.T) {
	if _, err := linkQuery("title=%zz"); err == nil {
		t.Fatalf("expected an error for a bad escape")
	}
}
