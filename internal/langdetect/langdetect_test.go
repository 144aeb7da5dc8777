/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package langdetect

import (
	"strings"
	"sync"
	"testing"

	"github.com/raghul017/Prism/internal/catalog"
	"github.com/raghul017/Prism/internal/prefs"
)

func TestEnryDetector_Shebang(t *testing.T) {
	id, ok := EnryDetector{}.Detect("#!/usr/bin/env python3\nprint('hi')\n")
	if !ok || id != "python" {
		t.Fatalf("got %q ok=%v, want python", id, ok)
	}
	id, ok = EnryDetector{}.Detect("#!/bin/bash\necho hi\n")
	if !ok || id != "bash" {
		t.Fatalf("got %q ok=%v, want bash", id, ok)
	}
}

func TestDetectors_EmptyIsPlainText(t *testing.T) {
	for _, d := range []Detector{EnryDetector{}, ChromaDetector{}, Default()} {
		id, ok := d.Detect("   \n")
		if ok || id != catalog.PlainText {
			t.Fatalf("%T: got %q ok=%v", d, id, ok)
		}
	}
}

func TestDefault_DetectsGo(t *testing.T) {
	cases := []string{
		"package main\n\nimport \"fmt\"\n\nfunc main() {\n\tfmt.Println(\"hi\")\n}\n",
		"package main\n\nfunc main() {\n\tx := 1\n\tprintln(x)\n}\n",
	}
	for _, code := range cases {
		if id, ok := Default().Detect(code); !ok || id != "go" {
			t.Fatalf("got %q ok=%v for %q, want go", id, ok, code)
		}
	}
}

func TestDefault_DetectsEverySnippet(t *testing.T) {
	for _, sn := range catalog.Snippets() {
		t.Run(sn.Title, func(t *testing.T) {
			id, ok := Default().Detect(sn.Code)
			if !ok || id != sn.Language {
				t.Fatalf("got %q ok=%v, want %q", id, ok, sn.Language)
			}
		})
	}
}

func TestDefault_ShortSnippets(t *testing.T) {
	cases := map[string]string{
		"def foo(): return 1":                         "python",
		"SELECT id FROM users WHERE id = 1;":          "sql",
		"fn main() {\n    let mut n = 0;\n}":          "rust",
		"puts 'hi'\ndef greet\n  puts 'hello'\nend\n": "ruby",
		"{\"name\": \"prism\", \"stars\": 3}":           "json",
		"#include <stdio.h>\n\nint main(void) {\n  printf(\"hi\\n\");\n}\n": "c",
	}
	for code, want := range cases {
		if id, ok := Default().Detect(code); !ok || id != want {
			t.Fatalf("got %q ok=%v for %q, want %s", id, ok, code, want)
		}
	}
}

func TestDefault_ProseIsPlainText(t *testing.T) {
	for _, code := range []string{
		"Remember to water the plants and call the landlord about the heating.",
		"hello",
	} {
		if id, ok := Default().Detect(code); ok || id != catalog.PlainText {
			t.Fatalf("got %q ok=%v for %q, want plaintext", id, ok, code)
		}
	}
}

func TestEnryDetector_CandidatesRestrictGuesses(t *testing.T) {
	code := "def fib(n):\n    for _ in range(n):\n        print(n)\n"
	if id, ok := (EnryDetector{Candidates: []string{"Ruby"}}).Detect(code); ok || id != catalog.PlainText {
		t.Fatalf("got %q ok=%v, want plaintext outside candidates", id, ok)
	}
	if id, _ := (EnryDetector{Candidates: []string{"Python", "Ruby"}}).Detect(code); id != "python" {
		t.Fatalf("got %q, want python", id)
	}
}

func TestChromaDetector_OnlyCatalogLanguages(t *testing.T) {
	if id, ok := (ChromaDetector{}).Detect("<?php echo 1;"); !ok || id != "php" {
		t.Fatalf("got %q ok=%v, want php", id, ok)
	}
	// gdscript's analyser matches "extends " but gdscript is not highlightable.
	if id, ok := (ChromaDetector{}).Detect("extends Node"); ok || id != catalog.PlainText {
		t.Fatalf("got %q ok=%v, want plaintext", id, ok)
	}
}

func TestChain_FirstMeaningfulWins(t *testing.T) {
	miss := DetectorFunc(func(string) (string, bool) { return catalog.PlainText, false })
	hit := DetectorFunc(func(string) (string, bool) { return "rust", true })
	if id, _ := Chain(miss, hit).Detect("x"); id != "rust" {
		t.Fatalf("got %q", id)
	}
	if id, ok := Chain(miss).Detect("x"); ok || id != catalog.PlainText {
		t.Fatalf("got %q ok=%v", id, ok)
	}
}

// byPrefix detects "go" for code starting with "package", else plaintext.
var byPrefix = DetectorFunc(func(code string) (string, bool) {
	if strings.HasPrefix(code, "package") {
		return "go", true
	}
	return catalog.PlainText, false
})

func TestWatcher_UpdatesLanguageWhenEnabled(t *testing.T) {
	s := prefs.NewStore(prefs.Defaults())
	s.SetAutoDetectLanguage(true)
	w := NewWatcher(s, byPrefix)
	w.Start()
	defer w.Stop()

	var seen []string
	defer s.Subscribe(prefs.FieldLanguage, func(_, next prefs.Record, _ prefs.Field) {
		seen = append(seen, next.Language)
	})()

	s.SetCode("package main")
	if got := s.Get().Language; got != "go" {
		t.Fatalf("language = %q, want go", got)
	}
	s.SetCode("hello")
	if got := s.Get().Language; got != catalog.PlainText {
		t.Fatalf("language = %q, want plaintext", got)
	}
	if len(seen) != 2 {
		t.Fatalf("language notifications = %v", seen)
	}
}

func TestWatcher_DisabledLeavesLanguageAlone(t *testing.T) {
	s := prefs.NewStore(prefs.Defaults())
	s.SetLanguage("sql")
	w := NewWatcher(s, byPrefix)
	w.Start()
	defer w.Stop()

	s.SetCode("package main")
	if got := s.Get().Language; got != "sql" {
		t.Fatalf("language = %q, want sql", got)
	}
	s.SetAutoDetectLanguage(true)
	if got := s.Get().Language; got != "go" {
		t.Fatalf("enabling detection should recompute, got %q", got)
	}
}

func TestWatcher_AsyncDiscardsStaleResults(t *testing.T) {
	s := prefs.NewStore(prefs.Defaults())
	s.SetAutoDetectLanguage(true)
	release := make(chan struct{})
	var once sync.Once
	slow := DetectorFunc(func(code string) (string, bool) {
		if code == "package slow" {
			<-release
			return "go", true
		}
		return "python", true
	})
	w := NewWatcher(s, slow, Async())
	w.Start()
	defer w.Stop()

	s.SetCode("package slow")
	s.SetCode("print(1)")
	once.Do(func() { close(release) })
	w.Wait()
	if got := s.Get().Language; got != "python" {
		t.Fatalf("stale detection overwrote language: %q", got)
	}
}

func TestWatcher_AsyncDisableRace(t *testing.T) {
	s := prefs.NewStore(prefs.Defaults())
	s.SetLanguage("sql")
	s.SetAutoDetectLanguage(true)
	release := make(chan struct{})
	slow := DetectorFunc(func(code string) (string, bool) {
		if code == "" {
			return "sql", true
		}
		<-release
		return "go", true
	})
	w := NewWatcher(s, slow, Async())
	w.Start()
	s.SetCode("package main")
	s.SetAutoDetectLanguage(false)
	close(release)
	w.Stop()
	if got := s.Get().Language; got != "sql" {
		t.Fatalf("detection after disabling wrote %q", got)
	}
}

func TestWatcher_AsyncAboveDetectsShortCodeInline(t *testing.T) {
	s := prefs.NewStore(prefs.Defaults())
	s.SetAutoDetectLanguage(true)
	w := NewWatcher(s, byPrefix, AsyncAbove(64))
	w.Start()
	defer w.Stop()
	s.SetCode("package main")
	if got := s.Get().Language; got != "go" {
		t.Fatalf("short code should be detected inline, got %q", got)
	}
	s.SetCode("package main\n" + strings.Repeat("// padding\n", 10))
	w.Wait()
	if got := s.Get().Language; got != "go" {
		t.Fatalf("long code detected async, got %q", got)
	}
}
