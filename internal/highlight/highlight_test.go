/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package highlight

import (
	"testing"

	"github.com/raghul017/Prism/internal/prefs"
)

func TestHighlight_LinesMatchGutter(t *testing.T) {
	cases := []string{"", "a", "a\nb", "a\n", "func main() {\n\treturn\n}"}
	for _, code := range cases {
		doc, err := Highlight(code, "go", "dracula")
		if err != nil {
			t.Fatalf("%q: %v", code, err)
		}
		if got, want := len(doc.Lines), prefs.LineCount(code); got != want {
			t.Fatalf("%q: lines = %d, want %d", code, got, want)
		}
	}
}

func TestHighlight_TextPreserved(t *testing.T) {
	code := "x := 1\nif x > 0 {\n\tprintln(x)\n}"
	doc, err := Highlight(code, "go", "github")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"x := 1", "if x > 0 {", "  println(x)", "}"}
	for i, w := range want {
		if got := doc.Lines[i].Text(); got != w {
			t.Fatalf("line %d = %q, want %q", i, got, w)
		}
	}
	if doc.Lexer != "Go" || doc.Style != "github" {
		t.Fatalf("lexer/style = %s/%s", doc.Lexer, doc.Style)
	}
}

func TestHighlight_KeywordsAreColoured(t *testing.T) {
	doc, err := Highlight("package main", "go", "monokai")
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Lines[0]) < 2 {
		t.Fatalf("expected several spans, got %+v", doc.Lines[0])
	}
	if doc.Lines[0][0].Color == doc.Foreground {
		t.Fatalf("keyword should not use the base colour")
	}
}

func TestHighlight_Fallbacks(t *testing.T) {
	doc, err := Highlight("hello", "no-such-language", "no-such-style")
	if err != nil {
		t.Fatal(err)
	}
	if doc.Style == "no-such-style" || doc.Style == "" {
		t.Fatalf("style fallback missing: %q", doc.Style)
	}
	plain, err := Highlight("package main", "plaintext", "dracula")
	if err != nil {
		t.Fatal(err)
	}
	if plain.Lexer != "plaintext" {
		t.Fatalf("plaintext lexer = %q", plain.Lexer)
	}
	if len(plain.Lines[0]) != 1 {
		t.Fatalf("plain text should be a single span, got %d", len(plain.Lines[0]))
	}
}
