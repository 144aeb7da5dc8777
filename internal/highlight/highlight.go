/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package highlight turns code into styled lines using chroma lexers and styles.
package highlight

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/raghul017/Prism/internal/catalog"
)

// ErrEmptyStyle is returned when a style has neither background nor text colour.
var ErrEmptyStyle = errors.New("style has no colours")

// Span is a run of text with one style.
type Span struct {
	Text      string
	Color     color.RGBA
	Bold      bool
	Italic    bool
	Underline bool
}

// Line is one source line; it carries no trailing newline.
type Line []Span

// Text joins the spans of l.
func (l Line) Text() string {
	var sb strings.Builder
	for _, s := range l {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// Document is highlighted code ready for layout.
type Document struct {
	Lines      []Line
	Background color.RGBA
	Foreground color.RGBA
	Lexer      string
	Style      string
}

// Highlight tokenises code with the lexer for language and colours it with
// styleName. Unknown languages fall back to content analysis and then to
// plain text; unknown styles fall back to chroma's default.
func Highlight(code, language, styleName string) (Document, error) {
	lexer := lexerFor(language, code)
	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}
	it, err := lexer.Tokenise(nil, normalizeNewlines(code))
	if err != nil {
		return Document{}, fmt.Errorf("tokenise %s: %w", lexer.Config().Name, err)
	}
	doc := Document{
		Lexer: lexer.Config().Name,
		Style: style.Name,
	}
	bg := style.Get(chroma.Background)
	doc.Background = toRGBA(bg.Background, color.RGBA{R: 0x1e, G: 0x1e, B: 0x1e, A: 0xff})
	doc.Foreground = toRGBA(bg.Colour, color.RGBA{R: 0xe5, G: 0xe5, B: 0xe5, A: 0xff})

	for _, toks := range chroma.SplitTokensIntoLines(it.Tokens()) {
		var line Line
		for _, tok := range toks {
			text := strings.TrimRight(tok.Value, "\n")
			if text == "" {
				continue
			}
			e := style.Get(tok.Type)
			line = append(line, Span{
				Text:      expandTabs(text),
				Color:     toRGBA(e.Colour, doc.Foreground),
				Bold:      e.Bold == chroma.Yes,
				Italic:    e.Italic == chroma.Yes,
				Underline: e.Underline == chroma.Yes,
			})
		}
		doc.Lines = append(doc.Lines, line)
	}
	// A trailing newline produces an empty final line, matching the gutter.
	if strings.HasSuffix(code, "\n") || len(doc.Lines) == 0 {
		doc.Lines = append(doc.Lines, nil)
	}
	return doc, nil
}

func lexerFor(language, code string) chroma.Lexer {
	if strings.EqualFold(language, catalog.PlainText) {
		return chroma.Coalesce(lexers.Fallback)
	}
	var l chroma.Lexer
	if language != "" {
		l = lexers.Get(catalog.LexerFor(language))
	}
	if l == nil {
		l = lexers.Analyse(code)
	}
	if l == nil {
		l = lexers.Fallback
	}
	return chroma.Coalesce(l)
}

func toRGBA(c chroma.Colour, def color.RGBA) color.RGBA {
	if !c.IsSet() {
		return def
	}
	return color.RGBA{R: c.Red(), G: c.Green(), B: c.Blue(), A: 0xff}
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

// expandTabs replaces tabs with two spaces, the editor's indent width.
func expandTabs(s string) string { return strings.ReplaceAll(s, "\t", "  ") }
