/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package termview renders a preferences record as a framed, highlighted
// preview for the terminal.
package termview

import (
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/raghul017/Prism/internal/catalog"
	"github.com/raghul017/Prism/internal/highlight"
	"github.com/raghul017/Prism/internal/prefs"
	"github.com/raghul017/Prism/internal/upload"
)

// Options tunes Render.
type Options struct {
	// Renderer decides the colour profile; nil uses lipgloss' default
	// renderer for stdout.
	Renderer *lipgloss.Renderer
	// MaxWidth truncates long code lines (0 means no limit).
	MaxWidth int
}

// pxPerCell converts editor padding to terminal cells.
const (
	pxPerCol = 16
	pxPerRow = 32
)

func hex(c color.RGBA) lipgloss.Color { return lipgloss.Color(catalog.Hex(c)) }

// Render draws rec: a background block in the theme's first colour, a
// rounded window with its frame header and title, and the highlighted code
// with optional line numbers. Image mode shows a one-line placeholder.
func Render(rec prefs.Record, o Options) (string, error) {
	rec = rec.Normalize()
	r := o.Renderer
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	theme := catalog.ResolveTheme(rec.Theme)

	var body string
	if rec.ContentMode == prefs.ModeImage {
		body = imagePlaceholder(r, rec.Image())
	} else {
		b, err := codeBlock(r, rec, theme, o.MaxWidth)
		if err != nil {
			return "", err
		}
		body = b
	}

	header := frameHeader(r, rec, lipgloss.Width(body))
	content := body
	if header != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, header, body)
	}

	border := lipgloss.Color("#4b5563")
	if !rec.DarkMode {
		border = lipgloss.Color("#e5e7eb")
	}
	window := r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Render(content)

	if !rec.ShowBackground {
		return window, nil
	}
	bg := theme.Colors()
	return r.NewStyle().
		Background(hex(bg[0])).
		Padding(rec.Padding/pxPerRow, rec.Padding/pxPerCol).
		Render(window), nil
}

func codeBlock(r *lipgloss.Renderer, rec prefs.Record, theme catalog.Theme, maxWidth int) (string, error) {
	doc, err := highlight.Highlight(rec.Code, rec.Language, theme.ChromaStyle(rec.DarkMode))
	if err != nil {
		return "", err
	}
	gutterW := len(strconv.Itoa(len(doc.Lines)))
	gutter := r.NewStyle().Foreground(lipgloss.Color("#6b7280")).Width(gutterW).Align(lipgloss.Right)
	rule := r.NewStyle().Foreground(lipgloss.Color("#4b5563")).Render("│")

	lines := make([]string, 0, len(doc.Lines))
	for i, ln := range doc.Lines {
		var sb strings.Builder
		if rec.ShowLineNumbers {
			sb.WriteString(gutter.Render(strconv.Itoa(i + 1)))
			sb.WriteString(" " + rule + " ")
		}
		used := 0
		for _, sp := range ln {
			text := sp.Text
			if maxWidth > 0 {
				if used >= maxWidth {
					break
				}
				if rs := []rune(text); used+len(rs) > maxWidth {
					text = string(rs[:maxWidth-used-1]) + "…"
				}
				used += len([]rune(text))
			}
			st := r.NewStyle().Foreground(hex(sp.Color)).Bold(sp.Bold).Italic(sp.Italic).Underline(sp.Underline)
			sb.WriteString(st.Render(text))
		}
		lines = append(lines, sb.String())
	}
	return strings.Join(lines, "\n"), nil
}

func frameHeader(r *lipgloss.Renderer, rec prefs.Record, width int) string {
	var left, right string
	switch rec.WindowFrame {
	case prefs.FrameNone:
		return ""
	case prefs.FrameMacOS:
		dots := []string{"#ef4444", "#eab308", "#22c55e"}
		parts := make([]string, len(dots))
		for i, c := range dots {
			parts[i] = r.NewStyle().Foreground(lipgloss.Color(c)).Render("●")
		}
		left = strings.Join(parts, " ")
	case prefs.FrameMinimal:
		left = r.NewStyle().Foreground(lipgloss.Color("#737373")).Render("●")
	case prefs.FrameWindows:
		right = r.NewStyle().Foreground(lipgloss.Color("#a3a3a3")).Render("─ □ ×")
	}
	title := r.NewStyle().Foreground(lipgloss.Color("#9ca3af")).Render(rec.Title)
	lw, rw, tw := lipgloss.Width(left), lipgloss.Width(right), lipgloss.Width(title)
	width = max(width, lw+rw+tw+4)
	// Centre the title on the whole row, then fit the controls around it.
	pre := max((width-tw)/2-lw, 1)
	post := max(width-lw-pre-tw-rw, 1)
	return left + strings.Repeat(" ", pre) + title + strings.Repeat(" ", post) + right
}

func imagePlaceholder(r *lipgloss.Renderer, uri string) string {
	mime, data, err := upload.DecodeDataURI(uri)
	label := "[image]"
	if err == nil {
		label = fmt.Sprintf("[image %s, %d bytes]", mime, len(data))
	}
	return r.NewStyle().Italic(true).Foreground(lipgloss.Color("#9ca3af")).Render(label)
}

// WriteANSI writes rec's code through a chroma terminal formatter without
// any frame, for piping into pagers. formatter is a chroma formatter name
// such as "terminal16m" or "terminal256"; unknown names use chroma's
// fallback formatter.
func WriteANSI(w io.Writer, rec prefs.Record, formatter string) error {
	rec = rec.Normalize()
	theme := catalog.ResolveTheme(rec.Theme)
	lexer := lexers.Get(catalog.LexerFor(rec.Language))
	if lexer == nil {
		lexer = lexers.Analyse(rec.Code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)
	style := styles.Get(theme.ChromaStyle(rec.DarkMode))
	if style == nil {
		style = styles.Fallback
	}
	f := formatters.Get(formatter)
	if f == nil {
		f = formatters.Fallback
	}
	it, err := lexer.Tokenise(nil, rec.Code)
	if err != nil {
		return fmt.Errorf("tokenise: %w", err)
	}
	return f.Format(w, style, it)
}
