/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package langdetect guesses the language of a code snippet and keeps the
// preference record's language in sync with its code.
package langdetect

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/go-enry/go-enry/v2"

	"github.com/raghul017/Prism/internal/catalog"
)

// Detector guesses the language of code. It returns a lowercase language id
// and whether the guess is meaningful; failures return catalog.PlainText.
type Detector interface {
	Detect(code string) (string, bool)
}

// DetectorFunc adapts a function to Detector.
type DetectorFunc func(code string) (string, bool)

func (f DetectorFunc) Detect(code string) (string, bool) { return f(code) }

// EnryDetector guesses in stages: shebang and modeline, a chroma analyser
// hit for a catalog language, weighted signatures, and the linguist
// classifier to break ties between equally scored signatures. Code that no
// stage recognises is plaintext.
type EnryDetector struct {
	// Candidates are linguist names; empty means the catalog's languages.
	Candidates []string
}

func (d EnryDetector) Detect(code string) (string, bool) {
	if strings.TrimSpace(code) == "" {
		return catalog.PlainText, false
	}
	content := []byte(code)
	if lang, ok := enry.GetLanguageByShebang(content); ok {
		return toID(lang)
	}
	if lang, ok := enry.GetLanguageByModeline(content); ok {
		return toID(lang)
	}
	if l, ok := chromaGuess(code); ok && d.allowed(l) {
		return l.ID, true
	}

	var top []catalog.Language
	best := 0
	for _, s := range scoreSignatures(code) {
		l, ok := catalog.LookupLanguage(s.lang)
		if !ok || !d.allowed(l) {
			continue
		}
		if best == 0 {
			best = s.score
		}
		if s.score < best {
			break
		}
		top = append(top, l)
	}
	switch {
	case best < minSignatureScore:
		return catalog.PlainText, false
	case len(top) == 1:
		return top[0].ID, true
	}
	cands := make([]string, 0, len(top))
	for _, l := range top {
		cands = append(cands, l.Linguist)
	}
	if lang, _ := enry.GetLanguageByClassifier(content, cands); lang != "" {
		return toID(lang)
	}
	return top[0].ID, true
}

func (d EnryDetector) allowed(l catalog.Language) bool {
	if len(d.Candidates) == 0 {
		return true
	}
	for _, c := range d.Candidates {
		if strings.EqualFold(c, l.Linguist) {
			return true
		}
	}
	return false
}

// minChromaWeight drops analyser hits on a lone keyword.
const minChromaWeight = 0.2

// chromaGuess asks the analysers bundled with chroma lexers and keeps the
// hit only when it names a catalog language.
func chromaGuess(code string) (catalog.Language, bool) {
	lx := lexers.Analyse(code)
	if lx == nil {
		return catalog.Language{}, false
	}
	if a, ok := lx.(chroma.Analyser); ok && a.AnalyseText(code) < minChromaWeight {
		return catalog.Language{}, false
	}
	cfg := lx.Config()
	for _, name := range append([]string{cfg.Name}, cfg.Aliases...) {
		if l, ok := catalog.LookupLanguage(name); ok && l.ID != catalog.PlainText {
			return l, true
		}
	}
	return catalog.Language{}, false
}

// ChromaDetector uses only the chroma analysers. Few lexers ship one, so it
// is mostly useful as a second opinion.
type ChromaDetector struct{}

func (ChromaDetector) Detect(code string) (string, bool) {
	if strings.TrimSpace(code) == "" {
		return catalog.PlainText, false
	}
	if l, ok := chromaGuess(code); ok {
		return l.ID, true
	}
	return catalog.PlainText, false
}

// Chain asks each detector in turn and returns the first meaningful guess.
func Chain(ds ...Detector) Detector {
	return DetectorFunc(func(code string) (string, bool) {
		for _, d := range ds {
			if id, ok := d.Detect(code); ok {
				return id, true
			}
		}
		return catalog.PlainText, false
	})
}

// Default is the detector used by the editor and CLI.
func Default() Detector { return EnryDetector{} }

// toID maps a linguist name to a catalog id, or lowercases it.
func toID(linguist string) (string, bool) {
	if l, ok := catalog.LanguageByLinguist(linguist); ok {
		return l.ID, l.ID != catalog.PlainText
	}
	id := strings.ToLower(strings.TrimSpace(linguist))
	if id == "" || id == "text" {
		return catalog.PlainText, false
	}
	return id, true
}
