/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package catalog

import "strings"

// PlainText is the language id used when nothing better is known.
const PlainText = "plaintext"

// Language maps a preference language id to its display name, the chroma
// lexer used for highlighting and the linguist name reported by detection.
type Language struct {
	ID        string
	Name      string
	Lexer     string
	Linguist  string
	Extension string
}

var builtinLanguages = []Language{
	{ID: PlainText, Name: "Plain Text", Lexer: "plaintext", Linguist: "Text", Extension: "txt"},
	{ID: "bash", Name: "Bash", Lexer: "bash", Linguist: "Shell", Extension: "sh"},
	{ID: "c", Name: "C", Lexer: "c", Linguist: "C", Extension: "c"},
	{ID: "c++", Name: "C++", Lexer: "c++", Linguist: "C++", Extension: "cpp"},
	{ID: "c#", Name: "C#", Lexer: "c#", Linguist: "C#", Extension: "cs"},
	{ID: "clojure", Name: "Clojure", Lexer: "clojure", Linguist: "Clojure", Extension: "clj"},
	{ID: "css", Name: "CSS", Lexer: "css", Linguist: "CSS", Extension: "css"},
	{ID: "dockerfile", Name: "Dockerfile", Lexer: "docker", Linguist: "Dockerfile", Extension: "dockerfile"},
	{ID: "elixir", Name: "Elixir", Lexer: "elixir", Linguist: "Elixir", Extension: "ex"},
	{ID: "go", Name: "Go", Lexer: "go", Linguist: "Go", Extension: "go"},
	{ID: "html", Name: "HTML", Lexer: "html", Linguist: "HTML", Extension: "html"},
	{ID: "java", Name: "Java", Lexer: "java", Linguist: "Java", Extension: "java"},
	{ID: "javascript", Name: "JavaScript", Lexer: "javascript", Linguist: "JavaScript", Extension: "js"},
	{ID: "json", Name: "JSON", Lexer: "json", Linguist: "JSON", Extension: "json"},
	{ID: "julia", Name: "Julia", Lexer: "julia", Linguist: "Julia", Extension: "jl"},
	{ID: "kotlin", Name: "Kotlin", Lexer: "kotlin", Linguist: "Kotlin", Extension: "kt"},
	{ID: "lua", Name: "Lua", Lexer: "lua", Linguist: "Lua", Extension: "lua"},
	{ID: "markdown", Name: "Markdown", Lexer: "markdown", Linguist: "Markdown", Extension: "md"},
	{ID: "pascal", Name: "Pascal", Lexer: "objectpascal", Linguist: "Pascal", Extension: "pas"},
	{ID: "php", Name: "PHP", Lexer: "php", Linguist: "PHP", Extension: "php"},
	{ID: "python", Name: "Python", Lexer: "python", Linguist: "Python", Extension: "py"},
	{ID: "ruby", Name: "Ruby", Lexer: "ruby", Linguist: "Ruby", Extension: "rb"},
	{ID: "rust", Name: "Rust", Lexer: "rust", Linguist: "Rust", Extension: "rs"},
	{ID: "scala", Name: "Scala", Lexer: "scala", Linguist: "Scala", Extension: "scala"},
	{ID: "sql", Name: "SQL", Lexer: "sql", Linguist: "SQL", Extension: "sql"},
	{ID: "swift", Name: "Swift", Lexer: "swift", Linguist: "Swift", Extension: "swift"},
	{ID: "typescript", Name: "TypeScript", Lexer: "typescript", Linguist: "TypeScript", Extension: "ts"},
	{ID: "yaml", Name: "YAML", Lexer: "yaml", Linguist: "YAML", Extension: "yaml"},
}

// Languages lists the known languages, plain text first.
func Languages() []Language {
	out := make([]Language, len(builtinLanguages))
	copy(out, builtinLanguages)
	return out
}

// LookupLanguage finds a language by id, case-insensitively.
func LookupLanguage(id string) (Language, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, l := range builtinLanguages {
		if l.ID == id {
			return l, true
		}
	}
	return Language{}, false
}

// LanguageByLinguist maps a detector result ("Python", "Shell") to a catalog entry.
func LanguageByLinguist(name string) (Language, bool) {
	for _, l := range builtinLanguages {
		if strings.EqualFold(l.Linguist, name) {
			return l, true
		}
	}
	return Language{}, false
}

// LinguistCandidates returns the detector names of all highlightable languages.
func LinguistCandidates() []string {
	out := make([]string, 0, len(builtinLanguages))
	for _, l := range builtinLanguages {
		if l.ID == PlainText {
			continue
		}
		out = append(out, l.Linguist)
	}
	return out
}

// LexerFor returns the chroma lexer name for a language id. Unknown ids are
// passed through so chroma can try its own aliases.
func LexerFor(id string) string {
	if l, ok := LookupLanguage(id); ok {
		return l.Lexer
	}
	return strings.ToLower(strings.TrimSpace(id))
}
