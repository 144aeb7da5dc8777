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
	"encoding/json"
	"regexp"
	"sort"
	"strings"
)

// minSignatureScore is the lowest score that counts as a guess.
const minSignatureScore = 3

// signature is one weighted pattern for a catalog language id. Each
// signature counts once no matter how often it matches.
type signature struct {
	lang   string
	weight int
	re     *regexp.Regexp
	match  func(code string) bool
}

func (s signature) matches(code string) bool {
	if s.match != nil {
		return s.match(code)
	}
	return s.re.MatchString(code)
}

func sig(lang string, weight int, pattern string) signature {
	return signature{lang: lang, weight: weight, re: regexp.MustCompile(pattern)}
}

var signatures = []signature{
	sig("go", 3, `(?m)^package\s+\w+\s*$`),
	sig("go", 2, `(?m)^import\s+(\(|")`),
	sig("go", 1, `\bfunc\s+(\(\w+\s+\*?\w+\)\s*)?\w+\(`),
	sig("go", 2, `\w\s*:=\s*`),
	sig("go", 2, `\bchan\s+\w+|\bchan\)`),
	sig("go", 1, `<-\s*\w+`),
	sig("go", 2, `\bfmt\.\w+\(`),
	sig("go", 2, `\bgo\s+func\b`),
	sig("go", 2, `\berr\s*!=\s*nil\b`),

	sig("python", 3, `(?m)^\s*def\s+\w+\s*\(.*\)\s*(->\s*[\w\[\], .]+)?\s*:`),
	sig("python", 2, `(?m)^\s*for\s+[\w, ]+\s+in\s+.+:\s*$`),
	sig("python", 2, `(?m)^\s*(elif\b.*|else|try|finally|except\b.*):\s*$`),
	sig("python", 2, `(?m)^\s*class\s+\w+(\(.*\))?:\s*$`),
	sig("python", 1, `(?m)^\s*(from\s+[\w.]+\s+)?import\s+[\w.]+(\s+as\s+\w+)?\s*$`),
	sig("python", 1, `\bprint\(`),
	sig("python", 1, `\brange\(`),
	sig("python", 1, `\byield\b`),
	sig("python", 1, `\bself\.\w+`),
	sig("python", 1, `\b(None|True|False)\b`),
	sig("python", 1, `\blambda\s+\w*\s*:`),

	sig("ruby", 2, `(?m)^\s*def\s+\w+[?!]?(\s*\(.*\))?[ \t]*$`),
	sig("ruby", 2, `(?m)^\s*end\s*$`),
	sig("ruby", 2, `\bputs\b`),
	sig("ruby", 3, `\battr_(accessor|reader|writer)\b`),
	sig("ruby", 2, `(?m)^\s*require\s+['"]`),
	sig("ruby", 3, `\bdo\s*\|[\w, ]+\|`),
	sig("ruby", 1, `\.each\b`),

	sig("rust", 3, `(?m)^\s*(pub\s+)?fn\s+\w+`),
	sig("rust", 3, `\blet\s+mut\b`),
	sig("rust", 2, `\b\w+!\s*[(\[{]`),
	sig("rust", 3, `(?m)^\s*use\s+\w+(::\w+)+`),
	sig("rust", 2, `\bimpl\b`),
	sig("rust", 2, `&mut\b|&self\b`),
	sig("rust", 1, `::new\(`),
	sig("rust", 1, `\.iter\(\)|\.unwrap\(\)`),
	sig("rust", 1, `\b(Some|Ok|Err)\(`),

	sig("javascript", 2, `\bfunction\s*\w*\s*\(`),
	sig("javascript", 1, `\b(const|let|var)\s+\w+\s*[=;]`),
	sig("javascript", 1, `=>`),
	sig("javascript", 2, `\bconsole\.\w+\(`),
	sig("javascript", 2, `\b(document|window)\.\w+`),
	sig("javascript", 2, `\brequire\(['"]`),
	sig("javascript", 3, `\bmodule\.exports\b`),
	sig("javascript", 1, `(?m)^\s*import\s+.+\s+from\s+['"]`),
	sig("javascript", 1, `===|!==`),
	sig("javascript", 1, `\b(setTimeout|clearTimeout|setInterval|Promise)\b`),
	sig("javascript", 1, `\(\.\.\.\w+`),

	sig("typescript", 3, `(?m)^\s*(export\s+)?interface\s+\w+`),
	sig("typescript", 3, `:\s*(string|number|boolean|any|void|unknown|never)\b`),
	sig("typescript", 2, `(?m)^\s*(export\s+)?type\s+\w+\s*=`),
	sig("typescript", 2, `\)\s*:\s*\w+(\[\])?\s*(=>|\{)`),
	sig("typescript", 2, `\bas\s+(string|number|const|any)\b`),
	sig("typescript", 2, `\b(public|private|readonly)\s+\w+\s*:`),

	sig("sql", 3, `(?im)^\s*select\s+(distinct\s+)?(\*|[\w.()*]+(\s+as\s+\w+)?(\s*,\s*[\w.()*]+(\s+as\s+\w+)?)*)\s+from\b`),
	sig("sql", 3, `(?i)\b(insert\s+into|delete\s+from|create\s+(table|index|view)|alter\s+table|drop\s+table)\b`),
	sig("sql", 3, `(?i)\bupdate\s+\w+\s+set\b`),
	sig("sql", 2, `(?i)\bjoin\s+\w+(\s+\w+)?\s+on\b`),
	sig("sql", 2, `(?i)\b(group|order)\s+by\b`),
	sig("sql", 1, `\bWHERE\b`),

	sig("css", 2, `(?m)^\s*[.#][\w-]+[^{;]*\{\s*$`),
	sig("css", 3, `(?m)^\s*(display|color|background(-color)?|margin|padding|border(-radius)?|font(-size|-family|-weight)?|width|height|position|grid[\w-]*|flex[\w-]*|place-items|align-items|justify-content|transition|transform|opacity|z-index|box-shadow|overflow)\s*:\s*[^;]+;`),
	sig("css", 1, `#[0-9a-fA-F]{3,8}\b`),
	sig("css", 1, `\b\d+(px|em|rem|vh|vw)\b`),
	sig("css", 1, `\b(linear-gradient|rgba?|hsla?)\(|\bvar\(--`),
	sig("css", 2, `@(media|import|keyframes)\b|!important`),

	sig("c", 3, `(?m)^\s*#include\s*[<"][\w./]+\.h[>"]`),
	sig("c", 2, `\b(int|void)\s+main\s*\(`),
	sig("c", 1, `\b(printf|malloc|sizeof)\b`),
	sig("c", 2, `(?m)^\s*#define\s+\w+`),

	sig("c++", 3, `(?m)^\s*#include\s*<\w+>`),
	sig("c++", 3, `\bstd::\w+`),
	sig("c++", 3, `\busing\s+namespace\b`),
	sig("c++", 2, `\bcout\s*<<|\bcin\s*>>`),
	sig("c++", 2, `\btemplate\s*<`),
	sig("c++", 2, `(?m)^\s*(public|private|protected):`),
	sig("c++", 1, `\bnullptr\b`),

	sig("c#", 3, `(?m)^\s*using\s+System(\.\w+)*;`),
	sig("c#", 3, `\bConsole\.Write(Line)?\(`),
	sig("c#", 2, `\bnamespace\s+[\w.]+`),
	sig("c#", 3, `\{\s*get;\s*(set;)?\s*\}`),
	sig("c#", 1, `\bvar\s+\w+\s*=\s*new\b`),

	sig("java", 3, `(?m)^\s*package\s+[\w.]+;`),
	sig("java", 3, `(?m)^\s*import\s+(static\s+)?[\w.]+(\.\*)?;`),
	sig("java", 3, `\bSystem\.out\.print(ln)?\(`),
	sig("java", 3, `\bpublic\s+static\s+void\s+main\s*\(\s*String`),
	sig("java", 2, `\bpublic\s+(static\s+)?(final\s+)?(class|interface|enum|void)\b`),
	sig("java", 2, `@Override\b`),

	sig("kotlin", 3, `\bfun\s+(<[^>]+>\s*)?[\w.]+\s*\(`),
	sig("kotlin", 2, `\bval\s+\w+(\s*:\s*\w+)?\s*=`),
	sig("kotlin", 3, `\bdata\s+class\b|\bcompanion\s+object\b`),
	sig("kotlin", 2, `\bwhen\s*(\(.*\))?\s*\{`),
	sig("kotlin", 1, `\?:`),

	sig("scala", 3, `\bdef\s+\w+(\[.*\])?(\(.*\))?[ \t]*(:[ \t]*[\w\[\]]+)?[ \t]*=`),
	sig("scala", 3, `\bobject\s+\w+(\s+extends\s+\w+)?\s*\{|\bcase\s+class\b`),
	sig("scala", 2, `\bimplicit\b`),
	sig("scala", 2, `\w\s+match\s*\{`),

	sig("swift", 4, `\bimport\s+(UIKit|Foundation|SwiftUI)\b`),
	sig("swift", 2, `\bfunc\s+\w+\s*\([^)]*\)\s*->`),
	sig("swift", 3, `\bguard\s+let\b|\bif\s+let\b`),
	sig("swift", 2, `\\\(\w+`),
	sig("swift", 3, `@(State|Published|objc|IBOutlet)\b`),

	sig("php", 5, `<\?php`),
	sig("php", 3, `\$this->`),
	sig("php", 3, `\bfunction\s+\w+\s*\(\s*\$`),
	sig("php", 2, `\$\w+\s*=[^=]`),
	sig("php", 1, `\becho\s+\$`),

	sig("bash", 3, `(?m)^\s*(if|while|until)\s+\[\[?`),
	sig("bash", 3, `(?m)^\s*(fi|done|esac)\s*$`),
	sig("bash", 2, `\|\s*(grep|awk|sed|xargs|sort|uniq|wc)\b`),
	sig("bash", 1, `(?m)^\s*(echo|export|source|sudo|apt-get|mkdir|chmod|curl)\s`),
	sig("bash", 1, `\$\{?\w+\}?`),

	sig("lua", 3, `(?m)^\s*local\s+(function\b|\w+\s*=)`),
	sig("lua", 3, `\b(i?pairs)\(`),
	sig("lua", 2, `~=`),
	sig("lua", 1, `(?m)\bthen\s*$`),

	sig("elixir", 5, `(?m)^\s*defmodule\s+[\w.]+\s+do\b`),
	sig("elixir", 2, `(?m)^\s*defp?\s+\w+.*\bdo\s*$`),
	sig("elixir", 2, `\|>`),
	sig("elixir", 3, `\bIO\.(puts|inspect)\b`),
	sig("elixir", 2, `\bfn\s+\w+(\s*,\s*\w+)*\s*->`),

	sig("clojure", 5, `(?m)^\s*\(defn-?\s+`),
	sig("clojure", 3, `(?m)^\s*\((ns|def|defmacro|let|require)\s`),
	sig("clojure", 2, `\(println\s`),

	sig("julia", 2, `(?m)^\s*function\s+\w+\(.*\)\s*$`),
	sig("julia", 2, `(?m)^\s*using\s+\w+(,\s*\w+)*\s*$`),
	sig("julia", 2, `\w\.\(`),
	sig("julia", 1, `::(Int|Float|String|Vector)\w*`),

	sig("pascal", 5, `(?im)^\s*program\s+\w+;`),
	sig("pascal", 3, `(?im)^\s*(begin|end[;.])\s*$`),
	sig("pascal", 3, `(?i)\bwriteln\(`),
	sig("pascal", 2, `(?im)^\s*(procedure|function)\s+\w+.*;\s*$`),

	sig("dockerfile", 4, `(?m)^FROM\s+[\w./:-]+(\s+AS\s+\w+)?\s*$`),
	sig("dockerfile", 2, `(?m)^(RUN|CMD|ENTRYPOINT|COPY|ADD|WORKDIR|EXPOSE|ENV|ARG|LABEL)\s+`),

	sig("html", 5, `(?i)<!DOCTYPE\s+html`),
	sig("html", 3, `(?i)<(html|head|body|div|span|p|a|ul|li|script|style|section|h[1-6])\b[^>]*>`),
	sig("html", 1, `</\w+>`),

	sig("yaml", 2, `(?m)^[\w-]+:\s*$`),
	sig("yaml", 1, `(?m)^\s{2,}[\w-]+:\s+[^\s{;]+\s*$`),
	sig("yaml", 2, `(?m)^\s*-\s+[\w-]+:\s`),
	sig("yaml", 1, `(?m)^---\s*$`),

	sig("markdown", 1, `(?m)^#{1,6}\s+\S`),
	sig("markdown", 1, `(?m)^\s*[-*]\s+\S`),
	sig("markdown", 3, `\[[^\]]+\]\([^)]+\)`),
	sig("markdown", 3, "(?m)^```"),
	sig("markdown", 2, `\*\*[^*]+\*\*`),

	{lang: "json", weight: 6, match: looksLikeJSON},
}

func looksLikeJSON(code string) bool {
	s := strings.TrimSpace(code)
	if s == "" || (s[0] != '{' && s[0] != '[') {
		return false
	}
	return json.Valid([]byte(s))
}

type scored struct {
	lang  string
	score int
}

// scoreSignatures ranks languages by the summed weight of their matching
// signatures, highest first. Languages with no match are omitted.
func scoreSignatures(code string) []scored {
	totals := map[string]int{}
	for _, s := range signatures {
		if s.matches(code) {
			totals[s.lang] += s.weight
		}
	}
	out := make([]scored, 0, len(totals))
	for lang, n := range totals {
		out = append(out, scored{lang: lang, score: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].lang < out[j].lang
	})
	return out
}
