/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package prefs

import "strings"

// MinWidth is the smallest canvas width for the given padding.
func MinWidth(padding int) int {
	if padding < 0 {
		padding = 0
	}
	return padding*2 + 300
}

// MinWidth of the record's canvas.
func (r Record) MinWidth() int { return MinWidth(r.Padding) }

// IsSideLayout reports whether the controls sit beside the canvas.
func IsSideLayout(l ControlsLayout) bool { return l == LayoutLeft || l == LayoutRight }

// LineCount is the number of lines the editor shows for code.
func LineCount(code string) int { return strings.Count(code, "\n") + 1 }

// LineNumbers returns 1..LineCount(code).
func LineNumbers(code string) []int {
	n := LineCount(code)
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

// Shortcut is a keyboard binding shown in the shortcuts panel.
type Shortcut struct {
	Action string
	Keys   string
}

// Shortcuts lists the editor bindings.
func Shortcuts() []Shortcut {
	return []Shortcut{
		{Action: "Copy Image", Keys: "⌘ C"},
		{Action: "Copy Link", Keys: "⇧ ⌘ C"},
		{Action: "Save as PNG", Keys: "⌘ S"},
		{Action: "Save as SVG", Keys: "⇧ ⌘ S"},
	}
}
