/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package textlayout

// TextStyle combines a font spec with layout parameters for one role in a
// rendered shot. Tracking is measured in pixels per glyph; LineFactor
// multiplies the font size to give the line height.
type TextStyle struct {
	Name       string
	Font       FontSpec
	Tracking   float32
	LineFactor float32
}

// Style roles used by the renderer.
const (
	RoleCode   = "code"
	RoleGutter = "gutter"
	RoleTitle  = "title"
)

// TitleSizePx matches the title's 14px text size in the editor header.
const TitleSizePx = 14

// LineHeight returns the line box height for the resolved metrics.
func (s TextStyle) LineHeight(m Metrics) float32 {
	if s.LineFactor > 0 && s.Font.SizePt > 0 {
		return s.Font.SizePt * s.LineFactor
	}
	return m.Ascent + m.Descent + m.LineGap
}

// StylesFor returns the code, gutter and title styles for a font family
// and code size in pixels.
func StylesFor(family string, sizePx float32) map[string]TextStyle {
	code := FontSpec{Family: family, SizePt: sizePx, Weight: 400}
	return map[string]TextStyle{
		RoleCode:   {Name: RoleCode, Font: code, LineFactor: 1.5},
		RoleGutter: {Name: RoleGutter, Font: code, LineFactor: 1.5},
		RoleTitle:  {Name: RoleTitle, Font: FontSpec{Family: UIFamily, SizePt: TitleSizePx, Weight: 500}, LineFactor: 1.25},
	}
}
