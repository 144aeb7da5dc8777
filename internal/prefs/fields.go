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

import (
	"fmt"
	"strings"
)

// Field is a bit set naming record fields. Subscribers select the fields
// they read; the store reports which fields a mutation changed.
type Field uint32

const (
	FieldCode Field = 1 << iota
	FieldTitle
	FieldTheme
	FieldDarkMode
	FieldShowBackground
	FieldLanguage
	FieldAutoDetectLanguage
	FieldFontSize
	FieldFontStyle
	FieldPadding
	FieldShowLineNumbers
	FieldWindowFrame
	FieldControlsLayout
	FieldCustomImage
	FieldContentMode

	fieldEnd
)

// AllFields selects every field.
const AllFields = fieldEnd - 1

var fieldNames = []struct {
	f    Field
	name string
}{
	{FieldCode, "code"},
	{FieldTitle, "title"},
	{FieldTheme, "theme"},
	{FieldDarkMode, "darkMode"},
	{FieldShowBackground, "showBackground"},
	{FieldLanguage, "language"},
	{FieldAutoDetectLanguage, "autoDetectLanguage"},
	{FieldFontSize, "fontSize"},
	{FieldFontStyle, "fontStyle"},
	{FieldPadding, "padding"},
	{FieldShowLineNumbers, "showLineNumbers"},
	{FieldWindowFrame, "windowFrame"},
	{FieldControlsLayout, "controlsLayout"},
	{FieldCustomImage, "customImage"},
	{FieldContentMode, "contentMode"},
}

// Has reports whether any bit of o is set in f.
func (f Field) Has(o Field) bool { return f&o != 0 }

// Names lists the JSON keys of the fields in f.
func (f Field) Names() []string {
	var out []string
	for _, fn := range fieldNames {
		if f.Has(fn.f) {
			out = append(out, fn.name)
		}
	}
	return out
}

func (f Field) String() string {
	if f == 0 {
		return "none"
	}
	return strings.Join(f.Names(), "|")
}

// FieldByName resolves a JSON key ("fontSize") to its field bit.
func FieldByName(name string) (Field, error) {
	for _, fn := range fieldNames {
		if strings.EqualFold(fn.name, name) {
			return fn.f, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// Diff returns the fields whose values differ between a and b.
func Diff(a, b Record) Field {
	var f Field
	if a.Code != b.Code {
		f |= FieldCode
	}
	if a.Title != b.Title {
		f |= FieldTitle
	}
	if a.Theme != b.Theme {
		f |= FieldTheme
	}
	if a.DarkMode != b.DarkMode {
		f |= FieldDarkMode
	}
	if a.ShowBackground != b.ShowBackground {
		f |= FieldShowBackground
	}
	if a.Language != b.Language {
		f |= FieldLanguage
	}
	if a.AutoDetectLanguage != b.AutoDetectLanguage {
		f |= FieldAutoDetectLanguage
	}
	if a.FontSize != b.FontSize {
		f |= FieldFontSize
	}
	if a.FontStyle != b.FontStyle {
		f |= FieldFontStyle
	}
	if a.Padding != b.Padding {
		f |= FieldPadding
	}
	if a.ShowLineNumbers != b.ShowLineNumbers {
		f |= FieldShowLineNumbers
	}
	if a.WindowFrame != b.WindowFrame {
		f |= FieldWindowFrame
	}
	if a.ControlsLayout != b.ControlsLayout {
		f |= FieldControlsLayout
	}
	if !sameImage(a.CustomImage, b.CustomImage) {
		f |= FieldCustomImage
	}
	if a.ContentMode != b.ContentMode {
		f |= FieldContentMode
	}
	return f
}
