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
	"strconv"
	"strings"
)

// SetField assigns a field from its textual form, as typed on the command
// line ("fontSize" "20"). Booleans accept true/false/on/off/1/0 and the
// literal "toggle".
func (s *Store) SetField(name, value string) error {
	f, err := FieldByName(name)
	if err != nil {
		return err
	}
	v := strings.TrimSpace(value)
	switch f {
	case FieldCode:
		s.SetCode(value)
	case FieldTitle:
		s.SetTitle(value)
	case FieldTheme:
		s.SetTheme(v)
	case FieldLanguage:
		s.SetLanguage(v)
	case FieldFontStyle:
		s.SetFontStyle(v)
	case FieldFontSize, FieldPadding:
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a number", ErrInvalidValue, name, value)
		}
		if f == FieldFontSize {
			s.SetFontSize(n)
		} else {
			s.SetPadding(n)
		}
	case FieldDarkMode, FieldShowBackground, FieldAutoDetectLanguage, FieldShowLineNumbers:
		return s.setBool(f, name, v)
	case FieldWindowFrame:
		if err := s.SetWindowFrame(WindowFrame(strings.ToLower(v))); err != nil {
			return fmt.Errorf("%w: windowFrame=%q", err, value)
		}
	case FieldControlsLayout:
		if err := s.SetControlsLayout(ControlsLayout(strings.ToLower(v))); err != nil {
			return fmt.Errorf("%w: controlsLayout=%q", err, value)
		}
	case FieldContentMode:
		if err := s.SetContentMode(ContentMode(strings.ToLower(v))); err != nil {
			return fmt.Errorf("%w: contentMode=%q", err, value)
		}
	case FieldCustomImage:
		return fmt.Errorf("%w: customImage is set through image import", ErrInvalidValue)
	}
	return nil
}

func (s *Store) setBool(f Field, name, v string) error {
	var on bool
	toggle := false
	switch strings.ToLower(v) {
	case "true", "on", "yes", "1":
		on = true
	case "false", "off", "no", "0":
	case "toggle":
		toggle = true
	default:
		return fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalidValue, name, v)
	}
	s.Update(func(r *Record) {
		p := boolField(r, f)
		if toggle {
			*p = !*p
		} else {
			*p = on
		}
	})
	return nil
}

func boolField(r *Record, f Field) *bool {
	switch f {
	case FieldDarkMode:
		return &r.DarkMode
	case FieldShowBackground:
		return &r.ShowBackground
	case FieldAutoDetectLanguage:
		return &r.AutoDetectLanguage
	default:
		return &r.ShowLineNumbers
	}
}
