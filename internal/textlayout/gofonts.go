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

import (
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// UIFamily selects the proportional Go font, used for window titles.
const UIFamily = "ui"

var (
	goFontsOnce sync.Once
	goFonts     *FontLibrary
)

func bundled() *FontLibrary {
	goFontsOnce.Do(func() {
		goFonts = NewFontLibrary()
		// The bundled TTFs are known-good; errors cannot occur here.
		_ = goFonts.Add("mono", 400, false, gomono.TTF)
		_ = goFonts.Add("mono", 700, false, gomonobold.TTF)
		_ = goFonts.Add("mono", 400, true, gomonoitalic.TTF)
		_ = goFonts.Add("mono", 700, true, gomonobolditalic.TTF)
		_ = goFonts.Add(UIFamily, 400, false, goregular.TTF)
		_ = goFonts.Add(UIFamily, 700, false, gobold.TTF)
	})
	return goFonts
}

// GoProvider resolves every family to the bundled Go fonts: UIFamily maps
// to Go Regular, anything else to Go Mono. Each call returns a new face;
// faces are not safe for concurrent use.
type GoProvider struct{}

func (GoProvider) Resolve(spec FontSpec) (font.Face, Metrics) {
	if spec.SizePt <= 0 {
		spec.SizePt = 12
	}
	family := "mono"
	if spec.Family == UIFamily {
		family = UIFamily
	}
	weight := 400
	if spec.Weight >= 600 {
		weight = 700
	}
	otf := bundled().find(FontSpec{Family: family, Weight: weight, Italic: spec.Italic})
	face, err := opentype.NewFace(otf, &opentype.FaceOptions{Size: float64(spec.SizePt), DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return BasicProvider{}.Resolve(spec)
	}
	return face, metricsOf(face)
}
