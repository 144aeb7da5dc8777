/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	applog "github.com/raghul017/Prism/internal/log"
	"github.com/raghul017/Prism/internal/vector"
)

// PresetName represents a named export preset.
type PresetName string

const (
	Preset1x     PresetName = "1x"
	Preset2x     PresetName = "2x"
	Preset4x     PresetName = "4x"
	PresetSocial PresetName = "social"
)

// Format is an output file type.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
	FormatPDF Format = "pdf"
)

var ErrUnknownPreset = errors.New("unknown preset")
var ErrUnknownFormat = errors.New("unknown format")

// Preset fixes the output geometry of an export.
type Preset struct {
	Name  PresetName
	Scale float32
	// Frame is non-zero for fixed-size presets.
	Frame vector.Size
}

var presets = []Preset{
	{Name: Preset1x, Scale: 1},
	{Name: Preset2x, Scale: 2},
	{Name: Preset4x, Scale: 4},
	{Name: PresetSocial, Frame: vector.Size{W: 1200, H: 630}},
}

// Presets lists the built-in presets.
func Presets() []Preset { return append([]Preset(nil), presets...) }

// LookupPreset finds a preset by name, case-insensitively.
func LookupPreset(name string) (Preset, error) {
	n := PresetName(strings.ToLower(strings.TrimSpace(name)))
	for _, p := range presets {
		if p.Name == n {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
}

// ParseFormat accepts png, svg or pdf in any case, with or without a dot.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "."))
	switch f {
	case FormatPNG, FormatSVG, FormatPDF:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Options returns render options for the preset.
func (p Preset) Options() RenderOptions {
	return RenderOptions{Scale: p.Scale, Frame: p.Frame}
}

// Export writes s to path in the given format.
func Export(s Scene, f Format, path string, o RenderOptions) error {
	switch f {
	case FormatPNG:
		return ExportPNG(s, path, o)
	case FormatSVG:
		return ExportSVG(s, path, o)
	case FormatPDF:
		return ExportPDF(s, path, o)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// BatchOptions controls a batch export.
//
// Output files are named <BaseName>[-<preset>].<format> inside OutDir. The
// preset suffix is omitted for 1x so a single default export gets a plain
// name.
type BatchOptions struct {
	Formats  []Format     // empty means png
	Presets  []PresetName // empty means 1x
	OutDir   string       // created when missing; empty means the working directory
	BaseName string       // empty means "prism"
}

// BatchItem records one written (or failed) file.
type BatchItem struct {
	Format Format
	Preset PresetName
	Path   string
	Err    error
}

// Summary reports a batch export.
type Summary struct {
	Items []BatchItem
}

// Written returns the paths that were written successfully.
func (s Summary) Written() []string {
	var out []string
	for _, it := range s.Items {
		if it.Err == nil {
			out = append(out, it.Path)
		}
	}
	return out
}

// Err joins the errors of all failed items.
func (s Summary) Err() error {
	var errs []error
	for _, it := range s.Items {
		if it.Err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", it.Preset, it.Format, it.Err))
		}
	}
	return errors.Join(errs...)
}

// BatchExport writes s once per format and preset. A failing item does not
// stop the others; unknown presets fail before anything is written.
func BatchExport(s Scene, opt BatchOptions) (Summary, error) {
	l := applog.WithOperation(applog.WithComponent("export"), "batch")
	formats := opt.Formats
	if len(formats) == 0 {
		formats = []Format{FormatPNG}
	}
	names := opt.Presets
	if len(names) == 0 {
		names = []PresetName{Preset1x}
	}
	ps := make([]Preset, 0, len(names))
	for _, n := range names {
		p, err := LookupPreset(string(n))
		if err != nil {
			return Summary{}, err
		}
		ps = append(ps, p)
	}
	for _, f := range formats {
		if _, err := ParseFormat(string(f)); err != nil {
			return Summary{}, err
		}
	}
	base := opt.BaseName
	if base == "" {
		base = "prism"
	}

	var sum Summary
	for _, p := range ps {
		for _, f := range formats {
			name := base
			if p.Name != Preset1x {
				name += "-" + string(p.Name)
			}
			path := filepath.Join(opt.OutDir, name+"."+string(f))
			err := Export(s, f, path, p.Options())
			if err != nil {
				l.Warn("export failed", "preset", p.Name, "format", f, "err", err)
			} else {
				l.Debug("exported", "path", path)
			}
			sum.Items = append(sum.Items, BatchItem{Format: f, Preset: p.Name, Path: path, Err: err})
		}
	}
	l.Info("batch export done", "written", len(sum.Written()), "total", len(sum.Items))
	return sum, sum.Err()
}
