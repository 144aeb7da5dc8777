/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raghul017/Prism/internal/export"
	"github.com/raghul017/Prism/internal/storage"
	"github.com/raghul017/Prism/internal/telemetry"
)

var (
	renderSrc     sourceFlags
	renderFormats []string
	renderPresets []string
	renderOut     string
	renderName    string
	renderWidth   float32
	renderNoHist  bool
)

var renderCmd = &cobra.Command{
	Use:     "render [file|-]",
	Aliases: []string{"export"},
	Short:   "Render code to PNG, SVG or PDF",
	Long: `Render a code file (or stdin with "-") using the saved preferences.
Several formats and presets may be combined; each pair is written as
<name>[-<preset>].<format> in the output directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	renderSrc.register(renderCmd)
	renderCmd.Flags().StringSliceVarP(&renderFormats, "format", "f", nil, "output formats: png, svg, pdf (default from config)")
	renderCmd.Flags().StringSliceVarP(&renderPresets, "preset", "p", nil, "size presets: 1x, 2x, 4x, social (default from config)")
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "output directory (default from config)")
	renderCmd.Flags().StringVar(&renderName, "name", "", "base file name (default prism)")
	renderCmd.Flags().Float32Var(&renderWidth, "width", 0, "canvas width in pixels; smaller values are ignored")
	renderCmd.Flags().BoolVar(&renderNoHist, "no-history", false, "do not record the export in the history")
}

func runRender(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := renderSrc.build(ctx, args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	rec := s.Get()

	opt := export.BatchOptions{OutDir: renderOut, BaseName: renderName}
	if opt.OutDir == "" {
		opt.OutDir = cfg.Export.OutputDir
	}
	formats := splitList(renderFormats)
	if len(formats) == 0 && cfg.Export.Format != "" {
		formats = []string{cfg.Export.Format}
	}
	for _, f := range formats {
		pf, err := export.ParseFormat(f)
		if err != nil {
			return err
		}
		opt.Formats = append(opt.Formats, pf)
	}
	presets := splitList(renderPresets)
	if len(presets) == 0 && cfg.Export.Preset != "" {
		presets = []string{cfg.Export.Preset}
	}
	for _, p := range presets {
		opt.Presets = append(opt.Presets, export.PresetName(strings.ToLower(p)))
	}

	sc, err := export.BuildScene(rec, export.SceneOptions{Width: renderWidth})
	if err != nil {
		return err
	}
	sum, err := export.BatchExport(sc, opt)
	for _, it := range sum.Items {
		telemetry.Export(string(it.Format), string(it.Preset), it.Err == nil)
		if it.Err != nil {
			continue
		}
		fmt.Fprintln(cmd.OutOrStdout(), it.Path)
		if !renderNoHist {
			rememberShot(ctx, rec, storage.Shot{Format: string(it.Format), Path: it.Path})
		}
	}
	return err
}
