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
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/raghul017/Prism/internal/catalog"
	"github.com/raghul017/Prism/internal/langdetect"
	"github.com/raghul017/Prism/internal/prefs"
	"github.com/raghul017/Prism/internal/telemetry"
)

var (
	muted    = lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#9ca3af"}
	keyStyle = lipgloss.NewStyle().Width(18).Foreground(muted)
)

func row(w io.Writer, key, val string) {
	fmt.Fprintln(w, keyStyle.Render(key)+val)
}

func swatch(hexes []string) string {
	var b strings.Builder
	for _, h := range hexes {
		b.WriteString(lipgloss.NewStyle().Background(lipgloss.Color(h)).Render("  "))
	}
	return b.String()
}

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List colour themes, including user themes",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		for _, t := range catalog.Themes() {
			row(out, t.Key, swatch(t.Background)+" "+t.Name)
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, "user themes are read from", cfg.ThemesDir())
	},
}

var fontsCmd = &cobra.Command{
	Use:   "fonts",
	Short: "List code fonts",
	Run: func(cmd *cobra.Command, args []string) {
		for _, f := range catalog.Fonts() {
			name := f.Name
			if f.Ligatures {
				name += " (ligatures)"
			}
			row(cmd.OutOrStdout(), f.Key, name)
		}
	},
}

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List languages available for highlighting",
	Run: func(cmd *cobra.Command, args []string) {
		for _, l := range catalog.Languages() {
			row(cmd.OutOrStdout(), l.ID, l.Name)
		}
	},
}

var detectCmd = &cobra.Command{
	Use:   "detect [file|-]",
	Short: "Guess the language of a code file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := readCode(args[0], cmd.InOrStdin())
		if err != nil {
			return err
		}
		id, ok := langdetect.Default().Detect(code)
		telemetry.Event(telemetry.EventDetect, map[string]any{"language": id, "confident": ok})
		name := id
		if l, found := catalog.LookupLanguage(id); found {
			name = l.Name
		}
		if !ok {
			name += " (no confident match)"
		}
		fmt.Fprintln(cmd.OutOrStdout(), id+"\t"+name)
		return nil
	},
}

var shortcutsCmd = &cobra.Command{
	Use:   "shortcuts",
	Short: "List the editor keyboard shortcuts",
	Run: func(cmd *cobra.Command, args []string) {
		for _, s := range prefs.Shortcuts() {
			row(cmd.OutOrStdout(), s.Action, s.Keys)
		}
	},
}
