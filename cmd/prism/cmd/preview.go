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

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/raghul017/Prism/internal/termview"
)

var (
	previewSrc      sourceFlags
	previewANSI     string
	previewMaxWidth int
)

var previewCmd = &cobra.Command{
	Use:   "preview [file|-]",
	Short: "Show the screenshot in the terminal",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := previewSrc.build(cmd.Context(), args, cmd.InOrStdin())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if previewANSI != "" {
			return termview.WriteANSI(out, s.Get(), previewANSI)
		}
		view, err := termview.Render(s.Get(), termview.Options{
			Renderer: lipgloss.NewRenderer(out),
			MaxWidth: previewMaxWidth,
		})
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, view)
		return err
	},
}

func init() {
	previewSrc.register(previewCmd)
	previewCmd.Flags().StringVar(&previewANSI, "ansi", "", "print only highlighted code with a chroma formatter (terminal, terminal256, terminal16m)")
	previewCmd.Flags().IntVar(&previewMaxWidth, "max-width", 0, "truncate code lines to this many columns")
}
