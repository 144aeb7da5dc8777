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

	"github.com/spf13/cobra"

	"github.com/raghul017/Prism/internal/themepack"
)

var themepackCmd = &cobra.Command{
	Use:   "themepack",
	Short: "Share user themes as zip archives",
}

var themepackExportCmd = &cobra.Command{
	Use:   "export <file.zip>",
	Short: "Pack the user themes directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := themepack.Export(cfg.ThemesDir(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "packed %d themes into %s\n", n, args[0])
		return nil
	},
}

var themepackInstallCmd = &cobra.Command{
	Use:   "install <file.zip>",
	Short: "Install the themes of a pack into the user themes directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := themepack.Install(cfg.ThemesDir(), args[0])
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Fprintln(cmd.OutOrStdout(), "installed", n)
		}
		if len(names) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "all themes were already installed")
		}
		return nil
	},
}

func init() {
	themepackCmd.AddCommand(themepackExportCmd, themepackInstallCmd)
}
