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
	"runtime"

	"github.com/spf13/cobra"

	"github.com/raghul017/Prism/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		row(out, "Version", version.String())
		row(out, "Go Version", runtime.Version())
		row(out, "OS/Arch", runtime.GOOS+"/"+runtime.GOARCH)
		if cfgPath != "" {
			row(out, "Config", cfgPath)
		}
		row(out, "Data", cfg.DataDir())
	},
}
