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
	"errors"

	"github.com/spf13/cobra"

	"github.com/raghul017/Prism/internal/ui"
)

var uiLink string

var uiCmd = &cobra.Command{
	Use:   "ui [link]",
	Short: "Open the desktop editor (build with -tags fyne)",
	Long:  "Open the desktop editor. A share link, given as argument or --link, is imported once at start-up.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		link, err := uiStartLink(uiLink, args)
		if err != nil {
			return err
		}
		return ui.Run(cfg.DataDir(), link)
	},
}

func init() {
	uiCmd.Flags().StringVar(&uiLink, "link", "", "share link or query to import at start-up")
}

// uiStartLink picks the start-up link from --link or the argument.
func uiStartLink(flag string, args []string) (string, error) {
	if len(args) == 0 {
		return flag, nil
	}
	if flag != "" && flag != args[0] {
		return "", errors.New("give the link either as argument or with --link, not both")
	}
	return args[0], nil
}
