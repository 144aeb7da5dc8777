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
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/raghul017/Prism/internal/prefs"
	"github.com/raghul017/Prism/internal/storage"
	"github.com/raghul017/Prism/internal/telemetry"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show and change the saved editor preferences",
}

var prefsShowCmd = &cobra.Command{
	Use:   "show [field]",
	Short: "Print the preferences as JSON, or one field",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, _, err := storage.LoadPreferences(cfg.DataDir())
		if err != nil {
			return err
		}
		b, err := json.MarshalIndent(rec.Persistable(), "", "  ")
		if err != nil {
			return err
		}
		if len(args) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		}
		if _, err := prefs.FieldByName(args[0]); err != nil {
			return err
		}
		var m map[string]any
		if err := json.Unmarshal(b, &m); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), m[args[0]])
		return nil
	},
}

var prefsSetCmd = &cobra.Command{
	Use:   "set <field> <value> [<field> <value>...]",
	Short: "Change preferences, e.g. prism prefs set theme candy padding 32",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 || len(args)%2 != 0 {
			return errors.New("expected field/value pairs")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return editPrefs(func(s *prefs.Store) error {
			for i := 0; i < len(args); i += 2 {
				if err := s.SetField(args[i], args[i+1]); err != nil {
					return err
				}
			}
			return nil
		})
	},
}

var prefsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the factory defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		return editPrefs(func(s *prefs.Store) error {
			s.Reset()
			return nil
		})
	},
}

var prefsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the preferences file location",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), storage.PreferencesPath(cfg.DataDir()))
	},
}

func init() {
	prefsCmd.AddCommand(prefsShowCmd, prefsSetCmd, prefsResetCmd, prefsPathCmd)
}

// editPrefs loads the preferences, applies fn and saves when anything changed.
func editPrefs(fn func(s *prefs.Store) error) error {
	dir := cfg.DataDir()
	rec, _, err := storage.LoadPreferences(dir)
	if err != nil {
		return err
	}
	s := prefs.NewStore(rec)
	if err := fn(s); err != nil {
		return err
	}
	changed := prefs.Diff(rec, s.Get())
	if changed == 0 {
		logger.Info("preferences unchanged")
		return nil
	}
	logger.Info("preferences updated", "fields", changed.String())
	return storage.SavePreferences(dir, s.Get())
}

var linkCopy bool

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Print a share link for the saved preferences",
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, _, err := storage.LoadPreferences(cfg.DataDir())
		if err != nil {
			return err
		}
		link := prefs.ShareLink(shareBaseURL(), rec)
		fmt.Fprintln(cmd.OutOrStdout(), link)
		if linkCopy {
			if err := clipboard.WriteAll(link); err != nil {
				return fmt.Errorf("copy link: %w", err)
			}
			telemetry.Event(telemetry.EventShare, map[string]any{"via": "clipboard"})
		}
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <link>",
	Short: "Replace the saved preferences with the settings in a share link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, ok, err := prefs.ImportURL(args[0])
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("link carries no settings")
		}
		return editPrefs(func(s *prefs.Store) error {
			s.Replace(rec)
			return nil
		})
	},
}

func init() {
	linkCmd.Flags().BoolVarP(&linkCopy, "copy", "c", false, "also copy the link to the clipboard")
}

// shareBaseURL is where query links point: the share service when one is
// configured, else the public editor.
func shareBaseURL() string {
	if u := strings.TrimSpace(cfg.Backend.BaseURL); u != "" {
		return strings.TrimRight(u, "/") + "/"
	}
	return "https://prism.app/"
}
