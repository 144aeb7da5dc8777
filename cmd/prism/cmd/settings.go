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
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/raghul017/Prism/internal/catalog"
	"github.com/raghul017/Prism/internal/config"
	"github.com/raghul017/Prism/internal/export"
	"github.com/raghul017/Prism/internal/prefs"
	"github.com/raghul017/Prism/internal/storage"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Edit the look of new screenshots and the CLI defaults interactively",
	RunE:  runSettings,
}

func runSettings(cmd *cobra.Command, args []string) error {
	rec, _, err := storage.LoadPreferences(cfg.DataDir())
	if err != nil {
		return err
	}
	next := rec
	frame := string(next.WindowFrame)
	c := cfg

	var themeOpts []huh.Option[string]
	for _, t := range catalog.Themes() {
		themeOpts = append(themeOpts, huh.NewOption(t.Name, t.Key))
	}
	var fontOpts []huh.Option[string]
	for _, f := range catalog.Fonts() {
		fontOpts = append(fontOpts, huh.NewOption(f.Name, f.Key))
	}
	var frameOpts []huh.Option[string]
	for _, f := range prefs.WindowFrames() {
		frameOpts = append(frameOpts, huh.NewOption(string(f), string(f)))
	}
	var presetOpts []huh.Option[string]
	for _, p := range export.Presets() {
		presetOpts = append(presetOpts, huh.NewOption(string(p.Name), string(p.Name)))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Theme").Options(themeOpts...).Value(&next.Theme),
			huh.NewSelect[string]().Title("Font").Options(fontOpts...).Value(&next.FontStyle),
			huh.NewSelect[string]().Title("Window frame").Options(frameOpts...).Value(&frame),
			huh.NewConfirm().Title("Dark mode").Value(&next.DarkMode),
			huh.NewConfirm().Title("Show background").Value(&next.ShowBackground),
			huh.NewConfirm().Title("Line numbers").Value(&next.ShowLineNumbers),
		).Title("Screenshot"),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Default format").
				Options(huh.NewOptions("png", "svg", "pdf")...).
				Value(&c.Export.Format),
			huh.NewSelect[string]().Title("Default preset").Options(presetOpts...).Value(&c.Export.Preset),
			huh.NewInput().Title("Output directory").Value(&c.Export.OutputDir),
			huh.NewInput().Title("Share service URL").Value(&c.Backend.BaseURL).Validate(validURL),
			huh.NewConfirm().Title("Send anonymous usage statistics").Value(&c.General.TelemetryOptIn),
		).Title("CLI"),
	)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return err
	}
	next.WindowFrame = prefs.WindowFrame(frame)

	if err := editPrefs(func(s *prefs.Store) error {
		s.Replace(next)
		return nil
	}); err != nil {
		return err
	}
	if err := config.Save(c, ""); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	cfg = c
	fmt.Fprintln(cmd.OutOrStdout(), "settings saved")
	return nil
}

func validURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("enter an absolute http(s) URL")
	}
	return nil
}
