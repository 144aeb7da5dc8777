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
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raghul017/Prism/internal/catalog"
	"github.com/raghul017/Prism/internal/config"
	"github.com/raghul017/Prism/internal/crash"
	applog "github.com/raghul017/Prism/internal/log"
	"github.com/raghul017/Prism/internal/telemetry"
	"github.com/raghul017/Prism/internal/version"
)

var (
	dataDirFlag string
	logLevel    string
	cfg         = config.Defaults()
	token       string
	cfgPath     string
	logger      *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "prism",
	Short: "Turn code into polished screenshots",
	Long: `prism renders code snippets as framed, themed images (PNG, SVG, PDF),
keeps a searchable history of exports and serves short share links.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, tok, path, err := loadConfig()
		if err != nil {
			fmt.Fprintln(os.Stderr, "warning:", err)
		}
		cfg, token, cfgPath = loaded, tok, path
		if dataDirFlag != "" {
			cfg.General.DataDir = dataDirFlag
		}
		opts := applog.Options{
			Level:     cfg.Logging.Level,
			Format:    cfg.Logging.Format,
			AddSource: cfg.Logging.Source,
			File:      cfg.Logging.File,
		}
		if logLevel != "" {
			opts.Level = logLevel
		}
		applog.Init(opts)
		logger = applog.WithComponent("cli")
		logger.Debug("start", slog.String("command", cmd.CommandPath()), slog.String("config", cfgPath))

		if n, err := catalog.LoadUserThemes(cfg.ThemesDir()); err != nil {
			logger.Warn("user themes not loaded", slog.Any("err", err))
		} else if n > 0 {
			logger.Debug("user themes", slog.Int("count", n))
		}
		startTelemetry(cmd.Name())
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), telemetryFlushTimeout)
		defer cancel()
		telemetry.Flush(ctx)
	},
}

func loadConfig() (config.AppConfig, string, string, error) {
	c, tok, err := config.Load()
	path, _ := config.ConfigPath()
	return c, tok, path, err
}

func startTelemetry(command string) {
	tc := telemetry.FromEnv()
	tc.OptIn = tc.OptIn || cfg.General.TelemetryOptIn
	if !tc.OptIn {
		return
	}
	if id, err := telemetry.InstallID(cfg.DataDir()); err == nil {
		tc.InstallID = id
	}
	telemetry.NewDefault(tc)
	telemetry.Event(telemetry.EventStart, map[string]any{"command": command, "version": version.Version})
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "directory for preferences, history and crash reports")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")

	rootCmd.AddCommand(
		renderCmd,
		previewCmd,
		prefsCmd,
		linkCmd,
		importCmd,
		themesCmd,
		fontsCmd,
		languagesCmd,
		detectCmd,
		historyCmd,
		themepackCmd,
		serveCmd,
		shareCmd,
		fetchCmd,
		loginCmd,
		logoutCmd,
		settingsCmd,
		uiCmd,
		shortcutsCmd,
		versionCmd,
	)
}

// Execute runs the root command. Panics are reported like in the editor.
func Execute() error {
	defer crash.Recover(crash.Target{DataDir: cfg.DataDir()})
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// splitList accepts repeated and comma separated flag values.
func splitList(vals []string) []string {
	var out []string
	for _, v := range vals {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
