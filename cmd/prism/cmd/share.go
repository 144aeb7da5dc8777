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
	"time"

	"github.com/spf13/cobra"

	"github.com/raghul017/Prism/internal/backend"
	"github.com/raghul017/Prism/internal/config"
	"github.com/raghul017/Prism/internal/prefs"
	"github.com/raghul017/Prism/internal/storage"
	"github.com/raghul017/Prism/internal/telemetry"
)

func newClient() *backend.Client {
	return backend.NewClient(cfg.Backend.BaseURL, token, backend.ClientOptions{
		Timeout:     cfg.Backend.Timeout(),
		TLSInsecure: cfg.Backend.TLSInsecure,
	})
}

var shareSrc sourceFlags

var shareCmd = &cobra.Command{
	Use:   "share [file|-]",
	Short: "Upload a snippet to the share service and print its short link",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := shareSrc.build(ctx, args, cmd.InOrStdin())
		if err != nil {
			return err
		}
		rec := s.Get()
		link, err := newClient().Share(ctx, rec)
		if errors.Is(err, backend.ErrUnauthorized) {
			return fmt.Errorf("%w; run prism login first", err)
		}
		if err != nil {
			return err
		}
		telemetry.Event(telemetry.EventShare, map[string]any{"via": "service"})
		rememberShot(ctx, rec, storage.Shot{Link: link})
		fmt.Fprintln(cmd.OutOrStdout(), link)
		return nil
	},
}

var fetchApply bool

var fetchCmd = &cobra.Command{
	Use:   "fetch <id|link>",
	Short: "Download a shared snippet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := newClient().Fetch(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if fetchApply {
			return editPrefs(func(s *prefs.Store) error {
				s.Replace(rec)
				return nil
			})
		}
		b, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	},
}

var (
	loginToken   string
	loginSecret  string
	loginSubject string
	loginTTL     time.Duration
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store a share-service token in the OS keychain",
	Long: `Store a bearer token for the share service. Pass --token directly, or
--secret to have the service issue one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tok := loginToken
		if tok == "" {
			if loginSecret == "" {
				return errors.New("either --token or --secret is required")
			}
			t, exp, err := newClient().IssueToken(cmd.Context(), loginSecret, loginSubject, loginTTL)
			if err != nil {
				return err
			}
			tok = t
			logger.Info("token issued", "expires", exp.Local().Format(time.DateTime))
		}
		if err := config.Save(cfg, tok); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "token stored for", cfg.Backend.BaseURL)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored share-service token",
	RunE: func(cmd *cobra.Command, args []string) error {
		return config.ClearToken()
	},
}

func init() {
	shareSrc.register(shareCmd)
	fetchCmd.Flags().BoolVar(&fetchApply, "apply", false, "replace the saved preferences with the fetched snippet")
	loginCmd.Flags().StringVar(&loginToken, "token", "", "bearer token to store")
	loginCmd.Flags().StringVar(&loginSecret, "secret", "", "server secret used to issue a token")
	loginCmd.Flags().StringVar(&loginSubject, "subject", "cli", "name recorded with shares")
	loginCmd.Flags().DurationVar(&loginTTL, "ttl", 30*24*time.Hour, "token lifetime")
}
