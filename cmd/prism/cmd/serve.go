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
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/raghul017/Prism/internal/backend"
)

var (
	serveMemory bool
	serveListen string
	serveDB     string
	servePublic string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the share-link service",
	Long: `Run the HTTP service that stores shared snippets and redirects short
links to the editor. Postgres is used unless --memory is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sc := backend.ConfigFromEnv()
		if cfg.Backend.Listen != "" {
			sc.Addr = cfg.Backend.Listen
		}
		if cfg.Backend.DatabaseURL != "" {
			sc.DBURL = cfg.Backend.DatabaseURL
		}
		if serveListen != "" {
			sc.Addr = serveListen
		}
		if serveDB != "" {
			sc.DBURL = serveDB
		}
		if servePublic != "" {
			sc.PublicURL = servePublic
		}
		if serveMemory {
			logger.Warn("using in-memory store; shares are lost on exit")
			return ignoreCanceled(backend.Serve(ctx, sc.Addr, backend.NewServer(backend.NewMemRepo(), sc)))
		}
		return ignoreCanceled(backend.Start(ctx, sc))
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveMemory, "memory", false, "keep shares in memory instead of Postgres")
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (default :8080)")
	serveCmd.Flags().StringVar(&serveDB, "db", "", "Postgres connection URL")
	serveCmd.Flags().StringVar(&servePublic, "public-url", "", "editor address short links redirect to")
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
