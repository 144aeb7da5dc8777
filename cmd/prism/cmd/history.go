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
	"time"

	"github.com/spf13/cobra"

	"github.com/raghul017/Prism/internal/storage"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse past exports and shares",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent shots",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(cmd, func(h *storage.History) error {
			shots, err := h.List(cmd.Context(), historyLimit)
			if err != nil {
				return err
			}
			for _, s := range shots {
				printShot(cmd.OutOrStdout(), s)
			}
			return nil
		})
	},
}

var historySearchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Full-text search over titles and code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(cmd, func(h *storage.History) error {
			hits, err := h.Search(cmd.Context(), args[0], historyLimit)
			if err != nil {
				return err
			}
			for _, hit := range hits {
				printShot(cmd.OutOrStdout(), hit.Shot)
				fmt.Fprintln(cmd.OutOrStdout(), "    "+hit.Snippet)
			}
			return nil
		})
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the code of a shot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(cmd, func(h *storage.History) error {
			s, err := h.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.Code)
			return nil
		})
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a shot from the history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(cmd, func(h *storage.History) error {
			return h.Delete(cmd.Context(), args[0])
		})
	},
}

var historyRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the search index from the journal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(cmd, func(h *storage.History) error {
			return h.Rebuild(cmd.Context())
		})
	},
}

func init() {
	historyCmd.PersistentFlags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of results")
	historyCmd.AddCommand(historyListCmd, historySearchCmd, historyShowCmd, historyDeleteCmd, historyRebuildCmd)
}

func withHistory(cmd *cobra.Command, fn func(h *storage.History) error) error {
	h, rebuilt, err := storage.DetectAndRebuildHistory(cmd.Context(), cfg.DataDir())
	if err != nil {
		return err
	}
	defer h.Close()
	if rebuilt {
		logger.Warn("history index was rebuilt from the journal")
	}
	return fn(h)
}

func printShot(w io.Writer, s storage.Shot) {
	where := s.Path
	if where == "" {
		where = s.Link
	}
	fmt.Fprintf(w, "%s  %s  %-12s %s  %s\n", shortID(s.ID), s.CreatedAt.Local().Format(time.DateTime), s.Language, s.Title, where)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
