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
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/raghul017/Prism/internal/langdetect"
	"github.com/raghul017/Prism/internal/prefs"
	"github.com/raghul017/Prism/internal/storage"
	"github.com/raghul017/Prism/internal/telemetry"
	"github.com/raghul017/Prism/internal/upload"
)

const telemetryFlushTimeout = 2 * time.Second

// sourceFlags select the record a render or preview starts from.
type sourceFlags struct {
	link  string
	image string
	sets  []string
	fresh bool
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.link, "link", "", "start from the settings in a shared link")
	cmd.Flags().StringVar(&f.image, "image", "", "render this image instead of code")
	cmd.Flags().StringArrayVar(&f.sets, "set", nil, "override a setting, e.g. --set theme=candy --set padding=32")
	cmd.Flags().BoolVar(&f.fresh, "defaults", false, "ignore saved preferences")
}

// build assembles a store from saved preferences, the flags and the code
// read from args[0] ("-" for stdin).
func (f *sourceFlags) build(ctx context.Context, args []string, stdin io.Reader) (*prefs.Store, error) {
	rec := prefs.Defaults()
	if !f.fresh {
		saved, _, err := storage.LoadPreferences(cfg.DataDir())
		if err != nil {
			return nil, err
		}
		rec = saved
	}
	if f.link != "" {
		r, ok, err := prefs.ImportURL(f.link)
		if err != nil {
			return nil, fmt.Errorf("parse link: %w", err)
		}
		if ok {
			rec = r
		}
	}
	s := prefs.NewStore(rec)

	w := langdetect.NewWatcher(s, nil)
	w.Start()
	defer w.Stop()

	if len(args) > 0 {
		code, err := readCode(args[0], stdin)
		if err != nil {
			return nil, err
		}
		s.Update(func(r *prefs.Record) {
			r.Code = code
			if args[0] != "-" && r.Title == prefs.Defaults().Title {
				r.Title = filepath.Base(args[0])
			}
		})
	}
	for _, kv := range f.sets {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("--set %q: want key=value", kv)
		}
		if err := s.SetField(strings.TrimSpace(k), v); err != nil {
			return nil, err
		}
	}
	if f.image != "" {
		if err := loadImage(ctx, s, f.image); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func readCode(arg string, stdin io.Reader) (string, error) {
	var (
		b   []byte
		err error
	)
	if arg == "-" {
		b, err = io.ReadAll(stdin)
	} else {
		b, err = os.ReadFile(arg)
	}
	if err != nil {
		return "", fmt.Errorf("read code: %w", err)
	}
	return strings.TrimRight(string(b), "\n"), nil
}

func loadImage(ctx context.Context, s *prefs.Store, path string) error {
	var last upload.Notice
	ld := upload.NewLoader(s, upload.NotifierFunc(func(n upload.Notice) {
		last = n
		logger.Info(n.Message)
	}))
	res := <-ld.LoadFile(ctx, path)
	if res.Err != nil {
		return res.Err
	}
	if !res.Applied {
		return fmt.Errorf("image %s not applied: %s", path, last.Message)
	}
	telemetry.Event(telemetry.EventImage, map[string]any{"source": "file"})
	return nil
}

// rememberShot records an export or share in the history; failures are logged.
func rememberShot(ctx context.Context, rec prefs.Record, shot storage.Shot) {
	h, err := storage.OpenHistory(cfg.DataDir())
	if err != nil {
		logger.Warn("history unavailable", slog.Any("err", err))
		return
	}
	defer h.Close()
	shot.Title, shot.Language, shot.Theme, shot.Code = rec.Title, rec.Language, rec.Theme, rec.Code
	if _, err := h.Record(ctx, shot); err != nil {
		logger.Warn("history record failed", slog.Any("err", err))
	}
}
