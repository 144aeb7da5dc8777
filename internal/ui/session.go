/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math/rand"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"

	"github.com/raghul017/Prism/internal/catalog"
	"github.com/raghul017/Prism/internal/export"
	"github.com/raghul017/Prism/internal/langdetect"
	applog "github.com/raghul017/Prism/internal/log"
	"github.com/raghul017/Prism/internal/prefs"
	"github.com/raghul017/Prism/internal/storage"
	"github.com/raghul017/Prism/internal/telemetry"
	"github.com/raghul017/Prism/internal/undo"
	"github.com/raghul017/Prism/internal/upload"
)

const (
	// autosaveDelay debounces preference writes while typing.
	autosaveDelay = 400 * time.Millisecond
	// asyncDetectBytes is the code size above which language detection
	// leaves the edit path.
	asyncDetectBytes = 64 << 10
)

// linkImport guards the one start-up import of a shared link per process.
var linkImport prefs.Bootstrapper

// Session is the editor state behind a window: the preference store and the
// services attached to it. It has no widgets, so the front ends share it.
type Session struct {
	Store   *prefs.Store
	Undo    *undo.Tracker
	Images  *upload.Loader
	DataDir string
	// ShareBase prefixes links built by ShareLink.
	ShareBase string

	saver   *storage.AutoSaver
	watcher *langdetect.Watcher
	history *storage.History
	stops   []func()
	log     *slog.Logger
}

// SessionOptions configures OpenSession.
type SessionOptions struct {
	DataDir   string
	ShareBase string
	// Notifier receives upload notices; nil logs them.
	Notifier upload.Notifier
	// Detector overrides language detection; nil uses the default chain.
	Detector langdetect.Detector
	// NoHistory skips opening the shot history.
	NoHistory bool
	// Link is a share link or bare query imported once after start-up.
	Link string
	// Bootstrap guards the link import; nil uses the process-wide guard.
	Bootstrap *prefs.Bootstrapper
	// Rand picks the snippet seeded into an empty editor; nil uses the
	// global source.
	Rand *rand.Rand
}

// OpenSession loads the saved preferences and wires autosave, language
// detection, undo and image loading to a fresh store. An empty editor is
// seeded with a sample snippet, then opt.Link is imported over it.
func OpenSession(opt SessionOptions) (*Session, storage.LoadInfo, error) {
	l := applog.WithComponent("ui")
	rec, info, err := storage.LoadPreferences(opt.DataDir)
	if err != nil {
		return nil, info, fmt.Errorf("load preferences: %w", err)
	}
	if info.FromBackup || info.Recovered {
		l.Warn("preferences restored", slog.Bool("from_backup", info.FromBackup), slog.Bool("recovered", info.Recovered))
	}
	s := &Session{
		Store:     prefs.NewStore(rec),
		DataDir:   opt.DataDir,
		ShareBase: opt.ShareBase,
		log:       l,
	}
	if rec.Code == "" {
		sn := catalog.RandomSnippet(opt.Rand)
		s.Store.Update(func(r *prefs.Record) {
			r.Code = sn.Code
			r.Language = sn.Language
			r.Title = sn.Title
		})
	}
	n := opt.Notifier
	if n == nil {
		n = upload.NotifierFunc(func(no upload.Notice) { l.Info(no.Message) })
	}
	s.saver = storage.NewAutoSaver(opt.DataDir, autosaveDelay)
	s.stops = append(s.stops, s.saver.Attach(s.Store))
	s.Undo = undo.Track(s.Store, undo.NewManager(undo.Config{}))
	s.stops = append(s.stops, s.Undo.Stop)
	s.watcher = langdetect.NewWatcher(s.Store, opt.Detector, langdetect.AsyncAbove(asyncDetectBytes))
	s.watcher.Start()
	s.stops = append(s.stops, s.watcher.Stop)
	s.Images = upload.NewLoader(s.Store, n)
	if !opt.NoHistory {
		h, _, herr := storage.DetectAndRebuildHistory(context.Background(), opt.DataDir)
		if herr != nil {
			l.Warn("history unavailable", slog.Any("err", herr))
		} else {
			s.history = h
		}
	}
	if opt.Link != "" {
		b := opt.Bootstrap
		if b == nil {
			b = &linkImport
		}
		q, err := linkQuery(opt.Link)
		if err != nil {
			s.Close()
			return nil, info, fmt.Errorf("parse link: %w", err)
		}
		if b.Apply(s.Store, q) {
			l.Info("shared link imported")
		}
	}
	return s, info, nil
}

// linkQuery accepts a full share link, "?code=..." or a bare query.
func linkQuery(link string) (url.Values, error) {
	link = strings.TrimSpace(link)
	if strings.Contains(link, "://") {
		u, err := url.Parse(link)
		if err != nil {
			return nil, err
		}
		return u.Query(), nil
	}
	if i := strings.IndexByte(link, '?'); i >= 0 {
		link = link[i+1:]
	}
	return url.ParseQuery(link)
}

// Preview renders the current record at scale.
func (s *Session) Preview(scale float32) (*image.RGBA, error) {
	sc, err := export.BuildScene(s.Store.Get(), export.SceneOptions{})
	if err != nil {
		return nil, err
	}
	return export.RenderImage(sc, export.RenderOptions{Scale: scale})
}

// SaveAs writes the current record to path in the format named by its
// extension and records the shot in the history.
func (s *Session) SaveAs(path string, preset export.PresetName) error {
	f, err := export.ParseFormat(filepath.Ext(path))
	if err != nil {
		return err
	}
	p, err := export.LookupPreset(string(preset))
	if err != nil {
		return err
	}
	rec := s.Store.Get()
	sc, err := export.BuildScene(rec, export.SceneOptions{})
	if err == nil {
		err = export.Export(sc, f, path, p.Options())
	}
	telemetry.Export(string(f), string(p.Name), err == nil)
	if err != nil {
		s.log.Error("export failed", slog.String("path", path), slog.Any("err", err))
		return err
	}
	s.log.Info("exported", slog.String("path", path), slog.String("format", string(f)))
	s.remember(rec, storage.Shot{Format: string(f), Path: path})
	return nil
}

// DefaultFileName is the suggested export name for the current title.
func (s *Session) DefaultFileName(f export.Format) string {
	base := strings.TrimSpace(s.Store.Get().Title)
	if base == "" || base == prefs.Defaults().Title {
		base = "prism"
	}
	base = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`/\:*?"<>|`, r) {
			return '-'
		}
		return r
	}, base)
	return base + "." + string(f)
}

// ShareLink returns the query link for the current record.
func (s *Session) ShareLink() string {
	return prefs.ShareLink(s.ShareBase, s.Store.Get())
}

// CopyLink puts the share link on the system clipboard.
func (s *Session) CopyLink() (string, error) {
	link := s.ShareLink()
	if err := clipboard.WriteAll(link); err != nil {
		return "", fmt.Errorf("copy link: %w", err)
	}
	telemetry.Event(telemetry.EventShare, map[string]any{"via": "clipboard"})
	s.remember(s.Store.Get(), storage.Shot{Link: link})
	return link, nil
}

// ImportLink replaces the editor state with the record encoded in link.
func (s *Session) ImportLink(link string) error {
	rec, ok, err := prefs.ImportURL(link)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("link carries no settings")
	}
	s.Store.Replace(rec)
	return nil
}

func (s *Session) remember(rec prefs.Record, shot storage.Shot) {
	if s.history == nil {
		return
	}
	shot.Title, shot.Language, shot.Theme, shot.Code = rec.Title, rec.Language, rec.Theme, rec.Code
	if _, err := s.history.Record(context.Background(), shot); err != nil {
		s.log.Warn("history record failed", slog.Any("err", err))
	}
}

// Close detaches the services and flushes pending preference writes.
func (s *Session) Close() error {
	for i := len(s.stops) - 1; i >= 0; i-- {
		s.stops[i]()
	}
	s.stops = nil
	s.Images.Wait()
	err := s.saver.Flush()
	if s.history != nil {
		err = errors.Join(err, s.history.Close())
	}
	return err
}
