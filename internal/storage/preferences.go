/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/xeipuuv/gojsonschema"

	applog "github.com/raghul017/Prism/internal/log"
	"github.com/raghul017/Prism/internal/prefs"
)

const (
	BackupsDirName = "backups"
	// maxBackups bounds the number of preference backups kept on disk.
	maxBackups = 10
	// backupInterval limits backups when autosave writes on every change.
	backupInterval = time.Minute
)

//go:embed schema/preferences.schema.json
var preferencesSchemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

// ErrInvalidSnapshot wraps schema violations of a preferences snapshot.
var ErrInvalidSnapshot = errors.New("invalid preferences snapshot")

// PreferencesFileName is the on-disk name of the persisted record.
func PreferencesFileName() string { return prefs.StorageKey + ".json" }

// PreferencesPath returns the snapshot path inside dir.
func PreferencesPath(dir string) string { return filepath.Join(dir, PreferencesFileName()) }

// LoadInfo describes how LoadPreferences obtained its record.
type LoadInfo struct {
	Path       string
	Version    int  // schema version found on disk, 0 when none
	Missing    bool // no snapshot existed; defaults returned
	Migrated   bool // snapshot was older than prefs.SchemaVersion
	FromBackup bool // current snapshot unreadable, latest backup used
	Recovered  bool // nothing readable; defaults returned
}

type snapshot struct {
	State   map[string]any `json:"state"`
	Version int            `json:"version"`
}

// LoadPreferences reads the persisted record from dir. Unreadable snapshots
// fall back to the latest backup and then to defaults; corruption is
// reported through LoadInfo, never as an error.
func LoadPreferences(dir string) (prefs.Record, LoadInfo, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "prefs_load").With(slog.String("dir", dir))
	info := LoadInfo{Path: PreferencesPath(dir)}
	if strings.TrimSpace(dir) == "" {
		return prefs.Defaults(), info, errors.New("data dir is required")
	}
	b, err := os.ReadFile(info.Path)
	if errors.Is(err, os.ErrNotExist) {
		info.Missing = true
		return prefs.Defaults(), info, nil
	}
	var snap *snapshot
	if err == nil {
		snap, err = decodeSnapshot(b)
	}
	if err != nil {
		l.Warn("preferences unreadable, trying backup", slog.Any("err", err))
		snap, err = latestBackup(dir)
		if err != nil {
			l.Warn("no usable backup, using defaults", slog.Any("err", err))
			info.Recovered = true
			return prefs.Defaults(), info, nil
		}
		info.FromBackup = true
	}
	info.Version = snap.Version
	info.Migrated = snap.Version < prefs.SchemaVersion
	rec := prefs.Migrate(snap.State, snap.Version)
	if info.Migrated {
		l.Info("preferences migrated", slog.Int("from", snap.Version), slog.Int("to", prefs.SchemaVersion))
	}
	return rec, info, nil
}

func decodeSnapshot(b []byte) (*snapshot, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var raw map[string]json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	st, ok := raw["state"]
	if !ok {
		return nil, errors.New("snapshot has no state")
	}
	snap := &snapshot{}
	sdec := json.NewDecoder(bytes.NewReader(st))
	sdec.UseNumber()
	if err := sdec.Decode(&snap.State); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	if snap.State == nil {
		return nil, errors.New("snapshot state is null")
	}
	// A missing or malformed version is treated as a legacy snapshot.
	if v, ok := raw["version"]; ok {
		_ = json.Unmarshal(v, &snap.Version)
	}
	return snap, nil
}

// MarshalPreferences renders the persisted envelope for r. The custom image
// is always written as null.
func MarshalPreferences(r prefs.Record) ([]byte, error) {
	env := struct {
		State   prefs.Record `json:"state"`
		Version int          `json:"version"`
	}{State: r.Persistable(), Version: prefs.SchemaVersion}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal preferences: %w", err)
	}
	if err := ValidateSnapshot(data); err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// ValidateSnapshot checks data against the embedded JSON schema.
func ValidateSnapshot(data []byte) error {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(preferencesSchemaJSON))
	})
	if schemaErr != nil {
		return fmt.Errorf("load schema: %w", schemaErr)
	}
	res, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalidSnapshot, strings.Join(msgs, "; "))
	}
	return nil
}

// SavePreferences writes r to dir with transactional semantics. The
// previous snapshot is copied to backups/ at most once per backupInterval.
func SavePreferences(dir string, r prefs.Record) error {
	if strings.TrimSpace(dir) == "" {
		return errors.New("data dir is required")
	}
	data, err := MarshalPreferences(r)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure data dir: %w", err)
	}
	path := PreferencesPath(dir)
	if _, statErr := os.Stat(path); statErr == nil {
		if err := backupIfDue(dir, path); err != nil {
			return err
		}
	}

	// Transactional write: to temp file in same directory, then rename over target
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", PreferencesFileName(), os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		return fmt.Errorf("write temp preferences: %w", werr)
	}
	if rerr := os.Rename(temp, path); rerr != nil {
		// Windows cannot rename over an open or existing file in every case.
		_ = os.Remove(path)
		if rerr = os.Rename(temp, path); rerr != nil {
			_ = os.Remove(temp)
			return fmt.Errorf("replace preferences: %w", rerr)
		}
	}
	return nil
}

func backupIfDue(dir, current string) error {
	bdir := filepath.Join(dir, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}
	backups := listBackups(bdir)
	if n := len(backups); n > 0 {
		if st, err := os.Stat(backups[n-1]); err == nil && time.Since(st.ModTime()) < backupInterval {
			return nil
		}
	}
	stamp := time.Now().Format("20060102-150405.000")
	bpath := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", PreferencesFileName(), stamp))
	if err := copyFile(current, bpath); err != nil {
		return fmt.Errorf("backup current preferences: %w", err)
	}
	backups = append(backups, bpath)
	for len(backups) > maxBackups {
		_ = os.Remove(backups[0])
		backups = backups[1:]
	}
	return nil
}

// listBackups returns backup paths oldest first; the timestamp in the name
// sorts lexicographically.
func listBackups(bdir string) []string {
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, PreferencesFileName()+".") && strings.HasSuffix(name, ".bak") {
			out = append(out, filepath.Join(bdir, name))
		}
	}
	sort.Strings(out)
	return out
}

// latestBackup returns the newest backup that still parses.
func latestBackup(dir string) (*snapshot, error) {
	backups := listBackups(filepath.Join(dir, BackupsDirName))
	if len(backups) == 0 {
		return nil, errors.New("no backups found")
	}
	var lastErr error
	for i := len(backups) - 1; i >= 0; i-- {
		b, err := os.ReadFile(backups[i])
		if err != nil {
			lastErr = err
			continue
		}
		snap, err := decodeSnapshot(b)
		if err != nil {
			lastErr = err
			continue
		}
		return snap, nil
	}
	return nil, fmt.Errorf("parse backups: %w", lastErr)
}

// writeFileSync writes data to a file, ensures it is flushed to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies a file from src to dst (overwrites dst if exists).
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}

// AutoSaver persists the store on every change of a persisted field.
// With a positive debounce, bursts of changes are written once.
type AutoSaver struct {
	dir      string
	debounce time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending *prefs.Record
	lastErr error
}

// NewAutoSaver returns a saver writing into dir.
func NewAutoSaver(dir string, debounce time.Duration) *AutoSaver {
	return &AutoSaver{dir: dir, debounce: debounce}
}

// persistedFields excludes the image, which is never written.
const persistedFields = prefs.AllFields &^ (prefs.FieldCustomImage | prefs.FieldContentMode)

// Attach subscribes the saver to s and returns the unsubscribe func.
func (a *AutoSaver) Attach(s *prefs.Store) func() {
	return s.Subscribe(persistedFields, func(_, next prefs.Record, _ prefs.Field) {
		a.schedule(next)
	})
}

func (a *AutoSaver) schedule(r prefs.Record) {
	if a.debounce <= 0 {
		a.save(r)
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pending = &r
	if a.timer == nil {
		a.timer = time.AfterFunc(a.debounce, func() { _ = a.Flush() })
	} else {
		a.timer.Reset(a.debounce)
	}
}

func (a *AutoSaver) save(r prefs.Record) {
	err := SavePreferences(a.dir, r)
	if err != nil {
		applog.WithComponent("storage").Error("autosave failed", slog.Any("err", err))
	}
	a.mu.Lock()
	a.lastErr = err
	a.mu.Unlock()
}

// Flush writes any pending record immediately.
func (a *AutoSaver) Flush() error {
	a.mu.Lock()
	p := a.pending
	a.pending = nil
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.mu.Unlock()
	if p != nil {
		a.save(*p)
	}
	return a.Err()
}

// Err returns the result of the most recent save.
func (a *AutoSaver) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}
