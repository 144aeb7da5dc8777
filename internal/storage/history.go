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
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	applog "github.com/raghul017/Prism/internal/log"
	"github.com/raghul017/Prism/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	HistoryDirName  = "history"
	HistoryFileName = "history.sqlite"
	JournalFileName = "history.jsonl"

	// historySchemaVersion tracks the local SQLite schema of the history index.
	historySchemaVersion = 2

	defaultListLimit = 50
)

// ErrNotFound is returned when a shot id is not present in the history.
var ErrNotFound = errors.New("not found")

// Shot is one rendered screenshot remembered by the history.
type Shot struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Title     string    `json:"title"`
	Language  string    `json:"language"`
	Theme     string    `json:"theme"`
	Code      string    `json:"code"`
	Format    string    `json:"format,omitempty"`
	Path      string    `json:"path,omitempty"`
	Link      string    `json:"link,omitempty"`
}

// Hit is a search match with a highlighted excerpt using [ ] markers.
type Hit struct {
	Shot
	Snippet string
}

type journalEntry struct {
	Op   string `json:"op"`
	Shot *Shot  `json:"shot,omitempty"`
	ID   string `json:"id,omitempty"`
}

// History is the shot index at <dataDir>/history. The SQLite file is derived
// from the append-only journal and can be rebuilt from it at any time.
type History struct {
	dir string
	db  *sql.DB
	// jmu serializes journal appends.
	jmu sync.Mutex
}

// HistoryPath returns the index database path for dataDir.
func HistoryPath(dataDir string) string {
	return filepath.Join(dataDir, HistoryDirName, HistoryFileName)
}

// JournalPath returns the journal path for dataDir.
func JournalPath(dataDir string) string {
	return filepath.Join(dataDir, HistoryDirName, JournalFileName)
}

// OpenHistory opens or creates the history index and journal below dataDir.
func OpenHistory(dataDir string) (*History, error) {
	db, err := openHistoryDB(dataDir)
	if err != nil {
		return nil, err
	}
	return &History{dir: dataDir, db: db}, nil
}

func openHistoryDB(dataDir string) (*sql.DB, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "history_open").With(
		slog.String("dir", dataDir),
	)
	if strings.TrimSpace(dataDir) == "" {
		return nil, errors.New("data dir is required")
	}
	if err := os.MkdirAll(filepath.Join(dataDir, HistoryDirName), 0o755); err != nil {
		l.Error("create history dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	path := HistoryPath(dataDir)
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureMetaAndVersion(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, err
	}
	if err := ensureHistorySchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure history schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}
	l.Debug("history ready", slog.String("path", path))
	return db, nil
}

func ensureMetaAndVersion(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var cur int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// A fresh database starts at schema 1 and is migrated forward.
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, 1, ?, ?, ?)`, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// ensureHistorySchema creates the schema 1 tables and FTS structures.
func ensureHistorySchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS shots (
			seq        INTEGER PRIMARY KEY,
			id         TEXT    NOT NULL UNIQUE,
			created_at TEXT    NOT NULL,
			title      TEXT    NOT NULL DEFAULT '',
			language   TEXT    NOT NULL DEFAULT '',
			theme      TEXT    NOT NULL DEFAULT '',
			code       TEXT    NOT NULL DEFAULT '',
			format     TEXT    NOT NULL DEFAULT '',
			path       TEXT    NOT NULL DEFAULT '',
			link       TEXT    NOT NULL DEFAULT ''
		);`,
		// External-content FTS5 index over title and code, fed by triggers.
		`CREATE VIRTUAL TABLE IF NOT EXISTS fts_shots USING fts5(
			title,
			code,
			content='shots',
			content_rowid='seq',
			tokenize = 'unicode61'
		);`,
		`CREATE TRIGGER IF NOT EXISTS shots_ai AFTER INSERT ON shots BEGIN
			INSERT INTO fts_shots(rowid, title, code) VALUES (new.seq, new.title, new.code);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS shots_ad AFTER DELETE ON shots BEGIN
			INSERT INTO fts_shots(fts_shots, rowid, title, code) VALUES ('delete', old.seq, old.title, old.code);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS shots_au AFTER UPDATE OF title, code ON shots BEGIN
			INSERT INTO fts_shots(fts_shots, rowid, title, code) VALUES ('delete', old.seq, old.title, old.code);
			INSERT INTO fts_shots(rowid, title, code) VALUES (new.seq, new.title, new.code);
		END;`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure history schema: %w", err)
		}
	}
	return nil
}

// runMigrations applies incremental schema migrations up to historySchemaVersion.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	for cur < historySchemaVersion {
		next := cur + 1
		var stmts []string
		switch next {
		case 2:
			// Thumbnail cache and listing index.
			stmts = []string{
				`CREATE INDEX IF NOT EXISTS idx_shots_created ON shots(created_at);`,
				`CREATE TABLE IF NOT EXISTS thumbs (
					shot_id    TEXT    PRIMARY KEY,
					w          INTEGER NOT NULL DEFAULT 0,
					h          INTEGER NOT NULL DEFAULT 0,
					png        BLOB    NOT NULL,
					updated_at TEXT    NOT NULL
				);`,
			}
		}
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next, err)
		}
		for _, q := range stmts {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d stmt failed: %w", next, err)
			}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d update version: %w", next, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d commit: %w", next, err)
		}
		cur = next
	}
	return nil
}

// SchemaVersion reports the schema recorded in the version table.
func (h *History) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	if err := h.db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

// Close releases the database handle.
func (h *History) Close() error {
	if h == nil || h.db == nil {
		return nil
	}
	return h.db.Close()
}

// Record appends s to the journal and indexes it. Missing id and timestamp
// are filled in; the stored shot is returned.
func (h *History) Record(ctx context.Context, s Shot) (Shot, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	s.CreatedAt = s.CreatedAt.UTC().Truncate(time.Millisecond)
	if err := h.appendJournal(journalEntry{Op: "add", Shot: &s}); err != nil {
		return Shot{}, err
	}
	if err := insertShot(ctx, h.db, s); err != nil {
		return Shot{}, err
	}
	applog.WithComponent("storage").Debug("shot recorded", slog.String("id", s.ID), slog.String("format", s.Format))
	return s, nil
}

func insertShot(ctx context.Context, q interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
}, s Shot) error {
	_, err := q.ExecContext(ctx, `INSERT INTO shots(id, created_at, title, language, theme, code, format, path, link)
		VALUES(?,?,?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET title=excluded.title, language=excluded.language, theme=excluded.theme,
			code=excluded.code, format=excluded.format, path=excluded.path, link=excluded.link`,
		s.ID, s.CreatedAt.Format(time.RFC3339Nano), s.Title, s.Language, s.Theme, s.Code, s.Format, s.Path, s.Link)
	if err != nil {
		return fmt.Errorf("insert shot: %w", err)
	}
	return nil
}

// Get returns the shot with id or ErrNotFound.
func (h *History) Get(ctx context.Context, id string) (Shot, error) {
	row := h.db.QueryRowContext(ctx, `SELECT id, created_at, title, language, theme, code, format, path, link FROM shots WHERE id=?`, id)
	s, err := scanShot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Shot{}, fmt.Errorf("shot %s: %w", id, ErrNotFound)
	}
	return s, err
}

// List returns the most recent shots, newest first.
func (h *History) List(ctx context.Context, limit int) ([]Shot, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := h.db.QueryContext(ctx, `SELECT id, created_at, title, language, theme, code, format, path, link
		FROM shots ORDER BY created_at DESC, seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list shots: %w", err)
	}
	defer rows.Close()
	var out []Shot
	for rows.Next() {
		s, err := scanShot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Search runs an FTS5 query (terms, quoted phrases, AND/OR/NOT) over titles
// and code. An empty query lists recent shots.
func (h *History) Search(ctx context.Context, text string, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if strings.TrimSpace(text) == "" {
		shots, err := h.List(ctx, limit)
		if err != nil {
			return nil, err
		}
		hits := make([]Hit, len(shots))
		for i, s := range shots {
			hits[i] = Hit{Shot: s}
		}
		return hits, nil
	}
	rows, err := h.db.QueryContext(ctx, `SELECT s.id, s.created_at, s.title, s.language, s.theme, s.code, s.format, s.path, s.link,
			snippet(fts_shots, 1, '[', ']', '…', 10)
		FROM fts_shots JOIN shots s ON fts_shots.rowid = s.seq
		WHERE fts_shots MATCH ?
		ORDER BY rank LIMIT ?`, text, limit)
	if err != nil {
		return nil, fmt.Errorf("search shots: %w", err)
	}
	defer rows.Close()
	var out []Hit
	for rows.Next() {
		var (
			hit     Hit
			created string
			snip    sql.NullString
		)
		if err := rows.Scan(&hit.ID, &created, &hit.Title, &hit.Language, &hit.Theme, &hit.Code, &hit.Format, &hit.Path, &hit.Link, &snip); err != nil {
			return nil, fmt.Errorf("scan hit: %w", err)
		}
		hit.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		hit.Snippet = snip.String
		out = append(out, hit)
	}
	return out, rows.Err()
}

// Delete removes a shot and its thumbnail. Deleting an unknown id returns ErrNotFound.
func (h *History) Delete(ctx context.Context, id string) error {
	res, err := h.db.ExecContext(ctx, `DELETE FROM shots WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete shot: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("shot %s: %w", id, ErrNotFound)
	}
	_, _ = h.db.ExecContext(ctx, `DELETE FROM thumbs WHERE shot_id=?`, id)
	return h.appendJournal(journalEntry{Op: "delete", ID: id})
}

// PutThumbnail caches a PNG thumbnail for a shot. Thumbnails are not
// journaled; they are lost on rebuild and regenerated on demand.
func (h *History) PutThumbnail(ctx context.Context, id string, w, hgt int, png []byte) error {
	if len(png) == 0 {
		return errors.New("empty thumbnail")
	}
	_, err := h.db.ExecContext(ctx, `INSERT INTO thumbs(shot_id, w, h, png, updated_at) VALUES(?,?,?,?,?)
		ON CONFLICT(shot_id) DO UPDATE SET w=excluded.w, h=excluded.h, png=excluded.png, updated_at=excluded.updated_at`,
		id, w, hgt, png, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("put thumbnail: %w", err)
	}
	return nil
}

// Thumbnail returns the cached PNG for id or ErrNotFound.
func (h *History) Thumbnail(ctx context.Context, id string) ([]byte, error) {
	var b []byte
	err := h.db.QueryRowContext(ctx, `SELECT png FROM thumbs WHERE shot_id=?`, id).Scan(&b)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("thumbnail %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read thumbnail: %w", err)
	}
	return b, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShot(r rowScanner) (Shot, error) {
	var (
		s       Shot
		created string
	)
	if err := r.Scan(&s.ID, &created, &s.Title, &s.Language, &s.Theme, &s.Code, &s.Format, &s.Path, &s.Link); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Shot{}, err
		}
		return Shot{}, fmt.Errorf("scan shot: %w", err)
	}
	s.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return s, nil
}

func (h *History) appendJournal(e journalEntry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal journal entry: %w", err)
	}
	h.jmu.Lock()
	defer h.jmu.Unlock()
	f, err := os.OpenFile(JournalPath(h.dir), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("append journal: %w", err)
	}
	return f.Sync()
}

// readJournal replays the journal into the final set of shots in insertion
// order. Malformed lines are skipped.
func readJournal(dataDir string) ([]Shot, error) {
	f, err := os.Open(JournalPath(dataDir))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()
	var (
		order []string
		byID  = map[string]Shot{}
	)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		var e journalEntry
		if json.Unmarshal(sc.Bytes(), &e) != nil {
			continue
		}
		switch e.Op {
		case "add":
			if e.Shot == nil || e.Shot.ID == "" {
				continue
			}
			if _, seen := byID[e.Shot.ID]; !seen {
				order = append(order, e.Shot.ID)
			}
			byID[e.Shot.ID] = *e.Shot
		case "delete":
			delete(byID, e.ID)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	out := make([]Shot, 0, len(byID))
	for _, id := range order {
		if s, ok := byID[id]; ok {
			out = append(out, s)
			delete(byID, id)
		}
	}
	return out, nil
}

// Rebuild clears the index and replays the journal into it.
func (h *History) Rebuild(ctx context.Context) error {
	shots, err := readJournal(h.dir)
	if err != nil {
		return err
	}
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM shots`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear shots: %w", err)
	}
	for _, s := range shots {
		if err := insertShot(ctx, tx, s); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rebuild: %w", err)
	}
	_, _ = h.db.ExecContext(ctx, `INSERT INTO fts_shots(fts_shots) VALUES('rebuild')`)
	applog.WithComponent("storage").Info("history rebuilt", slog.Int("shots", len(shots)))
	return nil
}

// DetectAndRebuildHistory checks the index for corruption or a missing
// schema. A damaged file is backed up, removed and rebuilt from the journal.
// It returns the opened history and whether a rebuild happened.
func DetectAndRebuildHistory(ctx context.Context, dataDir string) (*History, bool, error) {
	path := HistoryPath(dataDir)
	h, err := OpenHistory(dataDir)
	if err == nil {
		if historyHealthy(ctx, h.db) {
			return h, false, nil
		}
		_ = h.Close()
	}
	backupIndexFile(path)
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		_ = os.Remove(p)
	}
	h, oerr := OpenHistory(dataDir)
	if oerr != nil {
		return nil, false, fmt.Errorf("reopen history: %w (first error: %v)", oerr, err)
	}
	if rerr := h.Rebuild(ctx); rerr != nil {
		_ = h.Close()
		return nil, false, rerr
	}
	return h, true, nil
}

func historyHealthy(ctx context.Context, db *sql.DB) bool {
	var chk string
	if err := db.QueryRowContext(ctx, `PRAGMA quick_check;`).Scan(&chk); err != nil || !strings.Contains(strings.ToLower(chk), "ok") {
		return false
	}
	if _, err := db.ExecContext(ctx, `SELECT 1 FROM shots LIMIT 1;`); err != nil {
		return false
	}
	return true
}

// backupIndexFile copies the current index file into a timestamped backup in history/backups.
func backupIndexFile(indexPath string) {
	bdir := filepath.Join(filepath.Dir(indexPath), BackupsDirName)
	_ = os.MkdirAll(bdir, 0o755)
	stamp := time.Now().Format("20060102-150405")
	bak := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", filepath.Base(indexPath), stamp))
	if data, err := os.ReadFile(indexPath); err == nil {
		_ = os.WriteFile(bak, data, 0o644)
	}
}
