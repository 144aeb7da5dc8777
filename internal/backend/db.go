/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package backend

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	applog "github.com/raghul017/Prism/internal/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNotFound is returned when a shot id is unknown.
var ErrNotFound = errors.New("shot not found")

// Shot is a shared snapshot. Query holds the record encoded as a URL query,
// which is also what the short link redirects to.
type Shot struct {
	ID        string    `json:"id"`
	Query     string    `json:"query"`
	Title     string    `json:"title"`
	Language  string    `json:"language"`
	Subject   string    `json:"-"`
	Views     int64     `json:"views"`
	CreatedAt time.Time `json:"created_at"`
}

// Repo persists shots.
type Repo interface {
	Put(ctx context.Context, s Shot) error
	// Get returns the shot; countView increments its view counter.
	Get(ctx context.Context, id string, countView bool) (Shot, error)
	Ping(ctx context.Context) error
}

// PGRepo stores shots in Postgres through the pgx stdlib driver.
type PGRepo struct{ db *sql.DB }

// OpenPG opens dsn, checks connectivity and applies migrations.
func OpenPG(ctx context.Context, dsn string) (*PGRepo, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	pctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := applyMigrations(pctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &PGRepo{db: db}, nil
}

func (r *PGRepo) Close() error { return r.db.Close() }

func (r *PGRepo) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }

func (r *PGRepo) Put(ctx context.Context, s Shot) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO shots(id, query, title, language, subject, created_at) VALUES($1,$2,$3,$4,$5,$6)`,
		s.ID, s.Query, s.Title, s.Language, s.Subject, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert shot: %w", err)
	}
	return nil
}

func (r *PGRepo) Get(ctx context.Context, id string, countView bool) (Shot, error) {
	q := `SELECT id, query, title, language, subject, views, created_at FROM shots WHERE id = $1`
	if countView {
		q = `UPDATE shots SET views = views + 1 WHERE id = $1 RETURNING id, query, title, language, subject, views, created_at`
	}
	var s Shot
	err := r.db.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.Query, &s.Title, &s.Language, &s.Subject, &s.Views, &s.CreatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return Shot{}, ErrNotFound
	case err != nil:
		return Shot{}, fmt.Errorf("select shot: %w", err)
	}
	return s, nil
}

// MemRepo is an in-memory Repo for tests and `prism serve --memory`.
type MemRepo struct {
	mu    sync.Mutex
	shots map[string]Shot
}

func NewMemRepo() *MemRepo { return &MemRepo{shots: map[string]Shot{}} }

func (m *MemRepo) Ping(context.Context) error { return nil }

func (m *MemRepo) Put(_ context.Context, s Shot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.shots[s.ID]; ok {
		return fmt.Errorf("insert shot: duplicate id %s", s.ID)
	}
	m.shots[s.ID] = s
	return nil
}

func (m *MemRepo) Get(_ context.Context, id string, countView bool) (Shot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.shots[id]
	if !ok {
		return Shot{}, ErrNotFound
	}
	if countView {
		s.Views++
		m.shots[id] = s
	}
	return s, nil
}

// applyMigrations applies embedded SQL migrations in filename order.
func applyMigrations(ctx context.Context, db *sql.DB) error {
	l := applog.WithOperation(applog.WithComponent("backend"), "migrate")
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	applied := map[int64]bool{}
	rows, err := db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("select schema_migrations: %w", err)
	}
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			_ = rows.Close()
			return err
		}
		applied[v] = true
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	_ = rows.Close()

	for _, fname := range files {
		version, err := parseVersion(fname)
		if err != nil {
			return err
		}
		if applied[version] {
			continue
		}
		b, err := migrationsFS.ReadFile(path.Join("migrations", fname))
		if err != nil {
			return err
		}
		if strings.TrimSpace(string(b)) == "" {
			continue
		}
		l.Info("applying migration", slog.String("file", fname))
		if _, err := db.ExecContext(ctx, string(b)); err != nil {
			return fmt.Errorf("apply %s: %w", fname, err)
		}
	}
	return nil
}

func parseVersion(name string) (int64, error) {
	base := path.Base(name)
	prefix, _, _ := strings.Cut(base, "_")
	v, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse version from %s: %w", name, err)
	}
	return v, nil
}
