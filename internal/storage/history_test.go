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
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func openTestHistory(t *testing.T) (*History, string) {
	t.Helper()
	dir := t.TempDir()
	h, err := OpenHistory(dir)
	if err != nil {
		t.Fatalf("OpenHistory: %v", err)
	}
	t.Cleanup(func() { _ = h.Close() })
	return h, dir
}

func TestOpenHistory_MigratesToLatest(t *testing.T) {
	h, _ := openTestHistory(t)
	v, err := h.SchemaVersion(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if v != historySchemaVersion {
		t.Fatalf("schema = %d, want %d", v, historySchemaVersion)
	}
}

func TestHistory_RecordListGet(t *testing.T) {
	h, _ := openTestHistory(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	a, err := h.Record(ctx, Shot{Title: "first", Language: "go", Code: "package main", CreatedAt: base})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if a.ID == "" {
		t.Fatalf("expected generated id")
	}
	if _, err := h.Record(ctx, Shot{Title: "second", Language: "python", Code: "print(1)", CreatedAt: base.Add(time.Minute)}); err != nil {
		t.Fatal(err)
	}
	list, err := h.List(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Title != "second" || list[1].Title != "first" {
		t.Fatalf("unexpected order: %+v", list)
	}
	got, err := h.Get(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.CreatedAt.Equal(base) || got.Code != "package main" {
		t.Fatalf("Get mismatch: %+v", got)
	}
	if _, err := h.Get(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestHistory_SearchAndDelete(t *testing.T) {
	h, _ := openTestHistory(t)
	ctx := context.Background()
	s, _ := h.Record(ctx, Shot{Title: "fib", Code: "func fibonacci(n int) int { return n }"})
	_, _ = h.Record(ctx, Shot{Title: "hello", Code: "console.log('hello world')"})

	hits, err := h.Search(ctx, "fibonacci", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != s.ID {
		t.Fatalf("unexpected hits %+v", hits)
	}
	if !strings.Contains(hits[0].Snippet, "[fibonacci]") {
		t.Fatalf("snippet = %q", hits[0].Snippet)
	}

	all, err := h.Search(ctx, "", 10)
	if err != nil || len(all) != 2 {
		t.Fatalf("empty query should list all: %v %d", err, len(all))
	}

	if err := h.Delete(ctx, s.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	hits, _ = h.Search(ctx, "fibonacci", 10)
	if len(hits) != 0 {
		t.Fatalf("deleted shot still searchable: %+v", hits)
	}
	if err := h.Delete(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestHistory_Thumbnail(t *testing.T) {
	h, _ := openTestHistory(t)
	ctx := context.Background()
	s, _ := h.Record(ctx, Shot{Title: "t"})
	if _, err := h.Thumbnail(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := h.PutThumbnail(ctx, s.ID, 2, 1, []byte{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	b, err := h.Thumbnail(ctx, s.ID)
	if err != nil || len(b) != 3 {
		t.Fatalf("thumbnail = %v, %v", b, err)
	}
}

func TestDetectAndRebuildHistory_OnCorruption(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	h, err := OpenHistory(dir)
	if err != nil {
		t.Fatal(err)
	}
	keep, _ := h.Record(ctx, Shot{Title: "keep me", Code: "x := 1"})
	gone, _ := h.Record(ctx, Shot{Title: "drop me"})
	if err := h.Delete(ctx, gone.ID); err != nil {
		t.Fatal(err)
	}
	_ = h.Close()
	for _, p := range []string{HistoryPath(dir) + "-wal", HistoryPath(dir) + "-shm"} {
		_ = os.Remove(p)
	}

	if err := os.WriteFile(HistoryPath(dir), []byte("THIS IS NOT SQLITE"), 0o644); err != nil {
		t.Fatalf("write corrupt: %v", err)
	}
	h2, rebuilt, err := DetectAndRebuildHistory(ctx, dir)
	if err != nil {
		t.Fatalf("DetectAndRebuildHistory: %v", err)
	}
	defer h2.Close()
	if !rebuilt {
		t.Fatalf("expected rebuild to occur")
	}
	list, err := h2.List(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != keep.ID {
		t.Fatalf("journal replay mismatch: %+v", list)
	}
	entries, _ := os.ReadDir(filepath.Join(dir, HistoryDirName, BackupsDirName))
	if len(entries) == 0 {
		t.Fatalf("expected a backup of the damaged index")
	}
}

func TestDetectAndRebuildHistory_HealthyIsNoop(t *testing.T) {
	dir := t.TempDir()
	h, rebuilt, err := DetectAndRebuildHistory(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	if rebuilt {
		t.Fatalf("fresh index should not be rebuilt")
	}
}
