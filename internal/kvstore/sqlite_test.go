/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package kvstore

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.sqlite")
	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	s := New(db)
	_ = s.SetStringList("customSourceImages", []string{"/a.png", "/b.png"})
	_ = s.SetArray("recentProjects", []Record{{"projectName": "A", "projectFile": "/a.qep"}})
	_ = s.SetInt("codeFontSize", 16)
	_ = s.SetString("codeFontFile", "fonts/Other.ttf")
	_ = s.SetBool("useLegacyShaders", true)
	_ = s.SetInt("codeFontSize", 17)
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db2, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	s2 := New(db2)
	defer s2.Close()
	if got := s2.StringList("customSourceImages"); len(got) != 2 || got[1] != "/b.png" {
		t.Fatalf("StringList = %v", got)
	}
	if got := s2.Array("recentProjects"); len(got) != 1 || got[0]["projectFile"] != "/a.qep" {
		t.Fatalf("Array = %v", got)
	}
	if s2.Int("codeFontSize", 14) != 17 || s2.String("codeFontFile", "") != "fonts/Other.ttf" || !s2.Bool("useLegacyShaders", false) {
		t.Fatalf("scalar mismatch after reopen")
	}
	if err := s2.Remove("codeFontFile"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if keys := s2.Keys(); len(keys) != 4 {
		t.Fatalf("Keys = %v", keys)
	}
}

// TestSQLiteMigratesV1 ensures a schema=1 database gains the updated_at column.
func TestSQLiteMigratesV1(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.sqlite")
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)", filepath.ToSlash(path))
	raw, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	now := time.Now().UTC().Format(time.RFC3339)
	for _, q := range []string{
		`CREATE TABLE version (id INTEGER PRIMARY KEY CHECK(id=1), schema INTEGER NOT NULL, app TEXT, created_at TEXT NOT NULL, updated_at TEXT NOT NULL);`,
		`CREATE TABLE settings (key TEXT PRIMARY KEY, value TEXT NOT NULL);`,
		`INSERT INTO settings(key, value) VALUES('codeFontSize', '13');`,
	} {
		if _, err := raw.ExecContext(ctx, q); err != nil {
			t.Fatalf("seed v1: %v", err)
		}
	}
	if _, err := raw.ExecContext(ctx, `INSERT INTO version VALUES(1, 1, 'old', ?, ?)`, now, now); err != nil {
		t.Fatalf("seed version: %v", err)
	}
	_ = raw.Close()

	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	s := New(db)
	defer s.Close()
	if got := s.Int("codeFontSize", 14); got != 13 {
		t.Fatalf("v1 value = %d, want 13", got)
	}
	if err := s.SetInt("codeFontSize", 15); err != nil {
		t.Fatalf("write after migration: %v", err)
	}

	var schema int
	if err := db.db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&schema); err != nil {
		t.Fatalf("read schema: %v", err)
	}
	if schema != schemaVersion {
		t.Fatalf("schema = %d, want %d", schema, schemaVersion)
	}
	var updated string
	if err := db.db.QueryRowContext(ctx, `SELECT updated_at FROM settings WHERE key='codeFontSize'`).Scan(&updated); err != nil {
		t.Fatalf("read updated_at: %v", err)
	}
	if updated == "" {
		t.Fatalf("updated_at not written")
	}
}
