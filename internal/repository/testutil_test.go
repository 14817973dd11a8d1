package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// testSchema mirrors the production tables closely enough for the repository
// queries to run unchanged against SQLite.
const testSchema = `
CREATE TABLE users (
	user_id    INTEGER PRIMARY KEY AUTOINCREMENT,
	username   TEXT NOT NULL UNIQUE,
	password   TEXT NOT NULL,
	is_admin   BOOLEAN NOT NULL DEFAULT 0,
	stations   INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE stations (
	station_id     INTEGER PRIMARY KEY AUTOINCREMENT,
	api_access_key TEXT NOT NULL UNIQUE,
	station_name   TEXT NOT NULL,
	unique_code    TEXT NOT NULL,
	location       TEXT NOT NULL,
	owner          TEXT NOT NULL,
	is_public      BOOLEAN NOT NULL DEFAULT 0,
	created_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	last_updated   TIMESTAMP,
	temperature    REAL NOT NULL DEFAULT 0,
	pressure       REAL NOT NULL DEFAULT 0,
	humidity       REAL NOT NULL DEFAULT 0,
	wind_speed     REAL NOT NULL DEFAULT 0,
	wind_direction TEXT NOT NULL DEFAULT '',
	uv_index       REAL NOT NULL DEFAULT 0,
	is_raining     BOOLEAN NOT NULL DEFAULT 0,
	UNIQUE (station_name, unique_code)
);

CREATE TABLE data (
	data_id        INTEGER PRIMARY KEY AUTOINCREMENT,
	station_id     INTEGER NOT NULL,
	location       TEXT NOT NULL,
	temperature    REAL NOT NULL,
	pressure       REAL NOT NULL,
	humidity       REAL NOT NULL,
	wind_speed     REAL NOT NULL,
	wind_direction TEXT NOT NULL,
	uv_index       REAL NOT NULL,
	is_raining     BOOLEAN NOT NULL,
	created_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// setupTestDB opens an in-memory SQLite database with the schema applied.
// The pool is pinned to one connection so every query sees the same
// in-memory database.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(testSchema); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// setupFileDB opens two connections to one file-backed SQLite database: a
// writer for the repository under test and an independent reader.  A read
// transaction held open on the reader blocks the writer's COMMIT, which is
// how the commit-failure tests force the rollback-journal lock conflict.
// The busy timeout is cut short so a blocked COMMIT fails fast.
func setupFileDB(t *testing.T) (writer, reader *sql.DB) {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "repo.db") + "?_busy_timeout=50"

	writer, err := sql.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("open writer: %v", err)
	}
	writer.SetMaxOpenConns(1)
	if _, err := writer.Exec(testSchema); err != nil {
		t.Fatalf("apply schema: %v", err)
	}

	reader, err = sql.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("open reader: %v", err)
	}
	reader.SetMaxOpenConns(1)

	t.Cleanup(func() {
		reader.Close()
		writer.Close()
	})
	return writer, reader
}

// holdReadLock starts a transaction on db and runs one SELECT so the
// connection keeps a shared lock until release is called.
func holdReadLock(t *testing.T, db *sql.DB, table string) (release func()) {
	t.Helper()
	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin read tx: %v", err)
	}
	var n int
	if err := tx.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("acquire read lock: %v", err)
	}
	return func() { _ = tx.Rollback() }
}

// seedUser inserts a user row directly and returns its id.
func seedUser(t *testing.T, db *sql.DB, username string, admin bool) uint64 {
	t.Helper()
	res, err := db.ExecContext(context.Background(),
		"INSERT INTO users (username, password, is_admin) VALUES (?, ?, ?)",
		username, "x", admin)
	if err != nil {
		t.Fatalf("seed user %q: %v", username, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("seed user %q: %v", username, err)
	}
	return uint64(id)
}
