package models

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alexander-bruun/placeholders/utils"
	"github.com/gofiber/fiber/v2/log"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

var db *sql.DB

const schema = `
CREATE TABLE IF NOT EXISTS assets (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT    NOT NULL,
	hash       TEXT    NOT NULL UNIQUE,
	path       TEXT    NOT NULL,
	mime_type  TEXT    NOT NULL,
	format     TEXT    NOT NULL,
	width      INTEGER NOT NULL,
	height     INTEGER NOT NULL,
	size       INTEGER NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS variants (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	asset_id   INTEGER NOT NULL REFERENCES assets(id) ON DELETE CASCADE,
	name       TEXT    NOT NULL,
	path       TEXT    NOT NULL,
	format     TEXT    NOT NULL,
	quality    INTEGER NOT NULL,
	width      INTEGER NOT NULL,
	height     INTEGER NOT NULL,
	size       INTEGER NOT NULL,
	created_at INTEGER NOT NULL,
	UNIQUE (asset_id, name)
);

CREATE INDEX IF NOT EXISTS idx_variants_asset_id ON variants(asset_id);
`

// Initialize opens the SQLite registry in dataDirectory and applies the schema
func Initialize(dataDirectory string) error {
	start := time.Now()
	defer utils.LogDuration("Initialize", start)

	if err := os.MkdirAll(dataDirectory, 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	databasePath := filepath.Join(dataDirectory, "placeholders.db")
	log.Debugf("Using '%s' as the database location", databasePath)

	conn, err := sql.Open("sqlite3", "file:"+databasePath+
		"?_pragma=busy_timeout(5000)&_pragma=journal_mode(wal)&_pragma=foreign_keys(1)")
	if err != nil {
		return err
	}

	if err := migrate(conn); err != nil {
		conn.Close()
		return err
	}

	db = conn
	return nil
}

func migrate(conn *sql.DB) error {
	if _, err := conn.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func Close() error {
	if db != nil {
		err := db.Close()
		db = nil
		return err
	}
	return nil
}

// PingDB checks database connectivity
func PingDB() error {
	if db == nil {
		return errors.New("database not initialized")
	}
	return db.Ping()
}

func unixTime(ts int64) time.Time {
	return time.Unix(ts, 0).UTC()
}
