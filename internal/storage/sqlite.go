package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite" // CGO-free SQLite driver

	"github.com/codewithboateng/codesafe/internal/model"
)

var ErrNotFound = errors.New("not found")

// DB is the concrete storage backed by SQLite.
type DB struct {
	conn *sql.DB
	seq  atomic.Uint64
	now  func() time.Time
}

// OpenSQLite opens (and creates if missing) a SQLite DB at path.
func OpenSQLite(path string) (*DB, error) {
	// Pragmas via DSN keep it portable with the modernc driver.
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)"
	c, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	return &DB{conn: c, now: time.Now}, nil
}

func (db *DB) Close() error { return db.conn.Close() }

// CreateSchema ensures tables exist.
func (db *DB) CreateSchema(ctx context.Context) error {
	_, err := db.conn.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS scans (
  id         TEXT PRIMARY KEY,
  file_name  TEXT NOT NULL,
  language   TEXT,
  started_at TEXT,          -- tsLayout
  version    TEXT,
  scan_json  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS findings (
  scan_id     TEXT NOT NULL,
  seq         INTEGER NOT NULL,  -- position in scan output
  rule        TEXT NOT NULL,
  severity    TEXT NOT NULL,
  message     TEXT,
  line        INTEGER NOT NULL,
  improvement TEXT,
  PRIMARY KEY (scan_id, seq),
  FOREIGN KEY(scan_id) REFERENCES scans(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_scans_file ON scans(file_name);
CREATE INDEX IF NOT EXISTS idx_findings_rule ON findings(rule);

CREATE TABLE IF NOT EXISTS users (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  username TEXT UNIQUE NOT NULL,
  pass_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'viewer',
  created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
  token TEXT PRIMARY KEY,
  user_id INTEGER NOT NULL,
  expires_at TEXT NOT NULL,
  created_at TEXT NOT NULL,
  FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS audit (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  ts TEXT NOT NULL,
  username TEXT,
  action TEXT NOT NULL,
  resource TEXT,
  meta_json TEXT
);

CREATE TABLE IF NOT EXISTS suppressions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  rule        TEXT NOT NULL,
  file_name   TEXT,              -- NULL = any file
  pattern_sub TEXT,              -- optional substring of the message
  reason      TEXT NOT NULL,
  expires_at  TEXT NOT NULL,
  created_by  TEXT NOT NULL,
  created_at  TEXT NOT NULL,
  revoked_at  TEXT               -- NULL = active
);
`)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Save records a new history entry for fileName. Saving the same name twice
// produces two entries.
func (db *DB) Save(ctx context.Context, fileName, language string, findings []model.Finding) (model.Scan, error) {
	started := db.now().UTC()
	sc := model.Scan{
		ID:        db.newID(fileName, started),
		FileName:  fileName,
		Language:  language,
		StartedAt: started,
		Version:   model.Version,
		Findings:  findings,
	}
	if sc.Findings == nil {
		sc.Findings = []model.Finding{}
	}
	if err := db.SaveScan(ctx, &sc); err != nil {
		return model.Scan{}, err
	}
	return sc, nil
}

// tsLayout is fixed width so started_at sorts correctly as text.
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

func (db *DB) newID(fileName string, t time.Time) string {
	n := db.seq.Add(1)
	sum := crc32.ChecksumIEEE([]byte(fmt.Sprintf("%s|%d|%d", fileName, t.UnixNano(), n)))
	return fmt.Sprintf("scan-%d-%08x", t.Unix(), sum)
}

// SaveScan upserts a scan JSON and (re)writes its findings.
func (db *DB) SaveScan(ctx context.Context, sc *model.Scan) error {
	b, err := json.Marshal(sc)
	if err != nil {
		return err
	}
	ts := sc.StartedAt.UTC().Format(tsLayout)

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO scans (id, file_name, language, started_at, version, scan_json)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET file_name=excluded.file_name, language=excluded.language,
           started_at=excluded.started_at, version=excluded.version, scan_json=excluded.scan_json`,
		sc.ID, sc.FileName, sc.Language, ts, sc.Version, string(b),
	); err != nil {
		return fmt.Errorf("save scan %s: %w", sc.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM findings WHERE scan_id = ?`, sc.ID); err != nil {
		return err
	}
	if len(sc.Findings) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO findings (scan_id, seq, rule, severity, message, line, improvement)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for i, f := range sc.Findings {
			if _, err := stmt.ExecContext(ctx, sc.ID, i, f.Rule, string(f.Severity), f.Message, f.Line, f.Improvement); err != nil {
				return fmt.Errorf("save finding %d of %s: %w", i, sc.ID, err)
			}
		}
	}

	return tx.Commit()
}

// LoadScan returns the full scan (from stored JSON).
func (db *DB) LoadScan(ctx context.Context, id string) (model.Scan, error) {
	var s string
	row := db.conn.QueryRowContext(ctx, `SELECT scan_json FROM scans WHERE id = ?`, id)
	if err := row.Scan(&s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Scan{}, fmt.Errorf("scan %s: %w", id, ErrNotFound)
		}
		return model.Scan{}, err
	}
	var sc model.Scan
	if err := json.Unmarshal([]byte(s), &sc); err != nil {
		return model.Scan{}, fmt.Errorf("decode scan %s: %w", id, err)
	}
	return sc, nil
}
