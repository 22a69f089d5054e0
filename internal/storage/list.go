package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/codewithboateng/codesafe/internal/model"
)

// ScanRow is a lightweight listing row for history views.
type ScanRow struct {
	ID        string    `json:"id"`
	FileName  string    `json:"file_name"`
	Language  string    `json:"language,omitempty"`
	StartedAt time.Time `json:"started_at"`
	Findings  int       `json:"findings"`
}

// List returns history entries, newest first.
func (db *DB) List(ctx context.Context, limit, offset int) ([]ScanRow, error) {
	const q = `
		SELECT s.id, s.file_name, COALESCE(s.language,''), s.started_at,
		       (SELECT COUNT(1) FROM findings f WHERE f.scan_id = s.id) AS findings
		  FROM scans s
		 ORDER BY s.started_at DESC, s.rowid DESC
		 LIMIT ? OFFSET ?`
	return db.queryRows(ctx, q, limit, offset)
}

// ListByFile returns history entries for one file name, newest first.
func (db *DB) ListByFile(ctx context.Context, fileName string, limit int) ([]ScanRow, error) {
	const q = `
		SELECT s.id, s.file_name, COALESCE(s.language,''), s.started_at,
		       (SELECT COUNT(1) FROM findings f WHERE f.scan_id = s.id) AS findings
		  FROM scans s
		 WHERE s.file_name = ?
		 ORDER BY s.started_at DESC, s.rowid DESC
		 LIMIT ?`
	return db.queryRows(ctx, q, fileName, limit)
}

func (db *DB) queryRows(ctx context.Context, q string, args ...any) ([]ScanRow, error) {
	rows, err := db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ScanRow{}
	for rows.Next() {
		var sr ScanRow
		var startedAtStr string
		if err := rows.Scan(&sr.ID, &sr.FileName, &sr.Language, &startedAtStr, &sr.Findings); err != nil {
			return nil, err
		}
		sr.StartedAt = parseTime(startedAtStr)
		out = append(out, sr)
	}
	return out, rows.Err()
}

// LoadLatest returns the newest scan, optionally restricted to fileName.
func (db *DB) LoadLatest(ctx context.Context, fileName string) (model.Scan, error) {
	var rows []ScanRow
	var err error
	if fileName == "" {
		rows, err = db.List(ctx, 1, 0)
	} else {
		rows, err = db.ListByFile(ctx, fileName, 1)
	}
	if err != nil {
		return model.Scan{}, err
	}
	if len(rows) == 0 {
		return model.Scan{}, fmt.Errorf("latest scan: %w", ErrNotFound)
	}
	return db.LoadScan(ctx, rows[0].ID)
}

// ListFindings returns the findings of a scan whose severity is in enabled,
// in original scan order. An empty set returns no findings.
func (db *DB) ListFindings(ctx context.Context, scanID string, enabled model.SeveritySet) ([]model.Finding, error) {
	out := []model.Finding{}
	var sevs []any
	for _, s := range []model.Severity{model.SeverityHigh, model.SeverityMedium, model.SeverityLow} {
		if enabled[s] {
			sevs = append(sevs, string(s))
		}
	}
	if len(sevs) == 0 {
		return out, nil
	}
	q := `
		SELECT rule, severity, COALESCE(message,''), line, COALESCE(improvement,'')
		  FROM findings
		 WHERE scan_id = ?
		   AND severity IN (` + strings.TrimSuffix(strings.Repeat("?,", len(sevs)), ",") + `)
		 ORDER BY seq`
	rows, err := db.conn.QueryContext(ctx, q, append([]any{scanID}, sevs...)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var f model.Finding
		var sev string
		if err := rows.Scan(&f.Rule, &sev, &f.Message, &f.Line, &f.Improvement); err != nil {
			return nil, err
		}
		f.Severity = model.Severity(sev)
		out = append(out, f)
	}
	return out, rows.Err()
}

func (db *DB) HasScan(ctx context.Context, id string) (bool, error) {
	const q = `SELECT 1 FROM scans WHERE id = ? LIMIT 1`
	var one int
	err := db.conn.QueryRowContext(ctx, q, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// parseTime accepts RFC3339Nano first, then RFC3339; zero time otherwise.
func parseTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}
