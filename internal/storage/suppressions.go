package storage

import (
	"context"
	"database/sql"

	"github.com/codewithboateng/codesafe/internal/model"
)

func (db *DB) CreateSuppression(ctx context.Context, s model.Suppression) (int64, error) {
	now := db.now().UTC().Format(tsLayout)
	res, err := db.conn.ExecContext(ctx, `
INSERT INTO suppressions(rule, file_name, pattern_sub, reason, expires_at, created_by, created_at)
VALUES(?,?,?,?,?,?,?)`,
		s.Rule, nz(s.FileName), nz(s.PatternSub), s.Reason, s.ExpiresAt.UTC().Format(tsLayout), s.CreatedBy, now)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// RevokeSuppression marks a suppression revoked. The revoker goes to audit.
func (db *DB) RevokeSuppression(ctx context.Context, id int64) error {
	return execOne(ctx, db.conn, `UPDATE suppressions SET revoked_at=? WHERE id=? AND revoked_at IS NULL`,
		db.now().UTC().Format(tsLayout), id)
}

// ListSuppressions returns suppressions, newest first. activeOnly drops
// revoked and expired entries.
func (db *DB) ListSuppressions(ctx context.Context, activeOnly bool) ([]model.Suppression, error) {
	q := `
SELECT id, rule, COALESCE(file_name,''), COALESCE(pattern_sub,''),
       reason, expires_at, created_by, created_at, revoked_at
FROM suppressions`
	args := []any{}
	if activeOnly {
		q += ` WHERE (revoked_at IS NULL) AND (expires_at > ?)`
		args = append(args, db.now().UTC().Format(tsLayout))
	}
	q += ` ORDER BY id DESC`
	rows, err := db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Suppression{}
	for rows.Next() {
		var (
			s           model.Suppression
			exp, ca, ra sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.Rule, &s.FileName, &s.PatternSub, &s.Reason, &exp, &s.CreatedBy, &ca, &ra); err != nil {
			return nil, err
		}
		if exp.Valid {
			s.ExpiresAt = parseTime(exp.String)
		}
		if ca.Valid {
			s.CreatedAt = parseTime(ca.String)
		}
		if ra.Valid {
			t := parseTime(ra.String)
			s.RevokedAt = &t
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func nz(s string) any {
	if s == "" {
		return nil
	}
	return s
}
