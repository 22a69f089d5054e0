package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	RoleViewer = "viewer"
	RoleAdmin  = "admin"
)

func (db *DB) CreateUser(ctx context.Context, username, passHash, role string) (int64, error) {
	if role == "" {
		role = RoleViewer
	}
	now := db.now().UTC().Format(tsLayout)
	res, err := db.conn.ExecContext(ctx, `INSERT INTO users(username, pass_hash, role, created_at) VALUES(?,?,?,?)`,
		username, passHash, role, now)
	if err != nil {
		return 0, fmt.Errorf("create user %s: %w", username, err)
	}
	return res.LastInsertId()
}

// GetUserByUsername returns the user and its password hash.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (User, string, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT id, username, role, created_at, pass_hash FROM users WHERE username=?`, username)
	var u User
	var ph, created string
	if err := row.Scan(&u.ID, &u.Username, &u.Role, &created, &ph); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, "", fmt.Errorf("user %s: %w", username, ErrNotFound)
		}
		return User{}, "", err
	}
	u.CreatedAt = parseTime(created)
	return u, ph, nil
}

func (db *DB) CreateSession(ctx context.Context, userID int64, token string, expires time.Time) error {
	now := db.now().UTC().Format(tsLayout)
	return execOne(ctx, db.conn, `INSERT INTO sessions(token, user_id, expires_at, created_at) VALUES(?,?,?,?)`,
		token, userID, expires.UTC().Format(tsLayout), now)
}

// GetSession resolves an unexpired session token to its user.
func (db *DB) GetSession(ctx context.Context, token string) (User, error) {
	row := db.conn.QueryRowContext(ctx, `
SELECT u.id, u.username, u.role, u.created_at
FROM sessions s JOIN users u ON s.user_id=u.id
WHERE s.token=? AND s.expires_at > ?`, token, db.now().UTC().Format(tsLayout))
	var u User
	var created string
	if err := row.Scan(&u.ID, &u.Username, &u.Role, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, fmt.Errorf("session: %w", ErrNotFound)
		}
		return User{}, err
	}
	u.CreatedAt = parseTime(created)
	return u, nil
}

func (db *DB) DeleteSession(ctx context.Context, token string) error {
	return execOne(ctx, db.conn, `DELETE FROM sessions WHERE token=?`, token)
}

func (db *DB) LogAudit(ctx context.Context, username, action, resource string, meta map[string]any) error {
	b, _ := json.Marshal(meta)
	_, err := db.conn.ExecContext(ctx, `INSERT INTO audit(ts, username, action, resource, meta_json) VALUES(?,?,?,?,?)`,
		db.now().UTC().Format(tsLayout), username, action, resource, string(b))
	return err
}

// CountAudit returns how many audit rows exist for action.
func (db *DB) CountAudit(ctx context.Context, action string) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(1) FROM audit WHERE action = ?`, action).Scan(&n)
	return n, err
}

func execOne(ctx context.Context, db *sql.DB, q string, args ...any) error {
	res, err := db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
