package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/codewithboateng/codesafe/internal/model"
	"github.com/codewithboateng/codesafe/internal/rules"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "codesafe.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.CreateSchema(context.Background()); err != nil {
		t.Fatalf("schema: %v", err)
	}
	return db
}

// clock returns a now func advancing one second per call.
func clock(start time.Time) func() time.Time {
	cur := start
	return func() time.Time {
		cur = cur.Add(time.Second)
		return cur
	}
}

func TestSaveAndLoadScan(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	db.now = clock(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))

	fs := rules.Scan("eval(x)\nconsole.log(1)\n// TODO\n", "js")
	sc, err := db.Save(ctx, "app.js", "js", fs)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := db.LoadScan(ctx, sc.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.FileName != "app.js" || len(got.Findings) != 3 || got.Findings[0].Rule != "no-eval" {
		t.Fatalf("unexpected scan: %+v", got)
	}

	low, err := db.ListFindings(ctx, sc.ID, model.SeveritySet{model.SeverityLow: true})
	if err != nil {
		t.Fatalf("list findings: %v", err)
	}
	if len(low) != 2 || low[0].Rule != "no-console" || low[1].Rule != "no-todo-comments" {
		t.Fatalf("low findings = %+v", low)
	}
	none, err := db.ListFindings(ctx, sc.ID, model.SeveritySet{})
	if err != nil || len(none) != 0 {
		t.Fatalf("empty set must return nothing: %v %v", none, err)
	}

	if _, err := db.LoadScan(ctx, "scan-missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSave_SameFileNameCreatesNewEntries(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	db.now = clock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	first, err := db.Save(ctx, "a.py", "py", rules.Scan("exec(x)", "py"))
	if err != nil {
		t.Fatal(err)
	}
	second, err := db.Save(ctx, "a.py", "py", nil)
	if err != nil {
		t.Fatal(err)
	}
	if first.ID == second.ID {
		t.Fatalf("ids must differ")
	}
	if _, err := db.Save(ctx, "b.java", "java", nil); err != nil {
		t.Fatal(err)
	}

	rows, err := db.List(ctx, 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 3 || rows[0].FileName != "b.java" || rows[2].Findings != 1 {
		t.Fatalf("rows = %+v", rows)
	}

	latest, err := db.LoadLatest(ctx, "a.py")
	if err != nil || latest.ID != second.ID || len(latest.Findings) != 0 {
		t.Fatalf("latest = %+v, %v", latest, err)
	}
	if ok, _ := db.HasScan(ctx, first.ID); !ok {
		t.Fatalf("HasScan should find %s", first.ID)
	}
}

func TestLoadLatest_Empty(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.LoadLatest(context.Background(), ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUsersAndSessions(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	id, err := db.CreateUser(ctx, "alice", "hash", "")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	u, hash, err := db.GetUserByUsername(ctx, "alice")
	if err != nil || u.ID != id || hash != "hash" || u.Role != RoleViewer {
		t.Fatalf("user = %+v %q %v", u, hash, err)
	}
	if _, _, err := db.GetUserByUsername(ctx, "bob"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := db.CreateSession(ctx, id, "tok", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("session: %v", err)
	}
	if err := db.CreateSession(ctx, id, "old", time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("session: %v", err)
	}
	if got, err := db.GetSession(ctx, "tok"); err != nil || got.Username != "alice" {
		t.Fatalf("get session = %+v %v", got, err)
	}
	if _, err := db.GetSession(ctx, "old"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired session must not resolve: %v", err)
	}
	if err := db.DeleteSession(ctx, "tok"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := db.DeleteSession(ctx, "tok"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete should report ErrNotFound: %v", err)
	}

	_ = db.LogAudit(ctx, "alice", "login", "", map[string]any{"ip": "127.0.0.1"})
	if n, err := db.CountAudit(ctx, "login"); err != nil || n != 1 {
		t.Fatalf("audit count = %d %v", n, err)
	}
}

func TestSuppressions(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	active, err := db.CreateSuppression(ctx, model.Suppression{
		Rule: "no-console", FileName: "app.js", Reason: "debug build", CreatedBy: "alice",
		ExpiresAt: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	expired, _ := db.CreateSuppression(ctx, model.Suppression{
		Rule: "no-eval", Reason: "old", CreatedBy: "alice", ExpiresAt: time.Now().Add(-time.Hour),
	})
	revoked, _ := db.CreateSuppression(ctx, model.Suppression{
		Rule: "no-exec", Reason: "x", CreatedBy: "alice", ExpiresAt: time.Now().Add(time.Hour),
	})
	if err := db.RevokeSuppression(ctx, revoked); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if err := db.RevokeSuppression(ctx, revoked); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double revoke should report ErrNotFound: %v", err)
	}

	all, err := db.ListSuppressions(ctx, false)
	if err != nil || len(all) != 3 {
		t.Fatalf("all = %+v %v", all, err)
	}
	if all[0].ID != revoked || all[0].RevokedAt == nil {
		t.Fatalf("revoked entry = %+v", all[0])
	}
	act, err := db.ListSuppressions(ctx, true)
	if err != nil || len(act) != 1 || act[0].ID != active || act[0].FileName != "app.js" {
		t.Fatalf("active = %+v %v (expired id %d)", act, err, expired)
	}
}
