package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrEmailExists = errors.New("email already exists")
	ErrConflict    = errors.New("conflict")
)

// 시간은 UTC 고정 폭 문자열로 저장 (문자열 정렬 == 시간 정렬)
const timeLayout = "2006-01-02T15:04:05.000000Z"

// DB wraps the relational store. Queries are written with ? placeholders and
// rebound for postgres.
type DB struct {
	sql    *sql.DB
	driver string
	now    func() time.Time
}

// Open connects to the database named by driver ("sqlite" or "postgres").
func Open(ctx context.Context, driver, url string) (*DB, error) {
	dsn := url
	if driver == "sqlite" {
		dsn = sqliteDSN(url)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to %s database: %w", driver, err)
	}
	if driver == "sqlite" {
		// sqlite는 동시 쓰기 불가
		db.SetMaxOpenConns(1)
	}

	return &DB{sql: db, driver: driver, now: time.Now}, nil
}

// sqliteDSN turns on foreign keys for every pooled connection; feedback rows
// rely on ON DELETE CASCADE.
func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) Ping(ctx context.Context) error {
	return d.sql.PingContext(ctx)
}

var schema = []struct {
	name string
	ddl  string
}{
	{"users", `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		username TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`},
	{"resumes", `
	CREATE TABLE IF NOT EXISTS resumes (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		company_name TEXT,
		job_title TEXT,
		job_description TEXT,
		resume_file_path TEXT NOT NULL,
		image_file_path TEXT NOT NULL,
		overall_score INTEGER,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`},
	{"resumes_user_idx", `CREATE INDEX IF NOT EXISTS resumes_user_created_idx ON resumes (user_id, created_at)`},
	{"feedback", `
	CREATE TABLE IF NOT EXISTS feedback (
		id TEXT PRIMARY KEY,
		resume_id TEXT NOT NULL UNIQUE REFERENCES resumes(id) ON DELETE CASCADE,
		overall_score INTEGER NOT NULL,
		ats_score INTEGER NOT NULL,
		ats_tips TEXT NOT NULL DEFAULT '[]',
		tone_style_score INTEGER NOT NULL,
		tone_style_tips TEXT NOT NULL DEFAULT '[]',
		content_score INTEGER NOT NULL,
		content_tips TEXT NOT NULL DEFAULT '[]',
		structure_score INTEGER NOT NULL,
		structure_tips TEXT NOT NULL DEFAULT '[]',
		skills_score INTEGER NOT NULL,
		skills_tips TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL
	)`},
	{"revoked_tokens", `
	CREATE TABLE IF NOT EXISTS revoked_tokens (
		jti TEXT PRIMARY KEY,
		expires_at TEXT NOT NULL
	)`},
	{"password_resets", `
	CREATE TABLE IF NOT EXISTS password_resets (
		token_hash TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		expires_at TEXT NOT NULL
	)`},
}

// Migrate creates the tables if they do not exist yet.
func (d *DB) Migrate(ctx context.Context) error {
	for _, s := range schema {
		if _, err := d.sql.ExecContext(ctx, s.ddl); err != nil {
			return fmt.Errorf("migrate %s: %w", s.name, err)
		}
	}
	slog.Info("database schema ready", "driver", d.driver)
	return nil
}

// rebind converts ? placeholders to $n for postgres.
func (d *DB) rebind(query string) string {
	if d.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (d *DB) exec(ctx context.Context, q querier, query string, args ...any) (sql.Result, error) {
	return q.ExecContext(ctx, d.rebind(query), args...)
}

func (d *DB) queryRow(ctx context.Context, q querier, query string, args ...any) *sql.Row {
	return q.QueryRowContext(ctx, d.rebind(query), args...)
}

func (d *DB) query(ctx context.Context, q querier, query string, args ...any) (*sql.Rows, error) {
	return q.QueryContext(ctx, d.rebind(query), args...)
}

// withTx runs fn inside a transaction, rolling back on error.
func (d *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (d *DB) timestamp() string {
	return formatTime(d.now())
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		// 다른 도구로 넣은 값일 수 있음
		t, _ = time.Parse(time.RFC3339Nano, s)
	}
	return t
}

// isUniqueViolation reports a UNIQUE constraint failure for either driver.
func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// isForeignKeyViolation reports a missing referenced row for either driver.
func isForeignKeyViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}
	return false
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func intPtr(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	v := int(ni.Int64)
	return &v
}
