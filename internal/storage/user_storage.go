package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ResumeSense/internal/models"

	"github.com/google/uuid"
)

func (d *DB) CreateUser(ctx context.Context, email, username, passwordHash string) (models.User, error) {
	now := d.now()
	user := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    now.UTC(),
	}

	_, err := d.exec(ctx, d.sql,
		`INSERT INTO users (id, email, username, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.Username, user.PasswordHash, formatTime(now), formatTime(now))
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, ErrEmailExists
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (d *DB) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return d.getUser(ctx, `SELECT id, email, username, password_hash, created_at FROM users WHERE email = ?`, email)
}

func (d *DB) GetUserByID(ctx context.Context, id string) (models.User, error) {
	return d.getUser(ctx, `SELECT id, email, username, password_hash, created_at FROM users WHERE id = ?`, id)
}

func (d *DB) getUser(ctx context.Context, query string, arg any) (models.User, error) {
	var user models.User
	var created string
	err := d.queryRow(ctx, d.sql, query, arg).Scan(&user.ID, &user.Email, &user.Username, &user.PasswordHash, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("select user: %w", err)
	}
	user.CreatedAt = parseTime(created)
	return user, nil
}

func (d *DB) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	res, err := d.exec(ctx, d.sql,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash, d.timestamp(), userID)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return expectRow(res)
}

// RevokeToken marks a token id as signed out until it would have expired.
func (d *DB) RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error {
	_, err := d.exec(ctx, d.sql, `INSERT INTO revoked_tokens (jti, expires_at) VALUES (?, ?)`, jti, formatTime(expiresAt))
	if err != nil && !isUniqueViolation(err) {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (d *DB) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	var n int
	err := d.queryRow(ctx, d.sql, `SELECT COUNT(*) FROM revoked_tokens WHERE jti = ?`, jti).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return n > 0, nil
}

// PurgeExpired removes revoked tokens and reset tokens past their expiry.
func (d *DB) PurgeExpired(ctx context.Context) (int64, error) {
	now := d.timestamp()
	var total int64
	for _, q := range []string{
		`DELETE FROM revoked_tokens WHERE expires_at < ?`,
		`DELETE FROM password_resets WHERE expires_at < ?`,
	} {
		res, err := d.exec(ctx, d.sql, q, now)
		if err != nil {
			return total, fmt.Errorf("purge expired: %w", err)
		}
		n, _ := res.RowsAffected()
		total += n
	}
	return total, nil
}

func (d *DB) CreatePasswordReset(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error {
	_, err := d.exec(ctx, d.sql,
		`INSERT INTO password_resets (token_hash, user_id, expires_at) VALUES (?, ?, ?)`,
		tokenHash, userID, formatTime(expiresAt))
	if err != nil {
		return fmt.Errorf("insert password reset: %w", err)
	}
	return nil
}

// ConsumePasswordReset deletes the reset token and returns its user. Unknown
// or expired tokens return ErrNotFound.
func (d *DB) ConsumePasswordReset(ctx context.Context, tokenHash string) (string, error) {
	var userID string
	expired := false
	err := d.withTx(ctx, func(tx *sql.Tx) error {
		var expires string
		err := d.queryRow(ctx, tx, `SELECT user_id, expires_at FROM password_resets WHERE token_hash = ?`, tokenHash).
			Scan(&userID, &expires)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("select password reset: %w", err)
		}
		if _, err := d.exec(ctx, tx, `DELETE FROM password_resets WHERE token_hash = ?`, tokenHash); err != nil {
			return fmt.Errorf("delete password reset: %w", err)
		}
		// 만료된 토큰도 삭제는 커밋
		expired = parseTime(expires).Before(d.now())
		return nil
	})
	if err != nil {
		return "", err
	}
	if expired {
		return "", ErrNotFound
	}
	return userID, nil
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
