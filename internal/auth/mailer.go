package auth

import (
	"context"
	"log/slog"
	"time"
)

// Mailer delivers password reset tokens.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, token string, expiresAt time.Time) error
}

// LogMailer writes reset tokens to the log. For development setups without
// an outgoing mail server.
type LogMailer struct {
	Logger *slog.Logger
}

func (m LogMailer) SendPasswordReset(ctx context.Context, email, token string, expiresAt time.Time) error {
	m.Logger.Info("password reset token issued",
		"email", email,
		"token", token,
		"expires_at", expiresAt.Format(time.RFC3339))
	return nil
}
