/**
 * Name: auth service
 * Description: 회원가입, 로그인, 로그아웃, 비밀번호 재설정, 세션 조회
 * Workflow:
 *   1. SignUp/SignIn -> bcrypt 검증 후 JWT 발급
 *   2. SignOut -> jti를 만료 시각까지 revoked_tokens에 기록
 *   3. ResetPassword -> 재설정 토큰 해시 저장, 원본 토큰은 Mailer로 전달
 */
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"ResumeSense/internal/apperror"
	"ResumeSense/internal/models"
	"ResumeSense/internal/storage"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// Store is the persistence the auth service needs.
type Store interface {
	CreateUser(ctx context.Context, email, username, passwordHash string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetUserByID(ctx context.Context, id string) (models.User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
	CreatePasswordReset(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error
	ConsumePasswordReset(ctx context.Context, tokenHash string) (string, error)
}

// Session is an issued login.
type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      models.User `json:"user"`
}

type Service struct {
	store    Store
	tokens   *TokenManager
	mailer   Mailer
	resetTTL time.Duration
	cost     int
	logger   *slog.Logger
}

func NewService(store Store, tokens *TokenManager, mailer Mailer, resetTTL time.Duration, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		tokens:   tokens,
		mailer:   mailer,
		resetTTL: resetTTL,
		cost:     bcrypt.DefaultCost,
		logger:   logger,
	}
}

// SignUp creates the account and logs it in. An empty username defaults to
// the local part of the email.
func (s *Service) SignUp(ctx context.Context, email, password, username string) (*Session, error) {
	email = normalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}
	username = strings.TrimSpace(username)
	if username == "" {
		username = strings.SplitN(email, "@", 2)[0]
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, apperror.Internal("Failed to hash password", err)
	}

	user, err := s.store.CreateUser(ctx, email, username, string(hash))
	if err != nil {
		if errors.Is(err, storage.ErrEmailExists) {
			return nil, apperror.Conflict("Email already registered")
		}
		return nil, apperror.Internal("Failed to create user", err)
	}

	s.logger.Info("user signed up", "user_id", user.ID)
	return s.issue(user)
}

// SignIn checks the password. Unknown email and wrong password get the same
// answer.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperror.Unauthorized("Invalid credentials")
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperror.Unauthorized("Invalid credentials")
		}
		return nil, apperror.Internal("Database error", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperror.Unauthorized("Invalid credentials")
	}

	return s.issue(user)
}

// Authenticate validates a bearer token and rejects signed-out tokens.
func (s *Service) Authenticate(ctx context.Context, token string) (*Claims, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return nil, apperror.Unauthorized("Token has expired")
		}
		return nil, apperror.Unauthorized("Invalid token")
	}

	revoked, err := s.store.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return nil, apperror.Internal("Failed to check token", err)
	}
	if revoked {
		return nil, apperror.Unauthorized("Token has been revoked")
	}
	return claims, nil
}

// SignOut revokes the token until it would have expired anyway.
func (s *Service) SignOut(ctx context.Context, claims *Claims) error {
	expires := time.Now()
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}
	if err := s.store.RevokeToken(ctx, claims.ID, expires); err != nil {
		return apperror.Internal("Failed to sign out", err)
	}
	return nil
}

// Session returns the user behind a validated token.
func (s *Service) Session(ctx context.Context, claims *Claims) (models.User, error) {
	user, err := s.store.GetUserByID(ctx, claims.UID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, apperror.Unauthorized("User no longer exists")
		}
		return models.User{}, apperror.Internal("Failed to load user", err)
	}
	return user, nil
}

// ResetPassword always succeeds for the caller so that registered emails
// cannot be probed.
func (s *Service) ResetPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if !validEmail(email) {
		return apperror.Validation("A valid email is required")
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Debug("password reset requested for unknown email")
			return nil
		}
		return apperror.Internal("Failed to reset password", err)
	}

	token, err := randomToken()
	if err != nil {
		return apperror.Internal("Failed to reset password", err)
	}
	expires := time.Now().Add(s.resetTTL)
	if err := s.store.CreatePasswordReset(ctx, hashToken(token), user.ID, expires); err != nil {
		return apperror.Internal("Failed to reset password", err)
	}
	if err := s.mailer.SendPasswordReset(ctx, user.Email, token, expires); err != nil {
		return apperror.External("Failed to send reset email", err)
	}
	return nil
}

// ConfirmPasswordReset consumes a reset token and sets the new password.
func (s *Service) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return apperror.Validation(fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}

	userID, err := s.store.ConsumePasswordReset(ctx, hashToken(token))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperror.Validation("Invalid or expired reset token")
		}
		return apperror.Internal("Failed to reset password", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return apperror.Internal("Failed to hash password", err)
	}
	if err := s.store.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return apperror.Internal("Failed to update password", err)
	}
	s.logger.Info("password reset", "user_id", userID)
	return nil
}

func (s *Service) issue(user models.User) (*Session, error) {
	token, claims, err := s.tokens.Generate(user)
	if err != nil {
		return nil, apperror.Internal("Failed to generate token", err)
	}
	return &Session{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: user}, nil
}

func validateCredentials(email, password string) error {
	if !validEmail(email) {
		return apperror.Validation("A valid email is required")
	}
	if len(password) < minPasswordLength {
		return apperror.Validation(fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	if !strings.Contains(email, "@") {
		return false
	}
	_, err := mail.ParseAddress(email)
	return err == nil
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
