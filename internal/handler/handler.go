/**
* Name: 			handler.go
* Description: 		Gin HTTP 핸들러 공통 의존성 및 응답 타입
* Workflow: 		서비스 인터페이스 주입 -> 라우트별 핸들러에서 사용
 */
package handler

import (
	"context"
	"io"
	"log/slog"
	"time"

	"ResumeSense/internal/auth"
	"ResumeSense/internal/events"
	"ResumeSense/internal/middleware"
	"ResumeSense/internal/models"
	"ResumeSense/internal/review"

	"github.com/gin-gonic/gin"
)

type AuthService interface {
	SignUp(ctx context.Context, email, password, username string) (*auth.Session, error)
	SignIn(ctx context.Context, email, password string) (*auth.Session, error)
	SignOut(ctx context.Context, claims *auth.Claims) error
	Session(ctx context.Context, claims *auth.Claims) (models.User, error)
	ResetPassword(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
}

type ResumeService interface {
	Upload(ctx context.Context, req review.UploadRequest) (*review.UploadResult, error)
	List(ctx context.Context, userID string) ([]models.Resume, error)
	Get(ctx context.Context, userID, resumeID string) (models.Resume, error)
	Delete(ctx context.Context, userID, resumeID string) error
	CreateFeedback(ctx context.Context, userID, resumeID string, f models.Feedback) error
	DeleteFeedback(ctx context.Context, userID, resumeID string) error
	FileURL(ctx context.Context, userID, objectPath string) (string, error)
	OpenFile(ctx context.Context, userID, objectPath string) (io.ReadCloser, string, error)
}

// SignedFiles serves links produced by the local bucket. Nil for remote
// buckets, which sign their own URLs.
type SignedFiles interface {
	Verify(objectPath, expires, signature string) error
	Download(ctx context.Context, objectPath string) (io.ReadCloser, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	Auth           AuthService
	Resumes        ResumeService
	Files          SignedFiles
	Hub            *events.Hub
	DB             Pinger
	MaxUploadBytes int64
	Logger         *slog.Logger
}

type SuccessResponse struct {
	Message string `json:"message" example:"Password updated"`
}

type ErrorResponse struct {
	Error string `json:"error" example:"에러 원인 및 설명"`
}

type SessionResponse struct {
	Token     string      `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresAt time.Time   `json:"expires_at"`
	User      models.User `json:"user"`
}

type UserResponse struct {
	User models.User `json:"user"`
}

type ResumeListResponse struct {
	Resumes []models.Resume `json:"resumes"`
}

type ResumeResponse struct {
	Resume models.Resume `json:"resume"`
}

type FileURLResponse struct {
	URL string `json:"url" example:"http://localhost:8080/files/uid/1700000000000-image-k3j9x2.png?expires=1700003600&signature=..."`
}

func userID(c *gin.Context) string {
	return c.GetString(middleware.ContextUserID)
}
