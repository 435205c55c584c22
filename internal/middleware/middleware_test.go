package middleware

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"ResumeSense/internal/apperror"
	"ResumeSense/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeAuthenticator struct {
	claims *auth.Claims
	err    error
	got    string
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, token string) (*auth.Claims, error) {
	f.got = token
	return f.claims, f.err
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(apperror.Middleware(discard))
	r.Use(mw...)
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": c.GetString(ContextUserID)})
	})
	return r
}

func do(r http.Handler, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddleware(t *testing.T) {
	authn := &fakeAuthenticator{claims: &auth.Claims{UID: "u1", Username: "alice"}}
	r := newRouter(AuthMiddleware(authn))

	rec := do(r, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Authorization header required"}`, rec.Body.String())

	rec = do(r, map[string]string{"Authorization": "Token abc"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid authorization header format"}`, rec.Body.String())

	rec = do(r, map[string]string{"Authorization": "Bearer abc"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user":"u1"}`, rec.Body.String())
	assert.Equal(t, "abc", authn.got)
}

func TestAuthMiddleware_RejectedToken(t *testing.T) {
	authn := &fakeAuthenticator{err: apperror.Unauthorized("Token has been revoked")}
	r := newRouter(AuthMiddleware(authn))

	rec := do(r, map[string]string{"Authorization": "Bearer abc"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Token has been revoked"}`, rec.Body.String())
}

func TestInviteCodeMiddleware(t *testing.T) {
	open := newRouter(InviteCodeMiddleware(""))
	assert.Equal(t, http.StatusOK, do(open, nil).Code)

	gated := newRouter(InviteCodeMiddleware("letmein"))
	assert.Equal(t, http.StatusForbidden, do(gated, nil).Code)
	assert.Equal(t, http.StatusForbidden, do(gated, map[string]string{"X-Invite-Code": "nope"}).Code)
	assert.Equal(t, http.StatusOK, do(gated, map[string]string{"X-Invite-Code": "letmein"}).Code)
}

func TestPerUserRateLimit(t *testing.T) {
	setUser := func(c *gin.Context) {
		if u := c.GetHeader("X-User"); u != "" {
			c.Set(ContextUserID, u)
		}
		c.Next()
	}
	r := newRouter(setUser, PerUserRateLimit(2))

	alice := map[string]string{"X-User": "alice"}
	assert.Equal(t, http.StatusOK, do(r, alice).Code)
	assert.Equal(t, http.StatusOK, do(r, alice).Code)

	rec := do(r, alice)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "Too many uploads")

	assert.Equal(t, http.StatusOK, do(r, map[string]string{"X-User": "bob"}).Code, "limits are per user")
}

func TestPerUserRateLimit_IndependentInstances(t *testing.T) {
	setUser := func(c *gin.Context) {
		c.Set(ContextUserID, "carol")
		c.Next()
	}
	// 같은 사용자라도 limiter 인스턴스끼리 버킷을 공유하지 않음
	loose := newRouter(setUser, PerUserRateLimit(100))
	strict := newRouter(setUser, PerUserRateLimit(1))

	assert.Equal(t, http.StatusOK, do(loose, nil).Code)
	assert.Equal(t, http.StatusOK, do(strict, nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(strict, nil).Code)
	assert.Equal(t, http.StatusOK, do(loose, nil).Code)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	r := newRouter(RequestLogger(logger))

	do(r, nil)
	assert.Contains(t, buf.String(), "msg=request")
	assert.Contains(t, buf.String(), "status=200")
	assert.Contains(t, buf.String(), "method=GET")
}
