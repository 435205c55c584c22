/**
* Name: 			user_handler.go
* Description: 		회원가입, 로그인, 로그아웃, 세션 조회, 비밀번호 재설정
* Workflow: 		요청 바인딩 -> auth.Service 호출 -> JSON 응답 (에러는 apperror 미들웨어가 렌더링)
 */
package handler

import (
	"net/http"

	"ResumeSense/internal/apperror"
	"ResumeSense/internal/middleware"

	"github.com/gin-gonic/gin"
)

// /auth/signup 요청 바디
type SignupRequest struct {
	Email    string `json:"email" example:"jane@example.com"`
	Password string `json:"password" example:"password123"`
	Username string `json:"username,omitempty" example:"jane"`
}

// /auth/login 요청 바디
type LoginRequest struct {
	Email    string `json:"email" example:"jane@example.com"`
	Password string `json:"password" example:"password123"`
}

type ResetPasswordRequest struct {
	Email string `json:"email" example:"jane@example.com"`
}

type ConfirmResetRequest struct {
	Token    string `json:"token" example:"5f2b..."`
	Password string `json:"password" example:"new-password"`
}

// Signup godoc
// @Summary      회원가입 (Signup)
// @Description  새로운 사용자 계정을 생성하고 바로 로그인 세션을 발급합니다. username을 비우면 이메일 @ 앞부분을 사용합니다.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        X-Invite-Code header string false "초대 코드 (서버에 설정된 경우 필수)"
// @Param        request body handler.SignupRequest true "회원가입 요청 정보"
// @Success      201 {object} handler.SessionResponse
// @Failure      400 {object} handler.ErrorResponse "잘못된 이메일 또는 비밀번호"
// @Failure      403 {object} handler.ErrorResponse "초대 코드 불일치"
// @Failure      409 {object} handler.ErrorResponse "이미 가입된 이메일"
// @Router       /auth/signup [post]
func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperror.Validation("Invalid request"))
		return
	}

	sess, err := h.Auth.SignUp(c.Request.Context(), req.Email, req.Password, req.Username)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, SessionResponse{Token: sess.Token, ExpiresAt: sess.ExpiresAt, User: sess.User})
}

// Login godoc
// @Summary      로그인 (Login)
// @Description  이메일과 비밀번호로 로그인하고 JWT 토큰을 발급받습니다.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body handler.LoginRequest true "로그인 요청 정보"
// @Success      200 {object} handler.SessionResponse
// @Failure      400 {object} handler.ErrorResponse "잘못된 요청"
// @Failure      401 {object} handler.ErrorResponse "인증 실패 (자격 증명 오류)"
// @Router       /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperror.Validation("Invalid request"))
		return
	}

	sess, err := h.Auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, SessionResponse{Token: sess.Token, ExpiresAt: sess.ExpiresAt, User: sess.User})
}

// ResetPassword godoc
// @Summary      비밀번호 재설정 요청
// @Description  재설정 토큰을 메일로 보냅니다. 가입 여부와 관계없이 항상 같은 응답을 반환합니다.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body handler.ResetPasswordRequest true "이메일"
// @Success      202 {object} handler.SuccessResponse
// @Failure      400 {object} handler.ErrorResponse
// @Router       /auth/password/reset [post]
func (h *Handler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperror.Validation("Invalid request"))
		return
	}
	if err := h.Auth.ResetPassword(c.Request.Context(), req.Email); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusAccepted, SuccessResponse{Message: "If the email is registered, a reset link has been sent"})
}

// ConfirmPasswordReset godoc
// @Summary      비밀번호 재설정 확정
// @Description  메일로 받은 토큰과 새 비밀번호로 비밀번호를 변경합니다.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body handler.ConfirmResetRequest true "토큰과 새 비밀번호"
// @Success      200 {object} handler.SuccessResponse
// @Failure      400 {object} handler.ErrorResponse "만료되었거나 잘못된 토큰"
// @Router       /auth/password/reset/confirm [post]
func (h *Handler) ConfirmPasswordReset(c *gin.Context) {
	var req ConfirmResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperror.Validation("Invalid request"))
		return
	}
	if err := h.Auth.ConfirmPasswordReset(c.Request.Context(), req.Token, req.Password); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Password updated"})
}

// Session godoc
// @Summary      현재 세션 조회
// @Description  토큰에 해당하는 사용자 정보를 반환합니다. (JWT 필요)
// @Tags         API (Protected)
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} handler.UserResponse
// @Failure      401 {object} handler.ErrorResponse "인증 토큰 누락, 만료 또는 로그아웃됨"
// @Router       /api/auth/session [get]
func (h *Handler) Session(c *gin.Context) {
	user, err := h.Auth.Session(c.Request.Context(), middleware.ClaimsFrom(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, UserResponse{User: user})
}

// Logout godoc
// @Summary      로그아웃
// @Description  현재 토큰을 만료 시각까지 폐기합니다.
// @Tags         API (Protected)
// @Produce      json
// @Security     BearerAuth
// @Success      204
// @Failure      401 {object} handler.ErrorResponse
// @Router       /api/auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	if err := h.Auth.SignOut(c.Request.Context(), middleware.ClaimsFrom(c)); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
