/**
* Name: 			routes.go
* Description: 		Gin 라우터 구성 (공개 라우트, 보호 라우트, 미들웨어)
* Workflow: 		공통 미들웨어 등록 -> 공개 라우트 -> /api 그룹에 JWT 미들웨어 적용
 */
package handler

import (
	"ResumeSense/internal/apperror"
	"ResumeSense/internal/metrics"
	"ResumeSense/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterOptions struct {
	CORSOrigins []string
	InviteCode  string
	UploadRate  int // per user per minute
}

// SetupRouter wires every route onto a new gin engine.
func SetupRouter(h *Handler, authn middleware.Authenticator, opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(h.Logger))
	router.Use(metrics.Middleware())

	config := cors.DefaultConfig()
	if len(opts.CORSOrigins) == 0 {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = opts.CORSOrigins
	}
	config.AllowHeaders = append(config.AllowHeaders, "Authorization", "X-Invite-Code")
	router.Use(cors.New(config))
	router.Use(apperror.Middleware(h.Logger))

	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/signup", middleware.InviteCodeMiddleware(opts.InviteCode), h.Signup)
		authRoutes.POST("/login", h.Login)
		authRoutes.POST("/password/reset", h.ResetPassword)
		authRoutes.POST("/password/reset/confirm", h.ConfirmPasswordReset)
	}

	router.GET("/healthz", h.Healthz)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/files/*path", h.ServeSignedFile)
	router.GET("/ws/status", h.HandleStatusConnection)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(authn))
	{
		protected.GET("/auth/session", h.Session)
		protected.POST("/auth/logout", h.Logout)

		protected.POST("/resumes", middleware.PerUserRateLimit(opts.UploadRate), h.UploadResume)
		protected.GET("/resumes", h.ListResumes)
		protected.GET("/resumes/:id", h.GetResume)
		protected.DELETE("/resumes/:id", h.DeleteResume)
		protected.POST("/resumes/:id/feedback", h.CreateFeedback)
		protected.DELETE("/resumes/:id/feedback", h.DeleteFeedback)

		protected.GET("/files/url", h.FileURL)
		protected.GET("/files/download", h.DownloadFile)
	}

	return router
}
