/**
* Name: 			serve.go
* Description: 		API 서버 실행 (의존성 조립 + graceful shutdown)
* Workflow: 		설정 로드 -> DB/버킷/LLM/이벤트 준비 -> 라우터 -> 종료 신호 대기
 */
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	_ "ResumeSense/docs"
	"ResumeSense/internal/auth"
	"ResumeSense/internal/config"
	"ResumeSense/internal/events"
	"ResumeSense/internal/handler"
	"ResumeSense/internal/llm"
	"ResumeSense/internal/logging"
	"ResumeSense/internal/objectstore"
	"ResumeSense/internal/review"
	"ResumeSense/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const purgeInterval = time.Hour

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Start the API server; blocks until SIGINT/SIGTERM.",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := logging.Logger
	gin.SetMode(gin.ReleaseMode)

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return err
	}
	defer db.Close()

	secret := []byte(cfg.Auth.JWTSecret)
	bucket, err := objectstore.New(ctx, cfg.Storage, cfg.PublicBaseURL, secret)
	if err != nil {
		logger.Error("failed to set up file storage", "backend", cfg.Storage.Backend, "error", err)
		return err
	}
	logger.Info("file storage ready", "backend", cfg.Storage.Backend, "bucket", cfg.Storage.Bucket)

	provider := setupProvider(ctx, cfg, logger)
	analyzer := llm.NewAnalyzer(provider, logger, cfg.AI.Timeout)

	hub := events.NewHub(logger)
	defer hub.Close()
	publishers := []events.Publisher{hub}
	if cfg.RabbitMQ.URL != "" {
		amqpPub, err := events.NewAMQPPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			// 브로커가 없어도 서버는 뜬다
			logger.Warn("rabbitmq unavailable, status updates stay in-process", "error", err)
		} else {
			defer amqpPub.Close()
			publishers = append(publishers, amqpPub)
			logger.Info("publishing status updates to rabbitmq", "exchange", cfg.RabbitMQ.Exchange)
		}
	}
	publisher := events.NewFanout(logger, publishers...)

	tokens := auth.NewTokenManager(secret, cfg.Auth.TokenTTL)
	authSvc := auth.NewService(db, tokens, auth.LogMailer{Logger: logger}, cfg.Auth.ResetTokenTTL, logger)

	reviewSvc := review.NewService(db, bucket, analyzer, publisher, review.Options{
		MaxUploadBytes: cfg.MaxUploadBytes,
		PreviewDPI:     cfg.Preview.DPI,
		SignedURLTTL:   cfg.Storage.SignedURLTTL,
	}, logger)

	h := &handler.Handler{
		Auth:           authSvc,
		Resumes:        reviewSvc,
		Hub:            hub,
		DB:             db,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Logger:         logger,
	}
	// 로컬 버킷만 /files 서명 링크를 직접 처리
	if local, ok := bucket.(*objectstore.LocalBucket); ok {
		h.Files = local
	}

	router := handler.SetupRouter(h, authSvc, handler.RouterOptions{
		CORSOrigins: cfg.CORSOrigins,
		InviteCode:  cfg.Auth.SignupInviteCode,
		UploadRate:  cfg.AnalyzeRate,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go purgeExpired(ctx, db, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.HTTPAddr, "provider", provider.Name())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		return err
	}
	logger.Info("server stopped")
	return nil
}

// setupProvider returns the Gemini reviewer, or the nop provider when no API
// key is configured. The nop provider makes every analysis fall back.
func setupProvider(ctx context.Context, cfg *config.Config, logger *slog.Logger) llm.Provider {
	if cfg.AI.APIKey == "" {
		logger.Warn("GOOGLE_API_KEY is not set, analyses will use the fallback feedback")
		return llm.NopProvider{}
	}
	p, err := llm.NewGeminiProvider(ctx, cfg.AI.APIKey, cfg.AI.Model)
	if err != nil {
		logging.WithError(logger, err).Error("failed to create gemini provider, using fallback feedback")
		return llm.NopProvider{}
	}
	return p
}

// purgeExpired drops revoked tokens and reset tokens past their expiry.
func purgeExpired(ctx context.Context, db *storage.DB, logger *slog.Logger) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := db.PurgeExpired(ctx)
			if err != nil {
				logging.WithError(logger, err).Warn("failed to purge expired tokens")
				continue
			}
			if n > 0 {
				logger.Debug("purged expired tokens", "count", n)
			}
		}
	}
}
