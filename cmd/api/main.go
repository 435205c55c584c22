package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

//go:generate swag init -d ../.. -g cmd/api/main.go -o ../../docs --outputTypes go

// @title           ResumeSense API
// @version         1.0
// @description     이력서 업로드, PDF 미리보기 변환, AI 피드백 분석 서버
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
// @description     "Bearer " 뒤에 JWT 토큰을 입력하세요.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
