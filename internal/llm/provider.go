/**
 * Name: llm
 * Description: 이력서 분석용 언어 모델 호출 계층
 * Workflow:
 *   1. Provider.Complete(prompt) 로 모델 응답 텍스트 획득
 *   2. Analyzer가 코드펜스 제거 -> JSON 스키마 검증 -> Feedback 디코딩
 *   3. 어느 단계든 실패하면 고정 FallbackFeedback 반환
 */
package llm

import (
	"context"
	"errors"
)

var (
	ErrNotConfigured = errors.New("ai provider not configured")
	ErrEmptyResponse = errors.New("empty model response")
)

// Provider sends one prompt to a hosted model and returns its text answer.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Name() string
}

// NopProvider is used when no API key is configured. Every call fails with
// ErrNotConfigured so the analyzer serves the fallback feedback.
type NopProvider struct{}

func (NopProvider) Complete(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}

func (NopProvider) Name() string { return "nop" }
