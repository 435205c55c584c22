package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ResumeSense/internal/models"
	"ResumeSense/internal/pdfconv"
)

// Input is one resume to review.
type Input struct {
	FileName       string
	MimeType       string
	Data           []byte
	JobTitle       string
	JobDescription string
}

// Result is the review plus whether the canned feedback was substituted.
type Result struct {
	Feedback models.Feedback
	Fallback bool
	Reason   string
}

type Analyzer struct {
	provider Provider
	logger   *slog.Logger
	timeout  time.Duration
	attempts int
	backoff  time.Duration
}

func NewAnalyzer(provider Provider, logger *slog.Logger, timeout time.Duration) *Analyzer {
	if provider == nil {
		provider = NopProvider{}
	}
	return &Analyzer{
		provider: provider,
		logger:   logger,
		timeout:  timeout,
		attempts: 2,
		backoff:  500 * time.Millisecond,
	}
}

// Analyze never fails: any provider, parse or validation error yields
// FallbackFeedback.
func (a *Analyzer) Analyze(ctx context.Context, in Input) Result {
	text, err := pdfconv.ExtractText(in.MimeType, in.Data)
	if err != nil {
		a.logger.Warn("resume text extraction failed, sending file summary", "file", in.FileName, "error", err)
		text = pdfconv.FileSummary(in.FileName, len(in.Data), in.MimeType)
	}

	prompt := BuildPrompt(PrepareInstructions(in.JobTitle, in.JobDescription), text)

	raw, err := a.complete(ctx, prompt)
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			a.logger.Info("ai provider not configured, using fallback feedback")
		} else {
			a.logger.Error("ai analysis failed, using fallback feedback", "provider", a.provider.Name(), "error", err)
		}
		return fallback(err)
	}

	feedback, err := ParseFeedback(raw)
	if err != nil {
		a.logger.Error("failed to parse ai response, using fallback feedback", "error", err, "response", truncate(raw, 500))
		return fallback(err)
	}
	return Result{Feedback: feedback}
}

func (a *Analyzer) complete(ctx context.Context, prompt string) (string, error) {
	return retry(ctx, a.attempts, a.backoff, func() (string, error) {
		callCtx := ctx
		if a.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, a.timeout)
			defer cancel()
		}
		return a.provider.Complete(callCtx, prompt)
	})
}

// ParseFeedback cleans, schema-validates and decodes a model answer.
func ParseFeedback(raw string) (models.Feedback, error) {
	doc := CleanJson(raw)
	if doc == "" {
		return models.Feedback{}, ErrEmptyResponse
	}
	if err := ValidateFeedbackJSON(doc); err != nil {
		return models.Feedback{}, err
	}

	var f models.Feedback
	if err := json.Unmarshal([]byte(doc), &f); err != nil {
		return models.Feedback{}, fmt.Errorf("decode feedback: %w", err)
	}
	if err := f.Validate(); err != nil {
		return models.Feedback{}, err
	}
	return f, nil
}

// retry runs fn up to attempts times with linear backoff. Errors that cannot
// improve on a second try return immediately.
func retry[T any](ctx context.Context, attempts int, backoff time.Duration, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for i := 0; i < attempts; i++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !isTransient(ctx, err) || i == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(backoff * time.Duration(i+1)):
		}
	}
	return zero, lastErr
}

func isTransient(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	return !errors.Is(err, ErrNotConfigured) && !errors.Is(err, context.Canceled)
}

func fallback(err error) Result {
	return Result{Feedback: FallbackFeedback(), Fallback: true, Reason: err.Error()}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// FallbackFeedback is served whenever the model cannot produce a review.
func FallbackFeedback() models.Feedback {
	return models.Feedback{
		OverallScore: 75,
		ATS: models.Category{
			Score: 80,
			Tips: []models.Tip{
				{Type: models.TipGood, Tip: "Good use of keywords"},
				{Type: models.TipImprove, Tip: "Add more industry-specific terms"},
			},
		},
		ToneAndStyle: models.Category{
			Score: 70,
			Tips: []models.Tip{
				{Type: models.TipGood, Tip: "Professional tone", Explanation: "Maintains appropriate business language"},
			},
		},
		Content: models.Category{
			Score: 75,
			Tips: []models.Tip{
				{Type: models.TipImprove, Tip: "Add quantifiable achievements", Explanation: "Include specific metrics and numbers"},
			},
		},
		Structure: models.Category{
			Score: 85,
			Tips: []models.Tip{
				{Type: models.TipGood, Tip: "Clear section organization", Explanation: "Well-structured layout"},
			},
		},
		Skills: models.Category{
			Score: 70,
			Tips: []models.Tip{
				{Type: models.TipImprove, Tip: "Add more technical skills", Explanation: "Include relevant technologies and tools"},
			},
		},
	}
}
