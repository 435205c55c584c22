package llm

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"
)

const (
	appName   = "resumesense"
	agentName = "resume_reviewer"
)

// GeminiProvider runs a single-turn ADK agent backed by a Gemini model.
// Every Complete call uses a fresh in-memory session that is deleted after
// the final response.
type GeminiProvider struct {
	model    string
	sessions session.Service
	runner   *runner.Runner
}

func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	m, err := gemini.NewModel(ctx, model, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create model: %w", err)
	}

	reviewer, err := llmagent.New(llmagent.Config{
		Name:        agentName,
		Model:       m,
		Description: "Analyze Resume",
		Instruction: "You are an expert resume reviewer. Follow the instructions in each message and answer with JSON only.",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}

	sessions := session.InMemoryService()
	r, err := runner.New(runner.Config{
		AppName:        appName,
		Agent:          reviewer,
		SessionService: sessions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create runner: %w", err)
	}

	return &GeminiProvider{model: model, sessions: sessions, runner: r}, nil
}

func (p *GeminiProvider) Name() string { return "gemini:" + p.model }

func (p *GeminiProvider) Complete(ctx context.Context, prompt string) (string, error) {
	created, err := p.sessions.Create(ctx, &session.CreateRequest{
		AppName:   appName,
		UserID:    agentName,
		SessionID: uuid.NewString(),
	})
	if err != nil {
		return "", fmt.Errorf("create agent session: %w", err)
	}
	sess := created.Session
	defer p.sessions.Delete(context.WithoutCancel(ctx), &session.DeleteRequest{
		AppName:   sess.AppName(),
		UserID:    sess.UserID(),
		SessionID: sess.ID(),
	})

	stream := p.runner.Run(ctx, sess.UserID(), sess.ID(), &genai.Content{
		Role:  "user",
		Parts: []*genai.Part{{Text: prompt}},
	}, agent.RunConfig{})

	var output string
	for event, err := range stream {
		if err != nil {
			return "", err
		}
		if event != nil && event.IsFinalResponse() && event.Content != nil && len(event.Content.Parts) > 0 {
			output = event.Content.Parts[0].Text
		}
	}
	if output == "" {
		return "", ErrEmptyResponse
	}
	return output, nil
}
