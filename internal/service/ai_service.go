package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"aicourse_backend/internal/config"
	"aicourse_backend/internal/util"
	"aicourse_backend/pkg/monitoring"
)

// Generator is the structured-content capability the pipeline and the
// answer judge depend on. AIService is the production implementation;
// tests substitute fakes.
type Generator interface {
	// GenerateJSON asks the model for output conforming to the given
	// JSON schema and returns the parsed object.
	GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]interface{}) (map[string]interface{}, error)
	// GenerateText asks for plain text with no schema constraint.
	GenerateText(ctx context.Context, system, user string) (string, error)
}

type AIService struct {
	config     config.AIConfig
	httpClient *http.Client
}

func NewAIService(cfg config.AIConfig) *AIService {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 180 * time.Second
	}
	return &AIService{
		config:     cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type aiChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model          string                 `json:"model"`
	Messages       []aiChatMessage        `json:"messages"`
	Temperature    float64                `json:"temperature,omitempty"`
	ResponseFormat map[string]interface{} `json:"response_format,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message aiChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// classifyStatus maps an upstream HTTP status onto the error taxonomy:
// 429 is throttling, 5xx is an outage, any other 4xx means we sent a
// request the generator rejects.
func classifyStatus(status int, body string) error {
	switch {
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", util.ErrRateLimited, body)
	case status >= 500:
		return fmt.Errorf("%w (status %d): %s", util.ErrUpstreamUnavailable, status, body)
	case status >= 400:
		return fmt.Errorf("%w (status %d): %s", util.ErrUpstreamBadRequest, status, body)
	default:
		return fmt.Errorf("AI API error (status %d): %s", status, body)
	}
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, util.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, util.ErrUpstreamUnavailable):
		return "unavailable"
	case errors.Is(err, util.ErrUpstreamBadRequest):
		return "bad_request"
	default:
		return "error"
	}
}

func (s *AIService) complete(ctx context.Context, req chatCompletionRequest) (string, error) {
	content, err := s.completeOnce(ctx, req)
	monitoring.GeneratorRequests.WithLabelValues(outcomeLabel(err)).Inc()
	return content, err
}

func (s *AIService) completeOnce(ctx context.Context, reqBody chatCompletionRequest) (string, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(resp.StatusCode, string(body))
	}

	var result chatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("AI response decode error: %w", err)
	}
	if result.Error != nil {
		return "", fmt.Errorf("AI API error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("AI returned no choices")
	}
	return result.Choices[0].Message.Content, nil
}

func (s *AIService) GenerateText(ctx context.Context, system, user string) (string, error) {
	req := chatCompletionRequest{
		Model: s.config.Model,
		Messages: []aiChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}
	return s.complete(ctx, req)
}

func (s *AIService) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]interface{}) (map[string]interface{}, error) {
	if schemaName == "" || schema == nil {
		return nil, fmt.Errorf("schema required")
	}

	req := chatCompletionRequest{
		Model: s.config.Model,
		Messages: []aiChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.2,
		ResponseFormat: map[string]interface{}{
			"type": "json_schema",
			"json_schema": map[string]interface{}{
				"name":   schemaName,
				"schema": schema,
				"strict": true,
			},
		},
	}

	content, err := s.complete(ctx, req)
	if err != nil {
		return nil, err
	}

	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(content), &obj); err != nil {
		return nil, fmt.Errorf("AI returned malformed JSON: %w", err)
	}
	return obj, nil
}
