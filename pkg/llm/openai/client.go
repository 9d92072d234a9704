// Package openai implements llm.Provider for any OpenAI-compatible API.
//
// The upstream service exposes two call shapes for text generation: the
// structured Responses API and the older Chat Completions API. GenerateText
// prefers the Responses shape and falls back to Chat Completions
// transparently when the primary shape errors, so callers stay
// strategy-agnostic.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"text2audio/pkg/config"
	"text2audio/pkg/llm"
	"text2audio/pkg/request"
)

// Client implements llm.Provider for any OpenAI-compatible API.
type Client struct {
	rc       *request.Client
	apiKey   string
	baseURL  string
	profiles map[string]string

	mu sync.RWMutex
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// responsesRequest follows the Responses API format.
type responsesRequest struct {
	Model string    `json:"model"`
	Input []message `json:"input"`
}

// responsesResponse covers the fields we read from a Responses API reply.
type responsesResponse struct {
	OutputText string `json:"output_text,omitempty"`
	Output     []struct {
		Type    string `json:"type"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
	Error *apiError `json:"error,omitempty"`
}

// chatRequest follows the standard Chat Completions format.
type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float32   `json:"temperature,omitempty"`
}

// chatResponse follows the standard Chat Completions response format.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// NewClient creates a new OpenAI client.
func NewClient(cfg config.ProviderConfig, defaultBaseURL string, rc *request.Client) (*Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL is required")
	}

	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		apiKey:   cfg.Key,
		profiles: cfg.Profiles,
		rc:       rc,
	}, nil
}

// GenerateText implements llm.Provider.
func (c *Client) GenerateText(ctx context.Context, name string, prompt llm.Prompt) (string, error) {
	model, err := c.resolveModel(name)
	if err != nil {
		return "", err
	}
	if c.apiKey == "" {
		return "", fmt.Errorf("api key is missing")
	}

	text, primaryErr := c.executeResponses(ctx, model, prompt)
	if primaryErr == nil {
		return text, nil
	}

	slog.Debug("Responses API failed, falling back to chat completions", "model", model, "error", primaryErr)

	text, chatErr := c.executeChat(ctx, model, prompt)
	if chatErr != nil {
		return "", fmt.Errorf("both call shapes failed (responses: %v): %w", primaryErr, chatErr)
	}
	return text, nil
}

func (c *Client) executeResponses(ctx context.Context, model string, prompt llm.Prompt) (string, error) {
	req := responsesRequest{
		Model: model,
		Input: buildMessages(prompt),
	}

	respBody, err := c.post(ctx, "/responses", req)
	if err != nil {
		return "", err
	}

	var oresp responsesResponse
	if err := json.Unmarshal(respBody, &oresp); err != nil {
		return "", fmt.Errorf("failed to unmarshal responses reply: %w", err)
	}
	if oresp.Error != nil {
		return "", fmt.Errorf("openai api error: %s (%s)", oresp.Error.Message, oresp.Error.Type)
	}

	if oresp.OutputText != "" {
		return oresp.OutputText, nil
	}

	var sb strings.Builder
	for _, item := range oresp.Output {
		if item.Type != "message" {
			continue
		}
		for _, part := range item.Content {
			if part.Type == "output_text" {
				sb.WriteString(part.Text)
			}
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("responses api returned no output text")
	}
	return sb.String(), nil
}

func (c *Client) executeChat(ctx context.Context, model string, prompt llm.Prompt) (string, error) {
	req := chatRequest{
		Model:       model,
		Messages:    buildMessages(prompt),
		Temperature: 0.1,
	}

	respBody, err := c.post(ctx, "/chat/completions", req)
	if err != nil {
		return "", err
	}

	var oresp chatResponse
	if err := json.Unmarshal(respBody, &oresp); err != nil {
		return "", fmt.Errorf("failed to unmarshal chat reply: %w", err)
	}
	if oresp.Error != nil {
		return "", fmt.Errorf("openai api error: %s (%s)", oresp.Error.Message, oresp.Error.Type)
	}
	if len(oresp.Choices) == 0 {
		return "", fmt.Errorf("api returned no choices")
	}
	return oresp.Choices[0].Message.Content, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	headers := map[string]string{
		"Authorization": "Bearer " + c.apiKey,
		"Content-Type":  "application/json",
	}

	return c.rc.PostWithHeaders(ctx, c.baseURL+path, body, headers)
}

func buildMessages(prompt llm.Prompt) []message {
	var msgs []message
	if prompt.System != "" {
		msgs = append(msgs, message{Role: "system", Content: prompt.System})
	}
	msgs = append(msgs, message{Role: "user", Content: prompt.User})
	return msgs
}

// HasProfile implements llm.Provider.
func (c *Client) HasProfile(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.profiles[name]
	return ok && c.profiles[name] != ""
}

func (c *Client) resolveModel(intent string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if model, ok := c.profiles[intent]; ok && model != "" {
		return model, nil
	}
	return "", fmt.Errorf("profile %q not configured", intent)
}
