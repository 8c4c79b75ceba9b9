package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ============================================================================
// GROQ CLIENT — chat-completions over plain HTTP
// ============================================================================
// This is the ONLY file that calls an external service. The LLM interface
// lets tests substitute a scripted fake.
// ============================================================================

// LLM is the language-model boundary.
type LLM interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// GroqConfig holds Groq API settings.
type GroqConfig struct {
	APIKey   string
	Model    string // model name (empty = default)
	Endpoint string // API endpoint override (empty = default)
}

// GroqClient implements LLM against the Groq OpenAI-compatible API.
type GroqClient struct {
	config GroqConfig
	client *http.Client
}

// NewGroq creates a Groq chat-completions client.
func NewGroq(cfg GroqConfig) *GroqClient {
	if cfg.Model == "" {
		cfg.Model = "gemma2-9b-it"
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://api.groq.com/openai/v1/chat/completions"
	}
	return &GroqClient{
		config: cfg,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete sends a single-turn prompt and returns the model's text reply.
func (g *GroqClient) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:    g.config.Model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.config.APIKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("groq API returned %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse groq response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("groq error (%s): %s", parsed.Error.Type, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("groq returned no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
