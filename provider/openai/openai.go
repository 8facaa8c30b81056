// Package openai implements the provider interface against the OpenAI
// chat-completions API (and compatible endpoints via base_url override).
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/meetspot-ai/meetspot/config"
	"github.com/meetspot-ai/meetspot/provider"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client talks to the chat-completions endpoint.
type Client struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
}

// New builds a client from configuration.
func New(cfg config.LLMConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		apiKey:      cfg.APIKey,
		baseURL:     baseURL,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		httpClient:  &http.Client{Timeout: timeout},
	}, nil
}

type chatRequest struct {
	Model       string             `json:"model"`
	Messages    []provider.Message `json:"messages"`
	Tools       []toolDef          `json:"tools,omitempty"`
	Temperature float64            `json:"temperature,omitempty"`
	MaxTokens   int                `json:"max_tokens,omitempty"`
}

type toolDef struct {
	Type     string            `json:"type"`
	Function provider.ToolSpec `json:"function"`
}

type chatResponse struct {
	Choices []struct {
		Message      provider.Message `json:"message"`
		FinishReason string           `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Chat implements provider.Provider.
func (c *Client) Chat(ctx context.Context, messages []provider.Message, tools []provider.ToolSpec) (provider.Message, error) {
	reqBody := chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
	for _, t := range tools {
		reqBody.Tools = append(reqBody.Tools, toolDef{Type: "function", Function: t})
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return provider.Message{}, fmt.Errorf("encoding chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return provider.Message{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return provider.Message{}, fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return provider.Message{}, fmt.Errorf("reading chat response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return provider.Message{}, fmt.Errorf("decoding chat response (HTTP %d): %w", resp.StatusCode, err)
	}
	if parsed.Error != nil {
		return provider.Message{}, fmt.Errorf("openai: %s (%s)", parsed.Error.Message, parsed.Error.Type)
	}
	if resp.StatusCode != http.StatusOK {
		return provider.Message{}, fmt.Errorf("openai returned HTTP %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return provider.Message{}, fmt.Errorf("openai returned no choices")
	}
	return parsed.Choices[0].Message, nil
}
