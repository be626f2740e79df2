// Package llm is the generation/embedding collaborator: a minimal client for
// an OpenAI-compatible HTTP API. Calls are blocking with a client timeout and
// are never retried here; retry policy belongs to callers if they want one.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/hoavien/restaurant-bot/internal/logger"
)

const (
	defaultBaseURL      = "https://api.openai.com"
	defaultModel        = "gpt-4o-mini"
	defaultEmbedModel   = "text-embedding-3-small"
	defaultSystemPrompt = "Bạn là nhân viên hỗ trợ đặt món tại nhà hàng Hòa Viên."
	maxErrorBodyBytes   = 1024
)

// Client is the surface the RAG engine depends on.
type Client interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Config struct {
	BaseURL      string
	APIKey       string
	Model        string
	EmbedModel   string
	SystemPrompt string
	Timeout      time.Duration
}

type client struct {
	log  *logger.Logger
	cfg  Config
	http *http.Client
}

// NewClient builds a client from OPENAI_* environment variables.
func NewClient(log *logger.Logger) (Client, error) {
	cfg := Config{
		BaseURL:    strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")),
		APIKey:     strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		Model:      strings.TrimSpace(os.Getenv("OPENAI_MODEL")),
		EmbedModel: strings.TrimSpace(os.Getenv("OPENAI_EMBED_MODEL")),
	}
	return NewClientWithConfig(log, cfg)
}

func NewClientWithConfig(log *logger.Logger, cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.EmbedModel == "" {
		cfg.EmbedModel = defaultEmbedModel
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = defaultSystemPrompt
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}

	return &client{
		log:  log.With("service", "LLMClient"),
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate issues exactly one chat completion and returns the raw text.
func (c *client) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	req := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: c.cfg.SystemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens: maxTokens,
	}

	var resp chatResponse
	if err := c.doJSON(ctx, "/v1/chat/completions", req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("generation returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed returns the embedding vector for one text.
func (c *client) Embed(ctx context.Context, text string) ([]float32, error) {
	req := embedRequest{Model: c.cfg.EmbedModel, Input: []string{text}}

	var resp embedResponse
	if err := c.doJSON(ctx, "/v1/embeddings", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding returned no data")
	}
	return resp.Data[0].Embedding, nil
}

func (c *client) doJSON(ctx context.Context, path string, in, out any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(in); err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("llm request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10*maxErrorBodyBytes*1024))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("llm http status=%d body=%q", resp.StatusCode, truncateBody(raw))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func truncateBody(raw []byte) string {
	if len(raw) <= maxErrorBodyBytes {
		return string(raw)
	}
	return string(raw[:maxErrorBodyBytes]) + "..."
}
