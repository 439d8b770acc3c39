// AngelaMos | 2026
// explainer.go

package emoji

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/carterperez-dev/emoji-explainer/internal/config"
	"github.com/carterperez-dev/emoji-explainer/internal/core"
)

// Explainer computes an explanation for an emoji that is not cached yet.
// Failures wrap core.ErrComputeFailed.
type Explainer interface {
	Explain(ctx context.Context, emoji string) (string, error)
}

func NewExplainer(cfg config.ExplainerConfig) (Explainer, error) {
	switch cfg.Provider {
	case config.ExplainerStatic, "":
		return NewStaticExplainer(), nil
	case config.ExplainerChat:
		return NewChatExplainer(cfg, nil), nil
	default:
		return nil, fmt.Errorf("unknown explainer provider %q", cfg.Provider)
	}
}

const staticFallback = "An interesting but not yet interpreted emoji!"

type StaticExplainer struct {
	entries  map[string]string
	fallback string
}

func NewStaticExplainer() *StaticExplainer {
	return &StaticExplainer{
		entries: map[string]string{
			"🙂": "A smiling face that indicates happiness or satisfaction.",
			"😢": "A sad face portraying tears, often used to indicate sadness or grief.",
		},
		fallback: staticFallback,
	}
}

func (s *StaticExplainer) Explain(_ context.Context, emoji string) (string, error) {
	if explanation, ok := s.entries[emoji]; ok {
		return explanation, nil
	}
	return s.fallback, nil
}

const (
	chatSystemPrompt = "You explain emoji. Reply with one or two plain sentences " +
		"describing what the emoji depicts and how it is commonly used."
	maxChatResponseBytes = 1 << 20
)

// ChatExplainer asks an OpenAI-compatible chat completions endpoint.
type ChatExplainer struct {
	client   *http.Client
	endpoint string
	model    string
	apiKey   string
}

// NewChatExplainer builds a client for cfg. A nil client gets one with
// cfg.Timeout.
func NewChatExplainer(cfg config.ExplainerConfig, client *http.Client) *ChatExplainer {
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 20 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	return &ChatExplainer{
		client:   client,
		endpoint: strings.TrimRight(cfg.Endpoint, "/") + "/chat/completions",
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *ChatExplainer) Explain(ctx context.Context, emoji string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: chatSystemPrompt},
			{Role: "user", Content: emoji},
		},
		Temperature: 0.2,
		MaxTokens:   200,
	})
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w: %w", core.ErrComputeFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w: %w", core.ErrComputeFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request: %w: %w", core.ErrComputeFailed, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxChatResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read chat response: %w: %w", core.ErrComputeFailed, err)
	}

	var decoded chatResponse
	decodeErr := json.Unmarshal(body, &decoded)

	if resp.StatusCode != http.StatusOK {
		msg := http.StatusText(resp.StatusCode)
		if decodeErr == nil && decoded.Error != nil && decoded.Error.Message != "" {
			msg = decoded.Error.Message
		}
		return "", fmt.Errorf("chat endpoint returned %d (%s): %w", resp.StatusCode, msg, core.ErrComputeFailed)
	}

	if decodeErr != nil {
		return "", fmt.Errorf("decode chat response: %w: %w", core.ErrComputeFailed, decodeErr)
	}

	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("chat response has no choices: %w", core.ErrComputeFailed)
	}

	explanation := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if explanation == "" {
		return "", fmt.Errorf("chat response is empty: %w", core.ErrComputeFailed)
	}

	return explanation, nil
}
