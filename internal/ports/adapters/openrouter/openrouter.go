package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/forPelevin/hlshorts/internal/types"
)

type Adapter struct {
	key     string
	model   string
	baseURL string
	timeout time.Duration
	client  *http.Client
}

const (
	defaultModel   = "openai/gpt-4o"
	requestTimeout = 90 * time.Second

	// DefaultBaseURL is used when Options.BaseURL is empty.
	DefaultBaseURL = "https://openrouter.ai"
)

// DefaultHosts are the public API hosts a base URL may point at when no
// allowlist is configured.
var DefaultHosts = []string{"openrouter.ai", "api.openrouter.ai"}

type Options struct {
	APIKey  string
	Model   string
	BaseURL string
	// Timeout bounds a single completion request.
	Timeout    time.Duration
	HTTPClient *http.Client
}

func New(o Options) *Adapter {
	if o.Model == "" {
		o.Model = defaultModel
	}
	if o.Timeout <= 0 {
		o.Timeout = requestTimeout
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: 5 * time.Minute}
	}
	return &Adapter{
		key:     o.APIKey,
		model:   o.Model,
		baseURL: trimBaseURL(o.BaseURL),
		timeout: o.Timeout,
		client:  o.HTTPClient,
	}
}

func trimBaseURL(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		s = DefaultBaseURL
	}
	return strings.TrimRight(s, "/")
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Stream         bool              `json:"stream"`
	Messages       []chatMessage     `json:"messages"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

// Complete sends the whole conversation and returns the first choice's text.
func (a *Adapter) Complete(ctx context.Context, msgs []types.Message) (string, error) {
	if len(msgs) == 0 {
		return "", errors.New("openrouter: no messages")
	}
	payload := chatRequest{
		Model:          a.model,
		Messages:       make([]chatMessage, 0, len(msgs)),
		ResponseFormat: map[string]string{"type": "json_object"},
	}
	for _, m := range msgs {
		payload.Messages = append(payload.Messages, chatMessage{Role: string(m.Role), Content: m.Content})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	url := a.baseURL + "/api/v1/chat/completions"

	reqCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+a.key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("openrouter timeout after %s (model=%s)", a.timeout, a.model)
		}
		return "", errors.New(redactSecrets(err.Error(), a.key))
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return "", fmt.Errorf("openrouter status %d and read body failed: %v", resp.StatusCode, readErr)
		}
		return "", fmt.Errorf("openrouter status %d: %s", resp.StatusCode, truncate(redactSecrets(string(rb), a.key), 400))
	}

	var raw struct {
		Choices []struct {
			Message struct {
				Content any `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", fmt.Errorf("openrouter: decode response: %w", err)
	}
	if len(raw.Choices) == 0 {
		return "", errors.New("openrouter: response has no choices")
	}
	return messageContentToString(raw.Choices[0].Message.Content)
}

func messageContentToString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []any:
		// Some providers return an array of {type,text} parts.
		var b strings.Builder
		for _, it := range x {
			m, ok := it.(map[string]any)
			if !ok {
				continue
			}
			if t, ok := m["text"].(string); ok {
				b.WriteString(t)
			}
		}
		s := b.String()
		if strings.TrimSpace(s) == "" {
			return "", errors.New("openrouter: empty content")
		}
		return s, nil
	default:
		return "", fmt.Errorf("openrouter: unexpected content type %T", v)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var (
	bearerTokenRE = regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9._-]+\b`)
	authHeaderRE  = regexp.MustCompile(`(?i)(authorization\s*[:=]\s*)([^\n\r,;]+)`)
	apiKeyFieldRE = regexp.MustCompile(`(?i)(api[_-]?key\s*[:=]\s*)([^\n\r,;]+)`)
)

func redactSecrets(s, apiKey string) string {
	if s == "" {
		return s
	}
	out := s
	if apiKey != "" {
		out = strings.ReplaceAll(out, apiKey, "[REDACTED]")
	}
	out = bearerTokenRE.ReplaceAllString(out, "Bearer [REDACTED]")
	out = authHeaderRE.ReplaceAllString(out, "${1}[REDACTED]")
	out = apiKeyFieldRE.ReplaceAllString(out, "${1}[REDACTED]")
	return out
}
