package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/forPelevin/hlshorts/internal/types"
)

const (
	defaultModel   = "gpt-4o"
	requestTimeout = 90 * time.Second
)

type Options struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
	// MaxRetries is the SDK's transport retry count, separate from the
	// selector's corrective retries.
	MaxRetries int
}

type Adapter struct {
	client  openai.Client
	model   string
	timeout time.Duration
}

func New(o Options) *Adapter {
	if o.Model == "" {
		o.Model = defaultModel
	}
	if o.Timeout <= 0 {
		o.Timeout = requestTimeout
	}
	opts := []option.RequestOption{
		option.WithAPIKey(o.APIKey),
		option.WithMaxRetries(o.MaxRetries),
	}
	if strings.TrimSpace(o.BaseURL) != "" {
		opts = append(opts, option.WithBaseURL(o.BaseURL))
	}
	return &Adapter{client: openai.NewClient(opts...), model: o.Model, timeout: o.Timeout}
}

// Complete sends the conversation as one chat completion in JSON mode.
func (a *Adapter) Complete(ctx context.Context, msgs []types.Message) (string, error) {
	params := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case types.RoleSystem:
			params = append(params, openai.SystemMessage(m.Content))
		case types.RoleAssistant:
			params = append(params, openai.AssistantMessage(m.Content))
		case types.RoleUser:
			params = append(params, openai.UserMessage(m.Content))
		default:
			return "", fmt.Errorf("openai: unsupported role %q", m.Role)
		}
	}
	if len(params) == 0 {
		return "", errors.New("openai: no messages")
	}

	reqCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.client.Chat.Completions.New(reqCtx, openai.ChatCompletionNewParams{
		Messages: params,
		Model:    a.model,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{Type: "json_object"},
		},
	})
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("openai timeout after %s (model=%s)", a.timeout, a.model)
		}
		return "", fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: response has no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
