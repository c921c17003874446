package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/forPelevin/hlshorts/internal/types"
)

const (
	defaultModel   = "gemini-2.5-flash"
	requestTimeout = 90 * time.Second
)

// SummarySchema constrains replies to the video_summary shape.
var SummarySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"video_summary": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"start_time":  {Type: genai.TypeNumber},
					"end_time":    {Type: genai.TypeNumber},
					"description": {Type: genai.TypeString},
					"category":    {Type: genai.TypeString},
				},
				Required: []string{"start_time", "end_time", "description", "category"},
			},
		},
	},
	Required: []string{"video_summary"},
}

type Options struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

type Adapter struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

func New(ctx context.Context, o Options) (*Adapter, error) {
	if o.Model == "" {
		o.Model = defaultModel
	}
	if o.Timeout <= 0 {
		o.Timeout = requestTimeout
	}
	cfg := &genai.ClientConfig{
		APIKey:  o.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if strings.TrimSpace(o.BaseURL) != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: o.BaseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Adapter{client: client, model: o.Model, timeout: o.Timeout}, nil
}

// Complete maps system turns to the system instruction and the rest to
// user/model contents.
func (a *Adapter) Complete(ctx context.Context, msgs []types.Message) (string, error) {
	system, contents, err := toContents(msgs)
	if err != nil {
		return "", err
	}
	conf := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   SummarySchema,
	}
	if system != "" {
		conf.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	reqCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	result, err := a.client.Models.GenerateContent(reqCtx, a.model, contents, conf)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("gemini timeout after %s (model=%s)", a.timeout, a.model)
		}
		return "", fmt.Errorf("gemini: %w", err)
	}
	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return "", errors.New("gemini: empty response")
	}
	return text, nil
}

func toContents(msgs []types.Message) (string, []*genai.Content, error) {
	var system []string
	contents := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case types.RoleSystem:
			system = append(system, m.Content)
		case types.RoleUser:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		case types.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			return "", nil, fmt.Errorf("gemini: unsupported role %q", m.Role)
		}
	}
	if len(contents) == 0 {
		return "", nil, errors.New("gemini: no user content")
	}
	return strings.Join(system, "\n\n"), contents, nil
}
