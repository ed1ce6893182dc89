package vision

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/JaimeStill/camelrate/internal/config"
)

type geminiClient struct {
	apiKey      string
	model       string
	maxTokens   int32
	temperature float32
	fetcher     Fetcher
	opts        []option.ClientOption
}

func newGemini(cfg *config.VisionConfig, fetcher Fetcher, opts ...option.ClientOption) *geminiClient {
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(cfg.BaseURL))
	}
	return &geminiClient{
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		maxTokens:   int32(cfg.MaxTokens),
		temperature: float32(cfg.Temperature),
		fetcher:     fetcher,
		opts:        opts,
	}
}

// NewGemini returns an uninstrumented Gemini client. Image parts are loaded
// through fetcher and sent inline.
func NewGemini(cfg *config.VisionConfig, fetcher Fetcher, opts ...option.ClientOption) Client {
	return newGemini(cfg, fetcher, opts...)
}

func (c *geminiClient) Complete(ctx context.Context, req Request) (string, error) {
	if err := req.validate(); err != nil {
		return "", err
	}

	history := make([]*genai.Content, 0, len(req.Messages)-1)
	for _, m := range req.Messages[:len(req.Messages)-1] {
		parts, err := c.parts(ctx, m.Parts)
		if err != nil {
			return "", err
		}
		history = append(history, &genai.Content{Role: geminiRole(m.Role), Parts: parts})
	}

	final, err := c.parts(ctx, req.Messages[len(req.Messages)-1].Parts)
	if err != nil {
		return "", err
	}

	cl, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(c.apiKey)}, c.opts...)...)
	if err != nil {
		return "", fmt.Errorf("gemini client: %w", err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(c.model)
	if m == nil {
		return "", fmt.Errorf("gemini: model is nil")
	}

	m.GenerationConfig = genai.GenerationConfig{
		Temperature:     ptrFloat32(c.temperature),
		MaxOutputTokens: &c.maxTokens,
	}
	if req.JSON {
		m.GenerationConfig.ResponseMIMEType = "application/json"
	}
	if req.System != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.System)},
		}
	}

	cs := m.StartChat()
	cs.History = history

	resp, err := cs.SendMessage(ctx, final...)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	txt := firstText(resp)
	if txt == "" {
		return "", ErrEmptyResponse
	}
	return txt, nil
}

func (c *geminiClient) parts(ctx context.Context, parts []Part) ([]genai.Part, error) {
	out := make([]genai.Part, 0, len(parts))
	for _, p := range parts {
		if p.ImageURL == "" {
			out = append(out, genai.Text(p.Text))
			continue
		}
		img, err := c.fetcher.Fetch(ctx, p.ImageURL)
		if err != nil {
			return nil, fmt.Errorf("gemini image %s: %w", p.ImageURL, err)
		}
		out = append(out, &genai.Blob{MIMEType: img.ContentType, Data: img.Data})
	}
	return out, nil
}

func geminiRole(r Role) string {
	if r == RoleAssistant {
		return "model"
	}
	return "user"
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
