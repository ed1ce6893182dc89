// Package vision abstracts the remote multimodal model used for camel
// validation and category rating.
package vision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JaimeStill/camelrate/internal/config"
	"github.com/JaimeStill/camelrate/pkg/imagefetch"
)

var (
	ErrEmptyResponse = errors.New("model returned no content")
	ErrNoUserTurn    = errors.New("conversation must end with a user turn")
	ErrMissingAPIKey = errors.New("vision api key not configured")
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Part is a single text or image content item. Exactly one field is set.
type Part struct {
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// Message is one conversation turn.
type Message struct {
	Role  Role   `json:"role"`
	Parts []Part `json:"content"`
}

// Text returns a text part.
func Text(s string) Part { return Part{Text: s} }

// Image returns an image part referencing url (http(s) or data URI).
func Image(url string) Part { return Part{ImageURL: url} }

// User builds a user turn.
func User(parts ...Part) Message { return Message{Role: RoleUser, Parts: parts} }

// Assistant builds an assistant turn with a single text part.
func Assistant(text string) Message {
	return Message{Role: RoleAssistant, Parts: []Part{Text(text)}}
}

// Request is a single completion request.
type Request struct {
	// Stage labels the call for metrics and logs ("validation" or a category).
	Stage    string
	System   string
	Messages []Message
	// JSON requests a JSON object response.
	JSON bool
}

func (r Request) validate() error {
	if len(r.Messages) == 0 || r.Messages[len(r.Messages)-1].Role != RoleUser {
		return ErrNoUserTurn
	}
	return nil
}

// Client completes multimodal conversations.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Fetcher loads image bytes for providers that require inline data.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*imagefetch.Image, error)
}

// New builds the configured provider wrapped with timeout, retry, and metrics.
func New(cfg *config.VisionConfig, fetcher Fetcher, logger *slog.Logger) (Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	var provider Client
	switch cfg.Provider {
	case config.ProviderOpenAI:
		provider = newOpenAI(cfg)
	case config.ProviderGemini:
		provider = newGemini(cfg, fetcher)
	default:
		return nil, fmt.Errorf("unknown vision provider %q", cfg.Provider)
	}

	return Instrument(provider, cfg.TimeoutDuration(), cfg.MaxRetries, logger.With(
		"system", "vision",
		"provider", cfg.Provider,
		"model", cfg.Model,
	)), nil
}

func joinText(parts []Part) string {
	var b strings.Builder
	for _, p := range parts {
		if p.Text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(p.Text)
	}
	return b.String()
}
