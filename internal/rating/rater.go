package rating

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/camelrate/internal/prompts"
	"github.com/JaimeStill/camelrate/internal/scoring"
	"github.com/JaimeStill/camelrate/internal/vision"
	"github.com/JaimeStill/camelrate/pkg/formatting"
)

// PromptSource supplies per-category prompts.
type PromptSource interface {
	SystemPrompt(ctx context.Context, category string, gender scoring.Gender) (string, error)
	Messages(ctx context.Context, category, imageURL string) ([]vision.Message, error)
}

var _ PromptSource = (prompts.System)(nil)

// Rater scores beauty categories with one model call each.
type Rater struct {
	client  vision.Client
	prompts PromptSource
	limit   int
	logger  *slog.Logger
}

// NewRater creates a Rater. A limit of 0 runs every category at once.
func NewRater(client vision.Client, source PromptSource, limit int, logger *slog.Logger) *Rater {
	return &Rater{
		client:  client,
		prompts: source,
		limit:   limit,
		logger:  logger.With("system", "rater"),
	}
}

// RateCategory never fails: model and parse errors produce a degraded result.
func (r *Rater) RateCategory(ctx context.Context, category, imageURL string, gender scoring.Gender) CategoryResult {
	system, err := r.prompts.SystemPrompt(ctx, category, gender)
	if err != nil {
		return r.degraded(ctx, category, err)
	}

	messages, err := r.prompts.Messages(ctx, category, imageURL)
	if err != nil {
		return r.degraded(ctx, category, err)
	}

	content, err := r.client.Complete(ctx, vision.Request{
		Stage:    category,
		System:   system,
		Messages: messages,
		JSON:     true,
	})
	if err != nil {
		return r.degraded(ctx, category, err)
	}

	return decodeCategory(content)
}

// RateAll rates every category concurrently. Only cancellation of ctx
// aborts the whole call.
func (r *Rater) RateAll(
	ctx context.Context,
	categories []string,
	imageURL string,
	gender scoring.Gender,
) (map[string]CategoryResult, error) {
	slots := make([]CategoryResult, len(categories))

	g, gctx := errgroup.WithContext(ctx)
	if r.limit > 0 {
		g.SetLimit(r.limit)
	}

	for i, category := range categories {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slots[i] = r.RateCategory(gctx, category, imageURL, gender)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("rate categories: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("rate categories: %w", err)
	}

	results := make(map[string]CategoryResult, len(categories))
	for i, category := range categories {
		results[category] = slots[i]
	}

	return results, nil
}

func (r *Rater) degraded(ctx context.Context, category string, err error) CategoryResult {
	r.logger.WarnContext(ctx, "category rating degraded", "category", category, "error", err)
	return CategoryResult{
		Kind:     KindDegraded,
		Analysis: fmt.Sprintf("Error analyzing %s: %v", category, err),
	}
}

type categoryResponse struct {
	Error      bool                `json:"error"`
	Message    string              `json:"message"`
	Category   string              `json:"category"`
	Attributes []scoring.Attribute `json:"attributes"`
	Analysis   string              `json:"analysis"`
}

// reserved keys are typed fields and never copied into Extra.
var reserved = map[string]bool{
	"kind": true, "error": true, "message": true, "category": true,
	"attributes": true, "analysis": true, "category_score": true,
}

func decodeCategory(content string) CategoryResult {
	raw, err := formatting.Parse[map[string]json.RawMessage](content)
	if err != nil || raw == nil {
		return CategoryResult{Kind: KindDegraded, Analysis: content}
	}

	var resp categoryResponse
	if err := remarshal(raw, &resp); err != nil {
		return CategoryResult{Kind: KindDegraded, Analysis: content}
	}

	if resp.Error {
		return CategoryResult{
			Kind:     KindUnusable,
			Message:  resp.Message,
			Category: resp.Category,
		}
	}

	// A scored answer must carry an attributes array.
	if attrs, ok := raw["attributes"]; !ok || string(attrs) == "null" {
		return CategoryResult{Kind: KindDegraded, Analysis: content}
	}

	extra := make(map[string]json.RawMessage)
	for k, v := range raw {
		if !reserved[k] {
			extra[k] = v
		}
	}

	return CategoryResult{
		Kind:       KindScored,
		Attributes: resp.Attributes,
		Score:      scoring.CategoryScore(resp.Attributes),
		Analysis:   resp.Analysis,
		Extra:      extra,
	}
}

func remarshal(raw map[string]json.RawMessage, v any) error {
	b, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
