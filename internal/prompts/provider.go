// Package prompts loads category rating prompts and assembles the few-shot
// conversation sent to the vision model.
package prompts

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/JaimeStill/camelrate/internal/feedback"
	"github.com/JaimeStill/camelrate/internal/scoring"
	"github.com/JaimeStill/camelrate/internal/vision"
)

const templateSuffix = "_beauty.json"

const goldenHeader = "IMPORTANT: The following are EXPERT-VALIDATED examples from your training " +
	"database. These corrections take precedence over general rules. Study them carefully:"

//go:embed templates/*.json
var embedded embed.FS

// Embedded returns the built-in category templates.
func Embedded() fs.FS {
	sub, _ := fs.Sub(embedded, "templates")
	return sub
}

// Source returns os.DirFS(dir) when dir is set, else the built-in templates.
func Source(dir string) fs.FS {
	if dir == "" {
		return Embedded()
	}
	return os.DirFS(dir)
}

// GoldenSource supplies approved expert corrections, newest first.
type GoldenSource interface {
	Approved(ctx context.Context, category string, limit int) ([]feedback.Feedback, error)
}

// System defines the public contract for prompt operations.
type System interface {
	Handler() *Handler

	Categories() ([]string, error)
	Template(category string) (*Template, error)
	SystemPrompt(ctx context.Context, category string, gender scoring.Gender) (string, error)
	Messages(ctx context.Context, category, imageURL string) ([]vision.Message, error)
	Reload()
}

// Provider reads templates through a per-category cache.
type Provider struct {
	fsys    fs.FS
	golden  GoldenSource
	limit   int
	allowed []string
	logger  *slog.Logger

	mu    sync.RWMutex
	cache map[string]*Template
}

// New creates a Provider over fsys. golden may be nil. A non-empty
// categories list restricts the available categories.
func New(
	fsys fs.FS,
	golden GoldenSource,
	limit int,
	categories []string,
	logger *slog.Logger,
) *Provider {
	return &Provider{
		fsys:    fsys,
		golden:  golden,
		limit:   limit,
		allowed: categories,
		logger:  logger.With("system", "prompts"),
		cache:   make(map[string]*Template),
	}
}

func (p *Provider) Handler() *Handler {
	return NewHandler(p, p.logger)
}

// Categories lists available categories in sorted order.
func (p *Provider) Categories() ([]string, error) {
	matches, err := fs.Glob(p.fsys, "*"+templateSuffix)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	categories := make([]string, 0, len(matches))
	for _, m := range matches {
		c := strings.TrimSuffix(m, templateSuffix)
		if len(p.allowed) > 0 && !slices.Contains(p.allowed, c) {
			continue
		}
		categories = append(categories, c)
	}

	slices.Sort(categories)
	return categories, nil
}

// Template returns the parsed template for category, loading it on first use.
func (p *Provider) Template(category string) (*Template, error) {
	p.mu.RLock()
	t, ok := p.cache[category]
	p.mu.RUnlock()
	if ok {
		return t, nil
	}

	if !p.known(category) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	data, err := fs.ReadFile(p.fsys, category+templateSuffix)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
		}
		return nil, fmt.Errorf("read template %s: %w", category, err)
	}

	t, err = ParseTemplate(category, data)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.cache[category] = t
	p.mu.Unlock()

	p.logger.Debug("template loaded", "category", category, "sections", len(t.Sections))
	return t, nil
}

func (p *Provider) known(category string) bool {
	if category == "" || strings.ContainsAny(category, `/\.`) {
		return false
	}
	return len(p.allowed) == 0 || slices.Contains(p.allowed, category)
}

// Reload drops all cached templates.
func (p *Provider) Reload() {
	p.mu.Lock()
	clear(p.cache)
	p.mu.Unlock()
	p.logger.Info("templates reloaded")
}

// SystemPrompt renders the category system prompt, adding gender context for
// a known gender.
func (p *Provider) SystemPrompt(_ context.Context, category string, gender scoring.Gender) (string, error) {
	t, err := p.Template(category)
	if err != nil {
		return "", err
	}
	return render(withGender(t.Sections, gender)), nil
}

// Messages assembles static examples, approved golden examples, and the
// target image turn. A failing golden lookup yields no golden examples.
func (p *Provider) Messages(ctx context.Context, category, imageURL string) ([]vision.Message, error) {
	t, err := p.Template(category)
	if err != nil {
		return nil, err
	}

	golden := p.goldenExamples(ctx, category)

	messages := make([]vision.Message, 0, len(t.Messages)+2*len(golden)+2)
	messages = append(messages, t.Messages...)

	if len(golden) > 0 {
		messages = append(messages, vision.User(vision.Text(goldenHeader)))
		for _, g := range golden {
			messages = append(messages,
				vision.User(vision.Image(g.ImageURL), vision.Text("Rate this camel.")),
				vision.Assistant(goldenAnswer(g)),
			)
		}
	}

	messages = append(messages, vision.User(
		vision.Text(fmt.Sprintf("Now please analyze this %s and provide a detailed beauty rating from 1-10:", category)),
		vision.Image(imageURL),
	))

	return messages, nil
}

func (p *Provider) goldenExamples(ctx context.Context, category string) []feedback.Feedback {
	if p.golden == nil || p.limit <= 0 {
		return nil
	}

	examples, err := p.golden.Approved(ctx, category, p.limit)
	if err != nil {
		p.logger.WarnContext(ctx, "golden examples unavailable", "category", category, "error", err)
		return nil
	}
	if len(examples) > p.limit {
		examples = examples[:p.limit]
	}
	return examples
}

func goldenAnswer(f feedback.Feedback) string {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, f.CorrectedScore, "", "  "); err != nil {
		pretty.Reset()
		pretty.Write(f.CorrectedScore)
	}

	reasoning := "Expert correction."
	if f.Reasoning != nil && *f.Reasoning != "" {
		reasoning = *f.Reasoning
	}

	return fmt.Sprintf(
		"Based on expert feedback, here is the correct rating:\n%s\n\nKey Reasoning: %s",
		pretty.String(), reasoning,
	)
}
