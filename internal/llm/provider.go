package llm

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ampco/intake-cli/internal/config"
	"github.com/ampco/intake-cli/internal/stage"
	"github.com/ampco/intake-cli/pkg/anthropic"
	"github.com/ampco/intake-cli/pkg/gemini"
)

// Options fixes the model and sampling parameters for a Completer.
type Options struct {
	Model       string
	MaxTokens   int64
	Temperature float64
}

// AnthropicCompleter calls the Anthropic Messages API.
type AnthropicCompleter struct {
	client anthropic.Client
	opts   Options
}

// NewAnthropicCompleter wraps an Anthropic client.
func NewAnthropicCompleter(client anthropic.Client, opts Options) *AnthropicCompleter {
	return &AnthropicCompleter{client: client, opts: opts}
}

func (a *AnthropicCompleter) Provider() string { return "anthropic" }

func (a *AnthropicCompleter) Complete(ctx context.Context, prompt string) (*Completion, error) {
	resp, err := a.client.Complete(ctx, anthropic.Request{
		Model:       a.opts.Model,
		MaxTokens:   a.opts.MaxTokens,
		Prompt:      prompt,
		Temperature: a.opts.Temperature,
	})
	if err != nil {
		return nil, &stage.ModelInvocationError{
			Provider:   a.Provider(),
			StatusCode: anthropic.StatusCode(err),
			Err:        err,
		}
	}
	if resp.Truncated() {
		zap.L().Warn("model output truncated at max_tokens",
			zap.String("model", resp.Model), zap.Int64("max_tokens", a.opts.MaxTokens))
	}

	logUsage(ctx, a.Provider(), resp.Model, resp.Usage.InputTokens, resp.Usage.OutputTokens)

	return &Completion{
		Text:         resp.Text,
		Model:        resp.Model,
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
	}, nil
}

func logUsage(ctx context.Context, provider, model string, in, out int64) {
	zap.L().Info("model usage",
		zap.String("provider", provider),
		zap.String("model", model),
		zap.String("flow", FlowFrom(ctx)),
		zap.Int64("input_tokens", in),
		zap.Int64("output_tokens", out),
	)
}

// GeminiCompleter calls the Gemini generateContent API.
type GeminiCompleter struct {
	client gemini.Client
	opts   Options
}

// NewGeminiCompleter wraps a Gemini client.
func NewGeminiCompleter(client gemini.Client, opts Options) *GeminiCompleter {
	return &GeminiCompleter{client: client, opts: opts}
}

func (g *GeminiCompleter) Provider() string { return "gemini" }

func (g *GeminiCompleter) Complete(ctx context.Context, prompt string) (*Completion, error) {
	resp, err := g.client.Generate(ctx, gemini.GenerateRequest{
		Model:       g.opts.Model,
		Prompt:      prompt,
		Temperature: float32(g.opts.Temperature),
		MaxTokens:   int32(g.opts.MaxTokens),
	})
	if err != nil {
		return nil, &stage.ModelInvocationError{
			Provider:   g.Provider(),
			StatusCode: gemini.StatusCode(err),
			Err:        err,
		}
	}

	logUsage(ctx, g.Provider(), resp.Model, resp.InputTokens, resp.OutputTokens)

	return &Completion{
		Text:         resp.Text,
		Model:        resp.Model,
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
	}, nil
}

// New builds the Completer selected by cfg.LLM.Provider.
func New(ctx context.Context, cfg *config.Config) (Completer, error) {
	opts := Options{
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	}
	switch cfg.LLM.Provider {
	case "anthropic", "":
		return NewAnthropicCompleter(anthropic.NewClient(cfg.Anthropic.Key, cfg.Anthropic.BaseURL), opts), nil
	case "gemini":
		client, err := gemini.NewClient(ctx, cfg.Gemini.Key, "")
		if err != nil {
			return nil, eris.Wrap(err, "llm: gemini client")
		}
		return NewGeminiCompleter(client, opts), nil
	default:
		return nil, eris.Errorf("llm: unknown provider %q", cfg.LLM.Provider)
	}
}
