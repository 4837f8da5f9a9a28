package llm

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/ampco/intake-cli/internal/stage"
)

type flowKey struct{}

// WithFlow labels ctx with the intake flow so usage logs can be attributed.
func WithFlow(ctx context.Context, flow string) context.Context {
	return context.WithValue(ctx, flowKey{}, flow)
}

// FlowFrom returns the flow set by WithFlow, or "".
func FlowFrom(ctx context.Context) string {
	flow, _ := ctx.Value(flowKey{}).(string)
	return flow
}

// Completion is a single model answer with its token usage.
type Completion struct {
	Text         string
	Model        string
	InputTokens  int64
	OutputTokens int64
}

// Completer sends a fully composed prompt to a language model.
type Completer interface {
	Complete(ctx context.Context, prompt string) (*Completion, error)
	Provider() string
}

// Invoker composes prompts and calls a Completer exactly once per request.
type Invoker struct {
	completer Completer
}

// NewInvoker creates an Invoker backed by c.
func NewInvoker(c Completer) *Invoker {
	return &Invoker{completer: c}
}

// Invoke composes template with documentText and returns the raw model
// response. Failures surface as *stage.ModelInvocationError; there is no
// retry.
func (inv *Invoker) Invoke(ctx context.Context, template, documentText string, extra Context) (Response, error) {
	prompt := Compose(template, documentText, extra)

	comp, err := inv.completer.Complete(ctx, prompt)
	if err != nil {
		var mie *stage.ModelInvocationError
		if errors.As(err, &mie) {
			return "", err
		}
		return "", &stage.ModelInvocationError{Provider: inv.completer.Provider(), Err: err}
	}

	zap.L().Debug("llm: completion",
		zap.String("provider", inv.completer.Provider()),
		zap.String("model", comp.Model),
		zap.Int("prompt_chars", len(prompt)),
		zap.Int("response_chars", len(comp.Text)),
	)

	return Response(comp.Text), nil
}
