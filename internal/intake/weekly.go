package intake

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ampco/intake-cli/internal/llm"
	"github.com/ampco/intake-cli/internal/model"
	"github.com/ampco/intake-cli/internal/stage"
)

// Weekly turns free-form weekly notes into a summary and appends the pair
// to the weekly log.
func (s *Service) Weekly(ctx context.Context, text string) (*Result, error) {
	ctx = llm.WithFlow(ctx, string(model.FlowWeekly))
	res, log, err := s.begin(ctx, model.FlowWeekly, "")
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(text) == "" {
		return s.finish(ctx, log, res, &stage.ValidationError{Field: "text", Msg: "required"})
	}

	tmpl, err := s.template(llm.PromptWeekly)
	if err != nil {
		return s.finish(ctx, log, res, err)
	}
	summary, err := s.invoker.Invoke(ctx, tmpl, text, llm.Context{})
	if err != nil {
		return s.finish(ctx, log, res, err)
	}
	res.Summary = string(summary)

	// Losing a log entry does not fail the request.
	if err := s.appendWeeklyLog(text, res.Summary); err != nil {
		log.Error("intake: weekly log append failed", zap.Error(err))
		res.Messages = append(res.Messages, "Weekly log not updated: "+err.Error())
	}

	res.Status = model.RunStatusComplete
	return s.finish(ctx, log, res, nil)
}

func (s *Service) appendWeeklyLog(input, summary string) error {
	path := s.cfg.Weekly.LogPath
	if path == "" {
		return nil
	}

	entry := strings.Join([]string{
		"",
		fmt.Sprintf("=== Submission at %s ===", s.now().Format("2006-01-02T15:04:05")),
		"[Input]",
		strings.TrimRight(input, " \t\r\n"),
		"",
		"[Weekly Summary]",
		strings.TrimRight(summary, " \t\r\n"),
		"",
	}, "\n")

	s.weeklyMu.Lock()
	defer s.weeklyMu.Unlock()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return eris.Wrapf(err, "intake: open weekly log %s", path)
	}
	if _, err := f.WriteString(entry); err != nil {
		f.Close() //nolint:errcheck
		return eris.Wrap(err, "intake: write weekly log")
	}
	return eris.Wrap(f.Close(), "intake: close weekly log")
}
