// Package intake runs the document flows end to end: purchase order import,
// photometric report summary and weekly summary. Every run is recorded in
// the run log with its final status and, on failure, the failing stage.
package intake

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ampco/intake-cli/internal/config"
	"github.com/ampco/intake-cli/internal/llm"
	"github.com/ampco/intake-cli/internal/model"
	"github.com/ampco/intake-cli/internal/parse"
	"github.com/ampco/intake-cli/internal/pdftext"
	"github.com/ampco/intake-cli/internal/photometric"
	"github.com/ampco/intake-cli/internal/share"
	"github.com/ampco/intake-cli/internal/stage"
	"github.com/ampco/intake-cli/internal/store"
	"github.com/ampco/intake-cli/internal/submit"
)

// Extractor turns PDF bytes into page text.
type Extractor interface {
	Extract(ctx context.Context, pdf []byte) (*pdftext.Document, error)
}

// Invoker sends one composed prompt to the language model.
type Invoker interface {
	Invoke(ctx context.Context, template, documentText string, extra llm.Context) (llm.Response, error)
}

// Prompts looks up instruction templates by name.
type Prompts interface {
	Get(name string) (string, error)
}

// Submitter creates ERP records and attaches source documents.
type Submitter interface {
	Submit(ctx context.Context, po *model.PurchaseOrder) (*submit.RecordRef, error)
	Attach(ctx context.Context, ref *submit.RecordRef, filename string, pdf []byte) (*submit.AttachmentRef, error)
}

// Result is the outcome of one flow run.
type Result struct {
	RunID   string          `json:"run_id"`
	Flow    model.Flow      `json:"flow"`
	Status  model.RunStatus `json:"status"`
	Partial bool            `json:"partial"`
	model.RunResult

	Order       *model.PurchaseOrder     `json:"order,omitempty"`
	Coordinates []photometric.Coordinate `json:"coordinates,omitempty"`
}

// Service wires the pipeline stages together.
type Service struct {
	cfg       *config.Config
	store     store.Store
	extractor Extractor
	invoker   Invoker
	prompts   Prompts
	submitter Submitter
	sharer    share.Sharer
	schema    *parse.Schema
	now       func() time.Time

	weeklyMu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithSubmitter enables ERP import. Without it the PO flow stops after
// validation.
func WithSubmitter(s Submitter) Option {
	return func(svc *Service) { svc.submitter = s }
}

// WithSharer sets where photometric reports are published.
func WithSharer(s share.Sharer) Option {
	return func(svc *Service) { svc.sharer = s }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(svc *Service) { svc.now = now }
}

// New creates a Service.
func New(cfg *config.Config, st store.Store, ex Extractor, inv Invoker, prompts Prompts, opts ...Option) *Service {
	s := &Service{
		cfg:       cfg,
		store:     st,
		extractor: ex,
		invoker:   inv,
		prompts:   prompts,
		schema: parse.PurchaseOrderSchema(
			cfg.Documents.PurchaseOrder.Required,
			cfg.Documents.PurchaseOrder.LineRequired,
		),
		now: time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// begin records a new run.
func (s *Service) begin(ctx context.Context, flow model.Flow, filename string) (*Result, *zap.Logger, error) {
	run, err := s.store.CreateRun(ctx, flow, filename)
	if err != nil {
		return nil, nil, eris.Wrap(err, "intake: create run")
	}
	log := zap.L().With(
		zap.String("run_id", run.ID),
		zap.String("flow", string(flow)),
		zap.String("filename", filename),
	)
	log.Info("intake: run started")
	return &Result{RunID: run.ID, Flow: flow, Status: model.RunStatusRunning}, log, nil
}

// finish stores the final state of res. A non-nil err marks the run failed
// and records the stage it failed in.
func (s *Service) finish(ctx context.Context, log *zap.Logger, res *Result, err error) (*Result, error) {
	if err != nil {
		res.Status = model.RunStatusFailed
		res.Partial = false
		if name, ok := stage.Of(err); ok {
			res.Stage = string(name)
		}
		res.Error = stage.Message(err)
		log.Error("intake: run failed", zap.String("stage", res.Stage), zap.Error(err))
	} else {
		log.Info("intake: run finished", zap.String("status", string(res.Status)))
	}

	// The run outcome is stored even when the request context is gone.
	saveCtx := context.WithoutCancel(ctx)
	if saveErr := s.store.UpdateRunResult(saveCtx, res.RunID, res.Status, &res.RunResult); saveErr != nil {
		log.Warn("intake: failed to save run result", zap.Error(saveErr))
	}
	return res, err
}

func (s *Service) template(name string) (string, error) {
	t, err := s.prompts.Get(name)
	if err != nil {
		return "", &stage.ModelInvocationError{Provider: "catalog", Err: err}
	}
	return t, nil
}
