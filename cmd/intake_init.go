package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ampco/intake-cli/internal/intake"
	"github.com/ampco/intake-cli/internal/llm"
	"github.com/ampco/intake-cli/internal/ocr"
	"github.com/ampco/intake-cli/internal/pdftext"
	"github.com/ampco/intake-cli/internal/share"
	"github.com/ampco/intake-cli/internal/store"
	"github.com/ampco/intake-cli/internal/submit"
	"github.com/ampco/intake-cli/pkg/odoo"
)

// intakeEnv holds the store, the remote session and the intake service
// needed by the flow commands and serve.
type intakeEnv struct {
	Store   store.Store
	Service *intake.Service
	Odoo    *odoo.Session // nil when import is disabled
}

// Close releases resources held by the environment.
func (e *intakeEnv) Close() {
	if e.Odoo != nil {
		_ = e.Odoo.Close()
	}
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	return store.Open(ctx, cfg.Store)
}

// initIntake validates the config for mode and builds the intake service.
// Callers should defer env.Close().
func initIntake(ctx context.Context, mode string) (*intakeEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	env := &intakeEnv{Store: st}

	completer, err := llm.New(ctx, cfg)
	if err != nil {
		env.Close()
		return nil, err
	}
	catalog, err := llm.LoadCatalog(cfg.Prompts.Path)
	if err != nil {
		env.Close()
		return nil, err
	}

	var extractor intake.Extractor
	if mode != "weekly" {
		extractor, err = initExtractor()
		if err != nil {
			env.Close()
			return nil, err
		}
	}

	var opts []intake.Option
	if (mode == "po" || mode == "serve") && cfg.Odoo.ImportEnabled {
		sub, session, err := initSubmitter()
		if err != nil {
			env.Close()
			return nil, err
		}
		env.Odoo = session
		opts = append(opts, intake.WithSubmitter(sub))
	}
	if mode == "photometric" || mode == "serve" {
		sharer, err := share.New(ctx, cfg.Share)
		if err != nil {
			env.Close()
			return nil, err
		}
		opts = append(opts, intake.WithSharer(sharer))
		zap.L().Debug("share provider enabled", zap.String("provider", sharer.Provider()))
	}

	env.Service = intake.New(cfg, st, extractor, llm.NewInvoker(completer), catalog, opts...)
	return env, nil
}

func initExtractor() (*pdftext.Extractor, error) {
	runner := pdftext.ExecRunner{}
	reader := pdftext.NewPdfToText(cfg.OCR.PdfToTextPath, runner)
	engine, err := ocr.New(cfg.OCR, reader, runner)
	if err != nil {
		return nil, err
	}
	return pdftext.NewExtractor(reader, engine), nil
}

func initSubmitter() (*submit.Submitter, *odoo.Session, error) {
	var opts []odoo.Option
	if cfg.Odoo.RateLimit > 0 {
		opts = append(opts, odoo.WithRateLimit(cfg.Odoo.RateLimit))
	}
	session, err := odoo.NewSession(odoo.Config{
		URL:      cfg.Odoo.URL,
		DB:       cfg.Odoo.DB,
		Username: cfg.Odoo.Username,
		Password: cfg.Odoo.Password,
		Timeout:  time.Duration(cfg.Odoo.TimeoutSecs) * time.Second,
	}, opts...)
	if err != nil {
		return nil, nil, eris.Wrap(err, "init odoo session")
	}

	sub := submit.New(session, odoo.NewFinder(session, cfg.Odoo.CandidateLimit), submit.Config{
		DefaultCompany:  cfg.Odoo.DefaultCompany,
		FallbackCompany: cfg.Odoo.FallbackCompany,
		PONumberField:   cfg.Odoo.PONumberField,
		DeliveryField:   cfg.Odoo.DeliveryField,
		AttachmentNote:  cfg.Odoo.AttachmentNote,
		WebURL:          cfg.Odoo.WebURL,
	})
	zap.L().Info("odoo import enabled", zap.String("url", cfg.Odoo.URL), zap.String("db", cfg.Odoo.DB))
	return sub, session, nil
}
