package intake

import (
	"context"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ampco/intake-cli/internal/llm"
	"github.com/ampco/intake-cli/internal/model"
	"github.com/ampco/intake-cli/internal/photometric"
	"github.com/ampco/intake-cli/internal/share"
)

// Photometric summarizes a photometric test report. The source PDF is
// published to the report folder while the model builds the results table
// and the overall summary.
func (s *Service) Photometric(ctx context.Context, filename string, pdf []byte) (*Result, error) {
	ctx = llm.WithFlow(ctx, string(model.FlowPhotometric))
	res, log, err := s.begin(ctx, model.FlowPhotometric, filename)
	if err != nil {
		return nil, err
	}

	doc, err := s.extractor.Extract(ctx, pdf)
	if err != nil {
		return s.finish(ctx, log, res, err)
	}

	var (
		link    *share.Link
		table   string
		overall llm.Response
	)

	g, gCtx := errgroup.WithContext(ctx)

	if s.sharer != nil {
		g.Go(func() error {
			l, shareErr := s.sharer.Share(gCtx, s.cfg.Share.ReportDir, filename, pdf)
			if shareErr != nil {
				return shareErr
			}
			link = l
			log.Info("intake: report shared",
				zap.String("provider", s.sharer.Provider()),
				zap.String("remote_path", l.RemotePath),
			)
			return nil
		})
	}

	g.Go(func() error {
		tmpl, tmplErr := s.template(llm.PromptPhotometricTable)
		if tmplErr != nil {
			return tmplErr
		}
		md, invErr := s.invoker.Invoke(gCtx, tmpl, doc.Flatten(), llm.Context{})
		if invErr != nil {
			return invErr
		}
		table = photometric.InsertStatsRows(string(md))

		tmpl, tmplErr = s.template(llm.PromptPhotometricSummary)
		if tmplErr != nil {
			return tmplErr
		}
		overall, invErr = s.invoker.Invoke(gCtx, tmpl, table, llm.Context{})
		return invErr
	})

	if err := g.Wait(); err != nil {
		return s.finish(ctx, log, res, err)
	}

	res.Coordinates = slices.Collect(photometric.ScanCoordinates(table))

	in := photometric.SummaryInput{
		Title:       strings.TrimSuffix(filename, filepath.Ext(filename)),
		GeneratedAt: s.now(),
		Overall:     string(overall),
		Table:       table,
		Coordinates: res.Coordinates,
		Filename:    filename,
	}
	if link != nil {
		in.ShareURL = link.Page
		res.ShareURL = link.Page
		res.Messages = append(res.Messages, "Shared report: "+link.Page)
	}
	res.Summary = photometric.BuildSummary(in)
	res.Status = model.RunStatusComplete
	return s.finish(ctx, log, res, nil)
}
