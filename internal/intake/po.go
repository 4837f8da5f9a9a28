package intake

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ampco/intake-cli/internal/llm"
	"github.com/ampco/intake-cli/internal/model"
	"github.com/ampco/intake-cli/internal/parse"
	"github.com/ampco/intake-cli/internal/stage"
)

// PurchaseOrder imports a customer PO: extract, invoke the po prompt with
// the operator's salesperson forced, parse, validate, then submit to Odoo
// and attach the PDF. An attachment failure leaves the run partial.
func (s *Service) PurchaseOrder(ctx context.Context, filename string, pdf []byte, salesperson string) (*Result, error) {
	ctx = llm.WithFlow(ctx, string(model.FlowPurchaseOrder))
	res, log, err := s.begin(ctx, model.FlowPurchaseOrder, filename)
	if err != nil {
		return nil, err
	}

	salesperson = strings.TrimSpace(salesperson)
	if salesperson == "" {
		return s.finish(ctx, log, res, &stage.ValidationError{Field: "salesperson", Msg: "required"})
	}

	doc, err := s.extractor.Extract(ctx, pdf)
	if err != nil {
		return s.finish(ctx, log, res, err)
	}
	log.Debug("intake: extracted", zap.Int("pages", doc.Len()), zap.Bool("ocr", doc.UsedOCR()))

	tmpl, err := s.template(llm.PromptPO)
	if err != nil {
		return s.finish(ctx, log, res, err)
	}
	resp, err := s.invoker.Invoke(ctx, tmpl, doc.Flatten(), llm.Context{
		Forced: map[string]string{"salesperson": salesperson},
	})
	if err != nil {
		return s.finish(ctx, log, res, err)
	}
	resp = llm.ForceSalesperson(resp, salesperson)

	rec, err := parse.ParseAssignments(string(resp))
	if err != nil {
		return s.finish(ctx, log, res, err)
	}
	po, err := parse.DecodePurchaseOrder(rec, s.schema)
	if err != nil {
		return s.finish(ctx, log, res, err)
	}
	res.Order = po
	res.Summary = rec.Render()

	if s.submitter == nil || !s.cfg.Odoo.ImportEnabled {
		res.Status = model.RunStatusSkipped
		res.Messages = append(res.Messages, "Odoo import skipped: import disabled")
		return s.finish(ctx, log, res, nil)
	}

	ref, err := s.submitter.Submit(ctx, po)
	if err != nil {
		return s.finish(ctx, log, res, err)
	}
	res.RecordID = ref.ID
	res.RecordName = ref.Name
	res.RecordURL = ref.URL
	res.Messages = append(res.Messages, fmt.Sprintf("Created sale order %s (id %d)", ref.Name, ref.ID))

	att, err := s.submitter.Attach(ctx, ref, filename, pdf)
	if err != nil {
		log.Warn("intake: attachment failed", zap.Int64("record_id", ref.ID), zap.Error(err))
		res.Status = model.RunStatusPartial
		res.Partial = true
		res.Stage = string(stage.Attach)
		res.Error = stage.Message(err)
		res.Messages = append(res.Messages, "Attachment failed: "+err.Error())
		return s.finish(ctx, log, res, nil)
	}
	res.AttachmentID = att.AttachmentID
	res.Messages = append(res.Messages, fmt.Sprintf("Attached %s (attachment id %d)", filename, att.AttachmentID))

	res.Status = model.RunStatusComplete
	return s.finish(ctx, log, res, nil)
}
