// Package submit turns a validated purchase order into an Odoo sale order
// and attaches the source document to it.
package submit

import (
	"context"
	"encoding/base64"
	"fmt"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ampco/intake-cli/internal/model"
	"github.com/ampco/intake-cli/internal/resilience"
	"github.com/ampco/intake-cli/internal/stage"
	"github.com/ampco/intake-cli/pkg/odoo"
)

const saleOrderModel = "sale.order"

// Config holds the submission settings.
type Config struct {
	DefaultCompany  string
	FallbackCompany string
	PONumberField   string // e.g. client_order_ref or x_studio_customer_po_number
	DeliveryField   string // order line field for the delivery date; empty disables it
	AttachmentNote  string
	WebURL          string
}

// RecordRef identifies a created sale order. Fields echoes the record as
// read back from Odoo.
type RecordRef struct {
	ID     int64       `json:"id"`
	Name   string      `json:"name"`
	URL    string      `json:"url,omitempty"`
	Fields odoo.Record `json:"fields,omitempty"`
}

// AttachmentRef identifies an uploaded document and its chatter message.
type AttachmentRef struct {
	AttachmentID int64 `json:"attachment_id"`
	MessageID    int64 `json:"message_id"`
}

// Submitter creates sale orders.
type Submitter struct {
	client odoo.Client
	finder *odoo.Finder
	cfg    Config
	retry  resilience.RetryConfig
}

// New returns a Submitter. Reference lookups go through finder.
func New(c odoo.Client, finder *odoo.Finder, cfg Config) *Submitter {
	if cfg.PONumberField == "" {
		cfg.PONumberField = "client_order_ref"
	}
	if cfg.AttachmentNote == "" {
		cfg.AttachmentNote = "Attached customer PO"
	}
	retry := resilience.DefaultRetryConfig()
	retry.ShouldRetry = odoo.IsRetryable
	retry.OnRetry = resilience.RetryLogger("odoo", "read")
	return &Submitter{client: c, finder: finder, cfg: cfg, retry: retry}
}

// Submit resolves the order's references and creates the sale order. When
// the target company is refused, it retries once against the fallback
// company.
func (s *Submitter) Submit(ctx context.Context, po *model.PurchaseOrder) (*RecordRef, error) {
	vals, err := s.payload(ctx, po)
	if err != nil {
		return nil, err
	}

	primary := strings.TrimSpace(po.Company)
	if primary == "" {
		primary = s.cfg.DefaultCompany
	}
	if err := s.setCompany(ctx, vals, primary); err != nil {
		return nil, err
	}

	id, err := s.client.Create(ctx, saleOrderModel, vals)
	if err != nil && odoo.IsInvalidCompany(err) && s.cfg.FallbackCompany != "" &&
		!strings.EqualFold(s.cfg.FallbackCompany, primary) {
		zap.L().Warn("submit: company refused, retrying with fallback",
			zap.String("company", primary),
			zap.String("fallback", s.cfg.FallbackCompany),
			zap.Error(err),
		)
		if cerr := s.setCompany(ctx, vals, s.cfg.FallbackCompany); cerr != nil {
			return nil, cerr
		}
		id, err = s.client.Create(ctx, saleOrderModel, vals)
	}
	if err != nil {
		return nil, &stage.SubmissionError{Err: eris.Wrap(err, "submit: create sale order")}
	}

	zap.L().Info("submit: created sale order",
		zap.Int64("id", id),
		zap.String("customer_po", po.CustomerPONumber),
	)

	ref := &RecordRef{ID: id, URL: s.recordURL(id)}
	s.readBack(ctx, ref, vals)
	return ref, nil
}

func (s *Submitter) payload(ctx context.Context, po *model.PurchaseOrder) (map[string]any, error) {
	if po == nil || len(po.Lines) == 0 {
		return nil, &stage.SubmissionError{Err: eris.New("submit: order has no lines")}
	}

	partnerID, err := s.lookup(ctx, "customer", "res.partner", po.Customer, "name")
	if err != nil {
		return nil, err
	}
	userID, err := s.lookup(ctx, "salesperson", "res.users", po.Salesperson, "name")
	if err != nil {
		return nil, err
	}

	lines := make([]any, 0, len(po.Lines))
	for i, l := range po.Lines {
		productID, err := s.lookup(ctx, fmt.Sprintf("order_lines[%d].product", i), "product.product", l.Product, "default_code", "name")
		if err != nil {
			return nil, err
		}
		line := map[string]any{
			"product_id":      productID,
			"product_uom_qty": l.Quantity.InexactFloat64(),
			"price_unit":      l.UnitPrice.InexactFloat64(),
		}
		if s.cfg.DeliveryField != "" && l.DeliveryDate != "" {
			line[s.cfg.DeliveryField] = odooDatetime(l.DeliveryDate)
		}
		lines = append(lines, []any{0, 0, line})
	}

	vals := map[string]any{
		"partner_id": partnerID,
		"user_id":    userID,
		"date_order": odooDatetime(po.OrderDate),
		"order_line": lines,
	}
	if po.CustomerPONumber != "" {
		vals[s.cfg.PONumberField] = po.CustomerPONumber
	}
	return vals, nil
}

func (s *Submitter) setCompany(ctx context.Context, vals map[string]any, name string) error {
	if strings.TrimSpace(name) == "" {
		delete(vals, "company_id")
		return nil
	}
	id, err := s.lookup(ctx, "company", "res.company", name, "name")
	if err != nil {
		return err
	}
	vals["company_id"] = id
	return nil
}

// lookup resolves one reference or fails with a SubmissionError naming the field.
func (s *Submitter) lookup(ctx context.Context, field, odooModel, query string, fields ...string) (int64, error) {
	m, ok, err := s.finder.Find(ctx, odooModel, query, fields...)
	if err != nil {
		return 0, &stage.SubmissionError{Err: eris.Wrapf(err, "submit: look up %s %q", field, query)}
	}
	if !ok {
		return 0, &stage.SubmissionError{Err: eris.Errorf("submit: %s %q not found in %s", field, query, odooModel)}
	}
	return m.ID, nil
}

var readBackFields = []string{"name", "partner_id", "user_id", "company_id", "date_order", "order_line"}

// readBack confirms the created record. Differences are logged only.
func (s *Submitter) readBack(ctx context.Context, ref *RecordRef, vals map[string]any) {
	fields := slices.Concat(readBackFields, []string{s.cfg.PONumberField})
	recs, err := resilience.DoVal(ctx, s.retry, func(ctx context.Context) ([]odoo.Record, error) {
		return s.client.Read(ctx, saleOrderModel, []int64{ref.ID}, fields)
	})
	if err != nil || len(recs) == 0 {
		zap.L().Warn("submit: read back failed", zap.Int64("id", ref.ID), zap.Error(err))
		return
	}
	rec := recs[0]
	ref.Name = rec.String("name")
	ref.Fields = rec

	for _, f := range []string{"partner_id", "user_id", "company_id"} {
		want, ok := vals[f].(int64)
		if !ok {
			continue
		}
		if got, _, _ := rec.Many2One(f); got != want {
			zap.L().Warn("submit: read back mismatch",
				zap.Int64("id", ref.ID),
				zap.String("field", f),
				zap.Int64("sent", want),
				zap.Int64("stored", got),
			)
		}
	}
	if sent, stored := len(vals["order_line"].([]any)), len(asList(rec["order_line"])); sent != stored {
		zap.L().Warn("submit: read back line count mismatch",
			zap.Int64("id", ref.ID),
			zap.Int("sent", sent),
			zap.Int("stored", stored),
		)
	}
	if po, ok := vals[s.cfg.PONumberField].(string); ok && rec.String(s.cfg.PONumberField) != po {
		zap.L().Warn("submit: read back mismatch",
			zap.Int64("id", ref.ID),
			zap.String("field", s.cfg.PONumberField),
			zap.String("sent", po),
			zap.String("stored", rec.String(s.cfg.PONumberField)),
		)
	}
}

// Attach uploads the source PDF to the sale order and posts an audit note.
// The sale order is left in place when this fails.
func (s *Submitter) Attach(ctx context.Context, ref *RecordRef, filename string, pdf []byte) (*AttachmentRef, error) {
	attachmentID, err := s.client.Create(ctx, "ir.attachment", map[string]any{
		"name":      filename,
		"type":      "binary",
		"datas":     base64.StdEncoding.EncodeToString(pdf),
		"res_model": saleOrderModel,
		"res_id":    ref.ID,
		"mimetype":  "application/pdf",
	})
	if err != nil {
		return nil, &stage.AttachmentError{RecordID: ref.ID, Err: eris.Wrap(err, "submit: create attachment")}
	}

	msgID, err := s.client.MessagePost(ctx, saleOrderModel, ref.ID, s.cfg.AttachmentNote, []int64{attachmentID})
	if err != nil {
		return nil, &stage.AttachmentError{RecordID: ref.ID, Err: eris.Wrap(err, "submit: post attachment note")}
	}

	zap.L().Info("submit: attached document",
		zap.Int64("order_id", ref.ID),
		zap.Int64("attachment_id", attachmentID),
		zap.String("filename", filename),
	)
	return &AttachmentRef{AttachmentID: attachmentID, MessageID: msgID}, nil
}

func (s *Submitter) recordURL(id int64) string {
	if s.cfg.WebURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/odoo/sales/%d", strings.TrimRight(s.cfg.WebURL, "/"), id)
}

// odooDatetime turns an ISO date into Odoo's datetime string.
func odooDatetime(isoDate string) string {
	return isoDate + " 00:00:00"
}

func asList(v any) []any {
	l, _ := v.([]any)
	return l
}
