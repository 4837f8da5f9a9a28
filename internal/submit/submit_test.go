package submit

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ampco/intake-cli/internal/model"
	"github.com/ampco/intake-cli/internal/stage"
	"github.com/ampco/intake-cli/pkg/odoo"
)

// fakeERP is an in-memory odoo.Client. search_read understands the
// operators the finder sends.
type fakeERP struct {
	tables      map[string][]odoo.Record
	creates     []map[string]any
	createFn    func(model string, vals map[string]any, n int) (int64, error)
	readFn      func(ids []int64) ([]odoo.Record, error)
	postFn      func(id int64, body string, attachmentIDs []int64) (int64, error)
	attachments []map[string]any
}

func newFakeERP() *fakeERP {
	return &fakeERP{tables: map[string][]odoo.Record{
		"res.partner": {
			{"id": int64(3), "name": "Acme Lighting Ltd"},
			{"id": int64(4), "name": "Acme Lamps"},
		},
		"res.users": {
			{"id": int64(2), "name": "Jane Wong"},
		},
		"res.company": {
			{"id": int64(1), "name": "AMPCO"},
			{"id": int64(5), "name": "AMPCO HK"},
		},
		"product.product": {
			{"id": int64(30), "default_code": "LED-100", "name": "LED Panel 100W"},
			{"id": int64(31), "default_code": false, "name": "Track Light 20W"},
		},
	}}
}

func likeToRegexp(pattern string) *regexp.Regexp {
	q := regexp.QuoteMeta(pattern)
	q = strings.ReplaceAll(q, "%", ".*")
	return regexp.MustCompile("(?i)^" + q + "$")
}

func (f *fakeERP) SearchRead(_ context.Context, model string, domain []any, fields []string, limit int) ([]odoo.Record, error) {
	cond := domain[0].([]any)
	field, op, value := cond[0].(string), cond[1].(string), cond[2].(string)
	var out []odoo.Record
	for _, r := range f.tables[model] {
		v, ok := r[field].(string)
		if !ok {
			continue
		}
		var hit bool
		switch op {
		case "=":
			hit = v == value
		case "=ilike":
			hit = likeToRegexp(value).MatchString(v)
		case "ilike":
			hit = strings.Contains(strings.ToLower(v), strings.ToLower(value))
		}
		if hit {
			out = append(out, odoo.Record{"id": r["id"], field: v})
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakeERP) Create(_ context.Context, model string, vals map[string]any) (int64, error) {
	if model == "ir.attachment" {
		f.attachments = append(f.attachments, vals)
		return 900, nil
	}
	snapshot := make(map[string]any, len(vals))
	for k, v := range vals {
		snapshot[k] = v
	}
	f.creates = append(f.creates, snapshot)
	if f.createFn != nil {
		return f.createFn(model, vals, len(f.creates))
	}
	return 42, nil
}

func (f *fakeERP) Read(_ context.Context, _ string, ids []int64, _ []string) ([]odoo.Record, error) {
	if f.readFn != nil {
		return f.readFn(ids)
	}
	last := f.creates[len(f.creates)-1]
	return []odoo.Record{{
		"id":               ids[0],
		"name":             "S00042",
		"partner_id":       []any{last["partner_id"], "Acme Lighting Ltd"},
		"user_id":          []any{last["user_id"], "Jane Wong"},
		"company_id":       []any{last["company_id"], "AMPCO"},
		"order_line":       []any{int64(1), int64(2)},
		"client_order_ref": last["client_order_ref"],
	}}, nil
}

func (f *fakeERP) MessagePost(_ context.Context, _ string, id int64, body string, attachmentIDs []int64) (int64, error) {
	if f.postFn != nil {
		return f.postFn(id, body, attachmentIDs)
	}
	return 77, nil
}

func testOrder() *model.PurchaseOrder {
	return &model.PurchaseOrder{
		Customer:         "Acme Lighting",
		Salesperson:      "Jane Wong",
		OrderDate:        "2024-03-15",
		CustomerPONumber: "PO-7781",
		Lines: []model.OrderLine{
			{Product: "LED-100", Quantity: decimal.NewFromInt(10), UnitPrice: decimal.RequireFromString("12.50"), DeliveryDate: "2024-04-01"},
			{Product: "Track Light 20W", Quantity: decimal.NewFromInt(4), UnitPrice: decimal.Zero},
		},
	}
}

func newTestSubmitter(erp *fakeERP) *Submitter {
	return New(erp, odoo.NewFinder(erp, 50), Config{
		DefaultCompany:  "AMPCO",
		FallbackCompany: "AMPCO HK",
		DeliveryField:   "x_studio_delivery_date",
		WebURL:          "https://erp.example.com/",
	})
}

func TestSubmit_BuildsPayload(t *testing.T) {
	erp := newFakeERP()
	ref, err := newTestSubmitter(erp).Submit(context.Background(), testOrder())
	require.NoError(t, err)

	assert.Equal(t, int64(42), ref.ID)
	assert.Equal(t, "S00042", ref.Name)
	assert.Equal(t, "https://erp.example.com/odoo/sales/42", ref.URL)

	require.Len(t, erp.creates, 1)
	vals := erp.creates[0]
	assert.Equal(t, int64(3), vals["partner_id"])
	assert.Equal(t, int64(2), vals["user_id"])
	assert.Equal(t, int64(1), vals["company_id"])
	assert.Equal(t, "2024-03-15 00:00:00", vals["date_order"])
	assert.Equal(t, "PO-7781", vals["client_order_ref"])

	lines := vals["order_line"].([]any)
	require.Len(t, lines, 2)
	first := lines[0].([]any)
	assert.Equal(t, 0, first[0])
	assert.Equal(t, 0, first[1])
	assert.Equal(t, map[string]any{
		"product_id":             int64(30),
		"product_uom_qty":        10.0,
		"price_unit":             12.5,
		"x_studio_delivery_date": "2024-04-01 00:00:00",
	}, first[2])
	second := lines[1].([]any)[2].(map[string]any)
	assert.Equal(t, int64(31), second["product_id"])
	assert.NotContains(t, second, "x_studio_delivery_date")
}

func TestSubmit_CompanyFromRecord(t *testing.T) {
	erp := newFakeERP()
	po := testOrder()
	po.Company = "AMPCO HK"

	_, err := newTestSubmitter(erp).Submit(context.Background(), po)
	require.NoError(t, err)
	assert.Equal(t, int64(5), erp.creates[0]["company_id"])
}

func TestSubmit_FallbackCompanyRetriedOnce(t *testing.T) {
	erp := newFakeERP()
	erp.createFn = func(_ string, vals map[string]any, n int) (int64, error) {
		if n == 1 {
			return 0, &odoo.Fault{Message: "Incompatible companies on records"}
		}
		return 43, nil
	}

	ref, err := newTestSubmitter(erp).Submit(context.Background(), testOrder())
	require.NoError(t, err)
	assert.Equal(t, int64(43), ref.ID)
	require.Len(t, erp.creates, 2)
	assert.Equal(t, int64(1), erp.creates[0]["company_id"])
	assert.Equal(t, int64(5), erp.creates[1]["company_id"])
}

func TestSubmit_FallbackFailsSurfacesSubmissionError(t *testing.T) {
	erp := newFakeERP()
	erp.createFn = func(string, map[string]any, int) (int64, error) {
		return 0, &odoo.Fault{Message: "Incompatible companies on records"}
	}

	_, err := newTestSubmitter(erp).Submit(context.Background(), testOrder())
	require.Error(t, err)

	var se *stage.SubmissionError
	assert.ErrorAs(t, err, &se)
	assert.Len(t, erp.creates, 2)
}

func TestSubmit_OtherFaultNotRetried(t *testing.T) {
	erp := newFakeERP()
	erp.createFn = func(string, map[string]any, int) (int64, error) {
		return 0, &odoo.Fault{Message: "Missing required value for field pricelist_id"}
	}

	_, err := newTestSubmitter(erp).Submit(context.Background(), testOrder())
	var se *stage.SubmissionError
	require.ErrorAs(t, err, &se)
	assert.Len(t, erp.creates, 1)
}

func TestSubmit_UnresolvedReference(t *testing.T) {
	erp := newFakeERP()
	po := testOrder()
	po.Salesperson = "Nobody Known"

	_, err := newTestSubmitter(erp).Submit(context.Background(), po)
	var se *stage.SubmissionError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, err.Error(), `salesperson "Nobody Known" not found in res.users`)
	assert.Empty(t, erp.creates)
}

func TestSubmit_ReadBackFailureNotFatal(t *testing.T) {
	erp := newFakeERP()
	erp.readFn = func([]int64) ([]odoo.Record, error) {
		return nil, &odoo.Fault{Message: "access denied"}
	}

	ref, err := newTestSubmitter(erp).Submit(context.Background(), testOrder())
	require.NoError(t, err)
	assert.Equal(t, int64(42), ref.ID)
	assert.Empty(t, ref.Name)
}

func TestAttach(t *testing.T) {
	erp := newFakeERP()
	var posted []int64
	var note string
	erp.postFn = func(id int64, body string, ids []int64) (int64, error) {
		assert.Equal(t, int64(42), id)
		note = body
		posted = ids
		return 77, nil
	}

	ref, err := newTestSubmitter(erp).Attach(context.Background(), &RecordRef{ID: 42}, "po-7781.pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, &AttachmentRef{AttachmentID: 900, MessageID: 77}, ref)
	assert.Equal(t, []int64{900}, posted)
	assert.Equal(t, "Attached customer PO", note)

	require.Len(t, erp.attachments, 1)
	a := erp.attachments[0]
	assert.Equal(t, "JVBERi0xLjQ=", a["datas"])
	assert.Equal(t, "sale.order", a["res_model"])
	assert.Equal(t, int64(42), a["res_id"])
	assert.Equal(t, "application/pdf", a["mimetype"])
}

func TestAttach_FailureIsAttachmentError(t *testing.T) {
	erp := newFakeERP()
	erp.postFn = func(int64, string, []int64) (int64, error) {
		return 0, errors.New("connection reset by peer")
	}

	_, err := newTestSubmitter(erp).Attach(context.Background(), &RecordRef{ID: 42}, "po.pdf", []byte("%PDF"))
	var ae *stage.AttachmentError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, int64(42), ae.RecordID)
	assert.Empty(t, erp.creates)
}
