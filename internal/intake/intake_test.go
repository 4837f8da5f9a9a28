package intake

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ampco/intake-cli/internal/config"
	"github.com/ampco/intake-cli/internal/llm"
	"github.com/ampco/intake-cli/internal/model"
	"github.com/ampco/intake-cli/internal/pdftext"
	"github.com/ampco/intake-cli/internal/share"
	"github.com/ampco/intake-cli/internal/store"
	"github.com/ampco/intake-cli/internal/submit"
)

var fixedNow = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

type fakeExtractor struct {
	doc   *pdftext.Document
	err   error
	calls int
}

func (f *fakeExtractor) Extract(_ context.Context, _ []byte) (*pdftext.Document, error) {
	f.calls++
	return f.doc, f.err
}

type fakeInvoker struct {
	mu       sync.Mutex
	calls    []invokeCall
	invokeFn func(template, text string, extra llm.Context) (llm.Response, error)
}

type invokeCall struct {
	template string
	text     string
	extra    llm.Context
	flow     string
}

func (f *fakeInvoker) Invoke(ctx context.Context, template, text string, extra llm.Context) (llm.Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, invokeCall{template: template, text: text, extra: extra, flow: llm.FlowFrom(ctx)})
	f.mu.Unlock()
	return f.invokeFn(template, text, extra)
}

// namePrompts returns each prompt name as its own template.
type namePrompts struct{}

func (namePrompts) Get(name string) (string, error) { return name, nil }

type missingPrompts struct{}

func (missingPrompts) Get(name string) (string, error) {
	return "", errors.New("llm: prompt " + name + " not found")
}

type fakeSubmitter struct {
	submitFn func(po *model.PurchaseOrder) (*submit.RecordRef, error)
	attachFn func(ref *submit.RecordRef, filename string, pdf []byte) (*submit.AttachmentRef, error)

	submitted []*model.PurchaseOrder
	attached  int
}

func (f *fakeSubmitter) Submit(_ context.Context, po *model.PurchaseOrder) (*submit.RecordRef, error) {
	f.submitted = append(f.submitted, po)
	return f.submitFn(po)
}

func (f *fakeSubmitter) Attach(_ context.Context, ref *submit.RecordRef, filename string, pdf []byte) (*submit.AttachmentRef, error) {
	f.attached++
	return f.attachFn(ref, filename, pdf)
}

type fakeSharer struct {
	shareFn func(dir, name string, data []byte) (*share.Link, error)
}

func (f *fakeSharer) Provider() string { return "fake" }

func (f *fakeSharer) Share(_ context.Context, dir, name string, data []byte) (*share.Link, error) {
	return f.shareFn(dir, name, data)
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Odoo.ImportEnabled = true
	cfg.Share.ReportDir = "/Documents/PER/Photometry Report"
	cfg.Weekly.LogPath = filepath.Join(t.TempDir(), "weekly.log")
	return cfg
}

func textDoc(pages ...string) *pdftext.Document {
	return pdftext.NewDocument(pages)
}

func storedRun(t *testing.T, st store.Store, id string) *model.Run {
	t.Helper()
	run, err := st.GetRun(context.Background(), id)
	require.NoError(t, err)
	return run
}
