// Package odoo provides XML-RPC access to the Odoo external API.
package odoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/rpc"
	"strings"
	"sync"
	"time"

	"github.com/kolo/xmlrpc"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
	"go.uber.org/zap"
)

// Client defines the Odoo operations used by the intake pipeline.
type Client interface {
	SearchRead(ctx context.Context, model string, domain []any, fields []string, limit int) ([]Record, error)
	Create(ctx context.Context, model string, vals map[string]any) (int64, error)
	Read(ctx context.Context, model string, ids []int64, fields []string) ([]Record, error)
	MessagePost(ctx context.Context, model string, id int64, body string, attachmentIDs []int64) (int64, error)
}

// Record is one row returned by search_read or read.
type Record map[string]any

// ID returns the record's "id" field.
func (r Record) ID() int64 {
	id, _ := AsInt64(r["id"])
	return id
}

// String returns a char field, or "" when the field is unset (Odoo sends false).
func (r Record) String(field string) string {
	s, _ := r[field].(string)
	return s
}

// Many2One splits a many2one value [id, display_name]. ok is false for an
// empty relation.
func (r Record) Many2One(field string) (id int64, name string, ok bool) {
	pair, isList := r[field].([]any)
	if !isList || len(pair) < 1 {
		return 0, "", false
	}
	id, ok = AsInt64(pair[0])
	if len(pair) > 1 {
		name, _ = pair[1].(string)
	}
	return id, name, ok
}

// AsInt64 converts an XML-RPC number to int64.
func AsInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}

// Config holds connection settings for one Odoo database.
type Config struct {
	URL      string
	DB       string
	Username string
	Password string
	Timeout  time.Duration
}

// Option configures a Session.
type Option func(*Session)

// WithRateLimit sets a per-second limit on XML-RPC calls.
// A burst equal to the integer portion of rps is allowed.
func WithRateLimit(rps float64) Option {
	return func(s *Session) {
		if rps > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		}
	}
}

// WithTransport replaces the HTTP transport used for both endpoints.
func WithTransport(rt http.RoundTripper) Option {
	return func(s *Session) { s.transport = rt }
}

// Session is the process-wide authenticated handle to Odoo. The uid is
// obtained lazily on first use and reused; a failed login is not cached.
type Session struct {
	cfg       Config
	transport http.RoundTripper
	limiter   *rate.Limiter

	common *xmlrpc.Client
	object *xmlrpc.Client

	mu  sync.Mutex
	uid int64
}

// NewSession builds the XML-RPC endpoints. No network call is made.
func NewSession(cfg Config, opts ...Option) (*Session, error) {
	if cfg.URL == "" {
		return nil, eris.New("odoo: url is required")
	}
	s := &Session{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	if s.transport == nil {
		t := http.DefaultTransport.(*http.Transport).Clone()
		if cfg.Timeout > 0 {
			t.ResponseHeaderTimeout = cfg.Timeout
		}
		s.transport = t
	}

	base := strings.TrimRight(cfg.URL, "/")
	var err error
	if s.common, err = xmlrpc.NewClient(base+"/xmlrpc/2/common", s.transport); err != nil {
		return nil, eris.Wrap(err, "odoo: common endpoint")
	}
	if s.object, err = xmlrpc.NewClient(base+"/xmlrpc/2/object", s.transport); err != nil {
		return nil, eris.Wrap(err, "odoo: object endpoint")
	}
	return s, nil
}

// Close releases both endpoints.
func (s *Session) Close() error {
	return errors.Join(s.common.Close(), s.object.Close())
}

// UID authenticates on first call and returns the cached user id afterwards.
func (s *Session) UID(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uid != 0 {
		return s.uid, nil
	}

	var reply any
	args := []any{s.cfg.DB, s.cfg.Username, s.cfg.Password, map[string]any{}}
	if err := s.call(ctx, s.common, "authenticate", args, &reply); err != nil {
		return 0, eris.Wrap(err, "odoo: authenticate")
	}
	uid, ok := AsInt64(reply)
	if !ok || uid == 0 {
		return 0, eris.Errorf("odoo: authentication failed for user %q on db %q", s.cfg.Username, s.cfg.DB)
	}
	s.uid = uid
	zap.L().Debug("odoo: authenticated", zap.String("db", s.cfg.DB), zap.Int64("uid", uid))
	return uid, nil
}

// ExecuteKw calls execute_kw on the object endpoint and decodes the result into reply.
func (s *Session) ExecuteKw(ctx context.Context, model, method string, args []any, kwargs map[string]any, reply any) error {
	uid, err := s.UID(ctx)
	if err != nil {
		return err
	}
	if args == nil {
		args = []any{}
	}
	if kwargs == nil {
		kwargs = map[string]any{}
	}
	params := []any{s.cfg.DB, uid, s.cfg.Password, model, method, args, kwargs}
	if err := s.call(ctx, s.object, "execute_kw", params, reply); err != nil {
		return eris.Wrapf(err, "odoo: %s.%s", model, method)
	}
	return nil
}

// call runs one XML-RPC request. The request itself cannot be aborted, but
// the caller stops waiting when ctx ends.
func (s *Session) call(ctx context.Context, c *xmlrpc.Client, method string, args []any, reply any) error {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "odoo: rate limit")
		}
	}
	call := c.Go(method, args, reply, make(chan *rpc.Call, 1))
	select {
	case <-ctx.Done():
		return ctx.Err()
	case done := <-call.Done:
		if done.Error != nil {
			if msg, ok := FaultMessage(done.Error); ok {
				return &Fault{Message: msg}
			}
			return done.Error
		}
		return nil
	}
}

// SearchOrder keeps search_read results stable under a limit.
const SearchOrder = "id asc"

// SearchRead runs search_read with the given domain, ordered by id.
func (s *Session) SearchRead(ctx context.Context, model string, domain []any, fields []string, limit int) ([]Record, error) {
	kwargs := map[string]any{"fields": fields, "order": SearchOrder}
	if limit > 0 {
		kwargs["limit"] = limit
	}
	var reply any
	if err := s.ExecuteKw(ctx, model, "search_read", []any{domain}, kwargs, &reply); err != nil {
		return nil, err
	}
	return toRecords(reply)
}

// Create inserts one record and returns its id.
func (s *Session) Create(ctx context.Context, model string, vals map[string]any) (int64, error) {
	var reply any
	if err := s.ExecuteKw(ctx, model, "create", []any{vals}, nil, &reply); err != nil {
		return 0, err
	}
	id, ok := AsInt64(reply)
	if !ok {
		return 0, eris.Errorf("odoo: %s.create returned %T, want id", model, reply)
	}
	return id, nil
}

// Read fetches records by id.
func (s *Session) Read(ctx context.Context, model string, ids []int64, fields []string) ([]Record, error) {
	var reply any
	if err := s.ExecuteKw(ctx, model, "read", []any{ids}, map[string]any{"fields": fields}, &reply); err != nil {
		return nil, err
	}
	return toRecords(reply)
}

// MessagePost adds a chatter message with attachments and returns the message id.
func (s *Session) MessagePost(ctx context.Context, model string, id int64, body string, attachmentIDs []int64) (int64, error) {
	kwargs := map[string]any{"body": body}
	if len(attachmentIDs) > 0 {
		kwargs["attachment_ids"] = attachmentIDs
	}
	var reply any
	if err := s.ExecuteKw(ctx, model, "message_post", []any{[]int64{id}}, kwargs, &reply); err != nil {
		return 0, err
	}
	msgID, _ := AsInt64(reply)
	return msgID, nil
}

func toRecords(reply any) ([]Record, error) {
	if reply == nil {
		return nil, nil
	}
	rows, ok := reply.([]any)
	if !ok {
		return nil, eris.Errorf("odoo: expected a list of records, got %T", reply)
	}
	out := make([]Record, 0, len(rows))
	for i, row := range rows {
		m, ok := row.(map[string]any)
		if !ok {
			return nil, eris.New(fmt.Sprintf("odoo: record %d is %T", i, row))
		}
		out = append(out, Record(m))
	}
	return out, nil
}
