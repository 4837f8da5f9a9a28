package share

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/studio-b12/gowebdav"
	"go.uber.org/zap"

	"github.com/ampco/intake-cli/internal/config"
	"github.com/ampco/intake-cli/internal/resilience"
)

const (
	ocsSharesPath   = "/ocs/v2.php/apps/files_sharing/api/v1/shares"
	publicLinkShare = "3"
	readPermission  = "1"
)

// Nextcloud uploads over WebDAV and publishes through the OCS share API.
type Nextcloud struct {
	base     string
	username string
	password string
	dav      *gowebdav.Client
	http     *http.Client
	retry    resilience.RetryConfig
}

// NewNextcloud returns a Nextcloud sharer. No network call is made.
func NewNextcloud(cfg config.NextcloudConfig) *Nextcloud {
	base := strings.TrimRight(cfg.URL, "/")
	dav := gowebdav.NewClient(base+"/remote.php/dav/files/"+url.PathEscape(cfg.Username), cfg.Username, cfg.Password)
	dav.SetTimeout(60 * time.Second)

	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = resilience.RetryLogger("nextcloud", "ocs")
	return &Nextcloud{
		base:     base,
		username: cfg.Username,
		password: cfg.Password,
		dav:      dav,
		http:     &http.Client{Timeout: 30 * time.Second},
		retry:    retry,
	}
}

func (n *Nextcloud) Provider() string { return "nextcloud" }

// Share creates dir, uploads the file and returns its public link, reusing
// an existing public link share when there is one.
//
// The WebDAV client does not take a context; ctx only bounds the OCS calls.
func (n *Nextcloud) Share(ctx context.Context, dir, name string, data []byte) (*Link, error) {
	remote := remotePath(dir, name)

	if err := n.dav.MkdirAll(remotePath(dir, ""), 0o755); err != nil {
		return nil, shareErr(n.Provider(), eris.Wrapf(err, "nextcloud: create folder %s", dir))
	}
	if err := n.dav.Write(remote, data, 0o644); err != nil {
		return nil, shareErr(n.Provider(), eris.Wrapf(err, "nextcloud: upload %s", remote))
	}
	zap.L().Info("nextcloud: uploaded", zap.String("path", remote), zap.Int("bytes", len(data)))

	link, err := resilience.DoVal(ctx, n.retry, func(ctx context.Context) (*Link, error) {
		return n.existingShare(ctx, remote)
	})
	if err != nil {
		return nil, shareErr(n.Provider(), err)
	}
	if link == nil {
		if link, err = n.createShare(ctx, remote); err != nil {
			return nil, shareErr(n.Provider(), err)
		}
	}
	link.RemotePath = remote
	return link, nil
}

type ocsShare struct {
	ID        any    `json:"id"`
	ShareType any    `json:"share_type"`
	URL       string `json:"url"`
}

type ocsEnvelope struct {
	OCS struct {
		Data json.RawMessage `json:"data"`
	} `json:"ocs"`
}

func (n *Nextcloud) existingShare(ctx context.Context, remote string) (*Link, error) {
	q := url.Values{"path": {remote}, "format": {"json"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.base+ocsSharesPath+"?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "nextcloud: build share query")
	}
	shares, status, err := n.doOCS(req)
	if status == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "nextcloud: query shares")
	}
	for _, s := range shares {
		if fmt.Sprint(s.ShareType) == publicLinkShare {
			return s.link()
		}
	}
	return nil, nil
}

func (n *Nextcloud) createShare(ctx context.Context, remote string) (*Link, error) {
	form := url.Values{"shareType": {publicLinkShare}, "path": {remote}, "permissions": {readPermission}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.base+ocsSharesPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, eris.Wrap(err, "nextcloud: build share request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	shares, _, err := n.doOCS(req)
	if err != nil {
		return nil, eris.Wrap(err, "nextcloud: create share")
	}
	if len(shares) == 0 {
		return nil, eris.New("nextcloud: no share details returned")
	}
	return shares[0].link()
}

// doOCS sends an OCS request and decodes its data, which is either one
// share object or a list of them.
func (n *Nextcloud) doOCS(req *http.Request) ([]ocsShare, int, error) {
	req.SetBasicAuth(n.username, n.password)
	req.Header.Set("OCS-APIRequest", "true")
	req.Header.Set("Accept", "application/json")

	resp, err := n.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, resp.StatusCode, eris.Wrap(err, "read body")
	}
	if resp.StatusCode >= 400 {
		err := eris.Errorf("status %d: %s", resp.StatusCode, snippet(body))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resp.StatusCode, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, resp.StatusCode, err
	}

	var env ocsEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, resp.StatusCode, eris.Wrap(err, "decode ocs response")
	}
	data := bytes.TrimSpace(env.OCS.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, resp.StatusCode, nil
	}
	if data[0] == '[' {
		var list []ocsShare
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, resp.StatusCode, eris.Wrap(err, "decode ocs shares")
		}
		return list, resp.StatusCode, nil
	}
	var one ocsShare
	if err := json.Unmarshal(data, &one); err != nil {
		return nil, resp.StatusCode, eris.Wrap(err, "decode ocs share")
	}
	return []ocsShare{one}, resp.StatusCode, nil
}

func (s ocsShare) link() (*Link, error) {
	if s.URL == "" || s.ID == nil {
		return nil, eris.New("nextcloud: share payload missing url or id")
	}
	return &Link{
		Page:     s.URL,
		Download: strings.TrimRight(s.URL, "/") + "/download",
		ID:       fmt.Sprint(s.ID),
	}, nil
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
