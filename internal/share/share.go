// Package share uploads generated files to a file-sharing service and
// returns a public link to them.
package share

import (
	"context"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/ampco/intake-cli/internal/config"
	"github.com/ampco/intake-cli/internal/stage"
)

// Link is the public location of a shared file.
type Link struct {
	Page       string `json:"page"`
	Download   string `json:"download"`
	ID         string `json:"id,omitempty"`
	RemotePath string `json:"remote_path"`
}

// Sharer uploads data as dir/name and publishes it.
type Sharer interface {
	Share(ctx context.Context, dir, name string, data []byte) (*Link, error)
	Provider() string
}

// New returns the Sharer selected by cfg.Provider.
func New(ctx context.Context, cfg config.ShareConfig) (Sharer, error) {
	switch cfg.Provider {
	case "nextcloud", "":
		return NewNextcloud(cfg.Nextcloud), nil
	case "ftp":
		return NewFTP(cfg.FTP), nil
	case "s3":
		return NewS3(ctx, cfg.S3)
	}
	return nil, eris.Errorf("share: unknown provider %q", cfg.Provider)
}

func shareErr(provider string, err error) error {
	return &stage.ShareError{Provider: provider, Err: err}
}

// remotePath joins dir and name into a rooted slash path.
func remotePath(dir, name string) string {
	return path.Join("/", dir, name)
}

// escapePath escapes each segment of a slash path.
func escapePath(p string) string {
	segs := strings.Split(strings.Trim(p, "/"), "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}

func secondsOr(secs int, def time.Duration) time.Duration {
	if secs <= 0 {
		return def
	}
	return time.Duration(secs) * time.Second
}
