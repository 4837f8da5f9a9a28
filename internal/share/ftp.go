package share

import (
	"bytes"
	"context"
	"io"
	"net"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ampco/intake-cli/internal/config"
)

// ftpConn is the subset of *ftp.ServerConn used for uploads.
type ftpConn interface {
	Login(user, password string) error
	MakeDir(path string) error
	Stor(path string, r io.Reader) error
	Quit() error
}

// FTP uploads to an FTP server and links to the files through a public
// HTTP base URL that mirrors the FTP tree.
type FTP struct {
	host     string
	username string
	password string
	baseURL  string
	timeout  time.Duration
	dial     func(ctx context.Context, host string, timeout time.Duration) (ftpConn, error)
}

// NewFTP returns an FTP sharer. The host defaults to port 21.
func NewFTP(cfg config.FTPConfig) *FTP {
	host := strings.TrimPrefix(cfg.Host, "ftp://")
	if _, _, err := net.SplitHostPort(host); err != nil {
		host = net.JoinHostPort(host, "21")
	}
	user, pass := cfg.Username, cfg.Password
	if user == "" {
		user, pass = "anonymous", "anonymous@"
	}
	return &FTP{
		host:     host,
		username: user,
		password: pass,
		baseURL:  strings.TrimRight(cfg.PublicBaseURL, "/"),
		timeout:  secondsOr(cfg.TimeoutSecs, 30*time.Second),
		dial:     dialFTP,
	}
}

func dialFTP(ctx context.Context, host string, timeout time.Duration) (ftpConn, error) {
	return ftp.Dial(host, ftp.DialWithTimeout(timeout), ftp.DialWithContext(ctx))
}

func (f *FTP) Provider() string { return "ftp" }

// Share creates each folder of dir, stores the file and returns its link.
func (f *FTP) Share(ctx context.Context, dir, name string, data []byte) (*Link, error) {
	remote := remotePath(dir, name)
	zap.L().Debug("ftp: connecting", zap.String("host", f.host), zap.String("path", remote))

	conn, err := f.dial(ctx, f.host, f.timeout)
	if err != nil {
		return nil, shareErr(f.Provider(), eris.Wrap(err, "ftp: dial"))
	}
	defer conn.Quit() //nolint:errcheck

	if err := conn.Login(f.username, f.password); err != nil {
		return nil, shareErr(f.Provider(), eris.Wrap(err, "ftp: login"))
	}

	// MakeDir fails for folders that already exist; Stor reports a real miss.
	cur := ""
	for _, seg := range strings.Split(strings.Trim(dir, "/"), "/") {
		if seg == "" {
			continue
		}
		cur += "/" + seg
		if err := conn.MakeDir(cur); err != nil {
			zap.L().Debug("ftp: mkdir", zap.String("dir", cur), zap.Error(err))
		}
	}

	if err := conn.Stor(remote, bytes.NewReader(data)); err != nil {
		return nil, shareErr(f.Provider(), eris.Wrapf(err, "ftp: store %s", remote))
	}
	zap.L().Info("ftp: uploaded", zap.String("path", remote), zap.Int("bytes", len(data)))

	link := f.link(remote)
	return &Link{Page: link, Download: link, RemotePath: remote}, nil
}

func (f *FTP) link(remote string) string {
	if f.baseURL != "" {
		return f.baseURL + "/" + escapePath(remote)
	}
	return "ftp://" + f.host + "/" + escapePath(remote)
}
