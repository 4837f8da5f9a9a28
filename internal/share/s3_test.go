package share

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ampco/intake-cli/internal/config"
	"github.com/ampco/intake-cli/internal/stage"
)

func testS3Config(endpoint string) config.S3Config {
	return config.S3Config{
		Bucket:      "reports",
		Region:      "us-east-1",
		Endpoint:    endpoint,
		AccessKey:   "AKIDEXAMPLE",
		SecretKey:   "secret",
		LinkTTLDays: 2,
	}
}

func TestS3_Share(t *testing.T) {
	var gotPath, gotType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("ETag", `"abc123"`)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	s, err := NewS3(context.Background(), testS3Config(srv.URL))
	require.NoError(t, err)

	link, err := s.Share(context.Background(), "/Documents/PER", "report.pdf", []byte("%PDF-1.7"))
	require.NoError(t, err)

	assert.Equal(t, "/reports/Documents/PER/report.pdf", gotPath)
	assert.Equal(t, "application/pdf", gotType)
	assert.Equal(t, []byte("%PDF-1.7"), gotBody)
	assert.True(t, strings.HasPrefix(link.Page, srv.URL+"/reports/Documents/PER/report.pdf?"))
	assert.Contains(t, link.Page, "X-Amz-Signature=")
	assert.Contains(t, link.Page, "X-Amz-Expires=172800")
	assert.Equal(t, "/Documents/PER/report.pdf", link.RemotePath)
}

func TestS3_UploadFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, `<Error><Code>AccessDenied</Code><Message>denied</Message></Error>`) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)

	s, err := NewS3(context.Background(), testS3Config(srv.URL))
	require.NoError(t, err)

	_, err = s.Share(context.Background(), "/Documents/PER", "report.pdf", []byte("x"))
	var se *stage.ShareError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "s3", se.Provider)
}
