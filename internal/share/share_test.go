package share

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ampco/intake-cli/internal/config"
)

func TestNew_SelectsProvider(t *testing.T) {
	tests := []struct {
		provider string
		want     string
	}{
		{"nextcloud", "nextcloud"},
		{"", "nextcloud"},
		{"ftp", "ftp"},
		{"s3", "s3"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			cfg := config.ShareConfig{Provider: tt.provider}
			cfg.Nextcloud.URL = "https://cloud.example.com"
			cfg.FTP.Host = "ftp.example.com"
			cfg.S3 = testS3Config("http://127.0.0.1:9000")

			s, err := New(context.Background(), cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Provider())
		})
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(context.Background(), config.ShareConfig{Provider: "dropbox"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown provider "dropbox"`)
}

func TestRemotePath(t *testing.T) {
	assert.Equal(t, "/Documents/PER/a.pdf", remotePath("Documents/PER/", "a.pdf"))
	assert.Equal(t, "/a.pdf", remotePath("", "a.pdf"))
	assert.Equal(t, "Photometry%20Report/a%23b.pdf", escapePath("/Photometry Report/a#b.pdf"))
}
