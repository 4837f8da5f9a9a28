package share

import (
	"bytes"
	"context"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ampco/intake-cli/internal/config"
)

// S3 uploads to a bucket and links through presigned GET URLs.
type S3 struct {
	bucket    string
	ttl       time.Duration
	uploader  *manager.Uploader
	presigner *s3.PresignClient
}

// NewS3 loads AWS configuration. Static keys override the default chain,
// and a custom endpoint switches to path-style addressing.
func NewS3(ctx context.Context, cfg config.S3Config) (*S3, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, eris.Wrap(err, "s3: load aws config")
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
			o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		})
	}
	client := s3.NewFromConfig(awsCfg, s3Opts...)

	ttl := time.Duration(cfg.LinkTTLDays) * 24 * time.Hour
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &S3{
		bucket:    cfg.Bucket,
		ttl:       ttl,
		uploader:  manager.NewUploader(client),
		presigner: s3.NewPresignClient(client),
	}, nil
}

func (s *S3) Provider() string { return "s3" }

// Share stores data under the key dir/name and presigns a download link.
func (s *S3) Share(ctx context.Context, dir, name string, data []byte) (*Link, error) {
	key := strings.TrimPrefix(remotePath(dir, name), "/")
	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if _, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	}); err != nil {
		return nil, shareErr(s.Provider(), eris.Wrapf(err, "s3: upload %s", key))
	}

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return nil, shareErr(s.Provider(), eris.Wrapf(err, "s3: presign %s", key))
	}
	zap.L().Info("s3: uploaded", zap.String("bucket", s.bucket), zap.String("key", key), zap.Int("bytes", len(data)))

	return &Link{Page: req.URL, Download: req.URL, RemotePath: "/" + key}, nil
}
