// Package source resolves conversion inputs to local files, downloading
// s3://bucket/key URLs to a temp file first.
package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/joseph-ayodele/docconv/internal/common"
)

// Downloader fetches one object. *manager.Downloader is adapted to it.
type Downloader interface {
	Download(ctx context.Context, w io.WriterAt, bucket, key string) (int64, error)
}

// Resolver maps input paths to local files.
type Resolver struct {
	cfg    common.S3Config
	logger *slog.Logger

	once       sync.Once
	downloader Downloader
	initErr    error
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithDownloader replaces the S3 downloader.
func WithDownloader(d Downloader) Option {
	return func(r *Resolver) {
		r.once.Do(func() { r.downloader = d })
	}
}

func NewResolver(cfg common.S3Config, logger *slog.Logger, opts ...Option) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Resolver{cfg: cfg, logger: logger}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolve returns a local path for input and a cleanup func that is always safe to call.
// Local paths are returned unchanged.
func (r *Resolver) Resolve(ctx context.Context, input string) (string, func(), error) {
	noop := func() {}
	bucket, key, ok, err := ParseS3URL(input)
	if err != nil {
		return "", noop, err
	}
	if !ok {
		return input, noop, nil
	}

	d, err := r.client()
	if err != nil {
		return "", noop, common.Unavailable("s3 client", err)
	}

	tmp, err := os.CreateTemp("", "docconv-s3-*"+path.Ext(key))
	if err != nil {
		return "", noop, fmt.Errorf("create temp file: %w", err)
	}
	cleanup := func() {
		if err := os.Remove(tmp.Name()); err != nil && !os.IsNotExist(err) {
			r.logger.Warn("failed to remove temp file", "path", tmp.Name(), "error", err)
		}
	}

	start := time.Now()
	n, err := d.Download(ctx, tmp, bucket, key)
	closeErr := tmp.Close()
	if err != nil {
		cleanup()
		return "", noop, common.ConversionFailed(fmt.Sprintf("download s3://%s/%s", bucket, key), err)
	}
	if closeErr != nil {
		cleanup()
		return "", noop, fmt.Errorf("close temp file: %w", closeErr)
	}
	r.logger.Info("downloaded input", "bucket", bucket, "key", key, "bytes", n,
		"duration_ms", time.Since(start).Milliseconds())
	return tmp.Name(), cleanup, nil
}

func (r *Resolver) client() (Downloader, error) {
	r.once.Do(func() {
		r.downloader, r.initErr = newS3Downloader(context.Background(), r.cfg)
	})
	return r.downloader, r.initErr
}

// ParseS3URL splits s3://bucket/key. ok is false for anything that is not an s3 URL.
func ParseS3URL(raw string) (bucket, key string, ok bool, err error) {
	if !strings.HasPrefix(raw, "s3://") {
		return "", "", false, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", false, common.InvalidInput("invalid s3 url", err)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", false, common.InvalidInput(fmt.Sprintf("s3 url %q needs a bucket and a key", raw), nil)
	}
	return u.Host, key, true, nil
}

type s3Downloader struct {
	d *manager.Downloader
}

func newS3Downloader(ctx context.Context, cfg common.S3Config) (Downloader, error) {
	var opts []func(*awsconfig.LoadOptions) error
	opts = append(opts, awsconfig.WithRegion(cfg.Region))

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}
	return &s3Downloader{d: manager.NewDownloader(s3.NewFromConfig(awsCfg, s3Opts...))}, nil
}

func (s *s3Downloader) Download(ctx context.Context, w io.WriterAt, bucket, key string) (int64, error) {
	return s.d.Download(ctx, w, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
}
