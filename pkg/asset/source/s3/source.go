// Package s3 serves assets from an S3 (or S3-compatible) bucket.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/marmos91/hdrive/internal/telemetry"
	"github.com/marmos91/hdrive/pkg/asset"
)

// Config holds configuration for the S3 source.
type Config struct {
	Bucket string `mapstructure:"bucket" yaml:"bucket" validate:"required"`

	// Region is optional; the SDK default chain is used when empty.
	Region string `mapstructure:"region" yaml:"region"`

	// Endpoint overrides the S3 endpoint (Localstack, MinIO).
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// KeyPrefix is prepended to every locator, e.g. "images/".
	KeyPrefix string `mapstructure:"key_prefix" yaml:"key_prefix"`

	// ForcePathStyle is required by most S3-compatible servers.
	ForcePathStyle bool `mapstructure:"force_path_style" yaml:"force_path_style"`

	// AccessKeyID and SecretAccessKey override the default credential chain.
	AccessKeyID     string `mapstructure:"access_key_id" yaml:"access_key_id,omitempty"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key,omitempty"`
}

// Metrics observes S3 calls. Optional.
type Metrics interface {
	ObserveOperation(operation string, duration time.Duration, err error)
}

// Source reads objects at KeyPrefix+locator.
type Source struct {
	client    *s3.Client
	bucket    string
	keyPrefix string
	metrics   Metrics

	mu     sync.RWMutex
	closed bool
}

// New creates a source around an existing client.
func New(client *s3.Client, cfg Config, metrics Metrics) *Source {
	return &Source{
		client:    client,
		bucket:    cfg.Bucket,
		keyPrefix: cfg.KeyPrefix,
		metrics:   metrics,
	}
}

// NewFromConfig builds the S3 client from cfg and the AWS default chain.
func NewFromConfig(ctx context.Context, cfg Config, metrics Metrics) (*Source, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})
	return New(client, cfg, metrics), nil
}

func (s *Source) key(locator string) string {
	return s.keyPrefix + locator
}

func (s *Source) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return asset.ErrSourceClosed
	}
	return nil
}

func (s *Source) observe(op string, start time.Time, err error) {
	if s.metrics != nil {
		s.metrics.ObserveOperation(op, time.Since(start), err)
	}
}

// Fetch downloads the object for locator.
func (s *Source) Fetch(ctx context.Context, locator string) (data []byte, err error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	key := s.key(locator)
	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanAssetFetch)
	span.SetAttributes(telemetry.Bucket(s.bucket), telemetry.StorageKey(key))
	defer span.End()

	start := time.Now()
	defer func() { s.observe("GetObject", start, err) }()

	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: s3://%s/%s", asset.ErrAssetNotFound, s.bucket, key)
		}
		telemetry.RecordError(ctx, err)
		return nil, fmt.Errorf("s3 get object: %w", err)
	}
	defer resp.Body.Close()

	data, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read s3 object body: %w", err)
	}
	return data, nil
}

// Put uploads data for locator.
func (s *Source) Put(ctx context.Context, locator string, data []byte) (err error) {
	if err := s.checkOpen(); err != nil {
		return err
	}

	start := time.Now()
	defer func() { s.observe("PutObject", start, err) }()

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(locator)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("s3 put object: %w", err)
	}
	return nil
}

// HealthCheck verifies the bucket is reachable.
func (s *Source) HealthCheck(ctx context.Context) (err error) {
	if err := s.checkOpen(); err != nil {
		return err
	}

	start := time.Now()
	defer func() { s.observe("HeadBucket", start, err) }()

	_, err = s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		return fmt.Errorf("s3 head bucket: %w", err)
	}
	return nil
}

// Close marks the source closed. The client holds no resources to release.
func (s *Source) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "404":
			return true
		}
	}
	return false
}

var _ asset.Source = (*Source)(nil)
