// Package s3 provides a store.PhotoSlot that keeps each key as one object in
// an S3-compatible bucket (AWS S3 or MinIO).
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/phrazzld/progress-gallery/internal/store"
)

const backendName = "s3"

// Config holds explicit construction parameters. Credentials come from the
// default AWS chain (environment, shared config, instance role).
type Config struct {
	Region    string
	Bucket    string
	Endpoint  string // optional; enables a custom endpoint (e.g. MinIO)
	Prefix    string // optional object key prefix
	PathStyle bool
}

// ObjectAPI is the subset of the S3 client the slot uses.
type ObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Slot stores payloads as JSON objects.
type Slot struct {
	client ObjectAPI
	bucket string
	prefix string
	logger *slog.Logger
}

var _ store.PhotoSlot = (*Slot)(nil)

// New creates an S3 slot from Config.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Slot, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewSlot(client, cfg.Bucket, cfg.Prefix, logger), nil
}

// NewSlot wraps an existing client.
func NewSlot(client ObjectAPI, bucket, prefix string, logger *slog.Logger) *Slot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Slot{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logger.With(slog.String("component", "s3_slot"), slog.String("bucket", bucket)),
	}
}

// ObjectKey returns the object key that backs a slot key.
func (s *Slot) ObjectKey(key string) string {
	if s.prefix == "" {
		return key + ".json"
	}
	return path.Join(s.prefix, key+".json")
}

// Load fetches the object for key or returns store.ErrSlotNotFound.
func (s *Slot) Load(ctx context.Context, key string) ([]byte, error) {
	objectKey := s.ObjectKey(key)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &objectKey})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, store.ErrSlotNotFound
		}
		s.logger.Error("failed to load slot", slog.String("error", err.Error()), slog.String("key", objectKey))
		return nil, store.NewSlotError(backendName, "load", "GetObject failed", err)
	}
	defer func() { _ = out.Body.Close() }()

	payload, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, store.NewSlotError(backendName, "load", "read body", err)
	}
	return payload, nil
}

// Save overwrites the object for key.
func (s *Slot) Save(ctx context.Context, key string, payload []byte) error {
	objectKey := s.ObjectKey(key)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &objectKey,
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		s.logger.Error("failed to save slot", slog.String("error", err.Error()), slog.String("key", objectKey))
		return store.NewSlotError(backendName, "save", "PutObject failed", err)
	}
	return nil
}

// Close is a no-op; the SDK client holds no resources that need releasing.
func (s *Slot) Close() error { return nil }
