package blobstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/sirupsen/logrus"

	"github.com/wso2/consent-intake-api/internal/system/config"
)

const defaultOpTimeout = 60 * time.Second

// s3API is the slice of the S3 client used by the store; narrowed for test
// substitution.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store stores artifacts in an S3 bucket. Objects are written with a
// SHA-256 checksum so the store-reported checksum can be persisted next to
// the record referencing the object.
type S3Store struct {
	client  s3API
	bucket  string
	prefix  string
	timeout time.Duration
	logger  *logrus.Logger
	metrics *storeMetrics
}

// S3StoreOptionFunc configures an S3Store.
type S3StoreOptionFunc func(*S3Store)

// WithClient overrides the S3 client (used by tests).
func WithClient(client s3API) S3StoreOptionFunc {
	return func(s *S3Store) {
		s.client = client
	}
}

// WithTimeout overrides the per-operation deadline.
func WithTimeout(timeout time.Duration) S3StoreOptionFunc {
	return func(s *S3Store) {
		s.timeout = timeout
	}
}

// NewS3Store builds an S3-backed blob store from configuration. The endpoint
// override is generally used for testing against a fake S3 implementation
// such as minio.
func NewS3Store(ctx context.Context, cfg *config.BlobStoreConfig, logger *logrus.Logger, opts ...S3StoreOptionFunc) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 blob: bucket not set")
	}

	store := &S3Store{
		bucket:  cfg.Bucket,
		prefix:  cfg.Prefix,
		timeout: cfg.Timeout,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(store)
	}
	if store.timeout == 0 {
		store.timeout = defaultOpTimeout
	}

	if store.client == nil {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3 blob: load default AWS config: %w", err)
		}
		if cfg.Region != "" {
			awsCfg.Region = cfg.Region
		}
		store.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
				o.UsePathStyle = true
			}
		})
	}

	return store, nil
}

func (s *S3Store) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// Put writes an object and returns the SHA-256 checksum computed by the
// store.
func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	out, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:            aws.String(s.bucket),
		Key:               aws.String(s.fullKey(key)),
		Body:              bytes.NewReader(data),
		ContentType:       aws.String(contentType),
		ChecksumAlgorithm: s3types.ChecksumAlgorithmSha256,
	})
	if err != nil {
		s.metrics.observe("put", false)
		s.logger.WithError(err).WithField("key", key).Error("s3 put failed")
		return "", err
	}
	s.metrics.observe("put", true)
	s.logger.WithFields(logrus.Fields{
		"key":   key,
		"bytes": len(data),
	}).Debug("s3 put ok")
	return aws.ToString(out.ChecksumSHA256), nil
}

// Delete removes an object. A missing key is treated as success so that
// compensation retries stay idempotent.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.fullKey(key)),
	})
	if err != nil && !isS3NotFound(err) {
		s.metrics.observe("delete", false)
		s.logger.WithError(err).WithField("key", key).Error("s3 delete failed")
		return err
	}
	s.metrics.observe("delete", true)
	return nil
}

func (s *S3Store) fullKey(key string) string {
	return s.prefix + key
}

func isS3NotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey" {
		return true
	}
	var noSuchKey *s3types.NoSuchKey
	return errors.As(err, &noSuchKey)
}
