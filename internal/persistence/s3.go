package persistence

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/devsanbid/bravo-test-sub001/internal/config"
)

// NewS3 builds an S3 client from static configuration. An empty storage endpoint falls back
// to the backend endpoint so a single S3-compatible host can serve both.
func NewS3(cfg config.StorageConfig, backendEndpoint string, logger *zap.Logger) *s3.Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = backendEndpoint
	}

	opts := s3.Options{
		Region:       cfg.Region,
		UsePathStyle: cfg.UsePathStyle,
	}
	if endpoint != "" {
		opts.BaseEndpoint = aws.String(endpoint)
	}
	if cfg.AccessKeyID != "" {
		key, secret := cfg.AccessKeyID, cfg.SecretAccessKey
		opts.Credentials = aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{AccessKeyID: key, SecretAccessKey: secret, Source: "config"}, nil
		})
	} else {
		logger.Warn("S3 credentials not provided; requests will be unsigned")
		opts.Credentials = aws.AnonymousCredentials{}
	}

	logger.Info("s3 client configured", zap.String("bucket", cfg.BucketID), zap.String("endpoint", endpoint))
	return s3.New(opts)
}
