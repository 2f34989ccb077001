// Package storage wraps the S3 object store used for application attachments.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "github.com/stockers-dev/stockers-api/config"
)

// ObjectStore is the subset of storage behaviour the application layer needs.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
	Owns(url string) bool
	Delete(ctx context.Context, url string) error
}

var _ ObjectStore = (*Client)(nil)

type Client struct {
	s3      *s3.Client
	bucket  string
	baseURL string
	logger  *slog.Logger
}

// New builds an S3 client from static credentials in the service config.
func New(ctx context.Context, cfg appconfig.StorageConfig, logger *slog.Logger) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Client{
		s3:      s3.NewFromConfig(awsCfg),
		bucket:  cfg.Bucket,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		logger:  logger,
	}, nil
}

// Upload stores the object under key and returns its public URL.
func (c *Client) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object %s: %w", key, err)
	}

	c.logger.Debug("Object uploaded", slog.String("key", key))
	return c.baseURL + "/" + key, nil
}

// Owns reports whether the URL points into this client's bucket. URLs taken
// verbatim from user-provided content are never deleted.
func (c *Client) Owns(url string) bool {
	return strings.HasPrefix(url, c.baseURL+"/")
}

// Delete removes the object the URL points at. Foreign URLs are ignored.
func (c *Client) Delete(ctx context.Context, url string) error {
	if !c.Owns(url) {
		return nil
	}
	key := strings.TrimPrefix(url, c.baseURL+"/")

	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}

	c.logger.Debug("Object deleted", slog.String("key", key))
	return nil
}
