// Package storage provides object storage for uploaded avatars.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config holds S3 connection settings. Endpoint and path-style addressing
// allow pointing at MinIO in development.
type Config struct {
	Region          string
	Bucket          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
	UsePathStyle    bool
}

// AvatarStore uploads avatar images to an S3 bucket.
type AvatarStore struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

// NewAvatarStore builds an S3-backed avatar store.
func NewAvatarStore(ctx context.Context, cfg Config) (*AvatarStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
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
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &AvatarStore{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
	}, nil
}

// Upload stores an avatar under a per-user key and returns its public URL.
// Re-uploading overwrites the previous avatar for that user.
func (s *AvatarStore) Upload(ctx context.Context, userID, contentType string, body io.Reader, size int64) (string, error) {
	key := avatarKey(userID, contentType)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
		// Chunked requests arrive with a negative length; omit it and let
		// the SDK stream the body.
		ContentLength: contentLength(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}

	return fmt.Sprintf("%s/%s", s.publicBaseURL, key), nil
}

// contentLength converts a request size to a PutObject length, mapping
// unknown sizes to nil.
func contentLength(size int64) *int64 {
	if size < 0 {
		return nil
	}
	return aws.Int64(size)
}

// avatarKey derives the object key for a user's avatar.
func avatarKey(userID, contentType string) string {
	ext := ".img"
	switch contentType {
	case "image/png":
		ext = ".png"
	case "image/jpeg":
		ext = ".jpg"
	case "image/gif":
		ext = ".gif"
	case "image/webp":
		ext = ".webp"
	}
	return "avatars/" + userID + ext
}
