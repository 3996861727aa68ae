package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var loadDefaultAWSConfig = config.LoadDefaultConfig

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store writes media to an S3 compatible bucket, e.g. the hosted storage API.
type S3Store struct {
	client        putObjectAPI
	bucket        string
	publicBaseURL string
}

func NewS3Store(ctx context.Context, options Options) (*S3Store, error) {
	if options.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is empty")
	}
	if options.PublicBaseURL == "" {
		return nil, fmt.Errorf("public base URL is empty")
	}

	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(options.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			options.AccessKey,
			options.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("failed to load s3 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if options.Endpoint != "" {
			o.BaseEndpoint = aws.String(options.Endpoint)
		}
		o.UsePathStyle = true
	})

	return newS3StoreWithClient(client, options.Bucket, options.PublicBaseURL), nil
}

func newS3StoreWithClient(client putObjectAPI, bucket, publicBaseURL string) *S3Store {
	return &S3Store{client: client, bucket: bucket, publicBaseURL: publicBaseURL}
}

func (s *S3Store) Put(ctx context.Context, key string, contentType string, data []byte) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		IfNoneMatch:   aws.String("*"),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		slog.Error("S3Store: failed to put object", "bucket", s.bucket, "key", key, "error", err)
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	slog.Debug("S3Store: stored object", "bucket", s.bucket, "key", key, "size_bytes", len(data))
	return publicURL(s.publicBaseURL, key), nil
}
