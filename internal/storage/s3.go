package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// presignExpiry is how long a download link handed out by Locate stays valid.
const presignExpiry = time.Hour

// S3Sink stores payloads as objects in an S3-compatible bucket.
type S3Sink struct {
	client    *s3.Client
	bucket    string
	publicURL string // e.g. http://localhost:9000/promptchain-images
}

// NewS3Sink connects to bucket. endpoint is optional (MinIO, LocalStack, R2);
// without accessKey the default AWS credential chain is used.
func NewS3Sink(endpoint, region, bucket, accessKey, secretKey, publicURL string) (*S3Sink, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 sink: bucket is required")
	}
	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if accessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")))
	}
	if endpoint != "" {
		opts = append(opts, config.WithBaseEndpoint(endpoint))
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Path-style addressing for MinIO; checksums only when required so
	// S3-compatible backends (e.g. Cloudflare R2) accept the requests.
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	log.Info().
		Str("endpoint", endpoint).
		Str("bucket", bucket).
		Msg("S3 sink initialized")

	return &S3Sink{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}, nil
}

// Save puts data under key, replacing any existing object. The content type
// is sniffed from the payload.
func (s *S3Sink) Save(ctx context.Context, key string, data []byte) error {
	contentType := http.DetectContentType(data)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))), // R2 rejects uploads without it
	})
	if err != nil {
		return &SinkError{Location: s.location(key), Op: "upload", Err: err}
	}

	log.Info().
		Str("bucket", s.bucket).
		Str("key", key).
		Str("content_type", contentType).
		Int("size_bytes", len(data)).
		Msg("Object stored")
	return nil
}

// PublicURL returns the object's URL under the configured public base, or ""
// when none is configured.
func (s *S3Sink) PublicURL(key string) string {
	if s.publicURL == "" {
		return ""
	}
	return s.publicURL + "/" + strings.TrimPrefix(key, "/")
}

// PresignedURL returns a time-limited GET link for key.
func (s *S3Sink) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	req, err := s3.NewPresignClient(s.client).PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(o *s3.PresignOptions) {
		o.Expires = expiry
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", s.location(key), err)
	}
	return req.URL, nil
}

func (s *S3Sink) location(key string) string {
	return "s3://" + s.bucket + "/" + key
}
