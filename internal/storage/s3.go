// AngelaMos | 2026
// s3.go

package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/carterperez-dev/templates/course-backend/internal/config"
)

var tracer = otel.Tracer("course-backend/storage")

type putObjectAPI interface {
	PutObject(
		ctx context.Context,
		params *s3.PutObjectInput,
		optFns ...func(*s3.Options),
	) (*s3.PutObjectOutput, error)
}

type S3Store struct {
	client  putObjectAPI
	bucket  string
	baseURL string
}

func NewS3Store(ctx context.Context, cfg config.StorageConfig) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3AccessKey != "" && cfg.S3SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.S3AccessKey,
				cfg.S3SecretKey,
				"",
			),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
		o.UsePathStyle = cfg.S3UsePathStyle
	})

	return newS3Store(client, cfg), nil
}

func newS3Store(client putObjectAPI, cfg config.StorageConfig) *S3Store {
	return &S3Store{
		client:  client,
		bucket:  cfg.S3Bucket,
		baseURL: publicBaseURL(cfg),
	}
}

func (s *S3Store) Store(
	ctx context.Context,
	data []byte,
	contentType, filename string,
) (string, error) {
	key := path.Join(pdfPrefix, objectName(filename))

	ctx, span := tracer.Start(ctx, "S3.PutObject",
		trace.WithAttributes(
			attribute.String("s3.bucket", s.bucket),
			attribute.String("s3.key", key),
			attribute.Int("content.size", len(data)),
		),
	)
	defer span.End()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "put object failed")
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	return s.baseURL + "/" + key, nil
}

// publicBaseURL picks, in order: an explicit public URL, the custom endpoint
// (path style, for MinIO and friends), or the virtual-hosted AWS URL.
func publicBaseURL(cfg config.StorageConfig) string {
	if cfg.S3PublicURL != "" {
		return strings.TrimRight(cfg.S3PublicURL, "/")
	}
	if cfg.S3Endpoint != "" {
		u, err := url.JoinPath(cfg.S3Endpoint, cfg.S3Bucket)
		if err == nil {
			return strings.TrimRight(u, "/")
		}
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.S3Region)
}
