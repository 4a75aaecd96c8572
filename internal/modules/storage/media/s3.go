package media

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/embracingthegirlchild/site/internal/config"
)

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 uploads to an S3 compatible bucket through the AWS SDK.
type S3 struct {
	client s3API
	cfg    config.S3Config
	prefix string
}

func NewS3(cfg config.S3Config, prefix string) (*S3, error) {
	opts := s3.Options{
		Region: cfg.Region,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
		UsePathStyle: cfg.PathStyle,
	}
	if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
		if _, err := url.Parse(endpoint); err != nil {
			return nil, fmt.Errorf("invalid s3 endpoint: %w", err)
		}
		opts.BaseEndpoint = aws.String(endpoint)
	}
	return &S3{client: s3.New(opts), cfg: cfg, prefix: prefix}, nil
}

func (s *S3) Name() string { return config.BackendS3 }

func (s *S3) Save(ctx context.Context, obj Object) (string, error) {
	key := prefixed(s.prefix, obj.Key)
	if !obj.Overwrite {
		key = withSuffix(key)
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(obj.Data),
		ContentLength: aws.Int64(int64(len(obj.Data))),
		ContentType:   aws.String(obj.ContentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put %s: %w", key, err)
	}
	return s.publicURL(key), nil
}

func (s *S3) publicURL(key string) string {
	if s.cfg.PublicURL != "" {
		return joinURL(s.cfg.PublicURL, key)
	}
	if s.cfg.Endpoint != "" {
		return joinURL(s.cfg.Endpoint, s.cfg.Bucket+"/"+key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
}
