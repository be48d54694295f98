package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3 兼容对象存储（AWS S3 / Cloudflare R2 / MinIO）
type S3 struct {
	client    *s3.Client
	bucket    string
	prefix    string
	publicURL string
}

// NewS3 创建 S3 存储
func NewS3(ctx context.Context, cfg config.S3StorageConfig) (*S3, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("storage.s3.bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "auto"
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config failed: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &S3{
		client:    client,
		bucket:    cfg.Bucket,
		prefix:    strings.Trim(strings.TrimSpace(cfg.KeyPrefix), "/"),
		publicURL: cfg.PublicURL,
	}, nil
}

func (s *S3) objectKey(key string) string {
	key = strings.TrimLeft(key, "/")
	if s.prefix == "" {
		return key
	}
	return path.Join(s.prefix, key)
}

// Put 上传对象
func (s *S3) Put(ctx context.Context, key string, body io.Reader, contentType string, size int64) (*Object, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.objectKey(key)),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return nil, fmt.Errorf("put object failed: %w", err)
	}
	return &Object{
		Key:         key,
		URL:         s.PublicURL(key),
		ContentType: contentType,
		Size:        size,
	}, nil
}

// Delete 删除对象
func (s *S3) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		return fmt.Errorf("delete object failed: %w", err)
	}
	return nil
}

// PublicURL 对外访问地址；未配置公共域名时返回对象键
func (s *S3) PublicURL(key string) string {
	if strings.TrimSpace(s.publicURL) == "" {
		return s.objectKey(key)
	}
	return joinURL(s.publicURL, s.objectKey(key))
}
