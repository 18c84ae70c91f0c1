package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path"

	"SNCatalog/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Sink 写入 S3 兼容存储（AWS S3 / MinIO），对象键为 prefix + key
type S3Sink struct {
	client *s3.Client
	bucket string
	prefix string
}

// S3Option 自定义 s3 客户端（测试中注入 HTTPClient）
type S3Option func(*s3.Options)

// WithHTTPClient 替换底层 HTTP 客户端
func WithHTTPClient(c *http.Client) S3Option {
	return func(o *s3.Options) { o.HTTPClient = c }
}

// NewS3Sink 按配置创建 S3 客户端。配置了 access_key 时使用静态凭证，否则走默认凭证链
func NewS3Sink(ctx context.Context, cfg config.S3Config, opts ...S3Option) (*S3Sink, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket 未配置")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("加载 AWS 配置失败: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
		for _, opt := range opts {
			opt(o)
		}
	})
	return &S3Sink{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

func (s *S3Sink) Name() string { return "s3://" + path.Join(s.bucket, s.prefix) }

func (s *S3Sink) Put(ctx context.Context, key string, body []byte) error {
	objectKey := s.prefix + key
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("上传 %s 失败: %w", objectKey, err)
	}
	return nil
}
