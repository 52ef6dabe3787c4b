// Package s3 处理S3对象存储操作，文档文件统一存放在单一 bucket 中.
package s3

import (
	"context"
	"fmt"
	"io"
	"net/url"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yeisme/tmfvault/pkg/configs"
	nlog "github.com/yeisme/tmfvault/pkg/log"
)

// Client 包装 MinIO 客户端.
type Client struct {
	*minio.Client

	bucket        string
	uploadTimeout func() (context.Context, context.CancelFunc)
}

// New 初始化 MinIO 客户端，若文档 bucket 不存在则尝试创建.
func New(ctx context.Context, cfg *configs.S3Config) (*Client, error) {
	endpoint := cfg.Endpoint
	// 允许用户传完整 schema endpoint（http:// 或 https://）
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		if u.Scheme == "https" {
			cfg.UseSSL = true
		}
	}

	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	cli.SetAppInfo("tmfvault", configs.AppVersion)

	exists, err := cli.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.BucketName, err)
	}

	if !exists {
		if err := cli.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.BucketName, err)
		}

		nlog.Logger().Info().Str("bucket", cfg.BucketName).Msg("bucket created")
	}

	timeout := cfg.GetUploadTimeout()

	nlog.Logger().Info().Str("endpoint", cfg.Endpoint).Str("bucket", cfg.BucketName).Msg("s3 connected")

	return &Client{
		Client: cli,
		bucket: cfg.BucketName,
		uploadTimeout: func() (context.Context, context.CancelFunc) {
			return context.WithTimeout(context.Background(), timeout)
		},
	}, nil
}

// Bucket 返回文档 bucket 名称.
func (c *Client) Bucket() string {
	return c.bucket
}

// PutDocument 写入一个文档对象，写入耗时受配置超时约束.
// 返回实际写入的字节数，由 MinIO 端统计，不信任客户端声明的大小.
func (c *Client) PutDocument(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (int64, error) {
	timeoutCtx, cancel := c.uploadTimeout()
	defer cancel()

	// 外层 ctx 取消也要终止上传
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-timeoutCtx.Done():
		}
	}()

	info, err := c.PutObject(timeoutCtx, c.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return 0, fmt.Errorf("put object %s: %w", objectName, err)
	}

	return info.Size, nil
}

// RemoveDocument 删除一个文档对象.
func (c *Client) RemoveDocument(ctx context.Context, objectName string) error {
	return c.RemoveObject(ctx, c.bucket, objectName, minio.RemoveObjectOptions{})
}

// HealthCheck 简单的健康检查，通过列出桶来验证连接.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.ListBuckets(ctx)
	return err
}

// Close 关闭 S3 客户端连接（无实际操作，接口兼容）.
func (c *Client) Close() error {
	return nil
}
