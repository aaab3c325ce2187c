package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"ClipServer/config"
	"ClipServer/pkg/logger"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sony/gobreaker"
)

var global *MinIOClient

// MinIOClient MinIO 客户端封装，上传走熔断器保护
type MinIOClient struct {
	client  *minio.Client
	config  config.MinIOConfig
	breaker *gobreaker.CircuitBreaker
}

// Client 返回全局 MinIO 客户端（未初始化时为 nil）
func Client() *MinIOClient {
	return global
}

// ReplaceGlobal 设置全局 MinIO 客户端
func ReplaceGlobal(c *MinIOClient) {
	global = c
}

// Build 基于配置创建 MinIO 客户端
func Build(cfg config.MinIOConfig) (*MinIOClient, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("minio endpoint is empty")
	}
	if strings.TrimSpace(cfg.AccessKeyID) == "" {
		return nil, errors.New("minio accessKeyId is empty")
	}
	if strings.TrimSpace(cfg.SecretAccessKey) == "" {
		return nil, errors.New("minio secretAccessKey is empty")
	}
	if strings.TrimSpace(cfg.BucketName) == "" {
		return nil, errors.New("minio bucketName is empty")
	}

	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Transport: &http.Transport{
			MaxIdleConns:        cfg.MaxIdleConns,
			MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
			IdleConnTimeout:     cfg.IdleConnTimeout,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	// 对象存储抖动时快速失败，避免上传请求堆积拖垮服务
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "minio-upload",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn(context.Background(), "熔断器状态变化",
				logger.String("name", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
	})

	client := &MinIOClient{
		client:  minioClient,
		config:  cfg,
		breaker: breaker,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := minioClient.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket exists: %w", err)
	}

	if !exists {
		err = minioClient.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{
			Region: cfg.Location,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}

		logger.Info(ctx, "MinIO Bucket 创建成功",
			logger.String("bucket", cfg.BucketName),
			logger.String("location", cfg.Location),
		)

		if cfg.PublicRead {
			policy := fmt.Sprintf(`{
				"Version": "2012-10-17",
				"Statement": [
					{
						"Effect": "Allow",
						"Principal": {"AWS": ["*"]},
						"Action": ["s3:GetObject"],
						"Resource": ["arn:aws:s3:::%s/*"]
					}
				]
			}`, cfg.BucketName)

			if err := minioClient.SetBucketPolicy(ctx, cfg.BucketName, policy); err != nil {
				logger.Warn(ctx, "设置 Bucket 公开策略失败",
					logger.String("bucket", cfg.BucketName),
					logger.ErrorField(err),
				)
			}
		}
	}

	return client, nil
}

// UploadOptions 上传选项
type UploadOptions struct {
	// 路径前缀（如 "videos/", "thumbnails/"）
	PathPrefix string
	// 自定义文件名，为空时自动生成 UUID
	FileName string
	// 内容类型，为空时基于文件内容检测
	ContentType string
	// 元数据（可选）
	Metadata map[string]string
}

// UploadResult 上传结果
type UploadResult struct {
	ObjectName  string
	Size        int64
	ETag        string
	URL         string
	ContentType string
}

// ErrStorageUnavailable 熔断打开时返回，调用侧据此返回服务繁忙
var ErrStorageUnavailable = errors.New("object storage unavailable")

// Upload 上传文件。
// Content-Type 以文件内容的 Magic Bytes 检测为准，扩展名只做交叉校验，
// 防止改后缀伪装（.exe 改名 .mp4 之类）。
func (c *MinIOClient) Upload(ctx context.Context, reader io.Reader, fileSize int64, opts UploadOptions) (*UploadResult, error) {
	if c.config.MaxFileSize > 0 && fileSize > c.config.MaxFileSize {
		return nil, fmt.Errorf("文件大小超过限制: %d bytes (最大: %d bytes)", fileSize, c.config.MaxFileSize)
	}

	objectName := c.generateObjectName(opts)

	// http.DetectContentType 需要前 512 字节
	buffer := make([]byte, 512)
	n, err := io.ReadFull(reader, buffer)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("读取文件内容失败: %w", err)
	}
	buffer = buffer[:n]

	detectedContentType := http.DetectContentType(buffer)

	contentType := opts.ContentType
	if contentType == "" {
		contentType = detectedContentType
	} else if !contentTypeMatch(contentType, detectedContentType) {
		logger.Warn(ctx, "声明的文件类型与检测到的类型不一致",
			logger.String("specified", contentType),
			logger.String("detected", detectedContentType),
			logger.String("object", objectName),
		)
		contentType = detectedContentType
	}

	if len(c.config.AllowedTypes) > 0 && !c.isAllowedType(contentType) {
		logger.Warn(ctx, "文件类型不在允许列表中",
			logger.String("detected_type", detectedContentType),
			logger.String("content_type", contentType),
			logger.String("file_name", opts.FileName),
			logger.Any("allowed_types", c.config.AllowedTypes),
		)
		return nil, fmt.Errorf("不支持的文件类型: %s (检测到: %s)", contentType, detectedContentType)
	}

	if opts.FileName != "" && !extensionMatches(opts.FileName, detectedContentType) {
		logger.Warn(ctx, "文件扩展名与实际内容类型不匹配",
			logger.String("file_name", opts.FileName),
			logger.String("detected_type", detectedContentType),
		)
		return nil, fmt.Errorf("文件扩展名与实际内容类型不匹配（检测到: %s）", detectedContentType)
	}

	// 已读的 512 字节拼回去
	multiReader := io.MultiReader(bytes.NewReader(buffer), reader)

	uploadCtx := ctx
	if c.config.UploadTimeout > 0 {
		var cancel context.CancelFunc
		uploadCtx, cancel = context.WithTimeout(ctx, c.config.UploadTimeout)
		defer cancel()
	}

	res, err := c.breaker.Execute(func() (interface{}, error) {
		return c.client.PutObject(
			uploadCtx,
			c.config.BucketName,
			objectName,
			multiReader,
			fileSize,
			minio.PutObjectOptions{
				ContentType:  contentType,
				UserMetadata: opts.Metadata,
			},
		)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			logger.Warn(ctx, "MinIO 熔断中，拒绝上传",
				logger.String("object", objectName),
			)
			return nil, ErrStorageUnavailable
		}
		logger.Error(ctx, "MinIO 上传失败",
			logger.String("object", objectName),
			logger.String("content_type", contentType),
			logger.Int64("size", fileSize),
			logger.ErrorField(err),
		)
		return nil, fmt.Errorf("上传失败: %w", err)
	}
	uploadInfo := res.(minio.UploadInfo)

	url := c.generateURL(objectName)

	logger.Info(ctx, "MinIO 上传成功",
		logger.String("object", objectName),
		logger.String("url", url),
		logger.String("content_type", contentType),
		logger.Int64("size", uploadInfo.Size),
		logger.String("etag", uploadInfo.ETag),
	)

	return &UploadResult{
		ObjectName:  objectName,
		Size:        uploadInfo.Size,
		ETag:        uploadInfo.ETag,
		URL:         url,
		ContentType: contentType,
	}, nil
}

// Delete 删除文件
func (c *MinIOClient) Delete(ctx context.Context, objectName string) error {
	err := c.client.RemoveObject(ctx, c.config.BucketName, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		logger.Error(ctx, "MinIO 删除失败",
			logger.String("object", objectName),
			logger.ErrorField(err),
		)
		return fmt.Errorf("删除失败: %w", err)
	}

	logger.Info(ctx, "MinIO 删除成功",
		logger.String("object", objectName),
	)
	return nil
}

// Exists 检查文件是否存在
func (c *MinIOClient) Exists(ctx context.Context, objectName string) (bool, error) {
	_, err := c.client.StatObject(ctx, c.config.BucketName, objectName, minio.StatObjectOptions{})
	if err != nil {
		errResponse := minio.ToErrorResponse(err)
		if errResponse.Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("检查对象存在失败: %w", err)
	}
	return true, nil
}

// GetPresignedURL 获取预签名 URL（临时访问私有文件）
func (c *MinIOClient) GetPresignedURL(ctx context.Context, objectName string, expires time.Duration) (string, error) {
	url, err := c.client.PresignedGetObject(ctx, c.config.BucketName, objectName, expires, nil)
	if err != nil {
		logger.Error(ctx, "MinIO 生成预签名 URL 失败",
			logger.String("object", objectName),
			logger.Duration("expires", expires),
			logger.ErrorField(err),
		)
		return "", fmt.Errorf("生成预签名 URL 失败: %w", err)
	}
	return url.String(), nil
}

// ==================== 辅助方法 ====================

func (c *MinIOClient) generateObjectName(opts UploadOptions) string {
	fileName := opts.FileName
	if fileName == "" {
		fileName = uuid.New().String()
	}

	if opts.PathPrefix != "" {
		prefix := strings.TrimSuffix(opts.PathPrefix, "/")
		return prefix + "/" + fileName
	}
	return fileName
}

func (c *MinIOClient) generateURL(objectName string) string {
	baseURL := strings.TrimSuffix(c.config.BaseURL, "/")
	objectName = strings.TrimPrefix(objectName, "/")
	return fmt.Sprintf("%s/%s/%s", baseURL, c.config.BucketName, objectName)
}

// contentTypeMatch 宽松比较两个 Content-Type（image/jpg 与 image/jpeg 视为相同，主类型一致即可）
func contentTypeMatch(specified, detected string) bool {
	specified = strings.ToLower(strings.TrimSpace(specified))
	detected = strings.ToLower(strings.TrimSpace(detected))

	if specified == detected {
		return true
	}

	if (specified == "image/jpg" || specified == "image/jpeg") &&
		(detected == "image/jpg" || detected == "image/jpeg") {
		return true
	}

	return strings.Split(specified, "/")[0] == strings.Split(detected, "/")[0]
}

// extensionMatches 校验扩展名与检测到的内容类型是否匹配
func extensionMatches(fileName, detectedContentType string) bool {
	ext := strings.ToLower(filepath.Ext(fileName))
	detectedContentType = strings.ToLower(detectedContentType)

	validExtensions := map[string][]string{
		"video/mp4":       {".mp4", ".m4v"},
		"video/quicktime": {".mov"},
		"video/webm":      {".webm"},
		"image/jpeg":      {".jpg", ".jpeg"},
		"image/png":       {".png"},
		"image/gif":       {".gif"},
		"image/webp":      {".webp"},

		// 浏览器对部分视频封装识别不出来，按二进制流放行
		"application/octet-stream": {},
	}

	allowedExts, exists := validExtensions[detectedContentType]
	if !exists {
		return true
	}
	if len(allowedExts) == 0 {
		return true
	}

	for _, allowedExt := range allowedExts {
		if ext == allowedExt {
			return true
		}
	}
	return false
}

func (c *MinIOClient) isAllowedType(contentType string) bool {
	for _, allowed := range c.config.AllowedTypes {
		if strings.EqualFold(contentType, allowed) {
			return true
		}
	}
	return false
}

// GetBucketName 获取当前使用的 Bucket 名称
func (c *MinIOClient) GetBucketName() string {
	return c.config.BucketName
}
