package s3

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const (
	defaultTimeout = 30 * time.Second
	uploadURLTTL   = 2 * time.Minute
	downloadURLTTL = 60 * time.Second
)

// Client выдает presigned URL для S3-совместимого хранилища.
// Сами байты через процесс не проходят.
type Client struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

// NewClient создает новый экземпляр клиента S3
func NewClient(conf *Config) (*Client, error) {
	if conf == nil {
		return nil, fmt.Errorf("configuration is required")
	}

	creds := aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
		conf.AccessKeyID,
		conf.SecretAccessKey,
		"",
	))

	opts := s3.Options{
		Region:           conf.Region,
		Credentials:      creds,
		RetryMode:        aws.RetryModeAdaptive,
		RetryMaxAttempts: 3,
	}
	if conf.Endpoint != "" {
		opts.BaseEndpoint = aws.String(conf.Endpoint)
	}
	client := s3.New(opts)

	s3Client := &Client{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  conf.Bucket,
	}

	// Проверяем доступность бакета при старте
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	_, err := s3Client.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(conf.Bucket),
	})
	if err != nil {
		return nil, fmt.Errorf("unable to access bucket %s: %w", conf.Bucket, err)
	}

	return s3Client, nil
}

// objectKey строит ключ вида files/{owner}/{location}/{key}.
// key совпадает с ID файла: ключ неизменяемый, переименования его не трогают.
func (c *Client) objectKey(ownerID, key string, location *string) string {
	if location != nil {
		return fmt.Sprintf("files/%s/%s/%s", ownerID, *location, key)
	}
	return fmt.Sprintf("files/%s/%s", ownerID, key)
}

// IssueUploadHandle выдает presigned POST на одну загрузку. Политика
// ограничивает размер тела заявленным размером с небольшим буфером.
func (c *Client) IssueUploadHandle(ctx context.Context, ownerID string, size int64, key string, location *string) (*PresignedPost, error) {
	buffer := size + size/100 + 1

	result, err := c.presign.PresignPostObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(c.objectKey(ownerID, key, location)),
	}, func(opts *s3.PresignPostOptions) {
		opts.Expires = uploadURLTTL
		opts.Conditions = []interface{}{
			[]interface{}{"content-length-range", size, buffer},
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}

	return &PresignedPost{URL: result.URL, Fields: result.Values}, nil
}

// IssueDownloadHandle выдает presigned GET. Content-Disposition несет
// отображаемое имя, чтобы браузер сохранил файл под человеческим именем,
// а не под непрозрачным ключом.
func (c *Client) IssueDownloadHandle(ctx context.Context, ownerID, key, displayName string, location *string) (string, error) {
	result, err := c.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(c.bucket),
		Key:                        aws.String(c.objectKey(ownerID, key, location)),
		ResponseContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%q", displayName)),
	}, s3.WithPresignExpires(downloadURLTTL))
	if err != nil {
		return "", fmt.Errorf("failed to presign download: %w", err)
	}

	return result.URL, nil
}

func (c *Client) IssuePhotoUploadHandle(ctx context.Context, ownerID string, size int64) (*PresignedPost, error) {
	buffer := size + size/20 + 1

	result, err := c.presign.PresignPostObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(fmt.Sprintf("profile_photos/original/%s/photo", ownerID)),
	}, func(opts *s3.PresignPostOptions) {
		opts.Expires = uploadURLTTL
		opts.Conditions = []interface{}{
			[]interface{}{"content-length-range", size, buffer},
			[]interface{}{"starts-with", "$Content-Type", "image/"},
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to presign photo upload: %w", err)
	}

	return &PresignedPost{URL: result.URL, Fields: result.Values}, nil
}

func (c *Client) IssuePhotoDownloadHandle(ctx context.Context, ownerID string) (string, error) {
	result, err := c.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(fmt.Sprintf("profile_photos/resized/%s/photo", ownerID)),
	}, s3.WithPresignExpires(downloadURLTTL))
	if err != nil {
		return "", fmt.Errorf("failed to presign photo download: %w", err)
	}

	return result.URL, nil
}

// DeleteObject удаляет объект брошенной загрузки. Отсутствие объекта
// не считается ошибкой: байты могли так и не приехать.
func (c *Client) DeleteObject(ctx context.Context, ownerID, key string, location *string) error {
	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(c.objectKey(ownerID, key, location)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}

	return nil
}
