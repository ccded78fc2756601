package filestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gofiber/fiber/v2/log"
)

// s3Timeout bounds every single S3 request.
const s3Timeout = 30 * time.Second

// S3Adapter implements Backend for AWS S3 and S3-compatible storage
type S3Adapter struct {
	client   *s3.Client
	bucket   string
	basePath string
}

// S3Config holds S3 connection configuration
type S3Config struct {
	Bucket       string
	BasePath     string
	Region       string
	Endpoint     string // for S3-compatible services like MinIO
	UsePathStyle bool
}

// NewS3Adapter creates a new S3 store adapter
func NewS3Adapter(s3Config S3Config) (*S3Adapter, error) {
	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(s3Config.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if s3Config.Endpoint != "" {
		cfg.BaseEndpoint = aws.String(s3Config.Endpoint)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = s3Config.UsePathStyle
	})

	log.Debugf("Using S3 bucket '%s' (prefix '%s') for image storage", s3Config.Bucket, s3Config.BasePath)

	return &S3Adapter{
		client:   client,
		bucket:   s3Config.Bucket,
		basePath: s3Config.BasePath,
	}, nil
}

// Save saves data to the specified path
func (s *S3Adapter) Save(path string, data []byte) error {
	return s.SaveReader(path, bytes.NewReader(data))
}

// SaveReader saves data from a reader to the specified path
func (s *S3Adapter) SaveReader(path string, reader io.Reader) error {
	ctx, cancel := context.WithTimeout(context.Background(), s3Timeout)
	defer cancel()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.getKey(path)),
		Body:   reader,
	})
	return err
}

// Load loads data from the specified path
func (s *S3Adapter) Load(path string) ([]byte, error) {
	reader, err := s.LoadReader(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return io.ReadAll(reader)
}

// LoadReader returns a reader for the specified path. The body stays
// readable after the call returns, so no request timeout is applied.
func (s *S3Adapter) LoadReader(path string) (io.ReadCloser, error) {
	resp, err := s.client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.getKey(path)),
	})
	if err != nil {
		return nil, err
	}

	return resp.Body, nil
}

// Exists checks if a file exists at the specified path
func (s *S3Adapter) Exists(path string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s3Timeout)
	defer cancel()

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.getKey(path)),
	})
	if err != nil {
		var notFoundErr *types.NotFound
		if errors.As(err, &notFoundErr) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

// Delete deletes a file at the specified path
func (s *S3Adapter) Delete(path string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s3Timeout)
	defer cancel()

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.getKey(path)),
	})
	return err
}

// CreateDir writes an empty "dir/" marker object; S3 has no directories.
func (s *S3Adapter) CreateDir(path string) error {
	key := s.getKey(path)
	if !strings.HasSuffix(key, "/") {
		key += "/"
	}

	ctx, cancel := context.WithTimeout(context.Background(), s3Timeout)
	defer cancel()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader([]byte{}),
	})
	return err
}

// List lists the objects directly below path, following continuation pages.
func (s *S3Adapter) List(path string) ([]string, error) {
	prefix := s.getKey(path)
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})

	var files []string
	for paginator.HasMorePages() {
		ctx, cancel := context.WithTimeout(context.Background(), s3Timeout)
		page, err := paginator.NextPage(ctx)
		cancel()
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), prefix)
			// skip directory markers
			if name != "" && !strings.HasSuffix(name, "/") {
				files = append(files, name)
			}
		}
	}

	return files, nil
}

// getKey constructs the full S3 key from the path
func (s *S3Adapter) getKey(p string) string {
	return strings.TrimPrefix(path.Join(s.basePath, p), "/")
}
