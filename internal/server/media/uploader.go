// Package media moves staged local files into S3-compatible object storage
// and returns durable public URLs for them.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/vidkeeper/internal/filex"
	"github.com/google/uuid"
)

// Asset is a stored media object.
type Asset struct {
	URL string
	Key string
}

// Uploader stores the file at localPath and returns where it ended up.
// An empty localPath yields (nil, nil). The local file is removed after the
// attempt, whether or not it succeeded.
type Uploader interface {
	Upload(ctx context.Context, localPath string) (*Asset, error)
}

// objectUploader is the part of manager.Uploader we use.
type objectUploader interface {
	Upload(ctx context.Context, in *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

var (
	loadDefaultAWSConfig  = config.LoadDefaultConfig
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// Options configures an S3Uploader.
type Options struct {
	Region       string
	Bucket       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
	PublicURL    string
}

// S3Uploader implements Uploader on top of the s3 manager.
type S3Uploader struct {
	uploader  objectUploader
	bucket    string
	publicURL string
	now       func() time.Time
}

// NewS3Uploader builds an uploader using static credentials and, when set, a
// custom endpoint (MinIO) addressed path-style.
func NewS3Uploader(ctx context.Context, opts Options) (*S3Uploader, error) {
	if opts.Bucket == "" {
		return nil, errors.New("media: bucket is required")
	}

	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(opts.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKey,
			opts.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if opts.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(opts.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Uploader(manager.NewUploader(client), opts.Bucket, opts.PublicURL), nil
}

func newS3Uploader(u objectUploader, bucket, publicURL string) *S3Uploader {
	return &S3Uploader{
		uploader:  u,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		now:       time.Now,
	}
}

// Upload implements Uploader.
func (s *S3Uploader) Upload(ctx context.Context, localPath string) (*Asset, error) {
	if localPath == "" {
		return nil, nil
	}
	defer func() { _ = filex.Remove(localPath) }()

	f, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	contentType, err := detectContentType(f, localPath)
	if err != nil {
		return nil, err
	}

	key := s.objectKey(filepath.Ext(localPath))

	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", key, err)
	}

	return &Asset{URL: s.publicURL + "/" + key, Key: key}, nil
}

func (s *S3Uploader) objectKey(ext string) string {
	d := s.now().UTC()
	return fmt.Sprintf("media/%04d/%02d/%02d/%s%s", d.Year(), d.Month(), d.Day(), uuid.New(), strings.ToLower(ext))
}

// detectContentType uses the extension first and falls back to sniffing,
// leaving f positioned at the start.
func detectContentType(f io.ReadSeeker, name string) (string, error) {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); ct != "" {
		return ct, nil
	}

	buf := make([]byte, 512)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("seek %s: %w", name, err)
	}
	return http.DetectContentType(buf[:n]), nil
}
