package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ChaseRain/coverstudio/internal/infra/logger"
	"github.com/ChaseRain/coverstudio/pkg/errors"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const (
	TypeNone  = "none"
	TypeLocal = "local"
	TypeS3    = "s3"
)

type S3Options struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	PublicURL       string
	PathStyle       bool
	Prefix          string
}

type Options struct {
	Type     string
	BasePath string
	BaseURL  string
	S3       S3Options
}

// objectPutter is the subset of *s3.Client used for uploads.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Service persists exported files. With TypeNone nothing is written and
// Save returns an empty URL.
type Service struct {
	storageType string
	basePath    string
	baseURL     string
	s3Client    objectPutter
	s3Opts      S3Options
	logger      *logger.Logger
}

func New(opts Options, log *logger.Logger) (*Service, error) {
	s := &Service{
		storageType: opts.Type,
		basePath:    opts.BasePath,
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		s3Opts:      opts.S3,
		logger:      log,
	}

	switch opts.Type {
	case TypeNone, "":
		s.storageType = TypeNone
	case TypeLocal:
	case TypeS3:
		if opts.S3.Bucket == "" {
			return nil, errors.New(errors.ErrCodeStorage, "s3 storage requires a bucket")
		}
		s.s3Client = newS3Client(opts.S3)
	default:
		return nil, errors.New(errors.ErrCodeStorage, fmt.Sprintf("unknown storage type %q", opts.Type))
	}

	log.Info("export storage initialized", "type", s.storageType)
	return s, nil
}

func newS3Client(opts S3Options) *s3.Client {
	region := opts.Region
	if region == "" {
		region = "us-east-1"
	}
	s3Opts := s3.Options{
		Region:       region,
		UsePathStyle: opts.PathStyle,
	}
	if opts.AccessKeyID != "" {
		s3Opts.Credentials = credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, "")
	}
	if opts.Endpoint != "" {
		s3Opts.BaseEndpoint = aws.String(opts.Endpoint)
	}
	return s3.New(s3Opts)
}

func (s *Service) Enabled() bool {
	return s.storageType != TypeNone
}

// Save stores data under name and returns the URL it can be fetched from.
func (s *Service) Save(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	switch s.storageType {
	case TypeLocal:
		return s.saveLocal(name, data)
	case TypeS3:
		return s.saveS3(ctx, name, data, contentType)
	default:
		return "", nil
	}
}

func (s *Service) saveLocal(name string, data []byte) (string, error) {
	if err := os.MkdirAll(s.basePath, 0755); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStorage, "failed to create output directory")
	}

	filename := filepath.Base(name)
	filePath := filepath.Join(s.basePath, filename)

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStorage, "failed to write file")
	}

	url := fmt.Sprintf("%s/%s", s.baseURL, filename)
	s.logger.Info("saved file locally", "path", filePath, "url", url, "size", len(data))

	return url, nil
}

func (s *Service) saveS3(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	key := path.Join(s.s3Opts.Prefix, path.Base(name))

	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.s3Opts.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStorage, "failed to upload to s3")
	}

	var url string
	if s.s3Opts.PublicURL != "" {
		url = fmt.Sprintf("%s/%s", strings.TrimRight(s.s3Opts.PublicURL, "/"), key)
	} else {
		url = fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Opts.Bucket, key)
	}
	s.logger.Info("saved file to s3", "bucket", s.s3Opts.Bucket, "key", key, "size", len(data))

	return url, nil
}
