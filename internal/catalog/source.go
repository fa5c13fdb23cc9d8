package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/onnwee/assessrec/internal/tracing"
)

// Source loads a catalog once at startup.
type Source interface {
	Load(ctx context.Context) (*Catalog, error)
}

// maxCatalogBytes bounds how much is read from a remote object.
const maxCatalogBytes = 64 << 20

// FileSource reads a catalog document from the local filesystem.
type FileSource struct {
	Path   string
	Format Format
}

// Load reads and decodes the file.
func (s FileSource) Load(ctx context.Context) (cat *Catalog, err error) {
	_, endSpan := tracing.StartSpan(ctx, "catalog.load_file")
	defer func() { endSpan(err) }()

	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	cat, err = Decode(data, s.Format)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "catalog loaded",
		"source", "file",
		"path", s.Path,
		"format", string(s.Format),
		"records", cat.Len())
	return cat, nil
}

// ObjectGetter is the part of the S3 client used to fetch catalog objects.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Config holds connection settings for an S3-compatible bucket.
type S3Config struct {
	Bucket          string
	Key             string
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Format          Format
}

// S3 source errors.
var (
	ErrMissingBucket = errors.New("catalog bucket is required")
	ErrMissingKey    = errors.New("catalog object key is required")
)

// S3Source reads a catalog object from S3 or an S3-compatible store such as R2.
type S3Source struct {
	client ObjectGetter
	bucket string
	key    string
	format Format
}

// NewS3Source creates an S3Source with a client built from cfg.
func NewS3Source(cfg S3Config) (*S3Source, error) {
	if cfg.Bucket == "" {
		return nil, ErrMissingBucket
	}
	if cfg.Key == "" {
		return nil, ErrMissingKey
	}

	region := cfg.Region
	if region == "" {
		region = "auto"
	}
	opts := s3.Options{
		Region: region,
	}
	if cfg.AccessKeyID != "" {
		opts.Credentials = aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		))
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}

	return NewS3SourceWithClient(s3.New(opts), cfg.Bucket, cfg.Key, cfg.Format), nil
}

// NewS3SourceWithClient creates an S3Source around an existing client.
func NewS3SourceWithClient(client ObjectGetter, bucket, key string, format Format) *S3Source {
	if format == "" {
		format = FormatFromPath(key)
	}
	return &S3Source{client: client, bucket: bucket, key: key, format: format}
}

// Load fetches and decodes the object.
func (s *S3Source) Load(ctx context.Context) (cat *Catalog, err error) {
	ctx, endSpan := tracing.StartSpan(ctx, "catalog.load_s3")
	defer func() { endSpan(err) }()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog object s3://%s/%s: %w", s.bucket, s.key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, maxCatalogBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog object: %w", err)
	}
	cat, err = Decode(data, s.format)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "catalog loaded",
		"source", "s3",
		"bucket", s.bucket,
		"key", s.key,
		"format", string(s.format),
		"records", cat.Len())
	return cat, nil
}
