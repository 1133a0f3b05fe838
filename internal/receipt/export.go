package receipt

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"family-store/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// Exporter stores a rendered receipt and returns where it went.
type Exporter interface {
	Export(ctx context.Context, file *model.ReceiptFile) (string, error)
}

// DirExporter writes receipts into a local directory.
type DirExporter struct {
	dir    string
	logger zerolog.Logger
}

// NewDirExporter creates the directory if needed.
func NewDirExporter(dir string, logger zerolog.Logger) (*DirExporter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create receipt directory %s: %w", dir, err)
	}
	return &DirExporter{
		dir:    dir,
		logger: logger.With().Str("component", "receipt-dir-exporter").Logger(),
	}, nil
}

// Export writes file under its download filename.
func (e *DirExporter) Export(ctx context.Context, file *model.ReceiptFile) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := filepath.Join(e.dir, filepath.Base(file.Filename))
	if err := os.WriteFile(path, file.Data, 0o644); err != nil {
		e.logger.Error().Err(err).Str("path", path).Msg("failed to write receipt")
		return "", fmt.Errorf("failed to write receipt %s: %w", path, err)
	}

	e.logger.Info().Str("order_id", file.OrderID).Str("path", path).Msg("receipt exported")
	return path, nil
}

// ObjectPutter is the part of the S3 client the exporter needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Exporter uploads receipts to a bucket under a key prefix.
type S3Exporter struct {
	client ObjectPutter
	bucket string
	prefix string
	logger zerolog.Logger
}

// NewS3Exporter creates an S3 exporter.
func NewS3Exporter(client ObjectPutter, bucket, prefix string, logger zerolog.Logger) *S3Exporter {
	return &S3Exporter{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logger.With().Str("component", "receipt-s3-exporter").Logger(),
	}
}

// Export uploads file and returns its s3:// location.
func (e *S3Exporter) Export(ctx context.Context, file *model.ReceiptFile) (string, error) {
	key := e.prefix + file.Filename

	_, err := e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file.Data),
		ContentType: aws.String("image/png"),
	})
	if err != nil {
		e.logger.Error().
			Err(err).
			Str("bucket", e.bucket).
			Str("key", key).
			Msg("failed to put receipt to S3")
		return "", fmt.Errorf("failed to put receipt to S3 (bucket=%s, key=%s): %w", e.bucket, key, err)
	}

	location := fmt.Sprintf("s3://%s/%s", e.bucket, key)
	e.logger.Info().Str("order_id", file.OrderID).Str("location", location).Msg("receipt exported")
	return location, nil
}

// FallbackExporter tries the primary exporter and, on failure, the secondary.
type FallbackExporter struct {
	primary   Exporter
	secondary Exporter
	logger    zerolog.Logger
}

// NewFallbackExporter creates a fallback exporter. Either side may be nil.
func NewFallbackExporter(primary, secondary Exporter, logger zerolog.Logger) *FallbackExporter {
	return &FallbackExporter{
		primary:   primary,
		secondary: secondary,
		logger:    logger.With().Str("component", "receipt-fallback-exporter").Logger(),
	}
}

// Export returns the first successful location.
func (e *FallbackExporter) Export(ctx context.Context, file *model.ReceiptFile) (string, error) {
	if e.primary != nil {
		location, err := e.primary.Export(ctx, file)
		if err == nil {
			return location, nil
		}
		if e.secondary == nil {
			return "", err
		}
		e.logger.Warn().Err(err).Msg("primary receipt export failed, trying fallback")
	}

	if e.secondary == nil {
		return "", fmt.Errorf("no receipt exporter configured")
	}
	return e.secondary.Export(ctx, file)
}
