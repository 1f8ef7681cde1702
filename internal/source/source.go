// Package source opens the configured export input as a byte stream. The
// pipelines only see an io.ReadCloser; whether the bytes come from a local
// file or an S3 object is decided here.
package source

import (
	"context"
	"fmt"
	"io"
	"os"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config selects and locates the input.
type Config struct {
	Kind string `json:"kind"` // "file" or "s3"
	Path string `json:"path"` // file path, or object key for s3

	// S3 only.
	Bucket    string `json:"bucket,omitempty"`
	Region    string `json:"region,omitempty"`
	Endpoint  string `json:"endpoint,omitempty"`   // optional, for MinIO
	PathStyle bool   `json:"path_style,omitempty"` // path-style addressing, for MinIO
}

// Open returns a reader over the configured input. The caller owns the
// close.
func Open(ctx context.Context, cfg Config) (io.ReadCloser, error) {
	switch cfg.Kind {
	case "file":
		if cfg.Path == "" {
			return nil, fmt.Errorf("source: file path required")
		}
		f, err := os.Open(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("source: open %s: %w", cfg.Path, err)
		}
		return f, nil

	case "s3":
		return openS3(ctx, cfg)

	default:
		return nil, fmt.Errorf("source: unsupported source.kind=%q", cfg.Kind)
	}
}

func openS3(ctx context.Context, cfg Config) (io.ReadCloser, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("source: s3 bucket required")
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("source: s3 object key required")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("source: aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(cfg.Bucket),
		Key:    aws.String(cfg.Path),
	})
	if err != nil {
		return nil, fmt.Errorf("source: s3 get s3://%s/%s: %w", cfg.Bucket, cfg.Path, err)
	}
	return out.Body, nil
}
