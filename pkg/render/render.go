// Package render serves the static site that shares a host with the
// contact endpoint. Files come from an S3-compatible bucket (such as
// Cloudflare R2) when one is configured, or from a local directory.
package render

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Options selects and configures the backing store.
type Options struct {
	Dir string // used when Bucket is empty

	Bucket          string
	Endpoint        string // e.g. https://<account>.r2.cloudflarestorage.com; empty means AWS
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// New returns the renderer described by opts.
func New(ctx context.Context, opts Options) (http.Handler, error) {
	if opts.Bucket == "" {
		if opts.Dir == "" {
			return nil, errors.New("render: neither bucket nor directory configured")
		}
		return http.FileServer(http.Dir(opts.Dir)), nil
	}

	client, err := newS3Client(ctx, opts)
	if err != nil {
		return nil, err
	}
	return NewBucketRenderer(client, opts.Bucket), nil
}

func newS3Client(ctx context.Context, opts Options) (*s3.Client, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("render: failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			// R2 and most S3-compatible stores need path-style addressing
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}
