package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/whomstve123/mixing-api/internal/config"
	"github.com/whomstve123/mixing-api/internal/fileutil"
)

// Scheme is the URL scheme that routes a stem to object storage.
const Scheme = "s3"

// ObjectAPI is the subset of the S3 client the service uses.
type ObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
}

// Client downloads objects from an S3-compatible endpoint (R2, MinIO, AWS).
type Client struct {
	api      ObjectAPI
	endpoint string
}

// ObjectError reports a failed object retrieval. StatusCode is zero when the
// request never produced an HTTP response.
type ObjectError struct {
	Bucket     string
	Key        string
	StatusCode int
	Err        error
}

func (e *ObjectError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("get object s3://%s/%s: status %d: %v", e.Bucket, e.Key, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("get object s3://%s/%s: %v", e.Bucket, e.Key, e.Err)
}

func (e *ObjectError) Unwrap() error { return e.Err }

// New builds a client from the [storage] config section.
func New(ctx context.Context, cfg config.Storage) (*Client, error) {
	if !cfg.Enabled {
		return nil, errors.New("storage is disabled")
	}
	if cfg.Endpoint == "" || cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, errors.New("storage endpoint and credentials are required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	api := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = cfg.UsePathStyle
	})
	return &Client{api: api, endpoint: cfg.Endpoint}, nil
}

// NewWithAPI wraps an existing ObjectAPI, typically a test double.
func NewWithAPI(api ObjectAPI, endpoint string) *Client {
	return &Client{api: api, endpoint: endpoint}
}

// Endpoint returns the configured endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// DownloadToFile streams bucket/key into dstPath, overwriting any existing file.
func (c *Client) DownloadToFile(ctx context.Context, bucket, key, dstPath string) (int64, error) {
	out, err := c.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		objErr := &ObjectError{Bucket: bucket, Key: key, Err: err}
		var respErr *awshttp.ResponseError
		if errors.As(err, &respErr) {
			objErr.StatusCode = respErr.HTTPStatusCode()
		}
		return 0, objErr
	}
	defer out.Body.Close()

	written, err := fileutil.WriteFile(dstPath, out.Body)
	if err != nil {
		return written, fmt.Errorf("write %s: %w", dstPath, err)
	}
	return written, nil
}

// Ping verifies the endpoint accepts the configured credentials.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.api.ListBuckets(ctx, &s3.ListBucketsInput{}); err != nil {
		return fmt.Errorf("list buckets: %w", err)
	}
	return nil
}

// IsObjectURL reports whether raw uses the s3:// scheme.
func IsObjectURL(raw string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(raw)), Scheme+"://")
}

// ParseObjectURL splits s3://bucket/key into its parts.
func ParseObjectURL(raw string) (bucket, key string, err error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", "", fmt.Errorf("parse object url: %w", err)
	}
	if !strings.EqualFold(parsed.Scheme, Scheme) {
		return "", "", fmt.Errorf("object url %q: scheme must be %s", raw, Scheme)
	}
	bucket = parsed.Host
	key = strings.TrimPrefix(parsed.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("object url %q: bucket and key are required", raw)
	}
	return bucket, key, nil
}
