package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/heliodyne/pulseview/codec"
	"github.com/heliodyne/pulseview/metrics"
	"github.com/heliodyne/pulseview/types"
)

// blockSuffix is the object key suffix for archived block containers.
const blockSuffix = ".pvb"

// S3Config holds configuration for the object-storage fetch backend.
// Archived acquisition runs are published as whole-run block objects, one
// per selector. The window and option fields of a Request are therefore
// ignored by this backend; trimming happens after decode.
type S3Config struct {
	// Bucket is the S3 bucket name (required).
	Bucket string
	// Prefix is the key prefix within the bucket (optional).
	Prefix string
	// Region is the AWS region (optional, uses default chain if empty).
	Region string
	// Endpoint is a custom S3 endpoint URL for S3-compatible providers
	// (e.g. MinIO on the lab network). Empty uses the default AWS endpoint.
	Endpoint string
	// UsePathStyle forces path-style addressing (bucket in path, not
	// subdomain). Required by most S3-compatible providers.
	UsePathStyle bool
}

// Validate checks that required S3 configuration is present.
func (c *S3Config) Validate() error {
	if c.Bucket == "" {
		return errors.New("remote: S3 bucket is required")
	}
	return nil
}

// s3API is the subset of the S3 client the backend uses. Narrowed for
// test injection.
type s3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// S3Client fetches archived run blocks from object storage.
type S3Client struct {
	api       s3API
	cfg       S3Config
	collector *metrics.Collector
}

// NewS3Client creates an object-storage data client.
// Uses the AWS SDK default credential chain (env vars, shared config, IAM role).
func NewS3Client(ctx context.Context, cfg S3Config, collector *metrics.Collector) (*S3Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("remote: failed to load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = &endpoint
		})
	}
	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return &S3Client{
		api:       s3.NewFromConfig(awsConfig, s3Opts...),
		cfg:       cfg,
		collector: collector,
	}, nil
}

// NewS3ClientWithAPI creates an S3 client with an injected API, for tests.
func NewS3ClientWithAPI(api s3API, cfg S3Config, collector *metrics.Collector) (*S3Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &S3Client{api: api, cfg: cfg, collector: collector}, nil
}

// Fetch implements Client. Archived objects are whole-run blocks, so only
// the selector participates in the key.
func (c *S3Client) Fetch(ctx context.Context, req Request) (types.RawBlock, error) {
	key := c.objectKey(req.Selector)

	out, err := c.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &c.cfg.Bucket,
		Key:    &key,
	})
	if err != nil {
		return types.RawBlock{}, c.wrapS3Error("fetch", key, err)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return types.RawBlock{}, &TransportError{
			Kind:   classifyDialError(err),
			Op:     "fetch",
			Target: key,
			Err:    err,
		}
	}
	c.collector.AddBytesFetched(int64(len(data)))

	kind, err := codec.Kind(data)
	if err != nil {
		return types.RawBlock{}, err
	}
	return types.RawBlock{Kind: kind, Bytes: data}, nil
}

// ModifiedTime implements Client using the object's LastModified stamp.
func (c *S3Client) ModifiedTime(ctx context.Context, selector string) (time.Time, error) {
	key := c.objectKey(selector)

	out, err := c.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: &c.cfg.Bucket,
		Key:    &key,
	})
	if err != nil {
		return time.Time{}, c.wrapS3Error("modified", key, err)
	}
	if out.LastModified == nil {
		return time.Time{}, nil
	}
	return *out.LastModified, nil
}

func (c *S3Client) objectKey(selector string) string {
	key := strings.TrimPrefix(selector, "/") + blockSuffix
	if c.cfg.Prefix != "" {
		key = strings.TrimSuffix(c.cfg.Prefix, "/") + "/" + key
	}
	return key
}

// wrapS3Error classifies an S3 SDK error as a transport error. Missing
// keys and access failures are server rejections; everything else is
// reachability or timeout.
func (c *S3Client) wrapS3Error(op, key string, err error) error {
	msg := err.Error()
	kind := classifyDialError(err)
	if strings.Contains(msg, "NoSuchKey") || strings.Contains(msg, "NotFound") ||
		strings.Contains(msg, "AccessDenied") || strings.Contains(msg, "Forbidden") ||
		strings.Contains(msg, "NoSuchBucket") {
		kind = ErrServerRejected
	}
	return &TransportError{Kind: kind, Op: op, Target: key, Err: err}
}

var _ Client = (*S3Client)(nil)
