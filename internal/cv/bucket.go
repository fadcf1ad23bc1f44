package cv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// maxFileBytes caps a downloaded résumé.
const maxFileBytes = 20 << 20

// ObjectGetter is the part of the S3 client the bucket source uses.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// BucketConfig describes an S3-compatible bucket such as Cloudflare R2.
type BucketConfig struct {
	Bucket    string
	Prefix    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

// Bucket reads résumé files from object storage.
type Bucket struct {
	client ObjectGetter
	bucket string
	prefix string
}

// NewBucket creates a bucket source with static credentials. A custom
// endpoint switches to path-style addressing.
func NewBucket(ctx context.Context, cfg BucketConfig) (*Bucket, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewBucketWithClient(client, cfg.Bucket, cfg.Prefix), nil
}

// NewBucketWithClient creates a bucket source around an existing client.
func NewBucketWithClient(client ObjectGetter, bucket, prefix string) *Bucket {
	return &Bucket{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

// Read downloads the named object.
func (b *Bucket) Read(ctx context.Context, name string) ([]byte, error) {
	key := strings.TrimLeft(name, "/")
	if b.prefix != "" {
		key = b.prefix + "/" + key
	}

	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: s3://%s/%s", ErrNotFound, b.bucket, key)
		}
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(out.Body, maxFileBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}
	return data, nil
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var re *awshttp.ResponseError
	return errors.As(err, &re) && re.HTTPStatusCode() == http.StatusNotFound
}
