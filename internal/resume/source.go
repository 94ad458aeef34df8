package resume

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Document is a stored resume file.
type Document struct {
	Key  string
	MIME string
	Data []byte
}

// Text extracts the document text.
func (d *Document) Text() (string, error) {
	return ExtractText(d.MIME, d.Data)
}

// Source loads stored resume documents by key.
type Source interface {
	Load(ctx context.Context, key string) (*Document, error)
}

// S3Config describes the bucket resumes are stored in. Endpoint is set for
// S3-compatible stores such as Cloudflare R2 or MinIO.
type S3Config struct {
	Bucket    string `json:"bucket" yaml:"bucket"`
	Endpoint  string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Region    string `json:"region,omitempty" yaml:"region,omitempty"`
	AccessKey string `json:"access_key,omitempty" yaml:"access_key,omitempty"`
	SecretKey string `json:"secret_key,omitempty" yaml:"secret_key,omitempty"`
}

// Enabled reports whether a bucket is configured.
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// objectGetter is the subset of *s3.Client used by S3Source.
type objectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads resumes from an S3 bucket.
type S3Source struct {
	client objectGetter
	bucket string
}

// NewS3Source creates an S3 client from cfg. Static credentials are used when
// both keys are set, otherwise the default AWS credential chain applies.
func NewS3Source(ctx context.Context, cfg S3Config) (*S3Source, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("resume bucket is required")
	}
	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Source{client: client, bucket: cfg.Bucket}, nil
}

// Load downloads the object stored under key.
func (s *S3Source) Load(ctx context.Context, key string) (*Document, error) {
	if key == "" {
		return nil, errors.New("resume key is required")
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := readAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}

	mime := aws.ToString(out.ContentType)
	if mime == "" || baseMIME(mime) == "application/octet-stream" {
		mime = DetectMIME(key, data)
	}
	return &Document{Key: key, MIME: mime, Data: data}, nil
}

// LoadText loads the document under key and extracts its text.
func LoadText(ctx context.Context, src Source, key string) (string, error) {
	doc, err := src.Load(ctx, key)
	if err != nil {
		return "", err
	}
	return doc.Text()
}
