// Package bucket loads templates from an S3 (or S3-compatible) bucket.
// Objects follow the local directory layout under an optional key prefix:
//
//	<prefix><name>/template.mjml
//	<prefix><name>/metadata.json   (or metadata.yaml, metadata.yml)
package bucket

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dmitrymomot/mailify/pkg/engine/source"
)

const DefaultMaxSize = 1 << 20

// Client is the subset of the S3 API used by the loader.
type Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Config describes the bucket holding the templates.
type Config struct {
	Bucket         string `env:"TEMPLATES_S3_BUCKET"`
	Region         string `env:"TEMPLATES_S3_REGION"`
	Prefix         string `env:"TEMPLATES_S3_PREFIX"`
	AccessKeyID    string `env:"TEMPLATES_S3_ACCESS_KEY_ID"`
	SecretKey      string `env:"TEMPLATES_S3_SECRET_KEY"`
	Endpoint       string `env:"TEMPLATES_S3_ENDPOINT"` // S3-compatible services
	ForcePathStyle bool   `env:"TEMPLATES_S3_FORCE_PATH_STYLE" envDefault:"false"`
}

// Option configures a Loader.
type Option func(*options)

type options struct {
	client     Client
	httpClient *http.Client
	maxSize    int64
}

// WithClient sets a pre-configured client. Useful for testing with mocks.
func WithClient(c Client) Option {
	return func(o *options) {
		o.client = c
	}
}

// WithHTTPClient sets the HTTP client used by the SDK.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithMaxSize limits the size of a single object.
func WithMaxSize(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxSize = n
		}
	}
}

// Loader reads templates from an S3 bucket. It is safe for concurrent use.
type Loader struct {
	client  Client
	bucket  string
	prefix  string
	maxSize int64
}

var _ source.Source = (*Loader)(nil)

// New creates a loader for cfg.
func New(ctx context.Context, cfg Config, opts ...Option) (*Loader, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, ErrInvalidConfig
	}

	o := &options{maxSize: DefaultMaxSize}
	for _, opt := range opts {
		opt(o)
	}

	client := o.client
	if client == nil {
		awsOptions := []func(*config.LoadOptions) error{
			config.WithRegion(cfg.Region),
		}
		if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
			awsOptions = append(awsOptions, config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, ""),
			))
		}
		if o.httpClient != nil {
			awsOptions = append(awsOptions, config.WithHTTPClient(o.httpClient))
		}

		awsConfig, err := config.LoadDefaultConfig(ctx, awsOptions...)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFailedToLoadConfig, err)
		}

		client = s3.NewFromConfig(awsConfig, func(so *s3.Options) {
			if cfg.Endpoint != "" {
				so.BaseEndpoint = aws.String(cfg.Endpoint)
			}
			so.UsePathStyle = cfg.ForcePathStyle
		})
	}

	prefix := strings.TrimPrefix(cfg.Prefix, "/")
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	return &Loader{
		client:  client,
		bucket:  cfg.Bucket,
		prefix:  prefix,
		maxSize: o.maxSize,
	}, nil
}

// Find fetches the template and its metadata.
func (l *Loader) Find(ctx context.Context, name string) (*source.Template, error) {
	if !source.ValidName(name) {
		return nil, TemplateFetchFailed(name, source.ErrInvalidName)
	}

	key := l.prefix + name + "/" + source.TemplateFile
	content, err := l.get(ctx, key)
	if err != nil {
		return nil, TemplateFetchFailed(key, err)
	}

	md, err := l.Metadata(ctx, name)
	if err != nil {
		return nil, err
	}

	return &source.Template{
		Name:     name,
		Metadata: *md,
		Content:  string(content),
	}, nil
}

// Metadata fetches the first metadata object found for the template.
func (l *Loader) Metadata(ctx context.Context, name string) (*source.Metadata, error) {
	if !source.ValidName(name) {
		return nil, MetadataFetchFailed(name, source.ErrInvalidName)
	}

	for _, file := range source.MetadataFiles {
		key := l.prefix + name + "/" + file
		data, err := l.get(ctx, key)
		if errors.Is(err, ErrObjectNotFound) {
			continue
		}
		if err != nil {
			return nil, MetadataFetchFailed(key, err)
		}

		md, err := source.DecodeMetadata(data, name)
		if err != nil {
			return nil, MetadataFormatInvalid(key, err)
		}
		return md, nil
	}

	return nil, MetadataFetchFailed(l.prefix+name+"/"+source.MetadataFile, ErrObjectNotFound)
}

// Partial fetches an object relative to the prefix.
func (l *Loader) Partial(ctx context.Context, p string) (string, error) {
	if !source.ValidPartial(p) {
		return "", TemplateFetchFailed(p, source.ErrInvalidName)
	}

	key := l.prefix + p
	data, err := l.get(ctx, key)
	if err != nil {
		return "", TemplateFetchFailed(key, err)
	}
	return string(data), nil
}

func (l *Loader) get(ctx context.Context, key string) ([]byte, error) {
	out, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, classify(err)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(out.Body, l.maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > l.maxSize {
		return nil, ErrTooLarge
	}
	return data, nil
}
