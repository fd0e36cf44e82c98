package artifact

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Sink stores a named artifact. A failed Put never leaves a partial artifact
// under name. Put must not retain body after it returns.
type Sink interface {
	Put(ctx context.Context, name string, body []byte) error
}

type NopSink struct{}

func (NopSink) Put(context.Context, string, []byte) error { return nil }

// FileSink writes artifacts below Dir through a temporary file and a rename.
type FileSink struct {
	Dir string
}

func (s FileSink) Put(_ context.Context, name string, body []byte) error {
	target := filepath.Join(s.Dir, filepath.FromSlash(name))
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return fmt.Errorf("write artifact %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync artifact %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close artifact %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("rename artifact %s: %w", name, err)
	}
	return nil
}

type S3Config struct {
	Bucket          string `envconfig:"RAD_S3_BUCKET" yaml:"bucket" toml:"bucket"`
	Region          string `envconfig:"RAD_S3_REGION" default:"us-east-1" yaml:"region" toml:"region"`
	Endpoint        string `envconfig:"RAD_S3_ENDPOINT" yaml:"endpoint" toml:"endpoint"`
	AccessKeyID     string `envconfig:"RAD_S3_ACCESS_KEY_ID" yaml:"access_key_id" toml:"access_key_id"`
	SecretAccessKey string `envconfig:"RAD_S3_SECRET_ACCESS_KEY" yaml:"secret_access_key" toml:"secret_access_key"`
	Prefix          string `envconfig:"RAD_S3_PREFIX" yaml:"prefix" toml:"prefix"`
	UsePathStyle    bool   `envconfig:"RAD_S3_PATH_STYLE" default:"false" yaml:"path_style" toml:"path_style"`
}

// S3Sink uploads artifacts as objects under Prefix. PutObject is atomic, so
// an interrupted upload leaves no object behind.
type S3Sink struct {
	client *s3.Client
	bucket string
	prefix string
}

func NewS3Sink(ctx context.Context, cfg S3Config) (*S3Sink, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
		config.WithRequestChecksumCalculation(aws.RequestChecksumCalculationWhenRequired),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.UsePathStyle
		})
	}

	return &S3Sink{
		client: s3.NewFromConfig(awsCfg, s3Opts...),
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

func (s *S3Sink) Put(ctx context.Context, name string, body []byte) error {
	key := path.Join(s.prefix, name)
	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("text/tab-separated-values"),
	}); err != nil {
		return fmt.Errorf("s3 put object %s: %w", key, err)
	}
	return nil
}

type SinkType string

const (
	SinkTypeNone SinkType = "NONE"
	SinkTypeFile SinkType = "FILE"
	SinkTypeS3   SinkType = "S3"
)

type Config struct {
	Sink SinkType `envconfig:"RAD_ARTIFACT_SINK" default:"FILE" yaml:"sink" toml:"sink"`
	Dir  string   `envconfig:"RAD_ARTIFACT_DIR" default:"." yaml:"dir" toml:"dir"`
	S3   S3Config `yaml:"s3" toml:"s3"`
}

func NewFromConfig(ctx context.Context, cfg *Config) (Sink, error) {
	switch cfg.Sink {
	case SinkTypeNone:
		return NopSink{}, nil
	case SinkTypeFile:
		return FileSink{Dir: cfg.Dir}, nil
	case SinkTypeS3:
		return NewS3Sink(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown artifact sink: %s", cfg.Sink)
	}
}
