// Package filestore keeps product files in S3-compatible object storage and
// hands out short-lived download links.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const (
	scheme         = "s3://"
	presignExpires = 15 * time.Minute
)

var ErrInvalidLocation = errors.New("invalid object location")

type Config struct {
	Bucket       string
	Region       string
	AccessKey    string // empty uses the default AWS credential chain
	SecretKey    string
	BaseEndpoint string // set for MinIO and other S3-compatible servers
}

type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type presignAPI interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type Store struct {
	bucket  string
	objects objectAPI
	presign presignAPI
	now     func() time.Time
}

func New(ctx context.Context, cfg Config) (*Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	})
	return newStore(cfg.Bucket, client, s3.NewPresignClient(client)), nil
}

func newStore(bucket string, objects objectAPI, presign presignAPI) *Store {
	return &Store{bucket: bucket, objects: objects, presign: presign, now: time.Now}
}

// Put uploads body under a fresh key and returns its s3:// location.
func (s *Store) Put(ctx context.Context, name, contentType string, size int64, body io.Reader) (string, error) {
	key := StorageKey(s.now(), name)
	_, err := s.objects.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return Location(s.bucket, key), nil
}

// DownloadURL turns a stored file location into something a client can
// fetch. Object storage locations become presigned GETs; anything else is
// already a URL and is returned unchanged.
func (s *Store) DownloadURL(ctx context.Context, location string) (string, error) {
	if !IsObjectLocation(location) {
		return location, nil
	}
	bucket, key, err := ParseLocation(location)
	if err != nil {
		return "", err
	}

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignExpires))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", location, err)
	}
	return req.URL, nil
}

// StorageKey builds products/YYYY/MM/DD/<uuid>-<name>.
func StorageKey(t time.Time, name string) string {
	return fmt.Sprintf("products/%04d/%02d/%02d/%s-%s",
		t.Year(), t.Month(), t.Day(), uuid.NewString(), cleanName(name))
}

func cleanName(name string) string {
	base := path.Base(strings.ReplaceAll(name, `\`, "/"))
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, base)
	if clean == "" || clean == "." || clean == "/" {
		return "file"
	}
	return clean
}

func Location(bucket, key string) string {
	return scheme + bucket + "/" + key
}

func IsObjectLocation(location string) bool {
	return strings.HasPrefix(location, scheme)
}

func ParseLocation(location string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(location, scheme)
	bucket, key, ok := strings.Cut(rest, "/")
	if !IsObjectLocation(location) || !ok || bucket == "" || key == "" {
		return "", "", ErrInvalidLocation
	}
	return bucket, key, nil
}
