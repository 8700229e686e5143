package storage

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"resumebuilder/internal/config"
	"resumebuilder/internal/errors"
	"resumebuilder/internal/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ArtifactArchive mirrors a build's local artifacts somewhere durable.
type ArtifactArchive interface {
	Archive(ctx context.Context, manifest types.ArtifactManifest) error
}

// NoopArchive keeps artifacts local only.
type NoopArchive struct{}

// Archive does nothing.
func (NoopArchive) Archive(context.Context, types.ArtifactManifest) error { return nil }

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archive uploads artifacts to s3://bucket/prefix/{timestamp}/{file}.
type S3Archive struct {
	client objectPutter
	bucket string
	prefix string
}

var _ ArtifactArchive = (*S3Archive)(nil)

// NewS3Archive loads the default AWS credential chain for region.
func NewS3Archive(ctx context.Context, cfg config.S3Config) (*S3Archive, error) {
	if cfg.Bucket == "" {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "S3 bucket is required", nil)
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "Failed to load AWS configuration", err)
	}
	return newS3Archive(s3.NewFromConfig(awsCfg), cfg.Bucket, cfg.Prefix), nil
}

func newS3Archive(client objectPutter, bucket, prefix string) *S3Archive {
	return &S3Archive{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(strings.TrimSpace(prefix), "/"),
	}
}

// Archive uploads every file in manifest. It stops at the first failure.
func (a *S3Archive) Archive(ctx context.Context, manifest types.ArtifactManifest) error {
	for _, p := range manifest.Paths() {
		if p == "" {
			continue
		}
		if err := a.upload(ctx, manifest.Timestamp, p); err != nil {
			return err
		}
	}
	return nil
}

func (a *S3Archive) upload(ctx context.Context, ts, localPath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return errors.NewIOError(errors.ErrCodeStorageFailed, "Failed to open artifact for upload", err)
	}
	defer f.Close()

	key := objectKey(a.prefix, ts, filepath.Base(localPath))
	contentType := mime.TypeByExtension(filepath.Ext(localPath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType),

		ServerSideEncryption: s3types.ServerSideEncryptionAes256,
	})
	if err != nil {
		return errors.NewIOError(errors.ErrCodeStorageFailed,
			fmt.Sprintf("s3 put object bucket=%s key=%s", a.bucket, key), err)
	}
	return nil
}

func objectKey(prefix, ts, name string) string {
	if prefix == "" {
		return path.Join(ts, name)
	}
	return path.Join(prefix, ts, name)
}
