package artifact

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/afero"

	"github.com/samap-tools/samprep/internal/errors"
	"github.com/samap-tools/samprep/internal/event"
)

// ObjectPutter is the subset of the S3 client used for uploads.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config holds client construction parameters. Credentials come from the
// default AWS chain.
type S3Config struct {
	Region    string
	Endpoint  string // optional; set for MinIO and other S3-compatible stores
	PathStyle bool
}

// Uploader copies local artifacts to S3.
type Uploader struct {
	client ObjectPutter
	fs     afero.Fs
	events event.Sink
}

// NewS3Uploader builds an Uploader backed by a real S3 client.
func NewS3Uploader(ctx context.Context, cfg S3Config, fs afero.Fs, sink event.Sink) (*Uploader, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, errors.NewIOError("failed to load AWS configuration", err).WithOp("upload")
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewUploader(client, fs, sink), nil
}

// NewUploader builds an Uploader around an existing client.
func NewUploader(client ObjectPutter, fs afero.Fs, sink event.Sink) *Uploader {
	return &Uploader{client: client, fs: fs, events: event.OrDiscard(sink)}
}

// ParseS3URI splits s3://bucket/prefix into its bucket and key prefix.
func ParseS3URI(uri string) (bucket, prefix string, err error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", errors.NewValidationError("invalid upload destination").WithValue(uri).WithCause(err)
	}
	if u.Scheme != "s3" {
		return "", "", errors.NewValidationError("upload destination must use the s3:// scheme").WithValue(uri)
	}
	if u.Host == "" {
		return "", "", errors.NewValidationError("upload destination has no bucket").WithValue(uri)
	}
	return u.Host, strings.TrimPrefix(u.Path, "/"), nil
}

// ObjectKey returns the key a local file is uploaded under: the file's base
// name below prefix.
func ObjectKey(prefix, localPath string) string {
	base := filepath.Base(localPath)
	if prefix == "" {
		return base
	}
	return path.Join(prefix, base)
}

// Upload copies localPath to dest (s3://bucket/prefix) and returns the URI of
// the uploaded object.
func (u *Uploader) Upload(ctx context.Context, localPath, dest string) (string, error) {
	bucket, prefix, err := ParseS3URI(dest)
	if err != nil {
		return "", err
	}
	key := ObjectKey(prefix, localPath)

	f, err := u.fs.Open(localPath)
	if err != nil {
		return "", errors.NewIOError("failed to open artifact for upload", err).WithPath(localPath).WithOp("upload")
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return "", errors.NewIOError("failed to stat artifact for upload", err).WithPath(localPath).WithOp("upload")
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(stat.Size()),
		ContentType:   aws.String("application/octet-stream"),
	}
	if _, err := u.client.PutObject(ctx, input); err != nil {
		return "", errors.NewIOError("failed to upload artifact", err).WithPath(localPath).WithOp("upload")
	}

	uri := fmt.Sprintf("s3://%s/%s", bucket, key)
	u.events.Publish(event.NewArtifactUploadedEvent(localPath, uri))
	return uri, nil
}
