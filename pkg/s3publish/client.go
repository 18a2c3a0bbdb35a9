// Package s3publish uploads exported sweep artifacts to S3.
package s3publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/eunmann/searchsweep/internal/logctx"
	"github.com/eunmann/searchsweep/pkg/logging"
)

// DefaultPartSize is the multipart chunk size. Exports are small, so nearly
// every upload is a single PutObject.
const DefaultPartSize = 8 * 1024 * 1024

// Client uploads files to S3.
type Client struct {
	uploader *manager.Uploader
}

// NewClient creates a new S3 client using default AWS configuration.
func NewClient(ctx context.Context) (*Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return NewClientWithConfig(cfg), nil
}

// NewClientWithConfig creates a new S3 client with a custom AWS config.
func NewClientWithConfig(cfg aws.Config) *Client {
	return NewClientWithAPI(s3.NewFromConfig(cfg))
}

// NewClientWithAPI creates a client over any S3 upload API implementation.
func NewClientWithAPI(api manager.UploadAPIClient) *Client {
	return &Client{
		uploader: manager.NewUploader(api, func(u *manager.Uploader) {
			u.PartSize = DefaultPartSize
			u.Concurrency = 2
		}),
	}
}

// Upload is the outcome of a successful upload.
type Upload struct {
	Bucket   string
	Key      string
	Location string
	Bytes    int64
}

// URI returns the s3:// URI of the uploaded object.
func (u Upload) URI() string {
	return "s3://" + u.Bucket + "/" + u.Key
}

// UploadFile uploads the local file at localPath to uri. When uri names a
// bucket or a prefix ending in "/", the file's base name is appended.
func (c *Client) UploadFile(ctx context.Context, localPath, uri, contentType string) (Upload, error) {
	bucket, key, err := ParseS3URI(uri)
	if err != nil {
		return Upload{}, err
	}
	key = ObjectKey(key, localPath)

	f, err := os.Open(localPath)
	if err != nil {
		return Upload{}, fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Upload{}, fmt.Errorf("stat %s: %w", localPath, err)
	}

	start := time.Now()
	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   f,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	out, err := c.uploader.Upload(ctx, input)
	if err != nil {
		return Upload{}, fmt.Errorf("upload s3://%s/%s: %w", bucket, key, err)
	}

	up := Upload{Bucket: bucket, Key: key, Location: out.Location, Bytes: info.Size()}
	logging.PhaseComplete(logctx.FromContext(ctx), "publish", time.Since(start)).
		Str("uri", up.URI()).
		Bytes("size", up.Bytes).
		Log("artifact uploaded")
	return up, nil
}

// ObjectKey resolves the destination key for localPath under key.
func ObjectKey(key, localPath string) string {
	if key == "" || strings.HasSuffix(key, "/") {
		return path.Join(key, filepath.Base(localPath))
	}
	return key
}

// ParseS3URI parses an S3 URI into bucket and key.
func ParseS3URI(uri string) (bucket, key string, err error) {
	if !strings.HasPrefix(uri, "s3://") {
		return "", "", errors.New("invalid S3 URI: must start with s3://")
	}

	rest := strings.TrimPrefix(uri, "s3://")
	parts := strings.SplitN(rest, "/", 2)
	if parts[0] == "" {
		return "", "", errors.New("invalid S3 URI: missing bucket name")
	}

	bucket = parts[0]
	if len(parts) == 2 {
		key = parts[1]
	}
	return bucket, key, nil
}
