package export

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/five82/shotcut/internal/config"
	serrors "github.com/five82/shotcut/internal/errors"
)

// Publisher uploads archives to an S3-compatible bucket.
type Publisher struct {
	client *miniogo.Client
	bucket string
	prefix string
}

// NewPublisher connects to the storage endpoint. Nothing is sent until
// Publish is called.
func NewPublisher(cfg config.StorageConfig) (*Publisher, error) {
	if !cfg.Enabled() {
		return nil, serrors.NewConfigError("storage endpoint and bucket are required for upload", nil)
	}

	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, serrors.NewUploadError("create storage client", err)
	}

	return &Publisher{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// ObjectKey returns the key an archive for runID is stored under.
func ObjectKey(prefix, runID string) string {
	return path.Join(strings.Trim(prefix, "/"), runID+".zip")
}

// EnsureBucket creates the bucket when it does not exist.
func (p *Publisher) EnsureBucket(ctx context.Context) error {
	exists, err := p.client.BucketExists(ctx, p.bucket)
	if err != nil {
		return serrors.NewUploadError(fmt.Sprintf("check bucket %s", p.bucket), err)
	}
	if exists {
		return nil
	}
	if err := p.client.MakeBucket(ctx, p.bucket, miniogo.MakeBucketOptions{}); err != nil {
		return serrors.NewUploadError(fmt.Sprintf("create bucket %s", p.bucket), err)
	}
	return nil
}

// Publish uploads archive under the run's key and returns that key.
func (p *Publisher) Publish(ctx context.Context, runID string, archive []byte) (string, error) {
	if err := p.EnsureBucket(ctx); err != nil {
		return "", err
	}

	key := ObjectKey(p.prefix, runID)
	_, err := p.client.PutObject(ctx, p.bucket, key, bytes.NewReader(archive), int64(len(archive)), miniogo.PutObjectOptions{
		ContentType: "application/zip",
	})
	if err != nil {
		return "", serrors.NewUploadError(fmt.Sprintf("upload %s", key), err)
	}
	return key, nil
}
