package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jpfielding/dicometa/internal/config"
	"github.com/jpfielding/dicometa/pkg/dicom"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Bucket reads upload batches from S3 compatible object storage
type Bucket struct {
	client *minio.Client
	name   string
}

// NewMinio creates a client for bucket; no request is made until first use
func NewMinio(cfg config.MinioConfig, bucket string) (*Bucket, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize minio client: %w", err)
	}
	return &Bucket{client: client, name: bucket}, nil
}

// ReadPrefix loads every object under prefix as one batch. Names are
// relative to the prefix. Objects larger than maxBytes are skipped.
func (b *Bucket) ReadPrefix(ctx context.Context, prefix string, maxBytes int64) ([]dicom.File, error) {
	var files []dicom.File
	for obj := range b.client.ListObjects(ctx, b.name, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("listing %s/%s: %w", b.name, prefix, obj.Err)
		}
		if !keep(obj.Key, obj.Size, maxBytes) {
			slog.DebugContext(ctx, "skipping object", "bucket", b.name, "key", obj.Key, "size", obj.Size)
			continue
		}
		data, err := b.read(ctx, obj.Key)
		if err != nil {
			return nil, err
		}
		files = append(files, dicom.File{Name: relName(prefix, obj.Key), Data: data})
	}
	return files, nil
}

func (b *Bucket) read(ctx context.Context, key string) ([]byte, error) {
	obj, err := b.client.GetObject(ctx, b.name, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("getting %s/%s: %w", b.name, key, err)
	}
	defer obj.Close()
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("reading %s/%s: %w", b.name, key, err)
	}
	return data, nil
}

// keep drops directory markers and oversized objects
func keep(key string, size, maxBytes int64) bool {
	if strings.HasSuffix(key, "/") {
		return false
	}
	return maxBytes <= 0 || size <= maxBytes
}

func relName(prefix, key string) string {
	rel := strings.TrimPrefix(strings.TrimPrefix(key, prefix), "/")
	if rel == "" {
		return key
	}
	return rel
}
