package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/xiebiao/bookhub/internal/domain/image"
)

// GCSStore Google Cloud Storage存储
// 对象路径：<prefix><key>，例如 images/3f0c...e1.png
type GCSStore struct {
	client *gcs.Client
	bucket string
	prefix string
}

// NewGCSClient 创建GCS客户端，credFile为空时使用默认凭据（ADC）
func NewGCSClient(ctx context.Context, credFile string) (*gcs.Client, error) {
	var opts []option.ClientOption
	if f := strings.TrimSpace(credFile); f != "" {
		opts = append(opts, option.WithCredentialsFile(f))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("创建GCS客户端失败: %w", err)
	}
	return client, nil
}

func NewGCSStore(client *gcs.Client, bucket, prefix string) *GCSStore {
	prefix = strings.TrimLeft(strings.TrimSpace(prefix), "/")
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &GCSStore{
		client: client,
		bucket: strings.TrimSpace(bucket),
		prefix: prefix,
	}
}

func (s *GCSStore) objectPath(key string) string {
	return s.prefix + key
}

func (s *GCSStore) object(key string) (*gcs.ObjectHandle, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	if s.client == nil || s.bucket == "" {
		return nil, errors.New("storage: gcs client or bucket is empty")
	}
	return s.client.Bucket(s.bucket).Object(s.objectPath(key)), nil
}

func (s *GCSStore) Put(ctx context.Context, key string, r io.Reader, _ int64, contentType string) error {
	obj, err := s.object(key)
	if err != nil {
		return err
	}
	w := obj.NewWriter(ctx)
	if ct := strings.TrimSpace(contentType); ct != "" {
		w.ContentType = ct
	}
	w.Metadata = map[string]string{
		"uploadedAt": time.Now().UTC().Format(time.RFC3339),
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("storage: upload %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("storage: upload %s: %w", key, err)
	}
	return nil
}

func (s *GCSStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := s.object(key)
	if err != nil {
		return nil, err
	}
	rc, err := obj.NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, image.ErrBlobNotFound
		}
		return nil, fmt.Errorf("storage: download %s: %w", key, err)
	}
	return rc, nil
}

func (s *GCSStore) Delete(ctx context.Context, key string) error {
	obj, err := s.object(key)
	if err != nil {
		return err
	}
	if err := obj.Delete(ctx); err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("storage: delete %s: %w", key, err)
	}
	return nil
}
