package storage

import (
	"context"
	"fmt"

	"github.com/xiebiao/bookhub/internal/domain/image"
	"github.com/xiebiao/bookhub/internal/infrastructure/config"
)

// New 按storage.driver选择实现
func New(ctx context.Context, cfg *config.Config) (image.BlobStore, error) {
	switch cfg.Storage.Driver {
	case "gcs":
		client, err := NewGCSClient(ctx, cfg.Storage.GCSCredFile)
		if err != nil {
			return nil, err
		}
		return NewGCSStore(client, cfg.Storage.GCSBucket, cfg.Storage.GCSPrefix), nil
	case "local", "":
		return NewLocalStore(cfg.Storage.LocalDir)
	default:
		return nil, fmt.Errorf("不支持的存储驱动: %s", cfg.Storage.Driver)
	}
}
