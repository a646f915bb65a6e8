package image

import (
	"context"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xiebiao/bookhub/internal/domain/query"
	"github.com/xiebiao/bookhub/internal/domain/resource"
	apperrors "github.com/xiebiao/bookhub/pkg/errors"
)

// Family 错误业务域
const Family = "IMAGE"

// Image 上传的图片
// 元数据存数据库,内容存BlobStore,对象名为"<id>.<扩展名>"
type Image struct {
	ID          uuid.UUID
	AccountID   uuid.UUID
	Extension   string
	ContentType string
	Size        int64
	CreatedAt   time.Time
}

func (i *Image) GetID() uuid.UUID        { return i.ID }
func (i *Image) SetID(id uuid.UUID)      { i.ID = id }
func (i *Image) OwnerID() uuid.UUID      { return i.AccountID }
func (i *Image) SetOwnerID(id uuid.UUID) { i.AccountID = id }

// BlobKey 对象存储中的名称
func (i *Image) BlobKey() string {
	return i.ID.String() + "." + i.Extension
}

// Validate 必须有扩展名
func (i *Image) Validate() error {
	if i.Extension == "" {
		return ErrNoExtension
	}
	return nil
}

// ExtensionOf 从文件名提取扩展名(小写,不含点)
// 没有扩展名时返回ErrNoExtension
func ExtensionOf(filename string) (string, error) {
	ext := strings.TrimPrefix(path.Ext(strings.TrimSpace(filename)), ".")
	if ext == "" {
		return "", ErrNoExtension
	}
	return strings.ToLower(ext), nil
}

// BlobStore 图片内容存储
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// Get 对象不存在时返回ErrBlobNotFound
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete 对象不存在时不报错
	Delete(ctx context.Context, key string) error
}

var (
	ErrNotFound     = apperrors.ErrNotFound.In(Family).WithMessage("图片不存在")
	ErrBlobNotFound = apperrors.ErrNotFound.In(Family).WithMessage("图片内容不存在")
	ErrNoExtension  = apperrors.NewIn(Family, apperrors.ErrCodeNoExtension, "文件缺少扩展名")
	ErrNoFiles      = apperrors.NewIn(Family, apperrors.ErrCodeInvalidParams, "请选择要上传的文件")
)

// Repository 图片元数据仓储
type Repository = resource.Repository[*Image]

// Service 图片元数据服务
type Service = resource.Service[*Image, query.None]

// NewService 创建图片服务,每次保存都插入新记录
func NewService(repo Repository, tx resource.TxRunner) *Service {
	return resource.NewService[*Image, query.None](resource.Config{
		Name:   "image",
		Family: Family,
		Mode:   resource.ModeNonIdempotentUpsert,
	}, repo, tx)
}
