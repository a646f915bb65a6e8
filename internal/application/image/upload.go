package image

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/xiebiao/bookhub/internal/domain/auth"
	"github.com/xiebiao/bookhub/internal/domain/image"
	apperrors "github.com/xiebiao/bookhub/pkg/errors"
	"github.com/xiebiao/bookhub/pkg/saga"
)

// File 一个待上传的文件
type File struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// UploadUseCase 批量上传图片
// 设计说明：
// 1. 先校验全部文件（扩展名、大小），有一个不合格就整体拒绝
// 2. 文件内容写对象存储，元数据写数据库，二者不在同一个事务里，用Saga串起来
// 3. 任一步失败时逆序补偿：删除已写入的记录和已存储的文件
type UploadUseCase struct {
	images  *image.Service
	blobs   image.BlobStore
	maxSize int64
	timeout time.Duration
}

// NewUploadUseCase 创建上传用例，maxSize<=0表示不限制单个文件大小
func NewUploadUseCase(images *image.Service, blobs image.BlobStore, maxSize int64) *UploadUseCase {
	return &UploadUseCase{
		images:  images,
		blobs:   blobs,
		maxSize: maxSize,
		timeout: time.Minute,
	}
}

// ErrTooLarge 单个文件超过上限
var ErrTooLarge = apperrors.NewIn(image.Family, apperrors.ErrCodeInvalidParams, "文件过大")

// Execute 上传文件，按输入顺序返回图片ID
func (uc *UploadUseCase) Execute(ctx context.Context, p *auth.Principal, files []File) ([]uuid.UUID, error) {
	if p == nil {
		return nil, apperrors.ErrNotAuthenticated.In(image.Family)
	}
	if len(files) == 0 {
		return nil, image.ErrNoFiles
	}

	pending := make([]*image.Image, len(files))
	for i, f := range files {
		ext, err := image.ExtensionOf(f.Filename)
		if err != nil {
			return nil, err
		}
		if uc.maxSize > 0 && f.Size > uc.maxSize {
			return nil, ErrTooLarge.WithMessage(fmt.Sprintf("文件过大: %s", f.Filename))
		}
		pending[i] = &image.Image{
			ID:          uuid.New(),
			AccountID:   p.ID,
			Extension:   ext,
			ContentType: f.ContentType,
			Size:        f.Size,
		}
	}

	s := saga.NewSaga("image-upload", uc.timeout)
	for i := range files {
		f, img := files[i], pending[i]
		s.AddStep("存储文件:"+img.BlobKey(),
			func(ctx context.Context) error { return uc.put(ctx, f, img) },
			func(ctx context.Context) error { return uc.blobs.Delete(ctx, img.BlobKey()) },
		)
	}
	for _, img := range pending {
		img := img
		s.AddStep("写入记录:"+img.ID.String(),
			func(ctx context.Context) error {
				_, err := uc.images.Save(ctx, p, img)
				return err
			},
			func(ctx context.Context) error { return uc.images.Delete(ctx, p, img.ID) },
		)
	}

	if err := s.Execute(ctx); err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(pending))
	for i, img := range pending {
		ids[i] = img.ID
	}
	return ids, nil
}

func (uc *UploadUseCase) put(ctx context.Context, f File, img *image.Image) error {
	r, err := f.Open()
	if err != nil {
		return apperrors.Wrap(err, "读取上传文件失败")
	}
	defer r.Close()
	if err := uc.blobs.Put(ctx, img.BlobKey(), r, f.Size, f.ContentType); err != nil {
		return &apperrors.AppError{Code: apperrors.ErrCodeStorageError, Family: image.Family, Message: "文件存储失败", Err: err}
	}
	return nil
}

// GetUseCase 读取图片元数据与内容
type GetUseCase struct {
	images *image.Service
	blobs  image.BlobStore
}

func NewGetUseCase(images *image.Service, blobs image.BlobStore) *GetUseCase {
	return &GetUseCase{images: images, blobs: blobs}
}

// Execute 返回的ReadCloser由调用方关闭
func (uc *GetUseCase) Execute(ctx context.Context, id uuid.UUID) (*image.Image, io.ReadCloser, error) {
	img, err := uc.images.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := uc.blobs.Get(ctx, img.BlobKey())
	if err != nil {
		return nil, nil, err
	}
	return img, rc, nil
}
