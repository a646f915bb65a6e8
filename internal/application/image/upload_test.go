package image

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookhub/internal/domain/auth"
	"github.com/xiebiao/bookhub/internal/domain/image"
	"github.com/xiebiao/bookhub/internal/domain/resource/resourcetest"
	apperrors "github.com/xiebiao/bookhub/pkg/errors"
)

type memBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	failOn  string
}

func newMemBlobs() *memBlobs {
	return &memBlobs{objects: map[string][]byte{}}
}

func (m *memBlobs) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	if m.failOn != "" && strings.HasSuffix(key, m.failOn) {
		return errors.New("disk full")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *memBlobs) Get(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, image.ErrBlobNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memBlobs) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func file(name, content string) File {
	return File{
		Filename:    name,
		ContentType: "image/png",
		Size:        int64(len(content)),
		Open:        func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader(content)), nil },
	}
}

func newService() (*resourcetest.Repo[*image.Image], *image.Service) {
	repo := resourcetest.New(
		func(i *image.Image, field string) []string { return []string{i.AccountID.String()} },
		func(i *image.Image) *image.Image { c := *i; return &c },
	)
	return repo, image.NewService(repo, &resourcetest.Tx{})
}

var alice = &auth.Principal{ID: uuid.New(), Username: "alice", Role: auth.RoleUser}

func TestUpload(t *testing.T) {
	repo, svc := newService()
	blobs := newMemBlobs()
	uc := NewUploadUseCase(svc, blobs, 1024)
	ctx := context.Background()

	ids, err := uc.Execute(ctx, alice, []File{file("a.PNG", "aaa"), file("b.jpg", "bb")})
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.Equal(t, 2, repo.Len())
	assert.Len(t, blobs.objects, 2)

	img, rc, err := NewGetUseCase(svc, blobs).Execute(ctx, ids[0])
	require.NoError(t, err)
	defer rc.Close()
	assert.Equal(t, "png", img.Extension)
	assert.Equal(t, alice.ID, img.AccountID)
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "aaa", string(data))
}

func TestUpload_Rejects(t *testing.T) {
	repo, svc := newService()
	blobs := newMemBlobs()
	uc := NewUploadUseCase(svc, blobs, 4)
	ctx := context.Background()

	_, err := uc.Execute(ctx, nil, []File{file("a.png", "a")})
	assert.True(t, errors.Is(err, apperrors.ErrNotAuthenticated))

	_, err = uc.Execute(ctx, alice, nil)
	assert.True(t, errors.Is(err, image.ErrNoFiles))

	_, err = uc.Execute(ctx, alice, []File{file("a.png", "a"), file("README", "b")})
	assert.True(t, errors.Is(err, image.ErrNoExtension))

	_, err = uc.Execute(ctx, alice, []File{file("big.png", "too-large")})
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	assert.Equal(t, 0, repo.Len())
	assert.Empty(t, blobs.objects, "校验失败时不存储任何文件")
}

func TestUpload_CompensatesStoredBlobs(t *testing.T) {
	repo, svc := newService()
	blobs := newMemBlobs()
	blobs.failOn = ".gif"
	uc := NewUploadUseCase(svc, blobs, 0)

	_, err := uc.Execute(context.Background(), alice, []File{file("a.png", "a"), file("b.gif", "b")})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrCodeStorageError, appErr.Code)

	assert.Empty(t, blobs.objects, "已存储的文件应被删除")
	assert.Equal(t, 0, repo.Len())
}

func TestUpload_CompensatesBlobsOnRowFailure(t *testing.T) {
	repo, svc := newService()
	repo.FailWith = errors.New("db down")
	blobs := newMemBlobs()
	uc := NewUploadUseCase(svc, blobs, 0)

	_, err := uc.Execute(context.Background(), alice, []File{file("a.png", "a")})
	require.Error(t, err)
	assert.Empty(t, blobs.objects)
}

func TestGet_NotFound(t *testing.T) {
	_, svc := newService()
	_, _, err := NewGetUseCase(svc, newMemBlobs()).Execute(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, apperrors.ErrNotFound.In(image.Family)))
}
