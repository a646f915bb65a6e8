// Package storage 图片内容存储（BlobStore实现）
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/xiebiao/bookhub/internal/domain/image"
)

// LocalStore 本地目录存储
// 基于afero.Fs，测试时换成内存文件系统
type LocalStore struct {
	fs afero.Fs
}

// NewLocalStore 以dir为根目录，不存在时自动创建
func NewLocalStore(dir string) (*LocalStore, error) {
	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建图片目录失败: %w", err)
	}
	return NewLocalStoreOn(afero.NewBasePathFs(osFs, dir)), nil
}

// NewLocalStoreOn 使用指定的文件系统
func NewLocalStoreOn(fs afero.Fs) *LocalStore {
	return &LocalStore{fs: fs}
}

// checkKey 对象名只能是单个文件名
func checkKey(key string) error {
	if key == "" || key != filepath.Base(key) || strings.HasPrefix(key, ".") {
		return fmt.Errorf("storage: invalid key %q", key)
	}
	return nil
}

// Put 先写临时文件再改名，读到的永远是完整文件
func (s *LocalStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	tmp := key + ".part"
	f, err := s.fs.Create(tmp)
	if err != nil {
		return fmt.Errorf("storage: create %s: %w", key, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("storage: write %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("storage: close %s: %w", key, err)
	}
	return s.fs.Rename(tmp, key)
}

func (s *LocalStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	f, err := s.fs.Open(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, image.ErrBlobNotFound
		}
		return nil, fmt.Errorf("storage: open %s: %w", key, err)
	}
	return f, nil
}

func (s *LocalStore) Delete(_ context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := s.fs.Remove(key); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage: remove %s: %w", key, err)
	}
	return nil
}
