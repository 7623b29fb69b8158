package storage

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileStorage stores uploaded files under generated, collision-free names.
type FileStorage interface {
	Save(ctx context.Context, file *multipart.FileHeader) (storageName string, fileSize int64, err error)
	Delete(ctx context.Context, storageName string) error
	GetFullPath(storageName string) string
	BaseURL() string
	GetBaseDir() string
}

// LocalFileStorage keeps files in a single directory on the local disk.
type LocalFileStorage struct {
	baseDir string // e.g. "./uploads"
	baseURL string // public prefix, e.g. "/uploads"
}

func NewLocalFileStorage(baseDir, baseURL string) (*LocalFileStorage, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	return &LocalFileStorage{
		baseDir: baseDir,
		baseURL: baseURL,
	}, nil
}

// UniqueName builds "<unix-ms>-<random>-<original base name>".
func UniqueName(original string) string {
	name := filepath.Base(strings.ReplaceAll(original, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "file"
	}

	return fmt.Sprintf("%d-%d-%s", time.Now().UnixMilli(), rand.Int63n(1e9), name)
}

func (s *LocalFileStorage) Save(ctx context.Context, file *multipart.FileHeader) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	src, err := file.Open()
	if err != nil {
		return "", 0, fmt.Errorf("failed to open source file: %w", err)
	}
	defer src.Close()

	storageName := UniqueName(file.Filename)
	filePath := filepath.Join(s.baseDir, storageName)

	dst, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	done := make(chan struct{})
	var size int64
	var copyErr error

	go func() {
		size, copyErr = io.Copy(dst, src)
		close(done)
	}()

	select {
	case <-done:
		if copyErr != nil {
			_ = os.Remove(filePath)
			return "", 0, fmt.Errorf("failed to copy file: %w", copyErr)
		}
	case <-ctx.Done():
		<-done
		_ = os.Remove(filePath)
		return "", 0, ctx.Err()
	}

	return storageName, size, nil
}

// Delete removes a stored file.
func (s *LocalFileStorage) Delete(ctx context.Context, storageName string) error {
	return os.Remove(s.GetFullPath(storageName))
}

// GetFullPath returns the on-disk path for a storage name.
func (s *LocalFileStorage) GetFullPath(storageName string) string {
	return filepath.Join(s.baseDir, storageName)
}

// BaseURL returns the public URL prefix for stored files.
func (s *LocalFileStorage) BaseURL() string {
	return s.baseURL
}

func (s *LocalFileStorage) GetBaseDir() string {
	return s.baseDir
}
