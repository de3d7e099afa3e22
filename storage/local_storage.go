package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

type LocalStorage struct {
	BasePath string
}

func NewLocalStorage(basePath string) *LocalStorage {
	return &LocalStorage{BasePath: basePath}
}

func (s *LocalStorage) Upload(ctx context.Context, file io.Reader, key string) (string, error) {
	logrus.Infof("Storing file locally: %s", key)
	path := filepath.Join(s.BasePath, key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		return "", err
	}
	return path, nil
}

func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	logrus.Infof("Deleting local file: %s", key)
	return os.Remove(filepath.Join(s.BasePath, key))
}

func (s *LocalStorage) Exists(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(filepath.Join(s.BasePath, key))
	if os.IsNotExist(err) {
		return false, nil
	}
	return err == nil, err
}
