package storage

import (
	"context"
	"io"
)

// Storage persists mirrored media such as profile avatars.
type Storage interface {
	Upload(ctx context.Context, file io.Reader, key string) (string, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
