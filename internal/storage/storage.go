// Package storage writes objects to MinIO or Google Cloud Storage.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/cinedex/apiserver/config"
)

// ObjectStorage is implemented by each object store backend.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Bucket() string
}

type Storage struct {
	backend ObjectStorage
}

func NewStorage(backend ObjectStorage) *Storage {
	return &Storage{backend: backend}
}

// Open connects the backend selected by cfg. It returns nil, nil when
// storage is disabled.
func Open(ctx context.Context, cfg config.StorageConfig) (*Storage, error) {
	var (
		backend ObjectStorage
		err     error
	)
	switch cfg.Backend {
	case "", config.BackendNone:
		return nil, nil
	case config.BackendMinio:
		backend, err = NewMinioClient(cfg.Minio)
	case config.BackendGCS:
		backend, err = NewGCSClient(ctx, cfg.GCS)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Backend, err)
	}
	return NewStorage(backend), nil
}

// EnsureBucket creates the configured bucket when it is missing.
func (s *Storage) EnsureBucket(ctx context.Context) error {
	return s.backend.EnsureBucket(ctx)
}

func (s *Storage) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	return s.backend.Put(ctx, key, r, size, contentType)
}

// PutJSON stores an already encoded JSON document under key.
func (s *Storage) PutJSON(ctx context.Context, key string, data []byte) error {
	return s.backend.Put(ctx, key, bytes.NewReader(data), int64(len(data)), "application/json")
}

func (s *Storage) Bucket() string {
	return s.backend.Bucket()
}
