package storage

import (
	"context"
	"io"
	"testing"

	"github.com/cinedex/apiserver/config"
)

type memBackend struct {
	objects     map[string]string
	contentType string
}

func (m *memBackend) EnsureBucket(context.Context) error { return nil }

func (m *memBackend) Put(_ context.Context, key string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if int64(len(data)) != size {
		return io.ErrShortWrite
	}
	m.objects[key] = string(data)
	m.contentType = contentType
	return nil
}

func (m *memBackend) Bucket() string { return "mem" }

func TestPutJSON(t *testing.T) {
	backend := &memBackend{objects: map[string]string{}}
	s := NewStorage(backend)

	if err := s.PutJSON(context.Background(), "activity/a.json", []byte(`{"id":"a"}`)); err != nil {
		t.Fatalf("PutJSON: %v", err)
	}
	if backend.objects["activity/a.json"] != `{"id":"a"}` {
		t.Errorf("object = %q", backend.objects["activity/a.json"])
	}
	if backend.contentType != "application/json" {
		t.Errorf("content type = %q", backend.contentType)
	}
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.StorageConfig
		wantNil bool
		wantErr bool
	}{
		{name: "disabled", cfg: config.StorageConfig{Backend: config.BackendNone}, wantNil: true},
		{name: "unknown", cfg: config.StorageConfig{Backend: "s3"}, wantErr: true},
		{name: "minio missing bucket", cfg: config.StorageConfig{
			Backend: config.BackendMinio,
			Minio:   config.MinioConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"},
		}, wantErr: true},
		{name: "minio", cfg: config.StorageConfig{
			Backend: config.BackendMinio,
			Minio:   config.MinioConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b", Bucket: "activity"},
		}},
		{name: "gcs missing bucket", cfg: config.StorageConfig{Backend: config.BackendGCS}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(context.Background(), tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if (s == nil) != tt.wantNil {
				t.Fatalf("Open = %v, wantNil %v", s, tt.wantNil)
			}
			if s != nil && s.Bucket() != tt.cfg.Minio.Bucket {
				t.Errorf("Bucket = %q", s.Bucket())
			}
		})
	}
}
