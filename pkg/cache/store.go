package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

//ErrNotFound is returned by a BlobStore when no artifact exists for a key.
var ErrNotFound = errors.New("artifact not found")

//BlobStore persists opaque artifact payloads by key.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key, stage string, payload []byte) error
	Delete(ctx context.Context, key string) error
}

//FileStore keeps one file per artifact in a directory. The directory is
//created on the first write.
type FileStore struct {
	Dir string
}

//NewFileStore returns a FileStore rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.Dir, key+".json")
}

//Get reads the artifact for key.
func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading artifact %s: %w", key, err)
	}
	return data, nil
}

//Put writes the artifact through a temporary file so a crash never leaves a
//half-written artifact behind. The stage name is implied by the key.
func (s *FileStore) Put(ctx context.Context, key, stage string, payload []byte) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("creating artifact dir: %w", err)
	}
	tmp, err := os.CreateTemp(s.Dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp artifact: %w", err)
	}
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing artifact %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing artifact %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("publishing artifact %s: %w", key, err)
	}
	return nil
}

//Delete removes the artifact for key. Deleting a missing artifact is not an error.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting artifact %s: %w", key, err)
	}
	return nil
}

var _ BlobStore = (*FileStore)(nil)
