package store

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rohmanhakim/lazyload/pkg/fileutil"
)

const (
	backendFile   = "file"
	fileExtension = ".bin"
)

// FileStore keeps one file per key under a root directory. File names are
// the hex encoding of the key, so prefix matching works on decoded names
// and arbitrary key bytes are safe on every filesystem.
type FileStore struct {
	root string
}

// NewFileStore creates root if needed.
func NewFileStore(root string) (*FileStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, newStoreError(backendFile, ErrCauseInvalidKey, errors.New("root directory is required"))
	}
	if err := fileutil.EnsureDir(root); err != nil {
		return nil, newStoreError(backendFile, ErrCauseUnavailable, err)
	}
	return &FileStore{root: root}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.root, hex.EncodeToString([]byte(key))+fileExtension)
}

func (s *FileStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, newStoreError(backendFile, ErrCauseReadFailure, err)
	}
	return data, true, nil
}

func (s *FileStore) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(s.path(key), value); err != nil {
		return newStoreError(backendFile, ErrCauseWriteFailure, err)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return newStoreError(backendFile, ErrCauseWriteFailure, err)
	}
	return nil
}

func (s *FileStore) DeletePrefix(ctx context.Context, prefix string) error {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return newStoreError(backendFile, ErrCauseReadFailure, err)
	}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, fileExtension) {
			continue
		}
		key, decodeErr := hex.DecodeString(strings.TrimSuffix(name, fileExtension))
		if decodeErr != nil || !strings.HasPrefix(string(key), prefix) {
			continue
		}
		if err := os.Remove(filepath.Join(s.root, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return newStoreError(backendFile, ErrCauseWriteFailure, fmt.Errorf("remove %s: %w", name, err))
		}
	}
	return nil
}
