package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps images under a directory that the router serves at
// its base URL.
type LocalStore struct {
	root    string
	baseURL string
}

func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(filepath.Join(root, ImagePrefix), 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &LocalStore{root: root, baseURL: baseURL}, nil
}

// Root is the directory images are written to.
func (s *LocalStore) Root() string {
	return s.root
}

func (s *LocalStore) Save(_ context.Context, fh *multipart.FileHeader) (string, error) {
	up, err := open(fh)
	if err != nil {
		return "", err
	}
	defer up.file.Close()

	dst, err := os.Create(s.path(up.key))
	if err != nil {
		return "", fmt.Errorf("create %s: %w", up.key, err)
	}
	if _, err := io.Copy(dst, up.file); err != nil {
		dst.Close()
		return "", fmt.Errorf("write %s: %w", up.key, err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("write %s: %w", up.key, err)
	}
	return up.key, nil
}

func (s *LocalStore) Delete(_ context.Context, key string) error {
	if key == "" {
		return nil
	}
	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *LocalStore) URL(key string) string {
	if key == "" {
		return ""
	}
	return s.baseURL + key
}

func (s *LocalStore) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(filepath.Clean("/"+key)))
}
