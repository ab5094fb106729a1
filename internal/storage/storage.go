// Package storage keeps uploaded post images and resolves their public URLs.
package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/anonto42/yatube/pkg/config"
)

// ImagePrefix is the key prefix every post image is stored under.
const ImagePrefix = "posts"

// ImageStore saves uploaded images under generated keys. Keys are what a
// Post records in its Image column.
type ImageStore interface {
	Save(ctx context.Context, fh *multipart.FileHeader) (string, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// New returns the S3 store when a bucket is configured, the local
// filesystem store otherwise.
func New(cfg *config.Config) (ImageStore, error) {
	if cfg.S3Bucket != "" {
		return NewS3Store(S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			PublicURL:       cfg.S3PublicURL,
		}), nil
	}
	return NewLocalStore(cfg.MediaRoot, cfg.MediaURL)
}

// upload is an opened multipart file with its sniffed content type.
type upload struct {
	file        multipart.File
	key         string
	contentType string
}

// open opens fh, detects its type and generates a fresh key for it.
// The returned file is rewound to the start.
func open(fh *multipart.FileHeader) (*upload, error) {
	file, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}

	mt, err := mimetype.DetectReader(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("detect upload type: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, fmt.Errorf("rewind upload: %w", err)
	}

	return &upload{
		file:        file,
		key:         path.Join(ImagePrefix, uuid.NewString()+mt.Extension()),
		contentType: mt.String(),
	}, nil
}
