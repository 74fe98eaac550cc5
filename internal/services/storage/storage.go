// Package storage keeps uploaded documents such as recharge proofs in the
// Firebase storage bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	apperrors "relais/internal/errors"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"github.com/google/uuid"
)

var (
	ErrStorageUnavailable = apperrors.New("STORAGE_UNAVAILABLE", "file storage is not configured", http.StatusServiceUnavailable)
	ErrUnsupportedType    = apperrors.New("UNSUPPORTED_FILE_TYPE", "only images and PDF documents are accepted", http.StatusBadRequest)
)

// MaxUploadSize bounds a single proof document.
const MaxUploadSize = 5 << 20

var allowedTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

type Storage interface {
	// Upload stores r under prefix and returns the object path.
	Upload(ctx context.Context, prefix, contentType string, r io.Reader) (string, error)
}

type Bucket struct {
	bucket *gcs.BucketHandle
}

// NewFirebaseBucket opens the app's default bucket.
func NewFirebaseBucket(ctx context.Context, app *firebase.App) (*Bucket, error) {
	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase storage client: %w", err)
	}
	bucket, err := client.DefaultBucket()
	if err != nil {
		return nil, fmt.Errorf("default bucket: %w", err)
	}
	return &Bucket{bucket: bucket}, nil
}

func (b *Bucket) Upload(ctx context.Context, prefix, contentType string, r io.Reader) (string, error) {
	name, err := ObjectName(prefix, contentType)
	if err != nil {
		return "", err
	}

	w := b.bucket.Object(name).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, io.LimitReader(r, MaxUploadSize)); err != nil {
		w.Close()
		return "", fmt.Errorf("write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close object: %w", err)
	}
	return name, nil
}

// ObjectName builds a unique object path for an upload of contentType.
func ObjectName(prefix, contentType string) (string, error) {
	ext, ok := allowedTypes[strings.ToLower(contentType)]
	if !ok {
		return "", ErrUnsupportedType
	}
	return path.Join(strings.Trim(prefix, "/"), uuid.NewString()+ext), nil
}

// Disabled rejects uploads. It is used when Firebase is not configured.
type Disabled struct{}

func (Disabled) Upload(context.Context, string, string, io.Reader) (string, error) {
	return "", ErrStorageUnavailable
}
