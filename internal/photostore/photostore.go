// Package photostore holds the layout photos that regions are drawn on.
package photostore

import (
	"context"
	"errors"
	"io"
)

// ErrPhotoNotFound is returned by Get and Delete for an unknown key.
var ErrPhotoNotFound = errors.New("photo not found")

// PhotoStore saves opaque image blobs. Keys are chosen by the store.
type PhotoStore interface {
	Save(ctx context.Context, prefix, mimeType string, r io.Reader) (storageKey string, err error)
	Get(ctx context.Context, storageKey string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, storageKey string) error
}
