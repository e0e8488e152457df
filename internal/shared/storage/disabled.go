package storage

import (
	"context"
	"errors"
	"io"
)

// ErrStorageDisabled is returned when no object storage is configured.
var ErrStorageDisabled = errors.New("object storage is not configured")

// Disabled is a BlobStore placeholder used when storage is not
// configured. Every operation fails with ErrStorageDisabled.
type Disabled struct{}

// Upload always fails.
func (Disabled) Upload(context.Context, io.Reader, string, string, string) (string, error) {
	return "", ErrStorageDisabled
}

// Delete always fails.
func (Disabled) Delete(context.Context, string) error {
	return ErrStorageDisabled
}
