// Package storage provides a content-addressable blob store for template
// backgrounds and rendered certificate images. Component logic depends only
// on the BlobStore interface so local disk can be swapped for object storage.
package storage

import (
	"context"
	"time"
)

// BlobStore is a flat put/get store keyed by slash-separated strings.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	// List returns the keys under the given prefix along with the time each
	// blob was written.
	List(ctx context.Context, prefix string) ([]BlobInfo, error)
	Delete(ctx context.Context, key string) error
}

// BlobInfo describes one stored blob.
type BlobInfo struct {
	Key     string
	Size    int64
	ModTime time.Time
}

// Storage areas.
const (
	TemplateArea    = "certificate_templates"
	CertificateArea = "certificates"
)
