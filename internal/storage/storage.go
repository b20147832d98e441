// Package storage defines the persistence interface for cached index blobs.
package storage

import (
	"context"
	"time"
)

// CacheEntry describes one cached index blob.
type CacheEntry struct {
	Fingerprint string    `json:"fingerprint"`
	RecordCount int       `json:"record_count"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store persists serialized index blobs keyed by collection fingerprint.
type Store interface {
	// GetBlob returns the blob for a fingerprint; ok is false on a miss.
	GetBlob(ctx context.Context, fingerprint string) (blob []byte, ok bool, err error)
	// PutBlob stores or replaces the blob for a fingerprint.
	PutBlob(ctx context.Context, fingerprint string, blob []byte, recordCount int) error
	// Entries lists cached blobs, newest first.
	Entries(ctx context.Context) ([]CacheEntry, error)
	// Prune deletes all but the keep newest entries.
	Prune(ctx context.Context, keep int) error

	Close() error
}
