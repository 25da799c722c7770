// Package blobstore stores binary artifacts (scanned and watermarked consent
// documents) by object key.
package blobstore

import "context"

// Store puts and deletes binary artifacts. Put returns the content checksum
// reported by the backing store; Delete is idempotent, deleting a key that
// does not exist is not an error.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}
