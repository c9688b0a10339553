// Package storage provides object storage implementations for captured screenshots.
package storage

import "context"

// ObjectStorage persists captured screenshots and returns a publicly
// reachable URL for each stored object.
type ObjectStorage interface {
	// Upload stores data under key and returns the public URL of the object.
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
