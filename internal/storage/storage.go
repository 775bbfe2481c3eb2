// Package storage uploads user media (avatars, cover images) to an object
// store and hands back publicly reachable URLs. The session and credential
// core never touches it directly; only registration and profile-image
// updates do.
package storage

import (
	"context"
	"io"
)

// Uploader stores a binary object and returns the URL it is served from.
type Uploader interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}
