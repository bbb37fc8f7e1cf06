// Package storage uploads user content to object buckets and derives the
// object names and public URLs the rest of the application stores.
package storage

import (
	"context"
	"fmt"
	"math/rand"
	"path"
	"strings"
	"time"
)

// Uploader writes objects to a bucket and returns their public URL.
type Uploader interface {
	Upload(ctx context.Context, bucket, object string, data []byte, contentType string) (string, error)
	Remove(ctx context.Context, bucket string, objects ...string) error
	PublicURL(bucket, object string) string
}

// ObjectName derives a collision-resistant object name from an uploaded
// filename, keeping only its extension.
func ObjectName(filename string) string {
	return fmt.Sprintf("%d-%d%s", time.Now().Unix(), rand.Intn(1_000_000), ext(filename))
}

// AvatarObjectName names a user's avatar so re-uploads replace the previous
// one per user rather than accumulating.
func AvatarObjectName(userID uint, filename string) string {
	return fmt.Sprintf("%d-%d%s", userID, time.Now().Unix(), ext(filename))
}

func ext(filename string) string {
	e := strings.ToLower(path.Ext(filename))
	if e == "" {
		e = ".bin"
	}
	return e
}

// AllowedImageType reports whether a content type is acceptable for image
// uploads.
func AllowedImageType(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	}
	return false
}
