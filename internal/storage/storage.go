package storage

import (
	"context"
	"io"
	"net/url"
	"strings"
)

// ObjectStore writes uploaded bytes and hands back a durable URL the browser
// can load them from.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}

// objectURL joins base and key, escaping each key segment.
func objectURL(base, key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.TrimRight(base, "/") + "/" + strings.Join(segments, "/")
}
