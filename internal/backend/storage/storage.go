// Package storage puts uploaded media into object storage and returns public URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	TypeS3    = "s3"
	TypeLocal = "local"
)

// ErrObjectExists is returned when a key is already taken. Stores never overwrite.
var ErrObjectExists = errors.New("object already exists")

// MediaStore stores media objects and returns a publicly reachable URL.
type MediaStore interface {
	Put(ctx context.Context, key string, contentType string, data []byte) (string, error)
}

// Options configures NewMediaStore.
type Options struct {
	Type          string
	Bucket        string
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
	LocalDir      string
}

func NewMediaStore(ctx context.Context, options Options) (MediaStore, error) {
	switch options.Type {
	case TypeS3:
		return NewS3Store(ctx, options)
	case TypeLocal, "":
		return NewLocalStore(options.LocalDir, options.PublicBaseURL)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", options.Type)
	}
}

// ObjectKey builds "<prefix>/<unix millis>-<index>-<name>" with a sanitized name.
func ObjectKey(prefix string, now time.Time, index int, filename string) string {
	base := fmt.Sprintf("%d-%d-%s", now.UnixMilli(), index, SanitizeFilename(filename))
	return path.Join(strings.Trim(prefix, "/"), base)
}

// SanitizeFilename keeps letters, digits, dot, dash and underscore.
// An empty result is replaced by a random name.
func SanitizeFilename(filename string) string {
	filename = path.Base(strings.ReplaceAll(filename, "\\", "/"))
	var b strings.Builder
	for _, r := range filename {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	name := strings.TrimLeft(b.String(), ".")
	if name == "" {
		return uuid.NewString()
	}
	return name
}

func publicURL(base, key string) string {
	segments := strings.Split(key, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.TrimRight(base, "/") + "/" + strings.Join(segments, "/")
}
