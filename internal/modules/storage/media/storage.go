// Package media stores uploaded post images on the configured backend and
// turns stored references into public URLs.
package media

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/embracingthegirlchild/site/internal/config"
)

// ImageDir is the folder post images live under, locally and remotely.
const ImageDir = "post_images"

var ErrMissingCredentials = errors.New("media backend credentials missing")

// Object is a single file handed to a backend.
type Object struct {
	// Key is relative to the backend root, e.g. "post_images/girl.jpg".
	Key         string
	Data        []byte
	ContentType string
	// Overwrite replaces whatever already lives at Key. Without it the
	// backend picks a fresh name.
	Overwrite bool
}

// Storage persists objects and returns the reference to record on a post.
// Local references are paths relative to the media root; remote backends
// return absolute URLs.
type Storage interface {
	Name() string
	Save(ctx context.Context, obj Object) (string, error)
}

// New builds the storage for backend, failing with ErrMissingCredentials
// when the configuration lacks what the backend needs.
func New(cfg *config.AppConfig, backend string) (Storage, error) {
	backend = strings.ToLower(strings.TrimSpace(backend))
	if backend == "" {
		backend = cfg.Media.Backend
	}
	if missing := cfg.Media.MissingCredentials(backend); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}

	switch backend {
	case config.BackendLocal:
		return NewLocal(cfg.MediaDir()), nil
	case config.BackendS3:
		return NewS3(cfg.Media.S3, cfg.Media.Prefix)
	case config.BackendMinio:
		return NewMinio(cfg.Media.Minio, cfg.Media.Prefix)
	case config.BackendCloudinary:
		return NewCloudinary(cfg.Media.Cloudinary, cfg.Media.Prefix)
	}
	return nil, fmt.Errorf("unknown media backend %q", backend)
}

// IsRemote reports whether ref already points at an absolute http(s) URL.
func IsRemote(ref string) bool {
	ref = strings.ToLower(strings.TrimSpace(ref))
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// URL resolves a stored reference for use in a page.
func URL(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || IsRemote(ref) {
		return ref
	}
	return "/media/" + normalizeKey(ref)
}

// ImageKey returns the key an uploaded file with the given original name is
// stored under.
func ImageKey(original string) string {
	return ImageDir + "/" + SafeFileName(original)
}

// SafeFileName reduces name to its base and replaces anything outside
// [A-Za-z0-9._-] with underscores.
func SafeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		if isSafeRune(r) {
			b.WriteRune(r)
		} else if r == ' ' {
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "upload.dat"
	}
	return out
}

// DetectContentType prefers the file extension and falls back to sniffing
// the payload.
func DetectContentType(filename string, payload []byte) string {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" {
		if guessed := mime.TypeByExtension(ext); guessed != "" {
			return guessed
		}
	}
	if len(payload) > 0 {
		return http.DetectContentType(payload)
	}
	return "application/octet-stream"
}

func isSafeRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.'
}

// normalizeKey cleans separators and drops any parent-directory segments.
func normalizeKey(key string) string {
	key = strings.ReplaceAll(strings.TrimSpace(key), "\\", "/")
	parts := strings.Split(key, "/")
	kept := parts[:0]
	for _, p := range parts {
		if p == "" || p == "." || p == ".." {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, "/")
}

// withSuffix inserts _<7 random chars> before the extension.
func withSuffix(key string) string {
	ext := path.Ext(key)
	return strings.TrimSuffix(key, ext) + "_" + randomString(7) + ext
}

func prefixed(prefix, key string) string {
	prefix = strings.Trim(normalizeKey(prefix), "/")
	key = normalizeKey(key)
	if prefix == "" {
		return key
	}
	return prefix + "/" + key
}

func randomString(n int) string {
	const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	buf := make([]byte, n)
	_, _ = rand.Read(buf)
	for i := range buf {
		buf[i] = letters[int(buf[i])%len(letters)]
	}
	return string(buf)
}

func joinURL(base, key string) string {
	return strings.TrimRight(strings.TrimSpace(base), "/") + "/" + key
}
