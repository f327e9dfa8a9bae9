// Package storage keeps uploaded media in a gocloud blob bucket rooted on
// the local filesystem.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	"gocloud.dev/gcerrors"
	"kitchenware-market.backend/internal/domain/entities"
	"kitchenware-market.backend/pkg/utils"
)

var ErrInvalidKey = errors.New("invalid blob key")

// LocalStorage stores blobs as files under root. Keys are slash separated
// relative paths such as listings/2024/05/01/<uuid>.png.
type LocalStorage struct {
	bucket       *blob.Bucket
	root         string
	publicPrefix string
}

func NewLocalStorage(root, publicPrefix string) (*LocalStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	// Temp files stay next to the blob so the final rename never crosses filesystems.
	bucket, err := fileblob.OpenBucket(root, &fileblob.Options{NoTempDir: true})
	if err != nil {
		return nil, fmt.Errorf("open media bucket: %w", err)
	}
	return &LocalStorage{
		bucket:       bucket,
		root:         root,
		publicPrefix: strings.TrimRight(publicPrefix, "/"),
	}, nil
}

// BuildKey returns a fresh key of the form <prefix>/YYYY/MM/DD/<uuid>.<ext>.
func BuildKey(prefix, ext string, now time.Time) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	return path.Join(prefix, now.UTC().Format("2006/01/02"), utils.GenerateUUIDv7().String()+"."+ext)
}

func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return ErrInvalidKey
	}
	cleaned := path.Clean(key)
	if cleaned != key || cleaned == "." || strings.HasPrefix(cleaned, "../") || cleaned == ".." {
		return ErrInvalidKey
	}
	return nil
}

// Save writes r to key and returns the number of bytes written. The blob
// only becomes visible once the writer is closed successfully.
func (s *LocalStorage) Save(ctx context.Context, key string, r io.Reader) (int64, error) {
	if err := validateKey(key); err != nil {
		return 0, err
	}
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w, err := s.bucket.NewWriter(wctx, key, nil)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(w, r)
	if err != nil {
		// cancelling before Close discards the partial write
		cancel()
		_ = w.Close()
		return 0, err
	}
	if err := w.Close(); err != nil {
		return 0, err
	}
	return n, nil
}

// Delete removes the blob. Deleting a missing blob succeeds.
func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := s.bucket.Delete(ctx, key); err != nil && gcerrors.Code(err) != gcerrors.NotFound {
		return err
	}
	return nil
}

func (s *LocalStorage) Exists(ctx context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}
	return s.bucket.Exists(ctx, key)
}

// List returns every blob under prefix.
func (s *LocalStorage) List(ctx context.Context, prefix string) ([]entities.BlobInfo, error) {
	if err := validateKey(prefix); err != nil {
		return nil, err
	}

	var blobs []entities.BlobInfo
	iter := s.bucket.List(&blob.ListOptions{Prefix: prefix + "/"})
	for {
		obj, err := iter.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if obj.IsDir {
			continue
		}
		blobs = append(blobs, entities.BlobInfo{
			Key:     obj.Key,
			Size:    obj.Size,
			ModTime: obj.ModTime,
		})
	}
	return blobs, nil
}

// URL returns the public path the blob is served from.
func (s *LocalStorage) URL(key string) string {
	if key == "" {
		return ""
	}
	return s.publicPrefix + "/" + key
}

// Root is the directory served under the public prefix.
func (s *LocalStorage) Root() string {
	return s.root
}

func (s *LocalStorage) Close() error {
	return s.bucket.Close()
}
