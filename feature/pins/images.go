package pins

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"crowdmarks/core/storage"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"golang.org/x/sync/singleflight"
)

// ImageFolder is the bucket prefix holding pin photos.
const ImageFolder = "images/"

// ErrInvalidImageRef is returned for references outside the image folder.
var ErrInvalidImageRef = errors.New("invalid image reference")

type cachedURL struct {
	url     string
	expires time.Time
}

// Images stores pin photos in the blob store and hands out download URLs.
type Images struct {
	client storage.Client
	bucket string
	expiry time.Duration
	now    func() time.Time

	group singleflight.Group
	mu    sync.Mutex
	cache map[string]cachedURL
}

// NewImages creates an image store. URLs are valid for expiry.
func NewImages(client storage.Client, bucket string, expiry time.Duration) *Images {
	return &Images{
		client: client,
		bucket: bucket,
		expiry: expiry,
		now:    time.Now,
		cache:  make(map[string]cachedURL),
	}
}

// Upload stores data under a fresh unique name and returns its reference.
func (i *Images) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	ref := ImageFolder + uuid.NewString() + ".jpg"
	_, err := i.client.PutObject(ctx, i.bucket, ref, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", ref, err)
	}
	return ref, nil
}

// Remove deletes an uploaded image.
func (i *Images) Remove(ctx context.Context, ref string) error {
	i.mu.Lock()
	delete(i.cache, ref)
	i.mu.Unlock()
	return i.client.RemoveObject(ctx, i.bucket, ref, minio.RemoveObjectOptions{})
}

// URL returns a presigned download URL for ref. URLs are reused while they
// have more than half of their validity left.
func (i *Images) URL(ctx context.Context, ref string) (string, error) {
	if err := ValidateRef(ref); err != nil {
		return "", err
	}

	i.mu.Lock()
	c, ok := i.cache[ref]
	i.mu.Unlock()
	if ok && i.now().Before(c.expires) {
		return c.url, nil
	}

	v, err, _ := i.group.Do(ref, func() (any, error) {
		u, err := i.client.PresignedGetObject(ctx, i.bucket, ref, i.expiry, nil)
		if err != nil {
			return "", fmt.Errorf("failed to presign %s: %w", ref, err)
		}
		url := u.String()

		i.mu.Lock()
		i.cache[ref] = cachedURL{url: url, expires: i.now().Add(i.expiry / 2)}
		i.mu.Unlock()
		return url, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// ValidateRef checks that ref names an object in the image folder.
func ValidateRef(ref string) error {
	name := strings.TrimPrefix(ref, ImageFolder)
	if name == ref || name == "" || strings.Contains(name, "/") || strings.Contains(name, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidImageRef, ref)
	}
	return nil
}
