package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"aircarer/internal/model"

	"github.com/google/uuid"
)

// PhotoStore keeps room photos as opaque blobs under a policy
type PhotoStore struct {
	storage Storage
	policy  *FilePolicy
}

func NewPhotoStore(storage Storage, policy *FilePolicy) *PhotoStore {
	return &PhotoStore{storage: storage, policy: policy}
}

// SavePhoto validates and stores one photo for a request. size is the
// size announced by the client; the stored byte count is what ends up
// in the returned metadata.
func (s *PhotoStore) SavePhoto(ctx context.Context, requestID, name, contentType string, size int64, r io.Reader) (model.Photo, error) {
	if err := s.policy.ValidateFile(name, contentType, size); err != nil {
		return model.Photo{}, err
	}

	id := uuid.NewString()
	objectName := fmt.Sprintf("requests/%s/%s%s", requestID, id, strings.ToLower(filepath.Ext(name)))

	// cap reads one byte past the limit so oversized bodies are detected
	if max := s.policy.MaxBytes(); max > 0 {
		r = io.LimitReader(r, max+1)
	}
	hash := sha256.New()
	counter := &countingReader{r: io.TeeReader(r, hash)}

	if err := s.storage.Put(ctx, objectName, counter); err != nil {
		return model.Photo{}, fmt.Errorf("failed to store photo: %w", err)
	}

	if max := s.policy.MaxBytes(); max > 0 && counter.n > max {
		_ = s.storage.Delete(ctx, objectName)
		return model.Photo{}, fmt.Errorf("%w: photo exceeds %d bytes", ErrPolicyViolation, max)
	}

	return model.Photo{
		ID:          id,
		Name:        filepath.Base(name),
		ContentType: contentType,
		Size:        counter.n,
		SHA256:      hex.EncodeToString(hash.Sum(nil)),
		ObjectName:  objectName,
	}, nil
}

// Open returns the blob of a stored photo
func (s *PhotoStore) Open(ctx context.Context, photo model.Photo) (io.ReadCloser, error) {
	return s.storage.Get(ctx, photo.ObjectName)
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
