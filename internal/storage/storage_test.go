package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	stor, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, stor.Put(ctx, "a/b.txt", strings.NewReader("hello")))

	rc, err := stor.Get(ctx, "a/b.txt")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, stor.Delete(ctx, "a/b.txt"))
	_, err = stor.Get(ctx, "a/b.txt")
	assert.Error(t, err)
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	stor, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	assert.Error(t, stor.Put(context.Background(), "../escape.txt", strings.NewReader("x")))
}

func TestFilePolicy_ValidateFile(t *testing.T) {
	policy := NewPhotoPolicy(1)

	assert.NoError(t, policy.ValidateFile("kitchen.jpg", "image/jpeg", 1024))
	assert.NoError(t, policy.ValidateFile("kitchen.PNG", "image/png; charset=binary", 0))

	err := policy.ValidateFile("kitchen.jpg", "image/jpeg", 2*1024*1024)
	assert.ErrorIs(t, err, ErrPolicyViolation)

	err = policy.ValidateFile("notes.pdf", "application/pdf", 10)
	assert.ErrorIs(t, err, ErrPolicyViolation)

	err = policy.ValidateFile("kitchen", "image/jpeg", 10)
	assert.ErrorIs(t, err, ErrPolicyViolation)

	var nilPolicy *FilePolicy
	assert.NoError(t, nilPolicy.ValidateFile("anything", "", 1<<40))
}

func TestPhotoStore_SavePhoto(t *testing.T) {
	ctx := context.Background()
	stor, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	photos := NewPhotoStore(stor, NewPhotoPolicy(1))

	content := []byte("not really a jpeg")
	photo, err := photos.SavePhoto(ctx, "req1", "bath.jpg", "image/jpeg", int64(len(content)), bytes.NewReader(content))
	require.NoError(t, err)

	assert.NotEmpty(t, photo.ID)
	assert.Equal(t, "bath.jpg", photo.Name)
	assert.Equal(t, int64(len(content)), photo.Size)
	assert.True(t, strings.HasPrefix(photo.ObjectName, "requests/req1/"))

	sum := sha256.Sum256(content)
	assert.Equal(t, hex.EncodeToString(sum[:]), photo.SHA256)

	rc, err := photos.Open(ctx, photo)
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestPhotoStore_RejectsOversizedBody(t *testing.T) {
	ctx := context.Background()
	stor, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	photos := NewPhotoStore(stor, &FilePolicy{MaxFileMB: 0.001})

	// announced size lies, body is larger than the limit
	body := bytes.Repeat([]byte("x"), 4096)
	_, err = photos.SavePhoto(ctx, "req1", "big.png", "image/png", 10, bytes.NewReader(body))
	assert.ErrorIs(t, err, ErrPolicyViolation)
}
