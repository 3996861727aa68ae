package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	now := time.UnixMilli(1700000000000)

	assert.Equal(t, "submissions/murals/1700000000000-0-wall.jpg", ObjectKey("submissions/murals", now, 0, "wall.jpg"))
	assert.Equal(t, "murals/1700000000000-3-my_photo.png", ObjectKey("/murals/", now, 3, "my photo.png"))
	assert.Equal(t, "murals/1700000000000-1-evil.png", ObjectKey("murals", now, 1, "../../evil.png"))
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"photo.jpg", "photo.jpg"},
		{"a b(1).png", "a_b1.png"},
		{"C:\\Users\\x\\wall.webp", "wall.webp"},
		{".hidden", "hidden"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFilename(tt.in), tt.in)
	}

	generated := SanitizeFilename("???")
	assert.Len(t, generated, 36)
}

func TestLocalStore_Put(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "/media")
	require.NoError(t, err)

	url, err := store.Put(context.Background(), "murals/1-wall.png", "image/png", []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, "/media/murals/1-wall.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "murals", "1-wall.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))
}

func TestLocalStore_PutKeepsExistingObject(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "/media")
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "murals/1-wall.mp4", "video/mp4", []byte("first"))
	require.NoError(t, err)
	_, err = store.Put(context.Background(), "murals/1-wall.mp4", "video/mp4", []byte("second"))
	require.ErrorIs(t, err, ErrObjectExists)

	data, err := os.ReadFile(filepath.Join(dir, "murals", "1-wall.mp4"))
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
}

func TestLocalStore_RejectsEscapingKey(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "")
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "../outside.txt", "", []byte("x"))
	require.Error(t, err)
}

func TestLocalStore_CancelledContext(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = store.Put(ctx, "a.txt", "", []byte("x"))
	require.ErrorIs(t, err, context.Canceled)
}

type fakePutObject struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutObject) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	if params.Body != nil {
		f.body, _ = io.ReadAll(params.Body)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3Store_Put(t *testing.T) {
	fake := &fakePutObject{}
	store := newS3StoreWithClient(fake, "mural-media", "https://cdn.example.com/storage/v1/object/public/mural-media/")

	url, err := store.Put(context.Background(), "murals/1-wall art.png", "image/png", []byte("data"))
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/storage/v1/object/public/mural-media/murals/1-wall%20art.png", url)
	assert.Equal(t, "mural-media", *fake.input.Bucket)
	assert.Equal(t, "murals/1-wall art.png", *fake.input.Key)
	assert.Equal(t, "image/png", *fake.input.ContentType)
	assert.Equal(t, int64(4), *fake.input.ContentLength)
	assert.Equal(t, "data", string(fake.body))
	assert.Equal(t, "*", *fake.input.IfNoneMatch)
}

func TestS3Store_PutError(t *testing.T) {
	fake := &fakePutObject{err: errors.New("denied")}
	store := newS3StoreWithClient(fake, "b", "https://x")

	_, err := store.Put(context.Background(), "k", "", nil)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "denied"))
	assert.Nil(t, fake.input.ContentType)
}

func TestNewMediaStore(t *testing.T) {
	store, err := NewMediaStore(context.Background(), Options{Type: TypeLocal, LocalDir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalStore{}, store)

	_, err = NewMediaStore(context.Background(), Options{Type: "ftp"})
	require.Error(t, err)

	_, err = NewMediaStore(context.Background(), Options{Type: TypeS3})
	require.Error(t, err)
}
