package upload

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studentportal/internal/shared"
)

func testSaver(t *testing.T) *Saver {
	t.Helper()
	return NewSaver(shared.UploadConfig{
		RootDir:  t.TempDir(),
		MaxBytes: 1024,
		AllowedMIME: []string{
			"image/png", "application/pdf", "text/plain",
		},
	})
}

// Minimal valid PNG header plus padding.
func pngBytes() []byte {
	return append([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 64)...)
}

func TestSave(t *testing.T) {
	ctx := context.Background()

	t.Run("stores an allowed file", func(t *testing.T) {
		saver := testSaver(t)

		res, err := saver.Save(ctx, bytes.NewReader(pngBytes()), "avatar.png", "avatars")
		require.NoError(t, err)
		assert.Equal(t, "image/png", res.MIME)
		assert.Equal(t, "avatar.png", res.Original)
		assert.Equal(t, "avatars", filepath.Dir(res.Path))
		assert.True(t, strings.HasSuffix(res.Path, ".png"))

		f, err := saver.Open(res.Path)
		require.NoError(t, err)
		f.Close()
	})

	t.Run("type comes from content, not filename", func(t *testing.T) {
		saver := testSaver(t)

		res, err := saver.Save(ctx, bytes.NewReader(pngBytes()), "notes.txt", "materials")
		require.NoError(t, err)
		assert.Equal(t, "image/png", res.MIME)
	})

	t.Run("plain text is allowed", func(t *testing.T) {
		saver := testSaver(t)

		res, err := saver.Save(ctx, strings.NewReader("lecture notes"), "notes.txt", "materials")
		require.NoError(t, err)
		assert.Contains(t, res.MIME, "text/plain")
	})

	t.Run("disallowed type rejected", func(t *testing.T) {
		saver := testSaver(t)

		// ZIP magic bytes
		zip := append([]byte{'P', 'K', 0x03, 0x04}, make([]byte, 32)...)
		_, err := saver.Save(ctx, bytes.NewReader(zip), "archive.zip", "materials")
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("oversize rejected", func(t *testing.T) {
		saver := testSaver(t)

		big := append(pngBytes(), make([]byte, 2048)...)
		_, err := saver.Save(ctx, bytes.NewReader(big), "big.png", "avatars")
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("empty upload rejected", func(t *testing.T) {
		saver := testSaver(t)

		_, err := saver.Save(ctx, bytes.NewReader(nil), "empty.png", "avatars")
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("stored names are unique", func(t *testing.T) {
		saver := testSaver(t)

		a, err := saver.Save(ctx, bytes.NewReader(pngBytes()), "a.png", "avatars")
		require.NoError(t, err)
		b, err := saver.Save(ctx, bytes.NewReader(pngBytes()), "a.png", "avatars")
		require.NoError(t, err)
		assert.NotEqual(t, a.Path, b.Path)
	})
}

func TestOpenCannotEscapeRoot(t *testing.T) {
	saver := testSaver(t)

	_, err := saver.Open("../../etc/passwd")
	require.Error(t, err)
	assert.True(t, shared.IsNotFound(err) || os.IsNotExist(err))
}
