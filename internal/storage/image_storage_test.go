package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52}

func TestImageStorage_SaveImage(t *testing.T) {
	s, err := NewImageStorage(t.TempDir(), 1)
	require.NoError(t, err)
	owner := uuid.New()

	payload := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0x01}, 2048)...)
	rel, mime, err := s.SaveImage(context.Background(), owner, bytes.NewReader(payload))
	require.NoError(t, err)

	assert.Equal(t, "image/png", mime)
	assert.Equal(t, ".png", filepath.Ext(rel))
	assert.Equal(t, owner.String(), filepath.Dir(rel))

	stored, err := os.ReadFile(filepath.Join(s.Root(), rel))
	require.NoError(t, err)
	assert.Equal(t, payload, stored)

	require.NoError(t, s.Delete(context.Background(), rel))
	_, err = os.Stat(filepath.Join(s.Root(), rel))
	assert.True(t, os.IsNotExist(err))
}

func TestImageStorage_RejectsNonImages(t *testing.T) {
	s, err := NewImageStorage(t.TempDir(), 1)
	require.NoError(t, err)

	_, _, err = s.SaveImage(context.Background(), uuid.New(), bytes.NewReader([]byte("<html>not an image</html>")))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, _, err = s.SaveImage(context.Background(), uuid.New(), bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestImageStorage_SizeLimit(t *testing.T) {
	s, err := NewImageStorage(t.TempDir(), 1)
	require.NoError(t, err)
	owner := uuid.New()

	payload := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0x02}, 1024*1024)...)
	_, _, err = s.SaveImage(context.Background(), owner, bytes.NewReader(payload))
	assert.ErrorIs(t, err, ErrFileTooLarge)

	entries, err := os.ReadDir(filepath.Join(s.Root(), owner.String()))
	require.NoError(t, err)
	assert.Empty(t, entries)
}
