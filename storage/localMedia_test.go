package storage

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type upload struct {
	name string
	data []byte
}

func fileHeaders(t *testing.T, uploads ...upload) []*multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, u := range uploads {
		part, err := w.CreateFormFile("images", u.name)
		require.NoError(t, err)
		_, err = part.Write(u.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["images"]
}

func newMedia(t *testing.T, maxBytes int64) *LocalMedia {
	t.Helper()
	m, err := NewLocalMedia(filepath.Join(t.TempDir(), "uploads"), maxBytes, zap.NewNop())
	require.NoError(t, err)
	return m
}

func TestCheckAcceptsImages(t *testing.T) {
	m := newMedia(t, 1<<20)
	files := fileHeaders(t, upload{"a.png", pngHeader}, upload{"b.png", pngHeader})
	assert.Empty(t, m.Check(files))
}

func TestCheckRejectsNonImages(t *testing.T) {
	m := newMedia(t, 1<<20)
	files := fileHeaders(t, upload{"notes.png", []byte("just some text")})

	errs := m.Check(files)
	require.Len(t, errs, 1)
	assert.Equal(t, "images", errs[0].Path)
	assert.Contains(t, errs[0].Msg, "notes.png")
}

func TestCheckRejectsTooManyAndTooLarge(t *testing.T) {
	m := newMedia(t, int64(len(pngHeader)-1))
	var uploads []upload
	for i := 0; i < 6; i++ {
		uploads = append(uploads, upload{"a.png", pngHeader})
	}

	errs := m.Check(fileHeaders(t, uploads...))
	require.Len(t, errs, 7)
	assert.Contains(t, errs[0].Msg, "maximum of 5")
	assert.Contains(t, errs[1].Msg, "byte limit")
}

func TestSaveKeepsOrderAndUniqueNames(t *testing.T) {
	m := newMedia(t, 1<<20)
	files := fileHeaders(t, upload{"a.png", pngHeader}, upload{"b.png", pngHeader}, upload{"c.png", pngHeader})

	images, err := m.Save(files)
	require.NoError(t, err)
	require.Len(t, images, 3)

	seen := map[string]bool{}
	for _, img := range images {
		assert.True(t, strings.HasSuffix(img.Filename, ".png"))
		assert.Equal(t, URLPrefix+"/"+img.Filename, img.URL)
		assert.False(t, seen[img.Filename])
		seen[img.Filename] = true

		data, err := os.ReadFile(filepath.Join(m.Dir(), img.Filename))
		require.NoError(t, err)
		assert.Equal(t, pngHeader, data)
	}

	m.Remove(images)
	entries, err := os.ReadDir(m.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSaveFailsWithoutPartialResult(t *testing.T) {
	m := newMedia(t, 1<<20)
	require.NoError(t, os.RemoveAll(m.Dir()))

	images, err := m.Save(fileHeaders(t, upload{"a.png", pngHeader}))
	assert.Error(t, err)
	assert.Nil(t, images)
}
