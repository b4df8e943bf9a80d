package darkroom

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestUploader(t *testing.T) (*Uploader, string) {
	t.Helper()
	root := t.TempDir()
	return NewUploader(root, "http://localhost:3000"), root
}

func TestSaveWritesVerbatim(t *testing.T) {
	u, root := setupTestUploader(t)

	content := []byte("not-actually-a-png-but-stored-verbatim")
	uploaded, err := u.Save("", "image/png", int64(len(content)), bytes.NewReader(content))
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(uploaded.Filename, ".png"))
	assert.Equal(t, "http://localhost:3000/public/uploads/"+uploaded.Filename, uploaded.URL)
	assert.Equal(t, int64(len(content)), uploaded.Size)

	onDisk, err := os.ReadFile(filepath.Join(root, "uploads", uploaded.Filename))
	require.NoError(t, err)
	assert.Equal(t, content, onDisk)
}

func TestSaveRejectsBadMIMEType(t *testing.T) {
	u, root := setupTestUploader(t)

	_, err := u.Save("uploads", "text/plain", 4, strings.NewReader("hack"))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	// Nothing written.
	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSaveRejectsOversizedFile(t *testing.T) {
	u, root := setupTestUploader(t)

	_, err := u.Save("uploads", "image/jpeg", maxUploadSize+1, strings.NewReader("x"))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSaveToFolderRejectsOversizedFile(t *testing.T) {
	u, root := setupTestUploader(t)

	big := bytes.NewReader(make([]byte, maxUploadSize+1))
	_, err := u.SaveToFolder("posts/big", "00.jpg", "image/jpeg", big)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	// Rejected before the folder is even created.
	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSaveToFolderAndListOrder(t *testing.T) {
	u, _ := setupTestUploader(t)

	// Upload out of order; the listing sorts by zero-padded filename.
	for _, name := range []string{"00.jpg", "02.jpg", "01.jpg"} {
		_, err := u.SaveToFolder("posts/golden-hour", name, "image/jpeg", strings.NewReader("img"))
		require.NoError(t, err)
	}

	files, err := u.ListFolder("posts/golden-hour")
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, "00.jpg", files[0].Filename)
	assert.Equal(t, "01.jpg", files[1].Filename)
	assert.Equal(t, "02.jpg", files[2].Filename)
	assert.Equal(t, []int{0, 1, 2}, []int{files[0].Position, files[1].Position, files[2].Position})
	assert.Equal(t, "http://localhost:3000/public/posts/golden-hour/00.jpg", files[0].URL)
}

func TestSaveToFolderValidation(t *testing.T) {
	u, _ := setupTestUploader(t)

	_, err := u.SaveToFolder("", "00.jpg", "image/jpeg", strings.NewReader("img"))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	_, err = u.SaveToFolder("posts/x", "00.jpg", "text/plain", strings.NewReader("img"))
	require.ErrorAs(t, err, &ve)
}

func TestListFolderFiltersNonImages(t *testing.T) {
	u, root := setupTestUploader(t)

	_, err := u.SaveToFolder("posts/mixed", "00.jpg", "image/jpeg", strings.NewReader("img"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(root, "posts", "mixed", "notes.txt"), []byte("x"), 0o644))

	files, err := u.ListFolder("posts/mixed")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "00.jpg", files[0].Filename)
}

func TestListFolderMissingIsEmpty(t *testing.T) {
	u, _ := setupTestUploader(t)

	files, err := u.ListFolder("posts/never-created")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDeleteFolder(t *testing.T) {
	u, root := setupTestUploader(t)

	_, err := u.SaveToFolder("posts/doomed", "00.jpg", "image/jpeg", strings.NewReader("img"))
	require.NoError(t, err)

	require.NoError(t, u.DeleteFolder("posts/doomed"))
	_, err = os.Stat(filepath.Join(root, "posts", "doomed"))
	assert.True(t, os.IsNotExist(err))

	// A folder that never existed deletes successfully.
	assert.NoError(t, u.DeleteFolder("posts/never-created"))
}

func TestFolderPathsConfinedToRoot(t *testing.T) {
	u, root := setupTestUploader(t)

	uploaded, err := u.SaveToFolder("../../outside", "00.jpg", "image/jpeg", strings.NewReader("img"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000/public/outside/00.jpg", uploaded.URL)

	// The traversal attempt lands inside the static root.
	_, err = os.Stat(filepath.Join(root, "outside", "00.jpg"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(filepath.Dir(root), "outside"))
	assert.True(t, os.IsNotExist(err))
}

func TestParsePosition(t *testing.T) {
	tests := []struct {
		filename string
		want     int
	}{
		{"00.jpg", 0},
		{"01.jpg", 1},
		{"12.png", 12},
		{"007.webp", 7},
		{"3-cover.jpg", 3},
		{"cover.jpg", -1},
		{"", -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parsePosition(tt.filename), "parsePosition(%q)", tt.filename)
	}
}
