package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, root string, rel ...string) {
	t.Helper()
	for _, r := range rel {
		p := filepath.Join(root, r)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("img"), 0o644))
	}
}

func TestKeyframes(t *testing.T) {
	root := t.TempDir()
	touch(t, root,
		"L02_V001/000010.webp",
		"L01_V002/frame_000300.png",
		"L01_V002/frame_000045.png",
		"L01_V002/cover.jpg",
		"L01_V002/notes.txt",
		".cache/L09_V009/000001.webp",
	)

	files, err := Keyframes(root, "")
	require.NoError(t, err)
	require.Len(t, files, 3)

	assert.Equal(t, "L01_V002", files[0].VideoID)
	assert.Equal(t, 45, files[0].Index)
	assert.Equal(t, 300, files[1].Index)
	assert.Equal(t, "L02_V001", files[2].VideoID)
	assert.EqualValues(t, 3, files[2].Size)

	only, err := Keyframes(root, "L02_V001")
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, "000010", only[0].Name)
}

func TestKeyframes_MissingRoot(t *testing.T) {
	files, err := Keyframes(filepath.Join(t.TempDir(), "absent"), "")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestVideos(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "b/1.webp", "a/2.webp", "a/3.webp")

	vids, err := Videos(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, vids)
}
