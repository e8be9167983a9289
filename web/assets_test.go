package web

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssets_Embedded(t *testing.T) {
	t.Parallel()

	files := Assets("")
	for _, name := range []string{"index.html", "app.js", "style.css"} {
		b, err := fs.ReadFile(files, name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, b, name)
	}

	index, err := fs.ReadFile(files, "index.html")
	require.NoError(t, err)
	assert.Contains(t, string(index), `src="app.js"`)
	assert.Contains(t, string(index), "About")
}

func TestAssets_ClientUsesToneEnvelope(t *testing.T) {
	t.Parallel()

	app, err := fs.ReadFile(Assets(""), "app.js")
	require.NoError(t, err)
	assert.Contains(t, string(app), "exponentialRampToValueAtTime")
	assert.Contains(t, string(app), `"sine"`)
	assert.Contains(t, string(app), "/ws")
}

func TestAssets_MissingDevDirFallsBack(t *testing.T) {
	t.Parallel()

	files := Assets(filepath.Join(t.TempDir(), "missing"))
	_, err := fs.Stat(files, "index.html")
	assert.NoError(t, err)
}

func TestAssets_DevDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("dev"), 0o644))

	b, err := fs.ReadFile(Assets(dir), "index.html")
	require.NoError(t, err)
	assert.Equal(t, "dev", string(b))
}
