package graphics

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"mygrid/internal/gpu"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeShaders(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range map[string]string{
		"grid.vert": "vs",
		"grid.geom": "gs",
		"grid.frag": "ps",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func TestShaderFilesLoad(t *testing.T) {
	dir := writeShaders(t)
	files := NewShaderFiles(dir, "grid.vert", "grid.geom", "grid.frag")

	for stage, want := range map[gpu.Stage]string{
		gpu.StageVertex:   "vs",
		gpu.StageGeometry: "gs",
		gpu.StagePixel:    "ps",
	} {
		got, err := files.Load(context.Background(), stage)
		require.NoError(t, err)
		assert.Equal(t, want, string(got))
	}
	assert.Equal(t, dir, files.Dir())
}

func TestShaderFilesMissing(t *testing.T) {
	files := NewShaderFiles(t.TempDir(), "grid.vert", "grid.geom", "grid.frag")
	_, err := files.Load(context.Background(), gpu.StagePixel)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestShaderFilesEmpty(t *testing.T) {
	dir := writeShaders(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "grid.geom"), nil, 0o644))
	files := NewShaderFiles(dir, "grid.vert", "grid.geom", "grid.frag")

	_, err := files.Load(context.Background(), gpu.StageGeometry)
	assert.ErrorIs(t, err, gpu.ErrEmptyBlob)
}

func TestShaderFilesCancelled(t *testing.T) {
	files := NewShaderFiles(writeShaders(t), "grid.vert", "grid.geom", "grid.frag")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := files.Load(ctx, gpu.StageVertex)
	assert.ErrorIs(t, err, context.Canceled)
}
