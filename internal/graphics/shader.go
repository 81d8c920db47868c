package graphics

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"mygrid/internal/gpu"
)

// ShaderLoader fetches the compiled or source blob for one pipeline stage.
// Blobs are opaque to the caller; the backend knows their format.
type ShaderLoader interface {
	Load(ctx context.Context, stage gpu.Stage) ([]byte, error)
}

// ShaderFiles loads stage blobs from files on disk.
type ShaderFiles struct {
	Paths map[gpu.Stage]string
}

// NewShaderFiles maps the vertex, geometry and pixel stages to files in dir.
func NewShaderFiles(dir, vertex, geometry, pixel string) *ShaderFiles {
	return &ShaderFiles{
		Paths: map[gpu.Stage]string{
			gpu.StageVertex:   filepath.Join(dir, vertex),
			gpu.StageGeometry: filepath.Join(dir, geometry),
			gpu.StagePixel:    filepath.Join(dir, pixel),
		},
	}
}

// Load reads the blob for stage.
func (s *ShaderFiles) Load(ctx context.Context, stage gpu.Stage) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, ok := s.Paths[stage]
	if !ok {
		return nil, fmt.Errorf("no %s shader configured", stage)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read %s shader file: %w", stage, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s shader file %s: %w", stage, path, gpu.ErrEmptyBlob)
	}
	return data, nil
}

// Dir returns the directory holding the vertex stage file, which is where
// the set is watched for changes.
func (s *ShaderFiles) Dir() string {
	return filepath.Dir(s.Paths[gpu.StageVertex])
}
