package platform

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRotation(t *testing.T) {
	for _, deg := range []int{0, 90, 180, 270} {
		r, err := ParseRotation(deg)
		require.NoError(t, err)
		assert.Equal(t, Rotation(deg), r)
	}
	for _, deg := range []int{-90, 45, 360} {
		_, err := ParseRotation(deg)
		assert.Error(t, err, "rotation %d", deg)
	}
}

func TestRotationTransform(t *testing.T) {
	assert.Equal(t, mgl32.Ident4(), Rotation0.Transform())

	// A quarter turn maps +X to +Y in clip space.
	v := Rotation90.Transform().Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	assert.True(t, v.ApproxEqualThreshold(mgl32.Vec4{0, 1, 0, 1}, 1e-6), "%v", v)

	half := Rotation180.Transform().Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	assert.True(t, half.ApproxEqualThreshold(mgl32.Vec4{-1, 0, 0, 1}, 1e-6), "%v", half)

	full := Rotation90.Transform().Mul4(Rotation270.Transform())
	assert.True(t, full.ApproxEqualThreshold(mgl32.Ident4(), 1e-6))
}

func TestLogicalSize(t *testing.T) {
	w, h := Rotation0.LogicalSize(1280, 720)
	assert.Equal(t, [2]float32{1280, 720}, [2]float32{w, h})

	w, h = Rotation90.LogicalSize(1280, 720)
	assert.Equal(t, [2]float32{720, 1280}, [2]float32{w, h})

	w, h = Rotation180.LogicalSize(1280, 720)
	assert.Equal(t, [2]float32{1280, 720}, [2]float32{w, h})

	assert.True(t, Rotation270.Swaps())
}

func TestShaderWatcherCoalescesChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "grid.frag")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))

	sw, err := WatchShaders(dir, 100*time.Millisecond)
	require.NoError(t, err)
	defer sw.Close()

	for _, body := range []string{"b", "c", "d"} {
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}

	select {
	case <-sw.Changed():
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
	assert.Positive(t, sw.Events())

	select {
	case <-sw.Changed():
		t.Fatal("burst reported twice")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestShaderWatcherMissingDir(t *testing.T) {
	_, err := WatchShaders(filepath.Join(t.TempDir(), "absent"), time.Millisecond)
	assert.Error(t, err)
}

func TestShaderWatcherCloseTwice(t *testing.T) {
	sw, err := WatchShaders(t.TempDir(), time.Millisecond)
	require.NoError(t, err)
	assert.NoError(t, sw.Close())
	assert.NoError(t, sw.Close())
}
