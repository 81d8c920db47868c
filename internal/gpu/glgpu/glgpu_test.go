package glgpu

import (
	"sync"
	"testing"
	"time"

	"mygrid/internal/gpu"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests never drain GL work, so they run without a GL context.

func TestQueueRunsOnDrainingThread(t *testing.T) {
	var q queue
	var wg sync.WaitGroup
	results := make([]int, 4)

	for i := range results {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, q.do(func() { results[i] = i + 1 }))
		}()
	}

	deadline := time.Now().Add(5 * time.Second)
	ran := 0
	for ran < len(results) && time.Now().Before(deadline) {
		ran += q.drain()
		time.Sleep(time.Millisecond)
	}
	wg.Wait()
	assert.Equal(t, []int{1, 2, 3, 4}, results)
}

func TestQueuePostPreservesOrder(t *testing.T) {
	var q queue
	var order []int
	for i := 0; i < 3; i++ {
		i := i
		require.True(t, q.post(func() { order = append(order, i) }))
	}
	assert.Equal(t, 3, q.pending())
	assert.Equal(t, 3, q.drain())
	assert.Equal(t, []int{0, 1, 2}, order)
	assert.Zero(t, q.drain())
}

func TestQueueCloseFailsWaiters(t *testing.T) {
	var q queue
	errc := make(chan error, 1)
	go func() { errc <- q.do(func() { t.Error("must not run") }) }()

	require.Eventually(t, func() bool { return q.pending() == 1 }, 5*time.Second, time.Millisecond)
	q.close()

	assert.ErrorIs(t, <-errc, gpu.ErrDeviceLost)
	assert.ErrorIs(t, q.do(func() {}), gpu.ErrDeviceLost)
	assert.False(t, q.post(func() {}))
}

func TestCreateInputLayout(t *testing.T) {
	d := NewDevice()
	elements := []gpu.InputElement{{Semantic: "POSITION", Format: gpu.FormatR32G32B32A32Float}}

	l, err := d.CreateInputLayout(elements, []byte("vs"))
	require.NoError(t, err)
	assert.Equal(t, elements, l.Elements())
	assert.Equal(t, 1, d.Live())

	_, err = d.CreateInputLayout(elements, nil)
	assert.ErrorIs(t, err, gpu.ErrEmptyBlob)

	_, err = d.CreateInputLayout([]gpu.InputElement{{Semantic: "POSITION", Slot: 1}}, []byte("vs"))
	assert.ErrorIs(t, err, gpu.ErrUnsupported)

	d.Release(l)
	d.Release(l)
	assert.Zero(t, d.Live())
	assert.Zero(t, d.Pending(), "layouts own no GL objects")
}

func TestCreateBlendState(t *testing.T) {
	d := NewDevice()
	bs, err := d.CreateBlendState(gpu.AlphaBlend())
	require.NoError(t, err)

	s := bs.(*blendState).state
	assert.True(t, s.enable)
	assert.Equal(t, uint32(gl.SRC_ALPHA), s.src)
	assert.Equal(t, uint32(gl.ONE_MINUS_SRC_ALPHA), s.dst)
	assert.Equal(t, uint32(gl.SRC_ALPHA), s.srcA)
	assert.Equal(t, uint32(gl.ONE_MINUS_SRC_ALPHA), s.dstA)
	assert.Equal(t, uint32(gl.FUNC_ADD), s.op)
	assert.True(t, s.r && s.g && s.b && s.a)

	desc := gpu.AlphaBlend()
	desc.IndependentBlend = true
	_, err = d.CreateBlendState(desc)
	assert.ErrorIs(t, err, gpu.ErrUnsupported)
}

func TestReleaseDefersDeletion(t *testing.T) {
	d := NewDevice()
	d.live.Add(2)
	buf := &buffer{handle: handle{kind: gpu.KindBuffer}, id: 7, target: gl.ARRAY_BUFFER}
	sh := &shader{handle: handle{kind: gpu.KindShader}, program: 9}

	d.Release(buf)
	d.Release(sh)
	d.Release(buf)

	assert.Zero(t, d.Live())
	assert.Equal(t, 2, d.Pending())
}

func TestCreateAfterCloseReportsDeviceLost(t *testing.T) {
	d := NewDevice()
	d.Close()

	_, err := d.CreateShader(gpu.StageVertex, []byte("void main() {}"))
	assert.ErrorIs(t, err, gpu.ErrDeviceLost)

	_, err = d.CreateBuffer(gpu.BufferDesc{Bind: gpu.BindConstantBuffer, ByteWidth: 224}, nil)
	assert.ErrorIs(t, err, gpu.ErrDeviceLost)
}

func TestCreateRejectsBadInput(t *testing.T) {
	d := NewDevice()

	_, err := d.CreateShader(gpu.StagePixel, nil)
	assert.ErrorIs(t, err, gpu.ErrEmptyBlob)

	_, err = d.CreateShader(gpu.Stage(42), []byte("x"))
	assert.ErrorIs(t, err, gpu.ErrUnsupported)

	_, err = d.CreateBuffer(gpu.BufferDesc{Bind: gpu.BindVertexBuffer, ByteWidth: 4}, []float32{1, 2})
	assert.Error(t, err)

	_, err = d.CreateBuffer(gpu.BufferDesc{Bind: gpu.BindFlag(9), ByteWidth: 16}, nil)
	assert.ErrorIs(t, err, gpu.ErrUnsupported)

	assert.Zero(t, d.Pending())
}

func TestEnumMapping(t *testing.T) {
	assert.Equal(t, uint32(gl.LINES), topologyMode(gpu.TopologyLineList))
	assert.Equal(t, uint32(gl.GEOMETRY_SHADER_BIT), stageBit(gpu.StageGeometry))

	target, usage, err := bufferTarget(gpu.BindConstantBuffer)
	require.NoError(t, err)
	assert.Equal(t, uint32(gl.UNIFORM_BUFFER), target)
	assert.Equal(t, uint32(gl.DYNAMIC_DRAW), usage)

	st, err := shaderType(gpu.StagePixel)
	require.NoError(t, err)
	assert.Equal(t, uint32(gl.FRAGMENT_SHADER), st)
}
