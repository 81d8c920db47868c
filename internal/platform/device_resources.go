// Package platform owns the window, the GL device and context, and the
// presentation surface the renderer draws into.
package platform

import (
	"fmt"

	"mygrid/internal/config"
	"mygrid/internal/gpu"
	"mygrid/internal/gpu/glgpu"
	"mygrid/internal/logging"
	"mygrid/internal/profiling"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

// DeviceResources ties the glfw window to the GL backend. Every method runs
// on the thread that created it.
type DeviceResources struct {
	Window   *glfw.Window
	Device   *glgpu.Device
	Context  *glgpu.Context
	Notifier gpu.Notifier

	rotation Rotation
}

// NewDeviceResources opens the window and makes its GL 4.1 core context
// current. glfw must already be initialized.
func NewDeviceResources(win config.WindowConfig, rotation Rotation) (*DeviceResources, error) {
	window, err := setupWindow(win)
	if err != nil {
		return nil, err
	}
	r := &DeviceResources{
		Window:   window,
		Device:   glgpu.NewDevice(),
		Context:  glgpu.NewContext(),
		rotation: rotation,
	}
	logging.Logger().Info("platform: GL context ready",
		"version", gl.GoStr(gl.GetString(gl.VERSION)),
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)),
		"rotation", int(rotation))
	return r, nil
}

func setupWindow(win config.WindowConfig) (*glfw.Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.DepthBits, 24)
	glfw.WindowHint(glfw.StencilBits, 8)
	glfw.WindowHint(glfw.Samples, 4)

	window, err := glfw.CreateWindow(win.Width, win.Height, win.Title, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}
	window.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		window.Destroy()
		return nil, fmt.Errorf("init GL: %w", err)
	}

	// The frame limiter paces the loop when vsync is off.
	if win.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
	return window, nil
}

// OutputSize is the framebuffer size in the panel's logical orientation.
func (r *DeviceResources) OutputSize() (float32, float32) {
	return r.rotation.LogicalSize(r.Window.GetFramebufferSize())
}

func (r *DeviceResources) OrientationTransform() mgl32.Mat4 {
	return r.rotation.Transform()
}

// Minimized reports whether there is nothing to draw into.
func (r *DeviceResources) Minimized() bool {
	w, h := r.Window.GetFramebufferSize()
	return w == 0 || h == 0
}

// BindRenderTargets targets the default framebuffer with depth testing.
func (r *DeviceResources) BindRenderTargets() {
	w, h := r.Window.GetFramebufferSize()
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(w), int32(h))
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
}

func (r *DeviceResources) ClearRenderTarget(rgba [4]float32) {
	gl.ColorMask(true, true, true, true)
	gl.ClearColor(rgba[0], rgba[1], rgba[2], rgba[3])
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

func (r *DeviceResources) ClearDepthStencil(depth float32, stencil uint8) {
	gl.DepthMask(true)
	gl.StencilMask(0xff)
	gl.ClearDepth(float64(depth))
	gl.ClearStencil(int32(stencil))
	gl.Clear(gl.DEPTH_BUFFER_BIT | gl.STENCIL_BUFFER_BIT)
}

// Drain runs the GL work other goroutines queued on the device.
func (r *DeviceResources) Drain() {
	defer profiling.Track("gpu.Drain")()
	r.Device.Drain()
}

// HandleDeviceLost tears down every device-dependent resource and asks the
// listeners to rebuild. The GL context itself survives, so restoring only
// needs the deferred deletions to run in between.
func (r *DeviceResources) HandleDeviceLost() {
	logging.Logger().Warn("platform: recreating device resources")
	r.Notifier.NotifyLost()
	r.Device.Drain()
	r.Notifier.NotifyRestored()
}

// Present swaps the back buffer.
func (r *DeviceResources) Present() {
	defer profiling.Track("glfw.SwapBuffers")()
	r.Window.SwapBuffers()
}

// Close releases the GL objects and destroys the window.
func (r *DeviceResources) Close() {
	r.Device.Close()
	r.Context.Close()
	r.Window.Destroy()
}
