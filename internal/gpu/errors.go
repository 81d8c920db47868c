package gpu

import "errors"

var (
	// ErrDeviceResources marks a failed device-dependent resource creation.
	// It is not retried in place; recovery is a device-lost/restored cycle.
	ErrDeviceResources = errors.New("gpu: device resource creation failed")

	// ErrDeviceLost is returned by backends once their device is gone.
	ErrDeviceLost = errors.New("gpu: device lost")

	// ErrStaleGeneration is reported when a creation finishes after the
	// resources it was building for have been released.
	ErrStaleGeneration = errors.New("gpu: stale resource generation")

	// ErrEmptyBlob is returned when a shader blob has no bytes.
	ErrEmptyBlob = errors.New("gpu: empty shader blob")

	// ErrUnsupported is returned for descriptors a backend cannot express.
	ErrUnsupported = errors.New("gpu: unsupported descriptor")
)
