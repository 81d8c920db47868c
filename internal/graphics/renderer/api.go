package renderer

import "mygrid/internal/timer"

// Renderable is the resource lifecycle every drawable feature follows.
//
// Device-dependent creation is asynchronous: the returned channel (also
// available from Loading) yields one result and is then closed. Update and
// Render are no-ops until that creation has succeeded.
type Renderable interface {
	CreateDeviceDependentResources() <-chan error
	CreateWindowSizeDependentResources()
	ReleaseDeviceDependentResources()
	Loading() <-chan error
	Update(clock timer.Clock)
	Render()
}
