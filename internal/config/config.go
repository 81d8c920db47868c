package config

import "sync"

// RenderSettings holds settings that may change while the loop runs.
type RenderSettings struct {
	mu       sync.RWMutex
	fpsLimit int // 0 means unlimited
}

var globalRenderSettings = &RenderSettings{
	fpsLimit: 144,
}

// GetFPSLimit returns the current frame cap; 0 disables limiting.
func GetFPSLimit() int {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.fpsLimit
}

// SetFPSLimit sets the frame cap.
func SetFPSLimit(limit int) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()

	// Clamp to reasonable values
	if limit < 0 {
		limit = 0
	}
	if limit > 1000 {
		limit = 1000
	}

	globalRenderSettings.fpsLimit = limit
}
