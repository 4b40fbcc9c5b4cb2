package renderer

import "github.com/Git-RoySun/Engine2/engine/core"

// RendererBackend is implemented by each graphics API. A backend owns its
// presentation chain and records every frame between BeginFrame and EndFrame.
type RendererBackend interface {
	Initialize(appName string, appWidth, appHeight uint32) error
	Shutdown() error
	Resized(width, height uint32) error
	// Reconfigure applies renderer settings from a reloaded config.
	Reconfigure(config core.RendererConfig) error
	// BeginFrame returns core.ErrSwapchainBooting when the frame has to be
	// skipped, for instance while the chain is rebuilt.
	BeginFrame(deltaTime float64) error
	EndFrame(deltaTime float64) error
}
