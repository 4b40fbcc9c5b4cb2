package swapchain

import "errors"

var (
	ErrNoDepthFormat      = errors.New("failed to find a supported depth format")
	ErrNoMemoryType       = errors.New("failed to find a device-local memory type")
	ErrNoSurfaceFormat    = errors.New("surface reports no formats")
	ErrAttachmentMismatch = errors.New("attachment does not match the render target")
	// ErrNeedsRecreate is returned when a frame is started on a chain that
	// already reported an out-of-date or suboptimal target.
	ErrNeedsRecreate   = errors.New("chain must be recreated")
	ErrNoImageAcquired = errors.New("no image acquired for this frame")
	ErrChainDestroyed  = errors.New("chain already destroyed")
	ErrInvalidOptions  = errors.New("invalid swapchain options")
)
