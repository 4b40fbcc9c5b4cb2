package core

import (
	"errors"
)

var (
	ErrSwapchainBooting = errors.New("swapchain resized or recreated, booting")
	// ErrDeviceLost is fatal: the logical device can no longer execute work.
	ErrDeviceLost = errors.New("device lost")
	// ErrFenceTimeout is returned by bounded fence waits that expired.
	ErrFenceTimeout = errors.New("fence wait timed out")
	ErrUnknown      = errors.New("unknown")
)
