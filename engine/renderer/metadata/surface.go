package metadata

import "fmt"

// UndefinedExtent is the width/height a surface reports when the swapchain,
// not the window system, decides the extent.
const UndefinedExtent uint32 = 0xFFFFFFFF

type Extent2D struct {
	Width  uint32
	Height uint32
}

// IsZero reports whether either dimension is zero (e.g. a minimized window).
func (e Extent2D) IsZero() bool {
	return e.Width == 0 || e.Height == 0
}

func (e Extent2D) String() string {
	return fmt.Sprintf("%dx%d", e.Width, e.Height)
}

type SurfaceFormat struct {
	Format     Format
	ColorSpace ColorSpace
}

type SurfaceCapabilities struct {
	MinImageCount uint32
	// MaxImageCount of 0 means there is no upper bound.
	MaxImageCount    uint32
	CurrentExtent    Extent2D
	MinImageExtent   Extent2D
	MaxImageExtent   Extent2D
	CurrentTransform SurfaceTransformFlags
}

// SurfaceSupport is the result of a presentation capability query.
type SurfaceSupport struct {
	Capabilities SurfaceCapabilities
	Formats      []SurfaceFormat
	PresentModes []PresentMode
}

/** @brief Everything a backend needs to create a swapchain. */
type SwapchainInfo struct {
	Surface       Surface
	MinImageCount uint32
	Format        SurfaceFormat
	Extent        Extent2D
	PresentMode   PresentMode
	QueueFamilies QueueFamilies
	PreTransform  SurfaceTransformFlags
	/** @brief The swapchain being replaced, or nil. */
	OldSwapchain Swapchain
}
