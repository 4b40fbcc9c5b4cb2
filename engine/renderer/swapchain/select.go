package swapchain

import (
	"fmt"

	"github.com/Git-RoySun/Engine2/engine/core"
	"github.com/Git-RoySun/Engine2/engine/math"
	"github.com/Git-RoySun/Engine2/engine/renderer/metadata"
)

// Depth formats in order of preference.
var depthFormatCandidates = []metadata.Format{
	metadata.FormatD32Sfloat,
	metadata.FormatD32SfloatS8Uint,
	metadata.FormatD24UnormS8Uint,
}

func chooseSurfaceFormat(formats []metadata.SurfaceFormat) (metadata.SurfaceFormat, error) {
	if len(formats) == 0 {
		return metadata.SurfaceFormat{}, ErrNoSurfaceFormat
	}
	for _, format := range formats {
		// Preferred formats
		if format.Format == metadata.FormatB8G8R8A8Srgb &&
			format.ColorSpace == metadata.ColorSpaceSrgbNonlinear {
			return format, nil
		}
	}
	return formats[0], nil
}

// choosePresentMode picks mailbox when it is offered and preferred. FIFO is
// always available, so it is the fallback.
func choosePresentMode(modes []metadata.PresentMode, preferMailbox bool) metadata.PresentMode {
	if preferMailbox {
		for _, mode := range modes {
			if mode == metadata.PresentModeMailbox {
				return mode
			}
		}
	}
	return metadata.PresentModeFifo
}

func chooseExtent(caps *metadata.SurfaceCapabilities, desired metadata.Extent2D) metadata.Extent2D {
	if caps.CurrentExtent.Width != metadata.UndefinedExtent {
		return caps.CurrentExtent
	}
	// Clamp to the value allowed by the GPU.
	return metadata.Extent2D{
		Width:  math.Clamp(desired.Width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: math.Clamp(desired.Height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

func chooseImageCount(caps *metadata.SurfaceCapabilities) uint32 {
	imageCount := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && imageCount > caps.MaxImageCount {
		imageCount = caps.MaxImageCount
	}
	return imageCount
}

// chooseSampleCount returns the highest sample count usable by both color and
// depth attachments that does not exceed max.
func chooseSampleCount(dev AttachmentDevice, max metadata.SampleCountFlags) (metadata.SampleCountFlags, error) {
	color, depth := dev.FramebufferSampleCounts()
	counts := color & depth
	for count := metadata.SampleCount64; count > metadata.SampleCount1; count >>= 1 {
		if count <= max && counts&count != 0 {
			return count, nil
		}
	}
	err := fmt.Errorf("%w: no multisampled attachment support up to %d samples", ErrInvalidOptions, max)
	core.LogError(err.Error())
	return 0, err
}

func findDepthFormat(dev AttachmentDevice) (metadata.Format, error) {
	for _, format := range depthFormatCandidates {
		props := dev.FormatProperties(format)
		if props.OptimalTilingFeatures&metadata.FormatFeatureDepthStencilAttachment != 0 {
			return format, nil
		}
	}
	return metadata.FormatUndefined, ErrNoDepthFormat
}
