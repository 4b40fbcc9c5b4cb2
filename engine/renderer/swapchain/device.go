package swapchain

import (
	"time"

	"github.com/Git-RoySun/Engine2/engine/renderer/metadata"
)

// SurfaceDevice answers presentation capability queries.
type SurfaceDevice interface {
	QuerySurfaceSupport(surface metadata.Surface) (*metadata.SurfaceSupport, error)
	QueueFamilies() metadata.QueueFamilies
}

// AttachmentDevice creates the client-owned images backing depth and
// multisampled color attachments.
type AttachmentDevice interface {
	FormatProperties(format metadata.Format) metadata.FormatProperties
	MemoryTypes() []metadata.MemoryType
	// FramebufferSampleCounts returns the sample counts supported by color
	// and depth framebuffer attachments.
	FramebufferSampleCounts() (color, depth metadata.SampleCountFlags)

	CreateImage(info *metadata.ImageInfo) (metadata.Image, metadata.MemoryRequirements, error)
	DestroyImage(image metadata.Image)
	AllocateMemory(size uint64, memoryTypeIndex uint32) (metadata.DeviceMemory, error)
	FreeMemory(memory metadata.DeviceMemory)
	BindImageMemory(image metadata.Image, memory metadata.DeviceMemory) error
	CreateImageView(image metadata.Image, format metadata.Format, aspect metadata.ImageAspectFlags) (metadata.ImageView, error)
	DestroyImageView(view metadata.ImageView)
}

type TargetDevice interface {
	CreateRenderPass(desc *metadata.RenderTargetDescriptor) (metadata.RenderPass, error)
	DestroyRenderPass(pass metadata.RenderPass)
	CreateFramebuffer(pass metadata.RenderPass, attachments []metadata.ImageView, extent metadata.Extent2D) (metadata.Framebuffer, error)
	DestroyFramebuffer(framebuffer metadata.Framebuffer)
}

type SyncDevice interface {
	CreateFence(signaled bool) (metadata.Fence, error)
	DestroyFence(fence metadata.Fence)
	// WaitForFence blocks until fence is signaled. A timeout <= 0 waits forever.
	WaitForFence(fence metadata.Fence, timeout time.Duration) error
	ResetFence(fence metadata.Fence) error
	CreateSemaphore() (metadata.Semaphore, error)
	DestroySemaphore(semaphore metadata.Semaphore)
}

type QueueDevice interface {
	// AcquireNextImage signals imageAcquired once the returned image is ready.
	AcquireNextImage(sc metadata.Swapchain, imageAcquired metadata.Semaphore) (uint32, metadata.PresentStatus, error)
	// Submit queues cmd on the graphics queue. The GPU waits for wait at
	// waitStage, then signals signal and fence on completion.
	Submit(cmd metadata.CommandBuffer, wait metadata.Semaphore, waitStage metadata.PipelineStageFlags, signal metadata.Semaphore, fence metadata.Fence) error
	Present(sc metadata.Swapchain, imageIndex uint32, wait metadata.Semaphore) (metadata.PresentStatus, error)
	WaitIdle() error
}

type SwapchainDevice interface {
	CreateSwapchain(info *metadata.SwapchainInfo) (metadata.Swapchain, error)
	DestroySwapchain(sc metadata.Swapchain)
	SwapchainImages(sc metadata.Swapchain) ([]metadata.Image, error)
}

// Device is everything a Chain needs from the GPU.
type Device interface {
	SurfaceDevice
	AttachmentDevice
	TargetDevice
	SyncDevice
	QueueDevice
	SwapchainDevice
}
