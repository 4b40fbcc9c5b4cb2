package metadata

// Opaque GPU object handles. The presentation core only stores and compares
// them; each backend keeps its native handle inside and type-asserts it back.
type (
	Surface       interface{}
	Swapchain     interface{}
	Image         interface{}
	ImageView     interface{}
	DeviceMemory  interface{}
	RenderPass    interface{}
	Framebuffer   interface{}
	Fence         interface{}
	Semaphore     interface{}
	CommandBuffer interface{}
)

/** @brief The queue family indices used for graphics submission and presentation. */
type QueueFamilies struct {
	Graphics uint32
	Present  uint32
}

// Shared reports whether graphics and presentation run on the same queue family.
func (q QueueFamilies) Shared() bool {
	return q.Graphics == q.Present
}
