package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/Git-RoySun/Engine2/engine/renderer/metadata"
	"github.com/Git-RoySun/Engine2/engine/renderer/swapchain"
)

var _ swapchain.Device = (*VulkanContext)(nil)

// VulkanContext holds the instance level objects and the selected device.
// It is the swapchain.Device used by the presentation chain.
type VulkanContext struct {
	Instance  vk.Instance
	Allocator *vk.AllocationCallbacks
	Surface   vk.Surface

	debugMessenger vk.DebugReportCallback

	Device *VulkanDevice

	locks *VulkanLockPool
}

func NewVulkanContext() *VulkanContext {
	return &VulkanContext{
		Allocator: nil,
		Device:    &VulkanDevice{},
		locks:     NewVulkanLockPool(),
	}
}

func (vc *VulkanContext) MemoryTypes() []metadata.MemoryType {
	return vc.Device.MemoryTypes
}

func (vc *VulkanContext) logical() vk.Device {
	return vc.Device.LogicalDevice
}
