package vulkan

import (
	"fmt"
	"math"
	"time"

	vk "github.com/goki/vulkan"

	"github.com/Git-RoySun/Engine2/engine/core"
	"github.com/Git-RoySun/Engine2/engine/renderer/metadata"
)

func (vc *VulkanContext) CreateFence(signaled bool) (metadata.Fence, error) {
	fenceCreateInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}
	if signaled {
		fenceCreateInfo.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}

	var fence vk.Fence
	if res := vk.CreateFence(vc.logical(), &fenceCreateInfo, vc.Allocator, &fence); res != vk.Success {
		return nil, resultError("vkCreateFence", res)
	}
	return fence, nil
}

func (vc *VulkanContext) DestroyFence(fence metadata.Fence) {
	vk.DestroyFence(vc.logical(), fence.(vk.Fence), vc.Allocator)
}

func (vc *VulkanContext) WaitForFence(fence metadata.Fence, timeout time.Duration) error {
	var timeoutNs uint64 = math.MaxUint64
	if timeout > 0 {
		timeoutNs = uint64(timeout.Nanoseconds())
	}

	result := vk.WaitForFences(vc.logical(), 1, []vk.Fence{fence.(vk.Fence)}, vk.True, timeoutNs)
	switch result {
	case vk.Success:
		return nil
	case vk.Timeout:
		core.LogWarn("vk_fence_wait - Timed out after %s", timeout)
		return fmt.Errorf("vkWaitForFences: %w", core.ErrFenceTimeout)
	}
	core.LogError("vk_fence_wait - %s", VulkanResultString(result, true))
	return resultError("vkWaitForFences", result)
}

func (vc *VulkanContext) ResetFence(fence metadata.Fence) error {
	if res := vk.ResetFences(vc.logical(), 1, []vk.Fence{fence.(vk.Fence)}); res != vk.Success {
		return resultError("vkResetFences", res)
	}
	return nil
}

func (vc *VulkanContext) CreateSemaphore() (metadata.Semaphore, error) {
	semaphoreCreateInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	var semaphore vk.Semaphore
	if res := vk.CreateSemaphore(vc.logical(), &semaphoreCreateInfo, vc.Allocator, &semaphore); res != vk.Success {
		return nil, resultError("vkCreateSemaphore", res)
	}
	return semaphore, nil
}

func (vc *VulkanContext) DestroySemaphore(semaphore metadata.Semaphore) {
	vk.DestroySemaphore(vc.logical(), semaphore.(vk.Semaphore), vc.Allocator)
}
