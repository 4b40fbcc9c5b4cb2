package vulkan

import (
	"math"

	vk "github.com/goki/vulkan"

	"github.com/Git-RoySun/Engine2/engine/renderer/metadata"
)

func (vc *VulkanContext) CreateSwapchain(info *metadata.SwapchainInfo) (metadata.Swapchain, error) {
	swapchainCreateInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          info.Surface.(vk.Surface),
		MinImageCount:    info.MinImageCount,
		ImageFormat:      vk.Format(info.Format.Format),
		ImageColorSpace:  vk.ColorSpace(info.Format.ColorSpace),
		ImageExtent:      vk.Extent2D{Width: info.Extent.Width, Height: info.Extent.Height},
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     vk.SurfaceTransformFlagBits(info.PreTransform),
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      vk.PresentMode(info.PresentMode),
		Clipped:          vk.True,
		OldSwapchain:     vk.NullSwapchain,
	}
	if info.OldSwapchain != nil {
		swapchainCreateInfo.OldSwapchain = info.OldSwapchain.(vk.Swapchain)
	}

	// Images are used by both queues when graphics and present differ.
	if !info.QueueFamilies.Shared() {
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeConcurrent
		swapchainCreateInfo.QueueFamilyIndexCount = 2
		swapchainCreateInfo.PQueueFamilyIndices = []uint32{info.QueueFamilies.Graphics, info.QueueFamilies.Present}
	} else {
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeExclusive
	}

	var handle vk.Swapchain
	err := vc.locks.SafeCall(SwapchainManagement, func() error {
		if res := vk.CreateSwapchain(vc.logical(), &swapchainCreateInfo, vc.Allocator, &handle); res != vk.Success {
			return resultError("vkCreateSwapchainKHR", res)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return handle, nil
}

// DestroySwapchain destroys sc. Its images are owned by the swapchain and
// go with it.
func (vc *VulkanContext) DestroySwapchain(sc metadata.Swapchain) {
	_ = vc.locks.SafeCall(SwapchainManagement, func() error {
		vk.DestroySwapchain(vc.logical(), sc.(vk.Swapchain), vc.Allocator)
		return nil
	})
}

func (vc *VulkanContext) SwapchainImages(sc metadata.Swapchain) ([]metadata.Image, error) {
	var count uint32
	if res := vk.GetSwapchainImages(vc.logical(), sc.(vk.Swapchain), &count, nil); res != vk.Success {
		return nil, resultError("vkGetSwapchainImagesKHR", res)
	}
	images := make([]vk.Image, count)
	if res := vk.GetSwapchainImages(vc.logical(), sc.(vk.Swapchain), &count, images); res != vk.Success {
		return nil, resultError("vkGetSwapchainImagesKHR", res)
	}

	out := make([]metadata.Image, count)
	for i := range out {
		out[i] = images[i]
	}
	return out, nil
}

func (vc *VulkanContext) AcquireNextImage(sc metadata.Swapchain, imageAcquired metadata.Semaphore) (uint32, metadata.PresentStatus, error) {
	var imageIndex uint32
	var result vk.Result
	_ = vc.locks.SafeCall(SwapchainManagement, func() error {
		result = vk.AcquireNextImage(vc.logical(), sc.(vk.Swapchain), math.MaxUint64, imageAcquired.(vk.Semaphore), vk.NullFence, &imageIndex)
		return nil
	})
	status, err := presentStatus("vkAcquireNextImageKHR", result)
	return imageIndex, status, err
}

// Present returns imageIndex to the swapchain once wait is signaled.
func (vc *VulkanContext) Present(sc metadata.Swapchain, imageIndex uint32, wait metadata.Semaphore) (metadata.PresentStatus, error) {
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{wait.(vk.Semaphore)},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{sc.(vk.Swapchain)},
		PImageIndices:      []uint32{imageIndex},
	}

	var result vk.Result
	_ = vc.locks.SafeQueueCall(vc.Device.PresentQueueIndex, func() error {
		result = vk.QueuePresent(vc.Device.PresentQueue, &presentInfo)
		return nil
	})
	return presentStatus("vkQueuePresentKHR", result)
}
