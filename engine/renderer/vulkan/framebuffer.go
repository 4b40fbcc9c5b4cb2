package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/Git-RoySun/Engine2/engine/renderer/metadata"
)

func (vc *VulkanContext) CreateFramebuffer(pass metadata.RenderPass, attachments []metadata.ImageView, extent metadata.Extent2D) (metadata.Framebuffer, error) {
	views := make([]vk.ImageView, len(attachments))
	for i, a := range attachments {
		views[i] = a.(vk.ImageView)
	}

	framebufferCreateInfo := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      pass.(vk.RenderPass),
		AttachmentCount: uint32(len(views)),
		PAttachments:    views,
		Width:           extent.Width,
		Height:          extent.Height,
		Layers:          1,
	}

	var framebuffer vk.Framebuffer
	if res := vk.CreateFramebuffer(vc.logical(), &framebufferCreateInfo, vc.Allocator, &framebuffer); res != vk.Success {
		return nil, resultError("vkCreateFramebuffer", res)
	}
	return framebuffer, nil
}

func (vc *VulkanContext) DestroyFramebuffer(framebuffer metadata.Framebuffer) {
	vk.DestroyFramebuffer(vc.logical(), framebuffer.(vk.Framebuffer), vc.Allocator)
}
