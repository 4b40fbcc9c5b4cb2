package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/Git-RoySun/Engine2/engine/renderer/metadata"
)

func attachmentReference(ref metadata.AttachmentReference) vk.AttachmentReference {
	return vk.AttachmentReference{
		Attachment: ref.Attachment,
		Layout:     vk.ImageLayout(ref.Layout),
	}
}

// CreateRenderPass builds a single subpass render pass from desc. The
// subpass renders into a multisampled color target, tests against depth and
// resolves into the presentable image.
func (vc *VulkanContext) CreateRenderPass(desc *metadata.RenderTargetDescriptor) (metadata.RenderPass, error) {
	attachmentDescriptions := make([]vk.AttachmentDescription, len(desc.Attachments))
	for i, a := range desc.Attachments {
		attachmentDescriptions[i] = vk.AttachmentDescription{
			Format:         vk.Format(a.Format),
			Samples:        vk.SampleCountFlagBits(a.Samples),
			LoadOp:         vk.AttachmentLoadOp(a.LoadOp),
			StoreOp:        vk.AttachmentStoreOp(a.StoreOp),
			StencilLoadOp:  vk.AttachmentLoadOp(a.StencilLoadOp),
			StencilStoreOp: vk.AttachmentStoreOp(a.StencilStoreOp),
			InitialLayout:  vk.ImageLayout(a.InitialLayout),
			FinalLayout:    vk.ImageLayout(a.FinalLayout),
		}
	}

	depthReference := attachmentReference(desc.Subpass.Depth)
	subpass := vk.SubpassDescription{
		PipelineBindPoint:       vk.PipelineBindPointGraphics,
		ColorAttachmentCount:    1,
		PColorAttachments:       []vk.AttachmentReference{attachmentReference(desc.Subpass.Color)},
		PDepthStencilAttachment: &depthReference,
		PResolveAttachments:     []vk.AttachmentReference{attachmentReference(desc.Subpass.Resolve)},
	}

	dependency := vk.SubpassDependency{
		SrcSubpass:    desc.Dependency.SrcSubpass,
		DstSubpass:    desc.Dependency.DstSubpass,
		SrcStageMask:  vk.PipelineStageFlags(desc.Dependency.SrcStageMask),
		DstStageMask:  vk.PipelineStageFlags(desc.Dependency.DstStageMask),
		SrcAccessMask: vk.AccessFlags(desc.Dependency.SrcAccessMask),
		DstAccessMask: vk.AccessFlags(desc.Dependency.DstAccessMask),
	}

	renderpassCreateInfo := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachmentDescriptions)),
		PAttachments:    attachmentDescriptions,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}

	var pass vk.RenderPass
	if res := vk.CreateRenderPass(vc.logical(), &renderpassCreateInfo, vc.Allocator, &pass); res != vk.Success {
		return nil, resultError("vkCreateRenderPass", res)
	}
	return pass, nil
}

func (vc *VulkanContext) DestroyRenderPass(pass metadata.RenderPass) {
	vk.DestroyRenderPass(vc.logical(), pass.(vk.RenderPass), vc.Allocator)
}

// ClearPass records a render pass that only clears its attachments. It keeps
// the presentation loop busy until real draw passes are attached.
type ClearPass struct {
	R, G, B, A float32
	Depth      float32
	Stencil    uint32
}

func (cp *ClearPass) Begin(commandBuffer *VulkanCommandBuffer, pass metadata.RenderPass, framebuffer metadata.Framebuffer, extent metadata.Extent2D) {
	clearValues := make([]vk.ClearValue, 2)
	clearValues[0].SetColor([]float32{cp.R, cp.G, cp.B, cp.A})
	clearValues[1].SetDepthStencil(cp.Depth, cp.Stencil)

	beginInfo := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  pass.(vk.RenderPass),
		Framebuffer: framebuffer.(vk.Framebuffer),
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: vk.Extent2D{Width: extent.Width, Height: extent.Height},
		},
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}

	vk.CmdBeginRenderPass(commandBuffer.Handle, &beginInfo, vk.SubpassContentsInline)
	commandBuffer.State = COMMAND_BUFFER_STATE_IN_RENDER_PASS
}

func (cp *ClearPass) End(commandBuffer *VulkanCommandBuffer) {
	vk.CmdEndRenderPass(commandBuffer.Handle)
	commandBuffer.State = COMMAND_BUFFER_STATE_RECORDING
}
