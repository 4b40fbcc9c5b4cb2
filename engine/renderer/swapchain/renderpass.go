package swapchain

import "github.com/Git-RoySun/Engine2/engine/renderer/metadata"

// Attachment slots of the render target, also the framebuffer binding order.
const (
	colorAttachmentIndex   uint32 = 0
	depthAttachmentIndex   uint32 = 1
	resolveAttachmentIndex uint32 = 2
)

// newRenderTarget describes a single subpass that renders into a
// multisampled color attachment with depth testing and resolves into the
// presentable image.
func newRenderTarget(colorFormat, depthFormat metadata.Format, samples metadata.SampleCountFlags) *metadata.RenderTargetDescriptor {
	attachments := make([]metadata.AttachmentDescription, 3)

	// Color attachment
	attachments[colorAttachmentIndex] = metadata.AttachmentDescription{
		Format:         colorFormat,
		Samples:        samples,
		LoadOp:         metadata.AttachmentLoadOpClear,
		StoreOp:        metadata.AttachmentStoreOpStore,
		StencilLoadOp:  metadata.AttachmentLoadOpDontCare,
		StencilStoreOp: metadata.AttachmentStoreOpDontCare,
		InitialLayout:  metadata.ImageLayoutUndefined,
		FinalLayout:    metadata.ImageLayoutColorAttachmentOptimal,
	}

	// Depth attachment
	attachments[depthAttachmentIndex] = metadata.AttachmentDescription{
		Format:         depthFormat,
		Samples:        samples,
		LoadOp:         metadata.AttachmentLoadOpClear,
		StoreOp:        metadata.AttachmentStoreOpDontCare,
		StencilLoadOp:  metadata.AttachmentLoadOpDontCare,
		StencilStoreOp: metadata.AttachmentStoreOpDontCare,
		InitialLayout:  metadata.ImageLayoutUndefined,
		FinalLayout:    metadata.ImageLayoutDepthStencilAttachmentOptimal,
	}

	// Resolve attachment, the presentable image.
	attachments[resolveAttachmentIndex] = metadata.AttachmentDescription{
		Format:         colorFormat,
		Samples:        metadata.SampleCount1,
		LoadOp:         metadata.AttachmentLoadOpDontCare,
		StoreOp:        metadata.AttachmentStoreOpStore,
		StencilLoadOp:  metadata.AttachmentLoadOpDontCare,
		StencilStoreOp: metadata.AttachmentStoreOpDontCare,
		InitialLayout:  metadata.ImageLayoutUndefined,
		FinalLayout:    metadata.ImageLayoutPresentSrc,
	}

	stages := metadata.PipelineStageColorAttachmentOutput | metadata.PipelineStageEarlyFragmentTests
	return &metadata.RenderTargetDescriptor{
		Attachments: attachments,
		Subpass: metadata.SubpassDescription{
			Color:   metadata.AttachmentReference{Attachment: colorAttachmentIndex, Layout: metadata.ImageLayoutColorAttachmentOptimal},
			Depth:   metadata.AttachmentReference{Attachment: depthAttachmentIndex, Layout: metadata.ImageLayoutDepthStencilAttachmentOptimal},
			Resolve: metadata.AttachmentReference{Attachment: resolveAttachmentIndex, Layout: metadata.ImageLayoutColorAttachmentOptimal},
		},
		Dependency: metadata.SubpassDependency{
			SrcSubpass:    metadata.SubpassExternal,
			DstSubpass:    0,
			SrcStageMask:  stages,
			DstStageMask:  stages,
			SrcAccessMask: 0,
			DstAccessMask: metadata.AccessColorAttachmentWrite | metadata.AccessDepthStencilAttachmentWrite,
		},
	}
}
