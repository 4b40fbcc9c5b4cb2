package swapchain

import (
	"fmt"

	"github.com/Git-RoySun/Engine2/engine/renderer/metadata"
)

// buildFramebuffers binds, for every presentable image, the multisampled
// color view, the depth view and the presentable view in render target
// order. Framebuffers created before a failure are destroyed.
func buildFramebuffers(dev TargetDevice, pass metadata.RenderPass, target *metadata.RenderTargetDescriptor, extent metadata.Extent2D, views []metadata.ImageView, attachments *attachmentSet) ([]metadata.Framebuffer, error) {
	if len(attachments.color) != len(views) || len(attachments.depth) != len(views) {
		return nil, fmt.Errorf("%w: %d presentable views, %d color and %d depth attachments",
			ErrAttachmentMismatch, len(views), len(attachments.color), len(attachments.depth))
	}
	if target.AttachmentCount() != 3 {
		return nil, fmt.Errorf("%w: render target declares %d attachments, want 3", ErrAttachmentMismatch, target.AttachmentCount())
	}

	framebuffers := make([]metadata.Framebuffer, 0, len(views))
	fail := func(err error) ([]metadata.Framebuffer, error) {
		destroyFramebuffers(dev, framebuffers)
		return nil, err
	}

	for i, view := range views {
		color, depth := attachments.color[i], attachments.depth[i]
		if err := checkAttachment(target, colorAttachmentIndex, color, extent); err != nil {
			return fail(err)
		}
		if err := checkAttachment(target, depthAttachmentIndex, depth, extent); err != nil {
			return fail(err)
		}

		fb, err := dev.CreateFramebuffer(pass, []metadata.ImageView{color.View, depth.View, view}, extent)
		if err != nil {
			return fail(fmt.Errorf("failed to create framebuffer %d: %w", i, err))
		}
		framebuffers = append(framebuffers, fb)
	}
	return framebuffers, nil
}

func checkAttachment(target *metadata.RenderTargetDescriptor, slot uint32, a *Attachment, extent metadata.Extent2D) error {
	desc := target.Attachments[slot]
	if a.Format != desc.Format || a.Samples != desc.Samples {
		return fmt.Errorf("%w: slot %d is %s x%d, render target wants %s x%d",
			ErrAttachmentMismatch, slot, a.Format, a.Samples, desc.Format, desc.Samples)
	}
	if a.Extent != extent {
		return fmt.Errorf("%w: slot %d is %s, framebuffer is %s", ErrAttachmentMismatch, slot, a.Extent, extent)
	}
	return nil
}

func destroyFramebuffers(dev TargetDevice, framebuffers []metadata.Framebuffer) {
	for _, fb := range framebuffers {
		dev.DestroyFramebuffer(fb)
	}
}
