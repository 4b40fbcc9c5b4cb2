package swapchain

import (
	"fmt"

	"github.com/Git-RoySun/Engine2/engine/renderer/metadata"
)

// Attachment is a client-owned image with its backing memory and view.
type Attachment struct {
	Image  metadata.Image
	Memory metadata.DeviceMemory
	View   metadata.ImageView

	Format  metadata.Format
	Samples metadata.SampleCountFlags
	Extent  metadata.Extent2D
}

// attachmentSet holds one depth and one multisampled color attachment per
// presentable image.
type attachmentSet struct {
	depth []*Attachment
	color []*Attachment
}

// findMemoryType returns the first memory type allowed by typeBits whose
// property flags include props.
func findMemoryType(types []metadata.MemoryType, typeBits uint32, props metadata.MemoryPropertyFlags) (uint32, error) {
	for i, t := range types {
		if i >= 32 {
			break
		}
		// Check each memory type to see if its bit is set to 1.
		if typeBits&(1<<uint(i)) != 0 && t.PropertyFlags&props == props {
			return uint32(i), nil
		}
	}
	return 0, ErrNoMemoryType
}

func createAttachment(dev AttachmentDevice, extent metadata.Extent2D, format metadata.Format, samples metadata.SampleCountFlags, usage metadata.ImageUsageFlags, aspect metadata.ImageAspectFlags) (*Attachment, error) {
	a := &Attachment{
		Format:  format,
		Samples: samples,
		Extent:  extent,
	}

	image, reqs, err := dev.CreateImage(&metadata.ImageInfo{
		Width:   extent.Width,
		Height:  extent.Height,
		Format:  format,
		Usage:   usage,
		Samples: samples,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s attachment image: %w", format, err)
	}
	a.Image = image

	memoryType, err := findMemoryType(dev.MemoryTypes(), reqs.MemoryTypeBits, metadata.MemoryPropertyDeviceLocal)
	if err != nil {
		a.destroy(dev)
		return nil, err
	}
	memory, err := dev.AllocateMemory(reqs.Size, memoryType)
	if err != nil {
		a.destroy(dev)
		return nil, fmt.Errorf("failed to allocate %d bytes for %s attachment: %w", reqs.Size, format, err)
	}
	a.Memory = memory

	if err := dev.BindImageMemory(a.Image, a.Memory); err != nil {
		a.destroy(dev)
		return nil, fmt.Errorf("failed to bind %s attachment memory: %w", format, err)
	}

	view, err := dev.CreateImageView(a.Image, format, aspect)
	if err != nil {
		a.destroy(dev)
		return nil, fmt.Errorf("failed to create %s attachment view: %w", format, err)
	}
	a.View = view
	return a, nil
}

// destroy releases the view, the image and the memory, skipping whatever
// was never created.
func (a *Attachment) destroy(dev AttachmentDevice) {
	if a.View != nil {
		dev.DestroyImageView(a.View)
		a.View = nil
	}
	if a.Image != nil {
		dev.DestroyImage(a.Image)
		a.Image = nil
	}
	if a.Memory != nil {
		dev.FreeMemory(a.Memory)
		a.Memory = nil
	}
}

// buildAttachments allocates count depth and count multisampled color
// attachments. On failure everything created so far is released.
func buildAttachments(dev AttachmentDevice, extent metadata.Extent2D, samples metadata.SampleCountFlags, colorFormat, depthFormat metadata.Format, count int) (*attachmentSet, error) {
	set := &attachmentSet{
		depth: make([]*Attachment, 0, count),
		color: make([]*Attachment, 0, count),
	}

	depthAspect := metadata.ImageAspectDepth
	if depthFormat.HasStencil() {
		depthAspect |= metadata.ImageAspectStencil
	}

	for i := 0; i < count; i++ {
		color, err := createAttachment(dev, extent, colorFormat, samples,
			metadata.ImageUsageTransientAttachment|metadata.ImageUsageColorAttachment,
			metadata.ImageAspectColor)
		if err != nil {
			set.destroy(dev)
			return nil, err
		}
		set.color = append(set.color, color)

		depth, err := createAttachment(dev, extent, depthFormat, samples,
			metadata.ImageUsageDepthStencilAttachment,
			depthAspect)
		if err != nil {
			set.destroy(dev)
			return nil, err
		}
		set.depth = append(set.depth, depth)
	}
	return set, nil
}

func (s *attachmentSet) destroy(dev AttachmentDevice) {
	for _, a := range s.depth {
		a.destroy(dev)
	}
	for _, a := range s.color {
		a.destroy(dev)
	}
	s.depth = nil
	s.color = nil
}
