package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/Git-RoySun/Engine2/engine/renderer/metadata"
)

// CreateImage creates a 2D, single-mip, optimally tiled image without memory.
func (vc *VulkanContext) CreateImage(info *metadata.ImageInfo) (metadata.Image, metadata.MemoryRequirements, error) {
	imageCreateInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Format:    vk.Format(info.Format),
		Extent: vk.Extent3D{
			Width:  info.Width,
			Height: info.Height,
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       vk.SampleCountFlagBits(info.Samples),
		Tiling:        vk.ImageTilingOptimal,
		Usage:         vk.ImageUsageFlags(info.Usage),
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}

	var image vk.Image
	if res := vk.CreateImage(vc.logical(), &imageCreateInfo, vc.Allocator, &image); res != vk.Success {
		return nil, metadata.MemoryRequirements{}, resultError("vkCreateImage", res)
	}

	var requirements vk.MemoryRequirements
	vk.GetImageMemoryRequirements(vc.logical(), image, &requirements)
	requirements.Deref()

	return image, metadata.MemoryRequirements{
		Size:           uint64(requirements.Size),
		MemoryTypeBits: requirements.MemoryTypeBits,
	}, nil
}

func (vc *VulkanContext) DestroyImage(image metadata.Image) {
	vk.DestroyImage(vc.logical(), image.(vk.Image), vc.Allocator)
}

func (vc *VulkanContext) AllocateMemory(size uint64, memoryTypeIndex uint32) (metadata.DeviceMemory, error) {
	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  vk.DeviceSize(size),
		MemoryTypeIndex: memoryTypeIndex,
	}
	var memory vk.DeviceMemory
	if res := vk.AllocateMemory(vc.logical(), &allocateInfo, vc.Allocator, &memory); res != vk.Success {
		return nil, resultError("vkAllocateMemory", res)
	}
	return memory, nil
}

func (vc *VulkanContext) FreeMemory(memory metadata.DeviceMemory) {
	vk.FreeMemory(vc.logical(), memory.(vk.DeviceMemory), vc.Allocator)
}

func (vc *VulkanContext) BindImageMemory(image metadata.Image, memory metadata.DeviceMemory) error {
	if res := vk.BindImageMemory(vc.logical(), image.(vk.Image), memory.(vk.DeviceMemory), 0); res != vk.Success {
		return resultError("vkBindImageMemory", res)
	}
	return nil
}

func (vc *VulkanContext) CreateImageView(image metadata.Image, format metadata.Format, aspect metadata.ImageAspectFlags) (metadata.ImageView, error) {
	viewCreateInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image.(vk.Image),
		ViewType: vk.ImageViewType2d,
		Format:   vk.Format(format),
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     vk.ImageAspectFlags(aspect),
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}
	var view vk.ImageView
	if res := vk.CreateImageView(vc.logical(), &viewCreateInfo, vc.Allocator, &view); res != vk.Success {
		return nil, resultError("vkCreateImageView", res)
	}
	return view, nil
}

func (vc *VulkanContext) DestroyImageView(view metadata.ImageView) {
	vk.DestroyImageView(vc.logical(), view.(vk.ImageView), vc.Allocator)
}
