package metadata

// AttachmentUnused marks an absent attachment reference.
const AttachmentUnused uint32 = 0xFFFFFFFF

// SubpassExternal refers to work outside the render pass in a dependency.
const SubpassExternal uint32 = 0xFFFFFFFF

/** @brief Describes one attachment of a render target. */
type AttachmentDescription struct {
	Format         Format
	Samples        SampleCountFlags
	LoadOp         AttachmentLoadOp
	StoreOp        AttachmentStoreOp
	StencilLoadOp  AttachmentLoadOp
	StencilStoreOp AttachmentStoreOp
	InitialLayout  ImageLayout
	FinalLayout    ImageLayout
}

type AttachmentReference struct {
	Attachment uint32
	Layout     ImageLayout
}

/** @brief The single graphics subpass of a render target. */
type SubpassDescription struct {
	Color   AttachmentReference
	Depth   AttachmentReference
	Resolve AttachmentReference
}

type SubpassDependency struct {
	SrcSubpass    uint32
	DstSubpass    uint32
	SrcStageMask  PipelineStageFlags
	DstStageMask  PipelineStageFlags
	SrcAccessMask AccessFlags
	DstAccessMask AccessFlags
}

// RenderTargetDescriptor is the static attachment layout every framebuffer of
// a chain must satisfy. Attachment order is fixed: multisampled color, depth,
// single-sampled resolve (the presentable image).
type RenderTargetDescriptor struct {
	Attachments []AttachmentDescription
	Subpass     SubpassDescription
	Dependency  SubpassDependency
}

// AttachmentCount returns the number of attachments a framebuffer must bind.
func (d *RenderTargetDescriptor) AttachmentCount() int {
	return len(d.Attachments)
}
