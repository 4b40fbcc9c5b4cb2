package swapchain

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Git-RoySun/Engine2/engine/core"
	"github.com/Git-RoySun/Engine2/engine/renderer/metadata"
)

type Options struct {
	// Number of frames the CPU may submit before waiting on the GPU.
	FramesInFlight uint32
	// Upper bound for the attachment sample count.
	MaxSamples    metadata.SampleCountFlags
	PreferMailbox bool
	// Bound for every fence wait. Zero or less waits forever.
	FenceTimeout time.Duration
}

func DefaultOptions() Options {
	return Options{
		FramesInFlight: 2,
		MaxSamples:     metadata.SampleCount4,
		PreferMailbox:  true,
	}
}

func OptionsFromConfig(cfg core.RendererConfig) Options {
	return Options{
		FramesInFlight: cfg.FramesInFlight,
		MaxSamples:     metadata.SampleCountFlags(cfg.MSAASamples),
		PreferMailbox:  cfg.PreferMailbox,
		FenceTimeout:   cfg.FenceTimeout(),
	}
}

func (o Options) Validate() error {
	if o.FramesInFlight == 0 {
		return fmt.Errorf("%w: at least one frame in flight is required", ErrInvalidOptions)
	}
	if o.MaxSamples < metadata.SampleCount2 {
		return fmt.Errorf("%w: max samples must be at least 2, got %d", ErrInvalidOptions, o.MaxSamples)
	}
	return nil
}

// Chain is one generation of presentable images together with their
// attachments, framebuffers and frame synchronization. It is owned by a
// single frame-producing goroutine and does no locking.
type Chain struct {
	id         uuid.UUID
	generation uint64

	dev     Device
	surface metadata.Surface
	opts    Options

	// Only set while the chain is being built from the one it replaces.
	previous *Chain

	swapchain   metadata.Swapchain
	format      metadata.SurfaceFormat
	presentMode metadata.PresentMode
	extent      metadata.Extent2D
	images      []metadata.Image
	views       []metadata.ImageView

	samples      metadata.SampleCountFlags
	depthFormat  metadata.Format
	target       *metadata.RenderTargetDescriptor
	renderPass   metadata.RenderPass
	attachments  *attachmentSet
	framebuffers []metadata.Framebuffer

	slots []*frameSlot
	// Fence of the frame currently using each presentable image, or nil.
	imagesInFlight []*frameFence

	currentFrame uint32
	imageIndex   uint32
	suboptimal   bool
	state        FrameState
	destroyed    bool
}

// NewChain builds a chain for surface. When previous is not nil the new
// swapchain takes over its presentation resources and previous may be
// destroyed once NewChain returns. On failure nothing is left allocated.
func NewChain(dev Device, surface metadata.Surface, desired metadata.Extent2D, previous *Chain, opts Options) (*Chain, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if previous != nil && previous.destroyed {
		return nil, fmt.Errorf("cannot build from previous chain: %w", ErrChainDestroyed)
	}

	c := &Chain{
		id:       uuid.New(),
		dev:      dev,
		surface:  surface,
		opts:     opts,
		previous: previous,
		state:    StateIdle,
	}
	if previous != nil {
		c.generation = previous.generation + 1
	}
	defer func() {
		c.previous = nil
	}()

	if err := c.create(desired); err != nil {
		c.release()
		core.LogError("failed to create swapchain: %s", err)
		return nil, err
	}

	core.LogInfo("Swapchain %s (generation %d) created: %s %s, %d images, %d frames in flight, %dx MSAA.",
		c.id, c.generation, c.extent, c.format.Format, len(c.images), len(c.slots), c.samples)
	return c, nil
}

func (c *Chain) create(desired metadata.Extent2D) error {
	support, err := c.dev.QuerySurfaceSupport(c.surface)
	if err != nil {
		return fmt.Errorf("failed to query surface support: %w", err)
	}
	caps := &support.Capabilities

	if c.format, err = chooseSurfaceFormat(support.Formats); err != nil {
		return err
	}
	c.presentMode = choosePresentMode(support.PresentModes, c.opts.PreferMailbox)
	core.LogInfo("Present mode: %s", c.presentMode)

	c.extent = chooseExtent(caps, desired)
	if c.extent.IsZero() {
		return fmt.Errorf("surface extent is %s: %w", c.extent, core.ErrSwapchainBooting)
	}

	info := &metadata.SwapchainInfo{
		Surface:       c.surface,
		MinImageCount: chooseImageCount(caps),
		Format:        c.format,
		Extent:        c.extent,
		PresentMode:   c.presentMode,
		QueueFamilies: c.dev.QueueFamilies(),
		PreTransform:  caps.CurrentTransform,
	}
	if c.previous != nil {
		info.OldSwapchain = c.previous.swapchain
	}
	if c.swapchain, err = c.dev.CreateSwapchain(info); err != nil {
		return fmt.Errorf("failed to create swapchain: %w", err)
	}

	// The platform may return more images than requested; its count wins.
	if c.images, err = c.dev.SwapchainImages(c.swapchain); err != nil {
		return fmt.Errorf("failed to get swapchain images: %w", err)
	}
	if len(c.images) == 0 {
		return fmt.Errorf("swapchain returned no images")
	}

	// Views
	c.views = make([]metadata.ImageView, 0, len(c.images))
	for i, image := range c.images {
		view, err := c.dev.CreateImageView(image, c.format.Format, metadata.ImageAspectColor)
		if err != nil {
			return fmt.Errorf("failed to create view for swapchain image %d: %w", i, err)
		}
		c.views = append(c.views, view)
	}

	if c.samples, err = chooseSampleCount(c.dev, c.opts.MaxSamples); err != nil {
		return err
	}
	if c.depthFormat, err = findDepthFormat(c.dev); err != nil {
		return err
	}

	c.target = newRenderTarget(c.format.Format, c.depthFormat, c.samples)
	if c.renderPass, err = c.dev.CreateRenderPass(c.target); err != nil {
		return fmt.Errorf("failed to create render pass: %w", err)
	}

	if c.attachments, err = buildAttachments(c.dev, c.extent, c.samples, c.format.Format, c.depthFormat, len(c.images)); err != nil {
		return err
	}
	if c.framebuffers, err = buildFramebuffers(c.dev, c.renderPass, c.target, c.extent, c.views, c.attachments); err != nil {
		return err
	}

	frames := c.opts.FramesInFlight
	if frames > uint32(len(c.images)) {
		core.LogWarn("%d frames in flight requested but the swapchain has %d images", frames, len(c.images))
		frames = uint32(len(c.images))
	}
	if c.slots, err = createFrameSlots(c.dev, frames); err != nil {
		return err
	}
	c.imagesInFlight = make([]*frameFence, len(c.images))
	return nil
}

// release destroys every resource in reverse dependency order. It tolerates
// a partially built chain.
func (c *Chain) release() {
	destroyFrameSlots(c.dev, c.slots)
	c.slots = nil
	c.imagesInFlight = nil

	destroyFramebuffers(c.dev, c.framebuffers)
	c.framebuffers = nil

	if c.renderPass != nil {
		c.dev.DestroyRenderPass(c.renderPass)
		c.renderPass = nil
	}

	if c.attachments != nil {
		c.attachments.destroy(c.dev)
		c.attachments = nil
	}

	// Only destroy the views, not the images, since those are owned by the
	// swapchain and are thus destroyed when it is.
	for _, view := range c.views {
		c.dev.DestroyImageView(view)
	}
	c.views = nil
	c.images = nil

	if c.swapchain != nil {
		c.dev.DestroySwapchain(c.swapchain)
		c.swapchain = nil
	}
}

// Destroy waits for the chain's frames in flight and releases everything it
// allocated. Calling it again is a no-op.
func (c *Chain) Destroy() error {
	if c.destroyed {
		return nil
	}
	c.destroyed = true

	var err error
	for i, slot := range c.slots {
		if werr := slot.fence.wait(c.dev, c.opts.FenceTimeout); werr != nil && err == nil {
			err = fmt.Errorf("failed to wait for frame %d: %w", i, werr)
		}
	}
	c.release()
	core.LogInfo("Swapchain %s (generation %d) destroyed.", c.id, c.generation)
	return err
}

func (c *Chain) ID() uuid.UUID {
	return c.id
}

// Generation is 0 for a chain built from scratch and one more than its
// previous chain otherwise.
func (c *Chain) Generation() uint64 {
	return c.generation
}

func (c *Chain) RenderTarget() *metadata.RenderTargetDescriptor {
	return c.target
}

func (c *Chain) RenderPass() metadata.RenderPass {
	return c.renderPass
}

func (c *Chain) Framebuffer(imageIndex uint32) metadata.Framebuffer {
	return c.framebuffers[imageIndex]
}

func (c *Chain) Extent() metadata.Extent2D {
	return c.extent
}

func (c *Chain) ColorFormat() metadata.Format {
	return c.format.Format
}

func (c *Chain) DepthFormat() metadata.Format {
	return c.depthFormat
}

func (c *Chain) PresentMode() metadata.PresentMode {
	return c.presentMode
}

func (c *Chain) Samples() metadata.SampleCountFlags {
	return c.samples
}

// ImageCount is the number of presentable images the platform returned.
func (c *Chain) ImageCount() int {
	return len(c.images)
}

func (c *Chain) FramesInFlight() int {
	return len(c.slots)
}

func (c *Chain) CurrentFrame() uint32 {
	return c.currentFrame
}

func (c *Chain) State() FrameState {
	return c.state
}
