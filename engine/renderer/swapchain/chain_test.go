package swapchain

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/Git-RoySun/Engine2/engine/core"
	"github.com/Git-RoySun/Engine2/engine/renderer/metadata"
)

type fakeSurface struct{}

func newTestChain(c *qt.C, dev *fakeDevice, previous *Chain) *Chain {
	chain, err := NewChain(dev, fakeSurface{}, metadata.Extent2D{Width: 1024, Height: 768}, previous, DefaultOptions())
	c.Assert(err, qt.IsNil)
	return chain
}

func TestNewChain(t *testing.T) {
	c := qt.New(t)

	dev := newFakeDevice()
	chain := newTestChain(c, dev, nil)

	c.Assert(chain.Extent(), qt.Equals, metadata.Extent2D{Width: 800, Height: 600})
	c.Assert(chain.ColorFormat(), qt.Equals, metadata.FormatB8G8R8A8Srgb)
	c.Assert(chain.DepthFormat(), qt.Equals, metadata.FormatD32Sfloat)
	c.Assert(chain.PresentMode(), qt.Equals, metadata.PresentModeMailbox)
	c.Assert(chain.Samples(), qt.Equals, metadata.SampleCount4)
	c.Assert(chain.ImageCount(), qt.Equals, 3)
	c.Assert(chain.FramesInFlight(), qt.Equals, 2)
	c.Assert(chain.State(), qt.Equals, StateIdle)
	c.Assert(chain.CurrentFrame(), qt.Equals, uint32(0))
	c.Assert(chain.Generation(), qt.Equals, uint64(0))

	c.Assert(dev.swapchainInfos, qt.HasLen, 1)
	info := dev.swapchainInfos[0]
	c.Assert(info.MinImageCount, qt.Equals, uint32(3))
	c.Assert(info.OldSwapchain, qt.IsNil)
	c.Assert(info.PreTransform, qt.Equals, metadata.SurfaceTransformIdentity)

	target := chain.RenderTarget()
	c.Assert(target.AttachmentCount(), qt.Equals, 3)
	c.Assert(target.Attachments[colorAttachmentIndex].Samples, qt.Equals, metadata.SampleCount4)
	c.Assert(target.Attachments[depthAttachmentIndex].Format, qt.Equals, metadata.FormatD32Sfloat)
	c.Assert(target.Attachments[resolveAttachmentIndex].FinalLayout, qt.Equals, metadata.ImageLayoutPresentSrc)
	c.Assert(target.Dependency.SrcSubpass, qt.Equals, metadata.SubpassExternal)
}

func TestChainCountsAgree(t *testing.T) {
	for _, images := range []int{2, 3, 5} {
		c := qt.New(t)

		dev := newFakeDevice()
		dev.platformImages = images
		chain := newTestChain(c, dev, nil)

		c.Assert(chain.ImageCount(), qt.Equals, images)
		c.Assert(chain.framebuffers, qt.HasLen, images)
		c.Assert(chain.attachments.depth, qt.HasLen, images)
		c.Assert(chain.attachments.color, qt.HasLen, images)
		c.Assert(chain.imagesInFlight, qt.HasLen, images)
	}
}

func TestChainFramesInFlightNeverExceedImages(t *testing.T) {
	c := qt.New(t)

	dev := newFakeDevice()
	dev.platformImages = 2
	opts := DefaultOptions()
	opts.FramesInFlight = 4
	chain, err := NewChain(dev, fakeSurface{}, metadata.Extent2D{Width: 800, Height: 600}, nil, opts)
	c.Assert(err, qt.IsNil)
	c.Assert(chain.FramesInFlight(), qt.Equals, 2)
}

func TestChainExtentScenarios(t *testing.T) {
	c := qt.New(t)

	dev := newFakeDevice()
	chain := newTestChain(c, dev, nil)
	c.Assert(chain.Extent(), qt.Equals, metadata.Extent2D{Width: 800, Height: 600})

	dev = newFakeDevice()
	dev.support.Capabilities.CurrentExtent = metadata.Extent2D{Width: metadata.UndefinedExtent, Height: metadata.UndefinedExtent}
	chain, err := NewChain(dev, fakeSurface{}, metadata.Extent2D{Width: 5000, Height: 300}, nil, DefaultOptions())
	c.Assert(err, qt.IsNil)
	c.Assert(chain.Extent(), qt.Equals, metadata.Extent2D{Width: 4096, Height: 300})
	c.Assert(dev.swapchainInfos[0].Extent, qt.Equals, metadata.Extent2D{Width: 4096, Height: 300})
}

func TestChainPresentModeScenarios(t *testing.T) {
	c := qt.New(t)

	dev := newFakeDevice()
	dev.support.PresentModes = []metadata.PresentMode{metadata.PresentModeFifo}
	c.Assert(newTestChain(c, dev, nil).PresentMode(), qt.Equals, metadata.PresentModeFifo)

	dev = newFakeDevice()
	dev.support.PresentModes = []metadata.PresentMode{metadata.PresentModeFifo, metadata.PresentModeMailbox}
	c.Assert(newTestChain(c, dev, nil).PresentMode(), qt.Equals, metadata.PresentModeMailbox)
}

func TestChainZeroExtent(t *testing.T) {
	c := qt.New(t)

	dev := newFakeDevice()
	dev.support.Capabilities.CurrentExtent = metadata.Extent2D{}
	_, err := NewChain(dev, fakeSurface{}, metadata.Extent2D{Width: 800, Height: 600}, nil, DefaultOptions())
	c.Assert(err, qt.ErrorIs, core.ErrSwapchainBooting)
	c.Assert(dev.outstanding(), qt.HasLen, 0)
}

func TestChainInvalidOptions(t *testing.T) {
	c := qt.New(t)

	opts := DefaultOptions()
	opts.FramesInFlight = 0
	_, err := NewChain(newFakeDevice(), fakeSurface{}, metadata.Extent2D{Width: 800, Height: 600}, nil, opts)
	c.Assert(err, qt.ErrorIs, ErrInvalidOptions)

	opts = DefaultOptions()
	opts.MaxSamples = metadata.SampleCount1
	_, err = NewChain(newFakeDevice(), fakeSurface{}, metadata.Extent2D{Width: 800, Height: 600}, nil, opts)
	c.Assert(err, qt.ErrorIs, ErrInvalidOptions)
}

func TestChainDestroyReleasesEverythingInOrder(t *testing.T) {
	c := qt.New(t)

	dev := newFakeDevice()
	chain := newTestChain(c, dev, nil)
	c.Assert(dev.outstanding(), qt.Not(qt.HasLen), 0)

	c.Assert(chain.Destroy(), qt.IsNil)
	c.Assert(dev.outstanding(), qt.HasLen, 0)
	c.Assert(dev.doubleFrees, qt.HasLen, 0)

	last := phaseSync
	for _, o := range dev.destroyed {
		c.Assert(o.phase() >= last, qt.IsTrue, qt.Commentf("%s released after phase %d", o, last))
		last = o.phase()
	}
	c.Assert(last, qt.Equals, phaseSwapchain)

	// A second destroy is a no-op.
	released := len(dev.destroyed)
	c.Assert(chain.Destroy(), qt.IsNil)
	c.Assert(dev.destroyed, qt.HasLen, released)
	c.Assert(dev.doubleFrees, qt.HasLen, 0)

	_, _, err := chain.AcquireNext()
	c.Assert(err, qt.ErrorIs, ErrChainDestroyed)
}

func TestChainDestroyWaitsForFramesInFlight(t *testing.T) {
	c := qt.New(t)

	dev := newFakeDevice()
	dev.autoComplete = false
	chain := newTestChain(c, dev, nil)

	index, _, err := chain.AcquireNext()
	c.Assert(err, qt.IsNil)
	_, err = chain.SubmitAndPresent("cmd", index)
	c.Assert(err, qt.IsNil)

	done := make(chan error)
	go func() {
		done <- chain.Destroy()
	}()
	assertBlocked(c, done)

	dev.completeAll()
	c.Assert(<-done, qt.IsNil)
	c.Assert(dev.outstanding(), qt.HasLen, 0)
}

func TestChainConstructionFailureLeaksNothing(t *testing.T) {
	ops := []string{
		"QuerySurfaceSupport", "CreateSwapchain", "CreateImageView", "CreateRenderPass",
		"CreateImage", "AllocateMemory", "BindImageMemory", "CreateFramebuffer",
		"CreateSemaphore", "CreateFence",
	}
	for _, op := range ops {
		t.Run(op, func(t *testing.T) {
			c := qt.New(t)

			dev := newFakeDevice()
			dev.failAt[op] = 2
			if op == "QuerySurfaceSupport" || op == "CreateSwapchain" || op == "CreateRenderPass" {
				dev.failAt[op] = 1
			}
			chain, err := NewChain(dev, fakeSurface{}, metadata.Extent2D{Width: 800, Height: 600}, nil, DefaultOptions())
			c.Assert(err, qt.ErrorMatches, ".*injected "+op+" failure")
			c.Assert(chain, qt.IsNil)
			c.Assert(dev.outstanding(), qt.HasLen, 0)
			c.Assert(dev.doubleFrees, qt.HasLen, 0)
		})
	}
}

func TestChainFramebufferMismatch(t *testing.T) {
	c := qt.New(t)

	dev := newFakeDevice()
	chain := newTestChain(c, dev, nil)
	defer chain.Destroy()

	_, err := buildFramebuffers(dev, chain.renderPass, chain.target, chain.extent, chain.views[:2], chain.attachments)
	c.Assert(err, qt.ErrorIs, ErrAttachmentMismatch)

	small := metadata.Extent2D{Width: 16, Height: 16}
	_, err = buildFramebuffers(dev, chain.renderPass, chain.target, small, chain.views, chain.attachments)
	c.Assert(err, qt.ErrorIs, ErrAttachmentMismatch)

	wrongDepth := newRenderTarget(chain.ColorFormat(), metadata.FormatD24UnormS8Uint, chain.Samples())
	_, err = buildFramebuffers(dev, chain.renderPass, wrongDepth, chain.extent, chain.views, chain.attachments)
	c.Assert(err, qt.ErrorIs, ErrAttachmentMismatch)
}

func TestChainRecreateFromPrevious(t *testing.T) {
	c := qt.New(t)

	dev := newFakeDevice()
	old := newTestChain(c, dev, nil)

	// Move the old chain off frame 0.
	index, _, err := old.AcquireNext()
	c.Assert(err, qt.IsNil)
	_, err = old.SubmitAndPresent("cmd", index)
	c.Assert(err, qt.IsNil)
	c.Assert(old.CurrentFrame(), qt.Equals, uint32(1))

	// The platform now hands out more images than before.
	dev.platformImages = 5
	dev.support.Capabilities.CurrentExtent = metadata.Extent2D{Width: 1920, Height: 1080}
	next := newTestChain(c, dev, old)

	c.Assert(next.previous, qt.IsNil)
	c.Assert(next.Generation(), qt.Equals, uint64(1))
	c.Assert(next.ID(), qt.Not(qt.Equals), old.ID())
	c.Assert(next.CurrentFrame(), qt.Equals, uint32(0))
	c.Assert(next.State(), qt.Equals, StateIdle)
	c.Assert(next.ImageCount(), qt.Equals, 5)
	c.Assert(old.ImageCount(), qt.Equals, 3)
	c.Assert(next.Extent(), qt.Equals, metadata.Extent2D{Width: 1920, Height: 1080})
	c.Assert(dev.swapchainInfos[1].OldSwapchain, qt.Equals, old.swapchain)

	c.Assert(old.Destroy(), qt.IsNil)
	c.Assert(next.Destroy(), qt.IsNil)
	c.Assert(dev.outstanding(), qt.HasLen, 0)

	_, err = NewChain(dev, fakeSurface{}, metadata.Extent2D{Width: 800, Height: 600}, old, DefaultOptions())
	c.Assert(err, qt.ErrorIs, ErrChainDestroyed)
}
