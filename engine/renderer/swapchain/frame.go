package swapchain

import (
	"fmt"
	"time"

	"github.com/Git-RoySun/Engine2/engine/renderer/metadata"
)

// frameFence tracks whether its fence guards GPU work that has not been
// observed complete yet.
type frameFence struct {
	handle   metadata.Fence
	inFlight bool
}

func (f *frameFence) wait(dev SyncDevice, timeout time.Duration) error {
	if !f.inFlight {
		// If already signaled, do not wait.
		return nil
	}
	if err := dev.WaitForFence(f.handle, timeout); err != nil {
		return err
	}
	f.inFlight = false
	return nil
}

// frameSlot is one frame in flight.
type frameSlot struct {
	fence          *frameFence
	imageAcquired  metadata.Semaphore
	renderFinished metadata.Semaphore
}

func createFrameSlots(dev SyncDevice, count uint32) ([]*frameSlot, error) {
	slots := make([]*frameSlot, 0, count)
	for i := uint32(0); i < count; i++ {
		slot := &frameSlot{}
		slots = append(slots, slot)

		var err error
		if slot.imageAcquired, err = dev.CreateSemaphore(); err != nil {
			destroyFrameSlots(dev, slots)
			return nil, fmt.Errorf("failed to create image-acquired semaphore %d: %w", i, err)
		}
		if slot.renderFinished, err = dev.CreateSemaphore(); err != nil {
			destroyFrameSlots(dev, slots)
			return nil, fmt.Errorf("failed to create render-finished semaphore %d: %w", i, err)
		}
		// Create the fence in a signaled state, indicating that the first
		// frame has already been "rendered". This prevents the first acquire
		// from waiting indefinitely for a frame that was never submitted.
		handle, err := dev.CreateFence(true)
		if err != nil {
			destroyFrameSlots(dev, slots)
			return nil, fmt.Errorf("failed to create in-flight fence %d: %w", i, err)
		}
		slot.fence = &frameFence{handle: handle}
	}
	return slots, nil
}

func destroyFrameSlots(dev SyncDevice, slots []*frameSlot) {
	for _, slot := range slots {
		if slot.imageAcquired != nil {
			dev.DestroySemaphore(slot.imageAcquired)
			slot.imageAcquired = nil
		}
		if slot.renderFinished != nil {
			dev.DestroySemaphore(slot.renderFinished)
			slot.renderFinished = nil
		}
		if slot.fence != nil {
			dev.DestroyFence(slot.fence.handle)
			slot.fence = nil
		}
	}
}

// AcquireNext waits until the current frame slot is free, then acquires the
// next presentable image. An OutOfDate status moves the chain to
// StateNeedsRecreate; the frame must be dropped. Suboptimal images are
// usable for this frame.
func (c *Chain) AcquireNext() (uint32, metadata.PresentStatus, error) {
	if c.destroyed {
		return 0, metadata.StatusReady, ErrChainDestroyed
	}
	switch c.state {
	case StateIdle:
	case StateNeedsRecreate:
		return 0, metadata.StatusOutOfDate, ErrNeedsRecreate
	default:
		return 0, metadata.StatusReady, fmt.Errorf("cannot acquire an image while the chain is %s", c.state)
	}

	slot := c.slots[c.currentFrame]

	c.state = StateWaitFence
	if err := slot.fence.wait(c.dev, c.opts.FenceTimeout); err != nil {
		return 0, metadata.StatusReady, fmt.Errorf("failed to wait for frame %d: %w", c.currentFrame, err)
	}

	c.state = StateAcquiring
	index, status, err := c.dev.AcquireNextImage(c.swapchain, slot.imageAcquired)
	if err != nil {
		return 0, metadata.StatusReady, fmt.Errorf("failed to acquire swapchain image: %w", err)
	}
	switch status {
	case metadata.StatusOutOfDate:
		c.state = StateNeedsRecreate
		return 0, status, nil
	case metadata.StatusSuboptimal:
		c.suboptimal = true
	}
	if index >= uint32(len(c.imagesInFlight)) {
		return 0, status, fmt.Errorf("platform returned image index %d of %d", index, len(c.imagesInFlight))
	}

	c.imageIndex = index
	c.state = StateRecording
	return index, status, nil
}

// SubmitAndPresent submits cmd for the image returned by the last
// AcquireNext and queues that image for presentation. The current frame
// slot advances even when the returned status asks for recreation.
func (c *Chain) SubmitAndPresent(cmd metadata.CommandBuffer, imageIndex uint32) (metadata.PresentStatus, error) {
	if c.destroyed {
		return metadata.StatusReady, ErrChainDestroyed
	}
	if c.state != StateRecording || c.imageIndex != imageIndex {
		return metadata.StatusReady, fmt.Errorf("%w: image %d (chain is %s)", ErrNoImageAcquired, imageIndex, c.state)
	}

	slot := c.slots[c.currentFrame]
	c.state = StateSubmitting

	// Acquisition order does not follow slot order: an image may still be
	// in use by the frame of another slot.
	if owner := c.imagesInFlight[imageIndex]; owner != nil {
		if err := owner.wait(c.dev, c.opts.FenceTimeout); err != nil {
			return metadata.StatusReady, fmt.Errorf("failed to wait for image %d: %w", imageIndex, err)
		}
	}
	c.imagesInFlight[imageIndex] = slot.fence

	if err := c.dev.ResetFence(slot.fence.handle); err != nil {
		return metadata.StatusReady, fmt.Errorf("failed to reset fence of frame %d: %w", c.currentFrame, err)
	}
	if err := c.dev.Submit(cmd, slot.imageAcquired, metadata.PipelineStageColorAttachmentOutput, slot.renderFinished, slot.fence.handle); err != nil {
		return metadata.StatusReady, fmt.Errorf("failed to submit frame %d: %w", c.currentFrame, err)
	}
	slot.fence.inFlight = true

	c.state = StatePresenting
	status, err := c.dev.Present(c.swapchain, imageIndex, slot.renderFinished)

	// Increment (and loop) the index.
	c.currentFrame = (c.currentFrame + 1) % uint32(len(c.slots))

	if err != nil {
		return metadata.StatusReady, fmt.Errorf("failed to present image %d: %w", imageIndex, err)
	}
	if status == metadata.StatusReady && c.suboptimal {
		status = metadata.StatusSuboptimal
	}
	if status != metadata.StatusReady {
		c.state = StateNeedsRecreate
	} else {
		c.state = StateIdle
	}
	return status, nil
}
