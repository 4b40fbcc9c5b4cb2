package swapchain

import (
	"fmt"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/Git-RoySun/Engine2/engine/core"
	"github.com/Git-RoySun/Engine2/engine/renderer/metadata"
)

func assertBlocked(c *qt.C, done <-chan error) {
	c.Helper()
	select {
	case err := <-done:
		c.Fatalf("call returned (err=%v) while the GPU was still busy", err)
	case <-time.After(50 * time.Millisecond):
	}
}

func newFrameChain(c *qt.C, dev *fakeDevice, frames uint32) *Chain {
	opts := DefaultOptions()
	opts.FramesInFlight = frames
	chain, err := NewChain(dev, fakeSurface{}, metadata.Extent2D{Width: 800, Height: 600}, nil, opts)
	c.Assert(err, qt.IsNil)
	c.Cleanup(func() {
		dev.completeAll()
		chain.Destroy()
	})
	return chain
}

func runFrame(c *qt.C, chain *Chain) uint32 {
	index, status, err := chain.AcquireNext()
	c.Assert(err, qt.IsNil)
	c.Assert(status, qt.Equals, metadata.StatusReady)
	status, err = chain.SubmitAndPresent("cmd", index)
	c.Assert(err, qt.IsNil)
	c.Assert(status, qt.Equals, metadata.StatusReady)
	return index
}

func TestAcquireBlocksAfterFramesInFlight(t *testing.T) {
	for _, frames := range []uint32{1, 2, 3} {
		t.Run(fmt.Sprintf("frames=%d", frames), func(t *testing.T) {
			c := qt.New(t)

			dev := newFakeDevice()
			dev.autoComplete = false
			dev.platformImages = 4
			chain := newFrameChain(c, dev, frames)

			// The GPU finishes nothing: the first frames only wait on the
			// initially signaled fences.
			for i := uint32(0); i < frames; i++ {
				runFrame(c, chain)
			}
			c.Assert(chain.CurrentFrame(), qt.Equals, uint32(0))

			done := make(chan error, 1)
			go func() {
				_, _, err := chain.AcquireNext()
				done <- err
			}()
			assertBlocked(c, done)
			c.Assert(dev.countOps("acquire"), qt.Equals, int(frames))

			// Completing the oldest submission frees slot 0.
			dev.complete(0)
			c.Assert(<-done, qt.IsNil)
			c.Assert(chain.State(), qt.Equals, StateRecording)
		})
	}
}

func TestAcquireOutOfDateSkipsSubmit(t *testing.T) {
	c := qt.New(t)

	dev := newFakeDevice()
	dev.acquires = []acquireResult{{status: metadata.StatusOutOfDate}}
	chain := newFrameChain(c, dev, 2)

	_, status, err := chain.AcquireNext()
	c.Assert(err, qt.IsNil)
	c.Assert(status, qt.Equals, metadata.StatusOutOfDate)
	c.Assert(chain.State(), qt.Equals, StateNeedsRecreate)

	_, err = chain.SubmitAndPresent("cmd", 0)
	c.Assert(err, qt.ErrorIs, ErrNoImageAcquired)
	c.Assert(dev.countOps("submit"), qt.Equals, 0)
	c.Assert(dev.countOps("present 0"), qt.Equals, 0)

	_, _, err = chain.AcquireNext()
	c.Assert(err, qt.ErrorIs, ErrNeedsRecreate)
}

func TestSubmitWaitsForPreviousOwnerOfImage(t *testing.T) {
	c := qt.New(t)

	dev := newFakeDevice()
	dev.autoComplete = false
	// Slot 0 takes image 0, then slot 1 is handed image 0 again while
	// slot 0's work is still on the GPU.
	dev.acquires = []acquireResult{{index: 0}, {index: 0}}
	chain := newFrameChain(c, dev, 2)
	slot0Fence := chain.slots[0].fence.handle.(*fakeFence).String()

	c.Assert(runFrame(c, chain), qt.Equals, uint32(0))

	index, _, err := chain.AcquireNext()
	c.Assert(err, qt.IsNil)
	c.Assert(index, qt.Equals, uint32(0))
	c.Assert(chain.CurrentFrame(), qt.Equals, uint32(1))

	done := make(chan error, 1)
	go func() {
		_, err := chain.SubmitAndPresent("cmd", index)
		done <- err
	}()
	assertBlocked(c, done)
	c.Assert(dev.countOps("submit"), qt.Equals, 1)
	c.Assert(dev.opLog()[len(dev.opLog())-1], qt.Equals, "wait "+slot0Fence)

	dev.complete(0)
	c.Assert(<-done, qt.IsNil)
	c.Assert(dev.countOps("submit"), qt.Equals, 2)
	c.Assert(chain.imagesInFlight[0], qt.Equals, chain.slots[1].fence)
}

func TestSubmitDoesNotWaitForUnownedImage(t *testing.T) {
	c := qt.New(t)

	dev := newFakeDevice()
	dev.autoComplete = false
	dev.acquires = []acquireResult{{index: 2}, {index: 0}}
	chain := newFrameChain(c, dev, 2)
	slot0Fence := chain.slots[0].fence.handle.(*fakeFence).String()

	c.Assert(runFrame(c, chain), qt.Equals, uint32(2))
	// Slot 0 is still rendering image 2; image 0 has no owner.
	c.Assert(runFrame(c, chain), qt.Equals, uint32(0))

	c.Assert(dev.opLog(), qt.Not(qt.Contains), "wait "+slot0Fence)
	c.Assert(chain.imagesInFlight[2], qt.Equals, chain.slots[0].fence)
	c.Assert(chain.imagesInFlight[0], qt.Equals, chain.slots[1].fence)
	c.Assert(chain.imagesInFlight[1], qt.IsNil)
}

func TestSubmitAndPresentSequence(t *testing.T) {
	c := qt.New(t)

	dev := newFakeDevice()
	chain := newFrameChain(c, dev, 2)
	slot := chain.slots[0]
	fence := slot.fence.handle.(*fakeFence).String()

	index := runFrame(c, chain)
	c.Assert(dev.opLog(), qt.DeepEquals, []string{"acquire", "reset " + fence, "submit", fmt.Sprintf("present %d", index)})

	c.Assert(dev.submits, qt.HasLen, 1)
	submit := dev.submits[0]
	c.Assert(submit.cmd, qt.Equals, metadata.CommandBuffer("cmd"))
	c.Assert(submit.wait, qt.Equals, slot.imageAcquired)
	c.Assert(submit.waitStage, qt.Equals, metadata.PipelineStageColorAttachmentOutput)
	c.Assert(submit.signal, qt.Equals, slot.renderFinished)
	c.Assert(metadata.Fence(submit.fence), qt.Equals, slot.fence.handle)

	c.Assert(chain.CurrentFrame(), qt.Equals, uint32(1))
	c.Assert(chain.State(), qt.Equals, StateIdle)
	runFrame(c, chain)
	c.Assert(chain.CurrentFrame(), qt.Equals, uint32(0))
}

func TestPresentStatusNeedsRecreate(t *testing.T) {
	for _, status := range []metadata.PresentStatus{metadata.StatusSuboptimal, metadata.StatusOutOfDate} {
		t.Run(status.String(), func(t *testing.T) {
			c := qt.New(t)

			dev := newFakeDevice()
			dev.presents = []metadata.PresentStatus{status}
			chain := newFrameChain(c, dev, 2)

			index, _, err := chain.AcquireNext()
			c.Assert(err, qt.IsNil)
			got, err := chain.SubmitAndPresent("cmd", index)
			c.Assert(err, qt.IsNil)
			c.Assert(got, qt.Equals, status)
			c.Assert(chain.State(), qt.Equals, StateNeedsRecreate)
			c.Assert(chain.CurrentFrame(), qt.Equals, uint32(1))

			_, _, err = chain.AcquireNext()
			c.Assert(err, qt.ErrorIs, ErrNeedsRecreate)
		})
	}
}

func TestAcquireSuboptimalCompletesFrame(t *testing.T) {
	c := qt.New(t)

	dev := newFakeDevice()
	dev.acquires = []acquireResult{{index: 1, status: metadata.StatusSuboptimal}}
	chain := newFrameChain(c, dev, 2)

	index, status, err := chain.AcquireNext()
	c.Assert(err, qt.IsNil)
	c.Assert(index, qt.Equals, uint32(1))
	c.Assert(status, qt.Equals, metadata.StatusSuboptimal)
	c.Assert(chain.State(), qt.Equals, StateRecording)

	status, err = chain.SubmitAndPresent("cmd", index)
	c.Assert(err, qt.IsNil)
	c.Assert(dev.countOps("present 1"), qt.Equals, 1)
	c.Assert(status, qt.Equals, metadata.StatusSuboptimal)
	c.Assert(chain.State(), qt.Equals, StateNeedsRecreate)
}

func TestSubmitWrongImage(t *testing.T) {
	c := qt.New(t)

	dev := newFakeDevice()
	chain := newFrameChain(c, dev, 2)

	_, err := chain.SubmitAndPresent("cmd", 0)
	c.Assert(err, qt.ErrorIs, ErrNoImageAcquired)

	index, _, err := chain.AcquireNext()
	c.Assert(err, qt.IsNil)
	_, err = chain.SubmitAndPresent("cmd", index+1)
	c.Assert(err, qt.ErrorIs, ErrNoImageAcquired)

	_, _, err = chain.AcquireNext()
	c.Assert(err, qt.ErrorMatches, "cannot acquire an image while the chain is Recording")
}

func TestFenceTimeout(t *testing.T) {
	c := qt.New(t)

	dev := newFakeDevice()
	dev.autoComplete = false
	opts := DefaultOptions()
	opts.FramesInFlight = 1
	opts.FenceTimeout = 10 * time.Millisecond
	chain, err := NewChain(dev, fakeSurface{}, metadata.Extent2D{Width: 800, Height: 600}, nil, opts)
	c.Assert(err, qt.IsNil)

	runFrame(c, chain)
	_, _, err = chain.AcquireNext()
	c.Assert(err, qt.ErrorIs, core.ErrFenceTimeout)

	dev.completeAll()
	c.Assert(chain.Destroy(), qt.IsNil)
	c.Assert(dev.outstanding(), qt.HasLen, 0)
}

func TestSubmitFailureIsFatal(t *testing.T) {
	c := qt.New(t)

	dev := newFakeDevice()
	dev.failAt["Submit"] = 1
	chain, err := NewChain(dev, fakeSurface{}, metadata.Extent2D{Width: 800, Height: 600}, nil, DefaultOptions())
	c.Assert(err, qt.IsNil)

	index, _, err := chain.AcquireNext()
	c.Assert(err, qt.IsNil)
	_, err = chain.SubmitAndPresent("cmd", index)
	c.Assert(err, qt.ErrorMatches, "failed to submit frame 0: injected Submit failure")
	c.Assert(dev.countOps("present 0"), qt.Equals, 0)

	// The reset fence never reaches the GPU, so destroying must not wait on it.
	c.Assert(chain.Destroy(), qt.IsNil)
	c.Assert(dev.outstanding(), qt.HasLen, 0)
}
