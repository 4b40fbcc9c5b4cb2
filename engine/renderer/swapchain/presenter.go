package swapchain

import (
	"errors"
	"fmt"

	"github.com/Git-RoySun/Engine2/engine/core"
	"github.com/Git-RoySun/Engine2/engine/renderer/metadata"
)

type Stats struct {
	FramesPresented uint64
	FramesDropped   uint64
	Recreations     uint64
}

// Presenter drives a Chain frame by frame and replaces it whenever the
// surface changes. Like Chain, it belongs to the frame-producing goroutine.
type Presenter struct {
	dev     Device
	surface metadata.Surface
	opts    Options

	desired metadata.Extent2D
	chain   *Chain
	// Set when the chain no longer matches the desired extent or options.
	stale bool

	stats Stats
}

// NewPresenter creates the first chain. With a zero extent (e.g. a
// minimized window) creation is deferred until Resize reports a usable one.
func NewPresenter(dev Device, surface metadata.Surface, extent metadata.Extent2D, opts Options) (*Presenter, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	p := &Presenter{
		dev:     dev,
		surface: surface,
		opts:    opts,
		desired: extent,
		stale:   true,
	}
	if _, err := p.recreate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Chain returns the current chain, or nil when none could be built yet.
func (p *Presenter) Chain() *Chain {
	return p.chain
}

func (p *Presenter) Generation() uint64 {
	if p.chain == nil {
		return 0
	}
	return p.chain.Generation()
}

func (p *Presenter) Stats() Stats {
	return p.stats
}

// Resize records the new desired extent. The chain is rebuilt at the start
// of the next frame.
func (p *Presenter) Resize(extent metadata.Extent2D) {
	if extent == p.desired {
		return
	}
	core.LogDebug("Presenter resized to %s.", extent)
	p.desired = extent
	p.stale = true
}

// Reconfigure swaps the options used for the next chain and marks the
// current one stale.
func (p *Presenter) Reconfigure(opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	if opts == p.opts {
		return nil
	}
	p.opts = opts
	p.stale = true
	return nil
}

// BeginFrame acquires the image for the next frame. ok is false when the
// frame must be skipped: the window is minimized or the chain turned out to
// be out of date and was rebuilt.
func (p *Presenter) BeginFrame() (imageIndex uint32, ok bool, err error) {
	if p.stale || p.chain == nil || p.chain.State() == StateNeedsRecreate {
		rebuilt, err := p.recreate()
		if err != nil || !rebuilt {
			return 0, false, err
		}
	}

	imageIndex, status, err := p.chain.AcquireNext()
	if err != nil {
		return 0, false, err
	}
	if status == metadata.StatusOutOfDate {
		p.stats.FramesDropped++
		core.LogDebug("Swapchain out of date, dropping frame.")
		if _, err := p.recreate(); err != nil {
			return 0, false, err
		}
		return 0, false, nil
	}
	return imageIndex, true, nil
}

// EndFrame submits cmd for imageIndex and presents it. A stale or degraded
// result rebuilds the chain right away.
func (p *Presenter) EndFrame(cmd metadata.CommandBuffer, imageIndex uint32) error {
	if p.chain == nil {
		return ErrNoImageAcquired
	}
	status, err := p.chain.SubmitAndPresent(cmd, imageIndex)
	if err != nil {
		return err
	}
	if status != metadata.StatusOutOfDate {
		p.stats.FramesPresented++
	}
	if status != metadata.StatusReady {
		core.LogDebug("Swapchain %s after present, recreating.", status)
		if _, err := p.recreate(); err != nil {
			return err
		}
	}
	return nil
}

// recreate builds a new chain from the current one and destroys the old one
// afterwards. It reports false without error while the desired extent is
// zero; the presenter stays stale until a usable extent arrives.
func (p *Presenter) recreate() (bool, error) {
	if p.desired.IsZero() {
		core.LogDebug("Deferring swapchain creation, extent is %s.", p.desired)
		p.stale = true
		return false, nil
	}

	old := p.chain
	next, err := NewChain(p.dev, p.surface, p.desired, old, p.opts)
	if err != nil {
		// The surface may report a zero extent before the window system
		// delivers the minimize event.
		if errors.Is(err, core.ErrSwapchainBooting) {
			p.stale = true
			return false, nil
		}
		return false, fmt.Errorf("failed to recreate swapchain: %w", err)
	}
	p.chain = next
	p.stale = false

	if old != nil {
		p.stats.Recreations++
		if err := old.Destroy(); err != nil {
			return true, fmt.Errorf("failed to destroy swapchain generation %d: %w", old.Generation(), err)
		}
	}
	return true, nil
}

// Destroy releases the current chain.
func (p *Presenter) Destroy() error {
	if p.chain == nil {
		return nil
	}
	err := p.chain.Destroy()
	p.chain = nil
	return err
}
