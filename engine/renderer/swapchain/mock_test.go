package swapchain

import (
	"fmt"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Git-RoySun/Engine2/engine/core"
	"github.com/Git-RoySun/Engine2/engine/renderer/metadata"
)

func TestMain(m *testing.M) {
	core.SetLogOutput(io.Discard)
	os.Exit(m.Run())
}

// Teardown phases in the order a chain must release them.
const (
	phaseSync = iota
	phaseFramebuffer
	phaseRenderPass
	phaseAttachment
	phasePresentableView
	phaseSwapchain
)

type fakeObject struct {
	kind string
	id   int
	// Set for swapchain images and the views created from them.
	presentable bool
	format      metadata.Format
	extent      metadata.Extent2D
	samples     metadata.SampleCountFlags
}

func (o *fakeObject) String() string {
	return fmt.Sprintf("%s#%d", o.kind, o.id)
}

func (o *fakeObject) phase() int {
	switch o.kind {
	case "fence", "semaphore":
		return phaseSync
	case "framebuffer":
		return phaseFramebuffer
	case "renderpass":
		return phaseRenderPass
	case "view":
		if o.presentable {
			return phasePresentableView
		}
		return phaseAttachment
	case "swapchain":
		return phaseSwapchain
	}
	return phaseAttachment
}

type fakeFence struct {
	fakeObject
	done     chan struct{}
	signaled bool
}

type acquireResult struct {
	index  uint32
	status metadata.PresentStatus
	err    error
}

type submitRecord struct {
	cmd       metadata.CommandBuffer
	wait      metadata.Semaphore
	waitStage metadata.PipelineStageFlags
	signal    metadata.Semaphore
	fence     *fakeFence
}

// fakeDevice is an allocation-tracking Device. Fences only signal when the
// test completes the submitted work, unless autoComplete is set.
type fakeDevice struct {
	mu sync.Mutex

	support     metadata.SurfaceSupport
	families    metadata.QueueFamilies
	formats     map[metadata.Format]metadata.FormatProperties
	memoryTypes []metadata.MemoryType
	colorCounts metadata.SampleCountFlags
	depthCounts metadata.SampleCountFlags
	// Images the platform returns per swapchain; 0 returns the requested count.
	platformImages int

	autoComplete bool
	acquires     []acquireResult
	presents     []metadata.PresentStatus
	nextImage    uint32
	// failAt[op] = n makes the n-th call of op fail.
	failAt map[string]int
	calls  map[string]int

	nextID         int
	live           map[*fakeObject]bool
	destroyed      []*fakeObject
	doubleFrees    []string
	ops            []string
	swapchainInfos []metadata.SwapchainInfo
	submits        []submitRecord
	pending        []*fakeFence
	swapchainCount map[*fakeObject]int
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		support: metadata.SurfaceSupport{
			Capabilities: metadata.SurfaceCapabilities{
				MinImageCount:    2,
				MaxImageCount:    8,
				CurrentExtent:    metadata.Extent2D{Width: 800, Height: 600},
				MinImageExtent:   metadata.Extent2D{Width: 1, Height: 1},
				MaxImageExtent:   metadata.Extent2D{Width: 4096, Height: 4096},
				CurrentTransform: metadata.SurfaceTransformIdentity,
			},
			Formats: []metadata.SurfaceFormat{
				{Format: metadata.FormatB8G8R8A8Unorm, ColorSpace: metadata.ColorSpaceSrgbNonlinear},
				{Format: metadata.FormatB8G8R8A8Srgb, ColorSpace: metadata.ColorSpaceSrgbNonlinear},
			},
			PresentModes: []metadata.PresentMode{metadata.PresentModeFifo, metadata.PresentModeMailbox},
		},
		families: metadata.QueueFamilies{Graphics: 0, Present: 0},
		formats: map[metadata.Format]metadata.FormatProperties{
			metadata.FormatD32Sfloat: {OptimalTilingFeatures: metadata.FormatFeatureDepthStencilAttachment},
		},
		memoryTypes: []metadata.MemoryType{
			{PropertyFlags: metadata.MemoryPropertyHostVisible | metadata.MemoryPropertyHostCoherent},
			{PropertyFlags: metadata.MemoryPropertyDeviceLocal},
		},
		colorCounts:    metadata.SampleCount1 | metadata.SampleCount2 | metadata.SampleCount4 | metadata.SampleCount8,
		depthCounts:    metadata.SampleCount1 | metadata.SampleCount2 | metadata.SampleCount4 | metadata.SampleCount8,
		autoComplete:   true,
		failAt:         map[string]int{},
		calls:          map[string]int{},
		live:           map[*fakeObject]bool{},
		swapchainCount: map[*fakeObject]int{},
	}
}

// call counts op and reports the injected failure, if any. mu must be held.
func (d *fakeDevice) call(op string) error {
	d.calls[op]++
	if n, ok := d.failAt[op]; ok && n == d.calls[op] {
		return fmt.Errorf("injected %s failure", op)
	}
	return nil
}

func (d *fakeDevice) alloc(kind string) *fakeObject {
	d.nextID++
	o := &fakeObject{kind: kind, id: d.nextID}
	d.live[o] = true
	return o
}

func (d *fakeDevice) free(o *fakeObject) {
	if !d.live[o] {
		d.doubleFrees = append(d.doubleFrees, o.String())
		return
	}
	delete(d.live, o)
	d.destroyed = append(d.destroyed, o)
}

func (d *fakeDevice) outstanding() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []string
	for o := range d.live {
		out = append(out, o.String())
	}
	return out
}

func (d *fakeDevice) opLog() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.ops...)
}

func (d *fakeDevice) countOps(op string) int {
	n := 0
	for _, o := range d.opLog() {
		if o == op {
			n++
		}
	}
	return n
}

// completeAll signals every fence with pending GPU work.
func (d *fakeDevice) completeAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, f := range d.pending {
		d.signal(f)
	}
	d.pending = nil
}

// complete signals the fence of the n-th submission.
func (d *fakeDevice) complete(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.signal(d.submits[n].fence)
}

func (d *fakeDevice) signal(f *fakeFence) {
	if !f.signaled {
		f.signaled = true
		close(f.done)
	}
}

func (d *fakeDevice) QuerySurfaceSupport(surface metadata.Surface) (*metadata.SurfaceSupport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.call("QuerySurfaceSupport"); err != nil {
		return nil, err
	}
	support := d.support
	return &support, nil
}

func (d *fakeDevice) QueueFamilies() metadata.QueueFamilies {
	return d.families
}

func (d *fakeDevice) FormatProperties(format metadata.Format) metadata.FormatProperties {
	return d.formats[format]
}

func (d *fakeDevice) MemoryTypes() []metadata.MemoryType {
	return d.memoryTypes
}

func (d *fakeDevice) FramebufferSampleCounts() (metadata.SampleCountFlags, metadata.SampleCountFlags) {
	return d.colorCounts, d.depthCounts
}

func (d *fakeDevice) CreateImage(info *metadata.ImageInfo) (metadata.Image, metadata.MemoryRequirements, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.call("CreateImage"); err != nil {
		return nil, metadata.MemoryRequirements{}, err
	}
	o := d.alloc("image")
	o.format = info.Format
	o.samples = info.Samples
	o.extent = metadata.Extent2D{Width: info.Width, Height: info.Height}
	return o, metadata.MemoryRequirements{
		Size:           uint64(info.Width) * uint64(info.Height) * 4 * uint64(info.Samples),
		MemoryTypeBits: 0b11,
	}, nil
}

func (d *fakeDevice) DestroyImage(image metadata.Image) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.free(image.(*fakeObject))
}

func (d *fakeDevice) AllocateMemory(size uint64, memoryTypeIndex uint32) (metadata.DeviceMemory, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.call("AllocateMemory"); err != nil {
		return nil, err
	}
	if int(memoryTypeIndex) >= len(d.memoryTypes) {
		return nil, fmt.Errorf("memory type %d out of range", memoryTypeIndex)
	}
	return d.alloc("memory"), nil
}

func (d *fakeDevice) FreeMemory(memory metadata.DeviceMemory) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.free(memory.(*fakeObject))
}

func (d *fakeDevice) BindImageMemory(image metadata.Image, memory metadata.DeviceMemory) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.call("BindImageMemory")
}

func (d *fakeDevice) CreateImageView(image metadata.Image, format metadata.Format, aspect metadata.ImageAspectFlags) (metadata.ImageView, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.call("CreateImageView"); err != nil {
		return nil, err
	}
	img := image.(*fakeObject)
	o := d.alloc("view")
	o.presentable = img.presentable
	o.format = format
	o.extent = img.extent
	o.samples = img.samples
	return o, nil
}

func (d *fakeDevice) DestroyImageView(view metadata.ImageView) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.free(view.(*fakeObject))
}

func (d *fakeDevice) CreateRenderPass(desc *metadata.RenderTargetDescriptor) (metadata.RenderPass, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.call("CreateRenderPass"); err != nil {
		return nil, err
	}
	return d.alloc("renderpass"), nil
}

func (d *fakeDevice) DestroyRenderPass(pass metadata.RenderPass) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.free(pass.(*fakeObject))
}

func (d *fakeDevice) CreateFramebuffer(pass metadata.RenderPass, attachments []metadata.ImageView, extent metadata.Extent2D) (metadata.Framebuffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.call("CreateFramebuffer"); err != nil {
		return nil, err
	}
	for _, a := range attachments {
		if v := a.(*fakeObject); !d.live[v] || v.extent != extent {
			return nil, fmt.Errorf("framebuffer attachment %s does not match %s", v, extent)
		}
	}
	return d.alloc("framebuffer"), nil
}

func (d *fakeDevice) DestroyFramebuffer(framebuffer metadata.Framebuffer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.free(framebuffer.(*fakeObject))
}

func (d *fakeDevice) CreateFence(signaled bool) (metadata.Fence, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.call("CreateFence"); err != nil {
		return nil, err
	}
	d.nextID++
	f := &fakeFence{
		fakeObject: fakeObject{kind: "fence", id: d.nextID},
		done:       make(chan struct{}),
	}
	d.live[&f.fakeObject] = true
	if signaled {
		d.signal(f)
	}
	return f, nil
}

func (d *fakeDevice) DestroyFence(fence metadata.Fence) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.free(&fence.(*fakeFence).fakeObject)
}

func (d *fakeDevice) WaitForFence(fence metadata.Fence, timeout time.Duration) error {
	f := fence.(*fakeFence)
	d.mu.Lock()
	d.ops = append(d.ops, "wait "+f.String())
	done := f.done
	d.mu.Unlock()

	if timeout <= 0 {
		<-done
		return nil
	}
	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return core.ErrFenceTimeout
	}
}

func (d *fakeDevice) ResetFence(fence metadata.Fence) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	f := fence.(*fakeFence)
	d.ops = append(d.ops, "reset "+f.String())
	if f.signaled {
		f.signaled = false
		f.done = make(chan struct{})
	}
	return nil
}

func (d *fakeDevice) CreateSemaphore() (metadata.Semaphore, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.call("CreateSemaphore"); err != nil {
		return nil, err
	}
	return d.alloc("semaphore"), nil
}

func (d *fakeDevice) DestroySemaphore(semaphore metadata.Semaphore) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.free(semaphore.(*fakeObject))
}

func (d *fakeDevice) AcquireNextImage(sc metadata.Swapchain, imageAcquired metadata.Semaphore) (uint32, metadata.PresentStatus, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ops = append(d.ops, "acquire")
	if len(d.acquires) > 0 {
		r := d.acquires[0]
		d.acquires = d.acquires[1:]
		return r.index, r.status, r.err
	}
	index := d.nextImage
	d.nextImage = (d.nextImage + 1) % uint32(d.swapchainCount[sc.(*fakeObject)])
	return index, metadata.StatusReady, nil
}

func (d *fakeDevice) Submit(cmd metadata.CommandBuffer, wait metadata.Semaphore, waitStage metadata.PipelineStageFlags, signal metadata.Semaphore, fence metadata.Fence) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ops = append(d.ops, "submit")
	if err := d.call("Submit"); err != nil {
		return err
	}
	f := fence.(*fakeFence)
	d.submits = append(d.submits, submitRecord{cmd: cmd, wait: wait, waitStage: waitStage, signal: signal, fence: f})
	if d.autoComplete {
		d.signal(f)
	} else {
		d.pending = append(d.pending, f)
	}
	return nil
}

func (d *fakeDevice) Present(sc metadata.Swapchain, imageIndex uint32, wait metadata.Semaphore) (metadata.PresentStatus, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ops = append(d.ops, fmt.Sprintf("present %d", imageIndex))
	if err := d.call("Present"); err != nil {
		return metadata.StatusReady, err
	}
	if len(d.presents) > 0 {
		s := d.presents[0]
		d.presents = d.presents[1:]
		return s, nil
	}
	return metadata.StatusReady, nil
}

func (d *fakeDevice) WaitIdle() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ops = append(d.ops, "wait idle")
	return nil
}

func (d *fakeDevice) CreateSwapchain(info *metadata.SwapchainInfo) (metadata.Swapchain, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.call("CreateSwapchain"); err != nil {
		return nil, err
	}
	d.swapchainInfos = append(d.swapchainInfos, *info)
	sc := d.alloc("swapchain")
	sc.presentable = true
	sc.format = info.Format.Format
	sc.extent = info.Extent
	count := int(info.MinImageCount)
	if d.platformImages > 0 {
		count = d.platformImages
	}
	d.swapchainCount[sc] = count
	d.nextImage = 0
	return sc, nil
}

func (d *fakeDevice) DestroySwapchain(sc metadata.Swapchain) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.free(sc.(*fakeObject))
}

// SwapchainImages returns images owned by the swapchain; they are not
// tracked as client allocations.
func (d *fakeDevice) SwapchainImages(sc metadata.Swapchain) ([]metadata.Image, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := sc.(*fakeObject)
	images := make([]metadata.Image, d.swapchainCount[s])
	for i := range images {
		d.nextID++
		images[i] = &fakeObject{kind: "swapchain-image", id: d.nextID, presentable: true, format: s.format, extent: s.extent, samples: metadata.SampleCount1}
	}
	return images, nil
}

var _ Device = (*fakeDevice)(nil)
