package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Git-RoySun/Engine2/engine/core"
	"github.com/Git-RoySun/Engine2/engine/platform"
	"github.com/Git-RoySun/Engine2/engine/renderer/metadata"
	"github.com/Git-RoySun/Engine2/engine/renderer/vulkan"
)

type RendererType uint8

const (
	Vulkan RendererType = iota
	DirectX
	Metal
	OpenGL
)

type Renderer struct {
	backend RendererBackend
	// Frames skipped because no image could be acquired.
	skipped uint64
}

var initRenderer sync.Once
var renderer *Renderer

func Initialize(appName string, config core.RendererConfig, appWidth, appHeight uint32, platform *platform.Platform) error {
	initRenderer.Do(func() {
		renderer = &Renderer{
			backend: vulkan.New(platform, config),
		}
	})
	return renderer.backend.Initialize(appName, appWidth, appHeight)
}

// initializeWith installs a backend directly. Used by tests.
func initializeWith(backend RendererBackend) {
	renderer = &Renderer{backend: backend}
}

func Shutdown() error {
	if renderer == nil {
		return nil
	}
	return renderer.backend.Shutdown()
}

func BeginFrame(deltaTime float64) error {
	return renderer.backend.BeginFrame(deltaTime)
}

func EndFrame(deltaTime float64) error {
	return renderer.backend.EndFrame(deltaTime)
}

func OnResize(width, height uint32) error {
	if renderer == nil {
		return nil
	}
	return renderer.backend.Resized(width, height)
}

func Reconfigure(config core.RendererConfig) error {
	if renderer == nil {
		return nil
	}
	return renderer.backend.Reconfigure(config)
}

// SkippedFrames returns how many frames DrawFrame dropped so far.
func SkippedFrames() uint64 {
	if renderer == nil {
		return 0
	}
	return renderer.skipped
}

// DrawFrame renders one frame. A frame that cannot acquire an image is
// dropped without error.
func DrawFrame(renderPacket *metadata.RenderPacket) error {
	if renderer == nil {
		return fmt.Errorf("renderer is not initialized")
	}
	if err := BeginFrame(renderPacket.DeltaTime); err != nil {
		if errors.Is(err, core.ErrSwapchainBooting) {
			renderer.skipped++
			core.LogDebug("frame %d skipped: %s", renderPacket.FrameNumber, err)
			return nil
		}
		core.LogError(err.Error())
		return err
	}
	if err := EndFrame(renderPacket.DeltaTime); err != nil {
		core.LogError("RendererEndFrame failed. Application shutting down...")
		return err
	}
	return nil
}
