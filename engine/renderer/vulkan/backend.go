package vulkan

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"

	"github.com/Git-RoySun/Engine2/engine/core"
	"github.com/Git-RoySun/Engine2/engine/platform"
	"github.com/Git-RoySun/Engine2/engine/renderer/metadata"
	"github.com/Git-RoySun/Engine2/engine/renderer/swapchain"
)

const validationLayerName = "VK_LAYER_KHRONOS_validation"

type VulkanRenderer struct {
	platform    *platform.Platform
	config      core.RendererConfig
	FrameNumber uint64
	context     *VulkanContext

	presenter *swapchain.Presenter
	// One command buffer per frame slot. A slot's buffer is free to
	// re-record once the slot fence has been waited on by the acquire.
	commandBuffers []*VulkanCommandBuffer
	clear          ClearPass

	imageIndex  uint32
	frameSlot   uint32
	frameActive bool
}

func New(p *platform.Platform, config core.RendererConfig) *VulkanRenderer {
	return &VulkanRenderer{
		platform: p,
		config:   config,
		context:  NewVulkanContext(),
		clear: ClearPass{
			R: 0.0, G: 0.0, B: 0.2, A: 1.0,
			Depth: 1.0,
		},
	}
}

func (vr *VulkanRenderer) Initialize(appName string, appWidth, appHeight uint32) error {
	procAddr := glfw.GetVulkanGetInstanceProcAddress()
	if procAddr == nil {
		return fmt.Errorf("GetInstanceProcAddress is nil")
	}
	vk.SetGetInstanceProcAddr(procAddr)

	if err := vk.Init(); err != nil {
		return fmt.Errorf("failed to initialize vk: %w", err)
	}

	if err := vr.createInstance(appName); err != nil {
		return err
	}

	if vr.config.Validation {
		core.LogDebug("Creating Vulkan debugger...")
		debugCreateInfo := vk.DebugReportCallbackCreateInfo{
			SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
			PfnCallback: dbgCallbackFunc,
		}
		var dbg vk.DebugReportCallback
		if err := vk.Error(vk.CreateDebugReportCallback(vr.context.Instance, &debugCreateInfo, vr.context.Allocator, &dbg)); err != nil {
			return fmt.Errorf("vk.CreateDebugReportCallback failed: %w", err)
		}
		vr.context.debugMessenger = dbg
		core.LogDebug("Vulkan debugger created.")
	}

	core.LogDebug("Creating Vulkan surface...")
	surface, err := vr.platform.CreateSurface(vr.context.Instance)
	if err != nil {
		return fmt.Errorf("failed to create platform surface: %w", err)
	}
	vr.context.Surface = vk.SurfaceFromPointer(surface)
	core.LogDebug("Vulkan surface created.")

	if err := DeviceCreate(vr.context); err != nil {
		return fmt.Errorf("failed to create device: %w", err)
	}

	// The surface may report a framebuffer larger than the window on HiDPI displays.
	extent := metadata.Extent2D{Width: appWidth, Height: appHeight}
	if w, h := vr.platform.FramebufferSize(); w != 0 && h != 0 {
		extent = metadata.Extent2D{Width: w, Height: h}
	}

	presenter, err := swapchain.NewPresenter(vr.context, vr.context.Surface, extent, swapchain.OptionsFromConfig(vr.config))
	if err != nil {
		return err
	}
	vr.presenter = presenter

	core.LogInfo("Vulkan renderer initialized successfully.")
	return nil
}

func (vr *VulkanRenderer) createInstance(appName string) error {
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(appName),
		PEngineName:        VulkanSafeString("Engine2"),
	}

	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	requiredExtensions := vr.platform.GetRequiredExtensionNames()
	if runtime.GOOS == "darwin" {
		requiredExtensions = append(requiredExtensions,
			"VK_KHR_portability_enumeration",
			"VK_KHR_get_physical_device_properties2",
		)
		// VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR
		createInfo.Flags |= 1
	}
	if vr.config.Validation {
		requiredExtensions = append(requiredExtensions, vk.ExtDebugReportExtensionName)
	}
	core.LogDebug("Required extensions: %v", requiredExtensions)

	createInfo.EnabledExtensionCount = uint32(len(requiredExtensions))
	createInfo.PpEnabledExtensionNames = VulkanSafeStrings(requiredExtensions)

	// Validation layers should only be enabled on non-release builds.
	var layers []string
	if vr.config.Validation {
		core.LogInfo("Validation layers enabled. Enumerating...")
		if err := checkValidationLayer(validationLayerName); err != nil {
			return err
		}
		layers = []string{validationLayerName}
	}
	createInfo.EnabledLayerCount = uint32(len(layers))
	createInfo.PpEnabledLayerNames = VulkanSafeStrings(layers)

	var instance vk.Instance
	if res := vk.CreateInstance(&createInfo, vr.context.Allocator, &instance); res != vk.Success {
		return fmt.Errorf("failed in creating the Vulkan Instance with error `%s`", VulkanResultString(res, true))
	}
	if err := vk.InitInstance(instance); err != nil {
		return err
	}
	vr.context.Instance = instance
	core.LogInfo("Vulkan Instance created.")
	return nil
}

func checkValidationLayer(name string) error {
	var count uint32
	if res := vk.EnumerateInstanceLayerProperties(&count, nil); res != vk.Success {
		return resultError("vkEnumerateInstanceLayerProperties", res)
	}
	available := make([]vk.LayerProperties, count)
	if res := vk.EnumerateInstanceLayerProperties(&count, available); res != vk.Success {
		return resultError("vkEnumerateInstanceLayerProperties", res)
	}
	for _, layer := range available[:count] {
		layer.Deref()
		if vk.ToString(layer.LayerName[:]) == name {
			core.LogInfo("Found validation layer %s.", name)
			return nil
		}
	}
	return fmt.Errorf("required validation layer is missing: %s", name)
}

func (vr *VulkanRenderer) Shutdown() error {
	if vr.context.Device.LogicalDevice != nil {
		if err := vr.context.WaitIdle(); err != nil {
			core.LogError(err.Error())
		}
	}

	// Destroy in the opposite order of creation.
	FreeCommandBuffers(vr.context, vr.commandBuffers)
	vr.commandBuffers = nil

	if vr.presenter != nil {
		if err := vr.presenter.Destroy(); err != nil {
			core.LogError(err.Error())
		}
		vr.presenter = nil
	}

	core.LogDebug("Destroying Vulkan device...")
	DeviceDestroy(vr.context)

	if vr.context.Surface != vk.NullSurface {
		core.LogDebug("Destroying Vulkan surface...")
		vk.DestroySurface(vr.context.Instance, vr.context.Surface, vr.context.Allocator)
		vr.context.Surface = vk.NullSurface
	}

	if vr.context.debugMessenger != vk.NullDebugReportCallback {
		core.LogDebug("Destroying Vulkan debugger...")
		vk.DestroyDebugReportCallback(vr.context.Instance, vr.context.debugMessenger, vr.context.Allocator)
		vr.context.debugMessenger = vk.NullDebugReportCallback
	}

	if vr.context.Instance != nil {
		core.LogDebug("Destroying Vulkan instance...")
		vk.DestroyInstance(vr.context.Instance, vr.context.Allocator)
		vr.context.Instance = nil
	}
	return nil
}

func (vr *VulkanRenderer) Resized(width, height uint32) error {
	if vr.presenter == nil {
		return nil
	}
	vr.presenter.Resize(metadata.Extent2D{Width: width, Height: height})
	core.LogInfo("Vulkan renderer backend->resized: w/h: %d/%d", width, height)
	return nil
}

// Reconfigure applies renderer settings from a reloaded config. The chain is
// rebuilt on the next frame.
func (vr *VulkanRenderer) Reconfigure(config core.RendererConfig) error {
	if vr.presenter == nil {
		vr.config = config
		return nil
	}
	if err := vr.presenter.Reconfigure(swapchain.OptionsFromConfig(config)); err != nil {
		return err
	}
	vr.config = config
	return nil
}

func (vr *VulkanRenderer) Stats() swapchain.Stats {
	if vr.presenter == nil {
		return swapchain.Stats{}
	}
	return vr.presenter.Stats()
}

// BeginFrame acquires the next image and starts recording the clear pass.
// It returns core.ErrSwapchainBooting when no image could be acquired this
// frame; the caller skips the frame.
func (vr *VulkanRenderer) BeginFrame(deltaTime float64) error {
	if vr.presenter == nil {
		return fmt.Errorf("vulkan renderer is not initialized")
	}

	imageIndex, ok, err := vr.presenter.BeginFrame()
	if err != nil {
		return err
	}
	if !ok {
		return core.ErrSwapchainBooting
	}

	chain := vr.presenter.Chain()
	if err := vr.ensureCommandBuffers(chain.FramesInFlight()); err != nil {
		return err
	}

	vr.frameSlot = chain.CurrentFrame()
	commandBuffer := vr.commandBuffers[vr.frameSlot]
	if err := commandBuffer.Reset(); err != nil {
		return err
	}
	if err := commandBuffer.Begin(false, false, false); err != nil {
		return err
	}
	vr.clear.Begin(commandBuffer, chain.RenderPass(), chain.Framebuffer(imageIndex), chain.Extent())

	vr.imageIndex = imageIndex
	vr.frameActive = true
	return nil
}

func (vr *VulkanRenderer) EndFrame(deltaTime float64) error {
	if !vr.frameActive {
		return nil
	}
	vr.frameActive = false

	commandBuffer := vr.commandBuffers[vr.frameSlot]
	vr.clear.End(commandBuffer)
	if err := commandBuffer.End(); err != nil {
		return err
	}

	if err := vr.presenter.EndFrame(commandBuffer.Handle, vr.imageIndex); err != nil {
		return err
	}
	commandBuffer.UpdateSubmitted()
	vr.FrameNumber++
	return nil
}

// ensureCommandBuffers grows the per-slot command buffers when a reconfigured
// chain runs more frames in flight than before.
func (vr *VulkanRenderer) ensureCommandBuffers(count int) error {
	if len(vr.commandBuffers) >= count {
		return nil
	}
	if len(vr.commandBuffers) > 0 {
		if err := vr.context.WaitIdle(); err != nil {
			return err
		}
		FreeCommandBuffers(vr.context, vr.commandBuffers)
	}
	buffers, err := AllocateCommandBuffers(vr.context, count)
	if err != nil {
		vr.commandBuffers = nil
		return err
	}
	vr.commandBuffers = buffers
	return nil
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("[%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		core.LogWarn("[%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		core.LogWarn("PERFORMANCE: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	default:
		core.LogDebug("[%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	}
	return vk.Bool32(vk.False)
}
