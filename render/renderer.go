// Package render owns the Vulkan rendering context: device selection, the
// presentation swapchain, a single fixed graphics pipeline and the
// frames-in-flight synchronization that drives one draw per frame.
//
// The package encapsulates the vulkan-go binding entirely; callers interact
// with the Renderer facade only. The renderer is single-threaded: all methods
// must be called from the thread that owns the GLFW window.
package render

import (
	"log"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
)

// DefaultFramesInFlight bounds how far the CPU may run ahead of the GPU.
// Two slots keep the GPU busy while the CPU records the next frame without
// adding more latency than that.
const DefaultFramesInFlight = 2

// Options configures a Renderer. The zero value is not usable: shader
// bytecode is mandatory, everything else has a default.
type Options struct {
	// AppName is reported to the Vulkan implementation.
	AppName string

	// FramesInFlight is the number of frame slots cycled by the renderer.
	// It is independent of the swapchain image count. Defaults to
	// DefaultFramesInFlight.
	FramesInFlight int

	// EnableValidation requests the Khronos validation layer and routes its
	// reports through the logger. Initialization fails if the layer is
	// requested but not installed.
	EnableValidation bool

	// VertexShader and FragmentShader hold compiled SPIR-V bytecode.
	VertexShader   []byte
	FragmentShader []byte

	// Logger receives diagnostics. Defaults to log.Default().
	Logger *log.Logger
}

func (o Options) withDefaults() Options {
	if o.AppName == "" {
		o.AppName = "embervk"
	}
	if o.FramesInFlight <= 0 {
		o.FramesInFlight = DefaultFramesInFlight
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return o
}

// Renderer is the root owner of every GPU object. Creation happens in strict
// dependency order in New; Shutdown destroys in exact reverse order after
// draining the device.
type Renderer struct {
	opts Options
	log  *log.Logger

	window *glfw.Window

	instance      vk.Instance
	debugCallback vk.DebugReportCallback
	surface       vk.Surface

	gpu      vk.PhysicalDevice
	gpuProps vk.PhysicalDeviceProperties
	device   vk.Device

	queues        queueFamilyIndices
	graphicsQueue vk.Queue
	presentQueue  vk.Queue

	chain          *swapchain
	renderPass     vk.RenderPass
	pipelineLayout vk.PipelineLayout
	pipeline       vk.Pipeline

	commandPool vk.CommandPool
	slots       []frameSlot
	frameIndex  int

	// resized is the sticky flag set by the windowing collaborator and
	// consumed at the next present step.
	resized bool

	initialized bool
}

// New builds a complete rendering context for the given window. On failure
// every object created so far is destroyed before returning.
func New(window *glfw.Window, opts Options) (*Renderer, error) {
	opts = opts.withDefaults()
	if len(opts.VertexShader) == 0 || len(opts.FragmentShader) == 0 {
		return nil, errors.New("render: vertex and fragment shader bytecode are required")
	}
	r := &Renderer{
		opts:   opts,
		log:    opts.Logger,
		window: window,
	}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"create instance", r.createInstance},
		{"create surface", r.createSurface},
		{"pick physical device", r.pickPhysicalDevice},
		{"create logical device", r.createLogicalDevice},
		{"create swapchain", r.createSwapchain},
		{"create render pass", r.createRenderPass},
		{"create pipeline", r.createPipeline},
		{"create framebuffers", r.createFramebuffers},
		{"create command pool", r.createCommandPool},
		{"create frame slots", r.createFrameSlots},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			r.destroyAll()
			return nil, errors.Wrapf(err, "render: %s", step.name)
		}
	}
	r.initialized = true
	return r, nil
}

// RenderFrame runs one full frame cycle: wait, acquire, record, submit,
// present. Stale-surface conditions are recovered internally by rebuilding
// the swapchain; any other failure is fatal and terminates the render loop.
func (r *Renderer) RenderFrame() error {
	if !r.initialized {
		return errors.New("render: renderer is not initialized")
	}
	return r.drawFrame()
}

// NotifyResize records that the output surface changed size. The flag is
// sticky and consumed at the next present step, which rebuilds the swapchain.
func (r *Renderer) NotifyResize() {
	r.resized = true
}

// Shutdown drains the GPU and destroys all owned objects in reverse creation
// order. Safe to call more than once; repeated calls warn and no-op.
func (r *Renderer) Shutdown() {
	if !r.initialized {
		r.log.Println("render: shutdown on an uninitialized renderer, ignoring")
		return
	}
	vk.DeviceWaitIdle(r.device)
	r.destroyAll()
	r.initialized = false
	r.log.Println("render: shutdown complete")
}

// destroyAll releases whatever exists, in reverse creation order. Used both
// by Shutdown and by New when a later initialization step fails.
func (r *Renderer) destroyAll() {
	if r.device != nil {
		r.destroyFrameSlots()
		if r.commandPool != vk.NullCommandPool {
			vk.DestroyCommandPool(r.device, r.commandPool, nil)
			r.commandPool = vk.NullCommandPool
		}
		if r.pipeline != vk.NullPipeline {
			vk.DestroyPipeline(r.device, r.pipeline, nil)
			r.pipeline = vk.NullPipeline
		}
		if r.pipelineLayout != vk.NullPipelineLayout {
			vk.DestroyPipelineLayout(r.device, r.pipelineLayout, nil)
			r.pipelineLayout = vk.NullPipelineLayout
		}
		if r.renderPass != vk.NullRenderPass {
			vk.DestroyRenderPass(r.device, r.renderPass, nil)
			r.renderPass = vk.NullRenderPass
		}
		if r.chain != nil {
			r.destroyChain()
		}
		vk.DestroyDevice(r.device, nil)
		r.device = nil
	}
	if r.debugCallback != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(r.instance, r.debugCallback, nil)
		r.debugCallback = vk.NullDebugReportCallback
	}
	if r.surface != vk.NullSurface {
		vk.DestroySurface(r.instance, r.surface, nil)
		r.surface = vk.NullSurface
	}
	if r.instance != nil {
		vk.DestroyInstance(r.instance, nil)
		r.instance = nil
	}
}
