package render

import (
	vk "github.com/vulkan-go/vulkan"
	"golang.org/x/exp/slices"
)

// swapchain owns the chain of presentable images plus their index-aligned
// views and framebuffers. It is rebuilt from scratch on resize or staleness,
// never mutated in place.
type swapchain struct {
	handle       vk.Swapchain
	format       vk.SurfaceFormat
	presentMode  vk.PresentMode
	extent       vk.Extent2D
	images       []vk.Image
	views        []vk.ImageView
	framebuffers []vk.Framebuffer
}

// chainConfig is the resolved shape of a swapchain before any GPU object is
// created. Kept separate so selection policy is testable without a device.
type chainConfig struct {
	format      vk.SurfaceFormat
	presentMode vk.PresentMode
	extent      vk.Extent2D
	imageCount  uint32
}

func resolveChainConfig(caps vk.SurfaceCapabilities, formats []vk.SurfaceFormat,
	modes []vk.PresentMode, fbWidth, fbHeight int) chainConfig {

	return chainConfig{
		format:      chooseSurfaceFormat(formats),
		presentMode: choosePresentMode(modes),
		extent:      chooseExtent(caps, fbWidth, fbHeight),
		imageCount:  chooseImageCount(caps),
	}
}

// chooseSurfaceFormat prefers 8-bit BGRA with nonlinear sRGB encoding and
// falls back to the first supported format.
func chooseSurfaceFormat(formats []vk.SurfaceFormat) vk.SurfaceFormat {
	for i := range formats {
		formats[i].Deref()
		if formats[i].Format == vk.FormatB8g8r8a8Srgb &&
			formats[i].ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return formats[i]
		}
	}
	return formats[0]
}

// choosePresentMode prefers mailbox (low latency, no tearing) and falls back
// to FIFO, the only mode the Vulkan spec guarantees.
func choosePresentMode(modes []vk.PresentMode) vk.PresentMode {
	if slices.Contains(modes, vk.PresentModeMailbox) {
		return vk.PresentModeMailbox
	}
	return vk.PresentModeFifo
}

// chooseExtent takes the surface's fixed current extent when one is reported;
// otherwise it derives the extent from the framebuffer size clamped to the
// surface bounds. A current width of MaxUint32 means "window manager defers
// to the swapchain".
func chooseExtent(caps vk.SurfaceCapabilities, fbWidth, fbHeight int) vk.Extent2D {
	caps.CurrentExtent.Deref()
	if caps.CurrentExtent.Width != vk.MaxUint32 {
		return caps.CurrentExtent
	}
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()
	return vk.Extent2D{
		Width:  clampU32(uint32(fbWidth), caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clampU32(uint32(fbHeight), caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// chooseImageCount asks for one image beyond the driver minimum so the
// renderer never stalls waiting on the presentation engine, capped at the
// driver maximum when one exists (0 means unbounded).
func chooseImageCount(caps vk.SurfaceCapabilities) uint32 {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

func (r *Renderer) createSwapchain() error {
	var caps vk.SurfaceCapabilities
	ret := vk.GetPhysicalDeviceSurfaceCapabilities(r.gpu, r.surface, &caps)
	if err := vkErr(ret, "query surface capabilities"); err != nil {
		return err
	}
	caps.Deref()

	formats, err := surfaceFormats(r.gpu, r.surface)
	if err != nil {
		return err
	}
	modes, err := surfacePresentModes(r.gpu, r.surface)
	if err != nil {
		return err
	}

	fbWidth, fbHeight := r.window.GetFramebufferSize()
	cfg := resolveChainConfig(caps, formats, modes, fbWidth, fbHeight)

	sharingMode := vk.SharingModeExclusive
	var familyIndices []uint32
	if r.queues.separate() {
		// Images are touched by both queue families; concurrent sharing
		// avoids explicit ownership transfers.
		sharingMode = vk.SharingModeConcurrent
		familyIndices = []uint32{r.queues.graphics, r.queues.present}
	}

	var chain vk.Swapchain
	ret = vk.CreateSwapchain(r.device, &vk.SwapchainCreateInfo{
		SType:                 vk.StructureTypeSwapchainCreateInfo,
		Surface:               r.surface,
		MinImageCount:         cfg.imageCount,
		ImageFormat:           cfg.format.Format,
		ImageColorSpace:       cfg.format.ColorSpace,
		ImageExtent:           cfg.extent,
		ImageArrayLayers:      1,
		ImageUsage:            vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode:      sharingMode,
		QueueFamilyIndexCount: uint32(len(familyIndices)),
		PQueueFamilyIndices:   familyIndices,
		PreTransform:          caps.CurrentTransform,
		CompositeAlpha:        vk.CompositeAlphaOpaqueBit,
		PresentMode:           cfg.presentMode,
		Clipped:               vk.True,
		OldSwapchain:          vk.NullSwapchain,
	}, nil, &chain)
	if err := vkErr(ret, "create swapchain"); err != nil {
		return err
	}

	var imageCount uint32
	ret = vk.GetSwapchainImages(r.device, chain, &imageCount, nil)
	if err := vkErr(ret, "get swapchain images"); err != nil {
		vk.DestroySwapchain(r.device, chain, nil)
		return err
	}
	images := make([]vk.Image, imageCount)
	ret = vk.GetSwapchainImages(r.device, chain, &imageCount, images)
	if err := vkErr(ret, "get swapchain images"); err != nil {
		vk.DestroySwapchain(r.device, chain, nil)
		return err
	}

	r.chain = &swapchain{
		handle:      chain,
		format:      cfg.format,
		presentMode: cfg.presentMode,
		extent:      cfg.extent,
		images:      images,
	}
	if err := r.createImageViews(); err != nil {
		return err
	}
	r.log.Printf("vulkan: swapchain ready, %dx%d, %d images", cfg.extent.Width, cfg.extent.Height, imageCount)
	return nil
}

func (r *Renderer) createImageViews() error {
	r.chain.views = make([]vk.ImageView, len(r.chain.images))
	for i, image := range r.chain.images {
		var view vk.ImageView
		ret := vk.CreateImageView(r.device, &vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    image,
			ViewType: vk.ImageViewType2d,
			Format:   r.chain.format.Format,
			Components: vk.ComponentMapping{
				R: vk.ComponentSwizzleIdentity,
				G: vk.ComponentSwizzleIdentity,
				B: vk.ComponentSwizzleIdentity,
				A: vk.ComponentSwizzleIdentity,
			},
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LevelCount: 1,
				LayerCount: 1,
			},
		}, nil, &view)
		if err := vkErr(ret, "create image view"); err != nil {
			return err
		}
		r.chain.views[i] = view
	}
	return nil
}

func (r *Renderer) createFramebuffers() error {
	r.chain.framebuffers = make([]vk.Framebuffer, len(r.chain.views))
	for i, view := range r.chain.views {
		var framebuffer vk.Framebuffer
		ret := vk.CreateFramebuffer(r.device, &vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      r.renderPass,
			AttachmentCount: 1,
			PAttachments:    []vk.ImageView{view},
			Width:           r.chain.extent.Width,
			Height:          r.chain.extent.Height,
			Layers:          1,
		}, nil, &framebuffer)
		if err := vkErr(ret, "create framebuffer"); err != nil {
			return err
		}
		r.chain.framebuffers[i] = framebuffer
	}
	return nil
}

// destroyChain releases the framebuffers, views and the chain object only.
// The render pass and pipeline are resolution-independent and survive.
func (r *Renderer) destroyChain() {
	for _, framebuffer := range r.chain.framebuffers {
		vk.DestroyFramebuffer(r.device, framebuffer, nil)
	}
	for _, view := range r.chain.views {
		vk.DestroyImageView(r.device, view, nil)
	}
	vk.DestroySwapchain(r.device, r.chain.handle, nil)
	r.chain = nil
}

// recreateChain drains the GPU and rebuilds the presentation chain from the
// current surface capabilities. Called when the surface reports staleness or
// the windowing layer flags a resize.
func (r *Renderer) recreateChain() error {
	vk.DeviceWaitIdle(r.device)
	r.destroyChain()
	if err := r.createSwapchain(); err != nil {
		return err
	}
	return r.createFramebuffers()
}

func surfaceFormats(gpu vk.PhysicalDevice, surface vk.Surface) ([]vk.SurfaceFormat, error) {
	var count uint32
	ret := vk.GetPhysicalDeviceSurfaceFormats(gpu, surface, &count, nil)
	if err := vkErr(ret, "query surface formats"); err != nil {
		return nil, err
	}
	formats := make([]vk.SurfaceFormat, count)
	ret = vk.GetPhysicalDeviceSurfaceFormats(gpu, surface, &count, formats)
	if err := vkErr(ret, "query surface formats"); err != nil {
		return nil, err
	}
	return formats, nil
}

func surfacePresentModes(gpu vk.PhysicalDevice, surface vk.Surface) ([]vk.PresentMode, error) {
	var count uint32
	ret := vk.GetPhysicalDeviceSurfacePresentModes(gpu, surface, &count, nil)
	if err := vkErr(ret, "query present modes"); err != nil {
		return nil, err
	}
	modes := make([]vk.PresentMode, count)
	ret = vk.GetPhysicalDeviceSurfacePresentModes(gpu, surface, &count, modes)
	if err := vkErr(ret, "query present modes"); err != nil {
		return nil, err
	}
	return modes, nil
}
