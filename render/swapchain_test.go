package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	vk "github.com/vulkan-go/vulkan"
)

func surfaceFormat(f vk.Format, cs vk.ColorSpace) vk.SurfaceFormat {
	return vk.SurfaceFormat{Format: f, ColorSpace: cs}
}

func TestChooseSurfaceFormatPrefersSrgbBGRA(t *testing.T) {
	formats := []vk.SurfaceFormat{
		surfaceFormat(vk.FormatR8g8b8a8Unorm, vk.ColorSpaceSrgbNonlinear),
		surfaceFormat(vk.FormatB8g8r8a8Srgb, vk.ColorSpaceSrgbNonlinear),
	}
	got := chooseSurfaceFormat(formats)
	assert.Equal(t, vk.FormatB8g8r8a8Srgb, got.Format)
	assert.Equal(t, vk.ColorSpaceSrgbNonlinear, got.ColorSpace)
}

func TestChooseSurfaceFormatFallsBackToFirst(t *testing.T) {
	formats := []vk.SurfaceFormat{
		surfaceFormat(vk.FormatR8g8b8a8Unorm, vk.ColorSpaceSrgbNonlinear),
		surfaceFormat(vk.FormatB8g8r8a8Unorm, vk.ColorSpaceSrgbNonlinear),
	}
	got := chooseSurfaceFormat(formats)
	assert.Equal(t, vk.FormatR8g8b8a8Unorm, got.Format)
}

func TestChooseSurfaceFormatRequiresMatchingColorSpace(t *testing.T) {
	formats := []vk.SurfaceFormat{
		surfaceFormat(vk.FormatR8g8b8a8Unorm, vk.ColorSpaceSrgbNonlinear),
		surfaceFormat(vk.FormatB8g8r8a8Srgb, vk.ColorSpace(1000104002)),
	}
	got := chooseSurfaceFormat(formats)
	assert.Equal(t, vk.FormatR8g8b8a8Unorm, got.Format)
}

func TestChoosePresentMode(t *testing.T) {
	assert.Equal(t, vk.PresentModeMailbox, choosePresentMode([]vk.PresentMode{
		vk.PresentModeFifo, vk.PresentModeMailbox, vk.PresentModeImmediate,
	}))
	assert.Equal(t, vk.PresentModeFifo, choosePresentMode([]vk.PresentMode{
		vk.PresentModeFifo, vk.PresentModeImmediate,
	}))
	assert.Equal(t, vk.PresentModeFifo, choosePresentMode([]vk.PresentMode{vk.PresentModeFifo}))
}

func TestChooseExtentFixedBySurface(t *testing.T) {
	caps := vk.SurfaceCapabilities{
		CurrentExtent: vk.Extent2D{Width: 800, Height: 600},
	}
	got := chooseExtent(caps, 1920, 1080)
	assert.Equal(t, vk.Extent2D{Width: 800, Height: 600}, got)
}

func TestChooseExtentClampsFramebufferSize(t *testing.T) {
	caps := vk.SurfaceCapabilities{
		CurrentExtent:  vk.Extent2D{Width: vk.MaxUint32, Height: vk.MaxUint32},
		MinImageExtent: vk.Extent2D{Width: 64, Height: 64},
		MaxImageExtent: vk.Extent2D{Width: 4096, Height: 4096},
	}
	assert.Equal(t, vk.Extent2D{Width: 1920, Height: 1080}, chooseExtent(caps, 1920, 1080))
	assert.Equal(t, vk.Extent2D{Width: 64, Height: 64}, chooseExtent(caps, 10, 10))
	assert.Equal(t, vk.Extent2D{Width: 4096, Height: 4096}, chooseExtent(caps, 8000, 8000))
}

func TestChooseImageCount(t *testing.T) {
	assert.Equal(t, uint32(3), chooseImageCount(vk.SurfaceCapabilities{
		MinImageCount: 2, MaxImageCount: 8,
	}))
	// Capped at the driver maximum.
	assert.Equal(t, uint32(2), chooseImageCount(vk.SurfaceCapabilities{
		MinImageCount: 2, MaxImageCount: 2,
	}))
	// Zero maximum means unbounded.
	assert.Equal(t, uint32(4), chooseImageCount(vk.SurfaceCapabilities{
		MinImageCount: 3, MaxImageCount: 0,
	}))
}

func TestResolveChainConfigDefaultWindow(t *testing.T) {
	caps := vk.SurfaceCapabilities{
		MinImageCount: 2,
		MaxImageCount: 0,
		CurrentExtent: vk.Extent2D{Width: 800, Height: 600},
	}
	formats := []vk.SurfaceFormat{
		surfaceFormat(vk.FormatB8g8r8a8Srgb, vk.ColorSpaceSrgbNonlinear),
	}
	modes := []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox}

	cfg := resolveChainConfig(caps, formats, modes, 800, 600)
	assert.Equal(t, vk.FormatB8g8r8a8Srgb, cfg.format.Format)
	assert.Equal(t, vk.PresentModeMailbox, cfg.presentMode)
	assert.Equal(t, vk.Extent2D{Width: 800, Height: 600}, cfg.extent)
	assert.Equal(t, uint32(3), cfg.imageCount)
}
