package render

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	vk "github.com/vulkan-go/vulkan"
)

const aspectTolerance = 1e-4

func TestLetterboxViewportExactFit(t *testing.T) {
	vp := letterboxViewport(vk.Extent2D{Width: 800, Height: 600}, targetAspect)
	assert.Equal(t, float32(800), vp.Width)
	assert.Equal(t, float32(600), vp.Height)
	assert.Equal(t, float32(0), vp.X)
	assert.Equal(t, float32(0), vp.Y)
}

func TestLetterboxViewportWideWindow(t *testing.T) {
	// 1920x1080 is wider than 4:3, so vertical bars appear.
	vp := letterboxViewport(vk.Extent2D{Width: 1920, Height: 1080}, targetAspect)
	assert.Equal(t, float32(1080), vp.Height)
	assert.Equal(t, float32(1440), vp.Width)
	assert.Equal(t, float32(240), vp.X)
	assert.Equal(t, float32(0), vp.Y)
}

func TestLetterboxViewportTallWindow(t *testing.T) {
	vp := letterboxViewport(vk.Extent2D{Width: 600, Height: 900}, targetAspect)
	assert.Equal(t, float32(600), vp.Width)
	assert.Equal(t, float32(450), vp.Height)
	assert.Equal(t, float32(0), vp.X)
	assert.Equal(t, float32(225), vp.Y)
}

func TestLetterboxViewportPreservesAspect(t *testing.T) {
	extents := []vk.Extent2D{
		{Width: 800, Height: 600},
		{Width: 1920, Height: 1080},
		{Width: 1080, Height: 1920},
		{Width: 333, Height: 777},
		{Width: 2560, Height: 1440},
	}
	for _, e := range extents {
		vp := letterboxViewport(e, targetAspect)
		assert.LessOrEqual(t, vp.Width, float32(e.Width))
		assert.LessOrEqual(t, vp.Height, float32(e.Height))
		got := vp.Width / vp.Height
		assert.Less(t, math32.Abs(got-targetAspect), float32(aspectTolerance),
			"extent %dx%d", e.Width, e.Height)
	}
}

func TestLetterboxViewportCentered(t *testing.T) {
	vp := letterboxViewport(vk.Extent2D{Width: 1000, Height: 600}, targetAspect)
	assert.Equal(t, float32(1000), 2*vp.X+vp.Width)
	assert.Equal(t, float32(600), 2*vp.Y+vp.Height)
}

func TestLetterboxViewportDepthRange(t *testing.T) {
	vp := letterboxViewport(vk.Extent2D{Width: 800, Height: 600}, targetAspect)
	assert.Equal(t, float32(0), vp.MinDepth)
	assert.Equal(t, float32(1), vp.MaxDepth)
}
