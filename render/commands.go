package render

import (
	"github.com/chewxy/math32"
	vk "github.com/vulkan-go/vulkan"
)

// targetAspect is the fixed width:height ratio of the rendered scene. The
// viewport is letterboxed inside the swapchain extent to preserve it.
const targetAspect = float32(4.0 / 3.0)

func (r *Renderer) createCommandPool() error {
	var pool vk.CommandPool
	ret := vk.CreateCommandPool(r.device, &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
		QueueFamilyIndex: r.queues.graphics,
	}, nil, &pool)
	if err := vkErr(ret, "create command pool"); err != nil {
		return err
	}
	r.commandPool = pool
	return nil
}

func (r *Renderer) allocateCommandBuffers(n int) ([]vk.CommandBuffer, error) {
	buffers := make([]vk.CommandBuffer, n)
	ret := vk.AllocateCommandBuffers(r.device, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        r.commandPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: uint32(n),
	}, buffers)
	if err := vkErr(ret, "allocate command buffers"); err != nil {
		return nil, err
	}
	return buffers, nil
}

// letterboxViewport computes the largest viewport with the given aspect ratio
// that fits the extent, centered. One pair of bars at most: vertical when the
// extent is wider than the ratio, horizontal when taller.
func letterboxViewport(extent vk.Extent2D, aspect float32) vk.Viewport {
	width := math32.Min(float32(extent.Width), float32(extent.Height)*aspect)
	height := width / aspect
	return vk.Viewport{
		X:        (float32(extent.Width) - width) / 2,
		Y:        (float32(extent.Height) - height) / 2,
		Width:    width,
		Height:   height,
		MinDepth: 0,
		MaxDepth: 1,
	}
}

// recordCommands re-records the full frame into cmd: clear to opaque black,
// bind the pipeline, set the letterboxed viewport and a full-extent scissor,
// draw the three synthesized vertices.
func (r *Renderer) recordCommands(cmd vk.CommandBuffer, imageIndex uint32) error {
	ret := vk.BeginCommandBuffer(cmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
	})
	if err := vkErr(ret, "begin command buffer"); err != nil {
		return err
	}

	clearValues := []vk.ClearValue{vk.NewClearValue([]float32{0, 0, 0, 1})}
	vk.CmdBeginRenderPass(cmd, &vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  r.renderPass,
		Framebuffer: r.chain.framebuffers[imageIndex],
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: r.chain.extent,
		},
		ClearValueCount: 1,
		PClearValues:    clearValues,
	}, vk.SubpassContentsInline)

	vk.CmdBindPipeline(cmd, vk.PipelineBindPointGraphics, r.pipeline)

	viewport := letterboxViewport(r.chain.extent, targetAspect)
	vk.CmdSetViewport(cmd, 0, 1, []vk.Viewport{viewport})
	vk.CmdSetScissor(cmd, 0, 1, []vk.Rect2D{{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: r.chain.extent,
	}})

	vk.CmdDraw(cmd, 3, 1, 0, 0)

	vk.CmdEndRenderPass(cmd)
	return vkErr(vk.EndCommandBuffer(cmd), "end command buffer")
}
