package render

import (
	vk "github.com/vulkan-go/vulkan"
)

// frameSlot groups the per-frame resources cycled by the frames-in-flight
// loop: one command buffer and the three primitives that order its reuse.
// Slots are indexed by frame counter modulo the slot count, never by
// swapchain image index.
type frameSlot struct {
	cmd            vk.CommandBuffer
	imageAvailable vk.Semaphore
	renderFinished vk.Semaphore
	inFlight       vk.Fence
}

func (r *Renderer) createFrameSlots() error {
	buffers, err := r.allocateCommandBuffers(r.opts.FramesInFlight)
	if err != nil {
		return err
	}
	r.slots = make([]frameSlot, r.opts.FramesInFlight)
	for i := range r.slots {
		slot := &r.slots[i]
		slot.cmd = buffers[i]

		semaphoreInfo := &vk.SemaphoreCreateInfo{SType: vk.StructureTypeSemaphoreCreateInfo}
		if ret := vk.CreateSemaphore(r.device, semaphoreInfo, nil, &slot.imageAvailable); ret != vk.Success {
			return vkErr(ret, "create image-available semaphore")
		}
		if ret := vk.CreateSemaphore(r.device, semaphoreInfo, nil, &slot.renderFinished); ret != vk.Success {
			return vkErr(ret, "create render-finished semaphore")
		}
		// Created signaled so the first wait on each slot passes immediately.
		ret := vk.CreateFence(r.device, &vk.FenceCreateInfo{
			SType: vk.StructureTypeFenceCreateInfo,
			Flags: vk.FenceCreateFlags(vk.FenceCreateSignaledBit),
		}, nil, &slot.inFlight)
		if ret != vk.Success {
			return vkErr(ret, "create in-flight fence")
		}
	}
	return nil
}

func (r *Renderer) destroyFrameSlots() {
	for i := range r.slots {
		slot := &r.slots[i]
		if slot.imageAvailable != vk.NullSemaphore {
			vk.DestroySemaphore(r.device, slot.imageAvailable, nil)
		}
		if slot.renderFinished != vk.NullSemaphore {
			vk.DestroySemaphore(r.device, slot.renderFinished, nil)
		}
		if slot.inFlight != vk.NullFence {
			vk.DestroyFence(r.device, slot.inFlight, nil)
		}
	}
	r.slots = nil
}

// classifyAcquire maps an image-acquire result to a recovery decision.
// recreate means rebuild the swapchain and retry next frame; a non-nil error
// is fatal. Suboptimal still delivered a usable image, so the frame proceeds.
func classifyAcquire(ret vk.Result) (recreate bool, err error) {
	switch ret {
	case vk.Success, vk.Suboptimal:
		return false, nil
	case vk.ErrorOutOfDate:
		return true, nil
	default:
		return false, vkErr(ret, "acquire swapchain image")
	}
}

// classifyPresent maps a present result, combined with the sticky resize
// flag, to a recovery decision. Unlike acquire, suboptimal at present time
// triggers a rebuild: the frame already reached the screen.
func classifyPresent(ret vk.Result, resized bool) (recreate bool, err error) {
	switch ret {
	case vk.ErrorOutOfDate, vk.Suboptimal:
		return true, nil
	case vk.Success:
		return resized, nil
	default:
		return false, vkErr(ret, "present swapchain image")
	}
}

func nextFrameIndex(current, slots int) int {
	return (current + 1) % slots
}

// drawFrame runs one cycle of the frames-in-flight loop. The slot fence
// guarantees the command buffer and semaphores are idle before reuse; waiting
// on it is always the first step.
func (r *Renderer) drawFrame() error {
	slot := &r.slots[r.frameIndex]

	vk.WaitForFences(r.device, 1, []vk.Fence{slot.inFlight}, vk.True, vk.MaxUint64)

	var imageIndex uint32
	ret := vk.AcquireNextImage(r.device, r.chain.handle, vk.MaxUint64,
		slot.imageAvailable, vk.NullFence, &imageIndex)
	if recreate, err := classifyAcquire(ret); err != nil {
		return err
	} else if recreate {
		// No image acquired, nothing was submitted: rebuild and leave the
		// frame counter where it is.
		return r.recreateChain()
	}

	// Reset only after acquire succeeds, or an early return above would
	// leave the slot unsignaled forever.
	vk.ResetFences(r.device, 1, []vk.Fence{slot.inFlight})
	vk.ResetCommandBuffer(slot.cmd, 0)
	if err := r.recordCommands(slot.cmd, imageIndex); err != nil {
		return err
	}

	ret = vk.QueueSubmit(r.graphicsQueue, 1, []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{slot.imageAvailable},
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{slot.cmd},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{slot.renderFinished},
	}}, slot.inFlight)
	if err := vkErr(ret, "submit draw commands"); err != nil {
		return err
	}

	ret = vk.QueuePresent(r.presentQueue, &vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{slot.renderFinished},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{r.chain.handle},
		PImageIndices:      []uint32{imageIndex},
	})
	recreate, err := classifyPresent(ret, r.resized)
	if err != nil {
		return err
	}
	if recreate {
		r.resized = false
		if err := r.recreateChain(); err != nil {
			return err
		}
	}

	r.frameIndex = nextFrameIndex(r.frameIndex, len(r.slots))
	return nil
}
