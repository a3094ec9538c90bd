package render

import (
	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Initialization failures. All of these are fatal: startup aborts and
// nothing is retried.
var (
	// ErrNoDeviceFound is returned when zero physical devices are enumerated.
	ErrNoDeviceFound = errors.New("vulkan: no GPU devices found")

	// ErrNoSuitableDevice is returned when devices exist but none satisfies
	// the queue, extension and surface requirements.
	ErrNoSuitableDevice = errors.New("vulkan: no suitable GPU device for graphics and presentation")

	// ErrShaderCompilation marks a failure to build a shader module from
	// the provided SPIR-V bytecode.
	ErrShaderCompilation = errors.New("vulkan: shader module creation failed")

	// ErrPipelineCreation marks a failure while building the graphics
	// pipeline or its layout.
	ErrPipelineCreation = errors.New("vulkan: graphics pipeline creation failed")
)

// vkErr converts a Vulkan result into an error naming the failed operation.
// Returns nil on vk.Success so call sites can wrap API calls directly.
func vkErr(ret vk.Result, op string) error {
	if ret == vk.Success {
		return nil
	}
	return errors.Newf("vulkan: %s: %s (%d)", op, vk.Error(ret).Error(), int32(ret))
}
