package render

import (
	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/embervk/embervk/spv"
)

func (r *Renderer) loadShaderModule(code []byte) (vk.ShaderModule, error) {
	if err := spv.Validate(code); err != nil {
		return vk.NullShaderModule, errors.Mark(err, ErrShaderCompilation)
	}
	var module vk.ShaderModule
	ret := vk.CreateShaderModule(r.device, &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code)),
		PCode:    spv.Words(code),
	}, nil, &module)
	if err := vkErr(ret, "create shader module"); err != nil {
		return vk.NullShaderModule, errors.Mark(err, ErrShaderCompilation)
	}
	return module, nil
}

// createPipeline builds the one fixed-function graphics pipeline the renderer
// ever uses. Vertex data is synthesized in the vertex shader, so the vertex
// input state is empty. Viewport and scissor are dynamic; everything else is
// baked.
func (r *Renderer) createPipeline() error {
	vertModule, err := r.loadShaderModule(r.opts.VertexShader)
	if err != nil {
		return errors.Wrap(err, "vertex shader")
	}
	defer vk.DestroyShaderModule(r.device, vertModule, nil)

	fragModule, err := r.loadShaderModule(r.opts.FragmentShader)
	if err != nil {
		return errors.Wrap(err, "fragment shader")
	}
	defer vk.DestroyShaderModule(r.device, fragModule, nil)

	stages := []vk.PipelineShaderStageCreateInfo{{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  vk.ShaderStageVertexBit,
		Module: vertModule,
		PName:  safeString("main"),
	}, {
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  vk.ShaderStageFragmentBit,
		Module: fragModule,
		PName:  safeString("main"),
	}}

	vertexInput := vk.PipelineVertexInputStateCreateInfo{
		SType: vk.StructureTypePipelineVertexInputStateCreateInfo,
	}
	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:    vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology: vk.PrimitiveTopologyTriangleList,
	}
	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}
	rasterizer := vk.PipelineRasterizationStateCreateInfo{
		SType:       vk.StructureTypePipelineRasterizationStateCreateInfo,
		PolygonMode: vk.PolygonModeFill,
		CullMode:    vk.CullModeFlags(vk.CullModeBackBit),
		FrontFace:   vk.FrontFaceClockwise,
		LineWidth:   1.0,
	}
	multisample := vk.PipelineMultisampleStateCreateInfo{
		SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples: vk.SampleCount1Bit,
	}
	blendAttachment := vk.PipelineColorBlendAttachmentState{
		BlendEnable: vk.False,
		ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit |
			vk.ColorComponentGBit | vk.ColorComponentBBit | vk.ColorComponentABit),
	}
	colorBlend := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		AttachmentCount: 1,
		PAttachments:    []vk.PipelineColorBlendAttachmentState{blendAttachment},
	}
	dynamicState := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: 2,
		PDynamicStates:    []vk.DynamicState{vk.DynamicStateViewport, vk.DynamicStateScissor},
	}

	var layout vk.PipelineLayout
	ret := vk.CreatePipelineLayout(r.device, &vk.PipelineLayoutCreateInfo{
		SType: vk.StructureTypePipelineLayoutCreateInfo,
	}, nil, &layout)
	if err := vkErr(ret, "create pipeline layout"); err != nil {
		return errors.Mark(err, ErrPipelineCreation)
	}
	r.pipelineLayout = layout

	pipelines := make([]vk.Pipeline, 1)
	ret = vk.CreateGraphicsPipelines(r.device, vk.NullPipelineCache, 1,
		[]vk.GraphicsPipelineCreateInfo{{
			SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
			StageCount:          uint32(len(stages)),
			PStages:             stages,
			PVertexInputState:   &vertexInput,
			PInputAssemblyState: &inputAssembly,
			PViewportState:      &viewportState,
			PRasterizationState: &rasterizer,
			PMultisampleState:   &multisample,
			PColorBlendState:    &colorBlend,
			PDynamicState:       &dynamicState,
			Layout:              layout,
			RenderPass:          r.renderPass,
			Subpass:             0,
		}}, nil, pipelines)
	if err := vkErr(ret, "create graphics pipeline"); err != nil {
		return errors.Mark(err, ErrPipelineCreation)
	}
	r.pipeline = pipelines[0]
	return nil
}
