// pipeline.go
package vkvideo

/*
#include <vulkan/vulkan.h>
#include <stdlib.h>
*/
import "C"
import "unsafe"

// ComputePipeline is a compute pipeline plus the descriptor set layout its
// parameter list implies. The layout is derived from the parameter types in
// order: parameter i occupies binding i.
type ComputePipeline struct {
	handle    C.VkPipeline
	layout    C.VkPipelineLayout
	setLayout C.VkDescriptorSetLayout
	device    *Device
	node      *owner
	bindings  []DescriptorType
}

// NewComputePipeline builds a pipeline for the shader's "main" entry point.
// The parameter list fixes the descriptor interface; dispatches must pass
// matching parameters.
func NewComputePipeline(device *Device, shader *Shader, params []Parameter) (*ComputePipeline, error) {
	bindings := make([]DescriptorType, len(params))
	for i, param := range params {
		bindings[i] = param.descriptorType()
	}

	setLayout, err := createSetLayout(device, bindings)
	if err != nil {
		return nil, err
	}

	layoutInfo := (*C.VkPipelineLayoutCreateInfo)(C.calloc(1, C.sizeof_VkPipelineLayoutCreateInfo))
	layoutInfo.sType = C.VK_STRUCTURE_TYPE_PIPELINE_LAYOUT_CREATE_INFO
	layoutInfo.setLayoutCount = 1
	layoutInfo.pSetLayouts = &setLayout

	var layout C.VkPipelineLayout
	result := C.vkCreatePipelineLayout(device.handle, layoutInfo, nil, &layout)
	C.free(unsafe.Pointer(layoutInfo))
	if result != C.VK_SUCCESS {
		C.vkDestroyDescriptorSetLayout(device.handle, setLayout, nil)
		return nil, errVulkanMsg(Result(result), "vkCreatePipelineLayout")
	}

	entryName := C.CString("main")
	defer C.free(unsafe.Pointer(entryName))

	cInfo := (*C.VkComputePipelineCreateInfo)(C.calloc(1, C.sizeof_VkComputePipelineCreateInfo))
	defer C.free(unsafe.Pointer(cInfo))

	cInfo.sType = C.VK_STRUCTURE_TYPE_COMPUTE_PIPELINE_CREATE_INFO
	cInfo.stage.sType = C.VK_STRUCTURE_TYPE_PIPELINE_SHADER_STAGE_CREATE_INFO
	cInfo.stage.stage = C.VK_SHADER_STAGE_COMPUTE_BIT
	cInfo.stage.module = shader.handle
	cInfo.stage.pName = entryName
	cInfo.layout = layout

	var handle C.VkPipeline
	result = C.vkCreateComputePipelines(device.handle, nil, 1, cInfo, nil, &handle)
	if result != C.VK_SUCCESS {
		C.vkDestroyPipelineLayout(device.handle, layout, nil)
		C.vkDestroyDescriptorSetLayout(device.handle, setLayout, nil)
		return nil, errKindf(ErrNoComputePipeline, "vkCreateComputePipelines: %s", Result(result))
	}

	pipeline := &ComputePipeline{
		handle:    handle,
		layout:    layout,
		setLayout: setLayout,
		device:    device,
		bindings:  bindings,
	}
	deviceHandle := device.handle
	pipeline.node = newOwner("compute pipeline", device.log, func() {
		C.vkDestroyPipeline(deviceHandle, handle, nil)
		C.vkDestroyPipelineLayout(deviceHandle, layout, nil)
		C.vkDestroyDescriptorSetLayout(deviceHandle, setLayout, nil)
	}, device.node)

	return pipeline, nil
}

func createSetLayout(device *Device, bindings []DescriptorType) (C.VkDescriptorSetLayout, error) {
	cInfo := (*C.VkDescriptorSetLayoutCreateInfo)(C.calloc(1, C.sizeof_VkDescriptorSetLayoutCreateInfo))
	defer C.free(unsafe.Pointer(cInfo))

	cInfo.sType = C.VK_STRUCTURE_TYPE_DESCRIPTOR_SET_LAYOUT_CREATE_INFO

	var cBindings []C.VkDescriptorSetLayoutBinding
	if len(bindings) > 0 {
		cBindings = make([]C.VkDescriptorSetLayoutBinding, len(bindings))
		for i, descriptorType := range bindings {
			cBindings[i].binding = C.uint32_t(i)
			cBindings[i].descriptorType = C.VkDescriptorType(descriptorType)
			cBindings[i].descriptorCount = 1
			cBindings[i].stageFlags = C.VK_SHADER_STAGE_COMPUTE_BIT
		}
		cInfo.bindingCount = C.uint32_t(len(cBindings))
		cInfo.pBindings = &cBindings[0]
	}

	var layout C.VkDescriptorSetLayout
	result := C.vkCreateDescriptorSetLayout(device.handle, cInfo, nil, &layout)
	if result != C.VK_SUCCESS {
		return nil, errVulkanMsg(Result(result), "vkCreateDescriptorSetLayout")
	}

	return layout, nil
}

func (pipeline *ComputePipeline) Retain()  { pipeline.node.retain() }
func (pipeline *ComputePipeline) Release() { pipeline.node.release() }
