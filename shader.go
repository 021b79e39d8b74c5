// shader.go
package vkvideo

/*
#include <vulkan/vulkan.h>
#include <stdlib.h>
*/
import "C"
import "unsafe"

// Shader wraps a SPIR-V module. Code must be a multiple of four bytes.
type Shader struct {
	handle C.VkShaderModule
	device *Device
	node   *owner
}

func NewShader(device *Device, code []byte) (*Shader, error) {
	if len(code) == 0 || len(code)%4 != 0 {
		return nil, errKindf(ErrNoComputePipeline, "SPIR-V length %d is not a multiple of 4", len(code))
	}

	cInfo := (*C.VkShaderModuleCreateInfo)(C.calloc(1, C.sizeof_VkShaderModuleCreateInfo))
	defer C.free(unsafe.Pointer(cInfo))

	// The driver reads the code during the call only, so passing the Go
	// slice directly is fine.
	cInfo.sType = C.VK_STRUCTURE_TYPE_SHADER_MODULE_CREATE_INFO
	cInfo.codeSize = C.size_t(len(code))
	cInfo.pCode = (*C.uint32_t)(unsafe.Pointer(&code[0]))

	var handle C.VkShaderModule
	result := C.vkCreateShaderModule(device.handle, cInfo, nil, &handle)
	if result != C.VK_SUCCESS {
		return nil, errVulkanMsg(Result(result), "vkCreateShaderModule")
	}

	shader := &Shader{handle: handle, device: device}
	deviceHandle := device.handle
	shader.node = newOwner("shader", device.log, func() {
		C.vkDestroyShaderModule(deviceHandle, handle, nil)
	}, device.node)

	return shader, nil
}

func (shader *Shader) Retain()  { shader.node.retain() }
func (shader *Shader) Release() { shader.node.release() }
