// commandbuffer.go
package vkvideo

/*
#include <vulkan/vulkan.h>
#include <stdlib.h>
*/
import "C"
import "unsafe"

// CommandBuffer bundles a command pool and one primary command buffer for a
// single queue family. The pool allows per-buffer reset so the same buffer
// can be reused across submissions.
type CommandBuffer struct {
	pool        C.VkCommandPool
	handle      C.VkCommandBuffer
	device      *Device
	node        *owner
	queueFamily uint32
}

func NewCommandBuffer(device *Device, queueFamily uint32) (*CommandBuffer, error) {
	poolInfo := (*C.VkCommandPoolCreateInfo)(C.calloc(1, C.sizeof_VkCommandPoolCreateInfo))
	defer C.free(unsafe.Pointer(poolInfo))

	poolInfo.sType = C.VK_STRUCTURE_TYPE_COMMAND_POOL_CREATE_INFO
	poolInfo.flags = C.VK_COMMAND_POOL_CREATE_RESET_COMMAND_BUFFER_BIT
	poolInfo.queueFamilyIndex = C.uint32_t(queueFamily)

	var pool C.VkCommandPool
	result := C.vkCreateCommandPool(device.handle, poolInfo, nil, &pool)
	if result != C.VK_SUCCESS {
		return nil, errVulkanMsg(Result(result), "vkCreateCommandPool")
	}

	allocInfo := (*C.VkCommandBufferAllocateInfo)(C.calloc(1, C.sizeof_VkCommandBufferAllocateInfo))
	defer C.free(unsafe.Pointer(allocInfo))

	allocInfo.sType = C.VK_STRUCTURE_TYPE_COMMAND_BUFFER_ALLOCATE_INFO
	allocInfo.commandPool = pool
	allocInfo.level = C.VK_COMMAND_BUFFER_LEVEL_PRIMARY
	allocInfo.commandBufferCount = 1

	var handle C.VkCommandBuffer
	result = C.vkAllocateCommandBuffers(device.handle, allocInfo, &handle)
	if result != C.VK_SUCCESS {
		C.vkDestroyCommandPool(device.handle, pool, nil)
		return nil, errVulkanMsg(Result(result), "vkAllocateCommandBuffers")
	}

	cb := &CommandBuffer{
		pool:        pool,
		handle:      handle,
		device:      device,
		queueFamily: queueFamily,
	}
	deviceHandle := device.handle
	cb.node = newOwner("command buffer", device.log, func() {
		// Destroying the pool frees its buffers.
		C.vkDestroyCommandPool(deviceHandle, pool, nil)
	}, device.node)

	return cb, nil
}

func (cb *CommandBuffer) Retain()  { cb.node.retain() }
func (cb *CommandBuffer) Release() { cb.node.release() }

func (cb *CommandBuffer) QueueFamily() uint32 { return cb.queueFamily }

func (cb *CommandBuffer) reset() error {
	result := C.vkResetCommandBuffer(cb.handle, 0)
	if result != C.VK_SUCCESS {
		return errVulkanMsg(Result(result), "vkResetCommandBuffer")
	}
	return nil
}

func (cb *CommandBuffer) begin() error {
	beginInfo := (*C.VkCommandBufferBeginInfo)(C.calloc(1, C.sizeof_VkCommandBufferBeginInfo))
	defer C.free(unsafe.Pointer(beginInfo))

	beginInfo.sType = C.VK_STRUCTURE_TYPE_COMMAND_BUFFER_BEGIN_INFO

	result := C.vkBeginCommandBuffer(cb.handle, beginInfo)
	if result != C.VK_SUCCESS {
		return errVulkanMsg(Result(result), "vkBeginCommandBuffer")
	}
	return nil
}

func (cb *CommandBuffer) end() error {
	result := C.vkEndCommandBuffer(cb.handle)
	if result != C.VK_SUCCESS {
		return errVulkanMsg(Result(result), "vkEndCommandBuffer")
	}
	return nil
}
