// allocation.go
package vkvideo

/*
#include <vulkan/vulkan.h>
#include <stdlib.h>
#include <string.h>
*/
import "C"
import "unsafe"

// Allocation is a block of device memory. Buffers and images bind against
// it; the allocation stays alive until the last of them releases it.
type Allocation struct {
	handle C.VkDeviceMemory
	device *Device
	node   *owner
	size   uint64
	index  MemoryTypeIndex
}

func NewAllocation(device *Device, size uint64, index MemoryTypeIndex) (*Allocation, error) {
	cInfo := (*C.VkMemoryAllocateInfo)(C.calloc(1, C.sizeof_VkMemoryAllocateInfo))
	defer C.free(unsafe.Pointer(cInfo))

	cInfo.sType = C.VK_STRUCTURE_TYPE_MEMORY_ALLOCATE_INFO
	cInfo.allocationSize = C.VkDeviceSize(size)
	cInfo.memoryTypeIndex = C.uint32_t(index)

	var handle C.VkDeviceMemory
	result := C.vkAllocateMemory(device.handle, cInfo, nil, &handle)
	if result != C.VK_SUCCESS {
		return nil, errVulkanMsg(Result(result), "vkAllocateMemory")
	}

	return wrapAllocation(device, handle, size, index), nil
}

// NewAllocationFromFd imports externally exported device memory through an
// opaque file descriptor. The resulting allocation follows the same
// ownership rules as a native one.
func NewAllocationFromFd(device *Device, size uint64, index MemoryTypeIndex, fd int) (*Allocation, error) {
	importInfo := (*C.VkImportMemoryFdInfoKHR)(C.calloc(1, C.sizeof_VkImportMemoryFdInfoKHR))
	defer C.free(unsafe.Pointer(importInfo))

	importInfo.sType = C.VK_STRUCTURE_TYPE_IMPORT_MEMORY_FD_INFO_KHR
	importInfo.handleType = C.VK_EXTERNAL_MEMORY_HANDLE_TYPE_OPAQUE_FD_BIT
	importInfo.fd = C.int(fd)

	cInfo := (*C.VkMemoryAllocateInfo)(C.calloc(1, C.sizeof_VkMemoryAllocateInfo))
	defer C.free(unsafe.Pointer(cInfo))

	cInfo.sType = C.VK_STRUCTURE_TYPE_MEMORY_ALLOCATE_INFO
	cInfo.pNext = unsafe.Pointer(importInfo)
	cInfo.allocationSize = C.VkDeviceSize(size)
	cInfo.memoryTypeIndex = C.uint32_t(index)

	var handle C.VkDeviceMemory
	result := C.vkAllocateMemory(device.handle, cInfo, nil, &handle)
	if result != C.VK_SUCCESS {
		return nil, errVulkanMsg(Result(result), "vkAllocateMemory (import)")
	}

	return wrapAllocation(device, handle, size, index), nil
}

func wrapAllocation(device *Device, handle C.VkDeviceMemory, size uint64, index MemoryTypeIndex) *Allocation {
	allocation := &Allocation{
		handle: handle,
		device: device,
		size:   size,
		index:  index,
	}
	deviceHandle := device.handle
	allocation.node = newOwner("allocation", device.log, func() {
		C.vkFreeMemory(deviceHandle, handle, nil)
	}, device.node)
	return allocation
}

func (allocation *Allocation) Retain()  { allocation.node.retain() }
func (allocation *Allocation) Release() { allocation.node.release() }

func (allocation *Allocation) Size() uint64 { return allocation.size }

func (allocation *Allocation) Device() *Device { return allocation.device }

func (allocation *Allocation) mapMemory(offset, size uint64) (unsafe.Pointer, error) {
	var ptr unsafe.Pointer
	result := C.vkMapMemory(allocation.device.handle, allocation.handle, C.VkDeviceSize(offset), C.VkDeviceSize(size), 0, &ptr)
	if result != C.VK_SUCCESS {
		return nil, errVulkanMsg(Result(result), "vkMapMemory")
	}
	return ptr, nil
}

func (allocation *Allocation) unmapMemory() {
	C.vkUnmapMemory(allocation.device.handle, allocation.handle)
}

func (allocation *Allocation) flush(offset, size uint64) error {
	cRange := (*C.VkMappedMemoryRange)(C.calloc(1, C.sizeof_VkMappedMemoryRange))
	defer C.free(unsafe.Pointer(cRange))

	cRange.sType = C.VK_STRUCTURE_TYPE_MAPPED_MEMORY_RANGE
	cRange.memory = allocation.handle
	cRange.offset = C.VkDeviceSize(offset)
	cRange.size = C.VkDeviceSize(size)

	result := C.vkFlushMappedMemoryRanges(allocation.device.handle, 1, cRange)
	if result != C.VK_SUCCESS {
		return errVulkanMsg(Result(result), "vkFlushMappedMemoryRanges")
	}
	return nil
}
