// buffer.go
package vkvideo

/*
#include <vulkan/vulkan.h>
#include <stdlib.h>
#include <string.h>
*/
import "C"
import "unsafe"

// BufferInfo configures buffer creation.
type BufferInfo struct {
	size   uint64
	offset uint64
}

func NewBufferInfo() *BufferInfo {
	return &BufferInfo{}
}

func (info *BufferInfo) Size(size uint64) *BufferInfo {
	info.size = size
	return info
}

// Offset places the buffer at a byte offset inside its allocation.
func (info *BufferInfo) Offset(offset uint64) *BufferInfo {
	info.offset = offset
	return info
}

// Buffer is device memory visible as a linear range. It is bound to its
// allocation at creation and retains the allocation (and through it the
// device) until released.
type Buffer struct {
	handle     C.VkBuffer
	allocation *Allocation
	node       *owner
	size       uint64
	offset     uint64
}

// NewBuffer creates a general-purpose buffer: transfer both ways, uniform
// and storage use.
func NewBuffer(allocation *Allocation, info *BufferInfo) (*Buffer, error) {
	usage := BUFFER_USAGE_TRANSFER_SRC_BIT |
		BUFFER_USAGE_TRANSFER_DST_BIT |
		BUFFER_USAGE_UNIFORM_BUFFER_BIT |
		BUFFER_USAGE_STORAGE_BUFFER_BIT
	return newBuffer(allocation, info, usage, false)
}

// NewVideoDecodeBuffer creates a bitstream source buffer for the H.264
// decode profile.
func NewVideoDecodeBuffer(allocation *Allocation, info *BufferInfo) (*Buffer, error) {
	usage := BUFFER_USAGE_TRANSFER_SRC_BIT |
		BUFFER_USAGE_TRANSFER_DST_BIT |
		BUFFER_USAGE_VIDEO_DECODE_SRC_BIT_KHR
	return newBuffer(allocation, info, usage, true)
}

func newBuffer(allocation *Allocation, info *BufferInfo, usage BufferUsageFlags, decodeProfile bool) (*Buffer, error) {
	device := allocation.device

	cInfo := (*C.VkBufferCreateInfo)(C.calloc(1, C.sizeof_VkBufferCreateInfo))
	defer C.free(unsafe.Pointer(cInfo))

	cInfo.sType = C.VK_STRUCTURE_TYPE_BUFFER_CREATE_INFO
	cInfo.size = C.VkDeviceSize(info.size)
	cInfo.usage = C.VkBufferUsageFlags(usage)
	cInfo.sharingMode = C.VK_SHARING_MODE_EXCLUSIVE

	var profiles *decodeProfileList
	if decodeProfile {
		profiles = newDecodeProfileList()
		defer profiles.free()
		cInfo.pNext = profiles.ptr()
	}

	var handle C.VkBuffer
	result := C.vkCreateBuffer(device.handle, cInfo, nil, &handle)
	if result != C.VK_SUCCESS {
		return nil, errVulkanMsg(Result(result), "vkCreateBuffer")
	}

	result = C.vkBindBufferMemory(device.handle, handle, allocation.handle, C.VkDeviceSize(info.offset))
	if result != C.VK_SUCCESS {
		C.vkDestroyBuffer(device.handle, handle, nil)
		return nil, errVulkanMsg(Result(result), "vkBindBufferMemory")
	}

	buffer := &Buffer{
		handle:     handle,
		allocation: allocation,
		size:       info.size,
		offset:     info.offset,
	}
	deviceHandle := device.handle
	buffer.node = newOwner("buffer", device.log, func() {
		C.vkDestroyBuffer(deviceHandle, handle, nil)
	}, allocation.node)

	return buffer, nil
}

func (buffer *Buffer) Retain()  { buffer.node.retain() }
func (buffer *Buffer) Release() { buffer.node.release() }

func (buffer *Buffer) Size() uint64 { return buffer.size }

// Upload copies data into the buffer through a transient mapping and
// flushes the written range.
func (buffer *Buffer) Upload(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	ptr, err := buffer.allocation.mapMemory(buffer.offset, uint64(len(data)))
	if err != nil {
		return err
	}
	defer buffer.allocation.unmapMemory()

	C.memcpy(ptr, unsafe.Pointer(&data[0]), C.size_t(len(data)))

	return buffer.allocation.flush(buffer.offset, WHOLE_SIZE)
}

// DownloadInto reads the buffer back into dst, up to len(dst) bytes.
func (buffer *Buffer) DownloadInto(dst []byte) error {
	if len(dst) == 0 {
		return nil
	}
	ptr, err := buffer.allocation.mapMemory(buffer.offset, uint64(len(dst)))
	if err != nil {
		return err
	}
	defer buffer.allocation.unmapMemory()

	C.memcpy(unsafe.Pointer(&dst[0]), ptr, C.size_t(len(dst)))
	return nil
}
