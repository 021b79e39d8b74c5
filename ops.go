// ops.go
package vkvideo

/*
#include <vulkan/vulkan.h>
#include <stdlib.h>
*/
import "C"
import "unsafe"

// AddToCommandBuffer is implemented by every recordable operation. RunIn
// appends the operation's commands to the command buffer being built; the
// operations run on the GPU in the order they were recorded.
type AddToCommandBuffer interface {
	RunIn(builder *CommandBuilder) error
}

// Nop records nothing. Submitting it still exercises the full fence
// round trip.
type Nop struct{}

func (Nop) RunIn(builder *CommandBuilder) error { return nil }

// imageBarrier describes one synchronization2 image layout transition.
type imageBarrier struct {
	srcStageMask  PipelineStageFlags2
	srcAccessMask AccessFlags2
	dstStageMask  PipelineStageFlags2
	dstAccessMask AccessFlags2
	oldLayout     ImageLayout
	newLayout     ImageLayout
	srcQueue      uint32
	dstQueue      uint32
	image         C.VkImage
	aspectMask    ImageAspectFlags
	baseLayer     uint32
	layerCount    uint32
}

// bufferBarrier describes one synchronization2 buffer barrier.
type bufferBarrier struct {
	srcStageMask  PipelineStageFlags2
	srcAccessMask AccessFlags2
	dstStageMask  PipelineStageFlags2
	dstAccessMask AccessFlags2
	srcQueue      uint32
	dstQueue      uint32
	buffer        C.VkBuffer
	offset        uint64
	size          uint64
}

func (builder *CommandBuilder) pipelineBarrier(images []imageBarrier, buffers []bufferBarrier) {
	depInfo := (*C.VkDependencyInfo)(C.calloc(1, C.sizeof_VkDependencyInfo))
	defer C.free(unsafe.Pointer(depInfo))

	depInfo.sType = C.VK_STRUCTURE_TYPE_DEPENDENCY_INFO

	var cImages []C.VkImageMemoryBarrier2
	if len(images) > 0 {
		cImages = (*[1 << 28]C.VkImageMemoryBarrier2)(C.calloc(C.size_t(len(images)), C.sizeof_VkImageMemoryBarrier2))[:len(images):len(images)]
		defer C.free(unsafe.Pointer(&cImages[0]))

		for i, barrier := range images {
			cImages[i].sType = C.VK_STRUCTURE_TYPE_IMAGE_MEMORY_BARRIER_2
			cImages[i].srcStageMask = C.VkPipelineStageFlags2(barrier.srcStageMask)
			cImages[i].srcAccessMask = C.VkAccessFlags2(barrier.srcAccessMask)
			cImages[i].dstStageMask = C.VkPipelineStageFlags2(barrier.dstStageMask)
			cImages[i].dstAccessMask = C.VkAccessFlags2(barrier.dstAccessMask)
			cImages[i].oldLayout = C.VkImageLayout(barrier.oldLayout)
			cImages[i].newLayout = C.VkImageLayout(barrier.newLayout)
			cImages[i].srcQueueFamilyIndex = C.uint32_t(barrier.srcQueue)
			cImages[i].dstQueueFamilyIndex = C.uint32_t(barrier.dstQueue)
			cImages[i].image = barrier.image
			cImages[i].subresourceRange.aspectMask = C.VkImageAspectFlags(barrier.aspectMask)
			cImages[i].subresourceRange.baseMipLevel = 0
			cImages[i].subresourceRange.levelCount = 1
			cImages[i].subresourceRange.baseArrayLayer = C.uint32_t(barrier.baseLayer)
			layers := barrier.layerCount
			if layers == 0 {
				layers = 1
			}
			cImages[i].subresourceRange.layerCount = C.uint32_t(layers)
		}

		depInfo.imageMemoryBarrierCount = C.uint32_t(len(cImages))
		depInfo.pImageMemoryBarriers = &cImages[0]
	}

	var cBuffers []C.VkBufferMemoryBarrier2
	if len(buffers) > 0 {
		cBuffers = (*[1 << 28]C.VkBufferMemoryBarrier2)(C.calloc(C.size_t(len(buffers)), C.sizeof_VkBufferMemoryBarrier2))[:len(buffers):len(buffers)]
		defer C.free(unsafe.Pointer(&cBuffers[0]))

		for i, barrier := range buffers {
			cBuffers[i].sType = C.VK_STRUCTURE_TYPE_BUFFER_MEMORY_BARRIER_2
			cBuffers[i].srcStageMask = C.VkPipelineStageFlags2(barrier.srcStageMask)
			cBuffers[i].srcAccessMask = C.VkAccessFlags2(barrier.srcAccessMask)
			cBuffers[i].dstStageMask = C.VkPipelineStageFlags2(barrier.dstStageMask)
			cBuffers[i].dstAccessMask = C.VkAccessFlags2(barrier.dstAccessMask)
			cBuffers[i].srcQueueFamilyIndex = C.uint32_t(barrier.srcQueue)
			cBuffers[i].dstQueueFamilyIndex = C.uint32_t(barrier.dstQueue)
			cBuffers[i].buffer = barrier.buffer
			cBuffers[i].offset = C.VkDeviceSize(barrier.offset)
			size := C.VkDeviceSize(C.VK_WHOLE_SIZE)
			if barrier.size != 0 {
				size = C.VkDeviceSize(barrier.size)
			}
			cBuffers[i].size = size
		}

		depInfo.bufferMemoryBarrierCount = C.uint32_t(len(cBuffers))
		depInfo.pBufferMemoryBarriers = &cBuffers[0]
	}

	C.vkCmdPipelineBarrier2(builder.handle, depInfo)
}
