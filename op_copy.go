// op_copy.go
package vkvideo

/*
#include <vulkan/vulkan.h>
#include <stdlib.h>
*/
import "C"
import "unsafe"

// CopyBuffer2Buffer copies Source into Target in full. The caller sizes the
// buffers; the copy length is the source size.
type CopyBuffer2Buffer struct {
	Source *Buffer
	Target *Buffer
}

func (op CopyBuffer2Buffer) RunIn(builder *CommandBuilder) error {
	region := (*C.VkBufferCopy)(C.calloc(1, C.sizeof_VkBufferCopy))
	defer C.free(unsafe.Pointer(region))

	region.srcOffset = 0
	region.dstOffset = 0
	region.size = C.VkDeviceSize(op.Source.size)

	C.vkCmdCopyBuffer(builder.handle, op.Source.handle, op.Target.handle, 1, region)

	return nil
}

// CopyImage2Buffer reads one aspect of an image into a buffer. The image is
// taken from whatever layout it is in to GENERAL for the transfer and left
// in GENERAL afterwards, with the copied data made visible to the host.
type CopyImage2Buffer struct {
	Source *Image
	Target *Buffer

	// Aspect selects a plane for multi-planar formats. Zero means color.
	Aspect ImageAspectFlags
	// Extent of the copied region; divided sizes for chroma planes are the
	// caller's responsibility.
	Extent Extent3D
	// Layer of the source image to read.
	Layer uint32
}

func (op CopyImage2Buffer) RunIn(builder *CommandBuilder) error {
	aspect := op.Aspect
	if aspect == 0 {
		aspect = IMAGE_ASPECT_COLOR_BIT
	}

	builder.pipelineBarrier([]imageBarrier{{
		srcStageMask:  PIPELINE_STAGE_2_ALL_COMMANDS_BIT,
		srcAccessMask: ACCESS_2_MEMORY_WRITE_BIT,
		dstStageMask:  PIPELINE_STAGE_2_COPY_BIT,
		dstAccessMask: ACCESS_2_TRANSFER_READ_BIT,
		oldLayout:     IMAGE_LAYOUT_UNDEFINED,
		newLayout:     IMAGE_LAYOUT_GENERAL,
		srcQueue:      QUEUE_FAMILY_IGNORED,
		dstQueue:      QUEUE_FAMILY_IGNORED,
		image:         op.Source.handle,
		aspectMask:    aspect,
		baseLayer:     op.Layer,
		layerCount:    1,
	}}, nil)

	region := (*C.VkBufferImageCopy)(C.calloc(1, C.sizeof_VkBufferImageCopy))
	region.bufferOffset = 0
	region.bufferRowLength = 0
	region.bufferImageHeight = 0
	region.imageSubresource.aspectMask = C.VkImageAspectFlags(aspect)
	region.imageSubresource.mipLevel = 0
	region.imageSubresource.baseArrayLayer = C.uint32_t(op.Layer)
	region.imageSubresource.layerCount = 1
	region.imageExtent.width = C.uint32_t(op.Extent.Width)
	region.imageExtent.height = C.uint32_t(op.Extent.Height)
	region.imageExtent.depth = C.uint32_t(op.Extent.Depth)

	C.vkCmdCopyImageToBuffer(builder.handle, op.Source.handle, C.VK_IMAGE_LAYOUT_GENERAL, op.Target.handle, 1, region)
	C.free(unsafe.Pointer(region))

	builder.pipelineBarrier([]imageBarrier{{
		srcStageMask:  PIPELINE_STAGE_2_COPY_BIT,
		srcAccessMask: ACCESS_2_TRANSFER_READ_BIT,
		dstStageMask:  PIPELINE_STAGE_2_ALL_COMMANDS_BIT,
		dstAccessMask: ACCESS_2_MEMORY_READ_BIT,
		oldLayout:     IMAGE_LAYOUT_GENERAL,
		newLayout:     IMAGE_LAYOUT_GENERAL,
		srcQueue:      QUEUE_FAMILY_IGNORED,
		dstQueue:      QUEUE_FAMILY_IGNORED,
		image:         op.Source.handle,
		aspectMask:    aspect,
		baseLayer:     op.Layer,
		layerCount:    1,
	}}, []bufferBarrier{{
		srcStageMask:  PIPELINE_STAGE_2_COPY_BIT,
		srcAccessMask: ACCESS_2_TRANSFER_WRITE_BIT,
		dstStageMask:  PIPELINE_STAGE_2_HOST_BIT,
		dstAccessMask: ACCESS_2_HOST_READ_BIT,
		srcQueue:      QUEUE_FAMILY_IGNORED,
		dstQueue:      QUEUE_FAMILY_IGNORED,
		buffer:        op.Target.handle,
	}})

	return nil
}
