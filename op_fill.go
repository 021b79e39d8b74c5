// op_fill.go
package vkvideo

/*
#include <vulkan/vulkan.h>
*/
import "C"

// FillBuffer fills the whole target buffer with a repeated 32-bit pattern.
// The pattern lands in memory little-endian: 0x11223344 reads back as
// 44 33 22 11. Barriers make prior host writes visible to the fill and the
// fill visible to subsequent host reads.
type FillBuffer struct {
	Target *Buffer
	Data   uint32
}

func (op FillBuffer) RunIn(builder *CommandBuilder) error {
	builder.pipelineBarrier(nil, []bufferBarrier{{
		srcStageMask:  PIPELINE_STAGE_2_HOST_BIT,
		srcAccessMask: ACCESS_2_HOST_WRITE_BIT,
		dstStageMask:  PIPELINE_STAGE_2_CLEAR_BIT,
		dstAccessMask: ACCESS_2_TRANSFER_WRITE_BIT,
		srcQueue:      QUEUE_FAMILY_IGNORED,
		dstQueue:      QUEUE_FAMILY_IGNORED,
		buffer:        op.Target.handle,
	}})

	C.vkCmdFillBuffer(builder.handle, op.Target.handle, 0, C.VK_WHOLE_SIZE, C.uint32_t(op.Data))

	builder.pipelineBarrier(nil, []bufferBarrier{{
		srcStageMask:  PIPELINE_STAGE_2_CLEAR_BIT,
		srcAccessMask: ACCESS_2_TRANSFER_WRITE_BIT,
		dstStageMask:  PIPELINE_STAGE_2_HOST_BIT,
		dstAccessMask: ACCESS_2_HOST_READ_BIT,
		srcQueue:      QUEUE_FAMILY_IGNORED,
		dstQueue:      QUEUE_FAMILY_IGNORED,
		buffer:        op.Target.handle,
	}})

	return nil
}
