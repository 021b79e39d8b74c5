// op_decode_h264.go
package vkvideo

/*
#include <vulkan/vulkan.h>
#include <stdlib.h>

// StdVideo flag structs are C bitfields, which cgo cannot address from Go.
static void setDecodeH264PictureInfoFlags(StdVideoDecodeH264PictureInfo* info, uint32_t isIntra, uint32_t isReference) {
	info->flags.is_intra = isIntra;
	info->flags.is_reference = isReference;
}

static void setDecodeH264ReferenceInfoFlags(StdVideoDecodeH264ReferenceInfo* info, uint32_t usedForLongTerm) {
	info->flags.used_for_long_term_reference = usedForLongTerm;
}
*/
import "C"
import "unsafe"

// DecodeInfo addresses the slice of the bitstream buffer holding the frame
// to decode. Offset must honor the device's bitstream offset alignment.
type DecodeInfo struct {
	Offset uint64
	Size   uint64
}

// DecodeH264 decodes one intra frame from a bitstream buffer into the
// target image. DpbView names the image backing DPB slot 0; leave it nil to
// let the target double as its own reconstruction slot. The command
// sequence is fixed: barriers in, begin coding, session reset on first use,
// decode, end coding, barriers out.
type DecodeH264 struct {
	Parameters *VideoSessionParameters
	Bitstream  *Buffer
	TargetView *ImageView
	DpbView    *ImageView
	Info       DecodeInfo
}

func (op DecodeH264) RunIn(builder *CommandBuilder) error {
	session := op.Parameters.session
	target := op.TargetView.image
	extent := target.Extent()

	dpbView := op.DpbView
	if dpbView == nil {
		dpbView = op.TargetView
	}
	dpb := dpbView.image

	// Target and DPB become the decoder's output and reconstruction slot;
	// the bitstream becomes decode-readable.
	barriersIn := []imageBarrier{{
		srcStageMask:  PIPELINE_STAGE_2_NONE,
		srcAccessMask: ACCESS_2_NONE,
		dstStageMask:  PIPELINE_STAGE_2_VIDEO_DECODE_BIT_KHR,
		dstAccessMask: ACCESS_2_VIDEO_DECODE_WRITE_BIT_KHR,
		oldLayout:     IMAGE_LAYOUT_UNDEFINED,
		newLayout:     IMAGE_LAYOUT_VIDEO_DECODE_DPB_KHR,
		srcQueue:      QUEUE_FAMILY_IGNORED,
		dstQueue:      QUEUE_FAMILY_IGNORED,
		image:         target.handle,
		aspectMask:    IMAGE_ASPECT_COLOR_BIT,
	}}
	if dpb != target {
		dpbBarrier := barriersIn[0]
		dpbBarrier.image = dpb.handle
		barriersIn = append(barriersIn, dpbBarrier)
	}
	builder.pipelineBarrier(barriersIn, []bufferBarrier{{
		srcStageMask:  PIPELINE_STAGE_2_HOST_BIT,
		srcAccessMask: ACCESS_2_HOST_WRITE_BIT,
		dstStageMask:  PIPELINE_STAGE_2_VIDEO_DECODE_BIT_KHR,
		dstAccessMask: ACCESS_2_VIDEO_DECODE_READ_BIT_KHR,
		srcQueue:      QUEUE_FAMILY_IGNORED,
		dstQueue:      QUEUE_FAMILY_IGNORED,
		buffer:        op.Bitstream.handle,
		offset:        op.Info.Offset,
		size:          op.Info.Size,
	}})

	stdRef := (*C.StdVideoDecodeH264ReferenceInfo)(C.calloc(1, C.sizeof_StdVideoDecodeH264ReferenceInfo))
	defer C.free(unsafe.Pointer(stdRef))
	C.setDecodeH264ReferenceInfoFlags(stdRef, 1)

	dpbSlot := (*C.VkVideoDecodeH264DpbSlotInfoKHR)(C.calloc(1, C.sizeof_VkVideoDecodeH264DpbSlotInfoKHR))
	defer C.free(unsafe.Pointer(dpbSlot))
	dpbSlot.sType = C.VK_STRUCTURE_TYPE_VIDEO_DECODE_H264_DPB_SLOT_INFO_KHR
	dpbSlot.pStdReferenceInfo = stdRef

	pictureResource := (*C.VkVideoPictureResourceInfoKHR)(C.calloc(1, C.sizeof_VkVideoPictureResourceInfoKHR))
	defer C.free(unsafe.Pointer(pictureResource))
	pictureResource.sType = C.VK_STRUCTURE_TYPE_VIDEO_PICTURE_RESOURCE_INFO_KHR
	pictureResource.codedExtent.width = C.uint32_t(extent.Width)
	pictureResource.codedExtent.height = C.uint32_t(extent.Height)
	pictureResource.baseArrayLayer = 0
	pictureResource.imageViewBinding = op.TargetView.handle

	dpbResource := (*C.VkVideoPictureResourceInfoKHR)(C.calloc(1, C.sizeof_VkVideoPictureResourceInfoKHR))
	defer C.free(unsafe.Pointer(dpbResource))
	*dpbResource = *pictureResource
	dpbResource.imageViewBinding = dpbView.handle

	referenceSlot := (*C.VkVideoReferenceSlotInfoKHR)(C.calloc(1, C.sizeof_VkVideoReferenceSlotInfoKHR))
	defer C.free(unsafe.Pointer(referenceSlot))
	referenceSlot.sType = C.VK_STRUCTURE_TYPE_VIDEO_REFERENCE_SLOT_INFO_KHR
	referenceSlot.pNext = unsafe.Pointer(dpbSlot)
	referenceSlot.slotIndex = 0
	referenceSlot.pPictureResource = dpbResource

	beginInfo := (*C.VkVideoBeginCodingInfoKHR)(C.calloc(1, C.sizeof_VkVideoBeginCodingInfoKHR))
	defer C.free(unsafe.Pointer(beginInfo))
	beginInfo.sType = C.VK_STRUCTURE_TYPE_VIDEO_BEGIN_CODING_INFO_KHR
	beginInfo.videoSession = session.handle
	beginInfo.videoSessionParameters = op.Parameters.handle

	stdPicture := (*C.StdVideoDecodeH264PictureInfo)(C.calloc(1, C.sizeof_StdVideoDecodeH264PictureInfo))
	defer C.free(unsafe.Pointer(stdPicture))
	C.setDecodeH264PictureInfoFlags(stdPicture, 1, 1)
	stdPicture.seq_parameter_set_id = 0
	stdPicture.pic_parameter_set_id = 0
	stdPicture.frame_num = 0
	stdPicture.idr_pic_id = 0

	sliceOffsets := (*C.uint32_t)(C.calloc(1, C.sizeof_uint32_t))
	defer C.free(unsafe.Pointer(sliceOffsets))

	h264Picture := (*C.VkVideoDecodeH264PictureInfoKHR)(C.calloc(1, C.sizeof_VkVideoDecodeH264PictureInfoKHR))
	defer C.free(unsafe.Pointer(h264Picture))
	h264Picture.sType = C.VK_STRUCTURE_TYPE_VIDEO_DECODE_H264_PICTURE_INFO_KHR
	h264Picture.pStdPictureInfo = stdPicture
	h264Picture.sliceCount = 1
	h264Picture.pSliceOffsets = sliceOffsets

	decodeInfo := (*C.VkVideoDecodeInfoKHR)(C.calloc(1, C.sizeof_VkVideoDecodeInfoKHR))
	defer C.free(unsafe.Pointer(decodeInfo))
	decodeInfo.sType = C.VK_STRUCTURE_TYPE_VIDEO_DECODE_INFO_KHR
	decodeInfo.pNext = unsafe.Pointer(h264Picture)
	decodeInfo.srcBuffer = op.Bitstream.handle
	decodeInfo.srcBufferOffset = C.VkDeviceSize(op.Info.Offset)
	decodeInfo.srcBufferRange = C.VkDeviceSize(op.Info.Size)
	decodeInfo.dstPictureResource = *pictureResource
	decodeInfo.pSetupReferenceSlot = referenceSlot

	videoCmdBegin(builder.handle, beginInfo)

	if !session.resetDone {
		controlInfo := (*C.VkVideoCodingControlInfoKHR)(C.calloc(1, C.sizeof_VkVideoCodingControlInfoKHR))
		controlInfo.sType = C.VK_STRUCTURE_TYPE_VIDEO_CODING_CONTROL_INFO_KHR
		controlInfo.flags = C.VK_VIDEO_CODING_CONTROL_RESET_BIT_KHR
		videoCmdControl(builder.handle, controlInfo)
		C.free(unsafe.Pointer(controlInfo))
		session.resetDone = true
	}

	videoCmdDecode(builder.handle, decodeInfo)

	endInfo := (*C.VkVideoEndCodingInfoKHR)(C.calloc(1, C.sizeof_VkVideoEndCodingInfoKHR))
	defer C.free(unsafe.Pointer(endInfo))
	endInfo.sType = C.VK_STRUCTURE_TYPE_VIDEO_END_CODING_INFO_KHR
	videoCmdEnd(builder.handle, endInfo)

	// Decoded picture becomes generally readable, the bitstream buffer is
	// handed back.
	barriersOut := []imageBarrier{{
		srcStageMask:  PIPELINE_STAGE_2_VIDEO_DECODE_BIT_KHR,
		srcAccessMask: ACCESS_2_VIDEO_DECODE_WRITE_BIT_KHR,
		dstStageMask:  PIPELINE_STAGE_2_BOTTOM_OF_PIPE_BIT,
		dstAccessMask: ACCESS_2_NONE,
		oldLayout:     IMAGE_LAYOUT_VIDEO_DECODE_DPB_KHR,
		newLayout:     IMAGE_LAYOUT_GENERAL,
		srcQueue:      QUEUE_FAMILY_IGNORED,
		dstQueue:      QUEUE_FAMILY_IGNORED,
		image:         target.handle,
		aspectMask:    IMAGE_ASPECT_COLOR_BIT,
	}}
	if dpb != target {
		dpbBarrier := barriersOut[0]
		dpbBarrier.image = dpb.handle
		barriersOut = append(barriersOut, dpbBarrier)
	}
	builder.pipelineBarrier(barriersOut, []bufferBarrier{{
		srcStageMask:  PIPELINE_STAGE_2_VIDEO_DECODE_BIT_KHR,
		srcAccessMask: ACCESS_2_VIDEO_DECODE_READ_BIT_KHR,
		dstStageMask:  PIPELINE_STAGE_2_TOP_OF_PIPE_BIT,
		dstAccessMask: ACCESS_2_NONE,
		srcQueue:      QUEUE_FAMILY_IGNORED,
		dstQueue:      QUEUE_FAMILY_IGNORED,
		buffer:        op.Bitstream.handle,
		offset:        op.Info.Offset,
		size:          op.Info.Size,
	}})

	return nil
}
