// h264_params.go
package vkvideo

/*
#include <vulkan/vulkan.h>
#include <stdlib.h>

// The StdVideo flag structs are C bitfields, which cgo cannot address from
// Go. Each setter unpacks a mask built by the spsFlagMask/spsVuiFlagMask/
// ppsFlagMask helpers below; keep the bit order in sync.

static void setStdSpsFlags(StdVideoH264SequenceParameterSet* sps, uint32_t mask) {
	sps->flags.constraint_set0_flag = (mask >> 0) & 1;
	sps->flags.constraint_set1_flag = (mask >> 1) & 1;
	sps->flags.constraint_set2_flag = (mask >> 2) & 1;
	sps->flags.constraint_set3_flag = (mask >> 3) & 1;
	sps->flags.constraint_set4_flag = (mask >> 4) & 1;
	sps->flags.constraint_set5_flag = (mask >> 5) & 1;
	sps->flags.direct_8x8_inference_flag = (mask >> 6) & 1;
	sps->flags.mb_adaptive_frame_field_flag = (mask >> 7) & 1;
	sps->flags.frame_mbs_only_flag = (mask >> 8) & 1;
	sps->flags.delta_pic_order_always_zero_flag = (mask >> 9) & 1;
	sps->flags.separate_colour_plane_flag = (mask >> 10) & 1;
	sps->flags.gaps_in_frame_num_value_allowed_flag = (mask >> 11) & 1;
	sps->flags.qpprime_y_zero_transform_bypass_flag = (mask >> 12) & 1;
	sps->flags.frame_cropping_flag = (mask >> 13) & 1;
	sps->flags.seq_scaling_matrix_present_flag = (mask >> 14) & 1;
	sps->flags.vui_parameters_present_flag = (mask >> 15) & 1;
}

static void setStdSpsVuiFlags(StdVideoH264SequenceParameterSetVui* vui, uint32_t mask) {
	vui->flags.aspect_ratio_info_present_flag = (mask >> 0) & 1;
	vui->flags.overscan_info_present_flag = (mask >> 1) & 1;
	vui->flags.overscan_appropriate_flag = (mask >> 2) & 1;
	vui->flags.video_signal_type_present_flag = (mask >> 3) & 1;
	vui->flags.video_full_range_flag = (mask >> 4) & 1;
	vui->flags.color_description_present_flag = (mask >> 5) & 1;
	vui->flags.chroma_loc_info_present_flag = (mask >> 6) & 1;
	vui->flags.timing_info_present_flag = (mask >> 7) & 1;
	vui->flags.fixed_frame_rate_flag = (mask >> 8) & 1;
	vui->flags.bitstream_restriction_flag = (mask >> 9) & 1;
	vui->flags.nal_hrd_parameters_present_flag = (mask >> 10) & 1;
	vui->flags.vcl_hrd_parameters_present_flag = (mask >> 11) & 1;
}

static void setStdPpsFlags(StdVideoH264PictureParameterSet* pps, uint32_t mask) {
	pps->flags.transform_8x8_mode_flag = (mask >> 0) & 1;
	pps->flags.redundant_pic_cnt_present_flag = (mask >> 1) & 1;
	pps->flags.constrained_intra_pred_flag = (mask >> 2) & 1;
	pps->flags.deblocking_filter_control_present_flag = (mask >> 3) & 1;
	pps->flags.weighted_pred_flag = (mask >> 4) & 1;
	pps->flags.bottom_field_pic_order_in_frame_present_flag = (mask >> 5) & 1;
	pps->flags.entropy_coding_mode_flag = (mask >> 6) & 1;
	pps->flags.pic_scaling_matrix_present_flag = (mask >> 7) & 1;
}
*/
import "C"
import "unsafe"

// Session parameters capacity reported to the driver.
const (
	maxStdSPSCount = maxSpsID + 1
	maxStdPPSCount = maxPpsID + 1
)

// Bit positions for spsFlagMask, matching setStdSpsFlags.
const (
	spsFlagConstraintSet0 uint32 = 1 << iota
	spsFlagConstraintSet1
	spsFlagConstraintSet2
	spsFlagConstraintSet3
	spsFlagConstraintSet4
	spsFlagConstraintSet5
	spsFlagDirect8x8Inference
	spsFlagMbAdaptiveFrameField
	spsFlagFrameMbsOnly
	spsFlagDeltaPicOrderAlwaysZero
	spsFlagSeparateColourPlane
	spsFlagGapsInFrameNumValueAllowed
	spsFlagQpprimeYZeroTransformBypass
	spsFlagFrameCropping
	spsFlagSeqScalingMatrixPresent
	spsFlagVuiParametersPresent
)

// Bit positions for spsVuiFlagMask, matching setStdSpsVuiFlags.
const (
	vuiFlagAspectRatioInfoPresent uint32 = 1 << iota
	vuiFlagOverscanInfoPresent
	vuiFlagOverscanAppropriate
	vuiFlagVideoSignalTypePresent
	vuiFlagVideoFullRange
	vuiFlagColorDescriptionPresent
	vuiFlagChromaLocInfoPresent
	vuiFlagTimingInfoPresent
	vuiFlagFixedFrameRate
	vuiFlagBitstreamRestriction
	vuiFlagNalHrdParametersPresent
	vuiFlagVclHrdParametersPresent
)

// Bit positions for ppsFlagMask, matching setStdPpsFlags.
const (
	ppsFlagTransform8x8Mode uint32 = 1 << iota
	ppsFlagRedundantPicCntPresent
	ppsFlagConstrainedIntraPred
	ppsFlagDeblockingFilterControlPresent
	ppsFlagWeightedPred
	ppsFlagBottomFieldPicOrderInFramePresent
	ppsFlagEntropyCodingMode
	ppsFlagPicScalingMatrixPresent
)

func spsFlagMask(sps *SPS) uint32 {
	var mask uint32
	constraintBits := [6]uint32{
		spsFlagConstraintSet0, spsFlagConstraintSet1, spsFlagConstraintSet2,
		spsFlagConstraintSet3, spsFlagConstraintSet4, spsFlagConstraintSet5,
	}
	for i, set := range sps.ConstraintFlags {
		if set {
			mask |= constraintBits[i]
		}
	}
	if sps.Direct8x8Inference {
		mask |= spsFlagDirect8x8Inference
	}
	if sps.FrameMbsOnly {
		mask |= spsFlagFrameMbsOnly
	} else if sps.MbAdaptiveFrameField {
		mask |= spsFlagMbAdaptiveFrameField
	}
	if sps.DeltaPicOrderAlwaysZero {
		mask |= spsFlagDeltaPicOrderAlwaysZero
	}
	if sps.SeparateColourPlane {
		mask |= spsFlagSeparateColourPlane
	}
	if sps.GapsInFrameNumValueAllowed {
		mask |= spsFlagGapsInFrameNumValueAllowed
	}
	if sps.QpprimeYZeroTransformBypass {
		mask |= spsFlagQpprimeYZeroTransformBypass
	}
	if sps.FrameCropping {
		mask |= spsFlagFrameCropping
	}
	if sps.ScalingMatrix != nil {
		mask |= spsFlagSeqScalingMatrixPresent
	}
	if sps.VUI != nil {
		mask |= spsFlagVuiParametersPresent
	}
	return mask
}

func spsVuiFlagMask(vui *VUI) uint32 {
	var mask uint32
	if vui.AspectRatioInfoPresent {
		mask |= vuiFlagAspectRatioInfoPresent
	}
	if vui.OverscanInfoPresent && vui.OverscanAppropriate {
		mask |= vuiFlagOverscanAppropriate
	}
	if vui.VideoSignalTypePresent {
		mask |= vuiFlagVideoSignalTypePresent
		if vui.VideoFullRange {
			mask |= vuiFlagVideoFullRange
		}
		if vui.ColourDescriptionPresent {
			mask |= vuiFlagColorDescriptionPresent
		}
	}
	if vui.ChromaLocInfoPresent {
		mask |= vuiFlagChromaLocInfoPresent
	}
	if vui.TimingInfoPresent {
		mask |= vuiFlagTimingInfoPresent
		if vui.FixedFrameRate {
			mask |= vuiFlagFixedFrameRate
		}
	}
	if vui.BitstreamRestriction != nil {
		mask |= vuiFlagBitstreamRestriction
	}
	if vui.NalHrd != nil {
		mask |= vuiFlagNalHrdParametersPresent
	}
	if vui.VclHrd != nil {
		mask |= vuiFlagVclHrdParametersPresent
	}
	return mask
}

func ppsFlagMask(pps *PPS) uint32 {
	var mask uint32
	if pps.Transform8x8Mode {
		mask |= ppsFlagTransform8x8Mode
	}
	if pps.RedundantPicCntPresent {
		mask |= ppsFlagRedundantPicCntPresent
	}
	if pps.ConstrainedIntraPred {
		mask |= ppsFlagConstrainedIntraPred
	}
	if pps.DeblockingFilterControlPresent {
		mask |= ppsFlagDeblockingFilterControlPresent
	}
	if pps.WeightedPred {
		mask |= ppsFlagWeightedPred
	}
	if pps.BottomFieldPicOrderInFramePresent {
		mask |= ppsFlagBottomFieldPicOrderInFramePresent
	}
	if pps.EntropyCodingMode {
		mask |= ppsFlagEntropyCodingMode
	}
	if pps.PicScalingMatrix != nil {
		mask |= ppsFlagPicScalingMatrixPresent
	}
	return mask
}

// paramArena owns every C allocation made while building the create info
// chain. All pointers stay valid until free runs, after the driver call
// copied what it needs.
type paramArena struct {
	pointers []unsafe.Pointer
}

func (arena *paramArena) alloc(count int, size C.size_t) unsafe.Pointer {
	ptr := C.calloc(C.size_t(count), size)
	arena.pointers = append(arena.pointers, ptr)
	return ptr
}

func (arena *paramArena) free() {
	for _, ptr := range arena.pointers {
		C.free(ptr)
	}
	arena.pointers = nil
}

// runWithCreateInfo builds the full create info chain for every parameter
// set the inspector has seen, calls f with it, and releases the chain. The
// chain nests several levels deep, so it is built leaves first: HRD, then
// scaling lists and VUI, then the Std SPS/PPS arrays, then the add info.
func (inspector *StreamInspector) runWithCreateInfo(f func(*C.VkVideoSessionParametersCreateInfoKHR) error) error {
	arena := &paramArena{}
	defer arena.free()

	spsList := inspector.allSPS()
	ppsList := inspector.allPPS()

	addInfo := (*C.VkVideoDecodeH264SessionParametersAddInfoKHR)(arena.alloc(1, C.sizeof_VkVideoDecodeH264SessionParametersAddInfoKHR))
	addInfo.sType = C.VK_STRUCTURE_TYPE_VIDEO_DECODE_H264_SESSION_PARAMETERS_ADD_INFO_KHR

	if len(spsList) > 0 {
		stdSPS := (*[1 << 20]C.StdVideoH264SequenceParameterSet)(arena.alloc(len(spsList), C.sizeof_StdVideoH264SequenceParameterSet))[:len(spsList):len(spsList)]
		for i, sps := range spsList {
			fillStdSPS(arena, &stdSPS[i], sps)
		}
		addInfo.stdSPSCount = C.uint32_t(len(spsList))
		addInfo.pStdSPSs = &stdSPS[0]
	}

	if len(ppsList) > 0 {
		stdPPS := (*[1 << 20]C.StdVideoH264PictureParameterSet)(arena.alloc(len(ppsList), C.sizeof_StdVideoH264PictureParameterSet))[:len(ppsList):len(ppsList)]
		for i, pps := range ppsList {
			fillStdPPS(arena, &stdPPS[i], pps)
		}
		addInfo.stdPPSCount = C.uint32_t(len(ppsList))
		addInfo.pStdPPSs = &stdPPS[0]
	}

	h264Info := (*C.VkVideoDecodeH264SessionParametersCreateInfoKHR)(arena.alloc(1, C.sizeof_VkVideoDecodeH264SessionParametersCreateInfoKHR))
	h264Info.sType = C.VK_STRUCTURE_TYPE_VIDEO_DECODE_H264_SESSION_PARAMETERS_CREATE_INFO_KHR
	h264Info.maxStdSPSCount = maxStdSPSCount
	h264Info.maxStdPPSCount = maxStdPPSCount
	h264Info.pParametersAddInfo = addInfo

	createInfo := (*C.VkVideoSessionParametersCreateInfoKHR)(arena.alloc(1, C.sizeof_VkVideoSessionParametersCreateInfoKHR))
	createInfo.sType = C.VK_STRUCTURE_TYPE_VIDEO_SESSION_PARAMETERS_CREATE_INFO_KHR
	createInfo.pNext = unsafe.Pointer(h264Info)

	return f(createInfo)
}

func fillStdSPS(arena *paramArena, std *C.StdVideoH264SequenceParameterSet, sps *SPS) {
	C.setStdSpsFlags(std, C.uint32_t(spsFlagMask(sps)))

	std.profile_idc = C.StdVideoH264ProfileIdc(sps.ProfileIdc)
	std.level_idc = C.StdVideoH264LevelIdc(sps.LevelIdc)
	std.chroma_format_idc = C.StdVideoH264ChromaFormatIdc(sps.ChromaFormatIdc)
	std.seq_parameter_set_id = C.uint8_t(sps.ID)
	std.bit_depth_luma_minus8 = C.uint8_t(sps.BitDepthLumaMinus8)
	std.bit_depth_chroma_minus8 = C.uint8_t(sps.BitDepthChromaMinus8)
	std.log2_max_frame_num_minus4 = C.uint8_t(sps.Log2MaxFrameNumMinus4)
	std.pic_order_cnt_type = C.StdVideoH264PocType(sps.PicOrderCntType)
	std.offset_for_non_ref_pic = C.int32_t(sps.OffsetForNonRefPic)
	std.offset_for_top_to_bottom_field = C.int32_t(sps.OffsetForTopToBottomField)
	std.log2_max_pic_order_cnt_lsb_minus4 = C.uint8_t(sps.Log2MaxPicOrderCntLsbMinus4)
	std.max_num_ref_frames = C.uint8_t(sps.MaxNumRefFrames)
	std.pic_width_in_mbs_minus1 = C.uint32_t(sps.PicWidthInMbsMinus1)
	std.pic_height_in_map_units_minus1 = C.uint32_t(sps.PicHeightInMapUnitsMinus1)
	std.frame_crop_left_offset = C.uint32_t(sps.FrameCropLeftOffset)
	std.frame_crop_right_offset = C.uint32_t(sps.FrameCropRightOffset)
	std.frame_crop_top_offset = C.uint32_t(sps.FrameCropTopOffset)
	std.frame_crop_bottom_offset = C.uint32_t(sps.FrameCropBottomOffset)

	if len(sps.OffsetsForRefFrame) > 0 {
		offsets := (*[1 << 20]C.int32_t)(arena.alloc(len(sps.OffsetsForRefFrame), C.sizeof_int32_t))[:len(sps.OffsetsForRefFrame):len(sps.OffsetsForRefFrame)]
		for i, offset := range sps.OffsetsForRefFrame {
			offsets[i] = C.int32_t(offset)
		}
		std.num_ref_frames_in_pic_order_cnt_cycle = C.uint8_t(len(offsets))
		std.pOffsetForRefFrame = &offsets[0]
	}

	if sps.ScalingMatrix != nil {
		std.pScalingLists = fillStdScalingLists(arena, sps.ScalingMatrix)
	}
	if sps.VUI != nil {
		std.pSequenceParameterSetVui = fillStdVUI(arena, sps.VUI)
	}
}

func fillStdVUI(arena *paramArena, vui *VUI) *C.StdVideoH264SequenceParameterSetVui {
	std := (*C.StdVideoH264SequenceParameterSetVui)(arena.alloc(1, C.sizeof_StdVideoH264SequenceParameterSetVui))
	C.setStdSpsVuiFlags(std, C.uint32_t(spsVuiFlagMask(vui)))

	std.sar_width = 1
	std.sar_height = 1
	if vui.AspectRatioInfoPresent {
		std.aspect_ratio_idc = C.StdVideoH264AspectRatioIdc(vui.AspectRatioIdc)
		std.sar_width = C.uint16_t(vui.SarWidth)
		std.sar_height = C.uint16_t(vui.SarHeight)
	}

	// Table E-2 says 5 (unspecified), but decoders commonly report NTSC
	// when the stream stays silent.
	std.video_format = 2
	std.colour_primaries = 2
	std.transfer_characteristics = 2
	std.matrix_coefficients = 2
	if vui.VideoSignalTypePresent {
		std.video_format = C.uint8_t(vui.VideoFormat)
		if vui.ColourDescriptionPresent {
			std.colour_primaries = C.uint8_t(vui.ColourPrimaries)
			std.transfer_characteristics = C.uint8_t(vui.TransferCharacteristics)
			std.matrix_coefficients = C.uint8_t(vui.MatrixCoefficients)
		}
	}

	if vui.TimingInfoPresent {
		std.num_units_in_tick = C.uint32_t(vui.NumUnitsInTick)
		std.time_scale = C.uint32_t(vui.TimeScale)
	}

	if restriction := vui.BitstreamRestriction; restriction != nil {
		std.max_num_reorder_frames = C.uint8_t(restriction.MaxNumReorderFrames)
		std.max_dec_frame_buffering = C.uint8_t(restriction.MaxDecFrameBuffering)
	}

	if vui.ChromaLocInfoPresent {
		std.chroma_sample_loc_type_top_field = C.uint8_t(vui.ChromaSampleLocTypeTopField)
		std.chroma_sample_loc_type_bottom_field = C.uint8_t(vui.ChromaSampleLocTypeBottomField)
	}

	if hrd := vui.Hrd(); hrd != nil {
		std.pHrdParameters = fillStdHRD(arena, hrd)
	}

	return std
}

func fillStdHRD(arena *paramArena, hrd *HRD) *C.StdVideoH264HrdParameters {
	std := (*C.StdVideoH264HrdParameters)(arena.alloc(1, C.sizeof_StdVideoH264HrdParameters))

	std.cpb_cnt_minus1 = C.uint8_t(len(hrd.CpbSpecs) - 1)
	std.bit_rate_scale = C.uint8_t(hrd.BitRateScale)
	std.cpb_size_scale = C.uint8_t(hrd.CpbSizeScale)
	for i, cpb := range hrd.CpbSpecs {
		std.bit_rate_value_minus1[i] = C.uint32_t(cpb.BitRateValueMinus1)
		std.cpb_size_value_minus1[i] = C.uint32_t(cpb.CpbSizeValueMinus1)
		if cpb.CbrFlag {
			std.cbr_flag[i] = 1
		}
	}
	std.initial_cpb_removal_delay_length_minus1 = C.uint32_t(hrd.InitialCpbRemovalDelayLengthMinus1)
	std.cpb_removal_delay_length_minus1 = C.uint32_t(hrd.CpbRemovalDelayLengthMinus1)
	std.dpb_output_delay_length_minus1 = C.uint32_t(hrd.DpbOutputDelayLengthMinus1)
	std.time_offset_length = C.uint32_t(hrd.TimeOffsetLength)

	return std
}

// fillStdScalingLists flattens a scaling matrix. Absent lists set their bit
// in scaling_list_present_mask, default requests set it in
// use_default_scaling_matrix_mask, parsed values land in the value tables.
func fillStdScalingLists(arena *paramArena, matrix *ScalingMatrix) *C.StdVideoH264ScalingLists {
	std := (*C.StdVideoH264ScalingLists)(arena.alloc(1, C.sizeof_StdVideoH264ScalingLists))

	var presentMask, useDefaultMask uint16
	for i, list := range matrix.List4x4 {
		switch {
		case list == nil:
			presentMask |= 1 << i
		case list.UseDefault:
			useDefaultMask |= 1 << i
		default:
			for j, value := range list.Values {
				std.ScalingList4x4[i][j] = C.uint8_t(value)
			}
		}
	}
	for i, list := range matrix.List8x8 {
		switch {
		case list == nil:
			presentMask |= 1 << (i + 6)
		case list.UseDefault:
			useDefaultMask |= 1 << (i + 6)
		default:
			for j, value := range list.Values {
				std.ScalingList8x8[i][j] = C.uint8_t(value)
			}
		}
	}
	std.scaling_list_present_mask = C.uint16_t(presentMask)
	std.use_default_scaling_matrix_mask = C.uint16_t(useDefaultMask)

	return std
}

func fillStdPPS(arena *paramArena, std *C.StdVideoH264PictureParameterSet, pps *PPS) {
	C.setStdPpsFlags(std, C.uint32_t(ppsFlagMask(pps)))

	std.seq_parameter_set_id = C.uint8_t(pps.SpsID)
	std.pic_parameter_set_id = C.uint8_t(pps.ID)
	std.num_ref_idx_l0_default_active_minus1 = C.uint8_t(pps.NumRefIdxL0DefaultActiveMinus1)
	std.num_ref_idx_l1_default_active_minus1 = C.uint8_t(pps.NumRefIdxL1DefaultActiveMinus1)
	std.weighted_bipred_idc = C.StdVideoH264WeightedBipredIdc(pps.WeightedBipredIdc)
	std.pic_init_qp_minus26 = C.int8_t(pps.PicInitQpMinus26)
	std.pic_init_qs_minus26 = C.int8_t(pps.PicInitQsMinus26)
	std.chroma_qp_index_offset = C.int8_t(pps.ChromaQpIndexOffset)
	std.second_chroma_qp_index_offset = C.int8_t(pps.SecondChromaQpIndexOffset)

	if pps.PicScalingMatrix != nil {
		std.pScalingLists = fillStdScalingLists(arena, pps.PicScalingMatrix)
	}
}
