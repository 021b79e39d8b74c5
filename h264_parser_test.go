// h264_parser_test.go
package vkvideo

import "testing"

// writeBaselineSPS synthesizes a 512x512 baseline profile SPS RBSP.
func writeBaselineSPS(levelIdc uint32) []byte {
	bw := NewBitstreamWriter(64)
	bw.WriteBits(66, 8)       // profile_idc
	bw.WriteBits(0, 8)        // constraint flags + reserved
	bw.WriteBits(levelIdc, 8) // level_idc
	bw.WriteUE(0)             // seq_parameter_set_id
	bw.WriteUE(4)             // log2_max_frame_num_minus4
	bw.WriteUE(0)             // pic_order_cnt_type
	bw.WriteUE(4)             // log2_max_pic_order_cnt_lsb_minus4
	bw.WriteUE(3)             // max_num_ref_frames
	bw.WriteBit(0)            // gaps_in_frame_num_value_allowed_flag
	bw.WriteUE(31)            // pic_width_in_mbs_minus1
	bw.WriteUE(31)            // pic_height_in_map_units_minus1
	bw.WriteBit(1)            // frame_mbs_only_flag
	bw.WriteBit(1)            // direct_8x8_inference_flag
	bw.WriteBit(0)            // frame_cropping_flag
	bw.WriteBit(0)            // vui_parameters_present_flag
	bw.ByteAlign()
	return bw.Data()
}

func writeBasicPPS() []byte {
	bw := NewBitstreamWriter(32)
	bw.WriteUE(0)       // pic_parameter_set_id
	bw.WriteUE(0)       // seq_parameter_set_id
	bw.WriteBit(1)      // entropy_coding_mode_flag
	bw.WriteBit(0)      // bottom_field_pic_order_in_frame_present_flag
	bw.WriteUE(0)       // num_slice_groups_minus1
	bw.WriteUE(2)       // num_ref_idx_l0_default_active_minus1
	bw.WriteUE(1)       // num_ref_idx_l1_default_active_minus1
	bw.WriteBit(0)      // weighted_pred_flag
	bw.WriteBits(0, 2)  // weighted_bipred_idc
	bw.WriteSE(-3)      // pic_init_qp_minus26
	bw.WriteSE(0)       // pic_init_qs_minus26
	bw.WriteSE(2)       // chroma_qp_index_offset
	bw.WriteBit(1)      // deblocking_filter_control_present_flag
	bw.WriteBit(0)      // constrained_intra_pred_flag
	bw.WriteBit(0)      // redundant_pic_cnt_present_flag
	bw.ByteAlign()
	return bw.Data()
}

func TestParseBaselineSPS(t *testing.T) {
	inspector := NewStreamInspector()
	if err := inspector.FeedNAL(WriteNALUnit(H264_NAL_UNIT_TYPE_SPS, 3, writeBaselineSPS(31))); err != nil {
		t.Fatal(err)
	}

	sps := inspector.SPS(0)
	if sps == nil {
		t.Fatal("no SPS in context")
	}
	if sps.ProfileIdc != 66 || sps.LevelIdc != 31 {
		t.Errorf("profile/level: got %d/%d", sps.ProfileIdc, sps.LevelIdc)
	}
	if sps.ChromaFormatIdc != 1 {
		t.Errorf("chroma_format_idc: got %d, want the 4:2:0 default", sps.ChromaFormatIdc)
	}
	if sps.Width() != 512 || sps.Height() != 512 {
		t.Errorf("dimensions: got %dx%d, want 512x512", sps.Width(), sps.Height())
	}
	if sps.MaxNumRefFrames != 3 || sps.Log2MaxFrameNumMinus4 != 4 {
		t.Errorf("ref frames %d, log2 frame num %d", sps.MaxNumRefFrames, sps.Log2MaxFrameNumMinus4)
	}
	if !sps.FrameMbsOnly || !sps.Direct8x8Inference || sps.FrameCropping || sps.VUI != nil {
		t.Errorf("flags wrong: %+v", sps)
	}
}

func TestParseHighProfileSPSWithVUI(t *testing.T) {
	bw := NewBitstreamWriter(128)
	bw.WriteBits(100, 8)  // profile_idc high
	bw.WriteBits(0x40, 8) // constraint_set1
	bw.WriteBits(40, 8)   // level_idc
	bw.WriteUE(1)         // seq_parameter_set_id

	bw.WriteUE(1)  // chroma_format_idc
	bw.WriteUE(0)  // bit_depth_luma_minus8
	bw.WriteUE(0)  // bit_depth_chroma_minus8
	bw.WriteBit(0) // qpprime_y_zero_transform_bypass_flag
	bw.WriteBit(0) // seq_scaling_matrix_present_flag

	bw.WriteUE(4)  // log2_max_frame_num_minus4
	bw.WriteUE(2)  // pic_order_cnt_type
	bw.WriteUE(1)  // max_num_ref_frames
	bw.WriteBit(0) // gaps
	bw.WriteUE(119)
	bw.WriteUE(67)
	bw.WriteBit(1) // frame_mbs_only
	bw.WriteBit(1) // direct_8x8_inference
	bw.WriteBit(1) // frame_cropping_flag
	bw.WriteUE(0)
	bw.WriteUE(0)
	bw.WriteUE(0)
	bw.WriteUE(4)

	bw.WriteBit(1) // vui_parameters_present_flag
	bw.WriteBit(1) // aspect_ratio_info_present_flag
	bw.WriteBits(255, 8)
	bw.WriteBits(4, 16)
	bw.WriteBits(3, 16)
	bw.WriteBit(1) // overscan_info_present_flag
	bw.WriteBit(1) // overscan_appropriate_flag
	bw.WriteBit(1) // video_signal_type_present_flag
	bw.WriteBits(1, 3)
	bw.WriteBit(1) // video_full_range_flag
	bw.WriteBit(1) // colour_description_present_flag
	bw.WriteBits(1, 8)
	bw.WriteBits(1, 8)
	bw.WriteBits(1, 8)
	bw.WriteBit(1) // chroma_loc_info_present_flag
	bw.WriteUE(0)
	bw.WriteUE(1)
	bw.WriteBit(1) // timing_info_present_flag
	bw.WriteBits(1, 32)
	bw.WriteBits(50, 32)
	bw.WriteBit(1) // fixed_frame_rate_flag
	bw.WriteBit(1) // nal_hrd_parameters_present_flag
	bw.WriteUE(0)  // cpb_cnt_minus1
	bw.WriteBits(1, 4)
	bw.WriteBits(2, 4)
	bw.WriteUE(1249)
	bw.WriteUE(999)
	bw.WriteBit(1) // cbr_flag
	bw.WriteBits(23, 5)
	bw.WriteBits(23, 5)
	bw.WriteBits(23, 5)
	bw.WriteBits(24, 5)
	bw.WriteBit(0) // vcl_hrd_parameters_present_flag
	bw.WriteBit(0) // low_delay_hrd_flag
	bw.WriteBit(1) // pic_struct_present_flag
	bw.WriteBit(1) // bitstream_restriction_flag
	bw.WriteBit(1)
	bw.WriteUE(2)
	bw.WriteUE(1)
	bw.WriteUE(9)
	bw.WriteUE(10)
	bw.WriteUE(0) // max_num_reorder_frames
	bw.WriteUE(4) // max_dec_frame_buffering
	bw.ByteAlign()

	inspector := NewStreamInspector()
	if err := inspector.FeedNAL(WriteNALUnit(H264_NAL_UNIT_TYPE_SPS, 3, bw.Data())); err != nil {
		t.Fatal(err)
	}

	sps := inspector.SPS(1)
	if sps == nil {
		t.Fatal("no SPS 1 in context")
	}
	if !sps.ConstraintFlags[1] || sps.ConstraintFlags[0] {
		t.Errorf("constraint flags: %v", sps.ConstraintFlags)
	}
	if !sps.FrameCropping || sps.FrameCropBottomOffset != 4 {
		t.Errorf("cropping: %+v", sps)
	}
	if sps.Width() != 1920 || sps.Height() != 1080 {
		t.Errorf("dimensions: got %dx%d, want 1920x1080", sps.Width(), sps.Height())
	}

	vui := sps.VUI
	if vui == nil {
		t.Fatal("no VUI")
	}
	if vui.AspectRatioIdc != 255 || vui.SarWidth != 4 || vui.SarHeight != 3 {
		t.Errorf("sar: %d %d:%d", vui.AspectRatioIdc, vui.SarWidth, vui.SarHeight)
	}
	if !vui.OverscanAppropriate || !vui.VideoFullRange || vui.VideoFormat != 1 {
		t.Errorf("signal type: %+v", vui)
	}
	if vui.ChromaSampleLocTypeBottomField != 1 {
		t.Errorf("chroma loc: %+v", vui)
	}
	if vui.NumUnitsInTick != 1 || vui.TimeScale != 50 || !vui.FixedFrameRate {
		t.Errorf("timing: %+v", vui)
	}

	hrd := vui.Hrd()
	if hrd == nil || vui.NalHrd == nil || vui.VclHrd != nil {
		t.Fatalf("hrd selection wrong: %+v", vui)
	}
	if len(hrd.CpbSpecs) != 1 || hrd.CpbSpecs[0].BitRateValueMinus1 != 1249 || !hrd.CpbSpecs[0].CbrFlag {
		t.Errorf("cpb specs: %+v", hrd.CpbSpecs)
	}
	if hrd.BitRateScale != 1 || hrd.CpbSizeScale != 2 || hrd.TimeOffsetLength != 24 {
		t.Errorf("hrd fields: %+v", hrd)
	}

	if vui.BitstreamRestriction == nil || vui.BitstreamRestriction.MaxDecFrameBuffering != 4 {
		t.Errorf("restriction: %+v", vui.BitstreamRestriction)
	}

	wantMask := vuiFlagAspectRatioInfoPresent | vuiFlagOverscanAppropriate |
		vuiFlagVideoSignalTypePresent | vuiFlagVideoFullRange | vuiFlagColorDescriptionPresent |
		vuiFlagChromaLocInfoPresent | vuiFlagTimingInfoPresent | vuiFlagFixedFrameRate |
		vuiFlagBitstreamRestriction | vuiFlagNalHrdParametersPresent
	if got := spsVuiFlagMask(vui); got != wantMask {
		t.Errorf("vui flag mask: got %#x, want %#x", got, wantMask)
	}
}

func TestParseSPSScalingMatrix(t *testing.T) {
	bw := NewBitstreamWriter(128)
	bw.WriteBits(100, 8)
	bw.WriteBits(0, 8)
	bw.WriteBits(40, 8)
	bw.WriteUE(0)

	bw.WriteUE(1)  // chroma_format_idc
	bw.WriteUE(0)
	bw.WriteUE(0)
	bw.WriteBit(0)
	bw.WriteBit(1) // seq_scaling_matrix_present_flag

	// List 0: first delta drives next_scale to zero, the default matrix.
	bw.WriteBit(1)
	bw.WriteSE(-8)
	// List 1: constant 16.
	bw.WriteBit(1)
	bw.WriteSE(8)
	for i := 0; i < 15; i++ {
		bw.WriteSE(0)
	}
	// Lists 2-5 and both 8x8 lists absent.
	for i := 0; i < 4+2; i++ {
		bw.WriteBit(0)
	}

	bw.WriteUE(4)
	bw.WriteUE(0)
	bw.WriteUE(4)
	bw.WriteUE(1)
	bw.WriteBit(0)
	bw.WriteUE(31)
	bw.WriteUE(31)
	bw.WriteBit(1)
	bw.WriteBit(1)
	bw.WriteBit(0)
	bw.WriteBit(0)
	bw.ByteAlign()

	inspector := NewStreamInspector()
	if err := inspector.FeedNAL(WriteNALUnit(H264_NAL_UNIT_TYPE_SPS, 3, bw.Data())); err != nil {
		t.Fatal(err)
	}

	matrix := inspector.SPS(0).ScalingMatrix
	if matrix == nil {
		t.Fatal("no scaling matrix")
	}
	if len(matrix.List4x4) != 6 || len(matrix.List8x8) != 2 {
		t.Fatalf("list counts: %d, %d", len(matrix.List4x4), len(matrix.List8x8))
	}
	if matrix.List4x4[0] == nil || !matrix.List4x4[0].UseDefault {
		t.Errorf("list 0: %+v", matrix.List4x4[0])
	}
	list := matrix.List4x4[1]
	if list == nil || list.UseDefault || len(list.Values) != 16 {
		t.Fatalf("list 1: %+v", list)
	}
	for i, v := range list.Values {
		if v != 16 {
			t.Fatalf("list 1 value %d: got %d, want 16", i, v)
		}
	}
	if matrix.List4x4[2] != nil || matrix.List8x8[0] != nil {
		t.Error("absent lists must be nil")
	}
}

func TestParsePPS(t *testing.T) {
	inspector := NewStreamInspector()
	if err := inspector.FeedNAL(WriteNALUnit(H264_NAL_UNIT_TYPE_SPS, 3, writeBaselineSPS(31))); err != nil {
		t.Fatal(err)
	}
	if err := inspector.FeedNAL(WriteNALUnit(H264_NAL_UNIT_TYPE_PPS, 3, writeBasicPPS())); err != nil {
		t.Fatal(err)
	}

	pps := inspector.PPS(0)
	if pps == nil {
		t.Fatal("no PPS in context")
	}
	if pps.SpsID != 0 || !pps.EntropyCodingMode {
		t.Errorf("%+v", pps)
	}
	if pps.NumRefIdxL0DefaultActiveMinus1 != 2 || pps.NumRefIdxL1DefaultActiveMinus1 != 1 {
		t.Errorf("ref idx defaults: %+v", pps)
	}
	if pps.PicInitQpMinus26 != -3 || pps.ChromaQpIndexOffset != 2 {
		t.Errorf("qp fields: %+v", pps)
	}
	if !pps.DeblockingFilterControlPresent || pps.HasExtension {
		t.Errorf("flags: %+v", pps)
	}
}

func TestParsePPSExtension(t *testing.T) {
	bw := NewBitstreamWriter(32)
	bw.WriteUE(1)
	bw.WriteUE(0)
	bw.WriteBit(0)
	bw.WriteBit(0)
	bw.WriteUE(0)
	bw.WriteUE(0)
	bw.WriteUE(0)
	bw.WriteBit(0)
	bw.WriteBits(0, 2)
	bw.WriteSE(0)
	bw.WriteSE(0)
	bw.WriteSE(0)
	bw.WriteBit(0)
	bw.WriteBit(0)
	bw.WriteBit(0)
	bw.WriteBit(1) // transform_8x8_mode_flag
	bw.WriteBit(0) // pic_scaling_matrix_present_flag
	bw.WriteSE(-2) // second_chroma_qp_index_offset
	bw.ByteAlign()

	inspector := NewStreamInspector()
	if err := inspector.FeedNAL(WriteNALUnit(H264_NAL_UNIT_TYPE_SPS, 3, writeBaselineSPS(31))); err != nil {
		t.Fatal(err)
	}
	if err := inspector.FeedNAL(WriteNALUnit(H264_NAL_UNIT_TYPE_PPS, 3, bw.Data())); err != nil {
		t.Fatal(err)
	}

	pps := inspector.PPS(1)
	if pps == nil {
		t.Fatal("no PPS 1 in context")
	}
	if !pps.HasExtension || !pps.Transform8x8Mode || pps.SecondChromaQpIndexOffset != -2 {
		t.Errorf("%+v", pps)
	}
}

func TestPPSWithoutSPSFails(t *testing.T) {
	inspector := NewStreamInspector()
	err := inspector.FeedNAL(WriteNALUnit(H264_NAL_UNIT_TYPE_PPS, 3, writeBasicPPS()))
	if !IsKind(err, ErrMissingSps) {
		t.Fatalf("got %v, want missing-SPS error", err)
	}
	if inspector.PPS(0) != nil {
		t.Error("failed parse must not touch the context")
	}
}

func TestFeedNALErrors(t *testing.T) {
	inspector := NewStreamInspector()

	if err := inspector.FeedNAL(nil); !IsKind(err, ErrNalHeader) {
		t.Errorf("empty unit: got %v", err)
	}
	if err := inspector.FeedNAL([]byte{0x87}); !IsKind(err, ErrNalHeader) {
		t.Errorf("forbidden bit: got %v", err)
	}
	if err := inspector.FeedNAL(WriteNALUnit(H264_NAL_UNIT_TYPE_SPS, 3, []byte{66})); !IsKind(err, ErrSps) {
		t.Errorf("truncated SPS: got %v", err)
	}
	if inspector.SPS(0) != nil {
		t.Error("failed parse must not touch the context")
	}

	// Unknown unit types pass through silently.
	if err := inspector.FeedNAL(WriteNALUnit(H264_NAL_UNIT_TYPE_SEI, 0, []byte{0x80})); err != nil {
		t.Errorf("SEI: %v", err)
	}
}

func TestFeedAllAndReplacement(t *testing.T) {
	stream := append([]byte{}, WriteNALUnit(H264_NAL_UNIT_TYPE_SPS, 3, writeBaselineSPS(31))...)
	stream = append(stream, WriteNALUnit(H264_NAL_UNIT_TYPE_PPS, 3, writeBasicPPS())...)

	inspector := NewStreamInspector()
	if err := inspector.FeedAll(stream); err != nil {
		t.Fatal(err)
	}
	if inspector.SPS(0) == nil || inspector.PPS(0) == nil {
		t.Fatal("stream did not populate the context")
	}

	// A later SPS with the same id replaces the earlier one.
	if err := inspector.FeedNAL(WriteNALUnit(H264_NAL_UNIT_TYPE_SPS, 3, writeBaselineSPS(40))); err != nil {
		t.Fatal(err)
	}
	if got := inspector.SPS(0).LevelIdc; got != 40 {
		t.Errorf("level after replacement: got %d, want 40", got)
	}
}

func TestFlagMasks(t *testing.T) {
	sps := &SPS{
		ConstraintFlags:    [6]bool{true, false, false, true},
		FrameMbsOnly:       true,
		Direct8x8Inference: true,
		FrameCropping:      true,
		VUI:                &VUI{},
	}
	want := spsFlagConstraintSet0 | spsFlagConstraintSet3 | spsFlagFrameMbsOnly |
		spsFlagDirect8x8Inference | spsFlagFrameCropping | spsFlagVuiParametersPresent
	if got := spsFlagMask(sps); got != want {
		t.Errorf("sps mask: got %#x, want %#x", got, want)
	}

	// Interlaced stream: adaptive flag counts only when frames-only is off.
	interlaced := &SPS{MbAdaptiveFrameField: true}
	if got := spsFlagMask(interlaced); got != spsFlagMbAdaptiveFrameField {
		t.Errorf("interlaced mask: got %#x", got)
	}

	pps := &PPS{
		EntropyCodingMode: true,
		WeightedPred:      true,
		Transform8x8Mode:  true,
		PicScalingMatrix:  &ScalingMatrix{},
	}
	wantPps := ppsFlagEntropyCodingMode | ppsFlagWeightedPred | ppsFlagTransform8x8Mode |
		ppsFlagPicScalingMatrixPresent
	if got := ppsFlagMask(pps); got != wantPps {
		t.Errorf("pps mask: got %#x, want %#x", got, wantPps)
	}
}
