// h264_parser.go
package vkvideo

import "sort"

// HRD holds hypothetical reference decoder parameters (Rec. ITU-T H.264
// Annex E.1.2).
type HRD struct {
	BitRateScale                       uint8
	CpbSizeScale                       uint8
	CpbSpecs                           []CpbSpec
	InitialCpbRemovalDelayLengthMinus1 uint8
	CpbRemovalDelayLengthMinus1        uint8
	DpbOutputDelayLengthMinus1         uint8
	TimeOffsetLength                   uint8
}

// CpbSpec is one coded picture buffer alternative within an HRD.
type CpbSpec struct {
	BitRateValueMinus1 uint32
	CpbSizeValueMinus1 uint32
	CbrFlag            bool
}

// BitstreamRestriction holds the VUI bitstream restriction fields.
type BitstreamRestriction struct {
	MotionVectorsOverPicBoundaries bool
	MaxBytesPerPicDenom            uint32
	MaxBitsPerMbDenom              uint32
	Log2MaxMvLengthHorizontal      uint32
	Log2MaxMvLengthVertical        uint32
	MaxNumReorderFrames            uint32
	MaxDecFrameBuffering           uint32
}

// VUI holds the video usability information of an SPS (Annex E.1.1).
// Optional sections are nil pointers or guarded by their present flag.
type VUI struct {
	AspectRatioInfoPresent bool
	AspectRatioIdc         uint8
	SarWidth               uint16
	SarHeight              uint16

	OverscanInfoPresent bool
	OverscanAppropriate bool

	VideoSignalTypePresent   bool
	VideoFormat              uint8
	VideoFullRange           bool
	ColourDescriptionPresent bool
	ColourPrimaries          uint8
	TransferCharacteristics  uint8
	MatrixCoefficients       uint8

	ChromaLocInfoPresent           bool
	ChromaSampleLocTypeTopField    uint32
	ChromaSampleLocTypeBottomField uint32

	TimingInfoPresent bool
	NumUnitsInTick    uint32
	TimeScale         uint32
	FixedFrameRate    bool

	NalHrd *HRD
	VclHrd *HRD
	// LowDelayHrd is only parsed when either HRD is present.
	LowDelayHrd bool

	PicStructPresent bool

	BitstreamRestriction *BitstreamRestriction
}

// Hrd returns the HRD record the decoder should use: NAL first, VCL as
// fallback.
func (vui *VUI) Hrd() *HRD {
	if vui.NalHrd != nil {
		return vui.NalHrd
	}
	return vui.VclHrd
}

// ScalingList is one scaling list of a scaling matrix. A nil *ScalingList
// in a matrix means the list was not present in the bitstream; UseDefault
// means the stream asked for the spec's fall-back matrix.
type ScalingList struct {
	UseDefault bool
	Values     []uint8
}

// ScalingMatrix holds up to six 4x4 and six 8x8 scaling lists.
type ScalingMatrix struct {
	List4x4 []*ScalingList
	List8x8 []*ScalingList
}

// SPS is a parsed sequence parameter set (Rec. ITU-T H.264 §7.3.2.1.1).
type SPS struct {
	ProfileIdc      uint8
	ConstraintFlags [6]bool
	LevelIdc        uint8
	ID              uint32

	ChromaFormatIdc             uint32
	SeparateColourPlane         bool
	BitDepthLumaMinus8          uint32
	BitDepthChromaMinus8        uint32
	QpprimeYZeroTransformBypass bool
	ScalingMatrix               *ScalingMatrix

	Log2MaxFrameNumMinus4 uint32

	PicOrderCntType             uint32
	Log2MaxPicOrderCntLsbMinus4 uint32
	DeltaPicOrderAlwaysZero     bool
	OffsetForNonRefPic          int32
	OffsetForTopToBottomField   int32
	OffsetsForRefFrame          []int32

	MaxNumRefFrames            uint32
	GapsInFrameNumValueAllowed bool
	PicWidthInMbsMinus1        uint32
	PicHeightInMapUnitsMinus1  uint32
	FrameMbsOnly               bool
	MbAdaptiveFrameField       bool
	Direct8x8Inference         bool

	FrameCropping         bool
	FrameCropLeftOffset   uint32
	FrameCropRightOffset  uint32
	FrameCropTopOffset    uint32
	FrameCropBottomOffset uint32

	VUI *VUI
}

// Width returns the display width in pixels.
func (sps *SPS) Width() uint32 {
	width := (sps.PicWidthInMbsMinus1 + 1) * 16
	if sps.FrameCropping {
		width -= (sps.FrameCropLeftOffset + sps.FrameCropRightOffset) * 2
	}
	return width
}

// Height returns the display height in pixels for progressive streams.
func (sps *SPS) Height() uint32 {
	height := (sps.PicHeightInMapUnitsMinus1 + 1) * 16
	if !sps.FrameMbsOnly {
		height *= 2
	}
	if sps.FrameCropping {
		height -= (sps.FrameCropTopOffset + sps.FrameCropBottomOffset) * 2
	}
	return height
}

// PPS is a parsed picture parameter set (Rec. ITU-T H.264 §7.3.2.2).
type PPS struct {
	ID    uint32
	SpsID uint32

	EntropyCodingMode                 bool
	BottomFieldPicOrderInFramePresent bool
	NumSliceGroupsMinus1              uint32
	NumRefIdxL0DefaultActiveMinus1    uint32
	NumRefIdxL1DefaultActiveMinus1    uint32
	WeightedPred                      bool
	WeightedBipredIdc                 uint32
	PicInitQpMinus26                  int32
	PicInitQsMinus26                  int32
	ChromaQpIndexOffset               int32
	DeblockingFilterControlPresent    bool
	ConstrainedIntraPred              bool
	RedundantPicCntPresent            bool

	// More-RBSP extension fields; HasExtension guards them.
	HasExtension              bool
	Transform8x8Mode          bool
	PicScalingMatrix          *ScalingMatrix
	SecondChromaQpIndexOffset int32
}

const (
	maxSpsID = 31
	maxPpsID = 255
)

// StreamInspector accumulates the parameter sets of an H.264 stream. Feed
// it NAL units; SPS and PPS updates replace earlier sets with the same id,
// everything else is ignored. A failed parse leaves the context untouched.
type StreamInspector struct {
	sps map[uint32]*SPS
	pps map[uint32]*PPS
}

func NewStreamInspector() *StreamInspector {
	return &StreamInspector{
		sps: make(map[uint32]*SPS),
		pps: make(map[uint32]*PPS),
	}
}

// FeedNAL parses a single NAL unit, with or without its start code.
func (inspector *StreamInspector) FeedNAL(nal []byte) error {
	payload := NALPayload(nal)
	if len(payload) == 0 {
		return errKind(ErrNalHeader)
	}

	header := payload[0]
	if header&0x80 != 0 {
		return errKindf(ErrNalHeader, "forbidden_zero_bit set in header 0x%02x", header)
	}

	switch H264NalUnitType(header & 0x1F) {
	case H264_NAL_UNIT_TYPE_SPS:
		sps, err := parseSPS(payload[1:])
		if err != nil {
			return err
		}
		inspector.sps[sps.ID] = sps
	case H264_NAL_UNIT_TYPE_PPS:
		pps, err := inspector.parsePPS(payload[1:])
		if err != nil {
			return err
		}
		inspector.pps[pps.ID] = pps
	}

	return nil
}

// FeedAll splits an Annex B buffer into NAL units and feeds each one.
func (inspector *StreamInspector) FeedAll(data []byte) error {
	for nal := range NALUnits(data) {
		if err := inspector.FeedNAL(nal); err != nil {
			return err
		}
	}
	return nil
}

// SPS returns the sequence parameter set with the given id, or nil.
func (inspector *StreamInspector) SPS(id uint32) *SPS { return inspector.sps[id] }

// PPS returns the picture parameter set with the given id, or nil.
func (inspector *StreamInspector) PPS(id uint32) *PPS { return inspector.pps[id] }

// allSPS returns the known sequence parameter sets ordered by id.
func (inspector *StreamInspector) allSPS() []*SPS {
	all := make([]*SPS, 0, len(inspector.sps))
	for _, sps := range inspector.sps {
		all = append(all, sps)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

// allPPS returns the known picture parameter sets ordered by id.
func (inspector *StreamInspector) allPPS() []*PPS {
	all := make([]*PPS, 0, len(inspector.pps))
	for _, pps := range inspector.pps {
		all = append(all, pps)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

func parseSPS(rbsp []byte) (*SPS, error) {
	br := NewBitstreamReader(rbsp)
	sps := &SPS{ChromaFormatIdc: 1} // 4:2:0 unless the profile says otherwise

	profileIdc, err := br.ReadBits(8)
	if err != nil {
		return nil, errKindf(ErrSps, "truncated: %v", err)
	}
	sps.ProfileIdc = uint8(profileIdc)

	constraints, err := br.ReadBits(8)
	if err != nil {
		return nil, errKindf(ErrSps, "truncated: %v", err)
	}
	for i := 0; i < 6; i++ {
		sps.ConstraintFlags[i] = constraints&(0x80>>i) != 0
	}

	levelIdc, err := br.ReadBits(8)
	if err != nil {
		return nil, errKindf(ErrSps, "truncated: %v", err)
	}
	sps.LevelIdc = uint8(levelIdc)

	id, err := br.ReadUE()
	if err != nil {
		return nil, errKindf(ErrSps, "truncated: %v", err)
	}
	if id > maxSpsID {
		return nil, errKindf(ErrSps, "seq_parameter_set_id %d out of range", id)
	}
	sps.ID = id

	switch sps.ProfileIdc {
	case 100, 110, 122, 244, 44, 83, 86, 118, 128, 138, 139, 134, 135:
		if err := parseSPSChromaInfo(br, sps); err != nil {
			return nil, err
		}
	}

	if sps.Log2MaxFrameNumMinus4, err = br.ReadUE(); err != nil {
		return nil, errKindf(ErrSps, "truncated: %v", err)
	}

	if sps.PicOrderCntType, err = br.ReadUE(); err != nil {
		return nil, errKindf(ErrSps, "truncated: %v", err)
	}
	switch sps.PicOrderCntType {
	case 0:
		if sps.Log2MaxPicOrderCntLsbMinus4, err = br.ReadUE(); err != nil {
			return nil, errKindf(ErrSps, "truncated: %v", err)
		}
	case 1:
		if err := parseSPSPicOrderCntTypeOne(br, sps); err != nil {
			return nil, err
		}
	case 2:
	default:
		return nil, errKindf(ErrSps, "pic_order_cnt_type %d out of range", sps.PicOrderCntType)
	}

	if sps.MaxNumRefFrames, err = br.ReadUE(); err != nil {
		return nil, errKindf(ErrSps, "truncated: %v", err)
	}
	if sps.GapsInFrameNumValueAllowed, err = readFlag(br); err != nil {
		return nil, errKindf(ErrSps, "truncated: %v", err)
	}
	if sps.PicWidthInMbsMinus1, err = br.ReadUE(); err != nil {
		return nil, errKindf(ErrSps, "truncated: %v", err)
	}
	if sps.PicHeightInMapUnitsMinus1, err = br.ReadUE(); err != nil {
		return nil, errKindf(ErrSps, "truncated: %v", err)
	}
	if sps.FrameMbsOnly, err = readFlag(br); err != nil {
		return nil, errKindf(ErrSps, "truncated: %v", err)
	}
	if !sps.FrameMbsOnly {
		if sps.MbAdaptiveFrameField, err = readFlag(br); err != nil {
			return nil, errKindf(ErrSps, "truncated: %v", err)
		}
	}
	if sps.Direct8x8Inference, err = readFlag(br); err != nil {
		return nil, errKindf(ErrSps, "truncated: %v", err)
	}

	if sps.FrameCropping, err = readFlag(br); err != nil {
		return nil, errKindf(ErrSps, "truncated: %v", err)
	}
	if sps.FrameCropping {
		if sps.FrameCropLeftOffset, err = br.ReadUE(); err != nil {
			return nil, errKindf(ErrSps, "truncated: %v", err)
		}
		if sps.FrameCropRightOffset, err = br.ReadUE(); err != nil {
			return nil, errKindf(ErrSps, "truncated: %v", err)
		}
		if sps.FrameCropTopOffset, err = br.ReadUE(); err != nil {
			return nil, errKindf(ErrSps, "truncated: %v", err)
		}
		if sps.FrameCropBottomOffset, err = br.ReadUE(); err != nil {
			return nil, errKindf(ErrSps, "truncated: %v", err)
		}
	}

	vuiPresent, err := readFlag(br)
	if err != nil {
		return nil, errKindf(ErrSps, "truncated: %v", err)
	}
	if vuiPresent {
		if sps.VUI, err = parseVUI(br); err != nil {
			return nil, err
		}
	}

	return sps, nil
}

func parseSPSChromaInfo(br *BitstreamReader, sps *SPS) error {
	var err error
	if sps.ChromaFormatIdc, err = br.ReadUE(); err != nil {
		return errKindf(ErrSps, "truncated: %v", err)
	}
	if sps.ChromaFormatIdc > 3 {
		return errKindf(ErrSps, "chroma_format_idc %d out of range", sps.ChromaFormatIdc)
	}
	if sps.ChromaFormatIdc == 3 {
		if sps.SeparateColourPlane, err = readFlag(br); err != nil {
			return errKindf(ErrSps, "truncated: %v", err)
		}
	}
	if sps.BitDepthLumaMinus8, err = br.ReadUE(); err != nil {
		return errKindf(ErrSps, "truncated: %v", err)
	}
	if sps.BitDepthChromaMinus8, err = br.ReadUE(); err != nil {
		return errKindf(ErrSps, "truncated: %v", err)
	}
	if sps.QpprimeYZeroTransformBypass, err = readFlag(br); err != nil {
		return errKindf(ErrSps, "truncated: %v", err)
	}

	matrixPresent, err := readFlag(br)
	if err != nil {
		return errKindf(ErrSps, "truncated: %v", err)
	}
	if matrixPresent {
		count8x8 := 2
		if sps.ChromaFormatIdc == 3 {
			count8x8 = 6
		}
		matrix, err := parseScalingMatrix(br, 6, count8x8)
		if err != nil {
			return errKindf(ErrSps, "scaling matrix: %v", err)
		}
		sps.ScalingMatrix = matrix
	}

	return nil
}

func parseSPSPicOrderCntTypeOne(br *BitstreamReader, sps *SPS) error {
	var err error
	if sps.DeltaPicOrderAlwaysZero, err = readFlag(br); err != nil {
		return errKindf(ErrSps, "truncated: %v", err)
	}
	if sps.OffsetForNonRefPic, err = br.ReadSE(); err != nil {
		return errKindf(ErrSps, "truncated: %v", err)
	}
	if sps.OffsetForTopToBottomField, err = br.ReadSE(); err != nil {
		return errKindf(ErrSps, "truncated: %v", err)
	}

	cycleLen, err := br.ReadUE()
	if err != nil {
		return errKindf(ErrSps, "truncated: %v", err)
	}
	if cycleLen > 255 {
		return errKindf(ErrSps, "num_ref_frames_in_pic_order_cnt_cycle %d out of range", cycleLen)
	}
	sps.OffsetsForRefFrame = make([]int32, cycleLen)
	for i := range sps.OffsetsForRefFrame {
		if sps.OffsetsForRefFrame[i], err = br.ReadSE(); err != nil {
			return errKindf(ErrSps, "truncated: %v", err)
		}
	}

	return nil
}

func parseVUI(br *BitstreamReader) (*VUI, error) {
	vui := &VUI{}
	var err error

	if vui.AspectRatioInfoPresent, err = readFlag(br); err != nil {
		return nil, errKindf(ErrSps, "vui truncated: %v", err)
	}
	if vui.AspectRatioInfoPresent {
		idc, err := br.ReadBits(8)
		if err != nil {
			return nil, errKindf(ErrSps, "vui truncated: %v", err)
		}
		vui.AspectRatioIdc = uint8(idc)
		const extendedSar = 255
		if idc == extendedSar {
			width, err := br.ReadBits(16)
			if err != nil {
				return nil, errKindf(ErrSps, "vui truncated: %v", err)
			}
			height, err := br.ReadBits(16)
			if err != nil {
				return nil, errKindf(ErrSps, "vui truncated: %v", err)
			}
			vui.SarWidth = uint16(width)
			vui.SarHeight = uint16(height)
		} else {
			vui.SarWidth, vui.SarHeight = sarFromIdc(vui.AspectRatioIdc)
		}
	}

	if vui.OverscanInfoPresent, err = readFlag(br); err != nil {
		return nil, errKindf(ErrSps, "vui truncated: %v", err)
	}
	if vui.OverscanInfoPresent {
		if vui.OverscanAppropriate, err = readFlag(br); err != nil {
			return nil, errKindf(ErrSps, "vui truncated: %v", err)
		}
	}

	if vui.VideoSignalTypePresent, err = readFlag(br); err != nil {
		return nil, errKindf(ErrSps, "vui truncated: %v", err)
	}
	if vui.VideoSignalTypePresent {
		format, err := br.ReadBits(3)
		if err != nil {
			return nil, errKindf(ErrSps, "vui truncated: %v", err)
		}
		vui.VideoFormat = uint8(format)
		if vui.VideoFullRange, err = readFlag(br); err != nil {
			return nil, errKindf(ErrSps, "vui truncated: %v", err)
		}
		if vui.ColourDescriptionPresent, err = readFlag(br); err != nil {
			return nil, errKindf(ErrSps, "vui truncated: %v", err)
		}
		if vui.ColourDescriptionPresent {
			primaries, err := br.ReadBits(8)
			if err != nil {
				return nil, errKindf(ErrSps, "vui truncated: %v", err)
			}
			transfer, err := br.ReadBits(8)
			if err != nil {
				return nil, errKindf(ErrSps, "vui truncated: %v", err)
			}
			matrix, err := br.ReadBits(8)
			if err != nil {
				return nil, errKindf(ErrSps, "vui truncated: %v", err)
			}
			vui.ColourPrimaries = uint8(primaries)
			vui.TransferCharacteristics = uint8(transfer)
			vui.MatrixCoefficients = uint8(matrix)
		}
	} else {
		// Unspecified per Table E-2 through E-5.
		vui.VideoFormat = 5
		vui.ColourPrimaries = 2
		vui.TransferCharacteristics = 2
		vui.MatrixCoefficients = 2
	}

	if vui.ChromaLocInfoPresent, err = readFlag(br); err != nil {
		return nil, errKindf(ErrSps, "vui truncated: %v", err)
	}
	if vui.ChromaLocInfoPresent {
		if vui.ChromaSampleLocTypeTopField, err = br.ReadUE(); err != nil {
			return nil, errKindf(ErrSps, "vui truncated: %v", err)
		}
		if vui.ChromaSampleLocTypeBottomField, err = br.ReadUE(); err != nil {
			return nil, errKindf(ErrSps, "vui truncated: %v", err)
		}
	}

	if vui.TimingInfoPresent, err = readFlag(br); err != nil {
		return nil, errKindf(ErrSps, "vui truncated: %v", err)
	}
	if vui.TimingInfoPresent {
		if vui.NumUnitsInTick, err = br.ReadBits(32); err != nil {
			return nil, errKindf(ErrSps, "vui truncated: %v", err)
		}
		if vui.TimeScale, err = br.ReadBits(32); err != nil {
			return nil, errKindf(ErrSps, "vui truncated: %v", err)
		}
		if vui.FixedFrameRate, err = readFlag(br); err != nil {
			return nil, errKindf(ErrSps, "vui truncated: %v", err)
		}
	}

	nalHrdPresent, err := readFlag(br)
	if err != nil {
		return nil, errKindf(ErrSps, "vui truncated: %v", err)
	}
	if nalHrdPresent {
		if vui.NalHrd, err = parseHRD(br); err != nil {
			return nil, err
		}
	}
	vclHrdPresent, err := readFlag(br)
	if err != nil {
		return nil, errKindf(ErrSps, "vui truncated: %v", err)
	}
	if vclHrdPresent {
		if vui.VclHrd, err = parseHRD(br); err != nil {
			return nil, err
		}
	}
	if nalHrdPresent || vclHrdPresent {
		if vui.LowDelayHrd, err = readFlag(br); err != nil {
			return nil, errKindf(ErrSps, "vui truncated: %v", err)
		}
	}

	if vui.PicStructPresent, err = readFlag(br); err != nil {
		return nil, errKindf(ErrSps, "vui truncated: %v", err)
	}

	restrictionPresent, err := readFlag(br)
	if err != nil {
		return nil, errKindf(ErrSps, "vui truncated: %v", err)
	}
	if restrictionPresent {
		restriction := &BitstreamRestriction{}
		if restriction.MotionVectorsOverPicBoundaries, err = readFlag(br); err != nil {
			return nil, errKindf(ErrSps, "vui truncated: %v", err)
		}
		if restriction.MaxBytesPerPicDenom, err = br.ReadUE(); err != nil {
			return nil, errKindf(ErrSps, "vui truncated: %v", err)
		}
		if restriction.MaxBitsPerMbDenom, err = br.ReadUE(); err != nil {
			return nil, errKindf(ErrSps, "vui truncated: %v", err)
		}
		if restriction.Log2MaxMvLengthHorizontal, err = br.ReadUE(); err != nil {
			return nil, errKindf(ErrSps, "vui truncated: %v", err)
		}
		if restriction.Log2MaxMvLengthVertical, err = br.ReadUE(); err != nil {
			return nil, errKindf(ErrSps, "vui truncated: %v", err)
		}
		if restriction.MaxNumReorderFrames, err = br.ReadUE(); err != nil {
			return nil, errKindf(ErrSps, "vui truncated: %v", err)
		}
		if restriction.MaxDecFrameBuffering, err = br.ReadUE(); err != nil {
			return nil, errKindf(ErrSps, "vui truncated: %v", err)
		}
		vui.BitstreamRestriction = restriction
	}

	return vui, nil
}

func parseHRD(br *BitstreamReader) (*HRD, error) {
	hrd := &HRD{}

	cpbCntMinus1, err := br.ReadUE()
	if err != nil {
		return nil, errKindf(ErrSps, "hrd truncated: %v", err)
	}
	if cpbCntMinus1 > 31 {
		return nil, errKindf(ErrSps, "cpb_cnt_minus1 %d out of range", cpbCntMinus1)
	}

	scale, err := br.ReadBits(4)
	if err != nil {
		return nil, errKindf(ErrSps, "hrd truncated: %v", err)
	}
	hrd.BitRateScale = uint8(scale)
	if scale, err = br.ReadBits(4); err != nil {
		return nil, errKindf(ErrSps, "hrd truncated: %v", err)
	}
	hrd.CpbSizeScale = uint8(scale)

	hrd.CpbSpecs = make([]CpbSpec, cpbCntMinus1+1)
	for i := range hrd.CpbSpecs {
		if hrd.CpbSpecs[i].BitRateValueMinus1, err = br.ReadUE(); err != nil {
			return nil, errKindf(ErrSps, "hrd truncated: %v", err)
		}
		if hrd.CpbSpecs[i].CpbSizeValueMinus1, err = br.ReadUE(); err != nil {
			return nil, errKindf(ErrSps, "hrd truncated: %v", err)
		}
		if hrd.CpbSpecs[i].CbrFlag, err = readFlag(br); err != nil {
			return nil, errKindf(ErrSps, "hrd truncated: %v", err)
		}
	}

	lengths := [4]*uint8{
		&hrd.InitialCpbRemovalDelayLengthMinus1,
		&hrd.CpbRemovalDelayLengthMinus1,
		&hrd.DpbOutputDelayLengthMinus1,
		&hrd.TimeOffsetLength,
	}
	for _, length := range lengths {
		value, err := br.ReadBits(5)
		if err != nil {
			return nil, errKindf(ErrSps, "hrd truncated: %v", err)
		}
		*length = uint8(value)
	}

	return hrd, nil
}

// parsePPS needs the referenced SPS for the extension's scaling list
// count, hence the method receiver.
func (inspector *StreamInspector) parsePPS(rbsp []byte) (*PPS, error) {
	br := NewBitstreamReader(rbsp)
	pps := &PPS{}
	var err error

	if pps.ID, err = br.ReadUE(); err != nil {
		return nil, errKindf(ErrPps, "truncated: %v", err)
	}
	if pps.ID > maxPpsID {
		return nil, errKindf(ErrPps, "pic_parameter_set_id %d out of range", pps.ID)
	}
	if pps.SpsID, err = br.ReadUE(); err != nil {
		return nil, errKindf(ErrPps, "truncated: %v", err)
	}

	sps := inspector.sps[pps.SpsID]
	if sps == nil {
		return nil, errKindf(ErrMissingSps, "pps %d references unknown sps %d", pps.ID, pps.SpsID)
	}

	if pps.EntropyCodingMode, err = readFlag(br); err != nil {
		return nil, errKindf(ErrPps, "truncated: %v", err)
	}
	if pps.BottomFieldPicOrderInFramePresent, err = readFlag(br); err != nil {
		return nil, errKindf(ErrPps, "truncated: %v", err)
	}

	if pps.NumSliceGroupsMinus1, err = br.ReadUE(); err != nil {
		return nil, errKindf(ErrPps, "truncated: %v", err)
	}
	if pps.NumSliceGroupsMinus1 > 0 {
		// Flexible macroblock ordering is absent from every profile the
		// decode path accepts.
		return nil, errKindf(ErrPps, "num_slice_groups_minus1 %d not supported", pps.NumSliceGroupsMinus1)
	}

	if pps.NumRefIdxL0DefaultActiveMinus1, err = br.ReadUE(); err != nil {
		return nil, errKindf(ErrPps, "truncated: %v", err)
	}
	if pps.NumRefIdxL1DefaultActiveMinus1, err = br.ReadUE(); err != nil {
		return nil, errKindf(ErrPps, "truncated: %v", err)
	}
	if pps.WeightedPred, err = readFlag(br); err != nil {
		return nil, errKindf(ErrPps, "truncated: %v", err)
	}
	if pps.WeightedBipredIdc, err = br.ReadBits(2); err != nil {
		return nil, errKindf(ErrPps, "truncated: %v", err)
	}
	if pps.PicInitQpMinus26, err = br.ReadSE(); err != nil {
		return nil, errKindf(ErrPps, "truncated: %v", err)
	}
	if pps.PicInitQsMinus26, err = br.ReadSE(); err != nil {
		return nil, errKindf(ErrPps, "truncated: %v", err)
	}
	if pps.ChromaQpIndexOffset, err = br.ReadSE(); err != nil {
		return nil, errKindf(ErrPps, "truncated: %v", err)
	}
	if pps.DeblockingFilterControlPresent, err = readFlag(br); err != nil {
		return nil, errKindf(ErrPps, "truncated: %v", err)
	}
	if pps.ConstrainedIntraPred, err = readFlag(br); err != nil {
		return nil, errKindf(ErrPps, "truncated: %v", err)
	}
	if pps.RedundantPicCntPresent, err = readFlag(br); err != nil {
		return nil, errKindf(ErrPps, "truncated: %v", err)
	}

	if br.MoreRBSPData() {
		pps.HasExtension = true
		if pps.Transform8x8Mode, err = readFlag(br); err != nil {
			return nil, errKindf(ErrPps, "truncated: %v", err)
		}

		matrixPresent, err := readFlag(br)
		if err != nil {
			return nil, errKindf(ErrPps, "truncated: %v", err)
		}
		if matrixPresent {
			count8x8 := 0
			if pps.Transform8x8Mode {
				count8x8 = 2
				if sps.ChromaFormatIdc == 3 {
					count8x8 = 6
				}
			}
			matrix, err := parseScalingMatrix(br, 6, count8x8)
			if err != nil {
				return nil, errKindf(ErrPps, "scaling matrix: %v", err)
			}
			pps.PicScalingMatrix = matrix
		}

		if pps.SecondChromaQpIndexOffset, err = br.ReadSE(); err != nil {
			return nil, errKindf(ErrPps, "truncated: %v", err)
		}
	}

	return pps, nil
}

func parseScalingMatrix(br *BitstreamReader, count4x4, count8x8 int) (*ScalingMatrix, error) {
	matrix := &ScalingMatrix{
		List4x4: make([]*ScalingList, count4x4),
		List8x8: make([]*ScalingList, count8x8),
	}

	for i := range matrix.List4x4 {
		list, err := parseScalingList(br, 16)
		if err != nil {
			return nil, err
		}
		matrix.List4x4[i] = list
	}
	for i := range matrix.List8x8 {
		list, err := parseScalingList(br, 64)
		if err != nil {
			return nil, err
		}
		matrix.List8x8[i] = list
	}

	return matrix, nil
}

// parseScalingList decodes one scaling list per §7.3.2.1.1.1. A nil result
// means the list was not present.
func parseScalingList(br *BitstreamReader, size int) (*ScalingList, error) {
	present, err := readFlag(br)
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}

	values := make([]uint8, size)
	lastScale := uint8(8)
	nextScale := int32(8)
	for i := 0; i < size; i++ {
		if nextScale != 0 {
			delta, err := br.ReadSE()
			if err != nil {
				return nil, err
			}
			nextScale = (int32(lastScale) + delta + 256) % 256
			if i == 0 && nextScale == 0 {
				return &ScalingList{UseDefault: true}, nil
			}
		}
		if nextScale != 0 {
			lastScale = uint8(nextScale)
		}
		values[i] = lastScale
	}

	return &ScalingList{Values: values}, nil
}

func sarFromIdc(idc uint8) (uint16, uint16) {
	// Table E-1.
	table := [...][2]uint16{
		{0, 0}, {1, 1}, {12, 11}, {10, 11}, {16, 11}, {40, 33}, {24, 11}, {20, 11},
		{32, 11}, {80, 33}, {18, 11}, {15, 11}, {64, 33}, {160, 99}, {4, 3}, {3, 2}, {2, 1},
	}
	if int(idc) < len(table) {
		return table[idc][0], table[idc][1]
	}
	return 0, 0
}

func readFlag(br *BitstreamReader) (bool, error) {
	bit, err := br.ReadBit()
	return bit == 1, err
}
