// h264_bitstream.go
package vkvideo

import (
	"io"
	"iter"
)

// H264NalUnitType - NAL unit types
type H264NalUnitType uint32

const (
	H264_NAL_UNIT_TYPE_UNSPECIFIED     H264NalUnitType = 0
	H264_NAL_UNIT_TYPE_CODED_SLICE     H264NalUnitType = 1
	H264_NAL_UNIT_TYPE_CODED_SLICE_IDR H264NalUnitType = 5
	H264_NAL_UNIT_TYPE_SEI             H264NalUnitType = 6
	H264_NAL_UNIT_TYPE_SPS             H264NalUnitType = 7
	H264_NAL_UNIT_TYPE_PPS             H264NalUnitType = 8
	H264_NAL_UNIT_TYPE_AUD             H264NalUnitType = 9
	H264_NAL_UNIT_TYPE_END_OF_SEQ      H264NalUnitType = 10
	H264_NAL_UNIT_TYPE_END_OF_STREAM   H264NalUnitType = 11
	H264_NAL_UNIT_TYPE_FILLER          H264NalUnitType = 12
)

// How many 0 bytes have to precede a 1 for it to count as a start code.
const nalMin0Count = 2

// NALUnits splits an Annex B bitstream into NAL units without copying.
// Every returned slice aliases data and begins with the unit's own start
// code (the full zero run plus the 0x01) and runs up to the next unit's
// start code or the end of the buffer. Bytes before the first start code
// are skipped; a buffer without any start code yields nothing. A trailing
// bare start code is still emitted as a unit.
//
// Decoders that need the payload can skip the start code via NALPayload.
func NALUnits(data []byte) iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		start, next := nextStartCode(data, 0)
		for start >= 0 {
			followStart, followNext := nextStartCode(data, next)

			end := len(data)
			if followStart >= 0 {
				end = followStart
			}
			if !yield(data[start:end]) {
				return
			}

			start, next = followStart, followNext
		}
	}
}

// nextStartCode scans data from to find a start code. It returns the index
// of the zero run's first byte and the index just past the 0x01, or -1, -1.
func nextStartCode(data []byte, from int) (int, int) {
	count0 := 0
	for i := from; i < len(data); i++ {
		switch {
		case data[i] == 0:
			count0++
		case data[i] == 1 && count0 >= nalMin0Count:
			return i - count0, i + 1
		default:
			count0 = 0
		}
	}
	return -1, -1
}

// NALPayload strips the leading start code from a unit returned by
// NALUnits. Units without a start code are returned unchanged.
func NALPayload(unit []byte) []byte {
	start, next := nextStartCode(unit, 0)
	if start != 0 {
		return unit
	}
	return unit[next:]
}

// BitstreamReader reads RBSP bits from a NAL payload, removing emulation
// prevention bytes on the fly.
type BitstreamReader struct {
	data      []byte
	bytePos   int
	bitPos    int
	zeroCount int
}

// NewBitstreamReader reads the RBSP of a NAL payload. The payload must not
// include the start code or the one-byte NAL header.
func NewBitstreamReader(data []byte) *BitstreamReader {
	return &BitstreamReader{data: data}
}

// ReadBit returns the next RBSP bit. io.ErrUnexpectedEOF past the end.
func (br *BitstreamReader) ReadBit() (uint32, error) {
	if br.bitPos == 0 {
		// 00 00 03 carries no RBSP payload in its third byte.
		if br.zeroCount >= 2 && br.bytePos < len(br.data) && br.data[br.bytePos] == 0x03 {
			br.bytePos++
			br.zeroCount = 0
		}
		if br.bytePos >= len(br.data) {
			return 0, io.ErrUnexpectedEOF
		}
		if br.data[br.bytePos] == 0 {
			br.zeroCount++
		} else {
			br.zeroCount = 0
		}
	}
	if br.bytePos >= len(br.data) {
		return 0, io.ErrUnexpectedEOF
	}

	bit := uint32(br.data[br.bytePos]>>(7-br.bitPos)) & 1
	br.bitPos++
	if br.bitPos == 8 {
		br.bitPos = 0
		br.bytePos++
	}
	return bit, nil
}

// ReadBits reads numBits bits, MSB first.
func (br *BitstreamReader) ReadBits(numBits int) (uint32, error) {
	var value uint32
	for i := 0; i < numBits; i++ {
		bit, err := br.ReadBit()
		if err != nil {
			return 0, err
		}
		value = value<<1 | bit
	}
	return value, nil
}

// ReadUE reads an unsigned Exp-Golomb coded value.
func (br *BitstreamReader) ReadUE() (uint32, error) {
	leadingZeroBits := 0
	for {
		bit, err := br.ReadBit()
		if err != nil {
			return 0, err
		}
		if bit == 1 {
			break
		}
		leadingZeroBits++
		if leadingZeroBits > 31 {
			return 0, io.ErrUnexpectedEOF
		}
	}

	rest, err := br.ReadBits(leadingZeroBits)
	if err != nil {
		return 0, err
	}
	return (1 << leadingZeroBits) - 1 + rest, nil
}

// ReadSE reads a signed Exp-Golomb coded value.
func (br *BitstreamReader) ReadSE() (int32, error) {
	codeNum, err := br.ReadUE()
	if err != nil {
		return 0, err
	}
	if codeNum%2 == 0 {
		return -int32(codeNum / 2), nil
	}
	return int32(codeNum/2) + 1, nil
}

// MoreRBSPData reports whether payload bits remain before the RBSP stop
// bit.
func (br *BitstreamReader) MoreRBSPData() bool {
	// Find the last non-zero byte; it carries the stop bit.
	last := len(br.data) - 1
	for last >= 0 && br.data[last] == 0 {
		last--
	}
	if last < 0 || br.bytePos > last {
		return false
	}
	if br.bytePos < last {
		return true
	}

	// Bits in the final byte before the stop bit are payload.
	stopBit := 0
	for b := br.data[last]; b&1 == 0; b >>= 1 {
		stopBit++
	}
	return br.bitPos < 7-stopBit
}

// BitstreamWriter writes H.264 bitstream data.
type BitstreamWriter struct {
	data   []byte
	bitPos int
}

// NewBitstreamWriter creates a new bitstream writer
func NewBitstreamWriter(capacity int) *BitstreamWriter {
	return &BitstreamWriter{
		data: make([]byte, 0, capacity),
	}
}

// WriteBits writes n bits to the bitstream
func (bw *BitstreamWriter) WriteBits(value uint32, numBits int) {
	for numBits > 0 {
		if bw.bitPos == 0 {
			bw.data = append(bw.data, 0)
		}

		bitsToWrite := 8 - bw.bitPos
		if bitsToWrite > numBits {
			bitsToWrite = numBits
		}

		shift := numBits - bitsToWrite
		mask := uint32((1 << bitsToWrite) - 1)
		bits := (value >> shift) & mask

		bw.data[len(bw.data)-1] |= byte(bits << (8 - bw.bitPos - bitsToWrite))

		bw.bitPos += bitsToWrite
		if bw.bitPos >= 8 {
			bw.bitPos = 0
		}
		numBits -= bitsToWrite
	}
}

// WriteBit writes a single bit
func (bw *BitstreamWriter) WriteBit(value uint32) {
	bw.WriteBits(value&1, 1)
}

// WriteUE writes an unsigned Exp-Golomb coded value
func (bw *BitstreamWriter) WriteUE(value uint32) {
	value++
	leadingZeroBits := 0
	temp := value
	for temp > 1 {
		temp >>= 1
		leadingZeroBits++
	}

	for i := 0; i < leadingZeroBits; i++ {
		bw.WriteBit(0)
	}
	bw.WriteBits(value, leadingZeroBits+1)
}

// WriteSE writes a signed Exp-Golomb coded value
func (bw *BitstreamWriter) WriteSE(value int32) {
	var codeNum uint32
	if value <= 0 {
		codeNum = uint32(-value) * 2
	} else {
		codeNum = uint32(value)*2 - 1
	}
	bw.WriteUE(codeNum)
}

// ByteAlign writes RBSP trailing bits (stop bit + alignment zeros).
// This MUST always write at least the stop bit, even when byte-aligned
func (bw *BitstreamWriter) ByteAlign() {
	bw.WriteBit(1) // rbsp_stop_one_bit
	for bw.bitPos != 0 {
		bw.WriteBit(0) // rbsp_alignment_zero_bit
	}
}

// Data returns the written data
func (bw *BitstreamWriter) Data() []byte {
	return bw.data
}

// NALStartCode is the Annex B start code
var NALStartCode = []byte{0x00, 0x00, 0x00, 0x01}

// WriteNALUnit wraps RBSP data in a NAL unit with start code
func WriteNALUnit(nalType H264NalUnitType, refIdc uint8, rbsp []byte) []byte {
	// Escape prevention: replace 00 00 00/01/02/03 with 00 00 03 00/01/02/03
	escaped := make([]byte, 0, len(rbsp)*2)
	zeroCount := 0
	for _, b := range rbsp {
		if zeroCount >= 2 && b <= 3 {
			escaped = append(escaped, 0x03)
			zeroCount = 0
		}
		escaped = append(escaped, b)
		if b == 0 {
			zeroCount++
		} else {
			zeroCount = 0
		}
	}

	// NAL header: forbidden_zero_bit (1) | nal_ref_idc (2) | nal_unit_type (5)
	nalHeader := (refIdc << 5) | uint8(nalType)

	result := make([]byte, 0, 4+1+len(escaped))
	result = append(result, NALStartCode...)
	result = append(result, nalHeader)
	result = append(result, escaped...)

	return result
}
