// h264_bitstream_test.go
package vkvideo

import (
	"bytes"
	"testing"
)

func collectNALUnits(data []byte) [][]byte {
	var units [][]byte
	for unit := range NALUnits(data) {
		units = append(units, unit)
	}
	return units
}

func TestNALUnits(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want [][]byte
	}{
		{"empty", nil, nil},
		{"no start code", []byte{2, 3}, nil},
		{"bare start code", []byte{0, 0, 1}, [][]byte{{0, 0, 1}}},
		{"single unit", []byte{0, 0, 1, 2}, [][]byte{{0, 0, 1, 2}}},
		{"trailing bare start code", []byte{0, 0, 1, 2, 0, 0, 1}, [][]byte{{0, 0, 1, 2}, {0, 0, 1}}},
		{"two units", []byte{0, 0, 1, 2, 3, 0, 0, 1, 4}, [][]byte{{0, 0, 1, 2, 3}, {0, 0, 1, 4}}},
		{"long start code", []byte{0, 0, 0, 0, 1, 2}, [][]byte{{0, 0, 0, 0, 1, 2}}},
		{"garbage before first unit", []byte{9, 8, 0, 0, 1, 2}, [][]byte{{0, 0, 1, 2}}},
		{"four byte codes", []byte{0, 0, 0, 1, 2, 0, 0, 0, 1, 3}, [][]byte{{0, 0, 0, 1, 2}, {0, 0, 0, 1, 3}}},
		{"zero run in payload", []byte{0, 0, 1, 2, 0, 0, 2, 3}, [][]byte{{0, 0, 1, 2, 0, 0, 2, 3}}},
		{"trailing zeros stay", []byte{0, 0, 1, 2, 0, 0}, [][]byte{{0, 0, 1, 2, 0, 0}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := collectNALUnits(tc.data)
			if len(got) != len(tc.want) {
				t.Fatalf("got %d units, want %d: %v", len(got), len(tc.want), got)
			}
			for i := range got {
				if !bytes.Equal(got[i], tc.want[i]) {
					t.Errorf("unit %d: got %v, want %v", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestNALUnitsEarlyStop(t *testing.T) {
	data := []byte{0, 0, 1, 2, 0, 0, 1, 3, 0, 0, 1, 4}
	var count int
	for range NALUnits(data) {
		count++
		if count == 2 {
			break
		}
	}
	if count != 2 {
		t.Fatalf("got %d units after break, want 2", count)
	}
}

func TestNALPayload(t *testing.T) {
	if got := NALPayload([]byte{0, 0, 0, 1, 0x67, 2}); !bytes.Equal(got, []byte{0x67, 2}) {
		t.Errorf("got %v", got)
	}
	if got := NALPayload([]byte{0, 0, 1, 0x68}); !bytes.Equal(got, []byte{0x68}) {
		t.Errorf("got %v", got)
	}
	// Already stripped input passes through.
	if got := NALPayload([]byte{0x68, 5}); !bytes.Equal(got, []byte{0x68, 5}) {
		t.Errorf("got %v", got)
	}
}

func TestBitstreamReaderEmulationPrevention(t *testing.T) {
	br := NewBitstreamReader([]byte{0x00, 0x00, 0x03, 0x01})

	head, err := br.ReadBits(16)
	if err != nil || head != 0 {
		t.Fatalf("got %d, %v", head, err)
	}
	tail, err := br.ReadBits(8)
	if err != nil {
		t.Fatalf("read past emulation prevention byte: %v", err)
	}
	if tail != 1 {
		t.Errorf("got %d, want 1; the 0x03 byte must be skipped", tail)
	}
	if _, err := br.ReadBit(); err == nil {
		t.Error("expected end of data")
	}
}

func TestExpGolombRoundTrip(t *testing.T) {
	ueValues := []uint32{0, 1, 2, 3, 7, 8, 255, 1023, 65535}
	seValues := []int32{0, 1, -1, 2, -2, 17, -17, 255, -255}

	bw := NewBitstreamWriter(64)
	for _, v := range ueValues {
		bw.WriteUE(v)
	}
	for _, v := range seValues {
		bw.WriteSE(v)
	}
	bw.ByteAlign()

	br := NewBitstreamReader(bw.Data())
	for _, want := range ueValues {
		got, err := br.ReadUE()
		if err != nil {
			t.Fatalf("ReadUE: %v", err)
		}
		if got != want {
			t.Errorf("ue: got %d, want %d", got, want)
		}
	}
	for _, want := range seValues {
		got, err := br.ReadSE()
		if err != nil {
			t.Fatalf("ReadSE: %v", err)
		}
		if got != want {
			t.Errorf("se: got %d, want %d", got, want)
		}
	}
}

func TestMoreRBSPData(t *testing.T) {
	bw := NewBitstreamWriter(8)
	bw.WriteBits(0b101, 3)
	bw.ByteAlign()

	br := NewBitstreamReader(bw.Data())
	if _, err := br.ReadBits(2); err != nil {
		t.Fatal(err)
	}
	if !br.MoreRBSPData() {
		t.Error("one payload bit left, want more data")
	}
	if _, err := br.ReadBit(); err != nil {
		t.Fatal(err)
	}
	if br.MoreRBSPData() {
		t.Error("only the stop bit remains, want no more data")
	}
}

func TestWriteNALUnitEmulationPrevention(t *testing.T) {
	unit := WriteNALUnit(H264_NAL_UNIT_TYPE_SPS, 3, []byte{0x00, 0x00, 0x00})
	want := append(append([]byte{}, NALStartCode...), 0x67, 0x00, 0x00, 0x03, 0x00)
	if !bytes.Equal(unit, want) {
		t.Fatalf("got % x, want % x", unit, want)
	}

	// The reader must see the original bytes again.
	payload := NALPayload(unit)
	br := NewBitstreamReader(payload[1:])
	value, err := br.ReadBits(24)
	if err != nil || value != 0 {
		t.Errorf("got %d, %v", value, err)
	}
}

func TestWriteNALUnitHeader(t *testing.T) {
	unit := WriteNALUnit(H264_NAL_UNIT_TYPE_PPS, 3, []byte{0x80})
	payload := NALPayload(unit)
	if payload[0] != 0x68 {
		t.Errorf("header: got 0x%02x, want 0x68", payload[0])
	}
	if H264NalUnitType(payload[0]&0x1F) != H264_NAL_UNIT_TYPE_PPS {
		t.Errorf("type bits wrong in 0x%02x", payload[0])
	}
}
