// rtp_test.go
package vkvideo

import (
	"bytes"
	"testing"

	"github.com/pion/rtp"
	"github.com/pion/rtp/codecs"
)

func TestAnnexBAssembler(t *testing.T) {
	sps := WriteNALUnit(H264_NAL_UNIT_TYPE_SPS, 3, writeBaselineSPS(31))
	pps := WriteNALUnit(H264_NAL_UNIT_TYPE_PPS, 3, writeBasicPPS())

	payloader := &codecs.H264Payloader{DisableStapA: true}
	var payloads [][]byte
	payloads = append(payloads, payloader.Payload(1200, sps)...)
	payloads = append(payloads, payloader.Payload(1200, pps)...)
	if len(payloads) == 0 {
		t.Fatal("payloader produced nothing")
	}

	inspector := NewStreamInspector()
	assembler := NewAnnexBAssembler(inspector)
	for seq, payload := range payloads {
		packet := &rtp.Packet{
			Header:  rtp.Header{Version: 2, SequenceNumber: uint16(seq), PayloadType: 96},
			Payload: payload,
		}
		if err := assembler.Push(packet); err != nil {
			t.Fatalf("packet %d: %v", seq, err)
		}
	}

	out := assembler.Bytes()
	if !bytes.HasPrefix(out, NALStartCode) {
		t.Fatalf("output must start with a start code, got % x", out[:min(8, len(out))])
	}
	if units := collectNALUnits(out); len(units) != 2 {
		t.Fatalf("got %d units, want 2", len(units))
	}

	if inspector.SPS(0) == nil || inspector.PPS(0) == nil {
		t.Error("depacketized units must populate the parser context")
	}
}

func TestAnnexBAssemblerFragmented(t *testing.T) {
	// Force FU-A fragmentation with a tiny MTU.
	sps := WriteNALUnit(H264_NAL_UNIT_TYPE_SPS, 3, writeBaselineSPS(31))
	payloader := &codecs.H264Payloader{DisableStapA: true}
	payloads := payloader.Payload(8, sps)
	if len(payloads) < 2 {
		t.Fatalf("expected fragmentation, got %d payloads", len(payloads))
	}

	inspector := NewStreamInspector()
	assembler := NewAnnexBAssembler(inspector)
	for i, payload := range payloads {
		if err := assembler.Push(&rtp.Packet{Payload: payload}); err != nil {
			t.Fatalf("fragment %d: %v", i, err)
		}
		if i < len(payloads)-1 && len(assembler.Bytes()) != 0 {
			t.Fatal("mid-fragment output must stay empty")
		}
	}

	if inspector.SPS(0) == nil {
		t.Error("reassembled SPS missing from context")
	}
}

func TestAnnexBAssemblerPushRaw(t *testing.T) {
	pps := WriteNALUnit(H264_NAL_UNIT_TYPE_PPS, 3, writeBasicPPS())
	payloads := (&codecs.H264Payloader{DisableStapA: true}).Payload(1200, pps)

	assembler := NewAnnexBAssembler(nil)
	for _, payload := range payloads {
		packet := &rtp.Packet{
			Header:  rtp.Header{Version: 2, PayloadType: 96},
			Payload: payload,
		}
		raw, err := packet.Marshal()
		if err != nil {
			t.Fatal(err)
		}
		if err := assembler.PushRaw(raw); err != nil {
			t.Fatal(err)
		}
	}
	if len(assembler.Bytes()) == 0 {
		t.Fatal("no output")
	}

	assembler.Reset()
	if len(assembler.Bytes()) != 0 {
		t.Error("Reset must drop the output")
	}

	if err := assembler.PushRaw([]byte{1, 2}); err == nil {
		t.Error("truncated packet must fail to unmarshal")
	}
}
