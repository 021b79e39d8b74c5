// rtp.go
package vkvideo

import (
	"github.com/pion/rtp"
	"github.com/pion/rtp/codecs"
)

// AnnexBAssembler reassembles an H.264 RTP stream into Annex B form. Every
// depacketized NAL unit lands in an output buffer ready for the segmenter
// and, when an inspector is attached, updates its parameter set context on
// the way through. Fragmented units (FU-A) surface only once complete.
type AnnexBAssembler struct {
	depacketizer codecs.H264Packet
	inspector    *StreamInspector
	out          []byte
}

// NewAnnexBAssembler creates an assembler. inspector may be nil when only
// the raw Annex B bytes are wanted.
func NewAnnexBAssembler(inspector *StreamInspector) *AnnexBAssembler {
	return &AnnexBAssembler{inspector: inspector}
}

// Push consumes one RTP packet in arrival order. Reordering and loss
// handling are the caller's job; a jitter buffer belongs in front of this.
func (assembler *AnnexBAssembler) Push(packet *rtp.Packet) error {
	return assembler.push(packet.Payload)
}

// PushRaw consumes one serialized RTP packet.
func (assembler *AnnexBAssembler) PushRaw(raw []byte) error {
	packet := &rtp.Packet{}
	if err := packet.Unmarshal(raw); err != nil {
		return err
	}
	return assembler.Push(packet)
}

func (assembler *AnnexBAssembler) push(payload []byte) error {
	annexB, err := assembler.depacketizer.Unmarshal(payload)
	if err != nil {
		return err
	}
	if len(annexB) == 0 {
		// Mid-fragment, nothing complete yet.
		return nil
	}

	if assembler.inspector != nil {
		if err := assembler.inspector.FeedAll(annexB); err != nil {
			return err
		}
	}
	assembler.out = append(assembler.out, annexB...)
	return nil
}

// Bytes returns the Annex B stream assembled so far. The slice aliases the
// assembler's buffer; it stays valid until the next Push or Reset.
func (assembler *AnnexBAssembler) Bytes() []byte {
	return assembler.out
}

// Reset drops the assembled output but keeps the inspector context.
func (assembler *AnnexBAssembler) Reset() {
	assembler.out = assembler.out[:0]
}
