// Package wire frames bit-packed shot batches for transport.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/observe-l/slidewin/internal/bitpack"
)

// Payload kinds.
const (
	KindDetections  uint8 = 0
	KindPredictions uint8 = 1
)

const Version uint8 = 1

var magic = [4]byte{'S', 'W', 'B', '8'}

type Header struct {
	Version     uint8  // 1
	Kind        uint8  // 0=detections,1=predictions
	Flags       uint16 // reserved
	Shots       uint32
	BitsPerShot uint32 // detectors or observables per shot
}

const HeaderLen = 4 + 1 + 1 + 2 + 4 + 4

var (
	ErrShortFrame = errors.New("wire: frame shorter than header")
	ErrBadMagic   = errors.New("wire: bad magic")
	ErrVersion    = errors.New("wire: unsupported version")
)

func (h *Header) MarshalBinary(b []byte) []byte {
	if len(b) < HeaderLen {
		b = make([]byte, HeaderLen)
	}
	copy(b[0:4], magic[:])
	b[4] = h.Version
	b[5] = h.Kind
	binary.LittleEndian.PutUint16(b[6:8], h.Flags)
	binary.LittleEndian.PutUint32(b[8:12], h.Shots)
	binary.LittleEndian.PutUint32(b[12:16], h.BitsPerShot)
	return b[:HeaderLen]
}

func (h *Header) UnmarshalBinary(b []byte) bool {
	if len(b) < HeaderLen || [4]byte(b[0:4]) != magic {
		return false
	}
	h.Version = b[4]
	h.Kind = b[5]
	h.Flags = binary.LittleEndian.Uint16(b[6:8])
	h.Shots = binary.LittleEndian.Uint32(b[8:12])
	h.BitsPerShot = binary.LittleEndian.Uint32(b[12:16])
	return true
}

// PayloadLen is the number of payload bytes the header announces.
func (h *Header) PayloadLen() int {
	return int(h.Shots) * bitpack.BytesFor(int(h.BitsPerShot))
}

// Frame is a header followed by Shots rows of ceil(BitsPerShot/8) bytes.
type Frame struct {
	Header
	Payload []byte
}

// Encode frames packed as a batch of shots rows of bitsPerShot bits.
func Encode(kind uint8, packed []byte, shots, bitsPerShot int) ([]byte, error) {
	if shots < 0 || bitsPerShot < 0 {
		return nil, fmt.Errorf("wire: negative shape %dx%d", shots, bitsPerShot)
	}
	h := Header{Version: Version, Kind: kind, Shots: uint32(shots), BitsPerShot: uint32(bitsPerShot)}
	if want := h.PayloadLen(); len(packed) != want {
		return nil, fmt.Errorf("wire: payload is %d bytes, want %d for %d shots of %d bits", len(packed), want, shots, bitsPerShot)
	}
	out := make([]byte, HeaderLen+len(packed))
	h.MarshalBinary(out)
	copy(out[HeaderLen:], packed)
	return out, nil
}

// Decode parses and validates a frame. The payload aliases b.
func Decode(b []byte) (Frame, error) {
	var f Frame
	if len(b) < HeaderLen {
		return f, ErrShortFrame
	}
	if !f.Header.UnmarshalBinary(b) {
		return f, ErrBadMagic
	}
	if f.Version != Version {
		return f, fmt.Errorf("%w %d", ErrVersion, f.Version)
	}
	if want := f.PayloadLen(); len(b)-HeaderLen != want {
		return f, fmt.Errorf("wire: payload is %d bytes, header announces %d", len(b)-HeaderLen, want)
	}
	f.Payload = b[HeaderLen:]
	return f, nil
}
