// Package bitpack converts between the LSB-first packed byte layout used for
// detection events and predictions and one bool per bit.
package bitpack

import "fmt"

// BytesFor returns the number of bytes needed to hold n bits.
func BytesFor(n int) int { return (n + 7) / 8 }

// Unpack expands the first n bits of b (LSB first within each byte) into a
// bool slice of length n. Padding bits beyond n are never read.
func Unpack(b []byte, n int) ([]bool, error) {
	if n < 0 {
		return nil, fmt.Errorf("bitpack: negative bit count %d", n)
	}
	if len(b) < BytesFor(n) {
		return nil, fmt.Errorf("bitpack: %d bytes cannot hold %d bits", len(b), n)
	}
	out := make([]bool, n)
	UnpackInto(out, b)
	return out, nil
}

// UnpackInto fills dst with the first len(dst) bits of b. The caller must
// guarantee len(b) >= BytesFor(len(dst)).
func UnpackInto(dst []bool, b []byte) {
	n := len(dst)
	full := n >> 3
	for i := 0; i < full; i++ {
		v := b[i]
		d := dst[i<<3 : i<<3+8]
		d[0] = v&0x01 != 0
		d[1] = v&0x02 != 0
		d[2] = v&0x04 != 0
		d[3] = v&0x08 != 0
		d[4] = v&0x10 != 0
		d[5] = v&0x20 != 0
		d[6] = v&0x40 != 0
		d[7] = v&0x80 != 0
	}
	if rem := n & 7; rem != 0 {
		v := b[full]
		for j := 0; j < rem; j++ {
			dst[full<<3+j] = (v>>uint(j))&1 == 1
		}
	}
}

// Pack packs v into exactly BytesFor(len(v)) bytes, zero padding the last byte.
func Pack(v []bool) []byte {
	out := make([]byte, BytesFor(len(v)))
	PackInto(out, v)
	return out
}

// PackInto packs v into dst[:BytesFor(len(v))], clearing those bytes first.
func PackInto(dst []byte, v []bool) {
	nb := BytesFor(len(v))
	for i := 0; i < nb; i++ {
		dst[i] = 0
	}
	for i, bit := range v {
		if bit {
			dst[i>>3] |= 1 << (uint(i) & 7)
		}
	}
}

// Count returns the number of set bits in v.
func Count(v []bool) int {
	c := 0
	for _, b := range v {
		if b {
			c++
		}
	}
	return c
}
