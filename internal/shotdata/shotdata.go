// Package shotdata reads and writes per-shot bit tables in the b8 and 01
// formats. Paths ending in ".zst" are transparently zstd (de)compressed.
package shotdata

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/observe-l/slidewin/internal/bitpack"
)

// Format names a shot data layout.
type Format string

const (
	// B8 stores each shot as ceil(bits/8) bytes, LSB first, with no separator.
	B8 Format = "b8"
	// Text01 stores each shot as a line of '0' and '1' characters.
	Text01 Format = "01"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case B8:
		return B8, nil
	case Text01:
		return Text01, nil
	}
	return "", fmt.Errorf("shotdata: unknown format %q", s)
}

// ErrTruncated is returned when the input does not hold a whole number of shots.
var ErrTruncated = errors.New("shotdata: truncated shot data")

// Read loads every shot from r and returns them bit-packed, one row of
// ceil(bitsPerShot/8) bytes per shot.
func Read(r io.Reader, f Format, bitsPerShot int) ([]byte, int, error) {
	if bitsPerShot < 0 {
		return nil, 0, fmt.Errorf("shotdata: negative bits per shot %d", bitsPerShot)
	}
	switch f {
	case B8:
		return readB8(r, bitsPerShot)
	case Text01:
		return read01(r, bitsPerShot)
	}
	return nil, 0, fmt.Errorf("shotdata: unknown format %q", f)
}

func readB8(r io.Reader, bitsPerShot int) ([]byte, int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, err
	}
	row := bitpack.BytesFor(bitsPerShot)
	if row == 0 {
		if len(data) != 0 {
			return nil, 0, fmt.Errorf("%w: %d bytes for zero-width shots", ErrTruncated, len(data))
		}
		return data, 0, nil
	}
	if len(data)%row != 0 {
		return nil, 0, fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrTruncated, len(data), row)
	}
	return data, len(data) / row, nil
}

func read01(r io.Reader, bitsPerShot int) ([]byte, int, error) {
	row := bitpack.BytesFor(bitsPerShot)
	var out []byte
	bits := make([]bool, bitsPerShot)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), bitsPerShot+1024)
	shots := 0
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if len(line) != bitsPerShot {
			return nil, 0, fmt.Errorf("%w: shot %d has %d bits, want %d", ErrTruncated, shots, len(line), bitsPerShot)
		}
		for i := 0; i < len(line); i++ {
			switch line[i] {
			case '0':
				bits[i] = false
			case '1':
				bits[i] = true
			default:
				return nil, 0, fmt.Errorf("shotdata: shot %d: bad character %q", shots, line[i])
			}
		}
		out = append(out, make([]byte, row)...)
		bitpack.PackInto(out[shots*row:], bits)
		shots++
	}
	if err := sc.Err(); err != nil {
		return nil, 0, err
	}
	return out, shots, nil
}

// Write stores bit-packed shots (rows of ceil(bitsPerShot/8) bytes) to w.
func Write(w io.Writer, f Format, packed []byte, bitsPerShot int) error {
	row := bitpack.BytesFor(bitsPerShot)
	if row > 0 && len(packed)%row != 0 {
		return fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrTruncated, len(packed), row)
	}
	switch f {
	case B8:
		_, err := w.Write(packed)
		return err
	case Text01:
		if row == 0 {
			return nil
		}
		bw := bufio.NewWriter(w)
		line := make([]byte, bitsPerShot+1)
		line[bitsPerShot] = '\n'
		bits := make([]bool, bitsPerShot)
		for off := 0; off < len(packed); off += row {
			bitpack.UnpackInto(bits, packed[off:off+row])
			for i, b := range bits {
				line[i] = '0'
				if b {
					line[i] = '1'
				}
			}
			if _, err := bw.Write(line); err != nil {
				return err
			}
		}
		return bw.Flush()
	}
	return fmt.Errorf("shotdata: unknown format %q", f)
}

// ReadFile reads shots from path, decompressing ".zst" files.
func ReadFile(path string, f Format, bitsPerShot int) ([]byte, int, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer rc.Close()
	return Read(rc, f, bitsPerShot)
}

// WriteFile writes shots to path, compressing when it ends in ".zst".
func WriteFile(path string, f Format, packed []byte, bitsPerShot int) error {
	wc, err := Create(path)
	if err != nil {
		return err
	}
	if err := Write(wc, f, packed, bitsPerShot); err != nil {
		_ = wc.Close()
		return err
	}
	return wc.Close()
}

// Open opens path for reading, wrapping it in a zstd decoder for ".zst" files.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".zst") {
		return f, nil
	}
	dec, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(1))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &zstdReadCloser{dec: dec, f: f}, nil
}

// Create creates path for writing, wrapping it in a zstd encoder for ".zst" files.
func Create(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".zst") {
		return f, nil
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault), zstd.WithEncoderConcurrency(1))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &zstdWriteCloser{enc: enc, f: f}, nil
}

type zstdReadCloser struct {
	dec *zstd.Decoder
	f   *os.File
}

func (z *zstdReadCloser) Read(p []byte) (int, error) { return z.dec.Read(p) }

func (z *zstdReadCloser) Close() error {
	z.dec.Close()
	return z.f.Close()
}

type zstdWriteCloser struct {
	enc *zstd.Encoder
	f   *os.File
}

func (z *zstdWriteCloser) Write(p []byte) (int, error) { return z.enc.Write(p) }

func (z *zstdWriteCloser) Close() error {
	if err := z.enc.Close(); err != nil {
		_ = z.f.Close()
		return err
	}
	return z.f.Close()
}
