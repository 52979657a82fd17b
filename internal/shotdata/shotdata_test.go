package shotdata

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestB8Roundtrip(t *testing.T) {
	packed := []byte{0x01, 0x02, 0xFF, 0x03}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, B8, packed, 10))
	got, shots, err := Read(&buf, B8, 10)
	require.NoError(t, err)
	require.Equal(t, 2, shots)
	require.Equal(t, packed, got)
}

func TestB8Truncated(t *testing.T) {
	_, _, err := Read(bytes.NewReader([]byte{1, 2, 3}), B8, 10)
	require.ErrorIs(t, err, ErrTruncated)
}

func Test01Roundtrip(t *testing.T) {
	text := "1000000001\n0000000000\n"
	packed, shots, err := Read(strings.NewReader(text), Text01, 10)
	require.NoError(t, err)
	require.Equal(t, 2, shots)
	require.Equal(t, []byte{0x01, 0x02, 0x00, 0x00}, packed)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Text01, packed, 10))
	require.Equal(t, text, buf.String())
}

func Test01Rejects(t *testing.T) {
	_, _, err := Read(strings.NewReader("101\n"), Text01, 4)
	require.ErrorIs(t, err, ErrTruncated)
	_, _, err = Read(strings.NewReader("10x1\n"), Text01, 4)
	require.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("B8")
	require.NoError(t, err)
	require.Equal(t, B8, f)
	_, err = ParseFormat("ptb64")
	require.Error(t, err)
}

func TestFilesWithCompression(t *testing.T) {
	dir := t.TempDir()
	packed := bytes.Repeat([]byte{0xA5, 0x01}, 500)
	for _, name := range []string{"dets.b8", "dets.b8.zst", "dets.01.zst"} {
		f := B8
		if strings.Contains(name, ".01") {
			f = Text01
		}
		path := filepath.Join(dir, name)
		require.NoError(t, WriteFile(path, f, packed, 9))
		got, shots, err := ReadFile(path, f, 9)
		require.NoError(t, err, name)
		require.Equal(t, 500, shots, name)
		require.Equal(t, packed, got, name)
	}
}
