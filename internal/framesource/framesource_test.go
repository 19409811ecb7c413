package framesource

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeCapture(t *testing.T, frames ...[]byte) string {
	t.Helper()
	var buf []byte
	for _, f := range frames {
		buf = append(buf, byte(len(f)>>8), byte(len(f)))
		buf = append(buf, f...)
	}
	path := filepath.Join(t.TempDir(), "capture.itch")
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}

func TestNextFrameYieldsInOrder(t *testing.T) {
	path := writeCapture(t, []byte("AAAA"), []byte("BB"), []byte("CCCCCC"))

	src, err := Open(path)
	require.NoError(t, err)
	defer src.Close()

	f1, ok := src.NextFrame()
	require.True(t, ok)
	require.Equal(t, []byte("AAAA"), f1)

	f2, ok := src.NextFrame()
	require.True(t, ok)
	require.Equal(t, []byte("BB"), f2)

	f3, ok := src.NextFrame()
	require.True(t, ok)
	require.Equal(t, []byte("CCCCCC"), f3)

	_, ok = src.NextFrame()
	require.False(t, ok)
}

func TestTruncatedTrailingFrameEndsCleanly(t *testing.T) {
	path := writeCapture(t, []byte("AAAA"))
	// Append a dangling length prefix claiming more payload than exists.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.Write([]byte{0x00, 0x10, 'x'})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	src, err := Open(path)
	require.NoError(t, err)
	defer src.Close()

	_, ok := src.NextFrame()
	require.True(t, ok)

	_, ok = src.NextFrame()
	require.False(t, ok)
}

func TestEmptyFile(t *testing.T) {
	path := writeCapture(t)
	src, err := Open(path)
	require.NoError(t, err)
	defer src.Close()

	_, ok := src.NextFrame()
	require.False(t, ok)
}

func TestOffsetAdvances(t *testing.T) {
	path := writeCapture(t, []byte("AA"), []byte("BBBB"))
	src, err := Open(path)
	require.NoError(t, err)
	defer src.Close()

	require.Equal(t, 0, src.Offset())
	src.NextFrame()
	require.Equal(t, 4, src.Offset())
	src.NextFrame()
	require.Equal(t, 10, src.Offset())
}
