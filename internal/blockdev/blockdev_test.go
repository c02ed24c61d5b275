package blockdev_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/ostafen/vsfs/internal/blockdev"
	"github.com/stretchr/testify/require"
)

const blockSize = 2048

func newDevice(t *testing.T, blocks int64) *blockdev.Device {
	t.Helper()

	dev, err := blockdev.Create(filepath.Join(t.TempDir(), "img"), blockSize)
	require.NoError(t, err)
	t.Cleanup(func() { dev.Close() })

	require.NoError(t, dev.Truncate(blocks*blockSize))
	return dev
}

func TestReadWriteBlock(t *testing.T) {
	dev := newDevice(t, 4)

	want := bytes.Repeat([]byte{0xab}, blockSize)
	require.NoError(t, dev.WriteBlock(want, 2))
	require.NoError(t, dev.Sync())

	got := make([]byte, blockSize)
	require.NoError(t, dev.ReadBlock(got, 2))
	require.Equal(t, want, got)

	// Untouched blocks read back as zeros.
	require.NoError(t, dev.ReadBlock(got, 1))
	require.Equal(t, make([]byte, blockSize), got)
}

func TestBufferSizeMismatch(t *testing.T) {
	dev := newDevice(t, 2)

	require.Error(t, dev.ReadBlock(make([]byte, 16), 0))
	require.Error(t, dev.WriteBlock(make([]byte, blockSize+1), 0))
}

func TestShortReadPastEnd(t *testing.T) {
	dev := newDevice(t, 2)

	buf := make([]byte, blockSize)
	require.Error(t, dev.ReadBlock(buf, 2))
}

func TestSize(t *testing.T) {
	dev := newDevice(t, 8)

	size, err := dev.Size()
	require.NoError(t, err)
	require.Equal(t, int64(8*blockSize), size)
}

func TestOpenMissing(t *testing.T) {
	_, err := blockdev.Open(filepath.Join(t.TempDir(), "missing"), blockSize)
	require.Error(t, err)
}
