package vsfs

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDirEncodeDecodeBlock(t *testing.T) {
	var dir directory
	dir.entries[16] = dirEntry{ // second slot block, first entry
		occupied:   true,
		name:       "example.txt",
		size:       3000,
		startBlock: 41,
	}
	dir.entries[17] = dirEntry{
		occupied:   true,
		name:       "b",
		size:       0,
		startBlock: noStartBlock,
	}

	buf := make([]byte, BlockSize)
	dir.encodeDirBlock(1, buf)

	require.Equal(t, byte(1), buf[0])
	require.Equal(t, []byte("example.txt\x00"), buf[entryNameOff:entryNameOff+12])
	require.Equal(t, uint64(3000), binary.LittleEndian.Uint64(buf[entrySizeOff:]))
	require.Equal(t, uint32(41), binary.LittleEndian.Uint32(buf[entryStartOff:]))

	// Unoccupied slots serialize as all zeros.
	for _, b := range buf[2*dirEntrySize : 3*dirEntrySize] {
		require.Zero(t, b)
	}

	var got directory
	got.decodeDirBlock(1, buf)
	for i := 0; i < dirEntriesPerBlock; i++ {
		require.Equal(t, dir.entries[16+i], got.entries[16+i])
	}
}

func TestDirFind(t *testing.T) {
	var dir directory
	dir.entries[3] = dirEntry{occupied: true, name: "a"}
	dir.entries[7] = dirEntry{occupied: true, name: "b"}

	require.Equal(t, 3, dir.find("a"))
	require.Equal(t, 7, dir.find("b"))
	require.Equal(t, -1, dir.find("c"))

	require.Equal(t, 0, dir.findFree())

	for i := range dir.entries {
		dir.entries[i].occupied = true
	}
	require.Equal(t, -1, dir.findFree())
}

func TestValidateName(t *testing.T) {
	require.NoError(t, validateName("a"))
	require.NoError(t, validateName("file1.bin"))

	// 29 bytes is the maximum, 30 is rejected.
	require.NoError(t, validateName("aaaaaaaaaaaaaaaaaaaaaaaaaaaaa"))
	require.ErrorIs(t, validateName("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"), ErrNameTooLong)

	require.ErrorIs(t, validateName(""), ErrInvalidArgument)
	require.ErrorIs(t, validateName("a/b"), ErrInvalidArgument)
	require.ErrorIs(t, validateName("a\x00b"), ErrInvalidArgument)
}
