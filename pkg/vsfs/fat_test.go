package vsfs

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFATAddressing(t *testing.T) {
	// Block 4095 maps to table block 15, offset 255: the table is sparse,
	// only the first 256 slots of each 512-entry block are addressed.
	require.Equal(t, uint32(15), fatBlock(4095))
	require.Equal(t, uint32(255), fatOffset(4095))
	require.Equal(t, uint32(0), fatBlock(41))
	require.Equal(t, uint32(41), fatOffset(41))
}

func TestFATLinkAndWalk(t *testing.T) {
	var fat fatTable

	fat.link(fatListNull, 41)
	fat.link(41, 300)
	fat.link(300, 42)

	require.Equal(t, uint32(300), fat.next(41))
	require.Equal(t, uint32(42), fat.next(300))
	require.Equal(t, uint32(fatListNull), fat.next(42))

	chain, err := fat.walkChain(41)
	require.NoError(t, err)
	require.Equal(t, []uint32{41, 300, 42}, chain)

	require.Equal(t, uint32(42), fat.lastBlock(41))
	require.Equal(t, uint32(noStartBlock), fat.lastBlock(noStartBlock))

	chain, err = fat.walkChain(noStartBlock)
	require.NoError(t, err)
	require.Empty(t, chain)
}

func TestFATWalkDetectsCycle(t *testing.T) {
	var fat fatTable
	fat.setNext(41, 42)
	fat.setNext(42, 41)

	_, err := fat.walkChain(41)
	require.ErrorIs(t, err, ErrCorrupted)
}

func TestFATEncodeDecodeBlock(t *testing.T) {
	var fat fatTable
	fat.setNext(300, 301) // table block 1, offset 44

	buf := make([]byte, BlockSize)
	fat.encodeFATBlock(1, buf)
	require.Equal(t, uint32(301), binary.LittleEndian.Uint32(buf[44*fatEntrySize:]))

	var got fatTable
	got.decodeFATBlock(1, buf)
	require.Equal(t, fat, got)
}
