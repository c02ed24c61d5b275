// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package vsfs implements a flat-namespace virtual filesystem stored inside a
// single backing file. The image is divided into fixed 2048-byte blocks: block
// 0 holds the superblock, blocks 1..32 the file allocation table, blocks
// 33..40 the root directory, and everything from block 41 on is file data
// linked into per-file chains through the FAT.
package vsfs

// On-disk layout constants. The backing file is BlockSize * blockcount bytes,
// with blockcount = 2^m / BlockSize for a size exponent m in [MinSizeExp,
// MaxSizeExp].
const (
	BlockSize = 2048

	// MaxBlockCount bounds the image to 4096 blocks (2^23 bytes). The FAT
	// addressing scheme and the free bitmap both assume block numbers fit
	// in 12 bits.
	MaxBlockCount = 4096

	superblockIdx  = 0
	fatFirstBlock  = 1
	fatBlockCount  = 32
	dirFirstBlock  = 33
	dirBlockCount  = 8
	dataFirstBlock = dirFirstBlock + dirBlockCount // 41

	// MinSizeExp and MaxSizeExp bound the size exponent accepted by Format.
	MinSizeExp = 18
	MaxSizeExp = 23
)

// Directory limits. The root directory spans 8 blocks of 16 entries each, and
// the open-file table mirrors its capacity: a file descriptor is the position
// of the file's directory entry.
const (
	dirEntrySize       = 128
	dirEntriesPerBlock = BlockSize / dirEntrySize // 16

	// MaxFiles is the capacity of the root directory and, equally, of the
	// open-file table.
	MaxFiles = dirBlockCount * dirEntriesPerBlock // 128

	// MaxFilenameLen is the longest accepted filename in bytes, excluding
	// the on-disk NUL terminator.
	MaxFilenameLen = 29
)

// FAT addressing. Each FAT block holds 512 little-endian uint32 entries, but
// the entry for block number b lives at FAT[b>>8][b&0xff]: only the first 256
// slots of each FAT block are ever addressed, so the table is sparse on disk.
const (
	fatEntrySize       = 4
	fatEntriesPerBlock = BlockSize / fatEntrySize // 512

	// fatListNull is the end-of-chain sentinel. Block 0 is the superblock
	// and can never be part of a chain, so the zero value is unambiguous.
	// The same value doubles as the "no data yet" start block of an empty
	// file.
	fatListNull  = 0
	noStartBlock = 0
)

func fatBlock(b uint32) uint32  { return b >> 8 }
func fatOffset(b uint32) uint32 { return b & 0xff }
