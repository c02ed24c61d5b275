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
package vsfs

import (
	"encoding/binary"
	"fmt"
	"math/bits"
)

// bitmapWords is the number of 16-bit words backing the free-block bitmap.
// The bitmap covers MaxBlockCount bits regardless of the actual image size;
// the allocator never hands out bits that fall beyond blockcount.
const bitmapWords = MaxBlockCount / 16 // 256

// On-disk superblock layout within block 0, all fields little-endian:
//
//	offset 0   uint32      total block count
//	offset 4   uint16      block size (always 2048)
//	offset 6   [256]uint16 free-block bitmap, bit i set = data block 41+i free
//	offset 518 zero padding to the end of the block
const (
	superBlockcountOff = 0
	superBlocksizeOff  = 4
	superBitmapOff     = 6
)

// superblock is the in-memory image of block 0. The fixed-region blocks
// (superblock, FAT, root directory) are not tracked by the bitmap: bit 0
// corresponds to the first data block.
type superblock struct {
	blockcount uint32
	blocksize  uint16
	bitmap     [bitmapWords]uint16
}

func decodeSuperblock(p []byte) (superblock, error) {
	var sb superblock
	if len(p) != BlockSize {
		return sb, fmt.Errorf("superblock is %d bytes, expected %d", len(p), BlockSize)
	}

	sb.blockcount = binary.LittleEndian.Uint32(p[superBlockcountOff:])
	sb.blocksize = binary.LittleEndian.Uint16(p[superBlocksizeOff:])

	if sb.blocksize != BlockSize {
		return sb, fmt.Errorf("%w: block size %d, expected %d", ErrCorrupted, sb.blocksize, BlockSize)
	}
	if sb.blockcount <= dataFirstBlock || sb.blockcount > MaxBlockCount {
		return sb, fmt.Errorf("%w: block count %d out of range (%d, %d]", ErrCorrupted, sb.blockcount, dataFirstBlock, MaxBlockCount)
	}

	for i := 0; i < bitmapWords; i++ {
		sb.bitmap[i] = binary.LittleEndian.Uint16(p[superBitmapOff+2*i:])
	}
	return sb, nil
}

// encode serializes the superblock into p, which must be one block long.
// The padding past the bitmap is zeroed.
func (sb *superblock) encode(p []byte) {
	clear(p)
	binary.LittleEndian.PutUint32(p[superBlockcountOff:], sb.blockcount)
	binary.LittleEndian.PutUint16(p[superBlocksizeOff:], sb.blocksize)
	for i := 0; i < bitmapWords; i++ {
		binary.LittleEndian.PutUint16(p[superBitmapOff+2*i:], sb.bitmap[i])
	}
}

// newSuperblock returns a freshly formatted superblock with every bitmap bit
// set. Bits addressing blocks beyond blockcount stay set but are never
// returned by the allocator.
func newSuperblock(blockcount uint32) superblock {
	sb := superblock{
		blockcount: blockcount,
		blocksize:  BlockSize,
	}
	for i := range sb.bitmap {
		sb.bitmap[i] = 0xffff
	}
	return sb
}

func (sb *superblock) isFree(bit uint32) bool {
	return sb.bitmap[bit/16]&(1<<(bit%16)) != 0
}

func (sb *superblock) setFree(bit uint32) {
	sb.bitmap[bit/16] |= 1 << (bit % 16)
}

func (sb *superblock) clearFree(bit uint32) {
	sb.bitmap[bit/16] &^= 1 << (bit % 16)
}

// allocate reserves the lowest-numbered free data block and returns its block
// number. It reports false once the scan reaches the end of the image.
func (sb *superblock) allocate() (uint32, bool) {
	limit := sb.blockcount - dataFirstBlock
	for bit := uint32(0); bit < limit; bit++ {
		if sb.isFree(bit) {
			sb.clearFree(bit)
			return dataFirstBlock + bit, true
		}
	}
	return 0, false
}

// release marks a data block free again. Block numbers outside the data
// region are ignored; the fixed regions are permanently allocated.
func (sb *superblock) release(block uint32) {
	if block < dataFirstBlock || block >= sb.blockcount {
		return
	}
	sb.setFree(block - dataFirstBlock)
}

// freeCount counts the free data blocks within the image.
func (sb *superblock) freeCount() int {
	limit := sb.blockcount - dataFirstBlock

	count := 0
	for i := uint32(0); i < bitmapWords && i*16 < limit; i++ {
		word := sb.bitmap[i]
		if rem := limit - i*16; rem < 16 {
			word &= 1<<rem - 1
		}
		count += bits.OnesCount16(word)
	}
	return count
}
