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

import "encoding/binary"

// fatTable is the in-memory image of the FAT region. Entry b holds the next
// block in b's chain, or fatListNull at the end. The table is addressed
// sparsely: block b maps to table block b>>8, offset b&0xff, so only the
// first 256 entries of each 512-entry table block are ever used.
type fatTable struct {
	blocks [fatBlockCount][fatEntriesPerBlock]uint32
}

func (t *fatTable) next(b uint32) uint32 {
	return t.blocks[fatBlock(b)][fatOffset(b)]
}

func (t *fatTable) setNext(b, next uint32) {
	t.blocks[fatBlock(b)][fatOffset(b)] = next
}

// link appends curr after prev and terminates the chain at curr. A zero prev
// means curr starts a new chain.
func (t *fatTable) link(prev, curr uint32) {
	if prev != fatListNull {
		t.setNext(prev, curr)
	}
	t.setNext(curr, fatListNull)
}

// chain iterates over the blocks of the list starting at start, in order,
// until the end-of-chain sentinel. A start of noStartBlock yields nothing.
// Iteration stops after MaxBlockCount steps so a corrupted, cyclic table
// cannot hang the caller; walkChain reports that case.
func (t *fatTable) chain(start uint32) func(yield func(uint32) bool) {
	return func(yield func(uint32) bool) {
		steps := 0
		for b := start; b != fatListNull; b = t.next(b) {
			if steps++; steps > MaxBlockCount {
				return
			}
			if !yield(b) {
				return
			}
		}
	}
}

// walkChain returns the blocks of the chain from start as a slice. It reports
// ErrCorrupted if the walk does not terminate within MaxBlockCount steps.
func (t *fatTable) walkChain(start uint32) ([]uint32, error) {
	if start == noStartBlock {
		return nil, nil
	}

	chain := make([]uint32, 0, 8)
	for b := range t.chain(start) {
		chain = append(chain, b)
	}
	if len(chain) >= MaxBlockCount {
		return nil, ErrCorrupted
	}
	return chain, nil
}

// lastBlock walks the chain from start and returns the block whose FAT entry
// is the sentinel. If start is noStartBlock, it returns noStartBlock.
func (t *fatTable) lastBlock(start uint32) uint32 {
	last := start
	for b := range t.chain(start) {
		last = b
	}
	return last
}

// decodeFATBlock loads table block idx from its on-disk form.
func (t *fatTable) decodeFATBlock(idx int, p []byte) {
	for i := 0; i < fatEntriesPerBlock; i++ {
		t.blocks[idx][i] = binary.LittleEndian.Uint32(p[i*fatEntrySize:])
	}
}

// encodeFATBlock serializes table block idx into p, one block long.
func (t *fatTable) encodeFATBlock(idx int, p []byte) {
	for i := 0; i < fatEntriesPerBlock; i++ {
		binary.LittleEndian.PutUint32(p[i*fatEntrySize:], t.blocks[idx][i])
	}
}
