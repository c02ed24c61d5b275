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

// Mode selects what an open file descriptor may do. Reads and appends are
// mutually exclusive per open.
type Mode uint8

const (
	ModeRead Mode = iota + 1
	ModeAppend
)

func (m Mode) String() string {
	switch m {
	case ModeRead:
		return "read"
	case ModeAppend:
		return "append"
	}
	return "invalid"
}

// fileHandle is one slot of the open-file table. The slot index equals the
// position of the file's directory entry, so reopening a file after
// unmount/mount yields the same descriptor number and at most one handle can
// exist per file. Handles reference
// the entry by position, never by pointer, so reloading the directory cache
// cannot invalidate them.
type fileHandle struct {
	used   bool
	mode   Mode
	offset uint64 // read cursor, unused in append mode
}

// fileTable is the table of active handles of one mounted FileSystem, sized
// to the directory capacity.
type fileTable struct {
	slots [MaxFiles]fileHandle
}

func (t *fileTable) reset() {
	t.slots = [MaxFiles]fileHandle{}
}

// get returns the handle for fd if fd is in range and the slot is open.
func (t *fileTable) get(fd int) (*fileHandle, error) {
	if fd < 0 || fd >= MaxFiles {
		return nil, ErrInvalidArgument
	}
	h := &t.slots[fd]
	if !h.used {
		return nil, ErrNotOpen
	}
	return h, nil
}
