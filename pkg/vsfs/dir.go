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
	"bytes"
	"encoding/binary"
	"strings"
)

// On-disk directory entry layout, 128 bytes:
//
//	offset 0   uint8    occupied flag
//	offset 1   [30]byte filename, NUL-terminated
//	offset 32  uint64   file size in bytes, little-endian
//	offset 40  uint32   start block, little-endian (0 = no data yet)
//	offset 44  zero padding to 128 bytes
const (
	entryOccupiedOff   = 0
	entryNameOff       = 1
	entryNameFieldSize = 30
	entrySizeOff       = 32
	entryStartOff      = 40
)

// dirEntry is the in-memory form of one root-directory slot.
type dirEntry struct {
	occupied   bool
	name       string
	size       uint64
	startBlock uint32
}

// directory caches the root-directory region. Entry positions are stable: a
// file keeps its slot from create to delete, and the slot index doubles as
// the file descriptor while the file is open.
type directory struct {
	entries [MaxFiles]dirEntry
}

// find returns the position of the occupied entry named name, or -1.
func (d *directory) find(name string) int {
	for i := range d.entries {
		if d.entries[i].occupied && d.entries[i].name == name {
			return i
		}
	}
	return -1
}

// findFree returns the position of the first unoccupied entry, or -1 when
// the directory is full.
func (d *directory) findFree() int {
	for i := range d.entries {
		if !d.entries[i].occupied {
			return i
		}
	}
	return -1
}

// decodeDirBlock loads the 16 entries of directory block idx.
func (d *directory) decodeDirBlock(idx int, p []byte) {
	for i := 0; i < dirEntriesPerBlock; i++ {
		e := p[i*dirEntrySize : (i+1)*dirEntrySize]

		name := e[entryNameOff : entryNameOff+entryNameFieldSize]
		if n := bytes.IndexByte(name, 0); n >= 0 {
			name = name[:n]
		}

		d.entries[idx*dirEntriesPerBlock+i] = dirEntry{
			occupied:   e[entryOccupiedOff] != 0,
			name:       string(name),
			size:       binary.LittleEndian.Uint64(e[entrySizeOff:]),
			startBlock: binary.LittleEndian.Uint32(e[entryStartOff:]),
		}
	}
}

// encodeDirBlock serializes the 16 entries of directory block idx into p.
func (d *directory) encodeDirBlock(idx int, p []byte) {
	clear(p)
	for i := 0; i < dirEntriesPerBlock; i++ {
		ent := &d.entries[idx*dirEntriesPerBlock+i]
		if !ent.occupied {
			continue
		}

		e := p[i*dirEntrySize : (i+1)*dirEntrySize]
		e[entryOccupiedOff] = 1
		copy(e[entryNameOff:entryNameOff+entryNameFieldSize-1], ent.name)
		binary.LittleEndian.PutUint64(e[entrySizeOff:], ent.size)
		binary.LittleEndian.PutUint32(e[entryStartOff:], ent.startBlock)
	}
}

// validateName checks the filename rules: at most MaxFilenameLen bytes, no
// embedded NUL, no path separator (the namespace is flat).
func validateName(name string) error {
	if name == "" || strings.ContainsAny(name, "\x00/") {
		return ErrInvalidArgument
	}
	if len(name) > MaxFilenameLen {
		return ErrNameTooLong
	}
	return nil
}
