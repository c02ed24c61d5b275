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
	"fmt"
	"io"
)

// FileReader is a random-access, read-only view over one stored file,
// implementing io.Reader and io.ReaderAt on top of the FAT chain walk. It
// does not occupy an open-file slot. The view snapshots the file's start
// block and size at open time, so it is invalidated by a concurrent append
// or delete of the same file.
type FileReader struct {
	fs         *FileSystem
	name       string
	startBlock uint32
	size       uint64
	off        int64
}

// OpenReader returns a reader over the named file.
func (fs *FileSystem) OpenReader(name string) (*FileReader, error) {
	if fs.dev == nil {
		return nil, ErrNotMounted
	}

	pos := fs.dir.find(name)
	if pos < 0 {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	ent := &fs.dir.entries[pos]
	return &FileReader{
		fs:         fs,
		name:       name,
		startBlock: ent.startBlock,
		size:       ent.size,
	}, nil
}

// Name returns the name of the underlying file.
func (r *FileReader) Name() string {
	return r.name
}

// Size returns the file size at open time.
func (r *FileReader) Size() int64 {
	return int64(r.size)
}

// ReadAt implements io.ReaderAt. Reads past the end of the file return
// io.EOF with the partial count.
func (r *FileReader) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("%w: negative offset", ErrInvalidArgument)
	}
	if uint64(off) >= r.size {
		return 0, io.EOF
	}

	n, err := r.fs.readRange(r.startBlock, r.size, uint64(off), p)
	if err != nil {
		return n, err
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Read implements io.Reader.
func (r *FileReader) Read(p []byte) (int, error) {
	n, err := r.ReadAt(p, r.off)
	r.off += int64(n)
	return n, err
}
