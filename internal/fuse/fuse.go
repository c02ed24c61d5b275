//go:build linux
// +build linux

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
package fuse

import (
	"context"
	"errors"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"
	"github.com/ostafen/vsfs/pkg/vsfs"
)

// ImageFS exposes the flat namespace of a mounted image as a read-only FUSE
// filesystem. The engine itself is single-threaded, so every call into it is
// serialized through the mutex; the kernel may issue requests concurrently.
type ImageFS struct {
	mtx  sync.Mutex
	fsys *vsfs.FileSystem

	mountpoint string
}

func (f *ImageFS) Root() (fs.Node, error) {
	return &Dir{fs: f}, nil
}

// Dir is the single root directory. It implements both fs.Node and
// fs.HandleReadDirAller.
type Dir struct {
	fs *ImageFS
}

func (*Dir) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Mode = os.ModeDir | 0555
	return nil
}

func (d *Dir) Lookup(ctx context.Context, name string) (fs.Node, error) {
	d.fs.mtx.Lock()
	defer d.fs.mtx.Unlock()

	r, err := d.fs.fsys.OpenReader(name)
	if errors.Is(err, vsfs.ErrNotFound) {
		return nil, fuse.ENOENT
	}
	if err != nil {
		return nil, err
	}
	return File{fs: d.fs, r: r}, nil
}

func (d *Dir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	d.fs.mtx.Lock()
	files := d.fs.fsys.Files()
	d.fs.mtx.Unlock()

	dirEntries := make([]fuse.Dirent, len(files))
	for i, e := range files {
		dirEntries[i] = fuse.Dirent{
			Name: e.Name,
			Type: fuse.DT_File,
		}
	}
	sort.Slice(dirEntries, func(i, j int) bool {
		return dirEntries[i].Name < dirEntries[j].Name
	})
	for i := range dirEntries {
		dirEntries[i].Inode = uint64(i)
	}
	return dirEntries, nil
}

// File implements both fs.Node and fs.HandleReader over a single stored
// file.
type File struct {
	fs *ImageFS
	r  *vsfs.FileReader
}

func (f File) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Mode = 0444
	a.Size = uint64(f.r.Size())
	a.Mtime = time.Now()
	return nil
}

func (f File) Read(ctx context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	size := int(req.Size)
	offset := req.Offset

	fileSize := f.r.Size()
	if offset >= fileSize {
		// Trying to read past EOF
		resp.Data = []byte{}
		return nil
	}

	// Clamp size if reading near EOF
	if offset+int64(size) > fileSize {
		size = int(fileSize - offset)
	}

	buf := make([]byte, size)

	f.fs.mtx.Lock()
	n, err := f.r.ReadAt(buf, offset)
	f.fs.mtx.Unlock()

	if err != nil && err != io.EOF {
		return err
	}

	resp.Data = buf[:n]
	return nil
}
