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

// Package blockdev exposes a backing image file as an array of fixed-size
// blocks. It performs no caching: every read and write goes straight to the
// file, positioned at blockNumber * blockSize.
package blockdev

import (
	"fmt"
	"os"
)

// Device is a block-granular view over a regular file.
type Device struct {
	f         *os.File
	blockSize int
}

// Open opens an existing image for read-write block access.
func Open(path string, blockSize int) (*Device, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %q: %w", path, err)
	}
	return &Device{f: f, blockSize: blockSize}, nil
}

// Create creates (or truncates) an image for read-write block access.
func Create(path string, blockSize int) (*Device, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create image %q: %w", path, err)
	}
	return &Device{f: f, blockSize: blockSize}, nil
}

// BlockSize returns the block size the device was opened with.
func (d *Device) BlockSize() int {
	return d.blockSize
}

// Size returns the current size of the backing file in bytes.
func (d *Device) Size() (int64, error) {
	fi, err := d.f.Stat()
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

// ReadBlock reads block k into p. p must be exactly one block long; a short
// transfer is an error.
func (d *Device) ReadBlock(p []byte, k int64) error {
	if len(p) != d.blockSize {
		return fmt.Errorf("read buffer is %d bytes, block size is %d", len(p), d.blockSize)
	}
	n, err := d.f.ReadAt(p, k*int64(d.blockSize))
	if err != nil {
		return fmt.Errorf("short read of block %d (%d/%d bytes): %w", k, n, d.blockSize, err)
	}
	return nil
}

// WriteBlock writes p as block k. p must be exactly one block long.
func (d *Device) WriteBlock(p []byte, k int64) error {
	if len(p) != d.blockSize {
		return fmt.Errorf("write buffer is %d bytes, block size is %d", len(p), d.blockSize)
	}
	n, err := d.f.WriteAt(p, k*int64(d.blockSize))
	if err != nil {
		return fmt.Errorf("short write of block %d (%d/%d bytes): %w", k, n, d.blockSize, err)
	}
	return nil
}

// Truncate resizes the backing file to n bytes.
func (d *Device) Truncate(n int64) error {
	return d.f.Truncate(n)
}

// Close closes the backing file without flushing.
func (d *Device) Close() error {
	return d.f.Close()
}
