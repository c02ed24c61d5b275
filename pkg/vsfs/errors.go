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

import "errors"

// Sentinel errors returned by filesystem operations. Callers match them with
// errors.Is; errors crossing the block-device boundary wrap ErrIO together
// with the underlying cause.
var (
	ErrInvalidArgument = errors.New("vsfs: invalid argument")
	ErrNameTooLong     = errors.New("vsfs: filename too long")
	ErrNotFound        = errors.New("vsfs: file not found")
	ErrExists          = errors.New("vsfs: file already exists")
	ErrDirectoryFull   = errors.New("vsfs: root directory full")
	ErrDiskFull        = errors.New("vsfs: no free data blocks")
	ErrWrongMode       = errors.New("vsfs: operation not permitted by open mode")
	ErrNotOpen         = errors.New("vsfs: file descriptor not open")
	ErrFileBusy        = errors.New("vsfs: file already open")
	ErrNotMounted      = errors.New("vsfs: filesystem not mounted")
	ErrCorrupted       = errors.New("vsfs: image corrupted")
	ErrIO              = errors.New("vsfs: i/o error")
)
