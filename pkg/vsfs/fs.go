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
	"log/slog"

	"github.com/ostafen/vsfs/internal/blockdev"
)

// FileSystem is a mounted image. All metadata (superblock, FAT, root
// directory) lives in memory between Mount and Unmount; data blocks are read
// and written through the backing file directly. The value is not safe for
// concurrent use: callers that share it across goroutines must serialize
// access themselves.
type FileSystem struct {
	dev     *blockdev.Device
	path    string
	super   superblock
	fat     fatTable
	dir     directory
	handles fileTable
	log     *slog.Logger
}

// FileInfo describes one file of a mounted image.
type FileInfo struct {
	Name       string
	Size       int64
	StartBlock uint32
}

// Format creates (or overwrites) the image at path with an empty filesystem
// of 2^m bytes. m must lie in [MinSizeExp, MaxSizeExp], giving between 128
// and 4096 blocks. Every data block starts free and zeroed.
func Format(path string, m int) error {
	if m < MinSizeExp || m > MaxSizeExp {
		return fmt.Errorf("%w: size exponent %d not in [%d, %d]", ErrInvalidArgument, m, MinSizeExp, MaxSizeExp)
	}
	blockcount := uint32(1<<m) / BlockSize

	dev, err := blockdev.Create(path, BlockSize)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer dev.Close()

	if err := dev.Truncate(int64(blockcount) * BlockSize); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	// Truncate already zeroed the FAT, directory and data regions; only
	// the superblock carries content.
	sb := newSuperblock(blockcount)

	var blk [BlockSize]byte
	sb.encode(blk[:])
	if err := dev.WriteBlock(blk[:], superblockIdx); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	if err := dev.Sync(); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

// Mount opens the image at path and loads its metadata. The returned value
// must be released with Unmount to persist metadata changes.
func Mount(path string) (*FileSystem, error) {
	return MountWithLogger(path, nil)
}

// MountWithLogger is Mount with diagnostics routed to logger. A nil logger
// disables logging.
func MountWithLogger(path string, logger *slog.Logger) (*FileSystem, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	dev, err := blockdev.Open(path, BlockSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}

	fs := &FileSystem{
		dev:  dev,
		path: path,
		log:  logger,
	}
	if err := fs.loadMetadata(); err != nil {
		dev.Close()
		return nil, err
	}
	fs.handles.reset()

	fs.log.Info("mounted image",
		"path", path,
		"blocks", fs.super.blockcount,
		"free", fs.super.freeCount(),
	)
	return fs, nil
}

func (fs *FileSystem) loadMetadata() error {
	var blk [BlockSize]byte

	if err := fs.dev.ReadBlock(blk[:], superblockIdx); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	sb, err := decodeSuperblock(blk[:])
	if err != nil {
		return err
	}

	size, err := fs.dev.Size()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if size != int64(sb.blockcount)*BlockSize {
		return fmt.Errorf("%w: image is %d bytes, superblock says %d blocks", ErrCorrupted, size, sb.blockcount)
	}
	fs.super = sb

	for i := 0; i < fatBlockCount; i++ {
		if err := fs.dev.ReadBlock(blk[:], fatFirstBlock+int64(i)); err != nil {
			return fmt.Errorf("%w: %w", ErrIO, err)
		}
		fs.fat.decodeFATBlock(i, blk[:])
	}

	for i := 0; i < dirBlockCount; i++ {
		if err := fs.dev.ReadBlock(blk[:], dirFirstBlock+int64(i)); err != nil {
			return fmt.Errorf("%w: %w", ErrIO, err)
		}
		fs.dir.decodeDirBlock(i, blk[:])
	}
	return nil
}

func (fs *FileSystem) flushMetadata() error {
	var blk [BlockSize]byte

	fs.super.encode(blk[:])
	if err := fs.dev.WriteBlock(blk[:], superblockIdx); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	for i := 0; i < fatBlockCount; i++ {
		fs.fat.encodeFATBlock(i, blk[:])
		if err := fs.dev.WriteBlock(blk[:], fatFirstBlock+int64(i)); err != nil {
			return fmt.Errorf("%w: %w", ErrIO, err)
		}
	}

	for i := 0; i < dirBlockCount; i++ {
		fs.dir.encodeDirBlock(i, blk[:])
		if err := fs.dev.WriteBlock(blk[:], dirFirstBlock+int64(i)); err != nil {
			return fmt.Errorf("%w: %w", ErrIO, err)
		}
	}
	return nil
}

// Unmount writes the metadata caches back to the image, flushes it to stable
// storage and closes the backing file. The FileSystem is unusable afterwards.
func (fs *FileSystem) Unmount() error {
	if fs.dev == nil {
		return ErrNotMounted
	}

	if err := fs.flushMetadata(); err != nil {
		fs.dev.Close()
		fs.dev = nil
		return err
	}
	if err := fs.dev.Sync(); err != nil {
		fs.dev.Close()
		fs.dev = nil
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	err := fs.dev.Close()
	fs.dev = nil
	fs.log.Info("unmounted image", "path", fs.path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

// Create adds an empty file named name to the root directory. No data blocks
// are allocated until the first append.
func (fs *FileSystem) Create(name string) error {
	if fs.dev == nil {
		return ErrNotMounted
	}
	if err := validateName(name); err != nil {
		return err
	}
	if fs.dir.find(name) >= 0 {
		return fmt.Errorf("%w: %q", ErrExists, name)
	}

	pos := fs.dir.findFree()
	if pos < 0 {
		return ErrDirectoryFull
	}

	fs.dir.entries[pos] = dirEntry{
		occupied:   true,
		name:       name,
		size:       0,
		startBlock: noStartBlock,
	}
	fs.log.Debug("created file", "name", name, "slot", pos)
	return nil
}

// Delete removes the named file and returns its data blocks to the free
// bitmap. Deleting a file that is currently open fails with ErrFileBusy.
func (fs *FileSystem) Delete(name string) error {
	if fs.dev == nil {
		return ErrNotMounted
	}

	pos := fs.dir.find(name)
	if pos < 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if fs.handles.slots[pos].used {
		return fmt.Errorf("%w: %q", ErrFileBusy, name)
	}

	start := fs.dir.entries[pos].startBlock
	fs.dir.entries[pos] = dirEntry{}

	// Clear each visited FAT entry before advancing, then hand the block
	// back to the bitmap.
	freed := 0
	for b := start; b != fatListNull; {
		next := fs.fat.next(b)
		fs.fat.setNext(b, fatListNull)
		fs.super.release(b)
		freed++
		b = next
	}

	fs.log.Debug("deleted file", "name", name, "slot", pos, "blocks", freed)
	return nil
}

// Open opens the named file in the given mode and returns its descriptor.
// The descriptor equals the file's directory-entry position and is stable
// across unmount/mount. Reopening an already-open file in the same mode is
// idempotent and returns the same descriptor; reopening in a different mode
// fails with ErrFileBusy.
func (fs *FileSystem) Open(name string, mode Mode) (int, error) {
	if fs.dev == nil {
		return -1, ErrNotMounted
	}
	if mode != ModeRead && mode != ModeAppend {
		return -1, fmt.Errorf("%w: unknown mode %d", ErrInvalidArgument, mode)
	}

	pos := fs.dir.find(name)
	if pos < 0 {
		return -1, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	h := &fs.handles.slots[pos]
	if h.used {
		if h.mode != mode {
			return -1, fmt.Errorf("%w: %q is open in %s mode", ErrFileBusy, name, h.mode)
		}
		return pos, nil
	}

	*h = fileHandle{used: true, mode: mode}
	fs.log.Debug("opened file", "name", name, "fd", pos, "mode", mode.String())
	return pos, nil
}

// Close releases the descriptor. Metadata stays cached until Unmount.
func (fs *FileSystem) Close(fd int) error {
	if fs.dev == nil {
		return ErrNotMounted
	}
	h, err := fs.handles.get(fd)
	if err != nil {
		return err
	}
	*h = fileHandle{}
	return nil
}

// Size returns the current byte size of the open file.
func (fs *FileSystem) Size(fd int) (int64, error) {
	if fs.dev == nil {
		return -1, ErrNotMounted
	}
	if _, err := fs.handles.get(fd); err != nil {
		return -1, err
	}
	return int64(fs.dir.entries[fd].size), nil
}

// Read copies up to len(p) bytes from the descriptor's read cursor into p and
// advances the cursor. It returns the number of bytes read; 0 means the
// cursor is at end of file. The descriptor must be open in ModeRead.
func (fs *FileSystem) Read(fd int, p []byte) (int, error) {
	if fs.dev == nil {
		return 0, ErrNotMounted
	}
	h, err := fs.handles.get(fd)
	if err != nil {
		return 0, err
	}
	if h.mode != ModeRead {
		return 0, ErrWrongMode
	}

	ent := &fs.dir.entries[fd]
	n, err := fs.readRange(ent.startBlock, ent.size, h.offset, p)
	h.offset += uint64(n)
	return n, err
}

// readRange copies file bytes [off, off+len(p)) into p, clamped to the file
// size. It walks the chain from startBlock, skipping whole blocks before the
// offset.
func (fs *FileSystem) readRange(startBlock uint32, size, off uint64, p []byte) (int, error) {
	if off >= size {
		return 0, nil
	}
	if rem := size - off; uint64(len(p)) > rem {
		p = p[:rem]
	}

	skip := off / BlockSize
	pos := int(off % BlockSize)

	read := 0
	var blk [BlockSize]byte
	for b := range fs.fat.chain(startBlock) {
		if skip > 0 {
			skip--
			continue
		}
		if err := fs.dev.ReadBlock(blk[:], int64(b)); err != nil {
			return read, fmt.Errorf("%w: %w", ErrIO, err)
		}
		read += copy(p[read:], blk[pos:])
		pos = 0
		if read == len(p) {
			return read, nil
		}
	}
	if read < len(p) {
		// The chain ended before the size said it would.
		return read, fmt.Errorf("%w: chain shorter than file size", ErrCorrupted)
	}
	return read, nil
}

// Append writes p at the end of the open file and returns the number of
// bytes persisted. The descriptor must be open in ModeAppend. When the data
// region runs out mid-write, the file keeps every byte that reached the
// image, the size records exactly those bytes, and ErrDiskFull is returned
// alongside the partial count.
func (fs *FileSystem) Append(fd int, p []byte) (int, error) {
	if fs.dev == nil {
		return 0, ErrNotMounted
	}
	h, err := fs.handles.get(fd)
	if err != nil {
		return 0, err
	}
	if h.mode != ModeAppend {
		return 0, ErrWrongMode
	}
	if len(p) == 0 {
		return 0, nil
	}

	ent := &fs.dir.entries[fd]

	// Empty file: allocate the start block and write everything through
	// the chunked writer.
	if ent.size == 0 {
		b0, ok := fs.super.allocate()
		if !ok {
			return 0, ErrDiskFull
		}
		ent.startBlock = b0

		written, err := fs.writeChunks(fatListNull, b0, p)
		if written == 0 {
			// Nothing durable; undo the allocation so the
			// empty-file invariant (size 0 <=> no start block)
			// holds.
			fs.fat.setNext(b0, fatListNull)
			fs.super.release(b0)
			ent.startBlock = noStartBlock
			return 0, err
		}
		ent.size = uint64(written)
		fs.log.Debug("appended", "fd", fd, "bytes", written)
		return written, err
	}

	last := fs.fat.lastBlock(ent.startBlock)

	// A partially filled tail block absorbs input first.
	if tail := int(ent.size % BlockSize); tail != 0 {
		var blk [BlockSize]byte
		if err := fs.dev.ReadBlock(blk[:], int64(last)); err != nil {
			return 0, fmt.Errorf("%w: %w", ErrIO, err)
		}

		filled := copy(blk[tail:], p)
		if err := fs.dev.WriteBlock(blk[:], int64(last)); err != nil {
			return 0, fmt.Errorf("%w: %w", ErrIO, err)
		}
		ent.size += uint64(filled)

		if filled == len(p) {
			fs.log.Debug("appended", "fd", fd, "bytes", filled)
			return filled, nil
		}

		next, ok := fs.super.allocate()
		if !ok {
			return filled, ErrDiskFull
		}
		written, err := fs.writeChunks(last, next, p[filled:])
		if written == 0 {
			fs.fat.setNext(next, fatListNull)
			fs.fat.setNext(last, fatListNull)
			fs.super.release(next)
			return filled, err
		}
		ent.size += uint64(written)
		fs.log.Debug("appended", "fd", fd, "bytes", filled+written)
		return filled + written, err
	}

	// Last block exactly full: extend the chain.
	next, ok := fs.super.allocate()
	if !ok {
		return 0, ErrDiskFull
	}
	written, err := fs.writeChunks(last, next, p)
	if written == 0 {
		fs.fat.setNext(next, fatListNull)
		fs.fat.setNext(last, fatListNull)
		fs.super.release(next)
		return 0, err
	}
	ent.size += uint64(written)
	fs.log.Debug("appended", "fd", fd, "bytes", written)
	return written, err
}

// writeChunks links curr after prev (prev may be fatListNull for a fresh
// chain) and spreads p over curr and as many newly allocated blocks as
// needed. Partial tail blocks are zero-padded. It returns the number of
// bytes durably written; on allocation failure or write error the chain is
// left consistent, terminating at the last block that made it to the image.
func (fs *FileSystem) writeChunks(prev, curr uint32, p []byte) (int, error) {
	fs.fat.link(prev, curr)

	written := 0
	var blk [BlockSize]byte
	for {
		n := copy(blk[:], p)
		clear(blk[n:])

		if err := fs.dev.WriteBlock(blk[:], int64(curr)); err != nil {
			// Unlink the block that never made it to disk.
			fs.fat.setNext(curr, fatListNull)
			if prev != fatListNull {
				fs.fat.setNext(prev, fatListNull)
			}
			fs.super.release(curr)
			return written, fmt.Errorf("%w: %w", ErrIO, err)
		}
		written += n
		p = p[n:]

		if len(p) == 0 {
			return written, nil
		}

		next, ok := fs.super.allocate()
		if !ok {
			return written, ErrDiskFull
		}
		fs.fat.link(curr, next)
		prev, curr = curr, next
	}
}

// FreeBlocks reports how many data blocks are currently free.
func (fs *FileSystem) FreeBlocks() int {
	return fs.super.freeCount()
}

// FreeSize reports the free space of the image in bytes.
func (fs *FileSystem) FreeSize() int64 {
	return int64(fs.super.freeCount()) * BlockSize
}

// BlockCount returns the total number of blocks of the image, fixed regions
// included.
func (fs *FileSystem) BlockCount() int {
	return int(fs.super.blockcount)
}

// Files lists the occupied directory entries in slot order.
func (fs *FileSystem) Files() []FileInfo {
	infos := make([]FileInfo, 0, len(fs.dir.entries))
	for i := range fs.dir.entries {
		e := &fs.dir.entries[i]
		if !e.occupied {
			continue
		}
		infos = append(infos, FileInfo{
			Name:       e.name,
			Size:       int64(e.size),
			StartBlock: e.startBlock,
		})
	}
	return infos
}
