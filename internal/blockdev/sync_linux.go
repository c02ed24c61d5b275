//go:build linux
// +build linux

package blockdev

import "golang.org/x/sys/unix"

// Sync flushes file data to stable storage. Metadata such as timestamps is
// not needed for image durability, so datasync is enough.
func (d *Device) Sync() error {
	return unix.Fdatasync(int(d.f.Fd()))
}
