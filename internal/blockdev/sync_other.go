//go:build !linux
// +build !linux

package blockdev

// Sync flushes file data to stable storage.
func (d *Device) Sync() error {
	return d.f.Sync()
}
