//go:build !linux
// +build !linux

package fuse

import (
	"fmt"

	"github.com/ostafen/vsfs/pkg/vsfs"
)

func Mount(mountpoint string, fsys *vsfs.FileSystem) error {
	return fmt.Errorf("FUSE mount is only supported on Linux")
}
