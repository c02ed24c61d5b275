package vsfs_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/ostafen/vsfs/pkg/vsfs"
	"github.com/stretchr/testify/require"
)

func newImage(t *testing.T, m int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "vdisk.bin")
	require.NoError(t, vsfs.Format(path, m))
	return path
}

func mountImage(t *testing.T, path string) *vsfs.FileSystem {
	t.Helper()

	fsys, err := vsfs.Mount(path)
	require.NoError(t, err)
	return fsys
}

func TestFormatAndMount(t *testing.T) {
	path := newImage(t, 18)

	fi, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, int64(262144), fi.Size())

	fsys := mountImage(t, path)
	defer fsys.Unmount()

	require.Equal(t, 128, fsys.BlockCount())
	require.Equal(t, 87, fsys.FreeBlocks()) // 128 - 41 fixed blocks
	require.Equal(t, int64(87*vsfs.BlockSize), fsys.FreeSize())
	require.Empty(t, fsys.Files())
}

func TestFormatRejectsBadExponent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vdisk.bin")
	require.ErrorIs(t, vsfs.Format(path, 17), vsfs.ErrInvalidArgument)
	require.ErrorIs(t, vsfs.Format(path, 24), vsfs.ErrInvalidArgument)
}

func TestMountRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vdisk.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 262144), 0o644))

	_, err := vsfs.Mount(path)
	require.ErrorIs(t, err, vsfs.ErrCorrupted)

	_, err = vsfs.Mount(filepath.Join(t.TempDir(), "missing.bin"))
	require.ErrorIs(t, err, vsfs.ErrIO)
}

func TestSmallAppendAndRead(t *testing.T) {
	fsys := mountImage(t, newImage(t, 18))
	defer fsys.Unmount()

	require.NoError(t, fsys.Create("a"))

	fd, err := fsys.Open("a", vsfs.ModeAppend)
	require.NoError(t, err)

	n, err := fsys.Append(fd, []byte("HELLO"))
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.NoError(t, fsys.Close(fd))

	fd, err = fsys.Open("a", vsfs.ModeRead)
	require.NoError(t, err)

	size, err := fsys.Size(fd)
	require.NoError(t, err)
	require.Equal(t, int64(5), size)

	buf := make([]byte, 5)
	n, err = fsys.Read(fd, buf)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, []byte("HELLO"), buf)

	// The cursor sits at end of file now.
	n, err = fsys.Read(fd, buf)
	require.NoError(t, err)
	require.Zero(t, n)

	require.NoError(t, fsys.Close(fd))
}

func TestReadIsSequential(t *testing.T) {
	fsys := mountImage(t, newImage(t, 18))
	defer fsys.Unmount()

	require.NoError(t, fsys.Create("seq"))
	fd, err := fsys.Open("seq", vsfs.ModeAppend)
	require.NoError(t, err)
	_, err = fsys.Append(fd, []byte("abcdef"))
	require.NoError(t, err)
	require.NoError(t, fsys.Close(fd))

	fd, err = fsys.Open("seq", vsfs.ModeRead)
	require.NoError(t, err)

	one := make([]byte, 1)
	var got []byte
	for {
		n, err := fsys.Read(fd, one)
		require.NoError(t, err)
		if n == 0 {
			break
		}
		got = append(got, one[0])
	}
	require.Equal(t, []byte("abcdef"), got)
}

func TestReadClampsToFileSize(t *testing.T) {
	fsys := mountImage(t, newImage(t, 18))
	defer fsys.Unmount()

	require.NoError(t, fsys.Create("short"))
	fd, err := fsys.Open("short", vsfs.ModeAppend)
	require.NoError(t, err)
	_, err = fsys.Append(fd, []byte("xy"))
	require.NoError(t, err)
	require.NoError(t, fsys.Close(fd))

	fd, err = fsys.Open("short", vsfs.ModeRead)
	require.NoError(t, err)

	buf := make([]byte, 100)
	n, err := fsys.Read(fd, buf)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, []byte("xy"), buf[:2])
}

func TestEmptyFile(t *testing.T) {
	fsys := mountImage(t, newImage(t, 18))
	defer fsys.Unmount()

	require.NoError(t, fsys.Create("empty"))
	free := fsys.FreeBlocks()

	fd, err := fsys.Open("empty", vsfs.ModeRead)
	require.NoError(t, err)

	size, err := fsys.Size(fd)
	require.NoError(t, err)
	require.Zero(t, size)

	n, err := fsys.Read(fd, make([]byte, 16))
	require.NoError(t, err)
	require.Zero(t, n)

	// Creating a file allocates no data blocks.
	require.Equal(t, free, fsys.FreeBlocks())
	require.Equal(t, uint32(0), fsys.Files()[0].StartBlock)
}

func TestCrossBlockAppend(t *testing.T) {
	path := newImage(t, 18)
	fsys := mountImage(t, path)

	require.NoError(t, fsys.Create("a"))
	free := fsys.FreeBlocks()

	fd, err := fsys.Open("a", vsfs.ModeAppend)
	require.NoError(t, err)

	data := bytes.Repeat([]byte{0x41}, 3000)
	n, err := fsys.Append(fd, data)
	require.NoError(t, err)
	require.Equal(t, 3000, n)

	size, err := fsys.Size(fd)
	require.NoError(t, err)
	require.Equal(t, int64(3000), size)

	// 3000 bytes span two chained blocks.
	require.Equal(t, free-2, fsys.FreeBlocks())
	require.NoError(t, fsys.Close(fd))
	require.NoError(t, fsys.Unmount())

	// The first data block of a fresh image is block 41; the second one
	// holds 952 payload bytes followed by zero padding.
	img, err := os.ReadFile(path)
	require.NoError(t, err)

	block41 := img[41*vsfs.BlockSize : 42*vsfs.BlockSize]
	block42 := img[42*vsfs.BlockSize : 43*vsfs.BlockSize]

	require.Equal(t, bytes.Repeat([]byte{0x41}, vsfs.BlockSize), block41)
	require.Equal(t, bytes.Repeat([]byte{0x41}, 952), block42[:952])
	require.Equal(t, make([]byte, 1096), block42[952:])
}

func TestManySingleByteAppends(t *testing.T) {
	fsys := mountImage(t, newImage(t, 18))
	defer fsys.Unmount()

	require.NoError(t, fsys.Create("f1"))
	free := fsys.FreeBlocks()

	fd, err := fsys.Open("f1", vsfs.ModeAppend)
	require.NoError(t, err)

	for i := 0; i < 10000; i++ {
		n, err := fsys.Append(fd, []byte{0x41})
		require.NoError(t, err)
		require.Equal(t, 1, n)
	}
	require.NoError(t, fsys.Close(fd))

	fd, err = fsys.Open("f1", vsfs.ModeRead)
	require.NoError(t, err)

	size, err := fsys.Size(fd)
	require.NoError(t, err)
	require.Equal(t, int64(10000), size)

	// ceil(10000 / 2048) = 5 chained blocks.
	require.Equal(t, free-5, fsys.FreeBlocks())

	buf := make([]byte, 10000)
	n, err := fsys.Read(fd, buf)
	require.NoError(t, err)
	require.Equal(t, 10000, n)
	require.Equal(t, bytes.Repeat([]byte{0x41}, 10000), buf)
}

func TestDeleteFreesBlocks(t *testing.T) {
	fsys := mountImage(t, newImage(t, 18))
	defer fsys.Unmount()

	require.NoError(t, fsys.Create("a"))
	free := fsys.FreeBlocks()

	fd, err := fsys.Open("a", vsfs.ModeAppend)
	require.NoError(t, err)
	_, err = fsys.Append(fd, bytes.Repeat([]byte{0x41}, 3000))
	require.NoError(t, err)
	require.NoError(t, fsys.Close(fd))
	require.Equal(t, free-2, fsys.FreeBlocks())

	require.NoError(t, fsys.Delete("a"))
	require.Equal(t, free, fsys.FreeBlocks())
	require.Empty(t, fsys.Files())

	// The directory slot is reusable and freed blocks are handed out
	// again, lowest first.
	require.NoError(t, fsys.Create("b"))
	fd, err = fsys.Open("b", vsfs.ModeAppend)
	require.NoError(t, err)
	require.Equal(t, 0, fd)
	_, err = fsys.Append(fd, []byte{1})
	require.NoError(t, err)
	require.Equal(t, uint32(41), fsys.Files()[0].StartBlock)
}

func TestDeleteErrors(t *testing.T) {
	fsys := mountImage(t, newImage(t, 18))
	defer fsys.Unmount()

	require.ErrorIs(t, fsys.Delete("missing"), vsfs.ErrNotFound)

	require.NoError(t, fsys.Create("open.bin"))
	fd, err := fsys.Open("open.bin", vsfs.ModeRead)
	require.NoError(t, err)

	require.ErrorIs(t, fsys.Delete("open.bin"), vsfs.ErrFileBusy)
	require.NoError(t, fsys.Close(fd))
	require.NoError(t, fsys.Delete("open.bin"))
}

func TestDuplicateCreateFails(t *testing.T) {
	fsys := mountImage(t, newImage(t, 18))
	defer fsys.Unmount()

	require.NoError(t, fsys.Create("a"))
	require.ErrorIs(t, fsys.Create("a"), vsfs.ErrExists)
}

func TestCreateErrors(t *testing.T) {
	fsys := mountImage(t, newImage(t, 18))
	defer fsys.Unmount()

	require.ErrorIs(t, fsys.Create(""), vsfs.ErrInvalidArgument)
	require.ErrorIs(t, fsys.Create("a/b"), vsfs.ErrInvalidArgument)
	require.ErrorIs(t, fsys.Create("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"), vsfs.ErrNameTooLong)
}

func TestDirectoryFull(t *testing.T) {
	fsys := mountImage(t, newImage(t, 18))
	defer fsys.Unmount()

	for i := 0; i < vsfs.MaxFiles; i++ {
		require.NoError(t, fsys.Create(fmt.Sprintf("f%d", i)))
	}
	require.ErrorIs(t, fsys.Create("overflow"), vsfs.ErrDirectoryFull)
}

func TestOpenSemantics(t *testing.T) {
	fsys := mountImage(t, newImage(t, 18))
	defer fsys.Unmount()

	_, err := fsys.Open("missing", vsfs.ModeRead)
	require.ErrorIs(t, err, vsfs.ErrNotFound)

	require.NoError(t, fsys.Create("a"))
	require.NoError(t, fsys.Create("b"))

	// The descriptor equals the directory-entry position.
	fd, err := fsys.Open("b", vsfs.ModeAppend)
	require.NoError(t, err)
	require.Equal(t, 1, fd)

	// Same-mode reopen is idempotent, different-mode reopen fails.
	fd2, err := fsys.Open("b", vsfs.ModeAppend)
	require.NoError(t, err)
	require.Equal(t, fd, fd2)

	_, err = fsys.Open("b", vsfs.ModeRead)
	require.ErrorIs(t, err, vsfs.ErrFileBusy)

	_, err = fsys.Open("a", vsfs.Mode(42))
	require.ErrorIs(t, err, vsfs.ErrInvalidArgument)
}

func TestCloseValidation(t *testing.T) {
	fsys := mountImage(t, newImage(t, 18))
	defer fsys.Unmount()

	require.ErrorIs(t, fsys.Close(-1), vsfs.ErrInvalidArgument)
	require.ErrorIs(t, fsys.Close(vsfs.MaxFiles), vsfs.ErrInvalidArgument)
	require.ErrorIs(t, fsys.Close(0), vsfs.ErrNotOpen)

	require.NoError(t, fsys.Create("a"))
	fd, err := fsys.Open("a", vsfs.ModeRead)
	require.NoError(t, err)
	require.NoError(t, fsys.Close(fd))
	require.ErrorIs(t, fsys.Close(fd), vsfs.ErrNotOpen)
}

func TestModeEnforcement(t *testing.T) {
	fsys := mountImage(t, newImage(t, 18))
	defer fsys.Unmount()

	require.NoError(t, fsys.Create("a"))

	fd, err := fsys.Open("a", vsfs.ModeAppend)
	require.NoError(t, err)
	_, err = fsys.Read(fd, make([]byte, 1))
	require.ErrorIs(t, err, vsfs.ErrWrongMode)
	require.NoError(t, fsys.Close(fd))

	fd, err = fsys.Open("a", vsfs.ModeRead)
	require.NoError(t, err)
	_, err = fsys.Append(fd, []byte{1})
	require.ErrorIs(t, err, vsfs.ErrWrongMode)
}

func TestDiskFull(t *testing.T) {
	fsys := mountImage(t, newImage(t, 18))
	defer fsys.Unmount()

	capacity := fsys.FreeBlocks() * vsfs.BlockSize // 87 data blocks

	require.NoError(t, fsys.Create("big"))
	fd, err := fsys.Open("big", vsfs.ModeAppend)
	require.NoError(t, err)

	n, err := fsys.Append(fd, make([]byte, capacity+1))
	require.ErrorIs(t, err, vsfs.ErrDiskFull)
	require.Equal(t, capacity, n)

	// Everything that fit is durable and accounted for.
	size, err := fsys.Size(fd)
	require.NoError(t, err)
	require.Equal(t, int64(capacity), size)
	require.Zero(t, fsys.FreeBlocks())

	// Further appends fail outright.
	_, err = fsys.Append(fd, []byte{1})
	require.ErrorIs(t, err, vsfs.ErrDiskFull)
	require.NoError(t, fsys.Close(fd))

	// Deleting the file recovers the whole data region.
	require.NoError(t, fsys.Delete("big"))
	require.Equal(t, capacity/vsfs.BlockSize, fsys.FreeBlocks())
}

func TestDiskFullOnEmptyFileKeepsInvariant(t *testing.T) {
	fsys := mountImage(t, newImage(t, 18))
	defer fsys.Unmount()

	require.NoError(t, fsys.Create("filler"))
	fd, err := fsys.Open("filler", vsfs.ModeAppend)
	require.NoError(t, err)
	_, err = fsys.Append(fd, make([]byte, fsys.FreeBlocks()*vsfs.BlockSize))
	require.NoError(t, err)
	require.NoError(t, fsys.Close(fd))

	require.NoError(t, fsys.Create("late"))
	fd, err = fsys.Open("late", vsfs.ModeAppend)
	require.NoError(t, err)

	n, err := fsys.Append(fd, []byte("data"))
	require.ErrorIs(t, err, vsfs.ErrDiskFull)
	require.Zero(t, n)

	// The file stays empty: size 0 and no start block.
	size, err := fsys.Size(fd)
	require.NoError(t, err)
	require.Zero(t, size)
	for _, f := range fsys.Files() {
		if f.Name == "late" {
			require.Equal(t, uint32(0), f.StartBlock)
		}
	}
}

func TestPersistence(t *testing.T) {
	path := newImage(t, 18)

	fsys := mountImage(t, path)
	require.NoError(t, fsys.Create("a"))
	fd, err := fsys.Open("a", vsfs.ModeAppend)
	require.NoError(t, err)
	_, err = fsys.Append(fd, []byte("HELLO"))
	require.NoError(t, err)
	require.NoError(t, fsys.Close(fd))
	require.NoError(t, fsys.Unmount())

	fsys = mountImage(t, path)
	defer fsys.Unmount()

	fd, err = fsys.Open("a", vsfs.ModeRead)
	require.NoError(t, err)

	size, err := fsys.Size(fd)
	require.NoError(t, err)
	require.Equal(t, int64(5), size)

	buf := make([]byte, 5)
	_, err = fsys.Read(fd, buf)
	require.NoError(t, err)
	require.Equal(t, []byte("HELLO"), buf)
}

func TestDescriptorStableAcrossRemount(t *testing.T) {
	path := newImage(t, 18)

	fsys := mountImage(t, path)
	require.NoError(t, fsys.Create("first"))
	require.NoError(t, fsys.Create("second"))

	fd, err := fsys.Open("second", vsfs.ModeAppend)
	require.NoError(t, err)
	require.NoError(t, fsys.Close(fd))
	require.NoError(t, fsys.Unmount())

	fsys = mountImage(t, path)
	defer fsys.Unmount()

	fd2, err := fsys.Open("second", vsfs.ModeAppend)
	require.NoError(t, err)
	require.Equal(t, fd, fd2)
}

func TestMetadataRoundTrip(t *testing.T) {
	path := newImage(t, 18)

	fsys := mountImage(t, path)
	require.NoError(t, fsys.Create("a"))
	fd, err := fsys.Open("a", vsfs.ModeAppend)
	require.NoError(t, err)
	_, err = fsys.Append(fd, bytes.Repeat([]byte{7}, 5000))
	require.NoError(t, err)
	require.NoError(t, fsys.Close(fd))
	require.NoError(t, fsys.Unmount())

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	// A mount/unmount cycle with no operations must leave the image
	// bitwise identical.
	fsys = mountImage(t, path)
	require.NoError(t, fsys.Unmount())

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestOperationsAfterUnmount(t *testing.T) {
	fsys := mountImage(t, newImage(t, 18))
	require.NoError(t, fsys.Unmount())

	require.ErrorIs(t, fsys.Create("a"), vsfs.ErrNotMounted)
	require.ErrorIs(t, fsys.Delete("a"), vsfs.ErrNotMounted)
	require.ErrorIs(t, fsys.Unmount(), vsfs.ErrNotMounted)

	_, err := fsys.Open("a", vsfs.ModeRead)
	require.ErrorIs(t, err, vsfs.ErrNotMounted)
	_, err = fsys.OpenReader("a")
	require.ErrorIs(t, err, vsfs.ErrNotMounted)
}

func TestLargestImage(t *testing.T) {
	path := newImage(t, 23)

	fi, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, int64(8388608), fi.Size())

	fsys := mountImage(t, path)
	defer fsys.Unmount()

	require.Equal(t, 4096, fsys.BlockCount())
	require.Equal(t, 4096-41, fsys.FreeBlocks())
}
