package vsfs_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/ostafen/vsfs/pkg/vsfs"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, fsys *vsfs.FileSystem, name string, data []byte) {
	t.Helper()

	require.NoError(t, fsys.Create(name))
	fd, err := fsys.Open(name, vsfs.ModeAppend)
	require.NoError(t, err)
	_, err = fsys.Append(fd, data)
	require.NoError(t, err)
	require.NoError(t, fsys.Close(fd))
}

func TestFileReaderStreams(t *testing.T) {
	fsys := mountImage(t, newImage(t, 18))
	defer fsys.Unmount()

	data := bytes.Repeat([]byte("0123456789"), 700) // 7000 bytes, 4 blocks
	writeFile(t, fsys, "stream.bin", data)

	r, err := fsys.OpenReader("stream.bin")
	require.NoError(t, err)
	require.Equal(t, "stream.bin", r.Name())
	require.Equal(t, int64(len(data)), r.Size())

	var out bytes.Buffer
	n, err := io.Copy(&out, r)
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), n)
	require.Equal(t, data, out.Bytes())
}

func TestFileReaderReadAt(t *testing.T) {
	fsys := mountImage(t, newImage(t, 18))
	defer fsys.Unmount()

	data := bytes.Repeat([]byte("abcdefgh"), 1000) // 8000 bytes
	writeFile(t, fsys, "rand.bin", data)

	r, err := fsys.OpenReader("rand.bin")
	require.NoError(t, err)

	// A read crossing a block boundary.
	buf := make([]byte, 100)
	n, err := r.ReadAt(buf, 2000)
	require.NoError(t, err)
	require.Equal(t, 100, n)
	require.Equal(t, data[2000:2100], buf)

	// A read overlapping end of file returns the partial count and EOF.
	n, err = r.ReadAt(buf, int64(len(data))-10)
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, 10, n)
	require.Equal(t, data[len(data)-10:], buf[:10])

	// Reads entirely past the end report EOF alone.
	n, err = r.ReadAt(buf, int64(len(data)))
	require.ErrorIs(t, err, io.EOF)
	require.Zero(t, n)

	_, err = r.ReadAt(buf, -1)
	require.ErrorIs(t, err, vsfs.ErrInvalidArgument)
}

func TestFileReaderEmptyFile(t *testing.T) {
	fsys := mountImage(t, newImage(t, 18))
	defer fsys.Unmount()

	require.NoError(t, fsys.Create("empty"))

	r, err := fsys.OpenReader("empty")
	require.NoError(t, err)
	require.Zero(t, r.Size())

	n, err := r.Read(make([]byte, 8))
	require.ErrorIs(t, err, io.EOF)
	require.Zero(t, n)

	_, err = fsys.OpenReader("missing")
	require.ErrorIs(t, err, vsfs.ErrNotFound)
}

func TestFileReaderDoesNotUseDescriptors(t *testing.T) {
	fsys := mountImage(t, newImage(t, 18))
	defer fsys.Unmount()

	writeFile(t, fsys, "f", []byte("payload"))

	r, err := fsys.OpenReader("f")
	require.NoError(t, err)

	// The reader holds no open-file slot, so the file can still be
	// opened and even deleted.
	fd, err := fsys.Open("f", vsfs.ModeRead)
	require.NoError(t, err)
	require.NoError(t, fsys.Close(fd))
	require.NoError(t, fsys.Delete("f"))

	_ = r
}
