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
package cmd

import (
	"bytes"
	"fmt"
	"time"

	"github.com/ostafen/vsfs/pkg/vsfs"
	"github.com/spf13/cobra"
)

func DefineBenchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "bench <image>",
		Short: "Exercise an image with a small append/read workload",
		Long: `The 'bench' command runs a fixed workload against a mounted image: it appends
a single byte ten thousand times to one file, a thousand 8-byte records to
another, then streams the second file back and verifies its contents.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunBench,
	}
}

func RunBench(cmd *cobra.Command, args []string) error {
	fsys, err := mountImage(cmd, args[0])
	if err != nil {
		return err
	}
	defer fsys.Unmount()

	const (
		singleByteAppends = 10000
		recordAppends     = 1000
	)

	for _, name := range []string{"bench1.bin", "bench2.bin"} {
		if err := fsys.Create(name); err != nil {
			return err
		}
	}

	// Byte-at-a-time appends: the worst case for the tail-block path.
	fd, err := fsys.Open("bench1.bin", vsfs.ModeAppend)
	if err != nil {
		return err
	}
	start := time.Now()
	for i := 0; i < singleByteAppends; i++ {
		if _, err := fsys.Append(fd, []byte{'A'}); err != nil {
			return err
		}
	}
	fmt.Printf("%d single-byte appends: %v\n", singleByteAppends, time.Since(start))
	if err := fsys.Close(fd); err != nil {
		return err
	}

	record := []byte{50, 50, 50, 50, 50, 50, 50, 50}
	fd, err = fsys.Open("bench2.bin", vsfs.ModeAppend)
	if err != nil {
		return err
	}
	start = time.Now()
	for i := 0; i < recordAppends; i++ {
		if _, err := fsys.Append(fd, record); err != nil {
			return err
		}
	}
	fmt.Printf("%d %d-byte appends: %v\n", recordAppends, len(record), time.Since(start))
	if err := fsys.Close(fd); err != nil {
		return err
	}

	fd, err = fsys.Open("bench2.bin", vsfs.ModeRead)
	if err != nil {
		return err
	}
	defer fsys.Close(fd)

	size, err := fsys.Size(fd)
	if err != nil {
		return err
	}

	start = time.Now()
	buf := make([]byte, len(record))
	var read int64
	for read < size {
		n, err := fsys.Read(fd, buf)
		if err != nil {
			return err
		}
		if n == 0 {
			break
		}
		if !bytes.Equal(buf[:n], record[:n]) {
			return fmt.Errorf("read back unexpected data at offset %d", read)
		}
		read += int64(n)
	}
	fmt.Printf("read back %d bytes: %v\n", read, time.Since(start))

	if read != size {
		return fmt.Errorf("read %d bytes, file size is %d", read, size)
	}
	return nil
}
