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
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ostafen/vsfs/pkg/vsfs"
	"github.com/spf13/cobra"
)

func DefineWriteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "write <image> <name> [hostfile]",
		Short: "Append a host file (or stdin) to a file inside an image",
		Long: `The 'write' command copies bytes from a host file into the named file of the
image, creating it first if it does not exist. Without a host file argument,
data is read from standard input. Bytes are always appended at the end: the
filesystem supports no random writes.`,
		Args:         cobra.RangeArgs(2, 3),
		SilenceUsage: true,
		RunE:         RunWrite,
	}
}

func RunWrite(cmd *cobra.Command, args []string) error {
	var in io.Reader = os.Stdin
	if len(args) == 3 {
		f, err := os.Open(args[2])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	fsys, err := mountImage(cmd, args[0])
	if err != nil {
		return err
	}

	written, err := copyIn(fsys, args[1], in)
	if err != nil {
		fsys.Unmount()
		return err
	}
	if err := fsys.Unmount(); err != nil {
		return err
	}

	fmt.Printf("wrote %d bytes to %s\n", written, args[1])
	return nil
}

func copyIn(fsys *vsfs.FileSystem, name string, in io.Reader) (int64, error) {
	if err := fsys.Create(name); err != nil && !errors.Is(err, vsfs.ErrExists) {
		return 0, err
	}

	fd, err := fsys.Open(name, vsfs.ModeAppend)
	if err != nil {
		return 0, err
	}
	defer fsys.Close(fd)

	var written int64
	buf := make([]byte, 32*1024)
	for {
		n, err := in.Read(buf)
		if n > 0 {
			m, aerr := fsys.Append(fd, buf[:n])
			written += int64(m)
			if aerr != nil {
				return written, aerr
			}
		}
		if err == io.EOF {
			return written, nil
		}
		if err != nil {
			return written, err
		}
	}
}
