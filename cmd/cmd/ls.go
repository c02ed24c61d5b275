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
	"fmt"
	"os"
	"text/tabwriter"

	fmtutil "github.com/ostafen/vsfs/pkg/util/format"
	"github.com/spf13/cobra"
)

func DefineLsCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "ls <image>",
		Short:        "List the files stored in an image",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunLs,
	}
}

func RunLs(cmd *cobra.Command, args []string) error {
	fsys, err := mountImage(cmd, args[0])
	if err != nil {
		return err
	}
	defer fsys.Unmount()

	files := fsys.Files()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSIZE\tSTART BLOCK")
	for _, f := range files {
		fmt.Fprintf(w, "%s\t%s\t%d\n", f.Name, fmtutil.FormatBytes(f.Size), f.StartBlock)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d file(s), %s free (%d blocks)\n",
		len(files), fmtutil.FormatBytes(fsys.FreeSize()), fsys.FreeBlocks())
	return nil
}
