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

	fmtutil "github.com/ostafen/vsfs/pkg/util/format"
	"github.com/ostafen/vsfs/pkg/vsfs"
	"github.com/spf13/cobra"
)

func DefineFormatCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "format <image>",
		Short:        "Create an empty filesystem image",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunFormat,
	}

	cmd.Flags().IntP("size-exp", "m", vsfs.MinSizeExp,
		fmt.Sprintf("size exponent: the image holds 2^m bytes, m in [%d, %d]", vsfs.MinSizeExp, vsfs.MaxSizeExp))

	return cmd
}

func RunFormat(cmd *cobra.Command, args []string) error {
	m, _ := cmd.Flags().GetInt("size-exp")

	if err := vsfs.Format(args[0], m); err != nil {
		return err
	}

	fmt.Printf("formatted %s: %s (%d blocks of %d bytes)\n",
		args[0], fmtutil.FormatBytes(int64(1)<<m), (1<<m)/vsfs.BlockSize, vsfs.BlockSize)
	return nil
}
