package cmd

import (
	"bufio"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func DefineCatCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "cat <image> <name>",
		Short:        "Write the contents of a stored file to stdout",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE:         RunCat,
	}
}

func RunCat(cmd *cobra.Command, args []string) error {
	fsys, err := mountImage(cmd, args[0])
	if err != nil {
		return err
	}
	defer fsys.Unmount()

	r, err := fsys.OpenReader(args[1])
	if err != nil {
		return err
	}

	w := bufio.NewWriter(os.Stdout)
	if _, err := io.Copy(w, r); err != nil {
		return err
	}
	return w.Flush()
}
