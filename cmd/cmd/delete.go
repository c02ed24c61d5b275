package cmd

import (
	"github.com/spf13/cobra"
)

func DefineDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "delete <image> <name>",
		Short:        "Delete a file from an image",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE:         RunDelete,
	}
}

func RunDelete(cmd *cobra.Command, args []string) error {
	fsys, err := mountImage(cmd, args[0])
	if err != nil {
		return err
	}

	if err := fsys.Delete(args[1]); err != nil {
		fsys.Unmount()
		return err
	}
	return fsys.Unmount()
}
