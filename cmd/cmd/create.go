package cmd

import (
	"github.com/spf13/cobra"
)

func DefineCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "create <image> <name>",
		Short:        "Create an empty file inside an image",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE:         RunCreate,
	}
}

func RunCreate(cmd *cobra.Command, args []string) error {
	fsys, err := mountImage(cmd, args[0])
	if err != nil {
		return err
	}

	if err := fsys.Create(args[1]); err != nil {
		fsys.Unmount()
		return err
	}
	return fsys.Unmount()
}
