package cmd

import (
	"os"

	"github.com/ostafen/vsfs/internal/logger"
	"github.com/ostafen/vsfs/pkg/vsfs"
	"github.com/spf13/cobra"
)

const AppName = "vsfs"

func Execute() error {
	rootCmd := &cobra.Command{
		Use:   AppName,
		Short: AppName + " - virtual filesystem in a single image file",
	}

	rootCmd.PersistentFlags().String("log-level", "INFO", "minimum log level (DEBUG, INFO, WARN, ERROR)")

	rootCmd.AddCommand(DefineFormatCommand())
	rootCmd.AddCommand(DefineLsCommand())
	rootCmd.AddCommand(DefineCreateCommand())
	rootCmd.AddCommand(DefineWriteCommand())
	rootCmd.AddCommand(DefineCatCommand())
	rootCmd.AddCommand(DefineDeleteCommand())
	rootCmd.AddCommand(DefineBenchCommand())
	rootCmd.AddCommand(DefineMountCommand())

	return rootCmd.Execute()
}

// mountImage mounts the image at path with a logger configured from the
// global log-level flag.
func mountImage(cmd *cobra.Command, path string) (*vsfs.FileSystem, error) {
	level, _ := cmd.Flags().GetString("log-level")
	return vsfs.MountWithLogger(path, logger.New(os.Stderr, logger.ParseLevel(level)))
}
