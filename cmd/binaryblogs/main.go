package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/binary-blogs/binary-blogs/internal/pkg/version"
	"github.com/binary-blogs/binary-blogs/pkg/config"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "binaryblogs",
		Short: "Binary Blogs - a small blogging backend",
		Long: `Binary Blogs serves blog posts, a demo session and theme preferences
over HTTP, and keeps every store as a versioned JSON snapshot.`,
		Version:       version.GetVersionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigPath, "配置文件路径 (ini)")

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newSeedCommand())
	rootCmd.AddCommand(newRenderCommand())
	rootCmd.AddCommand(newExportCommand())
	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newBackupCommand())
	rootCmd.AddCommand(newPaletteCommand())
	rootCmd.AddCommand(newVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
