package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/binary-blogs/binary-blogs/internal/pkg/version"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "输出构建信息",
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(version.GetBuildInfo())
		},
	}
}
