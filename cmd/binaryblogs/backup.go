package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/binary-blogs/binary-blogs/pkg/service/backup"
)

func newExportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "导出所有快照为一个归档文件",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := loadApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer cleanup()

			archive, err := app.Backup().Export(cmd.Context())
			if err != nil {
				return err
			}
			var out io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			return backup.Encode(out, archive)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "输出文件，默认标准输出")
	return cmd
}

func newImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "从归档文件导入快照",
		Long:  `先校验归档中的每个快照，全部通过后才写入。`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			archive, err := backup.Decode(f)
			if err != nil {
				return err
			}

			app, cleanup, err := loadApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := app.Backup().Import(cmd.Context(), archive); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已导入 %d 个快照\n", len(archive.Snapshots))
			return nil
		},
	}
}

func newBackupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "备份到配置的备份目标 (Backup.Driver)",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := loadApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer cleanup()

			name, err := app.Backup().Backup(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), name)
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "列出备份目标中的归档",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := loadApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer cleanup()

			files, err := app.Backup().List(cmd.Context())
			if err != nil {
				return err
			}
			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("NAME", "SIZE", "MODIFIED")
			for _, f := range files {
				t.Row(f.Name, strconv.FormatInt(f.Size, 10), f.ModTime.Format("2006-01-02 15:04:05"))
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.String())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "restore <name>",
		Short: "从备份目标恢复一份归档",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := loadApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := app.Backup().Restore(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已恢复 %s\n", args[0])
			return nil
		},
	})
	return cmd
}
