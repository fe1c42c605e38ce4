package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/binary-blogs/binary-blogs/pkg/service/parser"
)

func newRenderCommand() *cobra.Command {
	var (
		withOutline bool
		excerpt     int
	)

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "把 Markdown 渲染为安全的 HTML",
		Long:  `读取文件（省略或为 - 时读取标准输入），输出过滤后的 HTML。`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			content, err := io.ReadAll(in)
			if err != nil {
				return fmt.Errorf("读取输入失败: %w", err)
			}

			svc := parser.NewService()
			out := cmd.OutOrStdout()
			if excerpt > 0 {
				fmt.Fprintln(out, svc.Excerpt(cmd.Context(), string(content), excerpt))
				return nil
			}
			rendered, err := svc.Render(cmd.Context(), string(content))
			if err != nil {
				return err
			}
			if withOutline {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(rendered)
			}
			fmt.Fprintln(out, rendered.HTML)
			return nil
		},
	}

	cmd.Flags().BoolVar(&withOutline, "outline", false, "以 JSON 输出 HTML 和目录")
	cmd.Flags().IntVar(&excerpt, "excerpt", 0, "只输出指定长度的纯文本摘要")
	return cmd
}
