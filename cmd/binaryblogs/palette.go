package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/binary-blogs/binary-blogs/pkg/service/theme"
)

var (
	nameStyle   = lipgloss.NewStyle().Bold(true).Width(8)
	hexStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8"))
	swatchStyle = lipgloss.NewStyle().Padding(0, 1)
)

func swatch(hex string) string {
	return swatchStyle.Background(lipgloss.Color(hex)).Render("  ")
}

// paletteRows 渲染每个配色一行，dark 为 true 时展示暗色变体
func paletteRows(dark bool) []string {
	rows := make([]string, 0, len(theme.Palette()))
	for _, s := range theme.Palette() {
		text, bg := s.TextLight, s.BgLight
		if dark {
			text, bg = s.TextDark, s.BgDark
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Center,
			nameStyle.Render(s.Name),
			swatch(s.Accent), swatch(s.Hover), swatch(text), swatch(bg),
			" ", hexStyle.Render(strings.Join([]string{s.Accent, s.Hover, text, bg}, " ")),
		))
	}
	return rows
}

func newPaletteCommand() *cobra.Command {
	var dark bool

	cmd := &cobra.Command{
		Use:   "palette",
		Short: "在终端预览主题配色",
		RunE: func(cmd *cobra.Command, args []string) error {
			header := lipgloss.NewStyle().Bold(true).MarginBottom(1).
				Render("accent / hover / text / bg")
			fmt.Fprintln(cmd.OutOrStdout(), lipgloss.JoinVertical(lipgloss.Left,
				append([]string{header}, paletteRows(dark)...)...))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dark, "dark", false, "展示暗色模式下的取值")
	return cmd
}
