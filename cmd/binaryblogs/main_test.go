package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/binary-blogs/binary-blogs/pkg/service/theme"
)

func TestRenderCommand(t *testing.T) {
	testCases := []struct {
		name  string
		args  []string
		input string
		want  string
	}{
		{name: "HTML", args: []string{"-"}, input: "# Hello\n\n*world*", want: "<em>world</em>"},
		{name: "目录", args: []string{"--outline"}, input: "## Part\n\ntext", want: `"outline"`},
		{name: "摘要", args: []string{"--excerpt", "5"}, input: "abcdefghij", want: "abcde..."},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cmd := newRenderCommand()
			var out bytes.Buffer
			cmd.SetOut(&out)
			cmd.SetIn(strings.NewReader(tc.input))
			cmd.SetArgs(tc.args)
			if err := cmd.Execute(); err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if !strings.Contains(out.String(), tc.want) {
				t.Errorf("输出 %q 不包含 %q", out.String(), tc.want)
			}
		})
	}
}

func TestPaletteRows(t *testing.T) {
	rows := paletteRows(false)
	if len(rows) != len(theme.Palette()) {
		t.Fatalf("行数 = %d", len(rows))
	}
	for i, s := range theme.Palette() {
		if !strings.Contains(rows[i], s.Name) || !strings.Contains(rows[i], s.Accent) {
			t.Errorf("第 %d 行缺少 %s: %q", i, s.Name, rows[i])
		}
	}
}
