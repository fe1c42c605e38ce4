package seed

import (
	"strings"
	"testing"
)

func TestDemoPosts(t *testing.T) {
	posts, err := DemoPosts()
	if err != nil {
		t.Fatalf("DemoPosts() error = %v", err)
	}
	if len(posts) < 4 {
		t.Fatalf("演示数据太少: %d", len(posts))
	}
	for _, p := range posts {
		if p.Title == "" || p.Content == "" || len(p.Tags) == 0 {
			t.Errorf("演示文章 %s 字段不完整", p.ID)
		}
		if p.Author.ID == "" || p.Author.Name == "" {
			t.Errorf("演示文章 %s 缺少作者", p.ID)
		}
	}
}

func TestParse(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		wantErr string
		wantLen int
	}{
		{name: "正常解析", input: "posts:\n  - id: a\n    title: A\n  - id: b\n    title: B\n", wantLen: 2},
		{name: "缺少id", input: "posts:\n  - title: A\n", wantErr: "缺少 id"},
		{name: "id重复", input: "posts:\n  - id: a\n  - id: a\n", wantErr: "重复"},
		{name: "可选计数", input: "posts:\n  - id: a\n    views: 5\n", wantLen: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			posts, err := Parse([]byte(tc.input))
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("Parse() error = %v, want %q", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if len(posts) != tc.wantLen {
				t.Errorf("len = %d, want %d", len(posts), tc.wantLen)
			}
		})
	}
}
