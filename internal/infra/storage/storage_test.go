package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/binary-blogs/binary-blogs/pkg/config"
)

func TestLocalProvider(t *testing.T) {
	ctx := context.Background()
	p, err := NewLocalProvider(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"b.json", "a.json"} {
		if err := p.Upload(ctx, strings.NewReader(`{"n":"`+name+`"}`), name); err != nil {
			t.Fatalf("Upload(%s) error = %v", name, err)
		}
	}

	list, err := p.List(ctx)
	if err != nil || len(list) != 2 || list[0].Name != "a.json" {
		t.Fatalf("List() = %+v, %v", list, err)
	}

	rc, err := p.Get(ctx, "b.json")
	if err != nil {
		t.Fatal(err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != `{"n":"b.json"}` {
		t.Errorf("Get() = %s", data)
	}

	if _, err := p.Get(ctx, "missing.json"); !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("Get(missing) error = %v", err)
	}
	if err := p.Delete(ctx, "a.json"); err != nil {
		t.Fatal(err)
	}
	if err := p.Delete(ctx, "a.json"); err != nil {
		t.Errorf("重复删除不应报错: %v", err)
	}
}

func TestLocalProviderRejectsPaths(t *testing.T) {
	p, _ := NewLocalProvider(t.TempDir())
	for _, name := range []string{"../escape.json", "sub/dir.json", "", ".."} {
		if err := p.Upload(context.Background(), strings.NewReader("x"), name); err == nil {
			t.Errorf("Upload(%q) 应被拒绝", name)
		}
	}
}

func TestNewProviderFromConfig(t *testing.T) {
	testCases := []struct {
		name    string
		values  map[string]interface{}
		want    string
		wantErr bool
	}{
		{name: "本地", values: map[string]interface{}{config.KeyBackupDriver: "local"}, want: "local"},
		{name: "S3缺少存储桶", values: map[string]interface{}{config.KeyBackupDriver: "s3"}, wantErr: true},
		{name: "S3", values: map[string]interface{}{
			config.KeyBackupDriver: "s3", config.KeyBackupS3Bucket: "backups",
			config.KeyBackupS3AccessKey: "ak", config.KeyBackupS3SecretKey: "sk",
			config.KeyBackupS3Endpoint: "http://127.0.0.1:9000",
		}, want: "s3"},
		{name: "未知驱动", values: map[string]interface{}{config.KeyBackupDriver: "ftp"}, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.values[config.KeyBackupDir] = t.TempDir()
			p, err := NewProviderFromConfig(context.Background(), config.NewFromMap(tc.values))
			if tc.wantErr {
				if err == nil {
					t.Fatal("应返回错误")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if p.Name() != tc.want {
				t.Errorf("Name() = %s, want %s", p.Name(), tc.want)
			}
		})
	}
}
