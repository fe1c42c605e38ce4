/*
 * @Description: 内嵌的演示数据集
 */
package seed

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/binary-blogs/binary-blogs/pkg/domain/model"
)

//go:embed demo.yaml
var demoYAML []byte

type dataset struct {
	Posts []model.DemoPost `yaml:"posts"`
}

// DemoPosts 解析内嵌的演示文章
func DemoPosts() ([]model.DemoPost, error) {
	return Parse(demoYAML)
}

// Parse 解析 YAML 格式的数据集
func Parse(data []byte) ([]model.DemoPost, error) {
	var ds dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("解析演示数据失败: %w", err)
	}
	seen := make(map[string]struct{}, len(ds.Posts))
	for i, p := range ds.Posts {
		if p.ID == "" {
			return nil, fmt.Errorf("演示数据第 %d 篇缺少 id", i+1)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("演示数据 id 重复: %s", p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return ds.Posts, nil
}
