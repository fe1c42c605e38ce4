/*
 * @Description: Markdown 渲染服务 (解析 -> AST -> 渲染 -> 安全过滤)，带结果缓存
 */
package parser

import (
	"context"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	mdparser "github.com/binary-blogs/binary-blogs/internal/pkg/parser"
	"github.com/binary-blogs/binary-blogs/pkg/domain/model"
)

// 缓存配置常量
const (
	cacheCapacity = 500
	cacheTTL      = 30 * time.Minute

	// DefaultExcerptRunes 自动摘要的最大字符数
	DefaultExcerptRunes = 160
)

var renderCacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "binaryblogs",
	Subsystem: "markdown",
	Name:      "render_cache_lookups_total",
	Help:      "Markdown 渲染缓存的命中与未命中次数",
}, []string{"result"})

func init() {
	prometheus.MustRegister(renderCacheLookups)
}

// Rendered 是一次完整渲染的结果
type Rendered struct {
	HTML    string              `json:"html"`
	Outline []model.HeadingItem `json:"outline"`
}

// Service 将文章正文渲染为安全的 HTML
type Service struct {
	htmlCache *LRUCache
}

// NewService 创建一个新的解析服务实例
func NewService() *Service {
	return &Service{htmlCache: NewLRUCache(cacheCapacity, cacheTTL)}
}

// ToHTML 渲染 Markdown。格式不合法的输入按普通文本输出，不会返回解析错误。
func (s *Service) ToHTML(ctx context.Context, content string) (string, error) {
	cacheKey := computeCacheKey(content)
	if cached, hit := s.htmlCache.Get(cacheKey); hit {
		renderCacheLookups.WithLabelValues("hit").Inc()
		return cached, nil
	}
	renderCacheLookups.WithLabelValues("miss").Inc()

	safeHTML, err := mdparser.MarkdownToHTML(content)
	if err != nil {
		log.Printf("[Parser] 渲染 Markdown 失败: %v", err)
		return "", err
	}
	s.htmlCache.Set(cacheKey, safeHTML)
	return safeHTML, nil
}

// Render 渲染并提取目录
func (s *Service) Render(ctx context.Context, content string) (*Rendered, error) {
	html, err := s.ToHTML(ctx, content)
	if err != nil {
		return nil, err
	}
	outline, err := mdparser.ExtractOutline(html)
	if err != nil {
		// 目录只是附加信息，失败时返回空目录
		log.Printf("[Parser] 提取目录失败: %v", err)
		outline = []model.HeadingItem{}
	}
	return &Rendered{HTML: html, Outline: outline}, nil
}

// Excerpt 由正文生成纯文本摘要
func (s *Service) Excerpt(ctx context.Context, content string, maxRunes int) string {
	if maxRunes <= 0 {
		maxRunes = DefaultExcerptRunes
	}
	html, err := s.ToHTML(ctx, content)
	if err != nil {
		return ""
	}
	return mdparser.PlainExcerpt(html, maxRunes)
}

// ClearCache 清空渲染缓存
func (s *Service) ClearCache() {
	s.htmlCache.Clear()
}

// CacheSize 返回缓存条目数
func (s *Service) CacheSize() int {
	return s.htmlCache.Size()
}
