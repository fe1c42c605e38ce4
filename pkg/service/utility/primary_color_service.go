// pkg/service/utility/primary_color_service.go
package utility

import (
	"context"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// CoverFetchTimeout 下载封面的超时时间
const CoverFetchTimeout = 10 * time.Second

// maxCoverBytes 封面图片的大小上限
const maxCoverBytes = 20 << 20

// PrimaryColorService 下载封面图片并提取主色调
type PrimaryColorService struct {
	colorSvc   *ColorService
	httpClient *http.Client
}

// NewPrimaryColorService 创建主色调服务实例，httpClient 为 nil 时使用带超时的默认客户端
func NewPrimaryColorService(colorSvc *ColorService, httpClient *http.Client) *PrimaryColorService {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: CoverFetchTimeout}
	}
	return &PrimaryColorService{colorSvc: colorSvc, httpClient: httpClient}
}

// GetPrimaryColorFromURL 下载图片并提取主色调。
// 返回空字符串表示获取失败，前端应使用默认值
func (s *PrimaryColorService) GetPrimaryColorFromURL(ctx context.Context, imageURL string) string {
	imageURL = cleanURL(imageURL)
	if imageURL == "" {
		return ""
	}
	if !strings.HasPrefix(imageURL, "http://") && !strings.HasPrefix(imageURL, "https://") {
		log.Printf("[主色调服务] 不支持的图片地址: %s", imageURL)
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, CoverFetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		log.Printf("[主色调服务] 创建HTTP请求失败: %v", err)
		return ""
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; BinaryBlogs/1.0)")
	req.Header.Set("Accept", "image/webp,image/apng,image/*,*/*;q=0.8")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		log.Printf("[主色调服务] 下载图片失败: %v", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[主色调服务] 图片URL返回非200状态码: %d", resp.StatusCode)
		return ""
	}
	if contentType := resp.Header.Get("Content-Type"); contentType != "" && !strings.HasPrefix(contentType, "image/") {
		log.Printf("[主色调服务] 响应类型不是图片: %s", contentType)
		return ""
	}

	color, err := s.colorSvc.GetPrimaryColor(io.LimitReader(resp.Body, maxCoverBytes))
	if err != nil {
		log.Printf("[主色调服务] 提取主色调失败: %v", err)
		return ""
	}
	log.Printf("[主色调服务] 成功提取主色调: %s", color)
	return color
}

// cleanURL 去掉首尾空白和常见的零宽字符
func cleanURL(raw string) string {
	raw = strings.TrimSpace(raw)
	for _, zw := range []string{"\u200b", "\u200c", "\u200d", "\ufeff", "\u2060"} {
		raw = strings.ReplaceAll(raw, zw, "")
	}
	return raw
}
