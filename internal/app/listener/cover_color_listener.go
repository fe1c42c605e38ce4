/*
 * @Description: 监听封面变化事件，在后台提取封面主色调并写回文章。
 */
package listener

import (
	"context"
	"log"

	"github.com/binary-blogs/binary-blogs/internal/pkg/event"
)

// ColorExtractor 根据图片地址提取主色调，失败时返回空字符串
type ColorExtractor interface {
	GetPrimaryColorFromURL(ctx context.Context, imageURL string) string
}

// ColorWriter 把主色调写回文章
type ColorWriter interface {
	SetPrimaryColor(ctx context.Context, id, coverImage, color string) (bool, error)
}

// CoverColorListener 订阅 BlogCoverChanged，是主色调提取的唯一入口
type CoverColorListener struct {
	extractor ColorExtractor
	writer    ColorWriter
}

// NewCoverColorListener 创建监听器并订阅事件
func NewCoverColorListener(eventBus *event.EventBus, extractor ColorExtractor, writer ColorWriter) *CoverColorListener {
	l := &CoverColorListener{extractor: extractor, writer: writer}
	eventBus.Subscribe(event.BlogCoverChanged, l.HandleCoverChanged)
	return l
}

// HandleCoverChanged 是事件处理器。事件总线的 worker 会等待它返回。
func (l *CoverColorListener) HandleCoverChanged(payload interface{}) {
	evt, ok := payload.(event.BlogEvent)
	if !ok {
		log.Printf("[CoverColorListener] 错误：收到的事件负载类型不正确: %T", payload)
		return
	}
	if evt.CoverImage == "" {
		return
	}

	ctx := context.Background()
	color := l.extractor.GetPrimaryColorFromURL(ctx, evt.CoverImage)
	if color == "" {
		log.Printf("[CoverColorListener] 文章 %s 的封面未能提取主色调", evt.BlogID)
		return
	}
	updated, err := l.writer.SetPrimaryColor(ctx, evt.BlogID, evt.CoverImage, color)
	if err != nil {
		log.Printf("[CoverColorListener] 写入文章 %s 主色调失败: %v", evt.BlogID, err)
		return
	}
	if updated {
		log.Printf("[CoverColorListener] 文章 %s 主色调: %s", evt.BlogID, color)
	}
}
