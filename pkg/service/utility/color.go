// pkg/service/utility/color.go
package utility

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"

	"github.com/EdlinOrg/prominentcolor"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// colorSampleSize 提取主色前把图片缩到的最大边长
const colorSampleSize = 256

// ColorService 使用 K-Means 提取图片主色调
type ColorService struct{}

func NewColorService() *ColorService {
	log.Println("[ColorService] 初始化颜色服务：使用 'prominentcolor' (K-Means算法) 来查找主色调。")
	return &ColorService{}
}

// GetPrimaryColor 解码图片并返回形如 #rrggbb 的主色调
func (s *ColorService) GetPrimaryColor(reader io.Reader) (string, error) {
	img, err := imaging.Decode(reader, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("解码图片失败: %w", err)
	}
	return s.PrimaryColorOf(img)
}

// PrimaryColorOf 对已解码的图片提取主色调
func (s *ColorService) PrimaryColorOf(img image.Image) (string, error) {
	bounds := img.Bounds()
	if bounds.Dx() > colorSampleSize || bounds.Dy() > colorSampleSize {
		img = imaging.Fit(img, colorSampleSize, colorSampleSize, imaging.Box)
	}

	colors, err := prominentcolor.KmeansWithArgs(prominentcolor.ArgumentNoCropping, img)
	if err != nil {
		return "", fmt.Errorf("使用 prominentcolor (K-Means) 提取主色调失败: %w", err)
	}
	if len(colors) == 0 {
		return "", fmt.Errorf("prominentcolor (K-Means) 未能找到任何主色调")
	}

	dominantColor := colors[0].Color
	return fmt.Sprintf("#%02x%02x%02x", dominantColor.R, dominantColor.G, dominantColor.B), nil
}
