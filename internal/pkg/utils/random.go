package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// RandomSecret 返回 n 字节随机数的十六进制表示，用作进程内临时密钥
func RandomSecret(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("读取随机数失败: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
