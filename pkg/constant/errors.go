/*
 * @Description: 业务错误定义
 */
package constant

import "errors"

// 定义业务逻辑相关的标准错误
var (
	// ErrNotFound 表示资源未找到，可以由 Handler 转换为 404
	ErrNotFound = errors.New("资源未找到")

	// ErrForbidden 表示无权访问，可以由 Handler 转换为 403
	ErrForbidden = errors.New("操作禁止")

	// ErrBadRequest 表示请求参数错误，可以由 Handler 转换为 400
	ErrBadRequest = errors.New("错误的请求")

	// ErrUnauthorized 表示未授权，可以由 Handler 转换为 401
	ErrUnauthorized = errors.New("未经授权的访问")

	// ErrInvalidToken 表示无效的令牌，可以由 Handler 转换为 401
	ErrInvalidToken = errors.New("无效令牌")

	// ErrSessionEnded 表示令牌对应的会话已被注销或替换
	ErrSessionEnded = errors.New("会话已结束")

	// ErrUnsupportedVersion 表示快照版本高于当前程序可识别的版本
	ErrUnsupportedVersion = errors.New("不支持的快照版本")

	// ErrInvalidSnapshot 表示快照内容无法解析
	ErrInvalidSnapshot = errors.New("快照格式无效")

	// ErrInvalidPublicID 表示无效的公共ID，可以由 Handler 转换为 400
	ErrInvalidPublicID = errors.New("无效的公共ID")
)
