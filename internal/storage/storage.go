// Package storage 负责扫描图片的持久化。
// 存储失败是请求级致命错误：没有图片留档的诊断结果不允许落库。
package storage

import "context"

// ImageStore 图片存储抽象
type ImageStore interface {
	// Store 保存图片并返回可访问的 URL
	Store(ctx context.Context, image []byte, filename string) (string, error)
}
