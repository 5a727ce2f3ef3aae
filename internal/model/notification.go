package model

// ScanNotification 扫描完成通知（Redis 频道消息）
// Worker 处理完成后发布，API 侧 Smart Wait 订阅。
type ScanNotification struct {
	ScanID    int64  `json:"scan_id"`
	OwnerID   string `json:"owner_id"`
	Status    string `json:"status"` // HEALTHY/DISEASED/FAILED
	Timestamp int64  `json:"timestamp"`
}
