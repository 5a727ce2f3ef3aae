package model

import "time"

// 扫描记录状态
const (
	ScanStatusPending  = "PENDING" // 异步路径：已入库等待 Worker 处理
	ScanStatusHealthy  = "HEALTHY"
	ScanStatusDiseased = "DISEASED"
	ScanStatusFailed   = "FAILED" // 两级检测均失败，仍然落库留痕
)

// FullReport 完整报告：原始诊断 + 目录方案，嵌套落库
type FullReport struct {
	Detection Diagnosis `json:"detection"`
	Solution  Solution  `json:"solution"`
}

// ScanRecord 一次扫描的持久化结果
// 创建后不可变，仅支持删除。
type ScanRecord struct {
	ID         int64       `json:"id"`
	ImageURL   string      `json:"image_url"`
	Plant      string      `json:"plant"`
	Condition  string      `json:"condition"` // 展示用病害名
	Status     string      `json:"status"`
	Confidence float64     `json:"confidence"` // 0~1
	FullReport *FullReport `json:"full_report,omitempty"`
	OwnerID    string      `json:"owner_id"`
	CreatedAt  time.Time   `json:"created_at"`
}

// DeriveScanStatus 由诊断结果推导记录状态
func DeriveScanStatus(d *Diagnosis) string {
	switch {
	case d.Source == SourceFallbackError:
		return ScanStatusFailed
	case d.IsHealthy:
		return ScanStatusHealthy
	default:
		return ScanStatusDiseased
	}
}
