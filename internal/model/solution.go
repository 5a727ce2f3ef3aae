package model

import "strings"

// Severity 病害严重程度
type Severity string

const (
	SeverityNone     Severity = "NONE"
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
	SeverityUnknown  Severity = "UNKNOWN"
)

// ParseSeverity 解析目录/模型给出的严重程度描述
// "Very High" 历史写法映射为 CRITICAL
func ParseSeverity(s string) Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return SeverityNone
	case "low":
		return SeverityLow
	case "medium":
		return SeverityMedium
	case "high":
		return SeverityHigh
	case "very high", "critical":
		return SeverityCritical
	default:
		return SeverityUnknown
	}
}

// Solution 病害治理方案（目录查询结果）
// 各 slice 语义上是无序建议集合，但保持录入顺序用于稳定展示。
type Solution struct {
	Crop           string   `json:"crop"`
	Disease        string   `json:"disease"`
	Severity       Severity `json:"severity"`
	Organic        []string `json:"organic,omitempty"`
	Chemical       []string `json:"chemical,omitempty"`
	Prevention     []string `json:"prevention,omitempty"`
	Maintenance    []string `json:"maintenance,omitempty"`
	Message        string   `json:"message,omitempty"`
	Recommendation string   `json:"recommendation,omitempty"`
	Contacts       []string `json:"contacts,omitempty"` // 未收录病害时给出的人工咨询渠道
}
