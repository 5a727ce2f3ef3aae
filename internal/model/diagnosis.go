package model

// DiagnosisSource 诊断来源（哪一级检测器产出了结果）
type DiagnosisSource string

const (
	// SourcePrimary 本地 CNN 模型（子进程）
	SourcePrimary DiagnosisSource = "PRIMARY"
	// SourceSecondary 远端视觉大模型（兜底）
	SourceSecondary DiagnosisSource = "SECONDARY"
	// SourceFallbackError 两级检测均失败时合成的终态结果
	SourceFallbackError DiagnosisSource = "FALLBACK_ERROR"
)

// 置信度分档（沿用 CLI 模型的分档规则）
const (
	ConfidenceVeryHigh = "Very High"
	ConfidenceHigh     = "High"
	ConfidenceMedium   = "Medium"
	ConfidenceLow      = "Low"
)

// Diagnosis 归一化后的诊断结果
// 各检测器适配层负责把自己的原始输出转成这个结构，
// 编排层只认这一种形状。
type Diagnosis struct {
	Crop            string                 `json:"crop"`
	DiseaseKey      string                 `json:"disease_key"` // 规范标签，如 "Tomato___Early_blight"
	Disease         string                 `json:"disease"`     // 展示用病害名
	Confidence      float64                `json:"confidence"`  // 统一为 0~1
	ConfidenceLevel string                 `json:"confidence_level"`
	IsHealthy       bool                   `json:"is_healthy"`
	Source          DiagnosisSource        `json:"source"`
	Raw             map[string]interface{} `json:"raw,omitempty"` // 检测器原始字段，仅留档不解读
}

// ConfidenceLevelOf 按 0~1 置信度分档
func ConfidenceLevelOf(score float64) string {
	switch {
	case score > 0.9:
		return ConfidenceVeryHigh
	case score > 0.75:
		return ConfidenceHigh
	case score > 0.6:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
