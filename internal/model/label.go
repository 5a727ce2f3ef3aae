package model

import "strings"

// LabelDelimiter 规范标签中作物与病害的分隔符
const LabelDelimiter = "___"

// NormalizeLabel 把模型输出的标签规范化为 "Crop___Disease" 形式。
// 模型可能返回 "Tomato Bacterial spot"，目录需要 "Tomato___Bacterial_spot"。
// 已经是规范形式的标签原样返回。
func NormalizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" || strings.Contains(label, LabelDelimiter) {
		return label
	}

	parts := strings.SplitN(label, " ", 2)
	if len(parts) != 2 {
		return label
	}

	crop := parts[0]
	disease := strings.ReplaceAll(parts[1], " ", "_")
	return crop + LabelDelimiter + disease
}

// ComposeLabel 由作物名和病害名拼出规范标签
func ComposeLabel(crop, disease string) string {
	crop = strings.TrimSpace(crop)
	disease = strings.ReplaceAll(strings.TrimSpace(disease), " ", "_")
	if crop == "" {
		return disease
	}
	if disease == "" {
		return crop
	}
	return crop + LabelDelimiter + disease
}

// SplitLabel 拆分规范标签，返回作物名和展示用病害名。
// 无法拆分时作物名为空，病害名为原标签。
func SplitLabel(key string) (crop, disease string) {
	if idx := strings.Index(key, LabelDelimiter); idx >= 0 {
		crop = key[:idx]
		disease = strings.ReplaceAll(key[idx+len(LabelDelimiter):], "_", " ")
		return crop, disease
	}
	return "", key
}

// IsHealthyLabel 标签是否表示健康（大小写不敏感的 contains 判断）
func IsHealthyLabel(label string) bool {
	return strings.Contains(strings.ToLower(label), "healthy")
}
