// Package catalog 维护病害治理方案目录。
// 目录在进程启动时构建一次，之后只读，可被并发查询。
package catalog

import (
	"strings"

	"cdp/scansvc/internal/model"
)

// Catalog 病害方案目录
// Lookup 是全函数：任何 key 都能得到一个可用的 Solution。
type Catalog struct {
	diseases map[string]model.Solution
	healthy  map[string]model.Solution
	contacts []string
}

// New 构建目录（静态表 + 未知病害兜底分支）
func New() *Catalog {
	return &Catalog{
		diseases: diseaseEntries(),
		healthy:  healthyEntries(),
		contacts: unknownContacts(),
	}
}

// Lookup 按规范病害标签查询治理方案
// 三级分支：健康 → 已收录病害 → 未收录兜底。
func (c *Catalog) Lookup(diseaseKey string) model.Solution {
	// 1. 健康分支：标签含 healthy（大小写不敏感）
	if model.IsHealthyLabel(diseaseKey) {
		if sol, ok := c.healthy[diseaseKey]; ok {
			return sol
		}
		return c.genericHealthy(diseaseKey)
	}

	// 2. 已收录病害：精确匹配
	if sol, ok := c.diseases[diseaseKey]; ok {
		return sol
	}

	// 3. 未收录病害：按分隔符拆出作物/病害名，建议人工咨询
	return c.genericUnknown(diseaseKey)
}

// genericHealthy 无作物专属养护方案时的通用健康分支
func (c *Catalog) genericHealthy(diseaseKey string) model.Solution {
	crop, _ := model.SplitLabel(diseaseKey)
	if crop == "" {
		crop = "Plant"
	}

	return model.Solution{
		Crop:     crop,
		Disease:  "Healthy",
		Severity: model.SeverityNone,
		Message:  "Your plant appears healthy!",
		Maintenance: []string{
			"Continue good agricultural practices",
		},
	}
}

// genericUnknown 未收录病害的兜底分支
// 病害名保留原始片段，不做下划线替换，方便按原 key 溯源。
func (c *Catalog) genericUnknown(diseaseKey string) model.Solution {
	crop := "Unknown"
	disease := diseaseKey
	if parts := strings.SplitN(diseaseKey, model.LabelDelimiter, 2); len(parts) == 2 && parts[0] != "" {
		crop = parts[0]
		disease = parts[1]
	}

	return model.Solution{
		Crop:           crop,
		Disease:        disease,
		Severity:       model.SeverityUnknown,
		Message:        "No specific solution available for this disease.",
		Recommendation: "Please consult with a local agricultural extension officer or plant pathologist.",
		Contacts:       c.contacts,
	}
}
