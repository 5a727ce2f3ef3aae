package response

import (
	"cdp/scansvc/internal/domains/common/job"
	"cdp/scansvc/pkg/errorutil"
)

// ScanResult 扫描处理结果（实现 ResultI 接口）
type ScanResult struct {
	ID     string           `json:"id"`
	Status string           `json:"status"`
	Data   interface{}      `json:"data"`
	Error  *errorutil.Error `json:"error,omitempty"`
}

const (
	ScanResultStatusSuccess = "SUCCESS"
	ScanResultStatusFailed  = "FAILED"
)

// NewScanResult 创建扫描结果
func NewScanResult() *ScanResult {
	return &ScanResult{}
}

// Set 实现 ResultI 接口
func (r *ScanResult) Set(meta *job.Meta, err error) {
	r.ID = meta.ID
	if err != nil {
		r.Status = ScanResultStatusFailed
		r.Error = errorutil.Wrap(err)
	} else {
		r.Status = ScanResultStatusSuccess
	}
}

// GetStatus 实现 ResultI 接口
func (r *ScanResult) GetStatus() string {
	return r.Status
}
