package model

// ActionLeafScan 叶片扫描 Job 的路由键
const ActionLeafScan = "leaf_scan"

// LeafScanPayload 叶片扫描 Job 的业务数据
type LeafScanPayload struct {
	ScanID   int64  `json:"scan_id"`
	ImageB64 string `json:"image_b64"`
	Filename string `json:"filename"`
	OwnerID  string `json:"owner_id"`
}
