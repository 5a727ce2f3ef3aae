package domains

import (
	"cdp/scansvc/internal/domains/common"
	"cdp/scansvc/internal/domains/handlers/scan"
	"cdp/scansvc/internal/model"
)

// HandlerMap 路由表（ActionType → Handler 映射）
var HandlerMap = map[string]common.HandlerServProc{
	model.ActionLeafScan: scan.NewLeafScanHandler,

	// 未来扩展示例：
	// "batch_scan": batch.NewBatchScanHandler,
}
