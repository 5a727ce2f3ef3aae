package scan

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"cdp/scansvc/internal/model"
	"cdp/scansvc/pkg/ginx"
)

// ListData 扫描历史列表响应
type ListData struct {
	Scans []*model.ScanRecord `json:"scans"`
	Total int64               `json:"total"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
}

// List 查询扫描历史接口
// GET /api/v1/scans?page=1&limit=20
// 只返回请求方自己的记录，按创建时间倒序。
func (h *ScanHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	records, total, err := h.store.ListByOwner(c.Request.Context(), ownerID(c), page, limit)
	if err != nil {
		h.log.Errorf(c.Request.Context(), "[ScanHandler] list scans failed: %v", err)
		ginx.InternalError(c, err.Error())
		return
	}

	ginx.Success(c, ListData{
		Scans: records,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}
