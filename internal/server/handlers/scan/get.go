package scan

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"cdp/scansvc/pkg/ginx"
	"cdp/scansvc/pkg/infra/mysql"
)

// Get 获取扫描详情接口
// GET /api/v1/scans/:id
// 创建扫描返回 code=3001 时，客户端通过此接口轮询结果。
func (h *ScanHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ginx.BadRequest(c, "invalid scan id")
		return
	}

	record, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, mysql.ErrScanNotFound) {
			ginx.NotFound(c, "scan not found")
			return
		}
		h.log.Errorf(c.Request.Context(), "[ScanHandler] get scan failed: %v", err)
		ginx.InternalError(c, err.Error())
		return
	}

	ginx.Success(c, record)
}
