package scan

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"cdp/scansvc/pkg/ginx"
	"cdp/scansvc/pkg/infra/mysql"
)

// Delete 删除扫描记录接口
// DELETE /api/v1/scans/:id
// 只能删除自己的记录，别人的记录表现为不存在。
func (h *ScanHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ginx.BadRequest(c, "invalid scan id")
		return
	}

	if err := h.store.Delete(c.Request.Context(), id, ownerID(c)); err != nil {
		if errors.Is(err, mysql.ErrScanNotFound) {
			ginx.NotFound(c, "scan not found")
			return
		}
		h.log.Errorf(c.Request.Context(), "[ScanHandler] delete scan failed: %v", err)
		ginx.InternalError(c, err.Error())
		return
	}

	ginx.Success(c, gin.H{"deleted": true})
}
