package scan

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cdp/scansvc/internal/domains/common/job"
	"cdp/scansvc/internal/model"
	"cdp/scansvc/pkg/errorutil"
	"cdp/scansvc/pkg/ginx"
)

// Create 创建扫描接口（同步路径）
// POST /api/v1/scans
// 存储与诊断并发执行，完成后直接返回完整记录。
func (h *ScanHandler) Create(c *gin.Context) {
	image, filename, err := readImage(c)
	if err != nil {
		ginx.BadRequest(c, err.Error())
		return
	}

	record, err := h.scanService.Process(c.Request.Context(), image, filename, ownerID(c))
	if err != nil {
		h.log.Errorf(c.Request.Context(), "[ScanHandler] create scan failed: %v", err)
		if errorutil.CodeOf(err) == errorutil.CodeInvalidInput {
			ginx.BadRequest(c, err.Error())
			return
		}
		ginx.InternalError(c, err.Error())
		return
	}

	ginx.Created(c, record)
}

// CreateAsync 创建扫描接口（异步路径 + Smart Wait）
// POST /api/v1/scans/async?wait=10
// 先落 PENDING 记录并投递 Job，再在 Redis 频道上等完成通知；
// 等待超时返回 code=3001，客户端转轮询。
func (h *ScanHandler) CreateAsync(c *gin.Context) {
	image, filename, err := readImage(c)
	if err != nil {
		ginx.BadRequest(c, err.Error())
		return
	}

	owner := ownerID(c)
	ctx := c.Request.Context()

	// 1. 创建 PENDING 占位记录
	record, err := h.scanService.CreatePending(ctx, owner)
	if err != nil {
		h.log.Errorf(ctx, "[ScanHandler] create pending scan failed: %v", err)
		ginx.InternalError(c, err.Error())
		return
	}

	// 2. 投递 Job
	if err := h.publishScanJob(ctx, record.ID, image, filename, owner); err != nil {
		h.log.Errorf(ctx, "[ScanHandler] publish scan job failed: %v", err)
		ginx.InternalError(c, "failed to enqueue scan job")
		return
	}

	// 3. Smart Wait：在上限内等完成通知
	wait := h.waitDuration(c)
	pollURL := fmt.Sprintf("/api/v1/scans/%d", record.ID)

	if wait <= 0 {
		ginx.Processing(c, record.ID, pollURL)
		return
	}

	notification, err := h.waiter.WaitForScanResult(ctx, h.opts.NotifyChannel, record.ID, wait)
	if err != nil {
		// 超时不算失败，Worker 还在处理
		ginx.Processing(c, record.ID, pollURL)
		return
	}

	h.log.Infof(ctx, "[ScanHandler] scan completed within wait window: id=%d status=%s",
		notification.ScanID, notification.Status)

	result, err := h.store.GetByID(ctx, record.ID)
	if err != nil {
		ginx.Processing(c, record.ID, pollURL)
		return
	}

	ginx.Created(c, result)
}

// publishScanJob 组装标准 Job 并投递到扫描队列
func (h *ScanHandler) publishScanJob(ctx context.Context, scanID int64, image []byte, filename, owner string) error {
	requestID, _ := ctx.Value("trace_id").(string)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	payload := &job.Job{
		Payload: &job.JobPayload{
			Data: &job.JobPayloadData{
				RequestID:  requestID,
				OwnerID:    owner,
				ActionType: model.ActionLeafScan,
				ID:         strconv.FormatInt(scanID, 10),
				Data: &model.LeafScanPayload{
					ScanID:   scanID,
					ImageB64: base64.StdEncoding.EncodeToString(image),
					Filename: filename,
					OwnerID:  owner,
				},
			},
		},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	// ttl=0 永不过期，delay=0 立即可消费
	return h.publisher.Publish(h.opts.ScanQueue, data, 0, 0)
}

// waitDuration 解析 wait 参数并按配置上限截断
func (h *ScanHandler) waitDuration(c *gin.Context) time.Duration {
	waitStr := c.Query("wait")
	if waitStr == "" {
		return h.opts.MaxWait
	}

	seconds, err := strconv.Atoi(waitStr)
	if err != nil || seconds < 0 {
		return h.opts.MaxWait
	}

	wait := time.Duration(seconds) * time.Second
	if wait > h.opts.MaxWait {
		wait = h.opts.MaxWait
	}
	return wait
}
