// Package scan 叶片扫描 Job 的 Handler。
package scan

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"cdp/scansvc/internal/business"
	"cdp/scansvc/internal/domains/common"
	"cdp/scansvc/internal/domains/common/job"
	"cdp/scansvc/internal/domains/common/response"
	"cdp/scansvc/internal/framework"
	"cdp/scansvc/internal/model"
	"cdp/scansvc/pkg/errorutil"
)

// Notifier 扫描完成通知接口（Smart Wait 的另一端）
type Notifier interface {
	NotifyScanComplete(ctx context.Context, notification *model.ScanNotification) error
}

// LeafScanHandler 叶片扫描 Handler
type LeafScanHandler struct {
	ctx     context.Context
	meta    *job.Meta
	payload *model.LeafScanPayload

	image  []byte            // validate 阶段解码
	record *model.ScanRecord // process 阶段产出
}

// NewLeafScanHandler 创建叶片扫描 Handler
// 解析标准化 Job 消息
func NewLeafScanHandler(ctx context.Context, meta *job.Meta, payload interface{}) (common.HandlerServ, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload failed: %w", err)
	}

	var bizData model.LeafScanPayload
	if err := json.Unmarshal(payloadBytes, &bizData); err != nil {
		return nil, fmt.Errorf("unmarshal business data failed: %w", err)
	}

	// 校验必填字段
	if bizData.ScanID == 0 {
		return nil, fmt.Errorf("scan_id is required")
	}
	if bizData.ImageB64 == "" {
		return nil, fmt.Errorf("image_b64 is required")
	}

	// meta.ID 为空则从业务数据补齐，便于结果溯源
	if meta.ID == "" {
		meta.ID = strconv.FormatInt(bizData.ScanID, 10)
	}
	if meta.OwnerID == "" {
		meta.OwnerID = bizData.OwnerID
	}

	return &LeafScanHandler{
		ctx:     ctx,
		meta:    meta,
		payload: &bizData,
	}, nil
}

// GetProcess 处理扫描请求
// 函数链：校验解码 → 诊断落库 → 完成通知，任一环失败立即短路。
func (h *LeafScanHandler) GetProcess() *response.Response {
	result := response.NewScanResult()

	chain := framework.NewPreProcessor([]framework.ProcessorFunc{
		h.validate,
		h.process,
		h.notify,
	})
	err := chain.Run(h.ctx)

	if h.record != nil {
		result.Data = h.record
	}

	resp := &response.Response{}
	resp.WrapResponse(result, h.meta, err)

	return resp
}

// validate 解码图片数据
func (h *LeafScanHandler) validate(ctx context.Context) error {
	image, err := base64.StdEncoding.DecodeString(h.payload.ImageB64)
	if err != nil {
		return errorutil.InvalidInput(fmt.Sprintf("invalid image_b64: %v", err))
	}
	if len(image) == 0 {
		return errorutil.InvalidInput("image is empty")
	}

	h.image = image
	return nil
}

// process 执行诊断并回写 PENDING 记录
func (h *LeafScanHandler) process(ctx context.Context) error {
	scanService, ok := ctx.Value("scan_service").(*business.ScanService)
	if !ok || scanService == nil {
		return fmt.Errorf("ScanService not found in context")
	}

	ctx = context.WithValue(ctx, "scan_id", h.payload.ScanID)

	record, err := scanService.Complete(ctx, h.payload.ScanID, h.image, h.payload.Filename)
	if err != nil {
		return err
	}

	h.record = record
	return nil
}

// notify 发布扫描完成通知（API 侧 Smart Wait 在等）
// 通知失败不算处理失败：结果已落库，API 侧超时后会转轮询。
func (h *LeafScanHandler) notify(ctx context.Context) error {
	notifier, ok := ctx.Value("scan_notifier").(Notifier)
	if !ok || notifier == nil {
		return nil
	}

	notification := &model.ScanNotification{
		ScanID:    h.record.ID,
		OwnerID:   h.meta.OwnerID,
		Status:    h.record.Status,
		Timestamp: time.Now().Unix(),
	}

	if err := notifier.NotifyScanComplete(ctx, notification); err != nil {
		// 只告警不失败
		fmt.Printf("notify scan complete failed: scan_id=%d, err=%v\n", h.record.ID, err)
	}
	return nil
}
