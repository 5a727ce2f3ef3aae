// Package scan 叶片扫描 HTTP 处理器。
package scan

import (
	"context"
	"io"
	"mime/multipart"
	"time"

	"github.com/gin-gonic/gin"

	"cdp/scansvc/internal/business"
	"cdp/scansvc/internal/model"
	"cdp/scansvc/pkg/errorutil"
	"cdp/scansvc/pkg/logger"
)

// maxImageSize 上传图片大小上限
const maxImageSize = 10 << 20 // 10MB

// ScanStore 扫描记录查询接口
type ScanStore interface {
	GetByID(ctx context.Context, id int64) (*model.ScanRecord, error)
	ListByOwner(ctx context.Context, ownerID string, page, limit int) ([]*model.ScanRecord, int64, error)
	Delete(ctx context.Context, id int64, ownerID string) error
}

// JobPublisher 扫描 Job 发布接口
type JobPublisher interface {
	Publish(queue string, data []byte, ttl, delay uint32) error
}

// ResultWaiter 扫描结果等待接口（Smart Wait）
type ResultWaiter interface {
	WaitForScanResult(ctx context.Context, channel string, scanID int64, timeout time.Duration) (*model.ScanNotification, error)
}

// Options Handler 配置
type Options struct {
	ScanQueue     string        // 叶片扫描 Job 队列
	NotifyChannel string        // 完成通知频道
	MaxWait       time.Duration // Smart Wait 上限
}

// ScanHandler 扫描 HTTP 处理器
type ScanHandler struct {
	scanService *business.ScanService
	store       ScanStore
	publisher   JobPublisher
	waiter      ResultWaiter
	opts        Options
	log         logger.Logger
}

// NewScanHandler 创建扫描处理器实例
func NewScanHandler(
	scanService *business.ScanService,
	store ScanStore,
	publisher JobPublisher,
	waiter ResultWaiter,
	opts Options,
	log logger.Logger,
) *ScanHandler {
	if opts.MaxWait <= 0 {
		opts.MaxWait = 30 * time.Second
	}

	return &ScanHandler{
		scanService: scanService,
		store:       store,
		publisher:   publisher,
		waiter:      waiter,
		opts:        opts,
		log:         log,
	}
}

// ownerID 提取请求方标识
// 网关做完认证后通过 Header 透传，兼容 owner_id 查询参数，
// 缺省归到 anonymous。
func ownerID(c *gin.Context) string {
	if id := c.GetHeader("X-Owner-ID"); id != "" {
		return id
	}
	if id := c.Query("owner_id"); id != "" {
		return id
	}
	return "anonymous"
}

// readImage 读取 multipart 表单里的图片
func readImage(c *gin.Context) ([]byte, string, error) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return nil, "", errorutil.InvalidInput("image file is required")
	}
	if fileHeader.Size > maxImageSize {
		return nil, "", errorutil.InvalidInput("image exceeds size limit")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, "", errorutil.InvalidInput("failed to open image file")
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	image, err := io.ReadAll(file)
	if err != nil {
		return nil, "", errorutil.InvalidInput("failed to read image file")
	}
	if len(image) == 0 {
		return nil, "", errorutil.InvalidInput("image is empty")
	}

	return image, fileHeader.Filename, nil
}
