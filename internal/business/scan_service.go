package business

import (
	"context"
	"time"

	"cdp/scansvc/internal/catalog"
	"cdp/scansvc/internal/model"
	"cdp/scansvc/internal/storage"
	"cdp/scansvc/pkg/idgen"
	"cdp/scansvc/pkg/logger"
)

// ScanRepository 扫描记录持久化接口
type ScanRepository interface {
	Create(ctx context.Context, rec *model.ScanRecord) error
	UpdateResult(ctx context.Context, rec *model.ScanRecord) error
}

// ScanService 扫描服务
// 图片存储和诊断并发执行后汇合（join 而非 race）：
// 存储失败整个请求失败，诊断"失败"已被编排层吸收为降级结果。
type ScanService struct {
	diagnoser Diagnoser
	store     storage.ImageStore
	catalog   *catalog.Catalog
	repo      ScanRepository
	log       logger.Logger
}

// NewScanService 创建扫描服务
func NewScanService(
	diagnoser Diagnoser,
	store storage.ImageStore,
	cat *catalog.Catalog,
	repo ScanRepository,
	log logger.Logger,
) *ScanService {
	return &ScanService{
		diagnoser: diagnoser,
		store:     store,
		catalog:   cat,
		repo:      repo,
		log:       log,
	}
}

// CreatePending 创建 PENDING 占位记录（异步路径入口）
// 先落库拿到 ID，再由 Worker 回写结果。
func (s *ScanService) CreatePending(ctx context.Context, ownerID string) (*model.ScanRecord, error) {
	rec := &model.ScanRecord{
		ID:        idgen.GenerateID(),
		Status:    model.ScanStatusPending,
		OwnerID:   ownerID,
		CreatedAt: time.Now(),
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Process 同步处理一次扫描：存储 ∥ 诊断 → 组装 → 落库
func (s *ScanService) Process(ctx context.Context, image []byte, filename, ownerID string) (*model.ScanRecord, error) {
	rec, err := s.assemble(ctx, image, filename)
	if err != nil {
		return nil, err
	}

	rec.ID = idgen.GenerateID()
	rec.OwnerID = ownerID
	rec.CreatedAt = time.Now()

	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}

	s.log.Infof(ctx, "[ScanService] Scan completed: id=%d status=%s source=%s",
		rec.ID, rec.Status, rec.FullReport.Detection.Source)
	return rec, nil
}

// Complete 完成异步扫描：存储 ∥ 诊断 → 组装 → 回写 PENDING 记录
func (s *ScanService) Complete(ctx context.Context, scanID int64, image []byte, filename string) (*model.ScanRecord, error) {
	rec, err := s.assemble(ctx, image, filename)
	if err != nil {
		return nil, err
	}

	rec.ID = scanID
	if err := s.repo.UpdateResult(ctx, rec); err != nil {
		return nil, err
	}

	s.log.Infof(ctx, "[ScanService] Scan completed: id=%d status=%s source=%s",
		rec.ID, rec.Status, rec.FullReport.Detection.Source)
	return rec, nil
}

// assemble 并发执行存储与诊断，汇合后组装完整记录
// 两条支路都结束才返回；存储失败即整体失败，诊断结果直接丢弃。
func (s *ScanService) assemble(ctx context.Context, image []byte, filename string) (*model.ScanRecord, error) {
	var (
		imageURL string
		storeErr error
		diag     *model.Diagnosis
		diagErr  error
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		imageURL, storeErr = s.store.Store(ctx, image, filename)
	}()

	diag, diagErr = s.diagnoser.Diagnose(ctx, image)
	<-done

	if storeErr != nil {
		s.log.Errorf(ctx, "[ScanService] Image store failed: %v", storeErr)
		return nil, storeErr
	}
	if diagErr != nil {
		return nil, diagErr
	}

	solution := s.catalog.Lookup(diag.DiseaseKey)

	_, condition := model.SplitLabel(diag.DiseaseKey)
	if condition == "" {
		condition = diag.Disease
	}

	return &model.ScanRecord{
		ImageURL:   imageURL,
		Plant:      solution.Crop,
		Condition:  condition,
		Status:     model.DeriveScanStatus(diag),
		Confidence: diag.Confidence,
		FullReport: &model.FullReport{
			Detection: *diag,
			Solution:  solution,
		},
	}, nil
}
