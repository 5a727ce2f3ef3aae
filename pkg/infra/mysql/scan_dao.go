package mysql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"cdp/scansvc/internal/entity"
	"cdp/scansvc/internal/model"
)

// ErrScanNotFound 扫描记录不存在
var ErrScanNotFound = errors.New("scan record not found")

// ScanDAO 扫描记录数据访问对象
type ScanDAO struct {
	db *gorm.DB
}

// NewScanDAO 创建 ScanDAO 实例
func NewScanDAO(dsn string) (*ScanDAO, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &ScanDAO{
		db: db,
	}, nil
}

// Create 创建扫描记录
func (dao *ScanDAO) Create(ctx context.Context, rec *model.ScanRecord) error {
	row, err := toEntity(rec)
	if err != nil {
		return err
	}

	if err := dao.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to create scan record: %w", err)
	}

	return nil
}

// UpdateResult 更新扫描结果（异步路径：Worker 处理完 PENDING 记录后回写）
func (dao *ScanDAO) UpdateResult(ctx context.Context, rec *model.ScanRecord) error {
	reportJSON, err := marshalReport(rec.FullReport)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{
		"image_url":   rec.ImageURL,
		"plant":       rec.Plant,
		"condition":   rec.Condition,
		"status":      rec.Status,
		"confidence":  rec.Confidence,
		"full_report": reportJSON,
	}

	result := dao.db.WithContext(ctx).
		Model(&entity.Scan{}).
		Where("id = ?", rec.ID).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to update scan record: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: id=%d", ErrScanNotFound, rec.ID)
	}

	return nil
}

// GetByID 根据 ID 获取扫描记录
func (dao *ScanDAO) GetByID(ctx context.Context, id int64) (*model.ScanRecord, error) {
	var row entity.Scan
	result := dao.db.WithContext(ctx).Where("id = ?", id).First(&row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrScanNotFound
		}
		return nil, fmt.Errorf("failed to get scan record: %w", result.Error)
	}

	return fromEntity(&row)
}

// ListByOwner 查询用户的扫描历史（按创建时间倒序）
func (dao *ScanDAO) ListByOwner(ctx context.Context, ownerID string, page, limit int) ([]*model.ScanRecord, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var total int64
	if err := dao.db.WithContext(ctx).
		Model(&entity.Scan{}).
		Where("owner_id = ?", ownerID).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count scan records: %w", err)
	}

	var rows []entity.Scan
	if err := dao.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list scan records: %w", err)
	}

	records := make([]*model.ScanRecord, 0, len(rows))
	for i := range rows {
		rec, err := fromEntity(&rows[i])
		if err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}

	return records, total, nil
}

// Delete 删除扫描记录（仅限记录所有者）
func (dao *ScanDAO) Delete(ctx context.Context, id int64, ownerID string) error {
	result := dao.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&entity.Scan{})

	if result.Error != nil {
		return fmt.Errorf("failed to delete scan record: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: id=%d", ErrScanNotFound, id)
	}

	return nil
}

// Close 关闭数据库连接
func (dao *ScanDAO) Close() error {
	sqlDB, err := dao.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// toEntity 领域模型转表实体
func toEntity(rec *model.ScanRecord) (*entity.Scan, error) {
	reportJSON, err := marshalReport(rec.FullReport)
	if err != nil {
		return nil, err
	}

	return &entity.Scan{
		ID:         rec.ID,
		OwnerID:    rec.OwnerID,
		ImageURL:   rec.ImageURL,
		Plant:      rec.Plant,
		Condition:  rec.Condition,
		Status:     rec.Status,
		Confidence: rec.Confidence,
		FullReport: reportJSON,
		CreatedAt:  rec.CreatedAt,
	}, nil
}

// fromEntity 表实体转领域模型
func fromEntity(row *entity.Scan) (*model.ScanRecord, error) {
	rec := &model.ScanRecord{
		ID:         row.ID,
		OwnerID:    row.OwnerID,
		ImageURL:   row.ImageURL,
		Plant:      row.Plant,
		Condition:  row.Condition,
		Status:     row.Status,
		Confidence: row.Confidence,
		CreatedAt:  row.CreatedAt,
	}

	if len(row.FullReport) > 0 {
		var report model.FullReport
		if err := json.Unmarshal(row.FullReport, &report); err != nil {
			return nil, fmt.Errorf("failed to unmarshal full report: %w", err)
		}
		rec.FullReport = &report
	}

	return rec, nil
}

// marshalReport 序列化完整报告，nil 报告存空
func marshalReport(report *model.FullReport) ([]byte, error) {
	if report == nil {
		return nil, nil
	}

	data, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal full report: %w", err)
	}
	return data, nil
}
