// Package app 负责按配置组装扫描服务的依赖图，
// API Server 与 Worker 共用同一套组装逻辑。
package app

import (
	"fmt"

	"cdp/scansvc/internal/business"
	"cdp/scansvc/internal/catalog"
	"cdp/scansvc/internal/detector"
	"cdp/scansvc/internal/storage"
	"cdp/scansvc/pkg/config"
	"cdp/scansvc/pkg/infra/mysql"
	"cdp/scansvc/pkg/logger"
)

// BuildScanService 组装扫描服务（检测器 → 编排器 → 服务）
func BuildScanService(cfg *config.Config, scanDAO *mysql.ScanDAO, log logger.Logger) (*business.ScanService, error) {
	primary := detector.NewPrimary(detector.PrimaryOptions{
		Python: cfg.Detector.Primary.Python,
		Script: cfg.Detector.Primary.Script,
		TmpDir: cfg.Detector.Primary.TmpDir,
	}, log)

	secondary := detector.NewSecondary(detector.SecondaryOptions{
		BaseURL: cfg.Detector.Secondary.BaseURL,
		APIKey:  cfg.Detector.Secondary.APIKey,
		Model:   cfg.Detector.Secondary.Model,
	}, log)

	orchestrator := business.NewOrchestrator(
		primary,
		secondary,
		cfg.Detector.Primary.Timeout,
		cfg.Detector.Secondary.Timeout,
		log,
	)

	imageStore, err := BuildImageStore(cfg, log)
	if err != nil {
		return nil, err
	}

	return business.NewScanService(orchestrator, imageStore, catalog.New(), scanDAO, log), nil
}

// BuildImageStore 按配置选择图片存储实现
func BuildImageStore(cfg *config.Config, log logger.Logger) (storage.ImageStore, error) {
	switch cfg.ImageStore.Mode {
	case "local":
		return storage.NewLocalStore(storage.LocalOptions{
			Dir:     cfg.ImageStore.LocalDir,
			BaseURL: cfg.ImageStore.BaseURL,
		}, log)
	case "upload", "":
		return storage.NewUploadStore(storage.UploadOptions{
			UploadURL: cfg.ImageStore.UploadURL,
			APIKey:    cfg.ImageStore.APIKey,
			Folder:    cfg.ImageStore.Folder,
		}, log), nil
	default:
		return nil, fmt.Errorf("unknown image store mode: %s", cfg.ImageStore.Mode)
	}
}
