// Package business 承载扫描诊断的核心编排逻辑。
package business

import (
	"context"
	"errors"
	"strings"
	"time"

	"cdp/scansvc/internal/detector"
	"cdp/scansvc/internal/model"
	"cdp/scansvc/pkg/errorutil"
	"cdp/scansvc/pkg/logger"
)

const (
	defaultPrimaryTimeout   = 60 * time.Second // 本地推理可能很慢，默认放宽
	defaultSecondaryTimeout = 30 * time.Second
)

// Diagnoser 诊断编排入口
type Diagnoser interface {
	Diagnose(ctx context.Context, image []byte) (*model.Diagnosis, error)
}

// Orchestrator 诊断编排器
// 瀑布式降级：主检测器可用就用主的，失败才调备用，两级都失败
// 合成 FALLBACK_ERROR 终态结果。不做并行竞速、不做结果融合——
// 备用是付费远端服务，严格只做兜底。
type Orchestrator struct {
	primary          detector.Detector
	secondary        detector.Detector
	primaryTimeout   time.Duration
	secondaryTimeout time.Duration
	log              logger.Logger
}

// NewOrchestrator 创建诊断编排器
func NewOrchestrator(
	primary detector.Detector,
	secondary detector.Detector,
	primaryTimeout time.Duration,
	secondaryTimeout time.Duration,
	log logger.Logger,
) *Orchestrator {
	if primaryTimeout <= 0 {
		primaryTimeout = defaultPrimaryTimeout
	}
	if secondaryTimeout <= 0 {
		secondaryTimeout = defaultSecondaryTimeout
	}

	return &Orchestrator{
		primary:          primary,
		secondary:        secondary,
		primaryTimeout:   primaryTimeout,
		secondaryTimeout: secondaryTimeout,
		log:              log,
	}
}

// Diagnose 执行两级诊断
// 正常情况下不向调用方返回 error：检测器失败全部吸收为降级结果，
// error 只保留给真正不可恢复的场景（如空输入）。
func (o *Orchestrator) Diagnose(ctx context.Context, image []byte) (*model.Diagnosis, error) {
	if len(image) == 0 {
		return nil, errorutil.InvalidInput("image is empty")
	}

	// 1. 主检测器（带独立超时）
	pctx, pcancel := context.WithTimeout(ctx, o.primaryTimeout)
	diag, primaryErr := o.primary.Detect(pctx, image)
	pcancel()

	if primaryErr == nil {
		if isComplete(diag) {
			diag.Source = model.SourcePrimary
			return diag, nil
		}
		// 正常返回但结果不完整，同样走降级
		primaryErr = errorutil.DetectorOutputMalformed("primary diagnosis incomplete", "")
	}

	o.log.Warnf(ctx, "[Orchestrator] Primary detector failed, falling back: %v", primaryErr)

	// 2. 备用检测器（单次尝试，不自动重试）
	sctx, scancel := context.WithTimeout(ctx, o.secondaryTimeout)
	diag, secondaryErr := o.secondary.Detect(sctx, image)
	scancel()

	if secondaryErr == nil {
		diag.Source = model.SourceSecondary
		return diag, nil
	}

	o.log.Warnf(ctx, "[Orchestrator] Secondary detector failed: %v", secondaryErr)

	// 3. 终态兜底：两级都失败也必须给出完整的 Diagnosis
	if errors.Is(secondaryErr, detector.ErrNotAPlant) {
		return notAPlantDiagnosis(primaryErr), nil
	}
	return fallbackDiagnosis(primaryErr, secondaryErr), nil
}

// isComplete 主检测结果是否可用
// 有病害标签，或识别出了具体作物（"Unknown" 是哨兵值不算）
func isComplete(d *model.Diagnosis) bool {
	if d == nil {
		return false
	}
	if d.DiseaseKey != "" {
		return true
	}
	return d.Crop != "" && !strings.EqualFold(d.Crop, "Unknown")
}

// fallbackDiagnosis 合成终态降级结果，两级错误信息留档在 Raw 里
func fallbackDiagnosis(primaryErr, secondaryErr error) *model.Diagnosis {
	return &model.Diagnosis{
		Crop:            "Unknown",
		DiseaseKey:      "Analysis Error",
		Disease:         "Analysis Error",
		Confidence:      0,
		ConfidenceLevel: model.ConfidenceLow,
		IsHealthy:       false,
		Source:          model.SourceFallbackError,
		Raw: map[string]interface{}{
			"primary_error":   primaryErr.Error(),
			"secondary_error": secondaryErr.Error(),
		},
	}
}

// notAPlantDiagnosis 图片不是植物的专用终态结果
// Raw.error=NotAPlant，与普通分析失败区分开
func notAPlantDiagnosis(primaryErr error) *model.Diagnosis {
	return &model.Diagnosis{
		Crop:            "Unknown",
		DiseaseKey:      "Not a plant image",
		Disease:         "Not a plant image",
		Confidence:      0,
		ConfidenceLevel: model.ConfidenceLow,
		IsHealthy:       false,
		Source:          model.SourceFallbackError,
		Raw: map[string]interface{}{
			"error":         "NotAPlant",
			"primary_error": primaryErr.Error(),
		},
	}
}
