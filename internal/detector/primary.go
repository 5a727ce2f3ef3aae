package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"cdp/scansvc/internal/model"
	"cdp/scansvc/pkg/errorutil"
	"cdp/scansvc/pkg/execx"
	"cdp/scansvc/pkg/logger"
)

// PrimaryOptions 主检测器配置
type PrimaryOptions struct {
	Python string // 解释器，默认 python
	Script string // 推理脚本路径
	TmpDir string // 临时图片目录，默认系统临时目录
	Runner execx.Runner
}

// Primary 主检测器：调用本地 CNN 模型子进程
// 约定：子进程以 (imagePath, --json) 方式调用，成功时 stdout 只输出一个
// JSON 对象并以 0 退出，日志文本全部走 stderr。
type Primary struct {
	opts PrimaryOptions
	log  logger.Logger
}

// NewPrimary 创建主检测器
func NewPrimary(opts PrimaryOptions, log logger.Logger) *Primary {
	if opts.Python == "" {
		opts.Python = "python"
	}
	if opts.TmpDir == "" {
		opts.TmpDir = os.TempDir()
	}
	if opts.Runner == nil {
		opts.Runner = execx.OSRunner{}
	}

	return &Primary{opts: opts, log: log}
}

// primaryOutput 推理脚本的 stdout JSON 结构
type primaryOutput struct {
	Crop            string  `json:"crop"`
	Disease         string  `json:"disease"`
	OriginalLabel   string  `json:"original_label"`
	Confidence      float64 `json:"confidence"` // 脚本输出 0~100
	ConfidenceLevel string  `json:"confidence_level"`
	Error           string  `json:"error"`
}

// Detect 执行本地推理
// 临时图片文件为本次请求独占，任何退出路径（成功/解析失败/超时/崩溃）
// 都保证删除。超时由 ctx 控制，子进程会被杀掉。
func (p *Primary) Detect(ctx context.Context, image []byte) (*model.Diagnosis, error) {
	tmpPath := filepath.Join(p.opts.TmpDir, fmt.Sprintf("upload_%s.jpg", uuid.New().String()))

	if err := os.WriteFile(tmpPath, image, 0o600); err != nil {
		return nil, errorutil.DetectorUnavailable("failed to write temp image", err.Error())
	}
	defer func() {
		if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
			p.log.Warnf(ctx, "[Primary] Failed to cleanup temp file %s: %v", tmpPath, err)
		}
	}()

	stdout, stderr, err := p.opts.Runner.Run(ctx, p.opts.Python, p.opts.Script, tmpPath, "--json")
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errorutil.DetectorUnavailable("primary detector timed out", string(stderr))
		}
		return nil, errorutil.DetectorUnavailable("primary detector failed",
			fmt.Sprintf("%v; stderr: %s", err, stderr))
	}

	var out primaryOutput
	if err := json.Unmarshal(bytes.TrimSpace(stdout), &out); err != nil {
		return nil, errorutil.DetectorOutputMalformed("failed to parse primary detector output",
			fmt.Sprintf("parse error: %v; stdout: %s; stderr: %s", err, stdout, stderr))
	}

	// 脚本正常退出但在 JSON 里报错（如图片格式不支持）
	if out.Error != "" {
		return nil, errorutil.DetectorUnavailable("primary detector reported error", out.Error)
	}

	return p.normalize(stdout, &out), nil
}

// normalize 把脚本输出归一化为 Diagnosis
func (p *Primary) normalize(stdout []byte, out *primaryOutput) *model.Diagnosis {
	label := out.OriginalLabel
	if label == "" {
		label = model.ComposeLabel(out.Crop, out.Disease)
	}
	diseaseKey := model.NormalizeLabel(label)

	// 脚本置信度为 0~100，统一到 0~1
	confidence := out.Confidence / 100
	level := out.ConfidenceLevel
	if level == "" {
		level = model.ConfidenceLevelOf(confidence)
	}

	// 原始输出整体留档（含脚本合并进来的方案字段）
	raw := make(map[string]interface{})
	_ = json.Unmarshal(stdout, &raw)

	return &model.Diagnosis{
		Crop:            out.Crop,
		DiseaseKey:      diseaseKey,
		Disease:         out.Disease,
		Confidence:      confidence,
		ConfidenceLevel: level,
		IsHealthy:       model.IsHealthyLabel(diseaseKey) || model.IsHealthyLabel(out.Disease),
		Raw:             raw,
	}
}
