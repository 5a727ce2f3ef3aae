// Package detector 封装两级病害检测器。
// 每个适配层负责把自己的原始输出归一化为 model.Diagnosis，
// 编排层不感知原始形状。
package detector

import (
	"context"
	"errors"

	"cdp/scansvc/internal/model"
)

// ErrNotAPlant 远端模型判定图片不是植物
// 与普通检测失败区分开，调用方据此区分"未检出病害"和"输入类型不对"。
var ErrNotAPlant = errors.New("not a plant image")

// Detector 检测器抽象
type Detector interface {
	// Detect 对图片做病害检测，返回归一化诊断结果
	Detect(ctx context.Context, image []byte) (*model.Diagnosis, error)
}
