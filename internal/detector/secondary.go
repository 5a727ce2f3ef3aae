package detector

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cdp/scansvc/internal/model"
	"cdp/scansvc/pkg/errorutil"
	"cdp/scansvc/pkg/logger"
)

// systemInstruction 约束远端模型只返回诊断 schema 的严格 JSON
const systemInstruction = `You are an expert plant pathologist.
Analyze the plant leaf image and respond with a single strict JSON object, no markdown, no extra text.
Fields: crop (string), disease (string), confidence (number 0-100), confidence_level (string), severity (string), message (string), maintenance (string array), organic (string array), chemical (string array), prevention (string array), recommendation (string).
If the plant is healthy, set disease to "healthy".
If the image is not a plant, respond exactly with {"error": "Not a plant image"}.`

const userPrompt = "Diagnose the plant disease in this image."

// SecondaryOptions 备用检测器配置
type SecondaryOptions struct {
	BaseURL    string // 形如 https://generativelanguage.googleapis.com
	APIKey     string
	Model      string // 形如 gemini-2.5-flash
	HTTPClient *http.Client
}

// Secondary 备用检测器：调用远端视觉大模型
// 通过 response_mime_type 要求严格 JSON，解析前仍防御性剥掉代码围栏。
type Secondary struct {
	opts SecondaryOptions
	log  logger.Logger
}

// NewSecondary 创建备用检测器
func NewSecondary(opts SecondaryOptions, log logger.Logger) *Secondary {
	if opts.Model == "" {
		opts.Model = "gemini-2.5-flash"
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}

	return &Secondary{opts: opts, log: log}
}

// generateContent 请求结构
type generateRequest struct {
	SystemInstruction *content         `json:"system_instruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseMIMEType string `json:"response_mime_type"`
}

// generateContent 响应结构（只取第一候选的文本）
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// secondaryPayload 模型返回的诊断 JSON
// {"error": "Not a plant image"} 是合法响应，不算协议错误。
type secondaryPayload struct {
	Error           string   `json:"error"`
	Crop            string   `json:"crop"`
	Disease         string   `json:"disease"`
	Confidence      float64  `json:"confidence"` // 提示词要求 0~100
	ConfidenceLevel string   `json:"confidence_level"`
	Severity        string   `json:"severity"`
	Message         string   `json:"message"`
	Maintenance     []string `json:"maintenance"`
	Organic         []string `json:"organic"`
	Chemical        []string `json:"chemical"`
	Prevention      []string `json:"prevention"`
	Recommendation  string   `json:"recommendation"`
}

// Detect 调用远端模型做诊断
// 单次调用不做自动重试，重试是调用方的事。
func (s *Secondary) Detect(ctx context.Context, image []byte) (*model.Diagnosis, error) {
	reqBody := generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: systemInstruction}}},
		Contents: []content{{
			Parts: []part{
				{InlineData: &inlineData{
					MimeType: "image/jpeg",
					Data:     base64.StdEncoding.EncodeToString(image),
				}},
				{Text: userPrompt},
			},
		}},
		GenerationConfig: generationConfig{ResponseMIMEType: "application/json"},
	}

	bodyJSON, err := json.Marshal(reqBody)
	if err != nil {
		return nil, errorutil.DetectorUnavailable("failed to marshal request", err.Error())
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		strings.TrimRight(s.opts.BaseURL, "/"), s.opts.Model, s.opts.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyJSON))
	if err != nil {
		return nil, errorutil.DetectorUnavailable("failed to build request", err.Error())
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, errorutil.DetectorUnavailable("secondary detector request failed", err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errorutil.DetectorUnavailable("failed to read response", err.Error())
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errorutil.DetectorUnavailable(
			fmt.Sprintf("secondary detector returned status %d", resp.StatusCode), string(respBody))
	}

	var genResp generateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return nil, errorutil.DetectorOutputMalformed("failed to parse model response",
			fmt.Sprintf("parse error: %v; body: %s", err, respBody))
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return nil, errorutil.DetectorOutputMalformed("model response has no candidates", string(respBody))
	}

	text := stripCodeFence(genResp.Candidates[0].Content.Parts[0].Text)

	var payload secondaryPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, errorutil.DetectorOutputMalformed("failed to parse diagnosis JSON",
			fmt.Sprintf("parse error: %v; text: %s", err, text))
	}

	if payload.Error != "" {
		if strings.Contains(strings.ToLower(payload.Error), "not a plant") {
			return nil, ErrNotAPlant
		}
		return nil, errorutil.DetectorUnavailable("secondary detector reported error", payload.Error)
	}

	return s.normalize(text, &payload), nil
}

// normalize 把模型输出归一化为 Diagnosis
func (s *Secondary) normalize(text string, payload *secondaryPayload) *model.Diagnosis {
	diseaseKey := model.ComposeLabel(payload.Crop, payload.Disease)

	// 提示词要求 0~100，但模型偶尔直接给 0~1，做一次防御性归一
	confidence := payload.Confidence
	if confidence > 1 {
		confidence = confidence / 100
	}

	level := payload.ConfidenceLevel
	if level == "" {
		level = model.ConfidenceLevelOf(confidence)
	}

	raw := make(map[string]interface{})
	_ = json.Unmarshal([]byte(text), &raw)

	return &model.Diagnosis{
		Crop:            payload.Crop,
		DiseaseKey:      diseaseKey,
		Disease:         payload.Disease,
		Confidence:      confidence,
		ConfidenceLevel: level,
		IsHealthy:       model.IsHealthyLabel(payload.Disease),
		Raw:             raw,
	}
}

// stripCodeFence 剥掉可能包裹在 JSON 外的 Markdown 代码围栏
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	// 去掉首行 ```json / ```
	if idx := strings.Index(text, "\n"); idx >= 0 {
		text = text[idx+1:]
	} else {
		text = strings.TrimPrefix(text, "```")
	}

	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
