package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"cdp/scansvc/pkg/errorutil"
	"cdp/scansvc/pkg/logger"
)

// UploadOptions 远端上传存储配置
type UploadOptions struct {
	UploadURL  string // 上传服务接口地址
	APIKey     string
	Folder     string // 远端目录，默认 plant_scans
	HTTPClient *http.Client
}

// UploadStore 远端上传存储实现
// 以 multipart/form-data 上传图片，服务端返回托管 URL。
type UploadStore struct {
	opts UploadOptions
	log  logger.Logger
}

// NewUploadStore 创建远端上传存储
func NewUploadStore(opts UploadOptions, log logger.Logger) *UploadStore {
	if opts.Folder == "" {
		opts.Folder = "plant_scans"
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &UploadStore{opts: opts, log: log}
}

// uploadResponse 上传服务的响应结构
type uploadResponse struct {
	URL       string `json:"url"`
	SecureURL string `json:"secure_url"`
	Error     string `json:"error"`
}

// Store 上传图片到远端存储
func (s *UploadStore) Store(ctx context.Context, image []byte, filename string) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("folder", s.opts.Folder); err != nil {
		return "", errorutil.StorageFailure("failed to build upload form", err.Error())
	}

	fw, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", errorutil.StorageFailure("failed to build upload form", err.Error())
	}
	if _, err := fw.Write(image); err != nil {
		return "", errorutil.StorageFailure("failed to build upload form", err.Error())
	}
	if err := writer.Close(); err != nil {
		return "", errorutil.StorageFailure("failed to build upload form", err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.opts.UploadURL, &buf)
	if err != nil {
		return "", errorutil.StorageFailure("failed to build upload request", err.Error())
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if s.opts.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.opts.APIKey)
	}

	resp, err := s.opts.HTTPClient.Do(req)
	if err != nil {
		return "", errorutil.StorageFailure("image upload request failed", err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errorutil.StorageFailure("failed to read upload response", err.Error())
	}

	if resp.StatusCode != http.StatusOK {
		return "", errorutil.StorageFailure(
			fmt.Sprintf("upload service returned status %d", resp.StatusCode), string(respBody))
	}

	var upResp uploadResponse
	if err := json.Unmarshal(respBody, &upResp); err != nil {
		return "", errorutil.StorageFailure("failed to parse upload response",
			fmt.Sprintf("parse error: %v; body: %s", err, respBody))
	}

	if upResp.Error != "" {
		return "", errorutil.StorageFailure("upload service reported error", upResp.Error)
	}

	// 优先使用 HTTPS 链接
	url := upResp.SecureURL
	if url == "" {
		url = upResp.URL
	}
	if url == "" {
		return "", errorutil.StorageFailure("upload response has no url", string(respBody))
	}

	return url, nil
}
