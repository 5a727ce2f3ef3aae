package detector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cdp/scansvc/internal/model"
	"cdp/scansvc/pkg/errorutil"
	"cdp/scansvc/pkg/logger"
)

// geminiStub 返回固定文本的 generateContent 桩服务
func geminiStub(t *testing.T, text string, status int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, ":generateContent")

		// 请求必须带图片和系统提示词
		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req, "system_instruction")
		assert.Contains(t, req, "contents")

		if status != http.StatusOK {
			w.WriteHeader(status)
			fmt.Fprint(w, `{"error": {"message": "quota exceeded"}}`)
			return
		}

		resp := map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]string{{"text": text}},
				}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func newTestSecondary(baseURL string) *Secondary {
	return NewSecondary(SecondaryOptions{
		BaseURL: baseURL,
		APIKey:  "test-key",
		Model:   "gemini-2.5-flash",
	}, logger.NopLogger{})
}

func TestSecondaryDetectSuccess(t *testing.T) {
	srv := geminiStub(t, `{"crop":"Potato","disease":"Late blight","confidence":88,"confidence_level":"High","severity":"Critical"}`, http.StatusOK)
	defer srv.Close()

	diag, err := newTestSecondary(srv.URL).Detect(context.Background(), []byte("image"))
	require.NoError(t, err)

	assert.Equal(t, "Potato", diag.Crop)
	assert.Equal(t, "Potato___Late_blight", diag.DiseaseKey)
	assert.InDelta(t, 0.88, diag.Confidence, 1e-9)
	assert.Equal(t, "High", diag.ConfidenceLevel)
	assert.False(t, diag.IsHealthy)
	assert.Equal(t, "Critical", diag.Raw["severity"])
}

func TestSecondaryDetectCodeFence(t *testing.T) {
	// 模型偶尔无视 response_mime_type 包一层 Markdown 围栏
	fenced := "```json\n{\"crop\":\"Apple\",\"disease\":\"Black rot\",\"confidence\":72}\n```"
	srv := geminiStub(t, fenced, http.StatusOK)
	defer srv.Close()

	diag, err := newTestSecondary(srv.URL).Detect(context.Background(), []byte("image"))
	require.NoError(t, err)

	assert.Equal(t, "Apple___Black_rot", diag.DiseaseKey)
	assert.InDelta(t, 0.72, diag.Confidence, 1e-9)
	// 模型没给分档时按置信度推导
	assert.Equal(t, model.ConfidenceMedium, diag.ConfidenceLevel)
}

func TestSecondaryDetectNotAPlant(t *testing.T) {
	srv := geminiStub(t, `{"error": "Not a plant image"}`, http.StatusOK)
	defer srv.Close()

	_, err := newTestSecondary(srv.URL).Detect(context.Background(), []byte("image"))
	require.ErrorIs(t, err, ErrNotAPlant)
}

func TestSecondaryDetectHTTPError(t *testing.T) {
	srv := geminiStub(t, "", http.StatusTooManyRequests)
	defer srv.Close()

	_, err := newTestSecondary(srv.URL).Detect(context.Background(), []byte("image"))
	require.Error(t, err)

	assert.Equal(t, errorutil.CodeDetectorUnavailable, errorutil.CodeOf(err))
	assert.True(t, errorutil.IsRetryable(err))
}

func TestSecondaryDetectMalformedJSON(t *testing.T) {
	srv := geminiStub(t, "I think this is a tomato leaf with blight.", http.StatusOK)
	defer srv.Close()

	_, err := newTestSecondary(srv.URL).Detect(context.Background(), []byte("image"))
	require.Error(t, err)

	assert.Equal(t, errorutil.CodeDetectorOutputMalformed, errorutil.CodeOf(err))
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(`{"a":1}`))
	assert.Equal(t, `{"a":1}`, stripCodeFence("  {\"a\":1}  "))
}
